package civil_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielcasamentos/priceus-sub002/internal/civil"
)

func TestParse(t *testing.T) {
	d, err := civil.Parse("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.January, Day: 15}, d)

	_, err = civil.Parse("15/01/2024")
	assert.Error(t, err)
}

func TestParse_NoTimezoneShift(t *testing.T) {
	// The bug this package exists to prevent: a date string parsed
	// through a zone-aware path can land on the previous day.
	d, err := civil.Parse("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year)
	assert.Equal(t, time.March, d.Month)
	assert.Equal(t, 1, d.Day)
	assert.Equal(t, "2024-03-01", d.String())
}

func TestDate_Ordering(t *testing.T) {
	a := civil.Date{Year: 2024, Month: time.January, Day: 31}
	b := civil.Date{Year: 2024, Month: time.February, Day: 1}

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Before(a))
}

func TestDate_AddMonths(t *testing.T) {
	tests := []struct {
		name string
		d    civil.Date
		n    int
		want civil.Date
	}{
		{
			name: "SimpleAdvance",
			d:    civil.Date{Year: 2024, Month: time.March, Day: 10},
			n:    2,
			want: civil.Date{Year: 2024, Month: time.May, Day: 10},
		},
		{
			name: "YearRollover",
			d:    civil.Date{Year: 2024, Month: time.November, Day: 5},
			n:    3,
			want: civil.Date{Year: 2025, Month: time.February, Day: 5},
		},
		{
			name: "ClampToLeapFebruary",
			d:    civil.Date{Year: 2024, Month: time.January, Day: 31},
			n:    1,
			want: civil.Date{Year: 2024, Month: time.February, Day: 29},
		},
		{
			name: "ClampToShortMonth",
			d:    civil.Date{Year: 2023, Month: time.January, Day: 31},
			n:    1,
			want: civil.Date{Year: 2023, Month: time.February, Day: 28},
		},
		{
			name: "Negative",
			d:    civil.Date{Year: 2024, Month: time.January, Day: 15},
			n:    -2,
			want: civil.Date{Year: 2023, Month: time.November, Day: 15},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.AddMonths(tt.n))
		})
	}
}

func TestDate_DaysSince(t *testing.T) {
	a := civil.Date{Year: 2024, Month: time.February, Day: 1}
	b := civil.Date{Year: 2024, Month: time.January, Day: 2}

	assert.Equal(t, 30, a.DaysSince(b))
	assert.Equal(t, -30, b.DaysSince(a))
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Date civil.Date `json:"date"`
	}

	var p payload

	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-06-09"}`), &p))
	assert.Equal(t, civil.Date{Year: 2024, Month: time.June, Day: 9}, p.Date)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-06-09"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":20240609}`), &p))
}
