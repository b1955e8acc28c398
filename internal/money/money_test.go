package money_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danielcasamentos/priceus-sub002/internal/money"
)

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		name  string
		cents int64
		want  string
	}{
		{name: "Zero", cents: 0, want: "R$ 0,00"},
		{name: "UnderOneReal", cents: 9, want: "R$ 0,09"},
		{name: "Simple", cents: 15000, want: "R$ 150,00"},
		{name: "ThousandsSeparator", cents: 123456, want: "R$ 1.234,56"},
		{name: "Millions", cents: 250000000, want: "R$ 2.500.000,00"},
		{name: "Negative", cents: -123456, want: "-R$ 1.234,56"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, money.FormatBRL(tt.cents))
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		n     int
		want  []int64
	}{
		{name: "Even", total: 30000, n: 3, want: []int64{10000, 10000, 10000}},
		{name: "RemainderOnLast", total: 10000, n: 3, want: []int64{3333, 3333, 3334}},
		{name: "Single", total: 999, n: 1, want: []int64{999}},
		{name: "MorePartsThanCents", total: 2, n: 3, want: []int64{0, 0, 2}},
		{name: "ZeroParts", total: 100, n: 0, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := money.Split(tt.total, tt.n)
			assert.Equal(t, tt.want, got)

			var sum int64
			for _, p := range got {
				sum += p
			}

			if tt.n > 0 {
				assert.Equal(t, tt.total, sum)
			}
		})
	}
}
