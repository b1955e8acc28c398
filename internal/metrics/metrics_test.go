package metrics_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielcasamentos/priceus-sub002/internal/civil"
	"github.com/danielcasamentos/priceus-sub002/internal/metrics"
	"github.com/danielcasamentos/priceus-sub002/internal/transaction"
)

func tx(typ transaction.Type, status transaction.Status, amount int64, date string) *transaction.Transaction {
	d, err := civil.Parse(date)
	if err != nil {
		panic(err)
	}

	return &transaction.Transaction{
		ID:     uuid.New(),
		Type:   typ,
		Status: status,
		Amount: amount,
		Date:   d,
	}
}

var now = civil.Date{Year: 2024, Month: time.June, Day: 15}

func TestMonthlySnapshot_PastMonthPaidBasis(t *testing.T) {
	txs := []*transaction.Transaction{
		tx(transaction.TypeIncome, transaction.StatusPaid, 10000, "2024-01-15"),
		tx(transaction.TypeExpense, transaction.StatusPaid, 3000, "2024-01-20"),
		tx(transaction.TypeIncome, transaction.StatusPending, 5000, "2024-01-25"),
	}

	snap := metrics.MonthlySnapshot(txs, 2024, time.January, now)

	assert.Equal(t, int64(10000), snap.Income)
	assert.Equal(t, int64(3000), snap.Expense)
	assert.Equal(t, int64(7000), snap.Profit)
	assert.Equal(t, int64(5000), snap.PendingIncome)
	assert.False(t, snap.IsFuture)
	assert.Equal(t, 1, snap.IncomeCount)
	assert.Equal(t, int64(10000), snap.AverageTicket)
}

func TestMonthlySnapshot_FutureMonthPendingBasis(t *testing.T) {
	txs := []*transaction.Transaction{
		tx(transaction.TypeIncome, transaction.StatusPending, 20000, "2024-09-10"),
		tx(transaction.TypeIncome, transaction.StatusPaid, 9999, "2024-09-11"),
		tx(transaction.TypeExpense, transaction.StatusPending, 4000, "2024-09-12"),
	}

	snap := metrics.MonthlySnapshot(txs, 2024, time.September, now)

	require.True(t, snap.IsFuture)
	// Future months roll up the pending amounts as the primary
	// figures so they do not read as zero.
	assert.Equal(t, int64(20000), snap.Income)
	assert.Equal(t, int64(4000), snap.Expense)
	assert.Equal(t, int64(16000), snap.Profit)
	assert.Zero(t, snap.PendingIncome)
	assert.Zero(t, snap.PendingExpense)
}

func TestMonthlySnapshot_FutureYearBoundary(t *testing.T) {
	// January of next year is future even though the month number is
	// lower than the current month.
	snap := metrics.MonthlySnapshot(nil, 2025, time.January, now)
	assert.True(t, snap.IsFuture)

	snap = metrics.MonthlySnapshot(nil, 2024, time.June, now)
	assert.False(t, snap.IsFuture)
}

func TestMonthlySnapshot_EmptyLog(t *testing.T) {
	snap := metrics.MonthlySnapshot(nil, 2024, time.January, now)

	assert.Zero(t, snap.Income)
	assert.Zero(t, snap.Expense)
	assert.Zero(t, snap.Profit)
	assert.Zero(t, snap.IncomeCount)
	assert.Zero(t, snap.AverageTicket)
}

func TestMonthlySnapshot_CancelledIgnored(t *testing.T) {
	txs := []*transaction.Transaction{
		tx(transaction.TypeIncome, transaction.StatusCancelled, 10000, "2024-01-15"),
	}

	snap := metrics.MonthlySnapshot(txs, 2024, time.January, now)
	assert.Zero(t, snap.Income)
	assert.Zero(t, snap.PendingIncome)
}

func TestMonthlyBreakdown_AlwaysTwelveRows(t *testing.T) {
	rows := metrics.MonthlyBreakdown(nil, 2024)
	require.Len(t, rows, 12)

	for i, row := range rows {
		assert.Equal(t, time.Month(i+1), row.Month)
		assert.Zero(t, row.Income)
		assert.Zero(t, row.Expense)
		assert.Zero(t, row.Profit)
		assert.Zero(t, row.IncomeCount)
	}
}

func TestMonthlyBreakdown_ProfitConsistency(t *testing.T) {
	txs := []*transaction.Transaction{
		tx(transaction.TypeIncome, transaction.StatusPaid, 50000, "2024-03-01"),
		tx(transaction.TypeExpense, transaction.StatusPaid, 12000, "2024-03-02"),
		tx(transaction.TypeIncome, transaction.StatusPaid, 80000, "2024-07-10"),
		tx(transaction.TypeIncome, transaction.StatusPending, 999, "2024-07-11"),
	}

	rows := metrics.MonthlyBreakdown(txs, 2024)

	for _, row := range rows {
		assert.Equal(t, row.Income-row.Expense, row.Profit, "month %s", row.Month)
	}

	assert.Equal(t, int64(38000), rows[2].Profit)
	assert.Equal(t, int64(80000), rows[6].Income) // pending excluded
	assert.Equal(t, 1, rows[6].IncomeCount)
}

func TestYearlySnapshot(t *testing.T) {
	txs := []*transaction.Transaction{
		tx(transaction.TypeIncome, transaction.StatusPaid, 100000, "2024-02-01"),
		tx(transaction.TypeExpense, transaction.StatusPaid, 20000, "2024-02-05"),
		tx(transaction.TypeIncome, transaction.StatusPaid, 40000, "2024-05-01"),
		tx(transaction.TypeExpense, transaction.StatusPaid, 60000, "2024-08-01"),
		// Prior year, for growth.
		tx(transaction.TypeIncome, transaction.StatusPaid, 70000, "2023-06-01"),
	}

	snap := metrics.YearlySnapshot(txs, 2024)

	assert.Equal(t, int64(140000), snap.Income)
	assert.Equal(t, int64(80000), snap.Expense)
	assert.Equal(t, int64(60000), snap.Profit)
	assert.Equal(t, 2, snap.IncomeCount)
	assert.Equal(t, int64(70000), snap.AverageTicket)

	require.NotNil(t, snap.BestMonth)
	assert.Equal(t, time.February, snap.BestMonth.Month)
	assert.Equal(t, int64(80000), snap.BestMonth.Profit)

	require.NotNil(t, snap.WorstMonth)
	assert.Equal(t, time.August, snap.WorstMonth.Month)
	assert.Equal(t, int64(-60000), snap.WorstMonth.Profit)

	// Mean over the three months with non-zero profit only.
	assert.Equal(t, int64(20000), snap.MeanMonthlyProfit)

	require.NotNil(t, snap.GrowthPct)
	assert.InDelta(t, 100.0, *snap.GrowthPct, 0.0001)
}

func TestYearlySnapshot_TiesKeepFirstMonth(t *testing.T) {
	txs := []*transaction.Transaction{
		tx(transaction.TypeIncome, transaction.StatusPaid, 5000, "2024-03-01"),
		tx(transaction.TypeIncome, transaction.StatusPaid, 5000, "2024-09-01"),
	}

	snap := metrics.YearlySnapshot(txs, 2024)

	require.NotNil(t, snap.BestMonth)
	assert.Equal(t, time.March, snap.BestMonth.Month)

	require.NotNil(t, snap.WorstMonth)
	assert.Equal(t, time.January, snap.WorstMonth.Month)
}

func TestIncomeGrowth(t *testing.T) {
	type testCase struct {
		name string
		txs  []*transaction.Transaction
		want *float64
	}

	pct := func(v float64) *float64 { return &v }

	tests := []testCase{
		{
			name: "NoPriorYearData",
			txs: []*transaction.Transaction{
				tx(transaction.TypeIncome, transaction.StatusPaid, 1000, "2024-01-01"),
			},
			want: nil,
		},
		{
			name: "PriorYearOnlyPending",
			txs: []*transaction.Transaction{
				tx(transaction.TypeIncome, transaction.StatusPending, 1000, "2023-01-01"),
				tx(transaction.TypeIncome, transaction.StatusPaid, 1000, "2024-01-01"),
			},
			want: nil,
		},
		{
			name: "PriorYearPaidButZeroIncome",
			txs: []*transaction.Transaction{
				tx(transaction.TypeExpense, transaction.StatusPaid, 500, "2023-01-01"),
				tx(transaction.TypeIncome, transaction.StatusPaid, 1000, "2024-01-01"),
			},
			want: nil,
		},
		{
			name: "Growth",
			txs: []*transaction.Transaction{
				tx(transaction.TypeIncome, transaction.StatusPaid, 10000, "2023-04-01"),
				tx(transaction.TypeIncome, transaction.StatusPaid, 15000, "2024-04-01"),
			},
			want: pct(50),
		},
		{
			name: "Decline",
			txs: []*transaction.Transaction{
				tx(transaction.TypeIncome, transaction.StatusPaid, 10000, "2023-04-01"),
				tx(transaction.TypeIncome, transaction.StatusPaid, 7500, "2024-04-01"),
			},
			want: pct(-25),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := metrics.IncomeGrowth(tt.txs, 2024)

			if tt.want == nil {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 0.0001)
		})
	}
}

func TestPendingReceivables_AllTime(t *testing.T) {
	txs := []*transaction.Transaction{
		tx(transaction.TypeIncome, transaction.StatusPending, 1000, "2021-01-01"),
		tx(transaction.TypeIncome, transaction.StatusPending, 2500, "2026-12-31"),
		tx(transaction.TypeIncome, transaction.StatusPaid, 9000, "2024-01-01"),
		tx(transaction.TypeExpense, transaction.StatusPending, 700, "2024-01-01"),
	}

	assert.Equal(t, int64(3500), metrics.PendingReceivables(txs))
}

func TestComputeSeasonality(t *testing.T) {
	txs := []*transaction.Transaction{
		tx(transaction.TypeIncome, transaction.StatusPaid, 90000, "2024-10-01"),
		tx(transaction.TypeIncome, transaction.StatusPaid, 80000, "2024-05-01"),
		tx(transaction.TypeIncome, transaction.StatusPaid, 70000, "2024-12-01"),
		tx(transaction.TypeIncome, transaction.StatusPaid, 10000, "2024-02-01"),
	}

	rows := metrics.MonthlyBreakdown(txs, 2024)
	s := metrics.ComputeSeasonality(rows)

	assert.Equal(t, []time.Month{time.October, time.May, time.December}, s.Stronger)
	// Zero-income months tie; month order breaks the tie.
	assert.Equal(t, []time.Month{time.January, time.March, time.April}, s.Weaker)
}

func TestYearProjection(t *testing.T) {
	txs := []*transaction.Transaction{
		tx(transaction.TypeIncome, transaction.StatusPaid, 30000, "2024-01-15"),
		tx(transaction.TypeIncome, transaction.StatusPaid, 30000, "2024-03-15"),
		// After the current month: excluded from income-to-date.
		tx(transaction.TypeIncome, transaction.StatusPaid, 99999, "2024-11-15"),
	}

	got := metrics.YearProjection(txs, 2024, now)
	require.NotNil(t, got)
	// 60000 over 6 elapsed months -> 10000/month -> 120000/year.
	assert.Equal(t, int64(120000), *got)

	assert.Nil(t, metrics.YearProjection(txs, 2023, now))
	assert.Nil(t, metrics.YearProjection(txs, 2025, now))
}

func TestAvailableYears(t *testing.T) {
	assert.Equal(t, []int{2024}, metrics.AvailableYears(nil, now))

	txs := []*transaction.Transaction{
		tx(transaction.TypeIncome, transaction.StatusPaid, 1, "2022-01-01"),
		tx(transaction.TypeIncome, transaction.StatusPaid, 1, "2024-01-01"),
		tx(transaction.TypeIncome, transaction.StatusPaid, 1, "2022-06-01"),
	}

	assert.Equal(t, []int{2024, 2022}, metrics.AvailableYears(txs, now))
}
