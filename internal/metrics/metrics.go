// Package metrics turns a tenant's transaction log into period
// rollups, projections and seasonality. Every function is pure: the
// log and the current date come in as parameters, nothing is read
// from the environment and nothing is persisted.
package metrics

import (
	"slices"
	"time"

	"github.com/danielcasamentos/priceus-sub002/internal/civil"
	"github.com/danielcasamentos/priceus-sub002/internal/transaction"
)

// Snapshot is the rollup for one month.
//
// For a month strictly in the future the primary figures sum pending
// transactions, since nothing can yet be paid. For the current or a
// past month they sum paid transactions, and PendingIncome /
// PendingExpense carry the same month's still-pending amounts as a
// separate informational figure, never mixed into the primary totals.
type Snapshot struct {
	Year           int
	Month          time.Month
	Income         int64
	Expense        int64
	Profit         int64
	IncomeCount    int
	AverageTicket  int64
	PendingIncome  int64
	PendingExpense int64
	IsFuture       bool
}

// MonthRow is one line of the month-by-month breakdown (paid basis).
type MonthRow struct {
	Month       time.Month
	Income      int64
	Expense     int64
	Profit      int64
	IncomeCount int
}

// MonthProfit names a month and its paid-only profit.
type MonthProfit struct {
	Month  time.Month
	Profit int64
}

// YearSnapshot is the rollup for one calendar year, paid basis.
type YearSnapshot struct {
	Year              int
	Income            int64
	Expense           int64
	Profit            int64
	IncomeCount       int
	AverageTicket     int64
	BestMonth         *MonthProfit
	WorstMonth        *MonthProfit
	MeanMonthlyProfit int64
	// GrowthPct is year-over-year income growth in percent. Nil when
	// the prior year has no paid transactions or zero paid income.
	GrowthPct *float64
}

// Seasonality splits the year into its strongest and weakest months
// by paid income.
type Seasonality struct {
	Stronger []time.Month
	Weaker   []time.Month
}

func inMonth(tx *transaction.Transaction, year int, month time.Month) bool {
	return tx.Date.Year == year && tx.Date.Month == month
}

func inYear(tx *transaction.Transaction, year int) bool {
	return tx.Date.Year == year
}

// MonthlySnapshot computes the rollup for (year, month) relative to
// now.
func MonthlySnapshot(txs []*transaction.Transaction, year int, month time.Month, now civil.Date) Snapshot {
	future := year > now.Year || (year == now.Year && month > now.Month)

	basis := transaction.StatusPaid
	if future {
		basis = transaction.StatusPending
	}

	snap := Snapshot{Year: year, Month: month, IsFuture: future}

	for _, tx := range txs {
		if !inMonth(tx, year, month) {
			continue
		}

		if tx.Status == basis {
			switch tx.Type {
			case transaction.TypeIncome:
				snap.Income += tx.Amount
				snap.IncomeCount++
			case transaction.TypeExpense:
				snap.Expense += tx.Amount
			}
		}

		if !future && tx.Status == transaction.StatusPending {
			switch tx.Type {
			case transaction.TypeIncome:
				snap.PendingIncome += tx.Amount
			case transaction.TypeExpense:
				snap.PendingExpense += tx.Amount
			}
		}
	}

	snap.Profit = snap.Income - snap.Expense
	if snap.IncomeCount > 0 {
		snap.AverageTicket = snap.Income / int64(snap.IncomeCount)
	}

	return snap
}

// MonthlyBreakdown computes paid-only rows for all 12 months of the
// year. Always returns exactly 12 rows, January through December,
// zero-filled where no data exists.
func MonthlyBreakdown(txs []*transaction.Transaction, year int) []MonthRow {
	rows := make([]MonthRow, 12)
	for i := range rows {
		rows[i].Month = time.Month(i + 1)
	}

	for _, tx := range txs {
		if !inYear(tx, year) || tx.Status != transaction.StatusPaid {
			continue
		}

		row := &rows[int(tx.Date.Month)-1]

		switch tx.Type {
		case transaction.TypeIncome:
			row.Income += tx.Amount
			row.IncomeCount++
		case transaction.TypeExpense:
			row.Expense += tx.Amount
		}
	}

	for i := range rows {
		rows[i].Profit = rows[i].Income - rows[i].Expense
	}

	return rows
}

// YearlySnapshot computes the paid-only rollup for a calendar year.
func YearlySnapshot(txs []*transaction.Transaction, year int) YearSnapshot {
	rows := MonthlyBreakdown(txs, year)

	snap := YearSnapshot{Year: year}

	for _, row := range rows {
		snap.Income += row.Income
		snap.Expense += row.Expense
		snap.IncomeCount += row.IncomeCount
	}

	snap.Profit = snap.Income - snap.Expense
	if snap.IncomeCount > 0 {
		snap.AverageTicket = snap.Income / int64(snap.IncomeCount)
	}

	best := rows[0]
	worst := rows[0]

	for _, row := range rows[1:] {
		// Strict comparisons keep the first occurrence on ties.
		if row.Profit > best.Profit {
			best = row
		}

		if row.Profit < worst.Profit {
			worst = row
		}
	}

	snap.BestMonth = &MonthProfit{Month: best.Month, Profit: best.Profit}
	snap.WorstMonth = &MonthProfit{Month: worst.Month, Profit: worst.Profit}

	// Mean over months with any non-zero profit; zero-profit months
	// are excluded from the denominator.
	var profitSum int64

	var activeMonths int64

	for _, row := range rows {
		if row.Profit != 0 {
			profitSum += row.Profit
			activeMonths++
		}
	}

	if activeMonths > 0 {
		snap.MeanMonthlyProfit = profitSum / activeMonths
	}

	snap.GrowthPct = IncomeGrowth(txs, year)

	return snap
}

// IncomeGrowth returns year-over-year paid income growth in percent,
// or nil when the prior year has no paid transactions or zero paid
// income.
func IncomeGrowth(txs []*transaction.Transaction, year int) *float64 {
	var current, prior int64

	priorHasPaid := false

	for _, tx := range txs {
		if tx.Status != transaction.StatusPaid {
			continue
		}

		switch tx.Date.Year {
		case year:
			if tx.Type == transaction.TypeIncome {
				current += tx.Amount
			}
		case year - 1:
			priorHasPaid = true

			if tx.Type == transaction.TypeIncome {
				prior += tx.Amount
			}
		}
	}

	if !priorHasPaid || prior == 0 {
		return nil
	}

	growth := float64(current-prior) / float64(prior) * 100

	return &growth
}

// PendingReceivables sums every pending income transaction across all
// time, the running "money owed" figure.
func PendingReceivables(txs []*transaction.Transaction) int64 {
	var total int64

	for _, tx := range txs {
		if tx.Type == transaction.TypeIncome && tx.Status == transaction.StatusPending {
			total += tx.Amount
		}
	}

	return total
}

// ComputeSeasonality classifies the 3 highest-income months as
// stronger and the 3 lowest as weaker. Ties keep month order.
func ComputeSeasonality(rows []MonthRow) Seasonality {
	// Stable sorts so equal incomes stay in month order.
	desc := slices.Clone(rows)
	slices.SortStableFunc(desc, func(a, b MonthRow) int {
		switch {
		case a.Income > b.Income:
			return -1
		case a.Income < b.Income:
			return 1
		default:
			return 0
		}
	})

	asc := slices.Clone(rows)
	slices.SortStableFunc(asc, func(a, b MonthRow) int {
		switch {
		case a.Income < b.Income:
			return -1
		case a.Income > b.Income:
			return 1
		default:
			return 0
		}
	})

	s := Seasonality{}

	for _, row := range desc[:3] {
		s.Stronger = append(s.Stronger, row.Month)
	}

	for _, row := range asc[:3] {
		s.Weaker = append(s.Weaker, row.Month)
	}

	return s
}

// YearProjection projects annual paid income for the current year:
// income from January through the current month, averaged per month,
// times 12. Returns nil for any other year.
func YearProjection(txs []*transaction.Transaction, year int, now civil.Date) *int64 {
	if year != now.Year || now.Month == 0 {
		return nil
	}

	var incomeToDate int64

	for _, tx := range txs {
		if !inYear(tx, year) || tx.Status != transaction.StatusPaid || tx.Type != transaction.TypeIncome {
			continue
		}

		if tx.Date.Month <= now.Month {
			incomeToDate += tx.Amount
		}
	}

	projection := incomeToDate / int64(now.Month) * 12

	return &projection
}

// AvailableYears lists the distinct years present in the log, newest
// first, defaulting to the current year for an empty log.
func AvailableYears(txs []*transaction.Transaction, now civil.Date) []int {
	seen := make(map[int]struct{})

	for _, tx := range txs {
		seen[tx.Date.Year] = struct{}{}
	}

	if len(seen) == 0 {
		return []int{now.Year}
	}

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}

	slices.SortFunc(years, func(a, b int) int { return b - a })

	return years
}
