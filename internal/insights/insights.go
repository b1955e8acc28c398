// Package insights derives short human-readable observations from a
// tenant's transaction log. Deterministic given the log, the category
// list, the (year, month) focus and the current date.
package insights

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/danielcasamentos/priceus-sub002/internal/category"
	"github.com/danielcasamentos/priceus-sub002/internal/civil"
	"github.com/danielcasamentos/priceus-sub002/internal/metrics"
	"github.com/danielcasamentos/priceus-sub002/internal/money"
	"github.com/danielcasamentos/priceus-sub002/internal/transaction"
)

// Severity classifies an insight for display.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityNeutral Severity = "neutral"
)

// Insight is one observation, ranked by Weight (higher first).
type Insight struct {
	Severity Severity
	Title    string
	Message  string
	Weight   int
}

const maxInsights = 8

// Fixed priority weights, one per rule.
const (
	weightOverduePending   = 100
	weightIncomeSwing      = 90
	weightExpenseSwing     = 85
	weightGrowth           = 80
	weightBestMonth        = 70
	weightProjection       = 60
	weightTopIncomeCat     = 55
	weightTopExpenseCat    = 50
	overduePendingDays     = 30
	incomeSwingThresholdPc = 20.0
	expenseSwingThreshold  = 30.0
)

// Generate evaluates every rule against the log and returns the
// firing insights sorted by weight, truncated to the top 8.
func Generate(txs []*transaction.Transaction, cats []category.Category, year int, month time.Month, now civil.Date) []Insight {
	var out []Insight

	appendIf := func(ins *Insight) {
		if ins != nil {
			out = append(out, *ins)
		}
	}

	appendIf(overduePending(txs, now))
	appendIf(incomeSwing(txs, year, month))
	appendIf(expenseSwing(txs, year, month))
	appendIf(bestMonth(txs, year))
	appendIf(projection(txs, year, now))
	appendIf(topExpenseCategory(txs, cats, year, month))
	appendIf(topIncomeCategory(txs, cats, year))
	appendIf(growth(txs, year))

	slices.SortStableFunc(out, func(a, b Insight) int {
		return b.Weight - a.Weight
	})

	if len(out) > maxInsights {
		out = out[:maxInsights]
	}

	return out
}

// Rule 1: pending income older than 30 days.
func overduePending(txs []*transaction.Transaction, now civil.Date) *Insight {
	var count int

	var total int64

	for _, tx := range txs {
		if tx.Type != transaction.TypeIncome || tx.Status != transaction.StatusPending {
			continue
		}

		if now.DaysSince(tx.Date) > overduePendingDays {
			count++
			total += tx.Amount
		}
	}

	if count == 0 {
		return nil
	}

	return &Insight{
		Severity: SeverityWarning,
		Title:    "Recebimentos atrasados",
		Message: fmt.Sprintf("Você tem %d recebimento(s) pendente(s) há mais de 30 dias, totalizando %s.",
			count, money.FormatBRL(total)),
		Weight: weightOverduePending,
	}
}

func paidMonthTotal(txs []*transaction.Transaction, year int, month time.Month, typ transaction.Type) int64 {
	var total int64

	for _, tx := range txs {
		if tx.Date.Year == year && tx.Date.Month == month &&
			tx.Status == transaction.StatusPaid && tx.Type == typ {
			total += tx.Amount
		}
	}

	return total
}

// Rule 2: focused month's paid income vs the month before.
func incomeSwing(txs []*transaction.Transaction, year int, month time.Month) *Insight {
	prev := civil.Date{Year: year, Month: month, Day: 1}.AddMonths(-1)

	current := paidMonthTotal(txs, year, month, transaction.TypeIncome)
	prior := paidMonthTotal(txs, prev.Year, prev.Month, transaction.TypeIncome)

	if prior == 0 {
		return nil
	}

	change := float64(current-prior) / float64(prior) * 100

	switch {
	case change < -incomeSwingThresholdPc:
		return &Insight{
			Severity: SeverityWarning,
			Title:    "Queda no faturamento",
			Message: fmt.Sprintf("Seu faturamento deste mês está %.0f%% abaixo do mês anterior (%s contra %s).",
				-change, money.FormatBRL(current), money.FormatBRL(prior)),
			Weight: weightIncomeSwing,
		}
	case change > incomeSwingThresholdPc:
		return &Insight{
			Severity: SeveritySuccess,
			Title:    "Faturamento em alta",
			Message: fmt.Sprintf("Seu faturamento deste mês está %.0f%% acima do mês anterior (%s contra %s).",
				change, money.FormatBRL(current), money.FormatBRL(prior)),
			Weight: weightIncomeSwing,
		}
	}

	return nil
}

// Rule 3: focused month's paid expense vs the month before.
func expenseSwing(txs []*transaction.Transaction, year int, month time.Month) *Insight {
	prev := civil.Date{Year: year, Month: month, Day: 1}.AddMonths(-1)

	current := paidMonthTotal(txs, year, month, transaction.TypeExpense)
	prior := paidMonthTotal(txs, prev.Year, prev.Month, transaction.TypeExpense)

	if prior == 0 {
		return nil
	}

	change := float64(current-prior) / float64(prior) * 100
	if change <= expenseSwingThreshold {
		return nil
	}

	return &Insight{
		Severity: SeverityWarning,
		Title:    "Despesas em alta",
		Message: fmt.Sprintf("Suas despesas deste mês estão %.0f%% acima do mês anterior (%s contra %s).",
			change, money.FormatBRL(current), money.FormatBRL(prior)),
		Weight: weightExpenseSwing,
	}
}

// Rule 4: best positive-profit month of the selected year.
func bestMonth(txs []*transaction.Transaction, year int) *Insight {
	rows := metrics.MonthlyBreakdown(txs, year)

	best := rows[0]
	for _, row := range rows[1:] {
		if row.Profit > best.Profit {
			best = row
		}
	}

	if best.Profit <= 0 {
		return nil
	}

	return &Insight{
		Severity: SeveritySuccess,
		Title:    "Melhor mês do ano",
		Message: fmt.Sprintf("%s foi seu mês mais lucrativo de %d, com %s de lucro.",
			monthNamePT(best.Month), year, money.FormatBRL(best.Profit)),
		Weight: weightBestMonth,
	}
}

// Rule 5: year projection, current year only.
func projection(txs []*transaction.Transaction, year int, now civil.Date) *Insight {
	proj := metrics.YearProjection(txs, year, now)
	if proj == nil || *proj == 0 {
		return nil
	}

	return &Insight{
		Severity: SeverityInfo,
		Title:    "Projeção anual",
		Message: fmt.Sprintf("Mantendo o ritmo atual, seu faturamento projetado para %d é de %s.",
			year, money.FormatBRL(*proj)),
		Weight: weightProjection,
	}
}

type categoryTotal struct {
	id    uuid.UUID
	total int64
}

func topCategory(txs []*transaction.Transaction, typ transaction.Type, match func(*transaction.Transaction) bool) *categoryTotal {
	totals := make(map[uuid.UUID]int64)

	order := make([]uuid.UUID, 0)

	for _, tx := range txs {
		if tx.Type != typ || tx.Status != transaction.StatusPaid || tx.CategoryID == nil {
			continue
		}

		if !match(tx) {
			continue
		}

		if _, ok := totals[*tx.CategoryID]; !ok {
			order = append(order, *tx.CategoryID)
		}

		totals[*tx.CategoryID] += tx.Amount
	}

	var top *categoryTotal

	// Iterate in first-seen order so ties are deterministic.
	for _, id := range order {
		if top == nil || totals[id] > top.total {
			top = &categoryTotal{id: id, total: totals[id]}
		}
	}

	if top == nil || top.total == 0 {
		return nil
	}

	return top
}

func categoryName(cats []category.Category, id uuid.UUID) string {
	for _, c := range cats {
		if c.ID == id {
			return c.Name
		}
	}

	return "Sem categoria"
}

// Rule 6: category with the highest focused-month expense.
func topExpenseCategory(txs []*transaction.Transaction, cats []category.Category, year int, month time.Month) *Insight {
	top := topCategory(txs, transaction.TypeExpense, func(tx *transaction.Transaction) bool {
		return tx.Date.Year == year && tx.Date.Month == month
	})
	if top == nil {
		return nil
	}

	return &Insight{
		Severity: SeverityNeutral,
		Title:    "Maior despesa do mês",
		Message: fmt.Sprintf("Sua maior despesa deste mês é com %s: %s.",
			categoryName(cats, top.id), money.FormatBRL(top.total)),
		Weight: weightTopExpenseCat,
	}
}

// Rule 7: category with the highest selected-year income.
func topIncomeCategory(txs []*transaction.Transaction, cats []category.Category, year int) *Insight {
	top := topCategory(txs, transaction.TypeIncome, func(tx *transaction.Transaction) bool {
		return tx.Date.Year == year
	})
	if top == nil {
		return nil
	}

	return &Insight{
		Severity: SeveritySuccess,
		Title:    "Principal fonte de renda",
		Message: fmt.Sprintf("%s é sua principal fonte de renda em %d, com %s.",
			categoryName(cats, top.id), year, money.FormatBRL(top.total)),
		Weight: weightTopIncomeCat,
	}
}

// Rule 8: year-over-year income growth or decline.
func growth(txs []*transaction.Transaction, year int) *Insight {
	g := metrics.IncomeGrowth(txs, year)
	if g == nil || *g == 0 {
		return nil
	}

	if *g > 0 {
		return &Insight{
			Severity: SeveritySuccess,
			Title:    "Crescimento anual",
			Message: fmt.Sprintf("Seu faturamento cresceu %.0f%% em relação a %d.",
				*g, year-1),
			Weight: weightGrowth,
		}
	}

	return &Insight{
		Severity: SeverityWarning,
		Title:    "Retração anual",
		Message: fmt.Sprintf("Seu faturamento caiu %.0f%% em relação a %d.",
			-*g, year-1),
		Weight: weightGrowth,
	}
}

var monthNamesPT = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

func monthNamePT(m time.Month) string {
	return monthNamesPT[m-1]
}
