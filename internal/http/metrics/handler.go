package metrics

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/danielcasamentos/priceus-sub002/internal/category"
	"github.com/danielcasamentos/priceus-sub002/internal/civil"
	internalhttp "github.com/danielcasamentos/priceus-sub002/internal/http"
	"github.com/danielcasamentos/priceus-sub002/internal/insights"
	"github.com/danielcasamentos/priceus-sub002/internal/metrics"
	"github.com/danielcasamentos/priceus-sub002/internal/transaction"
)

type Handler struct {
	transactions *transaction.Service
	categories   *category.Service
	now          func() time.Time
}

func NewHandler(transactions *transaction.Service, categories *category.Service) *Handler {
	return &Handler{
		transactions: transactions,
		categories:   categories,
		now:          time.Now,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/monthly", h.monthly)
	r.Get("/yearly", h.yearly)
	r.Get("/breakdown", h.breakdown)
	r.Get("/receivables", h.receivables)
	r.Get("/years", h.years)
	r.Get("/insights", h.insights)
}

func (h *Handler) today() civil.Date {
	return civil.DateOf(h.now().UTC())
}

func (h *Handler) load(r *http.Request) ([]*transaction.Transaction, error) {
	return h.transactions.List(r.Context(), transaction.ListFilter{
		UserID: internalhttp.UserID(r.Context()),
	})
}

// yearMonth reads year and month query params, defaulting to the
// current period.
func (h *Handler) yearMonth(r *http.Request) (int, time.Month) {
	now := h.today()

	year := now.Year
	if s := r.URL.Query().Get("year"); s != "" {
		if y, err := strconv.Atoi(s); err == nil {
			year = y
		}
	}

	month := now.Month
	if s := r.URL.Query().Get("month"); s != "" {
		if m, err := strconv.Atoi(s); err == nil && m >= 1 && m <= 12 {
			month = time.Month(m)
		}
	}

	return year, month
}

type monthlyResponse struct {
	Year           int    `json:"year"`
	Month          int    `json:"month"`
	Income         int64  `json:"income"`
	Expense        int64  `json:"expense"`
	Profit         int64  `json:"profit"`
	IncomeCount    int    `json:"income_count"`
	AverageTicket  int64  `json:"average_ticket"`
	PendingIncome  int64  `json:"pending_income"`
	PendingExpense int64  `json:"pending_expense"`
	IsFuture       bool   `json:"is_future"`
}

func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) {
	txs, err := h.load(r)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	year, month := h.yearMonth(r)
	snap := metrics.MonthlySnapshot(txs, year, month, h.today())

	writeJSON(w, monthlyResponse{
		Year:           snap.Year,
		Month:          int(snap.Month),
		Income:         snap.Income,
		Expense:        snap.Expense,
		Profit:         snap.Profit,
		IncomeCount:    snap.IncomeCount,
		AverageTicket:  snap.AverageTicket,
		PendingIncome:  snap.PendingIncome,
		PendingExpense: snap.PendingExpense,
		IsFuture:       snap.IsFuture,
	})
}

type monthProfitResponse struct {
	Month  int   `json:"month"`
	Profit int64 `json:"profit"`
}

type yearlyResponse struct {
	Year              int                  `json:"year"`
	Income            int64                `json:"income"`
	Expense           int64                `json:"expense"`
	Profit            int64                `json:"profit"`
	IncomeCount       int                  `json:"income_count"`
	AverageTicket     int64                `json:"average_ticket"`
	BestMonth         *monthProfitResponse `json:"best_month,omitempty"`
	WorstMonth        *monthProfitResponse `json:"worst_month,omitempty"`
	MeanMonthlyProfit int64                `json:"mean_monthly_profit"`
	GrowthPct         *float64             `json:"growth_pct,omitempty"`
	StrongerMonths    []int                `json:"stronger_months"`
	WeakerMonths      []int                `json:"weaker_months"`
	Projection        *int64               `json:"projection,omitempty"`
}

func (h *Handler) yearly(w http.ResponseWriter, r *http.Request) {
	txs, err := h.load(r)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	year, _ := h.yearMonth(r)
	now := h.today()

	snap := metrics.YearlySnapshot(txs, year)
	season := metrics.ComputeSeasonality(metrics.MonthlyBreakdown(txs, year))

	resp := yearlyResponse{
		Year:              snap.Year,
		Income:            snap.Income,
		Expense:           snap.Expense,
		Profit:            snap.Profit,
		IncomeCount:       snap.IncomeCount,
		AverageTicket:     snap.AverageTicket,
		MeanMonthlyProfit: snap.MeanMonthlyProfit,
		GrowthPct:         snap.GrowthPct,
		StrongerMonths:    months(season.Stronger),
		WeakerMonths:      months(season.Weaker),
		Projection:        metrics.YearProjection(txs, year, now),
	}

	if snap.BestMonth != nil {
		resp.BestMonth = &monthProfitResponse{Month: int(snap.BestMonth.Month), Profit: snap.BestMonth.Profit}
	}

	if snap.WorstMonth != nil {
		resp.WorstMonth = &monthProfitResponse{Month: int(snap.WorstMonth.Month), Profit: snap.WorstMonth.Profit}
	}

	writeJSON(w, resp)
}

func months(ms []time.Month) []int {
	out := make([]int, len(ms))
	for i, m := range ms {
		out[i] = int(m)
	}

	return out
}

type monthRowResponse struct {
	Month       int   `json:"month"`
	Income      int64 `json:"income"`
	Expense     int64 `json:"expense"`
	Profit      int64 `json:"profit"`
	IncomeCount int   `json:"income_count"`
}

func (h *Handler) breakdown(w http.ResponseWriter, r *http.Request) {
	txs, err := h.load(r)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	year, _ := h.yearMonth(r)

	rows := metrics.MonthlyBreakdown(txs, year)

	resp := make([]monthRowResponse, len(rows))
	for i, row := range rows {
		resp[i] = monthRowResponse{
			Month:       int(row.Month),
			Income:      row.Income,
			Expense:     row.Expense,
			Profit:      row.Profit,
			IncomeCount: row.IncomeCount,
		}
	}

	writeJSON(w, resp)
}

type receivablesResponse struct {
	Total int64 `json:"total"`
}

func (h *Handler) receivables(w http.ResponseWriter, r *http.Request) {
	txs, err := h.load(r)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, receivablesResponse{Total: metrics.PendingReceivables(txs)})
}

type yearsResponse struct {
	Years []int `json:"years"`
}

func (h *Handler) years(w http.ResponseWriter, r *http.Request) {
	txs, err := h.load(r)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, yearsResponse{Years: metrics.AvailableYears(txs, h.today())})
}

type insightResponse struct {
	Severity insights.Severity `json:"severity"`
	Title    string            `json:"title"`
	Message  string            `json:"message"`
}

func (h *Handler) insights(w http.ResponseWriter, r *http.Request) {
	txs, err := h.load(r)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	cats, err := h.categories.List(r.Context(), internalhttp.UserID(r.Context()))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	year, month := h.yearMonth(r)

	generated := insights.Generate(txs, cats, year, month, h.today())

	resp := make([]insightResponse, len(generated))
	for i, in := range generated {
		resp[i] = insightResponse{Severity: in.Severity, Title: in.Title, Message: in.Message}
	}

	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
