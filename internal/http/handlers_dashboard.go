package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"contas/internal/core"
	"contas/internal/storage"
)

func dashboardKey(year int, month int, settledOnly bool) string {
	key := strconv.Itoa(year) + "-" + strconv.Itoa(month)
	if settledOnly {
		key += "-settled"
	}
	return key
}

// handleDashboard serves the monthly aggregate: balance, totals, recent
// transactions, and the most used categories. Results are cached per month.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	year, month, err := monthQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	settledOnly := r.URL.Query().Get("settled") == "true"
	key := dashboardKey(year, int(month), settledOnly)
	if view, found := s.dashCache.Get(key); found {
		slog.DebugContext(r.Context(), "Dashboard cache hit", "year", year, "month", int(month))
		respondData(w, http.StatusOK, view)
		return
	}

	start, end := core.MonthRange(year, month)
	sum, err := s.transactions.Summarize(r.Context(), storage.TransactionFilter{
		PeriodStart: start,
		PeriodEnd:   end,
		SettledOnly: settledOnly,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard aggregation failed", "error", err, "year", year, "month", int(month))
		respondError(w, statusFor(err), err.Error())
		return
	}

	view := dashboardView{
		BalanceCents:      sum.Balance,
		Balance:           core.FormatCents(sum.Balance),
		TotalIncomeCents:  sum.TotalIncome,
		TotalIncome:       core.FormatCents(sum.TotalIncome),
		TotalExpenseCents: sum.TotalExpense,
		TotalExpense:      core.FormatCents(sum.TotalExpense),
		Recent:            newTransactionViews(sum.RecentTransactions),
		TopCategories:     newCategoryCountViews(sum.TopCategories),
	}

	s.dashCache.Set(key, view)
	respondData(w, http.StatusOK, view)
}
