package http

import (
	"log/slog"
	"net/http"
	"time"

	"contas/internal/core"
)

type createRecurringRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	CategoryID  *int64 `json:"categoryId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// handleCreateRecurring registers a standalone monthly series. Nothing is
// materialized up front; the first occurrence appears on the next scheduler
// pass once the start date is due.
func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req createRecurringRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	rec := &core.RecurringTransaction{
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: cents},
		Type:        core.Expense,
		CategoryID:  req.CategoryID,
		Frequency:   core.Monthly,
		StartDate:   core.StartOfDay(start),
		NextDueDate: core.StartOfDay(start),
		EndDate:     endDate,
		Active:      true,
	}
	if err := rec.Validate(); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	if _, err := s.store.CreateRecurring(r.Context(), rec); err != nil {
		slog.ErrorContext(r.Context(), "Recurring series creation failed", "error", err)
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondData(w, http.StatusCreated, newRecurringView(*rec))
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	recs, err := s.store.ListRecurring(r.Context(), activeOnly)
	if err != nil {
		slog.ErrorContext(r.Context(), "Recurring list failed", "error", err)
		respondError(w, statusFor(err), err.Error())
		return
	}

	views := make([]recurringView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, newRecurringView(rec))
	}
	respondData(w, http.StatusOK, views)
}

// handleDeactivateRecurring retires a series. Deactivation is terminal;
// already-materialized transactions are untouched.
func (s *Server) handleDeactivateRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.DeactivateRecurring(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Recurring deactivation failed", "error", err, "id", id)
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondData(w, http.StatusOK, map[string]int64{"id": id})
}

// handleProcessRecurring runs one scheduler pass over the due series. The
// endpoint is meant for external cron triggers and is gated by a shared
// secret.
func (s *Server) handleProcessRecurring(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeCron(r) {
		slog.WarnContext(r.Context(), "Unauthorized scheduler trigger", "client_ip", r.RemoteAddr)
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	res, err := s.scheduler.ProcessDue(r.Context(), time.Now())
	if err != nil {
		slog.ErrorContext(r.Context(), "Scheduler pass failed", "error", err)
		respondError(w, statusFor(err), err.Error())
		return
	}

	if res.Created > 0 {
		s.invalidateDashboard()
	}
	respondData(w, http.StatusOK, res)
}
