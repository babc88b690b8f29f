package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"contas/internal/core"
	"contas/internal/services"
	"contas/internal/storage"
)

// statusFor maps service errors onto HTTP status codes. Domain validation
// failures are the client's fault; everything else is ours.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidFrequency),
		errors.Is(err, core.ErrInvalidColor),
		errors.Is(err, core.ErrInvalidInstallments),
		errors.Is(err, core.ErrZeroDate):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

type createTransactionRequest struct {
	Description  string `json:"description"`
	Amount       string `json:"amount"`
	Type         string `json:"type"`
	Date         string `json:"date"`
	CategoryID   *int64 `json:"categoryId"`
	GoalID       *int64 `json:"goalId"`
	Installments int    `json:"installments"`
	IsRecurring  bool   `json:"isRecurring"`
	EndDate      string `json:"endDate"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	tx, err := s.transactions.Create(r.Context(), services.CreateTransactionInput{
		Description:  sanitizeInput(req.Description),
		Amount:       req.Amount,
		Type:         core.TransactionType(strings.ToUpper(strings.TrimSpace(req.Type))),
		Date:         date,
		CategoryID:   req.CategoryID,
		GoalID:       req.GoalID,
		Installments: req.Installments,
		IsRecurring:  req.IsRecurring,
		EndDate:      endDate,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction creation failed", "error", err)
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.invalidateDashboard()
	respondData(w, http.StatusCreated, newTransactionView(*tx))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	year, month, err := monthQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	start, end := core.MonthRange(year, month)
	filter := storage.TransactionFilter{
		PeriodStart: start,
		PeriodEnd:   end,
		SettledOnly: r.URL.Query().Get("settled") == "true",
	}
	if v := strings.TrimSpace(r.URL.Query().Get("categoryId")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid categoryId")
			return
		}
		filter.CategoryID = &id
	}

	txs, err := s.transactions.List(r.Context(), filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction list failed", "error", err, "year", year, "month", int(month))
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondData(w, http.StatusOK, newTransactionViews(txs))
}

type updateTransactionRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	CategoryID  *int64 `json:"categoryId"`
	GoalID      *int64 `json:"goalId"`
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	tx, err := s.transactions.Update(r.Context(), id, services.UpdateTransactionInput{
		Description: sanitizeInput(req.Description),
		Amount:      req.Amount,
		Type:        core.TransactionType(strings.ToUpper(strings.TrimSpace(req.Type))),
		Date:        date,
		CategoryID:  req.CategoryID,
		GoalID:      req.GoalID,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction update failed", "error", err, "id", id)
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.invalidateDashboard()
	respondData(w, http.StatusOK, newTransactionView(*tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.transactions.Delete(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Transaction delete failed", "error", err, "id", id)
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.invalidateDashboard()
	respondData(w, http.StatusOK, map[string]int64{"id": id})
}

func (s *Server) handleToggleSettled(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	settled, err := s.transactions.ToggleSettled(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Settlement toggle failed", "error", err, "id", id)
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.invalidateDashboard()
	respondData(w, http.StatusOK, map[string]any{"id": id, "settled": settled})
}

type periodView struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Label string `json:"label"`
}

// handleTransactionPeriods returns every month between the oldest and newest
// transaction, newest first. An empty ledger yields the trailing twelve
// months.
func (s *Server) handleTransactionPeriods(w http.ResponseWriter, r *http.Request) {
	first, last, err := s.transactions.Periods(r.Context(), time.Now())
	if err != nil {
		slog.ErrorContext(r.Context(), "Period bounds lookup failed", "error", err)
		respondError(w, statusFor(err), err.Error())
		return
	}

	periods := []periodView{}
	cursor := time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, time.UTC)
	floor := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.Before(floor) {
		periods = append(periods, periodView{
			Year:  cursor.Year(),
			Month: int(cursor.Month()),
			Label: cursor.Format("2006-01"),
		})
		cursor = cursor.AddDate(0, -1, 0)
	}

	respondData(w, http.StatusOK, periods)
}
