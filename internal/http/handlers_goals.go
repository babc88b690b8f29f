package http

import (
	"log/slog"
	"net/http"

	"contas/internal/services"
)

type createGoalRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	TargetAmount string `json:"targetAmount"`
	TargetDate   string `json:"targetDate"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	targetDate, err := parseDate(req.TargetDate)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	goal, err := s.goals.Create(r.Context(), services.CreateGoalInput{
		Title:        sanitizeInput(req.Title),
		Description:  sanitizeInput(req.Description),
		TargetAmount: req.TargetAmount,
		TargetDate:   targetDate,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "Goal creation failed", "error", err)
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondData(w, http.StatusCreated, newGoalView(*goal))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.goals.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Goal list failed", "error", err)
		respondError(w, statusFor(err), err.Error())
		return
	}

	views := make([]goalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, newGoalView(g))
	}
	respondData(w, http.StatusOK, views)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	goal, err := s.goals.Get(r.Context(), id)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondData(w, http.StatusOK, newGoalView(*goal))
}

// handleDeleteGoal removes a goal; its contributing transactions survive,
// unlinked.
func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.goals.Delete(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Goal delete failed", "error", err, "id", id)
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondData(w, http.StatusOK, map[string]int64{"id": id})
}
