package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/finsight/finsight/internal/api/middleware"
	"github.com/finsight/finsight/internal/domain"
	"github.com/finsight/finsight/internal/store"
)

type goalRequest struct {
	Name            string   `json:"name"`
	TargetAmount    float64  `json:"target_amount"`
	Deadline        string   `json:"deadline"`
	ManualAllocated *float64 `json:"manual_allocated,omitempty"`
}

func (g *goalRequest) validate() string {
	if g.Name == "" {
		return "name is required"
	}
	if g.TargetAmount <= 0 {
		return "target_amount must be positive"
	}
	if _, err := time.Parse("2006-01-02", g.Deadline); err != nil {
		return "deadline must be YYYY-MM-DD"
	}
	if g.ManualAllocated != nil && *g.ManualAllocated < 0 {
		return "manual_allocated must not be negative"
	}
	return ""
}

// goalProgress is a goal enriched with allocation status.
type goalProgress struct {
	*domain.Goal
	Allocated             float64 `json:"allocated"`
	Remaining             float64 `json:"remaining"`
	ProgressPercent       float64 `json:"progress_percent"`
	MonthsLeft            int     `json:"months_left"`
	RequiredMonthlySaving float64 `json:"required_monthly_saving"`
}

// createGoal handles POST /api/goals.
func (a *API) createGoal(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		middleware.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	goal := &domain.Goal{
		ID:              uuid.NewString(),
		Name:            req.Name,
		TargetAmount:    req.TargetAmount,
		Deadline:        req.Deadline,
		ManualAllocated: req.ManualAllocated,
		CreatedAt:       time.Now().UTC(),
	}

	if err := a.store.PutGoal(r.Context(), userID, goal); err != nil {
		a.log.Error().Err(err).Str("user_id", userID).Msg("failed to create goal")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to create goal")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, goal)
}

// updateGoal handles PUT /api/goals/{id}. CreatedAt is preserved so
// allocation eligibility does not shift on edits.
func (a *API) updateGoal(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	goalID := r.PathValue("id")

	existing, err := a.store.GetGoal(r.Context(), userID, goalID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "goal not found")
		return
	}
	if err != nil {
		a.log.Error().Err(err).Str("goal_id", goalID).Msg("failed to load goal")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to load goal")
		return
	}

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		middleware.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	existing.Name = req.Name
	existing.TargetAmount = req.TargetAmount
	existing.Deadline = req.Deadline
	existing.ManualAllocated = req.ManualAllocated

	if err := a.store.PutGoal(r.Context(), userID, existing); err != nil {
		a.log.Error().Err(err).Str("goal_id", goalID).Msg("failed to update goal")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to update goal")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, existing)
}

// deleteGoal handles DELETE /api/goals/{id}.
func (a *API) deleteGoal(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	goalID := r.PathValue("id")

	err := a.store.DeleteGoal(r.Context(), userID, goalID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "goal not found")
		return
	}
	if err != nil {
		a.log.Error().Err(err).Str("goal_id", goalID).Msg("failed to delete goal")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to delete goal")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// listGoals handles GET /api/goals: every goal with its allocation progress.
// Allocated sums the stored contribution records, manual and auto alike.
func (a *API) listGoals(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	goalList, err := a.store.ListGoals(r.Context(), userID)
	if err != nil {
		a.log.Error().Err(err).Str("user_id", userID).Msg("failed to list goals")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to list goals")
		return
	}

	contribs, err := a.store.ListContributions(r.Context(), userID)
	if err != nil {
		a.log.Error().Err(err).Str("user_id", userID).Msg("failed to list contributions")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to list goals")
		return
	}

	allocatedByGoal := make(map[string]float64)
	for _, c := range contribs {
		allocatedByGoal[c.GoalID] += c.Allocated
	}

	enriched := make([]*goalProgress, 0, len(goalList))
	for _, g := range goalList {
		enriched = append(enriched, progressFor(g, allocatedByGoal[g.ID], time.Now()))
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"goals": enriched})
}

// reallocate handles POST /api/goals/allocate: recomputes contributions
// from every stored transaction.
func (a *API) reallocate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	if err := a.allocator.AllocateAll(r.Context(), userID); err != nil {
		a.log.Error().Err(err).Str("user_id", userID).Msg("reallocation failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to allocate goals")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func progressFor(g *domain.Goal, allocated float64, now time.Time) *goalProgress {
	remaining := g.TargetAmount - allocated

	progress := 0.0
	if g.TargetAmount > 0 {
		progress = math.Round(allocated/g.TargetAmount*10000) / 100
	}

	monthsLeft := monthsUntil(g.Deadline, now)
	required := remaining
	if monthsLeft > 0 {
		required = math.Round(remaining/float64(monthsLeft)*100) / 100
	}

	return &goalProgress{
		Goal:                  g,
		Allocated:             allocated,
		Remaining:             remaining,
		ProgressPercent:       progress,
		MonthsLeft:            monthsLeft,
		RequiredMonthlySaving: required,
	}
}

// monthsUntil approximates whole months to the deadline, never below one so
// the required-saving division stays meaningful for overdue goals.
func monthsUntil(deadline string, now time.Time) int {
	d, err := time.Parse("2006-01-02", deadline)
	if err != nil {
		return 1
	}
	months := int(d.Sub(now).Hours() / 24 / 30)
	if months < 1 {
		return 1
	}
	return months
}
