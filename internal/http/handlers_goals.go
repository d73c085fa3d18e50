package http

import (
	"net/http"
	"time"

	"askcents/internal/core"
	"askcents/internal/goals"
	applog "askcents/internal/log"
)

type goalView struct {
	core.Goal
	Progress int     `json:"progress"`
	Forecast int     `json:"forecast_months"`
	Left     float64 `json:"remaining"`
}

type createGoalRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	TargetAmount  float64 `json:"target_amount"`
	CurrentAmount float64 `json:"current_amount"`
	DeadlineLabel string  `json:"deadline_label"`
	CategoryTag   string  `json:"category_tag"`
	// MonthlySaving feeds the forecast in the response only.
	MonthlySaving float64 `json:"monthly_saving"`
}

type progressRequest struct {
	CurrentAmount *float64 `json:"current_amount"`
}

// toGoalView decorates g with derived fields. The daily tip is derived
// against the newest analysis this process has built, or from the goal alone
// before the first build.
func (s *Server) toGoalView(g core.Goal, monthly float64) goalView {
	var vm core.InsightsViewModel
	if snap, ok := s.latest.Get(); ok {
		vm = snap.Insights
	}
	g.DailyTip = goals.DailyTip(g, vm, time.Now())
	return goalView{
		Goal:     g,
		Progress: goals.Progress(g),
		Forecast: goals.Forecast(g, monthly),
		Left:     core.RoundCents(g.Remaining()),
	}
}

// monthlyHint is the contribution used for list forecasts: the current
// micro-investment amount when known.
func (s *Server) monthlyHint() float64 {
	if snap, ok := s.latest.Get(); ok {
		return snap.Insights.MicroInvestment.MonthlyAmount
	}
	return 0
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	gs, err := s.deps.Goals.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	monthly := s.monthlyHint()
	out := make([]goalView, 0, len(gs))
	for _, g := range gs {
		out = append(out, s.toGoalView(g, monthly))
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": out})
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	g, err := s.deps.Goals.Create(r.Context(), core.Goal{
		Title:         sanitizeInput(req.Title),
		Description:   sanitizeInput(req.Description),
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		DeadlineLabel: sanitizeInput(req.DeadlineLabel),
		CategoryTag:   core.GoalCategory(sanitizeInput(req.CategoryTag)),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Goal created via API",
		applog.FieldGoalID, g.ID,
		applog.FieldOperation, applog.OpCreate)
	writeJSON(w, http.StatusCreated, s.toGoalView(g, req.MonthlySaving))
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.deps.Goals.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toGoalView(g, s.monthlyHint()))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Goals.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.CurrentAmount == nil {
		writeError(w, http.StatusBadRequest, "current_amount is required")
		return
	}

	g, err := s.deps.Goals.UpdateProgress(r.Context(), r.PathValue("id"), *req.CurrentAmount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toGoalView(g, s.monthlyHint()))
}
