package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"askcents/internal/aggregator"
	"askcents/internal/core"
	"askcents/internal/insights"
	"askcents/internal/kv"
	applog "askcents/internal/log"
	"askcents/internal/worker"
)

const (
	maxTopCategories  = 50
	defaultPeriods    = 12
	maxPeriods        = 600
	defaultRefreshWhy = "manual"
)

// buildInsights fetches a snapshot and runs one analysis pass. The result is
// published as this process's latest unless a newer pass already finished.
func (s *Server) buildInsights(ctx context.Context) worker.Snapshot {
	ticket := s.latest.Begin()

	var snap aggregator.Snapshot
	if s.deps.Source != nil {
		snap = aggregator.FetchSnapshot(ctx, s.deps.Source)
	}
	vm := s.deps.Insights.Build(snap.Accounts, snap.Transactions)
	s.structured.LogInsightsBuilt(ctx, vm.AccountCount, vm.TransactionCount, len(vm.Categories),
		vm.TotalSpent, vm.HealthScore.OverallScore, vm.HasLiveData)

	result := worker.Snapshot{
		BuiltAt:  time.Now().UTC(),
		Warnings: snap.Warnings,
		Insights: vm,
	}
	s.latest.Publish(ticket, result)

	if created, err := s.deps.Goals.EnsureSuggested(ctx, vm); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Failed to ensure suggested goals", applog.FieldError, err)
	} else if len(created) > 0 {
		applog.FromContext(ctx).InfoContext(ctx, "Created suggested goals", "count", len(created))
	}
	return result
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	top, err := parseIntParam(r.URL.Query(), "top", 0, 0, maxTopCategories)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.buildInsights(r.Context())
	if top > 0 && len(result.Insights.Categories) > top {
		result.Insights.Categories = result.Insights.Categories[:top]
	}
	writeJSON(w, http.StatusOK, result)
}

// handleLatestInsights serves the snapshot stored by the worker, falling
// back to the newest one built by this process.
func (s *Server) handleLatestInsights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap, err := worker.LoadLatest(ctx, s.deps.Store)
	if err == nil {
		writeJSON(w, http.StatusOK, snap)
		return
	}
	if !errors.Is(err, kv.ErrNotFound) {
		applog.FromContext(ctx).WarnContext(ctx, "Failed to load stored snapshot", applog.FieldError, err)
	}
	if local, ok := s.latest.Get(); ok {
		writeJSON(w, http.StatusOK, local)
		return
	}
	writeError(w, http.StatusNotFound, "no insights built yet")
}

type refreshRequest struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

type refreshResponse struct {
	MessageID   string    `json:"message_id"`
	RequestedAt time.Time `json:"requested_at"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.deps.Publisher == nil {
		writeError(w, http.StatusServiceUnavailable, "refresh queue not configured")
		return
	}

	var req refreshRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	reason := sanitizeInput(req.Reason)
	if reason == "" {
		reason = defaultRefreshWhy
	}

	s.publishRefresh(w, r, sanitizeInput(req.UserID), reason)
}

// publishRefresh queues a refresh and writes 202 with the message ID.
func (s *Server) publishRefresh(w http.ResponseWriter, r *http.Request, userID, reason string) {
	msg, err := s.deps.Publisher.PublishRefresh(r.Context(), userID, reason)
	if err != nil {
		status, text := classifyError(err)
		if status == http.StatusInternalServerError {
			status, text = http.StatusServiceUnavailable, "refresh queue unavailable"
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to publish refresh",
			applog.FieldOperation, applog.OpRefresh,
			applog.FieldError, err)
		writeError(w, status, text)
		return
	}
	writeJSON(w, http.StatusAccepted, refreshResponse{MessageID: msg.ID, RequestedAt: msg.RequestedAt})
}

type projectionResponse struct {
	Principal     float64                `json:"principal"`
	Contribution  float64                `json:"contribution"`
	RatePercent   float64                `json:"rate_percent"`
	Periods       int                    `json:"periods"`
	FinalBalance  float64                `json:"final_balance"`
	TotalInterest float64                `json:"total_interest"`
	Points        []core.ProjectionPoint `json:"points"`
}

// handleProjection projects compound growth. Values are rounded to whole
// currency units only here, at the presentation boundary.
func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	policy := s.deps.Insights.Orchestrator().Policy()

	principal, err := parseFloatParam(q, "principal", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	contribution, err := parseFloatParam(q, "contribution", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rate, err := parseFloatParam(q, "rate", policy.AssumedReturnPercent)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	periods, err := parseIntParam(q, "periods", defaultPeriods, 0, maxPeriods)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// preset selects one of the named projections and its default rate
	var points []core.ProjectionPoint
	switch preset := q.Get("preset"); preset {
	case "":
		points = insights.Project(principal, contribution, rate, periods)
	case "goal":
		rate = insights.GoalSavingsRate
		points = insights.ProjectGoalSavings(principal, contribution, periods)
	case "savings":
		rate = insights.GeneralSavingsRate
		points = insights.ProjectGeneralSavings(principal, contribution, periods)
	case "micro":
		if !q.Has("rate") {
			rate = insights.MicroInvestmentRate
		}
		principal = 0
		points = insights.ProjectMicroInvestment(contribution, rate, periods)
	default:
		writeError(w, http.StatusBadRequest, "unknown preset: "+sanitizeInput(preset))
		return
	}

	writeJSON(w, http.StatusOK, projectionResponse{
		Principal:     principal,
		Contribution:  contribution,
		RatePercent:   rate,
		Periods:       periods,
		FinalBalance:  insights.RoundCurrency(insights.FinalBalance(points)),
		TotalInterest: insights.RoundCurrency(insights.TotalInterest(points)),
		Points:        insights.RoundPoints(points),
	})
}

// handleCategories lists the display data of every known category, sorted
// by key.
func handleCategories(w http.ResponseWriter, r *http.Request) {
	keys := insights.KnownCategories()
	out := make([]insights.CategoryInfo, 0, len(keys))
	for _, k := range keys {
		out = append(out, insights.Classify(k))
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

func (s *Server) handleWeeklyAdvice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result := s.buildInsights(ctx)
	adv, err := s.deps.Advice.Weekly(ctx, result.Insights)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, adv)
}
