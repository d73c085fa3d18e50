package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"askcents/internal/aggregator"
	"askcents/internal/amqp"
	"askcents/internal/core"
	"askcents/internal/goals"
	"askcents/internal/insights"
	"askcents/internal/kv"
	"askcents/internal/sheets"
)

// LatestKey is the KV key holding the most recent insights snapshot.
const LatestKey = "insights:latest"

// Snapshot is the stored result of one refresh.
type Snapshot struct {
	MessageID string                 `json:"message_id"`
	UserID    string                 `json:"user_id,omitempty"`
	BuiltAt   time.Time              `json:"built_at"`
	Warnings  []string               `json:"warnings,omitempty"`
	Insights  core.InsightsViewModel `json:"insights"`
}

// LoadLatest reads the stored snapshot. It returns kv.ErrNotFound when no
// refresh has completed yet.
func LoadLatest(ctx context.Context, store kv.Store) (Snapshot, error) {
	return kv.GetJSON[Snapshot](ctx, store, LatestKey)
}

// RefreshWorker rebuilds insights snapshots in response to refresh requests.
type RefreshWorker struct {
	source   aggregator.Source
	insights *insights.Service
	store    kv.Store
	goals    *goals.Service
	exporter sheets.Exporter

	latest insights.Latest[Snapshot]
	now    func() time.Time
}

// NewRefreshWorker creates a worker. goals and exporter may be nil.
func NewRefreshWorker(source aggregator.Source, svc *insights.Service, store kv.Store, goalSvc *goals.Service, exporter sheets.Exporter) *RefreshWorker {
	if svc == nil {
		svc = insights.NewService(nil, nil)
	}
	return &RefreshWorker{
		source:   source,
		insights: svc,
		store:    store,
		goals:    goalSvc,
		exporter: exporter,
		now:      time.Now,
	}
}

// Handle processes one refresh message. Returning an error requeues it, so
// only storage failures are returned; export problems are logged.
func (w *RefreshWorker) Handle(ctx context.Context, msg *amqp.RefreshMessage) error {
	ticket := w.latest.Begin()

	slog.InfoContext(ctx, "Refreshing insights",
		"component", "worker",
		"message_id", msg.ID,
		"reason", msg.Reason)

	snap := aggregator.FetchSnapshot(ctx, w.source)
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.latest.Superseded(ticket) {
		slog.InfoContext(ctx, "Skipping superseded refresh", "component", "worker", "message_id", msg.ID)
		return nil
	}

	vm := w.insights.Build(snap.Accounts, snap.Transactions)
	result := Snapshot{
		MessageID: msg.ID,
		UserID:    msg.UserID,
		BuiltAt:   w.now().UTC(),
		Warnings:  snap.Warnings,
		Insights:  vm,
	}

	if !w.latest.Publish(ticket, result) {
		slog.InfoContext(ctx, "Discarding superseded refresh", "component", "worker", "message_id", msg.ID)
		return nil
	}

	if err := kv.SetJSON(ctx, w.store, LatestKey, result); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	if w.goals != nil {
		created, err := w.goals.EnsureSuggested(ctx, vm)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to ensure suggested goals", "component", "worker", "error", err)
		} else if len(created) > 0 {
			slog.InfoContext(ctx, "Created suggested goals", "component", "worker", "count", len(created))
		}
	}

	// sample data is never exported
	if w.exporter != nil && vm.HasLiveData {
		ref, err := w.exporter.ExportCategories(ctx, vm)
		if err != nil {
			slog.WarnContext(ctx, "Report export failed", "component", "worker", "error", err)
		} else {
			slog.InfoContext(ctx, "Report exported", "component", "worker", "range", ref)
		}
	}

	slog.InfoContext(ctx, "Insights refreshed",
		"component", "worker",
		"message_id", msg.ID,
		"live_data", vm.HasLiveData,
		"categories", len(vm.Categories),
		"health_score", vm.HealthScore.OverallScore)
	return nil
}

// Latest returns the snapshot this worker most recently published.
func (w *RefreshWorker) Latest() (Snapshot, bool) {
	return w.latest.Get()
}

// StartupCheck builds an initial snapshot when none is stored, so readers
// have data before the first refresh request arrives.
func (w *RefreshWorker) StartupCheck(ctx context.Context) error {
	_, err := LoadLatest(ctx, w.store)
	if err == nil {
		slog.InfoContext(ctx, "Stored insights snapshot found on startup", "component", "worker")
		return nil
	}
	if !errors.Is(err, kv.ErrNotFound) {
		slog.WarnContext(ctx, "Could not read stored snapshot, rebuilding", "component", "worker", "error", err)
	}
	return w.Handle(ctx, amqp.NewRefreshMessage("", "startup"))
}
