package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"askcents/internal/core"
	"askcents/internal/goals"
	"askcents/internal/kv"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_KV(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected kv.ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, "advice:2025-W10", "save more"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "advice:2025-W10", "save even more"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if v, err := s.Get(ctx, "advice:2025-W10"); err != nil || v != "save even more" {
		t.Fatalf("Get = %q, %v", v, err)
	}
	if err := s.Remove(ctx, "advice:2025-W10"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Get(ctx, "advice:2025-W10"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected kv.ErrNotFound after remove, got %v", err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestSQLiteStore_Goals(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t).Goals()

	created := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	g := core.Goal{
		ID:            "g1",
		Title:         "Emergency Fund",
		TargetAmount:  1000,
		CurrentAmount: 650,
		DeadlineLabel: "3 months",
		CategoryTag:   core.GoalSavings,
		Suggested:     true,
		DailyTip:      "Save $3.89 a day",
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	if err := repo.Create(ctx, g); err != nil {
		t.Fatalf("Create: %v", err)
	}
	second := g
	second.ID = "g2"
	second.Title = "Investment Portfolio"
	second.CreatedAt = created.Add(time.Minute)
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	got, err := repo.Get(ctx, "g1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != g.Title || !got.Suggested || got.CurrentAmount != 650 || !got.CreatedAt.Equal(created) {
		t.Errorf("round trip mismatch: %+v", got)
	}

	got.CurrentAmount = 700
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	list, err := repo.List(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("List = %v, %v", list, err)
	}
	if list[0].ID != "g1" || list[0].CurrentAmount != 700 {
		t.Errorf("unexpected first goal: %+v", list[0])
	}

	if err := repo.Delete(ctx, "g1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, "g1"); !errors.Is(err, goals.ErrNotFound) {
		t.Errorf("expected goals.ErrNotFound, got %v", err)
	}
	if _, err := repo.Get(ctx, "g1"); !errors.Is(err, goals.ErrNotFound) {
		t.Errorf("expected goals.ErrNotFound, got %v", err)
	}
	missing := g
	missing.ID = "nope"
	if err := repo.Update(ctx, missing); !errors.Is(err, goals.ErrNotFound) {
		t.Errorf("expected goals.ErrNotFound on update, got %v", err)
	}
}

func TestSQLiteStore_GoalsServiceIntegration(t *testing.T) {
	ctx := context.Background()
	svc := goals.NewService(newTestStore(t).Goals())
	created, err := svc.EnsureSuggested(ctx, core.InsightsViewModel{})
	if err != nil || len(created) != 2 {
		t.Fatalf("EnsureSuggested = %v, %v", created, err)
	}
	again, err := svc.EnsureSuggested(ctx, core.InsightsViewModel{})
	if err != nil || len(again) != 0 {
		t.Fatalf("second EnsureSuggested = %v, %v", again, err)
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second run: %v", err)
	}
}
