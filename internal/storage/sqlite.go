package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"askcents/internal/core"
	"askcents/internal/goals"
	"askcents/internal/kv"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the key/value store and goals in one SQLite file.
// It implements kv.Store directly; Goals returns the goals.Repository view.
type SQLiteStore struct {
	db      *sql.DB
	queries *Queries
}

var _ kv.Store = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, queries: New(db)}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.queries.GetValue(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", kv.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return v, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	if err := s.queries.UpsertValue(ctx, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if err := s.queries.DeleteValue(ctx, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Goals returns the goal repository backed by the same database.
func (s *SQLiteStore) Goals() goals.Repository {
	return goalRepo{q: s.queries}
}

type goalRepo struct {
	q *Queries
}

func (r goalRepo) Create(ctx context.Context, g core.Goal) error {
	if err := r.q.InsertGoal(ctx, toRow(g)); err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	slog.DebugContext(ctx, "Goal saved to SQLite", "component", "storage", "goal_id", g.ID)
	return nil
}

func (r goalRepo) Get(ctx context.Context, id string) (core.Goal, error) {
	row, err := r.q.GetGoal(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, goals.ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal %s: %w", id, err)
	}
	return fromRow(row), nil
}

func (r goalRepo) List(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.q.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	out := make([]core.Goal, len(rows))
	for i, row := range rows {
		out[i] = fromRow(row)
	}
	return out, nil
}

func (r goalRepo) Update(ctx context.Context, g core.Goal) error {
	n, err := r.q.UpdateGoal(ctx, toRow(g))
	if err != nil {
		return fmt.Errorf("update goal %s: %w", g.ID, err)
	}
	if n == 0 {
		return goals.ErrNotFound
	}
	return nil
}

func (r goalRepo) Delete(ctx context.Context, id string) error {
	n, err := r.q.DeleteGoal(ctx, id)
	if err != nil {
		return fmt.Errorf("delete goal %s: %w", id, err)
	}
	if n == 0 {
		return goals.ErrNotFound
	}
	return nil
}

func toRow(g core.Goal) GoalRow {
	return GoalRow{
		ID:            g.ID,
		Title:         g.Title,
		Description:   g.Description,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		DeadlineLabel: g.DeadlineLabel,
		CategoryTag:   string(g.CategoryTag),
		Suggested:     g.Suggested,
		DailyTip:      g.DailyTip,
		CreatedAt:     g.CreatedAt.UTC(),
		UpdatedAt:     g.UpdatedAt.UTC(),
	}
}

func fromRow(r GoalRow) core.Goal {
	return core.Goal{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		TargetAmount:  r.TargetAmount,
		CurrentAmount: r.CurrentAmount,
		DeadlineLabel: r.DeadlineLabel,
		CategoryTag:   core.GoalCategory(r.CategoryTag),
		Suggested:     r.Suggested,
		DailyTip:      r.DailyTip,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}
