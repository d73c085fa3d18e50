package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type GoalRow struct {
	ID            string
	Title         string
	Description   string
	TargetAmount  float64
	CurrentAmount float64
	DeadlineLabel string
	CategoryTag   string
	Suggested     bool
	DailyTip      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const getValue = `SELECT value FROM kv WHERE key = ?`

func (q *Queries) GetValue(ctx context.Context, key string) (string, error) {
	var value string
	err := q.db.QueryRowContext(ctx, getValue, key).Scan(&value)
	return value, err
}

const upsertValue = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

func (q *Queries) UpsertValue(ctx context.Context, key, value string, at time.Time) error {
	_, err := q.db.ExecContext(ctx, upsertValue, key, value, at)
	return err
}

const deleteValue = `DELETE FROM kv WHERE key = ?`

func (q *Queries) DeleteValue(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, deleteValue, key)
	return err
}

const insertGoal = `INSERT INTO goals (
    id, title, description, target_amount, current_amount,
    deadline_label, category_tag, suggested, daily_tip, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertGoal(ctx context.Context, g GoalRow) error {
	_, err := q.db.ExecContext(ctx, insertGoal,
		g.ID, g.Title, g.Description, g.TargetAmount, g.CurrentAmount,
		g.DeadlineLabel, g.CategoryTag, g.Suggested, g.DailyTip, g.CreatedAt, g.UpdatedAt,
	)
	return err
}

const goalColumns = `id, title, description, target_amount, current_amount,
    deadline_label, category_tag, suggested, daily_tip, created_at, updated_at`

const getGoal = `SELECT ` + goalColumns + ` FROM goals WHERE id = ?`

func (q *Queries) GetGoal(ctx context.Context, id string) (GoalRow, error) {
	return scanGoal(q.db.QueryRowContext(ctx, getGoal, id))
}

const listGoals = `SELECT ` + goalColumns + ` FROM goals ORDER BY created_at, id`

func (q *Queries) ListGoals(ctx context.Context) ([]GoalRow, error) {
	rows, err := q.db.QueryContext(ctx, listGoals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GoalRow
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateGoal = `UPDATE goals SET
    title = ?, description = ?, target_amount = ?, current_amount = ?,
    deadline_label = ?, category_tag = ?, suggested = ?, daily_tip = ?, updated_at = ?
WHERE id = ?`

func (q *Queries) UpdateGoal(ctx context.Context, g GoalRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateGoal,
		g.Title, g.Description, g.TargetAmount, g.CurrentAmount,
		g.DeadlineLabel, g.CategoryTag, g.Suggested, g.DailyTip, g.UpdatedAt, g.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteGoal = `DELETE FROM goals WHERE id = ?`

func (q *Queries) DeleteGoal(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteGoal, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanGoal(s scanner) (GoalRow, error) {
	var g GoalRow
	err := s.Scan(
		&g.ID, &g.Title, &g.Description, &g.TargetAmount, &g.CurrentAmount,
		&g.DeadlineLabel, &g.CategoryTag, &g.Suggested, &g.DailyTip, &g.CreatedAt, &g.UpdatedAt,
	)
	return g, err
}
