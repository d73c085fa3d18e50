// Package rewards tracks the weekly guidance tasks and the points earned by
// completing them.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"askcents/internal/kv"
)

const stateKey = "rewards:state"

var ErrUnknownTask = errors.New("unknown task")

// Task is one weekly guidance step.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Points    int    `json:"points"`
	Completed bool   `json:"completed"`
}

var weeklyTasks = []Task{
	{ID: "1", Text: "Transfer $15 to emergency fund", Points: 10},
	{ID: "2", Text: "Track all spending for 3 days", Points: 15},
	{ID: "3", Text: "Research high-yield savings accounts", Points: 20},
	{ID: "4", Text: "Set up investment account", Points: 25},
}

// Summary is the rewards state returned to clients.
type Summary struct {
	Points int    `json:"points"`
	Tasks  []Task `json:"tasks"`
}

// state is the persisted record. Points and completions live under one key so
// a task is never marked complete without its points.
type state struct {
	Points    int      `json:"points"`
	Completed []string `json:"completed"`
}

// Service persists points and completed task IDs in a kv.Store.
type Service struct {
	store kv.Store
	// mu serializes read-modify-write cycles on the store.
	mu sync.Mutex
}

func NewService(store kv.Store) *Service {
	return &Service{store: store}
}

// Tasks returns the fixed weekly task list without completion state.
func Tasks() []Task {
	return slices.Clone(weeklyTasks)
}

// Summary returns the task list annotated with completion plus the point total.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	st, err := s.load(ctx)
	if err != nil {
		return Summary{}, err
	}
	tasks := Tasks()
	for i := range tasks {
		tasks[i].Completed = slices.Contains(st.Completed, tasks[i].ID)
	}
	return Summary{Points: st.Points, Tasks: tasks}, nil
}

// Complete marks a task done and awards its points. Completing a task twice
// awards nothing the second time; the bool reports whether points were added.
func (s *Service) Complete(ctx context.Context, taskID string) (bool, error) {
	idx := slices.IndexFunc(weeklyTasks, func(t Task) bool { return t.ID == taskID })
	if idx < 0 {
		return false, fmt.Errorf("%w: %s", ErrUnknownTask, taskID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	if slices.Contains(st.Completed, taskID) {
		return false, nil
	}

	st.Completed = append(st.Completed, taskID)
	st.Points += weeklyTasks[idx].Points
	if err := kv.SetJSON(ctx, s.store, stateKey, st); err != nil {
		return false, err
	}
	slog.InfoContext(ctx, "Task completed", "component", "rewards", "task_id", taskID, "points", weeklyTasks[idx].Points)
	return true, nil
}

// Points returns the total earned so far.
func (s *Service) Points(ctx context.Context) (int, error) {
	st, err := s.load(ctx)
	return st.Points, err
}

// Completed returns the IDs of completed tasks in completion order.
func (s *Service) Completed(ctx context.Context) ([]string, error) {
	st, err := s.load(ctx)
	return st.Completed, err
}

// Reset clears points and completions, e.g. at the start of a new week.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Remove(ctx, stateKey)
}

func (s *Service) load(ctx context.Context) (state, error) {
	st, err := kv.GetJSON[state](ctx, s.store, stateKey)
	if errors.Is(err, kv.ErrNotFound) {
		return state{Completed: []string{}}, nil
	}
	if err != nil {
		return state{}, err
	}
	if st.Completed == nil {
		st.Completed = []string{}
	}
	return st, nil
}
