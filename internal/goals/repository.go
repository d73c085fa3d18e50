package goals

import (
	"context"
	"errors"
	"sort"
	"sync"

	"askcents/internal/core"
)

var ErrNotFound = errors.New("goal not found")

// Repository persists goals.
type Repository interface {
	Create(ctx context.Context, g core.Goal) error
	Get(ctx context.Context, id string) (core.Goal, error)
	List(ctx context.Context) ([]core.Goal, error)
	Update(ctx context.Context, g core.Goal) error
	Delete(ctx context.Context, id string) error
}

// MemoryRepository keeps goals in process memory.
type MemoryRepository struct {
	mu    sync.Mutex
	items map[string]core.Goal
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]core.Goal)}
}

func (r *MemoryRepository) Create(_ context.Context, g core.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[g.ID] = g
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (core.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.items[id]
	if !ok {
		return core.Goal{}, ErrNotFound
	}
	return g, nil
}

// List returns goals ordered by creation time, oldest first.
func (r *MemoryRepository) List(_ context.Context) ([]core.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Goal, 0, len(r.items))
	for _, g := range r.items {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, g core.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[g.ID]; !ok {
		return ErrNotFound
	}
	r.items[g.ID] = g
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}
