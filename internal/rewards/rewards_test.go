package rewards

import (
	"context"
	"errors"
	"sync"
	"testing"

	"askcents/internal/kv"
)

func TestComplete_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := NewService(kv.NewMemory())

	added, err := s.Complete(ctx, "3")
	if err != nil || !added {
		t.Fatalf("first Complete = %v, %v", added, err)
	}
	added, err = s.Complete(ctx, "3")
	if err != nil || added {
		t.Fatalf("second Complete = %v, %v", added, err)
	}
	if p, _ := s.Points(ctx); p != 20 {
		t.Errorf("Points = %d, want 20", p)
	}

	sum, err := s.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	for _, task := range sum.Tasks {
		if task.Completed != (task.ID == "3") {
			t.Errorf("task %s completed = %v", task.ID, task.Completed)
		}
	}
}

func TestComplete_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewService(kv.NewMemory())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Complete(ctx, "4")
		}()
	}
	wg.Wait()
	if p, _ := s.Points(ctx); p != 25 {
		t.Errorf("Points = %d, want 25", p)
	}
}

func TestComplete_UnknownTask(t *testing.T) {
	s := NewService(kv.NewMemory())
	if _, err := s.Complete(context.Background(), "99"); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask, got %v", err)
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s := NewService(kv.NewMemory())
	_, _ = s.Complete(ctx, "1")
	_, _ = s.Complete(ctx, "2")
	if p, _ := s.Points(ctx); p != 25 {
		t.Fatalf("Points = %d, want 25", p)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	done, _ := s.Completed(ctx)
	p, _ := s.Points(ctx)
	if p != 0 || len(done) != 0 {
		t.Errorf("after reset points=%d completed=%v", p, done)
	}
}

func TestTasks_IsCopy(t *testing.T) {
	tasks := Tasks()
	tasks[0].Points = 1000
	if Tasks()[0].Points != 10 {
		t.Error("Tasks exposed internal slice")
	}
}

// flakyStore fails the first n Set calls.
type flakyStore struct {
	*kv.Memory
	failures int
}

func (f *flakyStore) Set(ctx context.Context, key, value string) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("disk full")
	}
	return f.Memory.Set(ctx, key, value)
}

func TestComplete_FailedWriteCanRetry(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Memory: kv.NewMemory(), failures: 1}
	s := NewService(store)

	if _, err := s.Complete(ctx, "4"); err == nil {
		t.Fatal("expected error from failing store")
	}
	done, _ := s.Completed(ctx)
	if len(done) != 0 {
		t.Fatalf("completed after failed write = %v, want none", done)
	}

	added, err := s.Complete(ctx, "4")
	if err != nil || !added {
		t.Fatalf("retry Complete = %v, %v", added, err)
	}
	if p, _ := s.Points(ctx); p != 25 {
		t.Errorf("Points = %d, want 25", p)
	}
}
