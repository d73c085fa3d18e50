package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"askcents/internal/core"
	"askcents/internal/sheets"
)

var _ sheets.Exporter = (*Store)(nil)

// Store keeps exported rows in memory.
type Store struct {
	mu   sync.Mutex
	rows [][]any
	now  func() time.Time
}

func New() *Store {
	return &Store{now: time.Now}
}

// ExportCategories appends the report rows and returns a synthetic range.
func (s *Store) ExportCategories(_ context.Context, vm core.InsightsViewModel) (string, error) {
	rows := sheets.CategoryRows(vm, s.now())
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(rows) == 0 {
		return "", nil
	}
	first := len(s.rows) + 1
	s.rows = append(s.rows, rows...)
	return fmt.Sprintf("mem:%d-%d", first, len(s.rows)), nil
}

// Rows returns a copy of every exported row.
func (s *Store) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]any(nil), s.rows...)
}
