package goals

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"askcents/internal/core"
)

func newTestService() *Service {
	s := NewService(NewMemoryRepository())
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestService_CreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		goal    core.Goal
		wantErr error
	}{
		{"empty title", core.Goal{Title: "  ", TargetAmount: 10}, core.ErrEmptyTitle},
		{"long title", core.Goal{Title: strings.Repeat("x", 101), TargetAmount: 10}, core.ErrTitleTooLong},
		{"zero target", core.Goal{Title: "Trip"}, core.ErrInvalidTarget},
		{"negative current", core.Goal{Title: "Trip", TargetAmount: 10, CurrentAmount: -1}, core.ErrInvalidAmount},
		{"bad category", core.Goal{Title: "Trip", TargetAmount: 10, CategoryTag: "vacation"}, ErrInvalidCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestService().Create(context.Background(), tt.goal)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	g, err := s.Create(ctx, core.Goal{Title: " Laptop ", TargetAmount: 1200})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.ID == "" || g.Title != "Laptop" || g.CategoryTag != core.GoalSavings {
		t.Fatalf("unexpected goal: %+v", g)
	}

	g, err = s.UpdateProgress(ctx, g.ID, 300)
	if err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if Progress(g) != 25 {
		t.Errorf("Progress = %d, want 25", Progress(g))
	}
	if _, err := s.UpdateProgress(ctx, g.ID, -5); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := s.UpdateProgress(ctx, "nope", 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	list, _ := s.List(ctx)
	if len(list) != 1 {
		t.Fatalf("List returned %d goals", len(list))
	}

	if err := s.Delete(ctx, g.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, g.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestService_EnsureSuggested(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	created, err := s.EnsureSuggested(ctx, core.InsightsViewModel{})
	if err != nil {
		t.Fatalf("EnsureSuggested: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created %d goals, want 2", len(created))
	}
	if created[0].Title != "Emergency Fund" || created[0].CurrentAmount != 650 || !created[0].Suggested {
		t.Errorf("unexpected emergency goal: %+v", created[0])
	}
	if created[0].DailyTip == "" {
		t.Error("expected a daily tip")
	}

	again, err := s.EnsureSuggested(ctx, core.InsightsViewModel{})
	if err != nil || len(again) != 0 {
		t.Fatalf("second EnsureSuggested = %v, %v", again, err)
	}
	list, _ := s.List(ctx)
	if len(list) != 2 || list[0].Title != "Emergency Fund" {
		t.Errorf("unexpected list: %+v", list)
	}
}

func TestSuggestedGoals_LiveData(t *testing.T) {
	vm := core.InsightsViewModel{HasLiveData: true, TotalSpent: 1234}
	vm.MicroInvestment.AnnualProjection = 90
	gs := SuggestedGoals(vm)
	if gs[0].TargetAmount != 3800 || gs[0].CurrentAmount != 0 {
		t.Errorf("emergency = %+v", gs[0])
	}
	if gs[1].TargetAmount != 500 {
		t.Errorf("portfolio target = %v, want 500", gs[1].TargetAmount)
	}
}

func TestDeadlineDays(t *testing.T) {
	now := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		label string
		want  int
	}{
		{"3 months", 90},
		{"2 weeks", 14},
		{"1 day", 1},
		{"1 year", 365},
		{"This year", 31},
		{"this month", 31},
		{"someday", 0},
		{"", 0},
		{"-2 weeks", 0},
	}
	for _, tt := range tests {
		if got := DeadlineDays(tt.label, now); got != tt.want {
			t.Errorf("DeadlineDays(%q) = %d, want %d", tt.label, got, tt.want)
		}
	}
}

func TestDailyTip(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	vm := core.InsightsViewModel{}
	vm.MicroInvestment.TargetCategory = "Food & Dining"
	vm.MicroInvestment.MonthlyAmount = 67.5

	done := core.Goal{Title: "Trip", TargetAmount: 100, CurrentAmount: 100}
	if got := DailyTip(done, vm, now); !strings.Contains(got, "You reached Trip") {
		t.Errorf("completed tip = %q", got)
	}

	timed := core.Goal{Title: "Emergency Fund", TargetAmount: 1000, CurrentAmount: 650, DeadlineLabel: "3 months"}
	// 350 over 90 days rounds up to $3.89
	if got := DailyTip(timed, vm, now); got != "Save $3.89 a day to reach your Emergency Fund on time." {
		t.Errorf("timed tip = %q", got)
	}

	open := core.Goal{Title: "Laptop", TargetAmount: 1000}
	if got := DailyTip(open, vm, now); !strings.Contains(got, "Food & Dining") || !strings.Contains(got, "$67.50") {
		t.Errorf("open tip = %q", got)
	}
}

func TestForecast(t *testing.T) {
	g := core.Goal{TargetAmount: 1000, CurrentAmount: 0}
	if n := Forecast(g, 0); n != -1 {
		t.Errorf("Forecast with no contribution = %d, want -1", n)
	}
	if n := Forecast(g, 100); n != 10 {
		t.Errorf("Forecast = %d, want 10", n)
	}
	done := core.Goal{TargetAmount: 500, CurrentAmount: 500}
	if n := Forecast(done, 0); n != 0 {
		t.Errorf("Forecast of reached goal = %d, want 0", n)
	}
}
