package goals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"askcents/internal/core"
	"askcents/internal/insights"

	"github.com/google/uuid"
)

var ErrInvalidCategory = errors.New("invalid goal category")

// forecastLimit caps Forecast at ten years of monthly periods.
const forecastLimit = 120

// Service manages savings goals.
type Service struct {
	repo Repository
	now  func() time.Time

	// serializes EnsureSuggested between the API and the worker
	seedMu sync.Mutex
}

func NewService(repo Repository) *Service {
	if repo == nil {
		repo = NewMemoryRepository()
	}
	return &Service{repo: repo, now: time.Now}
}

// Create validates g, assigns an ID and timestamps, and stores it.
func (s *Service) Create(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.Title = strings.TrimSpace(g.Title)
	g.Description = strings.TrimSpace(g.Description)
	if g.CategoryTag == "" {
		g.CategoryTag = core.GoalSavings
	}
	if !g.CategoryTag.IsValid() {
		return core.Goal{}, fmt.Errorf("%w: %q", ErrInvalidCategory, g.CategoryTag)
	}
	if math.IsNaN(g.TargetAmount) || math.IsNaN(g.CurrentAmount) {
		return core.Goal{}, core.ErrInvalidAmount
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}

	now := s.now().UTC()
	g.ID = uuid.NewString()
	g.CreatedAt = now
	g.UpdatedAt = now
	if err := s.repo.Create(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	slog.InfoContext(ctx, "Goal created", "component", "goals", "goal_id", g.ID, "title", g.Title, "suggested", g.Suggested)
	return g, nil
}

func (s *Service) List(ctx context.Context) ([]core.Goal, error) {
	gs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return gs, nil
}

func (s *Service) Get(ctx context.Context, id string) (core.Goal, error) {
	return s.repo.Get(ctx, id)
}

// UpdateProgress sets the saved amount of a goal.
func (s *Service) UpdateProgress(ctx context.Context, id string, current float64) (core.Goal, error) {
	if math.IsNaN(current) || math.IsInf(current, 0) || current < 0 {
		return core.Goal{}, core.ErrInvalidAmount
	}
	g, err := s.repo.Get(ctx, id)
	if err != nil {
		return core.Goal{}, err
	}
	g.CurrentAmount = core.RoundCents(current)
	g.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("update goal %s: %w", id, err)
	}
	return g, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// EnsureSuggested seeds the default goals when the repository is empty and
// returns the goals it created. Later calls are no-ops.
func (s *Service) EnsureSuggested(ctx context.Context, vm core.InsightsViewModel) ([]core.Goal, error) {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	existing, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	if len(existing) > 0 {
		return nil, nil
	}

	var created []core.Goal
	for _, g := range SuggestedGoals(vm) {
		g.DailyTip = DailyTip(g, vm, s.now())
		out, err := s.Create(ctx, g)
		if err != nil {
			return created, err
		}
		created = append(created, out)
	}
	return created, nil
}

// Progress returns the completion percent of g, clamped to [0,100].
func Progress(g core.Goal) int {
	return g.Progress()
}

// Forecast returns the number of months until g reaches its target when
// monthly is added each month at the goal savings rate. It returns -1 when
// the target is not reached within ten years.
func Forecast(g core.Goal, monthly float64) int {
	return insights.MonthsToTarget(insights.ProjectGoalSavings(g.CurrentAmount, monthly, forecastLimit), g.TargetAmount)
}

// SuggestedGoals derives the starter goals from an analysis pass. Sample
// data yields the demo goals; live data sizes the emergency fund to three
// months of spend and the portfolio to the first-year micro-investment.
func SuggestedGoals(vm core.InsightsViewModel) []core.Goal {
	emergency := core.Goal{
		Title:         "Emergency Fund",
		Description:   "Build a safety net for unexpected expenses",
		TargetAmount:  1000,
		CurrentAmount: 650,
		DeadlineLabel: "3 months",
		CategoryTag:   core.GoalSavings,
		Suggested:     true,
	}
	portfolio := core.Goal{
		Title:         "Investment Portfolio",
		Description:   "Start investing with micro-investments",
		TargetAmount:  500,
		CurrentAmount: 200,
		DeadlineLabel: "This year",
		CategoryTag:   core.GoalInvestment,
		Suggested:     true,
	}
	if !vm.HasLiveData {
		return []core.Goal{emergency, portfolio}
	}

	emergency.CurrentAmount = 0
	emergency.TargetAmount = max(roundUpHundred(vm.TotalSpent*3), 500)
	portfolio.CurrentAmount = 0
	portfolio.TargetAmount = max(roundUpHundred(vm.MicroInvestment.AnnualProjection), 500)
	return []core.Goal{emergency, portfolio}
}

// DailyTip builds the coaching line shown under a goal.
func DailyTip(g core.Goal, vm core.InsightsViewModel, now time.Time) string {
	remaining := g.Remaining()
	if remaining <= 0 {
		return fmt.Sprintf("You reached %s. Time to set a new goal!", g.Title)
	}
	if days := DeadlineDays(g.DeadlineLabel, now); days > 0 {
		perDay := math.Ceil(remaining/float64(days)*100) / 100
		return fmt.Sprintf("Save %s a day to reach your %s on time.", core.FormatDollars(perDay), g.Title)
	}
	if mi := vm.MicroInvestment; mi.TargetCategory != "" && mi.MonthlyAmount > 0 {
		return fmt.Sprintf("Trimming %s frees about %s a month for your %s.", mi.TargetCategory, core.FormatDollars(mi.MonthlyAmount), g.Title)
	}
	return fmt.Sprintf("%s to go on your %s.", core.FormatDollars(remaining), g.Title)
}

// DeadlineDays converts labels such as "3 months", "2 weeks" or "This year"
// into a day count from now. Unknown labels return 0.
func DeadlineDays(label string, now time.Time) int {
	label = strings.ToLower(strings.TrimSpace(label))
	switch label {
	case "":
		return 0
	case "this year":
		end := time.Date(now.Year()+1, 1, 1, 0, 0, 0, 0, now.Location())
		return int(math.Ceil(end.Sub(now).Hours() / 24))
	case "this month":
		end := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
		return int(math.Ceil(end.Sub(now).Hours() / 24))
	}

	fields := strings.Fields(label)
	if len(fields) != 2 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return 0
	}
	switch strings.TrimSuffix(fields[1], "s") {
	case "day":
		return n
	case "week":
		return n * 7
	case "month":
		return n * 30
	case "year":
		return n * 365
	default:
		return 0
	}
}

func roundUpHundred(x float64) float64 {
	if x <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return math.Ceil(x/100) * 100
}
