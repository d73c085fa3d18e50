// Package advice produces the weekly coaching message. Generated text is
// cached per ISO week so the model is called at most once a week.
package advice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"askcents/internal/core"
	"askcents/internal/kv"
)

const (
	SourceGenerated = "generated"
	SourceRules     = "rules"
)

// Advice is one weekly message.
type Advice struct {
	WeekKey     string    `json:"week_key"`
	Text        string    `json:"text"`
	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Service serves weekly advice.
type Service struct {
	gen   Generator
	store kv.Store
	now   func() time.Time
}

// NewService creates the advice service. A nil gen always uses the rule-based
// fallback.
func NewService(gen Generator, store kv.Store) *Service {
	return &Service{gen: gen, store: store, now: time.Now}
}

// WeekKey returns the cache key for the ISO week containing t.
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("advice:%d-W%02d", year, week)
}

// Weekly returns this week's advice. A cached entry is returned as is;
// otherwise the generator is asked and its answer cached. Fallback advice is
// never cached, so a later call can still reach the generator.
func (s *Service) Weekly(ctx context.Context, vm core.InsightsViewModel) (Advice, error) {
	now := s.now()
	key := WeekKey(now)

	cached, err := kv.GetJSON[Advice](ctx, s.store, key)
	if err == nil && cached.Text != "" {
		return cached, nil
	}
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		slog.WarnContext(ctx, "Advice cache read failed", "component", "advice", "week_key", key, "error", err)
	}

	if s.gen != nil {
		text, err := s.gen.Generate(ctx, BuildPrompt(vm))
		if err == nil {
			a := Advice{WeekKey: key, Text: text, Source: SourceGenerated, GeneratedAt: now.UTC()}
			if err := kv.SetJSON(ctx, s.store, key, a); err != nil {
				slog.WarnContext(ctx, "Advice cache write failed", "component", "advice", "week_key", key, "error", err)
			}
			return a, nil
		}
		if ctx.Err() != nil {
			return Advice{}, ctx.Err()
		}
		slog.WarnContext(ctx, "Advice generation failed, using rules", "component", "advice", "error", err)
	}

	return Advice{WeekKey: key, Text: RuleBased(vm), Source: SourceRules, GeneratedAt: now.UTC()}, nil
}

// Invalidate drops the cached advice for the current week.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.store.Remove(ctx, WeekKey(s.now()))
}

// BuildPrompt summarizes the analysis for the model.
func BuildPrompt(vm core.InsightsViewModel) string {
	var b strings.Builder
	b.WriteString("You are a friendly financial coach for university students.\n")
	b.WriteString("Write three short, practical tips for this week based on the spending summary below.\n")
	b.WriteString("Plain text only, no Markdown, at most 120 words.\n\n")
	writeSummary(&b, vm)
	return b.String()
}

// writeSummary renders the analysis as the context block of a prompt.
func writeSummary(b *strings.Builder, vm core.InsightsViewModel) {
	fmt.Fprintf(b, "Total spent: %s\n", core.FormatDollars(vm.TotalSpent))
	fmt.Fprintf(b, "Total income: %s\n", core.FormatDollars(vm.TotalIncome))
	fmt.Fprintf(b, "Net balance: %s\n", core.FormatDollars(vm.TotalBalance))
	fmt.Fprintf(b, "Health score: %d (%s)\n", vm.HealthScore.OverallScore, vm.HealthScore.StatusLabel)
	if len(vm.Categories) > 0 {
		b.WriteString("Top categories:\n")
		for _, c := range vm.Categories {
			fmt.Fprintf(b, "- %s: %s (%.1f%%)\n", c.DisplayName, core.FormatDollars(c.TotalAmount), c.PercentageOfTotal)
		}
	}
	if mi := vm.MicroInvestment; mi.MonthlyAmount > 0 {
		fmt.Fprintf(b, "Investing %s a month from %s would grow to about %s in a year.\n",
			core.FormatDollars(mi.MonthlyAmount), mi.TargetCategory, core.FormatDollars(mi.AnnualProjection))
	}
}

// RuleBased derives deterministic advice from the analysis.
func RuleBased(vm core.InsightsViewModel) string {
	var tips []string
	if top, ok := vm.TopCategory(); ok {
		tips = append(tips, fmt.Sprintf("%s is your biggest expense at %.1f%% of spending. Set a weekly cap for it.",
			top.DisplayName, top.PercentageOfTotal))
	}
	if mi := vm.MicroInvestment; mi.MonthlyAmount > 0 {
		tips = append(tips, fmt.Sprintf("Cutting %s by a little frees %s a month, about %s after a year invested.",
			mi.TargetCategory, core.FormatDollars(mi.MonthlyAmount), core.FormatDollars(mi.AnnualProjection)))
	}
	switch vm.HealthScore.StatusLabel {
	case core.NeedsWork, core.Okay:
		tips = append(tips, "Start a small emergency fund, even $15 a week adds up.")
	default:
		tips = append(tips, "You're on track. Consider moving spare cash into a high-yield savings account.")
	}
	return strings.Join(tips, " ")
}
