package advice

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"askcents/internal/core"
	"askcents/internal/insights"
	"askcents/internal/kv"
)

type fakeGenerator struct {
	calls atomic.Int32
	text  string
	err   error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	if !strings.Contains(prompt, "Health score") {
		return "", errors.New("prompt missing summary")
	}
	return f.text, f.err
}

func sampleViewModel() core.InsightsViewModel {
	return insights.NewOrchestrator(insights.DefaultPolicy()).Build(nil, nil)
}

func fixedService(gen Generator, store kv.Store) *Service {
	s := NewService(gen, store)
	s.now = func() time.Time { return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestWeekKey(t *testing.T) {
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), "advice:2025-W03"},
		{time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), "advice:2025-W01"},
		{time.Date(2021, 1, 3, 0, 0, 0, 0, time.UTC), "advice:2020-W53"},
	}
	for _, tt := range tests {
		if got := WeekKey(tt.t); got != tt.want {
			t.Errorf("WeekKey(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestWeekly_CachesGeneratedAdvice(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{text: "Cook at home twice this week."}
	s := fixedService(gen, kv.NewMemory())

	first, err := s.Weekly(ctx, sampleViewModel())
	if err != nil {
		t.Fatalf("Weekly: %v", err)
	}
	if first.Source != SourceGenerated || first.Text != gen.text || first.WeekKey != "advice:2025-W03" {
		t.Fatalf("unexpected advice: %+v", first)
	}
	second, err := s.Weekly(ctx, sampleViewModel())
	if err != nil || second.Text != first.Text {
		t.Fatalf("second Weekly = %+v, %v", second, err)
	}
	if gen.calls.Load() != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls.Load())
	}

	if err := s.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	_, _ = s.Weekly(ctx, sampleViewModel())
	if gen.calls.Load() != 2 {
		t.Errorf("generator called %d times after invalidate, want 2", gen.calls.Load())
	}
}

func TestWeekly_FallbackNotCached(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	s := fixedService(gen, store)

	a, err := s.Weekly(ctx, sampleViewModel())
	if err != nil {
		t.Fatalf("Weekly: %v", err)
	}
	if a.Source != SourceRules || a.Text == "" {
		t.Fatalf("expected rule-based advice, got %+v", a)
	}
	if store.Len() != 0 {
		t.Error("fallback advice should not be cached")
	}
	_, _ = s.Weekly(ctx, sampleViewModel())
	if gen.calls.Load() != 2 {
		t.Errorf("generator called %d times, want 2", gen.calls.Load())
	}
}

func TestWeekly_NilGenerator(t *testing.T) {
	a, err := fixedService(nil, kv.NewMemory()).Weekly(context.Background(), sampleViewModel())
	if err != nil || a.Source != SourceRules {
		t.Fatalf("Weekly = %+v, %v", a, err)
	}
}

func TestRuleBased(t *testing.T) {
	text := RuleBased(sampleViewModel())
	for _, want := range []string{"Rent & Housing", "Food & Dining", "$85.50", "emergency fund"} {
		if !strings.Contains(text, want) {
			t.Errorf("advice missing %q: %s", want, text)
		}
	}
	if RuleBased(sampleViewModel()) != text {
		t.Error("rule-based advice is not deterministic")
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(sampleViewModel())
	for _, want := range []string{"Total spent: $1,450.00", "Rent & Housing", "Health score"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestCleanModelText(t *testing.T) {
	tests := map[string]string{
		"  plain  ":                "plain",
		"```\nfenced\n```":         "fenced",
		"```text\nfenced tip\n```": "fenced tip",
	}
	for in, want := range tests {
		if got := cleanModelText(in); got != want {
			t.Errorf("cleanModelText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRewrite(t *testing.T) {
	tests := []struct {
		action  QuickAction
		want    string
		wantErr error
	}{
		{ActionSimple, `Can you explain "RRSP vs TFSA?" in simpler terms?`, nil},
		{ActionExamples, `Can you give me specific examples for: "RRSP vs TFSA?"`, nil},
		{ActionNext, `What should I do next after: "RRSP vs TFSA?"`, nil},
		{"louder", "", ErrUnknownAction},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			got, err := Rewrite(tt.action, " RRSP vs TFSA? ")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Rewrite() = %q, want %q", got, tt.want)
			}
		})
	}
	if _, err := Rewrite(ActionNext, "  "); !errors.Is(err, ErrEmptyQuestion) {
		t.Errorf("empty question err = %v", err)
	}
}

func TestKeywordAnswer(t *testing.T) {
	vm := sampleViewModel()
	top, _ := vm.TopCategory()
	tests := []struct {
		question string
		contains string
	}{
		{"How do I start investing with $100?", "index fund"},
		{"What's a good student credit card?", "annual fee"},
		{"RRSP vs TFSA?", "TFSA usually wins"},
		{"Why is my money disappearing?", top.DisplayName},
		{"Is a car worth it?", "simple steps"},
	}
	for _, tt := range tests {
		if got := KeywordAnswer(tt.question, vm); !strings.Contains(got, tt.contains) {
			t.Errorf("KeywordAnswer(%q) = %q, want it to mention %q", tt.question, got, tt.contains)
		}
	}
	if got := KeywordAnswer("where does my spending go", core.InsightsViewModel{}); !strings.Contains(got, "three days") {
		t.Errorf("spending answer without data = %q", got)
	}
}

func TestFollowUps(t *testing.T) {
	tests := []struct {
		question string
		first    string
	}{
		{"Should I invest?", "How do TFSAs work?"},
		{"How to improve my credit score?", "How to apply for a credit card"},
		{"hello", "Tell me more"},
	}
	for _, tt := range tests {
		got := FollowUps(tt.question)
		if len(got) != 3 || got[0] != tt.first {
			t.Errorf("FollowUps(%q) = %v", tt.question, got)
		}
	}
}

func TestChat(t *testing.T) {
	ctx := context.Background()
	vm := sampleViewModel()

	gen := &fakeGenerator{text: "Open a TFSA first."}
	reply, err := fixedService(gen, kv.NewMemory()).Chat(ctx, "Should I invest?", vm)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply.Source != SourceGenerated || reply.Answer != "Open a TFSA first." || len(reply.Suggestions) != 3 {
		t.Errorf("generated reply = %+v", reply)
	}

	failing := &fakeGenerator{err: errors.New("quota")}
	reply, err = fixedService(failing, kv.NewMemory()).Chat(ctx, "Should I invest?", vm)
	if err != nil {
		t.Fatalf("Chat fallback: %v", err)
	}
	if reply.Source != SourceRules || !strings.Contains(reply.Answer, "index fund") {
		t.Errorf("fallback reply = %+v", reply)
	}

	s := fixedService(nil, kv.NewMemory())
	if _, err := s.Chat(ctx, "   ", vm); !errors.Is(err, ErrEmptyQuestion) {
		t.Errorf("empty question err = %v", err)
	}
	if _, err := s.Chat(ctx, strings.Repeat("a", MaxQuestionLength+1), vm); !errors.Is(err, ErrQuestionTooLong) {
		t.Errorf("long question err = %v", err)
	}
}

func TestBuildChatPrompt(t *testing.T) {
	p := BuildChatPrompt("RRSP vs TFSA?", sampleViewModel())
	for _, want := range []string{"Health score", "Question: RRSP vs TFSA?"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
