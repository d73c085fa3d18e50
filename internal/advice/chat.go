package advice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"askcents/internal/core"
)

// MaxQuestionLength bounds a chat question in characters.
const MaxQuestionLength = 500

var (
	ErrEmptyQuestion   = errors.New("question is empty")
	ErrQuestionTooLong = fmt.Errorf("question exceeds %d characters", MaxQuestionLength)
	ErrUnknownAction   = errors.New("unknown quick action")
)

// QuickAction rewrites an earlier question into a follow-up.
type QuickAction string

const (
	ActionSimple   QuickAction = "simple"
	ActionExamples QuickAction = "examples"
	ActionNext     QuickAction = "next"
)

// Reply is one chat answer.
type Reply struct {
	Question    string   `json:"question"`
	Answer      string   `json:"answer"`
	Source      string   `json:"source"`
	Suggestions []string `json:"suggestions"`
}

var starters = []string{
	"How do I start investing with $100?",
	"RRSP vs TFSA?",
	"What's a good student credit card?",
	"Why is my money disappearing?",
	"How to build an emergency fund?",
	"Best apps for tracking expenses?",
	"Should I pay off debt or invest first?",
	"How to improve my credit score?",
}

// Starters returns the conversation openers offered before the first
// question.
func Starters() []string {
	return slices.Clone(starters)
}

// Rewrite turns an earlier question into the follow-up a quick action asks
// for.
func Rewrite(action QuickAction, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	switch action {
	case ActionSimple:
		return fmt.Sprintf("Can you explain %q in simpler terms?", question), nil
	case ActionExamples:
		return fmt.Sprintf("Can you give me specific examples for: %q", question), nil
	case ActionNext:
		return fmt.Sprintf("What should I do next after: %q", question), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

// Chat answers a free-text question with the analysis as context. The
// generator is tried first; keyword rules answer when it is missing or
// fails. Chat answers are not cached.
func (s *Service) Chat(ctx context.Context, question string, vm core.InsightsViewModel) (Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Reply{}, ErrEmptyQuestion
	}
	if utf8.RuneCountInString(question) > MaxQuestionLength {
		return Reply{}, ErrQuestionTooLong
	}

	reply := Reply{Question: question, Suggestions: FollowUps(question)}
	if s.gen != nil {
		text, err := s.gen.Generate(ctx, BuildChatPrompt(question, vm))
		if err == nil {
			reply.Answer, reply.Source = text, SourceGenerated
			return reply, nil
		}
		if ctx.Err() != nil {
			return Reply{}, ctx.Err()
		}
		slog.WarnContext(ctx, "Chat generation failed, using rules", "component", "advice", "error", err)
	}
	reply.Answer, reply.Source = KeywordAnswer(question, vm), SourceRules
	return reply, nil
}

// BuildChatPrompt frames a student's question with their spending summary.
func BuildChatPrompt(question string, vm core.InsightsViewModel) string {
	var b strings.Builder
	b.WriteString("You are a friendly financial coach for Canadian university students.\n")
	b.WriteString("Answer the question below in plain language, using the spending summary when it helps.\n")
	b.WriteString("Plain text only, no Markdown, at most 150 words.\n\n")
	writeSummary(&b, vm)
	fmt.Fprintf(&b, "\nQuestion: %s\n", question)
	return b.String()
}

// KeywordAnswer routes a question to a canned answer by keyword.
func KeywordAnswer(question string, vm core.InsightsViewModel) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "invest"):
		return "For students starting with $100, a low-cost index fund inside a TFSA is a solid first step. " +
			"You get diversification and tax-free growth. Ask how TFSAs work or which beginner platforms to look at."
	case strings.Contains(q, "credit card"):
		return "Look for a card with no annual fee and rewards on what you buy most, like groceries or transit. " +
			"Student cards from the big banks are common picks. Building credit early is smart; pay the full balance every month."
	case strings.Contains(q, "rrsp"), strings.Contains(q, "tfsa"):
		return "As a student a TFSA usually wins: withdrawals are tax-free, withdrawn room comes back next year, " +
			"and it does not affect government benefits. An RRSP pays off once you earn more and want the deduction now."
	case strings.Contains(q, "disappear"), strings.Contains(q, "spend"):
		if top, ok := vm.TopCategory(); ok {
			return fmt.Sprintf("%s takes %.1f%% of your spending (%s). Start there: set a weekly cap and check it every Sunday.",
				top.DisplayName, top.PercentageOfTotal, core.FormatDollars(top.TotalAmount))
		}
		return "Track every purchase for three days. Small daily buys usually explain where the money goes."
	default:
		return "Happy to help with that! Let's break it down into simple steps you can act on right away."
	}
}

// FollowUps suggests the next questions to ask after question.
func FollowUps(question string) []string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "invest"):
		return []string{"How do TFSAs work?", "Show me investment apps", "What's an index fund?"}
	case strings.Contains(q, "credit"):
		return []string{"How to apply for a credit card", "Credit score basics", "Best spending habits"}
	default:
		return []string{"Tell me more", "What should I do first?", "Any other tips?"}
	}
}
