package core

import (
	"strings"
	"time"
)

const (
	GoalSavings    GoalCategory = "savings"
	GoalInvestment GoalCategory = "investment"
	GoalCredit     GoalCategory = "credit"
	GoalEducation  GoalCategory = "education"
)

type GoalCategory string

// Goal is a user-created or system-suggested savings target.
type Goal struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	TargetAmount  float64      `json:"target_amount"`
	CurrentAmount float64      `json:"current_amount"`
	DeadlineLabel string       `json:"deadline_label"`
	CategoryTag   GoalCategory `json:"category_tag"`
	Suggested     bool         `json:"suggested"`
	DailyTip      string       `json:"daily_tip,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (g Goal) Validate() error {
	title := strings.TrimSpace(g.Title)
	if title == "" {
		return ErrEmptyTitle
	}
	if len(title) > 100 {
		return ErrTitleTooLong
	}
	if g.TargetAmount <= 0 {
		return ErrInvalidTarget
	}
	if g.CurrentAmount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Progress returns completion in percent, clamped to [0,100].
func (g Goal) Progress() int {
	if g.TargetAmount <= 0 {
		return 0
	}
	p := int(g.CurrentAmount / g.TargetAmount * 100)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Remaining returns the amount still to save, never negative.
func (g Goal) Remaining() float64 {
	r := g.TargetAmount - g.CurrentAmount
	if r < 0 {
		return 0
	}
	return r
}

// IsValid returns true if the goal category is known
func (c GoalCategory) IsValid() bool {
	switch c {
	case GoalSavings, GoalInvestment, GoalCredit, GoalEducation:
		return true
	default:
		return false
	}
}
