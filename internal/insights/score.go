package insights

import (
	"math"

	"askcents/internal/core"
)

const (
	FactorBalanceAdequacy  = "Balance Adequacy"
	FactorSpendingControl  = "Spending Control"
	FactorAccountDiversity = "Account Diversity"
	FactorActivityLevel    = "Activity Level"
)

// ScoreInput holds the aggregate signals the scorer works from.
type ScoreInput struct {
	TotalBalance     float64
	TotalSpent       float64
	AccountCount     int
	TransactionCount int
}

// ScorePolicy holds the saturation points and label thresholds of the health
// score. These are product decisions, so they are configurable.
type ScorePolicy struct {
	// CoverMonths is how many periods of spend the balance must cover for
	// Balance Adequacy to reach 100.
	CoverMonths float64
	// AccountsForFull is the account count at which Account Diversity saturates.
	AccountsForFull int
	// TransactionsForFull is the transaction count at which Activity Level saturates.
	TransactionsForFull int

	// Upper bounds (exclusive) for NeedsWork and Okay, and the inclusive
	// upper bound for Good. Anything above GoodMax is Excellent.
	NeedsWorkBelow int
	OkayBelow      int
	GoodMax        int
}

func DefaultScorePolicy() ScorePolicy {
	return ScorePolicy{
		CoverMonths:         3,
		AccountsForFull:     3,
		TransactionsForFull: 10,
		NeedsWorkBelow:      30,
		OkayBelow:           60,
		GoodMax:             85,
	}
}

// Label maps a 0-100 score onto a status label.
func (p ScorePolicy) Label(score int) core.HealthStatus {
	switch {
	case score < p.NeedsWorkBelow:
		return core.NeedsWork
	case score < p.OkayBelow:
		return core.Okay
	case score <= p.GoodMax:
		return core.Good
	default:
		return core.Excellent
	}
}

// Score derives the composite health score. Negative or non-finite inputs
// are treated as zero; every factor is clamped to [0,100].
func Score(in ScoreInput, p ScorePolicy) core.HealthScore {
	p = p.withDefaults()
	balance := nonNegative(in.TotalBalance)
	spent := nonNegative(in.TotalSpent)

	factors := []struct {
		name  string
		value float64
	}{
		{FactorBalanceAdequacy, balanceAdequacy(balance, spent, p.CoverMonths)},
		{FactorSpendingControl, spendingControl(balance, spent)},
		{FactorAccountDiversity, saturating(float64(max(in.AccountCount, 0)), float64(p.AccountsForFull))},
		{FactorActivityLevel, saturating(float64(max(in.TransactionCount, 0)), float64(p.TransactionsForFull))},
	}

	hs := core.HealthScore{Factors: make([]core.HealthFactor, 0, len(factors))}
	sum := 0
	for _, f := range factors {
		s := clampScore(f.value)
		sum += s
		hs.Factors = append(hs.Factors, core.HealthFactor{
			Name:        f.name,
			Score:       s,
			StatusLabel: p.Label(s),
		})
	}
	hs.OverallScore = clampScore(float64(sum) / float64(len(factors)))
	hs.StatusLabel = p.Label(hs.OverallScore)
	return hs
}

// balanceAdequacy saturates once the balance covers coverMonths of spend.
func balanceAdequacy(balance, spent, coverMonths float64) float64 {
	if balance <= 0 {
		return 0
	}
	if spent == 0 {
		return 100
	}
	return balance / (spent * coverMonths) * 100
}

// spendingControl falls toward 0 as spend approaches the balance.
func spendingControl(balance, spent float64) float64 {
	if balance <= 0 {
		return 0
	}
	return (1 - spent/balance) * 100
}

func saturating(value, full float64) float64 {
	if full <= 0 {
		return 100
	}
	return value / full * 100
}

func clampScore(x float64) int {
	if math.IsNaN(x) {
		return 0
	}
	x = math.Round(x)
	if x < 0 {
		return 0
	}
	if x > 100 {
		return 100
	}
	return int(x)
}

func nonNegative(x float64) float64 {
	x = finite(x)
	if x < 0 {
		return 0
	}
	return x
}

func (p ScorePolicy) withDefaults() ScorePolicy {
	d := DefaultScorePolicy()
	if p.CoverMonths <= 0 {
		p.CoverMonths = d.CoverMonths
	}
	if p.AccountsForFull <= 0 {
		p.AccountsForFull = d.AccountsForFull
	}
	if p.TransactionsForFull <= 0 {
		p.TransactionsForFull = d.TransactionsForFull
	}
	if p.NeedsWorkBelow <= 0 && p.OkayBelow <= 0 && p.GoodMax <= 0 {
		p.NeedsWorkBelow, p.OkayBelow, p.GoodMax = d.NeedsWorkBelow, d.OkayBelow, d.GoodMax
	}
	return p
}
