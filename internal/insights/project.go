package insights

import (
	"math"

	"askcents/internal/core"
)

// Default annual rates for the named projections.
const (
	GoalSavingsRate     = 2.0
	MicroInvestmentRate = 7.0
	GeneralSavingsRate  = 4.0
)

// Project simulates monthly compounding. The result has periods+1 points;
// point 0 is the initial state. For i > 0:
//
//	balance[i] = (balance[i-1] + contribution) * (1 + annualRatePercent/100/12)
//
// Negative contributions model withdrawals. No rounding happens inside the
// recurrence; use RoundCurrency at the presentation boundary.
func Project(principal, contribution, annualRatePercent float64, periods int) []core.ProjectionPoint {
	if periods < 0 {
		periods = 0
	}
	principal = finite(principal)
	contribution = finite(contribution)
	monthly := finite(annualRatePercent) / 100 / 12

	points := make([]core.ProjectionPoint, periods+1)
	points[0] = core.ProjectionPoint{PeriodIndex: 0, Balance: principal}
	prev := principal
	for i := 1; i <= periods; i++ {
		bal := (prev + contribution) * (1 + monthly)
		points[i] = core.ProjectionPoint{
			PeriodIndex:     i,
			Balance:         bal,
			Contribution:    contribution,
			InterestAccrued: bal - prev - contribution,
		}
		prev = bal
	}
	return points
}

// FinalBalance returns the balance of the last point, or 0 for an empty
// sequence.
func FinalBalance(points []core.ProjectionPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	return points[len(points)-1].Balance
}

// TotalInterest sums the interest accrued across a projection.
func TotalInterest(points []core.ProjectionPoint) float64 {
	var sum float64
	for _, p := range points {
		sum += p.InterestAccrued
	}
	return sum
}

// RoundCurrency rounds to whole currency units.
func RoundCurrency(x float64) float64 {
	return math.Round(x)
}

// RoundPoints returns a copy of points rounded to whole currency units for
// display.
func RoundPoints(points []core.ProjectionPoint) []core.ProjectionPoint {
	out := make([]core.ProjectionPoint, len(points))
	for i, p := range points {
		out[i] = core.ProjectionPoint{
			PeriodIndex:     p.PeriodIndex,
			Balance:         RoundCurrency(p.Balance),
			Contribution:    RoundCurrency(p.Contribution),
			InterestAccrued: RoundCurrency(p.InterestAccrued),
		}
	}
	return out
}

// ProjectGoalSavings projects a goal balance with monthly top-ups.
func ProjectGoalSavings(current, monthly float64, months int) []core.ProjectionPoint {
	return Project(current, monthly, GoalSavingsRate, months)
}

// ProjectMicroInvestment projects investing a fixed monthly amount from zero.
func ProjectMicroInvestment(monthly, annualRatePercent float64, months int) []core.ProjectionPoint {
	return Project(0, monthly, annualRatePercent, months)
}

// ProjectGeneralSavings projects a savings account balance.
func ProjectGeneralSavings(principal, monthly float64, months int) []core.ProjectionPoint {
	return Project(principal, monthly, GeneralSavingsRate, months)
}

// MonthsToTarget returns the first period whose balance reaches target, or
// -1 when no point of the projection does.
func MonthsToTarget(points []core.ProjectionPoint, target float64) int {
	for _, p := range points {
		if p.Balance >= target {
			return p.PeriodIndex
		}
	}
	return -1
}
