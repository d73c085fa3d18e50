package insights

import (
	"askcents/internal/core"
)

// Policy collects every tunable of an analysis pass.
type Policy struct {
	Score ScorePolicy
	// TopN is how many categories the view-model keeps.
	TopN int
	// Discretionary lists the category keys considered reducible.
	Discretionary []string
	// ReductionPercent of discretionary spend becomes the monthly investable amount.
	ReductionPercent float64
	// AssumedReturnPercent is the annual return used for micro-investment projections.
	AssumedReturnPercent float64
	// ProjectionMonths is the horizon of the annual projection.
	ProjectionMonths int
}

func DefaultPolicy() Policy {
	return Policy{
		Score:                DefaultScorePolicy(),
		TopN:                 6,
		Discretionary:        []string{"FOOD_AND_DRINK", "ENTERTAINMENT", "GENERAL_MERCHANDISE"},
		ReductionPercent:     15,
		AssumedReturnPercent: 7,
		ProjectionMonths:     12,
	}
}

// Orchestrator composes the classifier, aggregator, scorer and projector into
// the view-model consumed by the presentation layer. It holds only its
// immutable policy, so one value can serve concurrent callers.
type Orchestrator struct {
	policy        Policy
	discretionary map[string]struct{}
}

func NewOrchestrator(p Policy) *Orchestrator {
	d := DefaultPolicy()
	if p.TopN <= 0 {
		p.TopN = d.TopN
	}
	if len(p.Discretionary) == 0 {
		p.Discretionary = d.Discretionary
	}
	if p.ReductionPercent <= 0 {
		p.ReductionPercent = d.ReductionPercent
	}
	if p.AssumedReturnPercent < 0 {
		p.AssumedReturnPercent = d.AssumedReturnPercent
	}
	if p.ProjectionMonths <= 0 {
		p.ProjectionMonths = d.ProjectionMonths
	}
	set := make(map[string]struct{}, len(p.Discretionary))
	for _, k := range p.Discretionary {
		set[NormalizeKey(k)] = struct{}{}
	}
	return &Orchestrator{policy: p, discretionary: set}
}

// Policy returns the orchestrator's effective policy.
func (o *Orchestrator) Policy() Policy {
	return o.policy
}

// Build runs one analysis pass. When either input is empty the fixed sample
// dataset is returned with HasLiveData=false; live and sample data are never
// mixed.
func (o *Orchestrator) Build(accounts []core.Account, txs []core.Transaction) core.InsightsViewModel {
	if len(accounts) == 0 || len(txs) == 0 {
		vm := o.build(SampleAccounts(), SampleTransactions())
		vm.HasLiveData = false
		return vm
	}
	vm := o.build(accounts, txs)
	vm.HasLiveData = true
	return vm
}

func (o *Orchestrator) build(accounts []core.Account, txs []core.Transaction) core.InsightsViewModel {
	agg := Aggregate(txs, o.policy.TopN)
	balance := NetBalance(accounts)

	return core.InsightsViewModel{
		Categories:       agg.Categories,
		TotalSpent:       agg.TotalSpent,
		TotalIncome:      agg.TotalIncome,
		TotalBalance:     balance,
		AccountCount:     len(accounts),
		TransactionCount: len(txs),
		HealthScore: Score(ScoreInput{
			TotalBalance:     balance,
			TotalSpent:       agg.TotalSpent,
			AccountCount:     len(accounts),
			TransactionCount: len(txs),
		}, o.policy.Score),
		MicroInvestment: o.microInvestment(agg.Categories),
	}
}

// microInvestment sizes the monthly investable amount from discretionary
// spend and projects it forward.
func (o *Orchestrator) microInvestment(top []core.CategorySummary) core.MicroInvestment {
	var mi core.MicroInvestment
	var target core.CategorySummary
	for _, c := range top {
		if _, ok := o.discretionary[c.CategoryKey]; !ok {
			continue
		}
		mi.DiscretionarySum += c.TotalAmount
		// top is sorted descending, so the first hit is the largest
		if target.CategoryKey == "" {
			target = c
		}
	}
	if target.CategoryKey == "" {
		return mi
	}
	mi.TargetCategory = target.DisplayName
	monthly := mi.DiscretionarySum * o.policy.ReductionPercent / 100
	rate := o.policy.AssumedReturnPercent

	mi.MonthlyAmount = core.RoundCents(monthly)
	mi.AnnualProjection = RoundCurrency(FinalBalance(ProjectMicroInvestment(monthly, rate, o.policy.ProjectionMonths)))
	mi.ThreeYear = RoundCurrency(FinalBalance(ProjectMicroInvestment(monthly, rate, 36)))
	mi.FiveYear = RoundCurrency(FinalBalance(ProjectMicroInvestment(monthly, rate, 60)))
	return mi
}

// NetBalance sums account balances, subtracting liabilities.
func NetBalance(accounts []core.Account) float64 {
	var total float64
	for _, a := range accounts {
		a.CurrentBalance = finite(a.CurrentBalance)
		total += a.NetContribution()
	}
	return total
}
