package core

const (
	NeedsWork HealthStatus = "Needs Work"
	Okay      HealthStatus = "Okay"
	Good      HealthStatus = "Good"
	Excellent HealthStatus = "Excellent"
)

type HealthStatus string

// CategorySummary is the per-category aggregate of one analysis pass.
type CategorySummary struct {
	CategoryKey       string  `json:"category_key"`
	DisplayName       string  `json:"display_name"`
	ColorTag          string  `json:"color_tag"`
	IconTag           string  `json:"icon_tag"`
	TotalAmount       float64 `json:"total_amount"`
	PercentageOfTotal float64 `json:"percentage_of_total"`
	TransactionCount  int     `json:"transaction_count"`
}

type HealthFactor struct {
	Name        string       `json:"name"`
	Score       int          `json:"score"`
	StatusLabel HealthStatus `json:"status_label"`
}

type HealthScore struct {
	OverallScore int            `json:"overall_score"`
	StatusLabel  HealthStatus   `json:"status_label"`
	Factors      []HealthFactor `json:"factors"`
}

type ProjectionPoint struct {
	PeriodIndex     int     `json:"period_index"`
	Balance         float64 `json:"balance"`
	Contribution    float64 `json:"contribution"`
	InterestAccrued float64 `json:"interest_accrued"`
}

type MicroInvestment struct {
	TargetCategory   string  `json:"target_category"`
	DiscretionarySum float64 `json:"discretionary_spend"`
	MonthlyAmount    float64 `json:"monthly_amount"`
	AnnualProjection float64 `json:"annual_projection"`
	ThreeYear        float64 `json:"three_year_projection"`
	FiveYear         float64 `json:"five_year_projection"`
}

// InsightsViewModel is the only contract the presentation layer depends on.
type InsightsViewModel struct {
	Categories       []CategorySummary `json:"categories"`
	TotalSpent       float64           `json:"total_spent"`
	TotalIncome      float64           `json:"total_income"`
	TotalBalance     float64           `json:"total_balance"`
	AccountCount     int               `json:"account_count"`
	TransactionCount int               `json:"transaction_count"`
	HealthScore      HealthScore       `json:"health_score"`
	MicroInvestment  MicroInvestment   `json:"micro_investment"`
	HasLiveData      bool              `json:"has_live_data"`
}

// TopCategory returns the largest category, if any.
func (vm InsightsViewModel) TopCategory() (CategorySummary, bool) {
	if len(vm.Categories) == 0 {
		return CategorySummary{}, false
	}
	return vm.Categories[0], true
}
