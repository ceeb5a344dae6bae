package model

// BudgetTotals holds the settlement-currency (SSP) totals of a draft.
type BudgetTotals struct {
	TotalRevenue float64
	TotalBudget  float64
	Balance      float64 // revenue minus budget

	// Utilization is budget/revenue*100. Only meaningful when UtilizationDefined.
	Utilization        float64
	UtilizationDefined bool

	OverBudget bool
	Rate       float64 // SSP per USD used for CAPEX conversion
}

// CategoryTotals holds the SSP subtotal of one category.
type CategoryTotals struct {
	Name  string
	Code  string
	Items int
	SSP   float64
}

// GroupTotals holds SSP subtotals for one group and its categories.
type GroupTotals struct {
	Group      string
	Native     float64 // sum in the group's own currency
	SSP        float64
	Categories []CategoryTotals
}

// GenderStats aggregates a roster by gender and disability.
type GenderStats struct {
	Male           int `json:"male"`
	Female         int `json:"female"`
	Total          int `json:"total"`
	WithDisability int `json:"withDisability"`
}
