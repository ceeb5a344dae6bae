// Package model defines domain types for school budgets, revenue and profiles.
package model

// Budget group names. The group decides the currency of every amount below it.
const (
	GroupOPEX  = "OPEX"  // operating expenditure, denominated in SSP
	GroupCAPEX = "CAPEX" // capital expenditure, denominated in USD
)

// ValidGroup reports whether name is one of the two classification groups.
func ValidGroup(name string) bool {
	return name == GroupOPEX || name == GroupCAPEX
}

// BudgetTree is the ordered list of expenditure groups.
type BudgetTree []BudgetGroup

// BudgetGroup holds the categories of one classification group.
type BudgetGroup struct {
	ID         string           `json:"id"`
	GroupName  string           `json:"groupName" validate:"required,budget_group"`
	Categories []BudgetCategory `json:"categories" validate:"dive"`
}

// BudgetCategory is a chart-of-accounts category within a group.
type BudgetCategory struct {
	ID           string       `json:"id"`
	CategoryName string       `json:"categoryName" validate:"required"`
	CategoryCode string       `json:"categoryCode"`
	Items        []BudgetItem `json:"items" validate:"dive"`
}

// BudgetItem is one planned activity line.
type BudgetItem struct {
	ID                         string       `json:"id"`
	BudgetCode                 string       `json:"budgetCode"`
	Description                string       `json:"description"`
	NeededItems                []NeededItem `json:"neededItems" validate:"dive"`
	FundingSource              string       `json:"fundingSource"`
	MonthActivityToBeCompleted string       `json:"monthActivityToBeCompleted"`
}

// NeededItem is a purchasable unit within a budget line.
// TotalCost is stored, not derived; aggregation trusts it.
type NeededItem struct {
	Name      string  `json:"name" validate:"required"`
	UnitCost  float64 `json:"unitCost" validate:"gte=0"`
	Quantity  float64 `json:"quantity" validate:"gte=0"`
	TotalCost float64 `json:"totalCost" validate:"gte=0"`
}

// RevenueTree is the ordered list of revenue groups.
type RevenueTree []RevenueGroup

// RevenueGroup holds the revenue categories of one classification group.
type RevenueGroup struct {
	ID         string            `json:"id"`
	GroupName  string            `json:"groupName" validate:"required,budget_group"`
	Categories []RevenueCategory `json:"categories" validate:"dive"`
}

// RevenueCategory is a revenue source category.
type RevenueCategory struct {
	ID           string        `json:"id"`
	CategoryName string        `json:"categoryName" validate:"required"`
	CategoryCode string        `json:"categoryCode"`
	Items        []RevenueItem `json:"items" validate:"dive"`
}

// RevenueItem is a single expected income line.
type RevenueItem struct {
	ID          string  `json:"id"`
	BudgetCode  string  `json:"budgetCode"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount" validate:"gte=0"`
}

// BudgetCode is one entry of the budget/revenue taxonomy served by the API.
type BudgetCode struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Group  string `json:"group"`
	Kind   string `json:"kind"` // "budget" or "revenue"
	Parent string `json:"parent,omitempty"`
}
