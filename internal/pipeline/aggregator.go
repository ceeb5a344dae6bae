// Package pipeline reduces budget and revenue trees into settlement-currency totals.
package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/sims/internal/currency"
	"github.com/theirongolddev/sims/internal/model"
)

// centPlaces is the precision currency totals are rounded to.
const centPlaces = 2

// toSSP converts an amount of the given group into SSP.
func toSSP(group string, amount decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	if group == model.GroupCAPEX {
		return amount.Mul(rate)
	}
	return amount
}

func rateOf(rates currency.RateProvider) decimal.Decimal {
	if rates == nil {
		rates = currency.Default()
	}
	return decimal.NewFromFloat(rates.USDToSSP())
}

// TotalRevenue sums every revenue item in SSP, walking groups, categories and
// items in order. CAPEX items are converted at the provider's rate.
func TotalRevenue(tree model.RevenueTree, rates currency.RateProvider) float64 {
	rate := rateOf(rates)
	total := decimal.Zero
	for _, g := range tree {
		for _, c := range g.Categories {
			for _, it := range c.Items {
				total = total.Add(toSSP(g.GroupName, decimal.NewFromFloat(it.Amount), rate))
			}
		}
	}
	return total.InexactFloat64()
}

// TotalBudget sums the stored totalCost of every needed item in SSP and rounds
// the result to two decimals, half away from zero.
func TotalBudget(tree model.BudgetTree, rates currency.RateProvider) float64 {
	rate := rateOf(rates)
	total := decimal.Zero
	for _, g := range tree {
		for _, c := range g.Categories {
			for _, it := range c.Items {
				for _, n := range it.NeededItems {
					total = total.Add(toSSP(g.GroupName, decimal.NewFromFloat(n.TotalCost), rate))
				}
			}
		}
	}
	return total.Round(centPlaces).InexactFloat64()
}

// Utilization returns budget as a percentage of revenue. ok is false when
// revenue is zero and the ratio is undefined.
func Utilization(totalBudget, totalRevenue float64) (pct float64, ok bool) {
	if totalRevenue == 0 {
		return 0, false
	}
	return totalBudget / totalRevenue * 100, true
}

// IsOverBudget reports whether planned expenditure exceeds available revenue.
// This is the only budget-health signal allowed to gate submission.
func IsOverBudget(totalBudget, totalRevenue float64) bool {
	return decimal.NewFromFloat(totalRevenue).Sub(decimal.NewFromFloat(totalBudget)).IsNegative()
}

// Summarize computes all totals for a draft.
func Summarize(budget model.BudgetTree, revenue model.RevenueTree, rates currency.RateProvider) model.BudgetTotals {
	if rates == nil {
		rates = currency.Default()
	}
	rev := TotalRevenue(revenue, rates)
	bud := TotalBudget(budget, rates)
	util, ok := Utilization(bud, rev)

	return model.BudgetTotals{
		TotalRevenue:       rev,
		TotalBudget:        bud,
		Balance:            decimal.NewFromFloat(rev).Sub(decimal.NewFromFloat(bud)).InexactFloat64(),
		Utilization:        util,
		UtilizationDefined: ok,
		OverBudget:         IsOverBudget(bud, rev),
		Rate:               rates.USDToSSP(),
	}
}

// AggregateBudgetGroups computes per-group and per-category subtotals of the
// expenditure tree, preserving tree order.
func AggregateBudgetGroups(tree model.BudgetTree, rates currency.RateProvider) []model.GroupTotals {
	rate := rateOf(rates)
	groups := make([]model.GroupTotals, 0, len(tree))
	for _, g := range tree {
		native := decimal.Zero
		gt := model.GroupTotals{Group: g.GroupName}
		for _, c := range g.Categories {
			sum := decimal.Zero
			for _, it := range c.Items {
				for _, n := range it.NeededItems {
					sum = sum.Add(decimal.NewFromFloat(n.TotalCost))
				}
			}
			native = native.Add(sum)
			gt.Categories = append(gt.Categories, model.CategoryTotals{
				Name:  c.CategoryName,
				Code:  c.CategoryCode,
				Items: len(c.Items),
				SSP:   toSSP(g.GroupName, sum, rate).Round(centPlaces).InexactFloat64(),
			})
		}
		gt.Native = native.Round(centPlaces).InexactFloat64()
		gt.SSP = toSSP(g.GroupName, native, rate).Round(centPlaces).InexactFloat64()
		groups = append(groups, gt)
	}
	return groups
}

// AggregateRevenueGroups computes per-group and per-category subtotals of the
// revenue tree, preserving tree order.
func AggregateRevenueGroups(tree model.RevenueTree, rates currency.RateProvider) []model.GroupTotals {
	rate := rateOf(rates)
	groups := make([]model.GroupTotals, 0, len(tree))
	for _, g := range tree {
		native := decimal.Zero
		gt := model.GroupTotals{Group: g.GroupName}
		for _, c := range g.Categories {
			sum := decimal.Zero
			for _, it := range c.Items {
				sum = sum.Add(decimal.NewFromFloat(it.Amount))
			}
			native = native.Add(sum)
			gt.Categories = append(gt.Categories, model.CategoryTotals{
				Name:  c.CategoryName,
				Code:  c.CategoryCode,
				Items: len(c.Items),
				SSP:   toSSP(g.GroupName, sum, rate).Round(centPlaces).InexactFloat64(),
			})
		}
		gt.Native = native.Round(centPlaces).InexactFloat64()
		gt.SSP = toSSP(g.GroupName, native, rate).Round(centPlaces).InexactFloat64()
		groups = append(groups, gt)
	}
	return groups
}
