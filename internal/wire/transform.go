package wire

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/sims/internal/model"
)

// Build assembles the payload for a school's budget year.
func Build(code string, year int, meta model.MetaInfo, budget model.BudgetTree, revenue model.RevenueTree) Payload {
	return Payload{
		SchoolCode: code,
		Year:       year,
		Meta:       ToMeta(meta),
		Revenues:   FlattenRevenue(revenue),
		Budget:     ShapeBudget(budget),
	}
}

// FlattenRevenue turns the revenue tree into one record per item, in tree order.
func FlattenRevenue(tree model.RevenueTree) []RevenueRecord {
	records := []RevenueRecord{}
	for _, g := range tree {
		for _, c := range g.Categories {
			for _, it := range c.Items {
				records = append(records, RevenueRecord{
					Type:        g.GroupName,
					Category:    c.CategoryName,
					Description: it.Description,
					Amount:      it.Amount,
					SourceCode:  it.BudgetCode,
					Group:       g.GroupName,
				})
			}
		}
	}
	return records
}

// ShapeBudget keeps the group/category/item nesting and collapses each line's
// needed items. UnitCostSSP is the first needed item's unit cost.
func ShapeBudget(tree model.BudgetTree) []BudgetGroup {
	groups := make([]BudgetGroup, 0, len(tree))
	for _, g := range tree {
		wg := BudgetGroup{Group: g.GroupName, Categories: []BudgetCategory{}}
		for _, c := range g.Categories {
			wc := BudgetCategory{
				Category:     c.CategoryName,
				CategoryCode: c.CategoryCode,
				Items:        make([]BudgetLine, 0, len(c.Items)),
			}
			for _, it := range c.Items {
				wc.Items = append(wc.Items, shapeLine(it))
			}
			wg.Categories = append(wg.Categories, wc)
		}
		groups = append(groups, wg)
	}
	return groups
}

func shapeLine(it model.BudgetItem) BudgetLine {
	line := BudgetLine{
		BudgetCode:                 it.BudgetCode,
		Description:                it.Description,
		NeededItems:                make([]string, 0, len(it.NeededItems)),
		FundingSource:              it.FundingSource,
		MonthActivityToBeCompleted: it.MonthActivityToBeCompleted,
	}
	units, total := decimal.Zero, decimal.Zero
	for _, n := range it.NeededItems {
		line.NeededItems = append(line.NeededItems, n.Name)
		units = units.Add(decimal.NewFromFloat(n.Quantity))
		total = total.Add(decimal.NewFromFloat(n.TotalCost))
	}
	if len(it.NeededItems) > 0 {
		line.UnitCostSSP = it.NeededItems[0].UnitCost
	}
	line.Units = units.InexactFloat64()
	line.TotalCostSSP = total.InexactFloat64()
	return line
}

// ToMeta copies the meta-information, defaulting missing sections and lists.
func ToMeta(m model.MetaInfo) Meta {
	out := Meta{
		SchoolName: m.SchoolName,
		SchoolCode: m.SchoolCode,
		County:     m.County,
		Payam:      m.Payam,
		Committee:  Committee{Members: []CommitteeMember{}},
		Preparation: Preparation{
			Participants: []string{},
		},
	}
	if d := m.Demographics; d != nil {
		out.Demographics = Demographics(*d)
	}
	if g := m.Governance; g != nil {
		out.Governance = Governance(*g)
	}
	if c := m.Committee; c != nil {
		out.Committee.Chairperson = c.Chairperson
		out.Committee.MeetingsHeld = c.MeetingsHeld
		for _, mem := range c.Members {
			out.Committee.Members = append(out.Committee.Members, CommitteeMember(mem))
		}
	}
	if p := m.Preparation; p != nil {
		out.Preparation = Preparation{
			PreparedBy:   p.PreparedBy,
			Position:     p.Position,
			Phone:        p.Phone,
			PreparedOn:   p.PreparedOn,
			Approved:     p.Approved,
			ApprovedBy:   p.ApprovedBy,
			Participants: append([]string{}, p.Participants...),
		}
	}
	return out
}

// Hydrate rebuilds draft trees from a fetched payload for edit mode. IDs are
// left empty for the caller to assign.
//
// Needed-item detail is lost on the wire, so each line's units, unit cost and
// total are carried on its first needed item. Aggregate totals are preserved.
func Hydrate(p Payload) (model.MetaInfo, model.BudgetTree, model.RevenueTree) {
	return fromMeta(p.Meta), hydrateBudget(p.Budget), hydrateRevenue(p.Revenues)
}

func hydrateBudget(groups []BudgetGroup) model.BudgetTree {
	tree := make(model.BudgetTree, 0, len(groups))
	for _, g := range groups {
		mg := model.BudgetGroup{GroupName: g.Group}
		for _, c := range g.Categories {
			mc := model.BudgetCategory{CategoryName: c.Category, CategoryCode: c.CategoryCode}
			for _, line := range c.Items {
				mc.Items = append(mc.Items, model.BudgetItem{
					BudgetCode:                 line.BudgetCode,
					Description:                line.Description,
					NeededItems:                hydrateNeeded(line),
					FundingSource:              line.FundingSource,
					MonthActivityToBeCompleted: line.MonthActivityToBeCompleted,
				})
			}
			mg.Categories = append(mg.Categories, mc)
		}
		tree = append(tree, mg)
	}
	return tree
}

func hydrateNeeded(line BudgetLine) []model.NeededItem {
	names := line.NeededItems
	if len(names) == 0 {
		if line.TotalCostSSP == 0 && line.Units == 0 {
			return nil
		}
		names = []string{line.Description}
	}
	items := make([]model.NeededItem, len(names))
	for i, name := range names {
		items[i].Name = name
	}
	items[0].UnitCost = line.UnitCostSSP
	items[0].Quantity = line.Units
	items[0].TotalCost = line.TotalCostSSP
	return items
}

// hydrateRevenue regroups flat records by group then category, keeping the
// order in which each first appears.
func hydrateRevenue(records []RevenueRecord) model.RevenueTree {
	var tree model.RevenueTree
	groupIdx := map[string]int{}
	catIdx := map[[2]string]int{}

	for _, r := range records {
		group := r.Group
		if group == "" {
			group = r.Type
		}
		gi, ok := groupIdx[group]
		if !ok {
			gi = len(tree)
			groupIdx[group] = gi
			tree = append(tree, model.RevenueGroup{GroupName: group})
		}
		key := [2]string{group, r.Category}
		ci, ok := catIdx[key]
		if !ok {
			ci = len(tree[gi].Categories)
			catIdx[key] = ci
			tree[gi].Categories = append(tree[gi].Categories, model.RevenueCategory{
				CategoryName: r.Category,
				CategoryCode: r.SourceCode,
			})
		}
		cat := &tree[gi].Categories[ci]
		cat.Items = append(cat.Items, model.RevenueItem{
			BudgetCode:  r.SourceCode,
			Description: r.Description,
			Amount:      r.Amount,
		})
	}
	return tree
}

func fromMeta(m Meta) model.MetaInfo {
	d := model.Demographics(m.Demographics)
	g := model.Governance(m.Governance)
	c := model.Committee{Chairperson: m.Committee.Chairperson, MeetingsHeld: m.Committee.MeetingsHeld}
	for _, mem := range m.Committee.Members {
		c.Members = append(c.Members, model.CommitteeMember(mem))
	}
	p := model.Preparation{
		PreparedBy:   m.Preparation.PreparedBy,
		Position:     m.Preparation.Position,
		Phone:        m.Preparation.Phone,
		PreparedOn:   m.Preparation.PreparedOn,
		Approved:     m.Preparation.Approved,
		ApprovedBy:   m.Preparation.ApprovedBy,
		Participants: append([]string(nil), m.Preparation.Participants...),
	}
	return model.MetaInfo{
		SchoolName:   m.SchoolName,
		SchoolCode:   m.SchoolCode,
		County:       m.County,
		Payam:        m.Payam,
		Demographics: &d,
		Governance:   &g,
		Committee:    &c,
		Preparation:  &p,
	}
}
