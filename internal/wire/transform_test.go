package wire

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/theirongolddev/sims/internal/currency"
	"github.com/theirongolddev/sims/internal/model"
	"github.com/theirongolddev/sims/internal/pipeline"
)

func sampleBudget() model.BudgetTree {
	return model.BudgetTree{
		{GroupName: model.GroupOPEX, Categories: []model.BudgetCategory{{
			CategoryName: "Learning materials",
			CategoryCode: "2210",
			Items: []model.BudgetItem{{
				BudgetCode:  "2210-01",
				Description: "Stationery",
				NeededItems: []model.NeededItem{
					{Name: "exercise books", UnitCost: 50, Quantity: 4, TotalCost: 200},
					{Name: "pens", UnitCost: 10, Quantity: 30, TotalCost: 300},
				},
				FundingSource:              "Capitation Grant",
				MonthActivityToBeCompleted: "March",
			}},
		}}},
		{GroupName: model.GroupCAPEX, Categories: []model.BudgetCategory{{
			CategoryName: "Furniture",
			Items: []model.BudgetItem{{
				Description: "Desks",
				NeededItems: []model.NeededItem{{Name: "desk", UnitCost: 12.5, Quantity: 8, TotalCost: 100}},
			}},
		}}},
	}
}

func sampleRevenue() model.RevenueTree {
	return model.RevenueTree{
		{GroupName: model.GroupOPEX, Categories: []model.RevenueCategory{
			{CategoryName: "Capitation Grant", CategoryCode: "1301", Items: []model.RevenueItem{
				{BudgetCode: "1301", Description: "Term 1", Amount: 1000},
				{BudgetCode: "1301", Description: "Term 2", Amount: 500},
			}},
		}},
		{GroupName: model.GroupCAPEX, Categories: []model.RevenueCategory{
			{CategoryName: "Donor", CategoryCode: "1401", Items: []model.RevenueItem{
				{BudgetCode: "1401", Description: "Desk grant", Amount: 10},
			}},
		}},
	}
}

func TestFlattenRevenue(t *testing.T) {
	recs := FlattenRevenue(sampleRevenue())
	if len(recs) != 3 {
		t.Fatalf("len = %d, want 3", len(recs))
	}
	want := RevenueRecord{
		Type: "CAPEX", Category: "Donor", Description: "Desk grant",
		Amount: 10, SourceCode: "1401", Group: "CAPEX",
	}
	if recs[2] != want {
		t.Errorf("recs[2] = %+v, want %+v", recs[2], want)
	}
	if FlattenRevenue(nil) == nil {
		t.Error("empty tree must flatten to an empty, non-nil slice")
	}
}

func TestShapeBudget(t *testing.T) {
	groups := ShapeBudget(sampleBudget())
	line := groups[0].Categories[0].Items[0]

	if got := strings.Join(line.NeededItems, ","); got != "exercise books,pens" {
		t.Errorf("NeededItems = %q", got)
	}
	if line.Units != 34 {
		t.Errorf("Units = %v, want 34", line.Units)
	}
	if line.UnitCostSSP != 50 {
		t.Errorf("UnitCostSSP = %v, want first item's 50", line.UnitCostSSP)
	}
	if line.TotalCostSSP != 500 {
		t.Errorf("TotalCostSSP = %v, want 500", line.TotalCostSSP)
	}
	if line.FundingSource != "Capitation Grant" || line.MonthActivityToBeCompleted != "March" {
		t.Errorf("pass-through fields lost: %+v", line)
	}
}

func TestToMeta_NoNulls(t *testing.T) {
	p := Build("ABC123", 2027, model.MetaInfo{SchoolCode: "ABC123"}, nil, nil)
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if strings.Contains(s, "null") {
		t.Fatalf("payload contains null: %s", s)
	}
	for _, want := range []string{`"members":[]`, `"participants":[]`, `"learners":0`, `"hasSMC":false`, `"revenues":[]`, `"budget":[]`} {
		if !strings.Contains(s, want) {
			t.Errorf("payload missing %s", want)
		}
	}
}

func TestToMeta_CopiesSections(t *testing.T) {
	meta := model.MetaInfo{
		Demographics: &model.Demographics{Learners: 320, Female: 170},
		Committee: &model.Committee{
			Chairperson: "A. Deng",
			Members:     []model.CommitteeMember{{Name: "A. Deng", Role: "chair", Gender: "F"}},
		},
		Preparation: &model.Preparation{PreparedBy: "Head teacher", Participants: []string{"SMC"}},
	}
	out := ToMeta(meta)
	if out.Demographics.Learners != 320 || out.Demographics.Female != 170 {
		t.Errorf("Demographics = %+v", out.Demographics)
	}
	if len(out.Committee.Members) != 1 || out.Committee.Members[0].Role != "chair" {
		t.Errorf("Committee = %+v", out.Committee)
	}
	if out.Preparation.PreparedBy != "Head teacher" || len(out.Preparation.Participants) != 1 {
		t.Errorf("Preparation = %+v", out.Preparation)
	}
}

func TestHydrate_PreservesTotals(t *testing.T) {
	rates := currency.Default()
	budget, revenue := sampleBudget(), sampleRevenue()
	wantBudget := pipeline.TotalBudget(budget, rates)
	wantRevenue := pipeline.TotalRevenue(revenue, rates)

	p := Build("ABC123", 2027, model.MetaInfo{}, budget, revenue)

	// Go through JSON as the server would.
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var fetched Payload
	if err := json.Unmarshal(data, &fetched); err != nil {
		t.Fatal(err)
	}

	_, gotBudget, gotRevenue := Hydrate(fetched)
	if got := pipeline.TotalBudget(gotBudget, rates); math.Abs(got-wantBudget) > 0.005 {
		t.Errorf("budget total after round-trip = %v, want %v", got, wantBudget)
	}
	if got := pipeline.TotalRevenue(gotRevenue, rates); math.Abs(got-wantRevenue) > 0.005 {
		t.Errorf("revenue total after round-trip = %v, want %v", got, wantRevenue)
	}

	// Second pass through the transformer is stable.
	again := Build("ABC123", 2027, model.MetaInfo{}, gotBudget, gotRevenue)
	if again.Budget[0].Categories[0].Items[0].TotalCostSSP != 500 {
		t.Errorf("re-shaped total = %v, want 500", again.Budget[0].Categories[0].Items[0].TotalCostSSP)
	}
	if len(again.Revenues) != 3 {
		t.Errorf("re-flattened revenues = %d, want 3", len(again.Revenues))
	}
}

func TestHydrate_RegroupsRevenue(t *testing.T) {
	_, _, tree := Hydrate(Payload{Revenues: []RevenueRecord{
		{Type: "OPEX", Group: "OPEX", Category: "Grant", Amount: 1},
		{Type: "CAPEX", Group: "CAPEX", Category: "Donor", Amount: 2},
		{Type: "OPEX", Group: "OPEX", Category: "Grant", Amount: 3},
		{Type: "OPEX", Category: "Fees", Amount: 4},
	}})

	if len(tree) != 2 {
		t.Fatalf("groups = %d, want 2", len(tree))
	}
	if tree[0].GroupName != "OPEX" || len(tree[0].Categories) != 2 {
		t.Fatalf("OPEX group = %+v", tree[0])
	}
	if len(tree[0].Categories[0].Items) != 2 {
		t.Errorf("Grant items = %d, want 2", len(tree[0].Categories[0].Items))
	}
}

func TestHydrate_LineWithoutNames(t *testing.T) {
	items := hydrateNeeded(BudgetLine{Description: "Repairs", Units: 1, UnitCostSSP: 70, TotalCostSSP: 70})
	if len(items) != 1 || items[0].Name != "Repairs" || items[0].TotalCost != 70 {
		t.Fatalf("items = %+v", items)
	}
	if hydrateNeeded(BudgetLine{}) != nil {
		t.Error("empty line should hydrate to no needed items")
	}
}
