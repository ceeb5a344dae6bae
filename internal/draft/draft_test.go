package draft

import (
	"errors"
	"math"
	"testing"

	"github.com/theirongolddev/sims/internal/model"
)

func TestAddBudgetItem_RecomputesTotals(t *testing.T) {
	d := New("ABC123", 2027)
	cat, err := d.EnsureBudgetCategory(model.GroupOPEX, "Learning materials", "2210")
	if err != nil {
		t.Fatalf("EnsureBudgetCategory: %v", err)
	}

	id, err := d.AddBudgetItem(cat, model.BudgetItem{
		Description: "Stationery",
		NeededItems: []model.NeededItem{{Name: "books", UnitCost: 50, Quantity: 4, TotalCost: 999}},
	})
	if err != nil {
		t.Fatalf("AddBudgetItem: %v", err)
	}

	s := d.Snapshot()
	got := s.Budget[0].Categories[0].Items[0]
	if got.ID != id {
		t.Errorf("item id = %q, want %q", got.ID, id)
	}
	if got.NeededItems[0].TotalCost != 200 {
		t.Errorf("TotalCost = %v, want 200 (recomputed)", got.NeededItems[0].TotalCost)
	}

	if err := d.UpdateNeededItem(id, 0, 2.5, 3); err != nil {
		t.Fatalf("UpdateNeededItem: %v", err)
	}
	if got := d.Snapshot().Budget[0].Categories[0].Items[0].NeededItems[0].TotalCost; got != 7.5 {
		t.Errorf("TotalCost after update = %v, want 7.5", got)
	}
}

func TestEnsureCategory_Idempotent(t *testing.T) {
	d := New("ABC123", 2027)
	a, _ := d.EnsureRevenueCategory(model.GroupCAPEX, "Donor", "1401")
	b, _ := d.EnsureRevenueCategory(model.GroupCAPEX, "Donor", "1401")
	if a != b {
		t.Fatalf("category ids differ: %s vs %s", a, b)
	}
	if n := len(d.Snapshot().Revenue); n != 1 {
		t.Fatalf("revenue groups = %d, want 1", n)
	}
}

func TestMutations_RejectBadInput(t *testing.T) {
	d := New("ABC123", 2027)
	if _, err := d.AddBudgetGroup("OTHER"); !errors.Is(err, ErrUnknownGroup) {
		t.Errorf("AddBudgetGroup(OTHER) = %v", err)
	}
	if _, err := d.AddBudgetCategory("missing", "x", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddBudgetCategory(missing) = %v", err)
	}
	cat, _ := d.EnsureRevenueCategory(model.GroupOPEX, "Grant", "")
	if _, err := d.AddRevenueItem(cat, model.RevenueItem{Amount: -1}); !errors.Is(err, ErrNegative) {
		t.Errorf("negative amount = %v", err)
	}
	bcat, _ := d.EnsureBudgetCategory(model.GroupOPEX, "Repairs", "")
	_, err := d.AddBudgetItem(bcat, model.BudgetItem{NeededItems: []model.NeededItem{{Quantity: -2}}})
	if !errors.Is(err, ErrNegative) {
		t.Errorf("negative quantity = %v", err)
	}

	nan, inf := math.NaN(), math.Inf(1)
	if _, err := d.AddRevenueItem(cat, model.RevenueItem{Amount: inf}); !errors.Is(err, ErrNotFinite) {
		t.Errorf("infinite amount = %v", err)
	}
	_, err = d.AddBudgetItem(bcat, model.BudgetItem{NeededItems: []model.NeededItem{{UnitCost: nan, Quantity: 4}}})
	if !errors.Is(err, ErrNotFinite) {
		t.Errorf("NaN unit cost = %v", err)
	}

	rev, err := d.AddRevenueItem(cat, model.RevenueItem{Amount: 10})
	if err != nil {
		t.Fatalf("AddRevenueItem: %v", err)
	}
	if err := d.UpdateRevenueAmount(rev, inf); !errors.Is(err, ErrNotFinite) {
		t.Errorf("UpdateRevenueAmount(+Inf) = %v", err)
	}
	line, err := d.AddBudgetItem(bcat, model.BudgetItem{NeededItems: []model.NeededItem{{UnitCost: 5, Quantity: 2}}})
	if err != nil {
		t.Fatalf("AddBudgetItem: %v", err)
	}
	if err := d.UpdateNeededItem(line, 0, nan, 1); !errors.Is(err, ErrNotFinite) {
		t.Errorf("UpdateNeededItem(NaN) = %v", err)
	}
	// rejected values never reach the stored tree
	s := d.Snapshot()
	if got := s.Revenue[0].Categories[0].Items[0].Amount; got != 10 {
		t.Errorf("revenue amount = %v, want 10", got)
	}
}

func TestRemoveAndVersion(t *testing.T) {
	d := New("ABC123", 2027)
	v0 := d.Version()
	cat, _ := d.EnsureRevenueCategory(model.GroupOPEX, "Grant", "1301")
	item, _ := d.AddRevenueItem(cat, model.RevenueItem{Amount: 10})
	if d.Version() <= v0 {
		t.Fatal("version did not advance")
	}

	if err := d.UpdateRevenueAmount(item, 25); err != nil {
		t.Fatalf("UpdateRevenueAmount: %v", err)
	}
	if got := d.Snapshot().Revenue[0].Categories[0].Items[0].Amount; got != 25 {
		t.Errorf("amount = %v, want 25", got)
	}

	if err := d.Remove(item); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if n := len(d.Snapshot().Revenue[0].Categories[0].Items); n != 0 {
		t.Errorf("items after remove = %d", n)
	}
	if err := d.Remove(item); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove = %v, want ErrNotFound", err)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	d := New("ABC123", 2027)
	cat, _ := d.EnsureRevenueCategory(model.GroupOPEX, "Grant", "")
	_, _ = d.AddRevenueItem(cat, model.RevenueItem{Amount: 10})

	s := d.Snapshot()
	s.Revenue[0].Categories[0].Items[0].Amount = 999

	if got := d.Snapshot().Revenue[0].Categories[0].Items[0].Amount; got != 10 {
		t.Fatalf("snapshot mutation leaked into draft: %v", got)
	}
}

func TestHydrateAssignsIDsAndReset(t *testing.T) {
	d := New("ABC123", 2027)
	d.Hydrate(model.MetaInfo{}, model.BudgetTree{{GroupName: model.GroupOPEX, Categories: []model.BudgetCategory{
		{CategoryName: "Repairs", Items: []model.BudgetItem{{Description: "roof"}}},
	}}}, nil)

	s := d.Snapshot()
	if s.Meta.SchoolCode != "ABC123" {
		t.Errorf("meta school code = %q", s.Meta.SchoolCode)
	}
	if s.Budget[0].ID == "" || s.Budget[0].Categories[0].ID == "" || s.Budget[0].Categories[0].Items[0].ID == "" {
		t.Fatalf("ids not assigned: %+v", s.Budget)
	}
	if d.Empty() {
		t.Error("hydrated draft reported empty")
	}

	d.Reset()
	if !d.Empty() {
		t.Error("draft not empty after Reset")
	}
	if s := d.Snapshot(); s.SchoolCode != "ABC123" || s.Year != 2027 {
		t.Errorf("Reset lost school/year: %+v", s)
	}
}

func TestPayload(t *testing.T) {
	d := New("ABC123", 2027)
	cat, _ := d.EnsureRevenueCategory(model.GroupCAPEX, "Donor", "1401")
	_, _ = d.AddRevenueItem(cat, model.RevenueItem{BudgetCode: "1401", Amount: 10})

	p := d.Payload()
	if p.SchoolCode != "ABC123" || p.Year != 2027 {
		t.Errorf("payload header = %s/%d", p.SchoolCode, p.Year)
	}
	if len(p.Revenues) != 1 || p.Revenues[0].Group != model.GroupCAPEX {
		t.Errorf("revenues = %+v", p.Revenues)
	}
}

func TestRemoveScopedToTree(t *testing.T) {
	d := New("ABC123", 2027)
	rcat, _ := d.EnsureRevenueCategory(model.GroupOPEX, "Grant", "")
	rid, _ := d.AddRevenueItem(rcat, model.RevenueItem{Amount: 5})
	bcat, _ := d.EnsureBudgetCategory(model.GroupOPEX, "Repairs", "")
	bid, _ := d.AddBudgetItem(bcat, model.BudgetItem{Description: "roof"})

	if err := d.RemoveBudgetItem(rid); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveBudgetItem(revenue id) = %v, want ErrNotFound", err)
	}
	if err := d.RemoveRevenueItem(bid); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveRevenueItem(budget id) = %v, want ErrNotFound", err)
	}
	if err := d.RemoveBudgetItem(bid); err != nil {
		t.Errorf("RemoveBudgetItem: %v", err)
	}
	if err := d.RemoveRevenueItem(rid); err != nil {
		t.Errorf("RemoveRevenueItem: %v", err)
	}
}

func TestParseCostQuantity(t *testing.T) {
	tests := []struct {
		in        string
		cost, qty float64
		wantErr   bool
	}{
		{"50 x 4", 50, 4, false},
		{"12.5*2", 12.5, 2, false},
		{"3 7", 3, 7, false},
		{"10 X 1.5", 10, 1.5, false},
		{"10", 0, 0, true},
		{"a x 2", 0, 0, true},
		{"2 x b", 0, 0, true},
		{"-1 x 2", 0, 0, true},
		{"NaN x 4", 0, 0, true},
		{"50 Inf", 0, 0, true},
		{"-Inf 2", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cost, qty, err := ParseCostQuantity(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (cost != tt.cost || qty != tt.qty) {
				t.Errorf("got %v x %v, want %v x %v", cost, qty, tt.cost, tt.qty)
			}
		})
	}
}
