package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/sims/internal/draft"
	"github.com/theirongolddev/sims/internal/model"
	"github.com/theirongolddev/sims/internal/review"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "state.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestKV(t *testing.T) {
	s := openTemp(t)

	if _, ok, err := s.Get(KeyBudgetID); err != nil || ok {
		t.Fatalf("Get on empty store = ok %v, err %v", ok, err)
	}
	if err := s.Set(KeyBudgetID, "b1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(KeyBudgetID, "b2"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := s.Get(KeyBudgetID)
	if err != nil || !ok || v != "b2" {
		t.Fatalf("Get = %q, %v, %v", v, ok, err)
	}
	if err := s.Delete(KeyBudgetID); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(KeyBudgetID); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, ok, _ := s.Get(KeyBudgetID); ok {
		t.Error("key survived Delete")
	}
}

func TestDrafts(t *testing.T) {
	s := openTemp(t)

	d := draft.New("ABC123", 2027)
	cat, _ := d.EnsureRevenueCategory(model.GroupCAPEX, "Donor", "1401")
	_, _ = d.AddRevenueItem(cat, model.RevenueItem{Amount: 10})

	if err := s.SaveDraft(d.Snapshot(), review.Checklist{Meta: true}); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	snap, cl, ok, err := s.LoadDraft("ABC123", 2027)
	if err != nil || !ok {
		t.Fatalf("LoadDraft: ok %v, err %v", ok, err)
	}
	if !cl.Meta || cl.Revenue {
		t.Errorf("checklist = %+v", cl)
	}
	if got := snap.Revenue[0].Categories[0].Items[0].Amount; got != 10 {
		t.Errorf("amount = %v", got)
	}

	list, err := s.ListDrafts()
	if err != nil || len(list) != 1 || list[0].SchoolCode != "ABC123" || list[0].Year != 2027 {
		t.Fatalf("ListDrafts = %+v, %v", list, err)
	}

	if err := s.DeleteDraft("ABC123", 2027); err != nil {
		t.Fatal(err)
	}
	if _, _, ok, _ := s.LoadDraft("ABC123", 2027); ok {
		t.Error("draft survived delete")
	}
}

func TestBudgetCodes(t *testing.T) {
	s := openTemp(t)

	if _, fresh, err := s.LoadBudgetCodes(time.Hour); err != nil || fresh {
		t.Fatalf("empty cache fresh=%v err=%v", fresh, err)
	}
	codes := []model.BudgetCode{
		{Code: "2210", Name: "Learning materials", Group: model.GroupOPEX, Kind: "budget"},
		{Code: "1401", Name: "Donor", Group: model.GroupCAPEX, Kind: "revenue"},
	}
	if err := s.SaveBudgetCodes(codes); err != nil {
		t.Fatal(err)
	}
	got, fresh, err := s.LoadBudgetCodes(time.Hour)
	if err != nil || !fresh || len(got) != 2 {
		t.Fatalf("LoadBudgetCodes = %v, fresh %v, err %v", got, fresh, err)
	}
	if got[0].Code != "1401" || got[1].Group != model.GroupOPEX {
		t.Errorf("codes = %+v", got)
	}

	if err := s.SaveBudgetCodes(codes[:1]); err != nil {
		t.Fatal(err)
	}
	if got, _, _ := s.LoadBudgetCodes(0); len(got) != 1 {
		t.Errorf("replace left %d codes", len(got))
	}
}
