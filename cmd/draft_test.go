package cmd

import (
	"testing"

	"github.com/theirongolddev/sims/internal/model"

	"github.com/spf13/cobra"
)

func TestParseNeededItem(t *testing.T) {
	tests := []struct {
		in      string
		want    model.NeededItem
		wantErr bool
	}{
		{"exercise books=50x120", model.NeededItem{Name: "exercise books", UnitCost: 50, Quantity: 120}, false},
		{" chalk = 2.5 * 40", model.NeededItem{Name: "chalk", UnitCost: 2.5, Quantity: 40}, false},
		{"=5x1", model.NeededItem{}, true},
		{"pens", model.NeededItem{}, true},
		{"pens=ten x 2", model.NeededItem{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseNeededItem(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseMembers(t *testing.T) {
	got := parseMembers([]string{"Akol Deng:chair:m", "Mary"})
	if len(got) != 2 {
		t.Fatalf("members = %d", len(got))
	}
	if got[0] != (model.CommitteeMember{Name: "Akol Deng", Role: "chair", Gender: "M"}) {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Name != "Mary" || got[1].Role != "" {
		t.Errorf("second = %+v", got[1])
	}
}

func TestApplyMetaFlags_OnlyChanged(t *testing.T) {
	c := &cobra.Command{Use: "meta"}
	addMetaFlags(c)
	if err := c.ParseFlags([]string{"--county", "Jubek", "--learners", "420", "--approved-by", "Head teacher"}); err != nil {
		t.Fatal(err)
	}

	m := model.MetaInfo{SchoolName: "Kator Primary", Payam: "Kator"}
	applyMetaFlags(c, &m)

	if m.SchoolName != "Kator Primary" || m.Payam != "Kator" {
		t.Errorf("unset flags overwrote fields: %+v", m)
	}
	if m.County != "Jubek" {
		t.Errorf("County = %q", m.County)
	}
	if m.Demographics == nil || m.Demographics.Learners != 420 {
		t.Errorf("Demographics = %+v", m.Demographics)
	}
	if m.Governance != nil || m.Committee != nil {
		t.Error("untouched sections were created")
	}
	if p := m.Preparation; p == nil || !p.Approved || p.ApprovedBy != "Head teacher" {
		t.Errorf("Preparation = %+v", p)
	}
}
