package cli

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Revenue",
		Headers: []string{"Category", "SSP"},
		Rows: [][]string{
			{"Grant", "100.00"},
			{SeparatorRow},
			{"Total", "2,302.60"},
		},
	})
	for _, want := range []string{"Revenue", "Category", "Grant", "2,302.60", "╭", "╯"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != 8 {
		t.Errorf("table has %d lines, want 8:\n%s", lines, out)
	}
	if RenderTable(Table{}) != "" {
		t.Error("empty table should render nothing")
	}
}

func TestRenderUtilizationBar(t *testing.T) {
	if got := RenderUtilizationBar(0, false, 10); !strings.Contains(got, "n/a") {
		t.Errorf("undefined bar = %q", got)
	}
	got := RenderUtilizationBar(250, true, 10)
	if !strings.Contains(got, strings.Repeat("█", 10)) || !strings.Contains(got, "250.0%") {
		t.Errorf("over-100 bar = %q", got)
	}
	if got := RenderUtilizationBar(-5, true, 4); !strings.Contains(got, "░░░░") {
		t.Errorf("negative bar = %q", got)
	}
}
