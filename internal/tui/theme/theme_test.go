package theme

import "testing"

func TestByNameFallsBack(t *testing.T) {
	if got := ByName("terminal"); got.Name != "terminal" {
		t.Errorf("ByName(terminal) = %s", got.Name)
	}
	if got := ByName("tokyo-night"); got.Name != FlexokiDark.Name {
		t.Errorf("unknown theme = %s, want default", got.Name)
	}
}

func TestUtilizationColor(t *testing.T) {
	th := FlexokiDark
	tests := []struct {
		pct  float64
		want string
	}{
		{10, string(th.Green)},
		{75, string(th.Yellow)},
		{95, string(th.Orange)},
		{100.01, string(th.Red)},
	}
	for _, tt := range tests {
		if got := string(th.Utilization(tt.pct)); got != tt.want {
			t.Errorf("Utilization(%v) = %s, want %s", tt.pct, got, tt.want)
		}
	}
	if th.Balance(-1) != th.Red || th.Balance(0) != th.Green {
		t.Error("Balance colors wrong")
	}
}
