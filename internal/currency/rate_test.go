package currency

import "testing"

func TestFromConfig(t *testing.T) {
	p, err := FromConfig(nil)
	if err != nil {
		t.Fatalf("FromConfig(nil) error: %v", err)
	}
	if got := p.USDToSSP(); got != DefaultUSDToSSP {
		t.Errorf("default rate = %v, want %v", got, DefaultUSDToSSP)
	}

	r := 150.0
	p, err = FromConfig(&r)
	if err != nil {
		t.Fatalf("FromConfig(150) error: %v", err)
	}
	if got := p.USDToSSP(); got != 150 {
		t.Errorf("configured rate = %v, want 150", got)
	}

	bad := 0.0
	if _, err := FromConfig(&bad); err == nil {
		t.Error("FromConfig(0) should fail")
	}
}
