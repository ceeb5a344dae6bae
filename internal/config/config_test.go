package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFrom_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Timeout() != 15*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout())
	}
	rates, err := cfg.Rates()
	if err != nil || rates.USDToSSP() != 130.26 {
		t.Errorf("Rates = %v, %v", rates, err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sims", "config.toml")
	rate := 140.5
	cfg := DefaultConfig()
	cfg.General.SchoolCode = "ABC123"
	cfg.API.BaseURL = "https://api.example.org/"
	cfg.API.TimeoutSec = 30
	cfg.Currency.USDToSSP = &rate

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.General.SchoolCode != "ABC123" || got.API.BaseURL != cfg.API.BaseURL {
		t.Errorf("got %+v", got)
	}
	if got.Timeout() != 30*time.Second {
		t.Errorf("Timeout = %v", got.Timeout())
	}
	rates, err := got.Rates()
	if err != nil || rates.USDToSSP() != 140.5 {
		t.Errorf("Rates = %v, %v", rates, err)
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://from-file/"
	cfg.API.Token = "file-token"

	t.Setenv(EnvAPIURL, "https://from-env/")
	t.Setenv(EnvAPIToken, "")
	if got := APIURL(cfg); got != "https://from-env/" {
		t.Errorf("APIURL = %q", got)
	}
	if got := APIToken(cfg); got != "file-token" {
		t.Errorf("APIToken = %q", got)
	}
}

func TestBadRateRejected(t *testing.T) {
	zero := 0.0
	cfg := DefaultConfig()
	cfg.Currency.USDToSSP = &zero
	if _, err := cfg.Rates(); err == nil {
		t.Error("zero rate accepted")
	}
}
