package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/theirongolddev/sims/internal/currency"
)

// Environment variables that override the config file.
const (
	EnvAPIURL   = "SIMS_API_URL"
	EnvAPIToken = "SIMS_API_TOKEN"
	EnvSchool   = "SIMS_SCHOOL_CODE"
)

// Config holds all sims configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	API        APIConfig        `toml:"api"`
	Currency   CurrencyConfig   `toml:"currency"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	SchoolCode string `toml:"school_code,omitempty"`
	// CodesMaxAgeHours is how long the cached budget-code taxonomy is trusted.
	CodesMaxAgeHours int `toml:"codes_max_age_hours"`
}

// APIConfig holds school-data backend settings.
type APIConfig struct {
	BaseURL    string `toml:"base_url,omitempty"`
	Token      string `toml:"token,omitempty"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// CurrencyConfig holds the exchange-rate override.
type CurrencyConfig struct {
	USDToSSP *float64 `toml:"usd_to_ssp,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard settings.
type TUIConfig struct {
	// RestoreView reopens the last tab on start.
	RestoreView bool `toml:"restore_view"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			CodesMaxAgeHours: 24,
		},
		API: APIConfig{
			TimeoutSec: 15,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		TUI: TUIConfig{
			RestoreView: true,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sims")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "sims")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// CacheDir returns the XDG-compliant cache directory holding the state
// database and the log file.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "sims")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "sims")
}

// StatePath returns the path of the SQLite state database.
func StatePath() string {
	return filepath.Join(CacheDir(), "state.db")
}

// LogPath returns the path of the dashboard log file.
func LogPath() string {
	return filepath.Join(CacheDir(), "sims.log")
}

// LoadDotEnv loads a .env file from the working directory if present.
// Variables already set in the environment win.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config file at path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's config file
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // path is the user's config file
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// APIURL returns the API base URL from env var or config, in that order.
func APIURL(cfg Config) string {
	if u := os.Getenv(EnvAPIURL); u != "" {
		return u
	}
	return cfg.API.BaseURL
}

// APIToken returns the API token from env var or config, in that order.
func APIToken(cfg Config) string {
	if tok := os.Getenv(EnvAPIToken); tok != "" {
		return tok
	}
	return cfg.API.Token
}

// SchoolCode returns the school code from env var or config, in that order.
func SchoolCode(cfg Config) string {
	if c := os.Getenv(EnvSchool); c != "" {
		return c
	}
	return cfg.General.SchoolCode
}

// Timeout returns the per-request API timeout.
func (c Config) Timeout() time.Duration {
	if c.API.TimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// CodesMaxAge returns how long cached budget codes stay fresh.
func (c Config) CodesMaxAge() time.Duration {
	return time.Duration(c.General.CodesMaxAgeHours) * time.Hour
}

// Rates returns the exchange-rate provider configured for this install.
func (c Config) Rates() (currency.RateProvider, error) {
	return currency.FromConfig(c.Currency.USDToSSP)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
