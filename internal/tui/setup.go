package tui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/theirongolddev/sims/internal/config"
	"github.com/theirongolddev/sims/internal/currency"
	"github.com/theirongolddev/sims/internal/tui/theme"
	"github.com/theirongolddev/sims/internal/validate"

	"github.com/charmbracelet/huh"
)

// SetupValues are the answers collected by the setup wizard.
type SetupValues struct {
	APIURL     string
	Token      string
	SchoolCode string
	Theme      string
	Rate       string
}

// SetupValuesFrom pre-fills the wizard from an existing config.
func SetupValuesFrom(cfg config.Config) SetupValues {
	v := SetupValues{
		APIURL:     cfg.API.BaseURL,
		Token:      cfg.API.Token,
		SchoolCode: cfg.General.SchoolCode,
		Theme:      cfg.Appearance.Theme,
	}
	if cfg.Currency.USDToSSP != nil {
		v.Rate = strconv.FormatFloat(*cfg.Currency.USDToSSP, 'f', -1, 64)
	}
	return v
}

// NewSetupForm builds the first-run wizard. Answers are written into v.
func NewSetupForm(v *SetupValues) *huh.Form {
	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themes = append(themes, huh.NewOption(t.Name, t.Name))
	}
	if v.Theme == "" {
		v.Theme = theme.FlexokiDark.Name
	}
	rateHint := "Used to convert CAPEX amounts. Leave blank for " +
		strconv.FormatFloat(currency.DefaultUSDToSSP, 'f', -1, 64) + "."

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to sims").
				Description("Prepare, review and submit your school budget.\nA few settings connect you to the school-data API."),
			huh.NewInput().
				Title("API base URL").
				Placeholder("https://schools.example.org/api/").
				Value(&v.APIURL).
				Validate(validateURL),
			huh.NewInput().
				Title("API token").
				Description("Leave blank to set SIMS_API_TOKEN instead.").
				EchoMode(huh.EchoModePassword).
				Value(&v.Token),
			huh.NewInput().
				Title("School code").
				Value(&v.SchoolCode).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("school code is required")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&v.Theme),
			huh.NewInput().
				Title("USD to SSP exchange rate").
				Description(rateHint).
				Value(&v.Rate).
				Validate(validateRate),
		),
	).WithShowHelp(true)
}

func validateURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if err := validate.Var(s, "url"); err != nil {
		return errors.New("enter a full URL such as https://host/api/")
	}
	return nil
}

func validateRate(s string) error {
	_, err := parseRate(s)
	return err
}

func parseRate(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil || r <= 0 {
		return nil, errors.New("rate must be a positive number")
	}
	return &r, nil
}

// ApplySetup merges wizard answers into cfg.
func ApplySetup(cfg config.Config, v SetupValues) (config.Config, error) {
	rate, err := parseRate(v.Rate)
	if err != nil {
		return cfg, err
	}
	cfg.API.BaseURL = strings.TrimSpace(v.APIURL)
	if tok := strings.TrimSpace(v.Token); tok != "" {
		cfg.API.Token = tok
	}
	cfg.General.SchoolCode = strings.TrimSpace(v.SchoolCode)
	cfg.Appearance.Theme = theme.ByName(v.Theme).Name
	cfg.Currency.USDToSSP = rate
	return cfg, nil
}
