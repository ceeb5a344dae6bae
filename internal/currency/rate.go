// Package currency converts capital expenditure figures into the settlement currency.
package currency

import "fmt"

// DefaultUSDToSSP is the fixed conversion rate used when none is configured.
// 1 USD = 130.26 SSP.
const DefaultUSDToSSP = 130.26

// RateProvider supplies the SSP-per-USD rate used for CAPEX conversion.
type RateProvider interface {
	USDToSSP() float64
}

// Fixed is a constant rate.
type Fixed float64

// USDToSSP implements RateProvider.
func (f Fixed) USDToSSP() float64 { return float64(f) }

// Default returns the compile-time default rate.
func Default() RateProvider { return Fixed(DefaultUSDToSSP) }

// FromConfig returns a provider for a configured rate, falling back to the
// default when the value is unset.
func FromConfig(rate *float64) (RateProvider, error) {
	if rate == nil {
		return Default(), nil
	}
	if *rate <= 0 {
		return nil, fmt.Errorf("currency: usd_to_ssp must be positive, got %v", *rate)
	}
	return Fixed(*rate), nil
}
