// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/sims/internal/model"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	return groupThousands(strconv.FormatInt(n, 10))
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatMoney formats an amount with two decimals and thousands separators.
// e.g., 2302.6 -> "2,302.60"
func FormatMoney(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")
	out := groupThousands(whole) + "." + frac
	if neg && strings.Trim(out, "0.,") != "" {
		return "-" + out
	}
	return out
}

// FormatSSP formats an amount in South Sudanese pounds.
func FormatSSP(v float64) string {
	return "SSP " + FormatMoney(v)
}

// FormatUSD formats an amount in US dollars.
func FormatUSD(v float64) string {
	if v < 0 {
		return "-$" + FormatMoney(-v)
	}
	return "$" + FormatMoney(v)
}

// FormatNative formats an amount in the currency of its group: USD for
// CAPEX, SSP otherwise.
func FormatNative(group string, v float64) string {
	if group == model.GroupCAPEX {
		return FormatUSD(v)
	}
	return FormatSSP(v)
}

// FormatPercent formats a percentage (already scaled to 0-100). An undefined
// value renders as "n/a".
func FormatPercent(pct float64, ok bool) string {
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatQuantity formats a quantity without trailing zeros.
// e.g., 4 -> "4", 2.5 -> "2.5"
func FormatQuantity(q float64) string {
	return decimal.NewFromFloat(q).String()
}

// FormatBool renders a checklist flag.
func FormatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
