// Package format renders amounts and rates for display. Values are rounded
// half away from zero on their exact decimal representation.
package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable is rendered in place of values that are NaN or infinite.
const NotAvailable = "n/a"

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	return currency(amount, 2, "$")
}

// WholeCurrency returns a currency string rounded to whole dollars (e.g., "$1,235").
func WholeCurrency(amount float64) string {
	return currency(amount, 0, "$")
}

// Fixed returns amount with exactly two decimals and no separators (e.g., "-1234.56").
func Fixed(amount float64) string {
	if !finite(amount) {
		return NotAvailable
	}
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// Percent renders a fractional rate as a percentage with at most two decimals (0.1115 -> "11.15%").
func Percent(rate float64) string {
	if !finite(rate) {
		return NotAvailable
	}
	return decimal.NewFromFloat(rate).Shift(2).Round(2).String() + "%"
}

func currency(amount float64, places int32, symbol string) string {
	if !finite(amount) {
		return NotAvailable
	}
	d := decimal.NewFromFloat(amount).Round(places)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + symbol + group(d.StringFixed(places))
}

// group inserts thousands separators into the integer digits of fixed.
func group(fixed string) string {
	intPart, frac := fixed, ""
	if idx := strings.IndexByte(fixed, '.'); idx >= 0 {
		intPart, frac = fixed[:idx], fixed[idx:]
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteByte(',')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteString(frac)
	return b.String()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
