// Package format renders amounts and rates for user-facing text.
package format

import (
	"math"
	"strconv"
	"strings"
)

// Currency formats an amount as rupees with comma grouping and two decimal
// places, e.g. 1234567.891 -> "₹1,234,567.89". Invalid input (NaN, ±Inf)
// renders as the zero value rather than failing.
func Currency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "₹0.00"
	}

	neg := amount < 0
	s := strconv.FormatFloat(math.Abs(amount), 'f', 2, 64)

	intPart, fracPart, _ := strings.Cut(s, ".")
	grouped := groupThousands(intPart)

	var b strings.Builder
	if neg {
		b.WriteString("-")
	}
	b.WriteString("₹")
	b.WriteString(grouped)
	b.WriteString(".")
	b.WriteString(fracPart)
	return b.String()
}

// Percent formats a rate with one decimal place, e.g. 10.54 -> "10.5%".
// Invalid input renders as "0.0%".
func Percent(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "0.0%"
	}
	return strconv.FormatFloat(value, 'f', 1, 64) + "%"
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}

	var b strings.Builder
	rem := n % 3
	if rem > 0 {
		b.WriteString(digits[:rem])
	}
	for i := rem; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
