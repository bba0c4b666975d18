package format

import (
	"math"
	"testing"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "₹0.00"},
		{999, "₹999.00"},
		{1000, "₹1,000.00"},
		{23187.974, "₹23,187.97"},
		{1234567.891, "₹1,234,567.89"},
		{-2500.5, "-₹2,500.50"},
		{math.NaN(), "₹0.00"},
		{math.Inf(1), "₹0.00"},
	}

	for _, tt := range tests {
		if got := Currency(tt.in); got != tt.want {
			t.Errorf("Currency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0%"},
		{10.5, "10.5%"},
		{8.25, "8.2%"},
		{18, "18.0%"},
		{math.NaN(), "0.0%"},
	}

	for _, tt := range tests {
		if got := Percent(tt.in); got != tt.want {
			t.Errorf("Percent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
