// Package loanmath provides the shared amortization kernel.
package loanmath

import (
	"fmt"
	"math"

	"github.com/openbank-labs/reloan/internal/domain"
)

// Compute returns the EMI, total payment and total interest for a loan using
// the standard reducing-balance formula:
//
//	emi = P * r * (1+r)^n / ((1+r)^n - 1), r = annual/100/12
//
// The formula divides by zero at r == 0, so a zero-rate loan reduces to
// straight principal division.
func Compute(principal, annualRatePct float64, tenureMonths int) (domain.AmortizationResult, error) {
	var res domain.AmortizationResult

	if tenureMonths <= 0 {
		return res, fmt.Errorf("%w: tenure must be positive, got %d", domain.ErrInvalidParameter, tenureMonths)
	}
	if principal < 0 {
		return res, fmt.Errorf("%w: principal must not be negative, got %.2f", domain.ErrInvalidParameter, principal)
	}
	if annualRatePct < 0 {
		return res, fmt.Errorf("%w: interest rate must not be negative, got %.2f", domain.ErrInvalidParameter, annualRatePct)
	}

	n := float64(tenureMonths)
	monthlyRate := annualRatePct / 100 / 12

	var emi float64
	if monthlyRate == 0 {
		emi = principal / n
	} else {
		growth := math.Pow(1+monthlyRate, n)
		emi = principal * monthlyRate * growth / (growth - 1)
	}

	res.EMI = emi
	res.TotalAmount = emi * n
	res.TotalInterest = res.TotalAmount - principal
	return res, nil
}

// Round2 rounds a value to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
