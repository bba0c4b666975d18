package loanmath

import (
	"errors"
	"math"
	"testing"

	"github.com/openbank-labs/reloan/internal/domain"
)

func TestComputeKnownValue(t *testing.T) {
	// 500000 at 10.5% over 24 months: EMI ≈ 23187.97
	res, err := Compute(500000, 10.5, 24)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	if math.Abs(res.EMI-23187.97) > 0.5 {
		t.Errorf("expected EMI ≈ 23187.97, got %.2f", res.EMI)
	}
	if math.Abs(res.TotalAmount-res.EMI*24) > 1e-6 {
		t.Errorf("total amount %.2f != emi*tenure %.2f", res.TotalAmount, res.EMI*24)
	}
	if math.Abs(res.TotalInterest-(res.TotalAmount-500000)) > 1e-6 {
		t.Errorf("total interest %.2f inconsistent", res.TotalInterest)
	}
}

func TestComputeZeroRate(t *testing.T) {
	res, err := Compute(120000, 0, 12)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	if res.EMI != 10000 {
		t.Errorf("expected EMI exactly 10000 at zero rate, got %v", res.EMI)
	}
	if res.TotalInterest != 0 {
		t.Errorf("expected zero interest at zero rate, got %v", res.TotalInterest)
	}
}

func TestComputeInvalidParameters(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		tenure    int
	}{
		{"zero tenure", 100000, 10, 0},
		{"negative tenure", 100000, 10, -6},
		{"negative principal", -1, 10, 12},
		{"negative rate", 100000, -0.5, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.principal, tt.rate, tt.tenure)
			if !errors.Is(err, domain.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestTotalNeverBelowPrincipal(t *testing.T) {
	// emi*tenure >= principal and interest >= 0 for any positive inputs.
	principals := []float64{1000, 50000, 500000, 2500000}
	rates := []float64{0.1, 8, 12.5, 18, 36}
	tenures := []int{1, 12, 24, 60, 240}

	for _, p := range principals {
		for _, r := range rates {
			for _, n := range tenures {
				res, err := Compute(p, r, n)
				if err != nil {
					t.Fatalf("compute(%v,%v,%d) failed: %v", p, r, n, err)
				}
				if res.TotalAmount < p-1e-6 {
					t.Errorf("compute(%v,%v,%d): total %.4f below principal", p, r, n, res.TotalAmount)
				}
				if res.TotalInterest < -1e-6 {
					t.Errorf("compute(%v,%v,%d): negative interest %.4f", p, r, n, res.TotalInterest)
				}
			}
		}
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(23183.94999); got != 23183.95 {
		t.Errorf("expected 23183.95, got %v", got)
	}
	if got := Round2(-0.005); got != -0.01 && got != 0 {
		t.Errorf("unexpected rounding of -0.005: %v", got)
	}
}
