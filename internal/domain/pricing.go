package domain

import (
	"time"
)

// PricingRequest carries the per-invocation parameters for dynamic pricing.
// Zero values fall back to the profile's pre-approved offer terms.
type PricingRequest struct {
	LoanAmount      float64 `json:"loanAmount"`
	RequestedTenure int     `json:"requestedTenure"` // months
}

// Bounds for the final adjusted annual interest rate, in percent.
const (
	MinInterestRate = 8.0
	MaxInterestRate = 18.0
)

// FactorAdjustment records the contribution of a single pricing factor.
// RateDelta is in percentage points; multipliers are 1.0 when the factor
// leaves them untouched.
type FactorAdjustment struct {
	Factor        string  `json:"factor"`
	RateDelta     float64 `json:"rateDelta"`
	FeeMultiplier float64 `json:"feeMultiplier"`
	MaxMultiplier float64 `json:"maxMultiplier"`
}

// PricingResult is the outcome of one dynamic pricing pass. Produced fresh
// per call and never mutated afterwards.
type PricingResult struct {
	CustomerID string `json:"customerId"`

	// Resolved inputs
	LoanAmount   float64 `json:"loanAmount"`
	TenureMonths int     `json:"tenureMonths"`
	BaseRate     float64 `json:"baseRate"`

	// Adjusted terms
	FinalInterestRate float64 `json:"finalInterestRate"` // clamped to [MinInterestRate, MaxInterestRate]
	RateAdjustment    float64 `json:"rateAdjustment"`    // signed, before clamping
	FinalEMI          float64 `json:"finalEmi"`
	FinalFee          float64 `json:"finalProcessingFee"`
	MaxEligible       float64 `json:"maxEligibleAmount"`

	// Impact vs the base offer, signed (negative means savings)
	MonthlyDifference float64 `json:"monthlyDifference"`
	TotalDifference   float64 `json:"totalDifference"`

	// Transparency trail
	Adjustments        []FactorAdjustment `json:"adjustments"`
	ExplanationFactors []string           `json:"explanationFactors"`

	// Discount multipliers actually applied
	FeeMultiplier float64 `json:"feeMultiplier"`
	MaxMultiplier float64 `json:"maxMultiplier"`
}

// PricingSnapshot is a persisted pricing result, kept for audit.
type PricingSnapshot struct {
	ID         string         `json:"id"`
	CustomerID string         `json:"customerId"`
	Result     *PricingResult `json:"result"`
	CreatedAt  time.Time      `json:"createdAt"`
}
