// Package pricing implements the dynamic pricing engine: a deterministic
// factor pipeline over the customer profile plus optional CEL-defined
// campaign overlays.
package pricing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/openbank-labs/reloan/internal/domain"
	"github.com/openbank-labs/reloan/internal/loanmath"
)

// Explanation tags attached to pricing results.
const (
	TagRelationship = "Excellent banking relationship"
	TagCreditScore  = "Strong credit profile"
	TagSalary       = "Salary account holder"
	TagIncome       = "High income bracket"
	TagRisk         = "Risk factors considered"
)

// Default processing fee rate applied when the profile carries no fee.
const defaultFeeRate = 0.02

// Engine prices a loan offer from a profile and a request. It is safe for
// concurrent use; Price is a pure function of its arguments and the loaded
// campaign set.
type Engine struct {
	mu        sync.RWMutex
	env       *cel.Env
	campaigns map[string]*compiledCampaign
	now       func() time.Time
}

type compiledCampaign struct {
	config  *domain.Campaign
	program cel.Program
}

// NewEngine creates a pricing engine with no campaigns loaded.
func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("credit_score", cel.IntType),
		cel.Variable("account_age_years", cel.IntType),
		cel.Variable("avg_balance", cel.DoubleType),
		cel.Variable("monthly_income", cel.DoubleType),
		cel.Variable("loan_amount", cel.DoubleType),
		cel.Variable("tenure_months", cel.IntType),
		cel.Variable("employment_type", cel.StringType),
		cel.Variable("loan_history", cel.StringType),
		cel.Variable("is_salary_account", cel.BoolType),
		cel.Variable("is_festive_season", cel.BoolType),
		cel.Variable("has_existing_loans", cel.BoolType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{
		env:       env,
		campaigns: make(map[string]*compiledCampaign),
		now:       time.Now,
	}, nil
}

// Price applies the factor pipeline and any active campaigns to the profile
// and request, returning the adjusted terms.
func (e *Engine) Price(ctx context.Context, profile *domain.CustomerProfile, req *domain.PricingRequest) (*domain.PricingResult, error) {
	if profile == nil {
		return nil, fmt.Errorf("%w: profile is required", domain.ErrMissingData)
	}
	if req == nil {
		req = &domain.PricingRequest{}
	}

	amount := req.LoanAmount
	if amount <= 0 {
		amount = profile.LoanOffer
	}
	tenure := req.RequestedTenure
	if tenure <= 0 {
		tenure = profile.TenureMonths
	}
	if tenure <= 0 {
		tenure = domain.DefaultTenureMonths
	}
	baseRate := profile.InterestRate

	if amount <= 0 {
		return nil, fmt.Errorf("%w: no loan amount in request or profile", domain.ErrMissingData)
	}
	if baseRate <= 0 {
		return nil, fmt.Errorf("%w: profile has no base interest rate", domain.ErrMissingData)
	}

	result := &domain.PricingResult{
		CustomerID:    profile.CustomerID,
		LoanAmount:    amount,
		TenureMonths:  tenure,
		BaseRate:      baseRate,
		FeeMultiplier: 1.0,
		MaxMultiplier: 1.0,
	}

	for _, f := range factorPipeline {
		delta, fired := f.apply(profile, amount, tenure)
		if !fired {
			continue
		}
		result.RateAdjustment += delta.rateDelta
		result.FeeMultiplier *= delta.feeMult
		result.MaxMultiplier *= delta.maxMult
		result.Adjustments = append(result.Adjustments, domain.FactorAdjustment{
			Factor:        f.name,
			RateDelta:     delta.rateDelta,
			FeeMultiplier: delta.feeMult,
			MaxMultiplier: delta.maxMult,
		})
	}

	campaignTags := e.applyCampaigns(ctx, profile, amount, tenure, result)

	final := baseRate + result.RateAdjustment
	if final < domain.MinInterestRate {
		final = domain.MinInterestRate
	}
	if final > domain.MaxInterestRate {
		final = domain.MaxInterestRate
	}
	result.FinalInterestRate = final
	result.MaxEligible = amount * result.MaxMultiplier

	baseFee := profile.ProcessingFee
	if baseFee <= 0 {
		baseFee = amount * defaultFeeRate
	}
	result.FinalFee = baseFee * result.FeeMultiplier

	finalLoan, err := loanmath.Compute(amount, final, tenure)
	if err != nil {
		return nil, err
	}
	baseLoan, err := loanmath.Compute(amount, baseRate, tenure)
	if err != nil {
		return nil, err
	}
	result.FinalEMI = finalLoan.EMI
	result.MonthlyDifference = finalLoan.EMI - baseLoan.EMI
	result.TotalDifference = result.MonthlyDifference * float64(tenure)

	result.ExplanationFactors = explain(profile, result.RateAdjustment)
	result.ExplanationFactors = append(result.ExplanationFactors, campaignTags...)

	return result, nil
}

// explain collects the transparency tags for the adjustment. The tags feed
// the audit trail and user-facing breakdown, never the pricing itself.
func explain(p *domain.CustomerProfile, rateAdjustment float64) []string {
	var tags []string
	if rateAdjustment < -0.1 {
		tags = append(tags, TagRelationship)
	}
	if p.CreditScore >= 750 {
		tags = append(tags, TagCreditScore)
	}
	if p.IsSalaryAccount {
		tags = append(tags, TagSalary)
	}
	if p.MonthlyIncome >= 75000 {
		tags = append(tags, TagIncome)
	}
	if rateAdjustment > 0.1 {
		tags = append(tags, TagRisk)
	}
	return tags
}

// Close cleans up the engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.campaigns = make(map[string]*compiledCampaign)
	return nil
}
