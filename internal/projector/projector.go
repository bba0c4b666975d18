// Package projector compares the current loan structure against
// hypothetical terms: prepayment, alternate tenures and achievable rate
// improvements.
package projector

import (
	"fmt"

	"github.com/openbank-labs/reloan/internal/domain"
	"github.com/openbank-labs/reloan/internal/loanmath"
)

// Candidate tenures offered in the alternate-tenure comparison.
var candidateTenures = []int{12, 24, 36, 60}

// Fixed rate-reduction potentials, mirroring the pricing factor thresholds.
const (
	reductionCreditHigh = 0.5 // reaching the 800+ tier
	reductionCreditMid  = 0.25
	reductionSalary     = 0.3
	reductionBalance    = 0.2
)

// Prepayment compares the current structure against the same terms with the
// principal reduced by a one-time prepayment.
func Prepayment(profile *domain.CustomerProfile, prepayment float64) (*domain.PrepaymentProjection, error) {
	if err := checkTerms(profile); err != nil {
		return nil, err
	}
	if prepayment <= 0 {
		return nil, fmt.Errorf("%w: prepayment must be positive, got %.2f", domain.ErrInvalidParameter, prepayment)
	}
	remaining := profile.LoanOffer - prepayment
	if remaining <= 0 {
		return nil, fmt.Errorf("%w: prepayment %.2f covers the whole principal", domain.ErrInvalidParameter, prepayment)
	}

	current, err := loanmath.Compute(profile.LoanOffer, profile.InterestRate, profile.TenureMonths)
	if err != nil {
		return nil, err
	}
	reduced, err := loanmath.Compute(remaining, profile.InterestRate, profile.TenureMonths)
	if err != nil {
		return nil, err
	}

	newTotal := reduced.EMI*float64(profile.TenureMonths) + prepayment
	newInterest := newTotal - profile.LoanOffer

	return &domain.PrepaymentProjection{
		Prepayment:    prepayment,
		Current:       current,
		NewEMI:        reduced.EMI,
		NewTotal:      newTotal,
		InterestSaved: current.TotalInterest - newInterest,
	}, nil
}

// TenureOptions builds one comparison per candidate tenure, excluding the
// profile's current tenure.
func TenureOptions(profile *domain.CustomerProfile) (*domain.TenureProjection, error) {
	if err := checkTerms(profile); err != nil {
		return nil, err
	}

	current, err := loanmath.Compute(profile.LoanOffer, profile.InterestRate, profile.TenureMonths)
	if err != nil {
		return nil, err
	}

	proj := &domain.TenureProjection{Current: current}
	for _, tenure := range candidateTenures {
		if tenure == profile.TenureMonths {
			continue
		}
		alt, err := loanmath.Compute(profile.LoanOffer, profile.InterestRate, tenure)
		if err != nil {
			return nil, err
		}
		proj.Options = append(proj.Options, domain.TenureOption{
			TenureMonths:       tenure,
			EMI:                alt.EMI,
			TotalAmount:        alt.TotalAmount,
			InterestDifference: current.TotalInterest - alt.TotalInterest,
		})
	}

	return proj, nil
}

// RateImprovement lists the achievable actions toward a better rate and
// projects the EMI effect of the combined reduction. Loan-size and tenure
// actions are advisory only; they do not add to the projected reduction.
func RateImprovement(profile *domain.CustomerProfile) (*domain.RateImprovement, error) {
	if profile == nil {
		return nil, fmt.Errorf("%w: profile is required", domain.ErrMissingData)
	}

	imp := &domain.RateImprovement{CurrentRate: profile.InterestRate}

	if profile.CreditScore < 800 {
		target := profile.CreditScore + 50
		if target > 850 {
			target = 850
		}
		reduction := reductionCreditMid
		if target >= 800 {
			reduction = reductionCreditHigh
		}
		imp.PotentialSavings += reduction
		imp.Actions = append(imp.Actions, domain.ImprovementAction{
			Action:        "improve_credit_score",
			Detail:        fmt.Sprintf("Raise credit score to %d+; pay bills on time and reduce utilization", target),
			RateReduction: reduction,
		})
	}

	if !profile.IsSalaryAccount {
		imp.PotentialSavings += reductionSalary
		imp.Actions = append(imp.Actions, domain.ImprovementAction{
			Action:        "open_salary_account",
			Detail:        "Convert to a salary account; also unlocks a 20% processing fee discount",
			RateReduction: reductionSalary,
		})
	}

	if profile.AvgMonthlyBalance < 50000 {
		imp.PotentialSavings += reductionBalance
		imp.Actions = append(imp.Actions, domain.ImprovementAction{
			Action:        "raise_average_balance",
			Detail:        "Maintain a 50,000+ average monthly balance",
			RateReduction: reductionBalance,
		})
	}

	if profile.LoanOffer < 1000000 {
		imp.Actions = append(imp.Actions, domain.ImprovementAction{
			Action: "consider_higher_amount",
			Detail: "Loans of 10 lakh and above qualify for volume discounts",
		})
	}

	if profile.TenureMonths > 36 {
		imp.Actions = append(imp.Actions, domain.ImprovementAction{
			Action: "shorten_tenure",
			Detail: fmt.Sprintf("Current tenure %d months; 24-36 months prices better", profile.TenureMonths),
		})
	}

	if len(imp.Actions) == 0 {
		imp.AlreadyOptimal = true
		imp.PotentialRate = profile.InterestRate
		return imp, nil
	}

	imp.PotentialRate = profile.InterestRate - imp.PotentialSavings
	if imp.PotentialRate < domain.MinInterestRate {
		imp.PotentialRate = domain.MinInterestRate
	}

	if imp.PotentialSavings > 0 {
		if err := checkTerms(profile); err != nil {
			return nil, err
		}
		current, err := loanmath.Compute(profile.LoanOffer, profile.InterestRate, profile.TenureMonths)
		if err != nil {
			return nil, err
		}
		improved, err := loanmath.Compute(profile.LoanOffer, imp.PotentialRate, profile.TenureMonths)
		if err != nil {
			return nil, err
		}
		imp.MonthlySavings = current.EMI - improved.EMI
		imp.TotalSavings = imp.MonthlySavings * float64(profile.TenureMonths)
	}

	return imp, nil
}

// checkTerms verifies the profile carries usable offer terms.
func checkTerms(profile *domain.CustomerProfile) error {
	if profile == nil {
		return fmt.Errorf("%w: profile is required", domain.ErrMissingData)
	}
	if profile.LoanOffer <= 0 || profile.InterestRate <= 0 || profile.TenureMonths <= 0 {
		return fmt.Errorf("%w: profile is missing loan amount, rate or tenure", domain.ErrMissingData)
	}
	return nil
}
