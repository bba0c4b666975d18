package tools

import (
	"fmt"
	"strings"

	"github.com/openbank-labs/reloan/internal/domain"
	"github.com/openbank-labs/reloan/internal/format"
)

// renderDetails projects the profile into text. Known detail types render a
// dedicated line; anything else falls back to a generic key lookup.
func renderDetails(p *domain.CustomerProfile, detailType string) string {
	switch detailType {
	case "all":
		var b strings.Builder
		fmt.Fprintf(&b, "Name: %s\n", p.Name)
		fmt.Fprintf(&b, "Loan Offer: %s\n", format.Currency(p.LoanOffer))
		fmt.Fprintf(&b, "Interest Rate: %s\n", format.Percent(p.InterestRate))
		fmt.Fprintf(&b, "Tenure: %d months\n", p.TenureMonths)
		fmt.Fprintf(&b, "Monthly EMI: %s\n", format.Currency(p.EMIAmount))
		fmt.Fprintf(&b, "Processing Fee: %s\n", format.Currency(p.ProcessingFee))
		fmt.Fprintf(&b, "Foreclosure Charges: %s\n", format.Currency(p.ForeclosureCharges))
		fmt.Fprintf(&b, "Offer Expiry: %s\n", p.OfferExpiry)
		fmt.Fprintf(&b, "Purpose: %s\n", p.Purpose)
		fmt.Fprintf(&b, "Application Link: %s\n", p.ApplicationLink)
		return b.String()
	case "loan_offer":
		return fmt.Sprintf("Your pre-approved loan offer: %s", format.Currency(p.LoanOffer))
	case "interest_rate":
		return fmt.Sprintf("Interest rate: %s", format.Percent(p.InterestRate))
	case "emi":
		return fmt.Sprintf("Monthly EMI: %s", format.Currency(p.EMIAmount))
	case "expiry":
		expiry := p.OfferExpiry
		if expiry == "" {
			expiry = "Not specified"
		}
		return fmt.Sprintf("Offer expires on: %s", expiry)
	default:
		return fmt.Sprintf("%s: %s", detailType, lookupField(p, detailType))
	}
}

// lookupField resolves an arbitrary profile key by its source column name.
func lookupField(p *domain.CustomerProfile, key string) string {
	switch key {
	case "name":
		return p.Name
	case "tenure":
		return fmt.Sprintf("%d months", p.TenureMonths)
	case "processing_fee":
		return format.Currency(p.ProcessingFee)
	case "foreclosure_charges":
		return format.Currency(p.ForeclosureCharges)
	case "purpose":
		return p.Purpose
	case "application_link":
		return p.ApplicationLink
	case "credit_score":
		return fmt.Sprintf("%d", p.CreditScore)
	case "avg_monthly_balance":
		return format.Currency(p.AvgMonthlyBalance)
	case "monthly_income":
		return format.Currency(p.MonthlyIncome)
	case "employment_type":
		return p.EmploymentType
	case "account_age_years":
		return fmt.Sprintf("%d years", p.AccountAgeYears)
	default:
		return "Information not available"
	}
}

func renderEMI(amount, rate float64, tenure int, calc domain.AmortizationResult) string {
	var b strings.Builder
	b.WriteString("EMI Calculation:\n")
	fmt.Fprintf(&b, "- Loan Amount: %s\n", format.Currency(amount))
	fmt.Fprintf(&b, "- Interest Rate: %s\n", format.Percent(rate))
	fmt.Fprintf(&b, "- Tenure: %d months\n", tenure)
	fmt.Fprintf(&b, "- Monthly EMI: %s\n", format.Currency(calc.EMI))
	fmt.Fprintf(&b, "- Total Amount: %s\n", format.Currency(calc.TotalAmount))
	fmt.Fprintf(&b, "- Total Interest: %s\n", format.Currency(calc.TotalInterest))
	return b.String()
}

func renderCurrentStructure(b *strings.Builder, current domain.AmortizationResult) {
	b.WriteString("Current Loan Structure:\n")
	fmt.Fprintf(b, "- EMI: %s\n", format.Currency(current.EMI))
	fmt.Fprintf(b, "- Total Interest: %s\n", format.Currency(current.TotalInterest))
	fmt.Fprintf(b, "- Total Amount: %s\n", format.Currency(current.TotalAmount))
}

func renderPrepayment(proj *domain.PrepaymentProjection) string {
	var b strings.Builder
	renderCurrentStructure(&b, proj.Current)
	fmt.Fprintf(&b, "\nWith Prepayment of %s:\n", format.Currency(proj.Prepayment))
	fmt.Fprintf(&b, "- New EMI: %s\n", format.Currency(proj.NewEMI))
	fmt.Fprintf(&b, "- Total Interest Saved: %s\n", format.Currency(proj.InterestSaved))
	fmt.Fprintf(&b, "- New Total Amount: %s\n", format.Currency(proj.NewTotal))
	return b.String()
}

func renderTenureOptions(proj *domain.TenureProjection) string {
	var b strings.Builder
	renderCurrentStructure(&b, proj.Current)
	for _, opt := range proj.Options {
		verdict := "(Extra)"
		if opt.InterestDifference > 0 {
			verdict = "(Save)"
		}
		fmt.Fprintf(&b, "\n%d months tenure:\n", opt.TenureMonths)
		fmt.Fprintf(&b, "- EMI: %s\n", format.Currency(opt.EMI))
		fmt.Fprintf(&b, "- Interest difference: %s %s\n", format.Currency(opt.InterestDifference), verdict)
	}
	return b.String()
}

func renderPricing(p *domain.CustomerProfile, res *domain.PricingResult) string {
	var b strings.Builder
	b.WriteString("Personalized Pricing Analysis\n\n")
	b.WriteString("Your Customized Offer:\n")
	fmt.Fprintf(&b, "- Interest Rate: %s (adjusted from %s)\n",
		format.Percent(res.FinalInterestRate), format.Percent(res.BaseRate))
	fmt.Fprintf(&b, "- Monthly EMI: %s\n", format.Currency(res.FinalEMI))
	fmt.Fprintf(&b, "- Processing Fee: %s\n", format.Currency(res.FinalFee))
	fmt.Fprintf(&b, "- Maximum Eligible: %s\n", format.Currency(res.MaxEligible))

	sign := ""
	if res.RateAdjustment > 0 {
		sign = "+"
	}
	fmt.Fprintf(&b, "\nRate Adjustment: %s%.2f%% points\n", sign, res.RateAdjustment)

	b.WriteString("\nKey Factors Considered:\n")
	if len(res.ExplanationFactors) == 0 {
		b.WriteString("- Standard market factors applied\n")
	}
	for _, f := range res.ExplanationFactors {
		fmt.Fprintf(&b, "- %s\n", f)
	}

	b.WriteString("\nFinancial Impact:\n")
	fmt.Fprintf(&b, "- Monthly difference: %s %s\n",
		format.Currency(abs(res.MonthlyDifference)), direction(res.MonthlyDifference))
	fmt.Fprintf(&b, "- Total impact over %d months: %s %s\n",
		res.TenureMonths, format.Currency(abs(res.TotalDifference)), direction(res.TotalDifference))

	if res.FeeMultiplier < 1.0 {
		fmt.Fprintf(&b, "\n- %.0f%% discount on processing fee\n", (1-res.FeeMultiplier)*100)
	}
	if res.MaxMultiplier > 1.0 {
		fmt.Fprintf(&b, "- Up to %.0f%% higher loan eligibility\n", (res.MaxMultiplier-1)*100)
	}
	if p.IsSalaryAccount {
		b.WriteString("- Priority processing for salary account holders\n")
	}
	if p.IsFestiveSeason {
		b.WriteString("- Festive season special discount applied\n")
	}

	return b.String()
}

func renderImprovement(p *domain.CustomerProfile, imp *domain.RateImprovement) string {
	var b strings.Builder

	if imp.AlreadyOptimal {
		b.WriteString("Your profile already qualifies for our best rates.\n")
		fmt.Fprintf(&b, "- Interest Rate: %s\n", format.Percent(imp.CurrentRate))
		b.WriteString("- This is among our most competitive rates\n")
		b.WriteString("- Your excellent banking relationship has optimized your pricing\n")
		return b.String()
	}

	b.WriteString("Rate Improvement Roadmap\n\n")
	fmt.Fprintf(&b, "Current Rate: %s\n", format.Percent(imp.CurrentRate))
	fmt.Fprintf(&b, "Potential Best Rate: %s (save %.1f%%)\n", format.Percent(imp.PotentialRate), imp.PotentialSavings)

	if imp.MonthlySavings > 0 {
		b.WriteString("\nPotential Savings:\n")
		fmt.Fprintf(&b, "- Monthly EMI reduction: %s\n", format.Currency(imp.MonthlySavings))
		fmt.Fprintf(&b, "- Total savings over %d months: %s\n", p.TenureMonths, format.Currency(imp.TotalSavings))
	}

	b.WriteString("\nAction Items:\n")
	for _, a := range imp.Actions {
		if a.RateReduction > 0 {
			fmt.Fprintf(&b, "- %s (rate reduction: %.2f%%)\n", a.Detail, a.RateReduction)
		} else {
			fmt.Fprintf(&b, "- %s\n", a.Detail)
		}
	}

	return b.String()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func direction(v float64) string {
	if v > 0 {
		return "more"
	}
	return "savings"
}
