package pricing

import (
	"github.com/openbank-labs/reloan/internal/domain"
)

// factorDelta is the contribution of one factor group. Multipliers default
// to 1.0 (untouched).
type factorDelta struct {
	rateDelta float64
	feeMult   float64
	maxMult   float64
}

// factor is one independent pricing factor group. Within a group the
// conditions are checked in priority order and the first match wins; across
// groups every applicable adjustment fires and stacks.
type factor struct {
	name  string
	apply func(p *domain.CustomerProfile, amount float64, tenure int) (factorDelta, bool)
}

func neutral() factorDelta { return factorDelta{feeMult: 1, maxMult: 1} }

// factorPipeline is the ordered set of factor groups. Thresholds are fixed
// policy and must not be tuned without a compatibility review: downstream
// audit trails replay them.
var factorPipeline = []factor{
	{
		name: "account_age",
		apply: func(p *domain.CustomerProfile, _ float64, _ int) (factorDelta, bool) {
			d := neutral()
			switch {
			case p.AccountAgeYears >= 5:
				d.rateDelta = -0.5
			case p.AccountAgeYears >= 2:
				d.rateDelta = -0.25
			case p.AccountAgeYears < 1:
				d.rateDelta = 0.25
			default:
				return d, false
			}
			return d, true
		},
	},
	{
		name: "salary_account",
		apply: func(p *domain.CustomerProfile, _ float64, _ int) (factorDelta, bool) {
			if !p.IsSalaryAccount {
				return neutral(), false
			}
			return factorDelta{rateDelta: -0.3, feeMult: 0.8, maxMult: 1}, true
		},
	},
	{
		name: "avg_balance",
		apply: func(p *domain.CustomerProfile, _ float64, _ int) (factorDelta, bool) {
			d := neutral()
			switch {
			case p.AvgMonthlyBalance >= 100000:
				d.rateDelta, d.maxMult = -0.4, 1.2
			case p.AvgMonthlyBalance >= 50000:
				d.rateDelta, d.maxMult = -0.2, 1.1
			case p.AvgMonthlyBalance < 10000:
				d.rateDelta = 0.3
			default:
				return d, false
			}
			return d, true
		},
	},
	{
		name: "credit_score",
		apply: func(p *domain.CustomerProfile, _ float64, _ int) (factorDelta, bool) {
			d := neutral()
			switch {
			case p.CreditScore >= 800:
				d.rateDelta, d.maxMult = -0.5, 1.3
			case p.CreditScore >= 750:
				d.rateDelta = -0.25
			case p.CreditScore >= 700:
				// Neutral band, no change.
				return d, false
			case p.CreditScore >= 650:
				d.rateDelta = 0.5
			default:
				d.rateDelta, d.maxMult = 1.0, 0.8
			}
			return d, true
		},
	},
	{
		name: "loan_history",
		apply: func(p *domain.CustomerProfile, _ float64, _ int) (factorDelta, bool) {
			d := neutral()
			switch p.LoanHistoryScore {
			case domain.HistoryExcellent:
				d.rateDelta, d.feeMult = -0.3, 0.7
			case domain.HistoryGood:
				d.rateDelta = -0.1
			case domain.HistoryPoor:
				d.rateDelta = 0.5
			default:
				return d, false
			}
			return d, true
		},
	},
	{
		name: "monthly_income",
		apply: func(p *domain.CustomerProfile, _ float64, _ int) (factorDelta, bool) {
			d := neutral()
			switch {
			case p.MonthlyIncome >= 100000:
				d.rateDelta, d.maxMult = -0.2, 1.4
			case p.MonthlyIncome >= 75000:
				d.rateDelta, d.maxMult = -0.1, 1.2
			case p.MonthlyIncome < 30000:
				d.rateDelta, d.maxMult = 0.3, 0.9
			default:
				return d, false
			}
			return d, true
		},
	},
	{
		name: "employment_type",
		apply: func(p *domain.CustomerProfile, _ float64, _ int) (factorDelta, bool) {
			d := neutral()
			switch p.EmploymentType {
			case domain.EmploymentGovernment:
				d.rateDelta = -0.4
			case domain.EmploymentMNC:
				d.rateDelta = -0.2
			case domain.EmploymentSelfEmployed:
				d.rateDelta = 0.3
			case domain.EmploymentBusinessOwner:
				d.rateDelta = 0.2
			default:
				return d, false
			}
			return d, true
		},
	},
	{
		name: "job_stability",
		apply: func(p *domain.CustomerProfile, _ float64, _ int) (factorDelta, bool) {
			d := neutral()
			switch {
			case p.JobStabilityYears >= 3:
				d.rateDelta = -0.1
			case p.JobStabilityYears < 1:
				d.rateDelta = 0.2
			default:
				return d, false
			}
			return d, true
		},
	},
	{
		name: "loan_amount",
		apply: func(_ *domain.CustomerProfile, amount float64, _ int) (factorDelta, bool) {
			d := neutral()
			switch {
			case amount >= 2000000:
				d.rateDelta = -0.25
			case amount >= 1000000:
				d.rateDelta = -0.15
			case amount < 200000:
				d.rateDelta = 0.2
			default:
				return d, false
			}
			return d, true
		},
	},
	{
		name: "tenure",
		apply: func(_ *domain.CustomerProfile, _ float64, tenure int) (factorDelta, bool) {
			d := neutral()
			switch {
			case tenure <= 12:
				d.rateDelta = -0.1
			case tenure >= 60:
				d.rateDelta = 0.2
			default:
				return d, false
			}
			return d, true
		},
	},
	{
		name: "festive_season",
		apply: func(p *domain.CustomerProfile, _ float64, _ int) (factorDelta, bool) {
			if !p.IsFestiveSeason {
				return neutral(), false
			}
			return factorDelta{rateDelta: -0.15, feeMult: 0.9, maxMult: 1}, true
		},
	},
	{
		name: "no_existing_loans",
		apply: func(p *domain.CustomerProfile, _ float64, _ int) (factorDelta, bool) {
			if p.HasExistingLoans {
				return neutral(), false
			}
			return factorDelta{rateDelta: -0.1, feeMult: 1, maxMult: 1}, true
		},
	},
}
