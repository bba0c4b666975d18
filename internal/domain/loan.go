package domain

// AmortizationResult holds the output of the reducing-balance EMI formula
// for a (principal, annual rate, tenure) triple.
type AmortizationResult struct {
	EMI           float64 `json:"emi"`
	TotalAmount   float64 `json:"totalAmount"`
	TotalInterest float64 `json:"totalInterest"`
}

// PrepaymentProjection compares the current loan structure against the same
// terms with a reduced principal after a one-time prepayment.
type PrepaymentProjection struct {
	Prepayment    float64            `json:"prepayment"`
	Current       AmortizationResult `json:"current"`
	NewEMI        float64            `json:"newEmi"`
	NewTotal      float64            `json:"newTotal"` // includes the prepayment itself
	InterestSaved float64            `json:"interestSaved"`
}

// TenureOption is one row of the alternate-tenure comparison table.
type TenureOption struct {
	TenureMonths int     `json:"tenureMonths"`
	EMI          float64 `json:"emi"`
	TotalAmount  float64 `json:"totalAmount"`
	// InterestDifference is current interest minus this option's interest;
	// positive means the option saves money.
	InterestDifference float64 `json:"interestDifference"`
}

// TenureProjection holds the current structure plus the candidate tenures.
type TenureProjection struct {
	Current AmortizationResult `json:"current"`
	Options []TenureOption     `json:"options"`
}

// ImprovementAction is one achievable step toward a better rate.
type ImprovementAction struct {
	Action        string  `json:"action"`
	Detail        string  `json:"detail"`
	RateReduction float64 `json:"rateReduction"` // percentage points; 0 for advisory-only actions
}

// RateImprovement is the projected effect of all achievable actions combined.
type RateImprovement struct {
	CurrentRate      float64             `json:"currentRate"`
	PotentialRate    float64             `json:"potentialRate"`
	PotentialSavings float64             `json:"potentialSavings"` // percentage points
	MonthlySavings   float64             `json:"monthlySavings"`
	TotalSavings     float64             `json:"totalSavings"`
	Actions          []ImprovementAction `json:"actions"`
	AlreadyOptimal   bool                `json:"alreadyOptimal"`
}
