package domain

// CustomerProfile is the normalized customer record driving all calculations.
// It is loaded once per session and treated as an immutable snapshot; no
// component mutates it after load.
type CustomerProfile struct {
	// Identity
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`

	// Pre-approved offer terms
	LoanOffer          float64 `json:"loanOffer"`
	InterestRate       float64 `json:"interestRate"` // base annual rate, percent
	TenureMonths       int     `json:"tenureMonths"`
	EMIAmount          float64 `json:"emiAmount"` // advisory, cached by upstream
	ProcessingFee      float64 `json:"processingFee"`
	ForeclosureCharges float64 `json:"foreclosureCharges"`
	OfferExpiry        string  `json:"offerExpiry,omitempty"`
	Purpose            string  `json:"purpose,omitempty"`
	ApplicationLink    string  `json:"applicationLink,omitempty"`

	// Relationship attributes
	AccountAgeYears   int     `json:"accountAgeYears"`
	IsSalaryAccount   bool    `json:"isSalaryAccount"`
	AvgMonthlyBalance float64 `json:"avgMonthlyBalance"`

	// Credit attributes
	CreditScore      int    `json:"creditScore"`
	LoanHistoryScore string `json:"loanHistoryScore"` // excellent|good|average|poor

	// Income and employment
	MonthlyIncome     float64 `json:"monthlyIncome"`
	EmploymentType    string  `json:"employmentType"` // salaried|government|mnc|self_employed|business_owner
	JobStabilityYears int     `json:"jobStabilityYears"`

	// Market context
	IsFestiveSeason  bool `json:"isFestiveSeason"`
	HasExistingLoans bool `json:"hasExistingLoans"`
}

// Loan history tiers.
const (
	HistoryExcellent = "excellent"
	HistoryGood      = "good"
	HistoryAverage   = "average"
	HistoryPoor      = "poor"
)

// Employment types.
const (
	EmploymentSalaried      = "salaried"
	EmploymentGovernment    = "government"
	EmploymentMNC           = "mnc"
	EmploymentSelfEmployed  = "self_employed"
	EmploymentBusinessOwner = "business_owner"
)

// Normalization defaults applied when a source column is absent or
// unparseable. Numeric fields not listed here default to zero and string
// fields to empty, so the engine degrades to neutral pricing rather than
// failing on sparse records.
const (
	DefaultCreditScore       = 750
	DefaultLoanHistoryScore  = HistoryGood
	DefaultEmploymentType    = EmploymentSalaried
	DefaultJobStabilityYears = 2
	DefaultTenureMonths      = 12
)

// DefaultProfile returns a profile carrying the neutral defaults. Loaders
// start from this and overwrite fields present in the source record.
func DefaultProfile() *CustomerProfile {
	return &CustomerProfile{
		CreditScore:       DefaultCreditScore,
		LoanHistoryScore:  DefaultLoanHistoryScore,
		EmploymentType:    DefaultEmploymentType,
		JobStabilityYears: DefaultJobStabilityYears,
	}
}
