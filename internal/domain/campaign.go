package domain

import "time"

// Campaign is an operator-defined promotional pricing rule. Its CEL
// expression is evaluated against the resolved pricing inputs; when it
// returns true, the campaign's adjustments are applied after the built-in
// factor groups and before the final rate clamp.
//
// Available CEL variables: credit_score, account_age_years, avg_balance,
// monthly_income, loan_amount, tenure_months, employment_type,
// loan_history, is_salary_account, is_festive_season, has_existing_loans.
type Campaign struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Expression is a CEL predicate deciding whether the campaign applies.
	Expression string `json:"expression"`

	// Adjustments applied when the expression holds.
	RateDelta     float64 `json:"rateDelta"`     // percentage points, signed
	FeeMultiplier float64 `json:"feeMultiplier"` // 0 means leave unchanged
	MaxMultiplier float64 `json:"maxMultiplier"` // 0 means leave unchanged

	// Tag is appended to the result's explanation factors when applied.
	Tag string `json:"tag,omitempty"`

	Enabled   bool      `json:"enabled"`
	StartsAt  time.Time `json:"startsAt,omitempty"`
	EndsAt    time.Time `json:"endsAt,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// ActiveAt reports whether the campaign is enabled and inside its validity
// window at the given instant. Zero bounds are open-ended.
func (c *Campaign) ActiveAt(t time.Time) bool {
	if !c.Enabled {
		return false
	}
	if !c.StartsAt.IsZero() && t.Before(c.StartsAt) {
		return false
	}
	if !c.EndsAt.IsZero() && t.After(c.EndsAt) {
		return false
	}
	return true
}
