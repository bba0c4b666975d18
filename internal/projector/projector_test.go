package projector

import (
	"errors"
	"math"
	"testing"

	"github.com/openbank-labs/reloan/internal/domain"
)

func testProfile() *domain.CustomerProfile {
	return &domain.CustomerProfile{
		CustomerID:        "CUST001",
		LoanOffer:         500000,
		InterestRate:      10.5,
		TenureMonths:      24,
		CreditScore:       820,
		IsSalaryAccount:   true,
		AvgMonthlyBalance: 120000,
	}
}

func TestPrepayment(t *testing.T) {
	proj, err := Prepayment(testProfile(), 100000)
	if err != nil {
		t.Fatalf("prepayment failed: %v", err)
	}

	if proj.NewEMI >= proj.Current.EMI {
		t.Errorf("prepayment must lower the EMI: %v >= %v", proj.NewEMI, proj.Current.EMI)
	}
	if proj.InterestSaved <= 0 {
		t.Errorf("expected positive interest savings, got %v", proj.InterestSaved)
	}

	// New total includes the prepayment itself.
	wantTotal := proj.NewEMI*24 + 100000
	if math.Abs(proj.NewTotal-wantTotal) > 1e-6 {
		t.Errorf("new total %v != emi*tenure+prepayment %v", proj.NewTotal, wantTotal)
	}
}

func TestPrepaymentInvalid(t *testing.T) {
	if _, err := Prepayment(testProfile(), 0); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for zero prepayment, got %v", err)
	}
	if _, err := Prepayment(testProfile(), 500000); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter when prepayment covers principal, got %v", err)
	}
	if _, err := Prepayment(&domain.CustomerProfile{}, 1000); !errors.Is(err, domain.ErrMissingData) {
		t.Errorf("expected ErrMissingData for empty profile, got %v", err)
	}
}

func TestTenureOptionsExcludeCurrent(t *testing.T) {
	proj, err := TenureOptions(testProfile())
	if err != nil {
		t.Fatalf("tenure options failed: %v", err)
	}

	want := map[int]bool{12: true, 36: true, 60: true}
	if len(proj.Options) != len(want) {
		t.Fatalf("expected %d options, got %d", len(want), len(proj.Options))
	}
	for _, opt := range proj.Options {
		if !want[opt.TenureMonths] {
			t.Errorf("unexpected tenure option %d", opt.TenureMonths)
		}
		if opt.TenureMonths == 24 {
			t.Errorf("current tenure must be excluded")
		}
	}

	// Shorter tenure saves interest, longer costs more.
	for _, opt := range proj.Options {
		switch {
		case opt.TenureMonths < 24 && opt.InterestDifference <= 0:
			t.Errorf("tenure %d should save interest, diff %v", opt.TenureMonths, opt.InterestDifference)
		case opt.TenureMonths > 24 && opt.InterestDifference >= 0:
			t.Errorf("tenure %d should cost extra interest, diff %v", opt.TenureMonths, opt.InterestDifference)
		}
	}
}

func TestRateImprovementRoadmap(t *testing.T) {
	p := &domain.CustomerProfile{
		CustomerID:        "CUST002",
		LoanOffer:         500000,
		InterestRate:      12.0,
		TenureMonths:      48,
		CreditScore:       720,
		IsSalaryAccount:   false,
		AvgMonthlyBalance: 20000,
	}

	imp, err := RateImprovement(p)
	if err != nil {
		t.Fatalf("rate improvement failed: %v", err)
	}
	if imp.AlreadyOptimal {
		t.Fatal("profile with headroom reported as optimal")
	}

	// credit 720 -> target 770 -> 0.25; salary 0.3; balance 0.2
	if math.Abs(imp.PotentialSavings-0.75) > 1e-9 {
		t.Errorf("expected potential savings 0.75, got %v", imp.PotentialSavings)
	}
	if math.Abs(imp.PotentialRate-11.25) > 1e-9 {
		t.Errorf("expected potential rate 11.25, got %v", imp.PotentialRate)
	}
	if imp.MonthlySavings <= 0 {
		t.Errorf("expected positive monthly savings, got %v", imp.MonthlySavings)
	}

	// Advisory actions present for sub-10L amount and long tenure.
	actions := map[string]domain.ImprovementAction{}
	for _, a := range imp.Actions {
		actions[a.Action] = a
	}
	if len(actions) != 5 {
		t.Errorf("expected 5 actions, got %d: %v", len(actions), imp.Actions)
	}
	if actions["consider_higher_amount"].RateReduction != 0 {
		t.Errorf("loan-size action must be advisory only")
	}
	if actions["shorten_tenure"].RateReduction != 0 {
		t.Errorf("tenure action must be advisory only")
	}
}

func TestRateImprovementCreditTierTarget(t *testing.T) {
	// 760 + 50 = 810 reaches the top tier: full 0.5 reduction.
	p := testProfile()
	p.CreditScore = 760
	p.IsSalaryAccount = true
	p.AvgMonthlyBalance = 120000
	p.LoanOffer = 1500000
	p.TenureMonths = 24

	imp, err := RateImprovement(p)
	if err != nil {
		t.Fatalf("rate improvement failed: %v", err)
	}
	if math.Abs(imp.PotentialSavings-0.5) > 1e-9 {
		t.Errorf("expected 0.5 savings from credit tier jump, got %v", imp.PotentialSavings)
	}
}

func TestRateImprovementAlreadyOptimal(t *testing.T) {
	p := &domain.CustomerProfile{
		CustomerID:        "CUST003",
		LoanOffer:         1500000,
		InterestRate:      8.4,
		TenureMonths:      24,
		CreditScore:       820,
		IsSalaryAccount:   true,
		AvgMonthlyBalance: 200000,
	}

	imp, err := RateImprovement(p)
	if err != nil {
		t.Fatalf("rate improvement failed: %v", err)
	}
	if !imp.AlreadyOptimal {
		t.Errorf("expected already-optimal result, got %+v", imp)
	}
	if imp.PotentialRate != 8.4 {
		t.Errorf("optimal profile keeps its rate, got %v", imp.PotentialRate)
	}
}

func TestRateImprovementFloorClamp(t *testing.T) {
	p := testProfile()
	p.InterestRate = 8.2
	p.CreditScore = 700
	p.IsSalaryAccount = false
	p.AvgMonthlyBalance = 1000

	imp, err := RateImprovement(p)
	if err != nil {
		t.Fatalf("rate improvement failed: %v", err)
	}
	if imp.PotentialRate != domain.MinInterestRate {
		t.Errorf("potential rate must clamp at %v, got %v", domain.MinInterestRate, imp.PotentialRate)
	}
}
