package profile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/openbank-labs/reloan/internal/domain"
)

// ImportCSV reads a customer data file and upserts every row into the
// repository. Column names are trimmed and lowercased before matching; a
// file without a customer_id column is a fatal data-source error. Rows with
// an empty customer_id are skipped with a warning. Returns the number of
// rows imported.
func ImportCSV(ctx context.Context, repo domain.Repository, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: cannot open customer data file: %v", domain.ErrDataSource, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("%w: customer data file is empty or unreadable: %v", domain.ErrDataSource, err)
	}

	columns := make([]string, len(header))
	hasID := false
	for i, name := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(name))
		if columns[i] == "customer_id" {
			hasID = true
		}
	}
	if !hasID {
		return 0, fmt.Errorf("%w: customer_id column not found in %s", domain.ErrDataSource, path)
	}

	imported := 0
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("%w: malformed row at line %d: %v", domain.ErrDataSource, line, err)
		}

		record := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(row) {
				record[col] = strings.TrimSpace(row[i])
			}
		}

		p := NormalizeRecord(record)
		if p.CustomerID == "" {
			slog.Warn("skipping row without customer_id", "line", line)
			continue
		}

		if err := repo.SaveCustomer(ctx, p); err != nil {
			return imported, fmt.Errorf("%w: failed to save customer %s: %v", domain.ErrDataSource, p.CustomerID, err)
		}
		imported++
	}

	slog.Info("customer data imported", "path", path, "rows", imported)
	return imported, nil
}

// NormalizeRecord coerces a raw column map into a profile. Missing or
// unparseable values fall back to the documented defaults so downstream
// pricing degrades to neutral behavior instead of failing.
func NormalizeRecord(record map[string]string) *domain.CustomerProfile {
	p := domain.DefaultProfile()

	p.CustomerID = record["customer_id"]
	p.Name = record["name"]
	p.OfferExpiry = record["offer_expiry"]
	p.Purpose = record["purpose"]
	p.ApplicationLink = record["application_link"]

	p.LoanOffer = floatField(record, "loan_offer", 0)
	p.InterestRate = floatField(record, "interest_rate", 0)
	p.TenureMonths = intField(record, "tenure", 0)
	p.EMIAmount = floatField(record, "emi_amount", 0)
	p.ProcessingFee = floatField(record, "processing_fee", 0)
	p.ForeclosureCharges = floatField(record, "foreclosure_charges", 0)

	p.AccountAgeYears = intField(record, "account_age_years", 0)
	p.IsSalaryAccount = boolField(record, "is_salary_account", false)
	p.AvgMonthlyBalance = floatField(record, "avg_monthly_balance", 0)

	p.CreditScore = intField(record, "credit_score", domain.DefaultCreditScore)
	p.LoanHistoryScore = enumField(record, "loan_history_score", domain.DefaultLoanHistoryScore)

	p.MonthlyIncome = floatField(record, "monthly_income", 0)
	p.EmploymentType = enumField(record, "employment_type", domain.DefaultEmploymentType)
	p.JobStabilityYears = intField(record, "job_stability_years", domain.DefaultJobStabilityYears)

	p.IsFestiveSeason = boolField(record, "is_festive_season", false)
	p.HasExistingLoans = boolField(record, "has_existing_loans", false)

	return p
}

func floatField(record map[string]string, key string, fallback float64) float64 {
	raw, ok := record[key]
	if !ok || raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("could not parse numeric column, using default", "column", key, "value", raw)
		return fallback
	}
	return v
}

func intField(record map[string]string, key string, fallback int) int {
	raw, ok := record[key]
	if !ok || raw == "" {
		return fallback
	}
	// Tabular exports often write integers as "24.0".
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("could not parse integer column, using default", "column", key, "value", raw)
		return fallback
	}
	return int(v)
}

func boolField(record map[string]string, key string, fallback bool) bool {
	raw, ok := record[key]
	if !ok || raw == "" {
		return fallback
	}
	switch strings.ToLower(raw) {
	case "true", "1", "yes", "y":
		return true
	case "false", "0", "no", "n":
		return false
	}
	slog.Warn("could not parse boolean column, using default", "column", key, "value", raw)
	return fallback
}

func enumField(record map[string]string, key, fallback string) string {
	raw, ok := record[key]
	if !ok || raw == "" {
		return fallback
	}
	return strings.ToLower(raw)
}
