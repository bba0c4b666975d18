// Package repository provides data persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openbank-labs/reloan/internal/domain"
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveCustomer upserts a customer profile.
func (r *SQLRepository) SaveCustomer(ctx context.Context, p *domain.CustomerProfile) error {
	if p == nil || p.CustomerID == "" {
		return fmt.Errorf("%w: customer id is required", domain.ErrInvalidParameter)
	}

	query := `
		INSERT INTO customers (
			customer_id, name, loan_offer, interest_rate, tenure_months,
			emi_amount, processing_fee, foreclosure_charges,
			offer_expiry, purpose, application_link,
			account_age_years, is_salary_account, avg_monthly_balance,
			credit_score, loan_history_score,
			monthly_income, employment_type, job_stability_years,
			is_festive_season, has_existing_loans, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(customer_id) DO UPDATE SET
			name = excluded.name,
			loan_offer = excluded.loan_offer,
			interest_rate = excluded.interest_rate,
			tenure_months = excluded.tenure_months,
			emi_amount = excluded.emi_amount,
			processing_fee = excluded.processing_fee,
			foreclosure_charges = excluded.foreclosure_charges,
			offer_expiry = excluded.offer_expiry,
			purpose = excluded.purpose,
			application_link = excluded.application_link,
			account_age_years = excluded.account_age_years,
			is_salary_account = excluded.is_salary_account,
			avg_monthly_balance = excluded.avg_monthly_balance,
			credit_score = excluded.credit_score,
			loan_history_score = excluded.loan_history_score,
			monthly_income = excluded.monthly_income,
			employment_type = excluded.employment_type,
			job_stability_years = excluded.job_stability_years,
			is_festive_season = excluded.is_festive_season,
			has_existing_loans = excluded.has_existing_loans,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		p.CustomerID, p.Name, p.LoanOffer, p.InterestRate, p.TenureMonths,
		p.EMIAmount, p.ProcessingFee, p.ForeclosureCharges,
		p.OfferExpiry, p.Purpose, p.ApplicationLink,
		p.AccountAgeYears, boolToInt(p.IsSalaryAccount), p.AvgMonthlyBalance,
		p.CreditScore, p.LoanHistoryScore,
		p.MonthlyIncome, p.EmploymentType, p.JobStabilityYears,
		boolToInt(p.IsFestiveSeason), boolToInt(p.HasExistingLoans),
		time.Now().UTC(),
	)
	return err
}

// GetCustomer retrieves a customer profile by ID.
func (r *SQLRepository) GetCustomer(ctx context.Context, customerID string) (*domain.CustomerProfile, error) {
	query := `
		SELECT customer_id, name, loan_offer, interest_rate, tenure_months,
			   emi_amount, processing_fee, foreclosure_charges,
			   offer_expiry, purpose, application_link,
			   account_age_years, is_salary_account, avg_monthly_balance,
			   credit_score, loan_history_score,
			   monthly_income, employment_type, job_stability_years,
			   is_festive_season, has_existing_loans
		FROM customers
		WHERE customer_id = ?
	`

	var p domain.CustomerProfile
	var salaryAcct, festive, existing int
	var offerExpiry, purpose, appLink sql.NullString

	err := r.db.QueryRowContext(ctx, r.rebind(query), customerID).Scan(
		&p.CustomerID, &p.Name, &p.LoanOffer, &p.InterestRate, &p.TenureMonths,
		&p.EMIAmount, &p.ProcessingFee, &p.ForeclosureCharges,
		&offerExpiry, &purpose, &appLink,
		&p.AccountAgeYears, &salaryAcct, &p.AvgMonthlyBalance,
		&p.CreditScore, &p.LoanHistoryScore,
		&p.MonthlyIncome, &p.EmploymentType, &p.JobStabilityYears,
		&festive, &existing,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: customer %s", domain.ErrNotFound, customerID)
	}
	if err != nil {
		return nil, err
	}

	p.OfferExpiry = offerExpiry.String
	p.Purpose = purpose.String
	p.ApplicationLink = appLink.String
	p.IsSalaryAccount = salaryAcct == 1
	p.IsFestiveSeason = festive == 1
	p.HasExistingLoans = existing == 1

	return &p, nil
}

// ListCustomerIDs returns all customer IDs, ordered for stable batch runs.
func (r *SQLRepository) ListCustomerIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT customer_id FROM customers ORDER BY customer_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// SaveCampaign upserts a promotional campaign.
func (r *SQLRepository) SaveCampaign(ctx context.Context, c *domain.Campaign) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("%w: campaign id is required", domain.ErrInvalidParameter)
	}

	now := time.Now().UTC()
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	query := `
		INSERT INTO campaigns (
			id, name, description, expression, rate_delta,
			fee_multiplier, max_multiplier, tag, enabled,
			starts_at, ends_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			expression = excluded.expression,
			rate_delta = excluded.rate_delta,
			fee_multiplier = excluded.fee_multiplier,
			max_multiplier = excluded.max_multiplier,
			tag = excluded.tag,
			enabled = excluded.enabled,
			starts_at = excluded.starts_at,
			ends_at = excluded.ends_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		c.ID, c.Name, c.Description, c.Expression, c.RateDelta,
		c.FeeMultiplier, c.MaxMultiplier, c.Tag, boolToInt(c.Enabled),
		nullTime(c.StartsAt), nullTime(c.EndsAt), createdAt, now,
	)
	return err
}

// GetCampaign retrieves a campaign by ID.
func (r *SQLRepository) GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	query := `
		SELECT id, name, description, expression, rate_delta,
			   fee_multiplier, max_multiplier, tag, enabled,
			   starts_at, ends_at, created_at, updated_at
		FROM campaigns
		WHERE id = ?
	`

	c, err := scanCampaign(r.db.QueryRowContext(ctx, r.rebind(query), campaignID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: campaign %s", domain.ErrNotFound, campaignID)
	}
	return c, err
}

// ListCampaigns returns all campaigns, enabled or not. The pricing engine
// applies its own activation checks on load.
func (r *SQLRepository) ListCampaigns(ctx context.Context) ([]*domain.Campaign, error) {
	query := `
		SELECT id, name, description, expression, rate_delta,
			   fee_multiplier, max_multiplier, tag, enabled,
			   starts_at, ends_at, created_at, updated_at
		FROM campaigns
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []*domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}

	return campaigns, rows.Err()
}

// DeleteCampaign removes a campaign.
func (r *SQLRepository) DeleteCampaign(ctx context.Context, campaignID string) error {
	result, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM campaigns WHERE id = ?`), campaignID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: campaign %s", domain.ErrNotFound, campaignID)
	}

	return nil
}

// SavePricingSnapshot stores a pricing result for audit.
func (r *SQLRepository) SavePricingSnapshot(ctx context.Context, snap *domain.PricingSnapshot) error {
	if snap == nil || snap.ID == "" {
		return fmt.Errorf("%w: snapshot id is required", domain.ErrInvalidParameter)
	}

	result, err := json.Marshal(snap.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal pricing result: %w", err)
	}

	query := `
		INSERT INTO pricing_snapshots (id, customer_id, result, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, r.rebind(query),
		snap.ID, snap.CustomerID, string(result), snap.CreatedAt,
	)
	return err
}

// GetPricingSnapshot retrieves a pricing snapshot by ID.
func (r *SQLRepository) GetPricingSnapshot(ctx context.Context, snapID string) (*domain.PricingSnapshot, error) {
	query := `
		SELECT id, customer_id, result, created_at
		FROM pricing_snapshots
		WHERE id = ?
	`

	var snap domain.PricingSnapshot
	var result string

	err := r.db.QueryRowContext(ctx, r.rebind(query), snapID).Scan(
		&snap.ID, &snap.CustomerID, &result, &snap.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: pricing snapshot %s", domain.ErrNotFound, snapID)
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(result), &snap.Result); err != nil {
		return nil, fmt.Errorf("failed to parse pricing result: %w", err)
	}

	return &snap, nil
}

// ListPricingSnapshots retrieves a customer's pricing history since a time.
func (r *SQLRepository) ListPricingSnapshots(ctx context.Context, customerID string, since time.Time) ([]*domain.PricingSnapshot, error) {
	query := `
		SELECT id, customer_id, result, created_at
		FROM pricing_snapshots
		WHERE customer_id = ? AND created_at >= ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), customerID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*domain.PricingSnapshot
	for rows.Next() {
		var snap domain.PricingSnapshot
		var result string

		if err := rows.Scan(&snap.ID, &snap.CustomerID, &result, &snap.CreatedAt); err != nil {
			return nil, err
		}

		if err := json.Unmarshal([]byte(result), &snap.Result); err != nil {
			return nil, fmt.Errorf("failed to parse pricing result for %s: %w", snap.ID, err)
		}
		snapshots = append(snapshots, &snap)
	}

	return snapshots, rows.Err()
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	// Convert ? to $1, $2, etc.
	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (*domain.Campaign, error) {
	var c domain.Campaign
	var description, tag sql.NullString
	var enabled int
	var startsAt, endsAt sql.NullTime

	err := row.Scan(
		&c.ID, &c.Name, &description, &c.Expression, &c.RateDelta,
		&c.FeeMultiplier, &c.MaxMultiplier, &tag, &enabled,
		&startsAt, &endsAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Description = description.String
	c.Tag = tag.String
	c.Enabled = enabled == 1
	c.StartsAt = startsAt.Time
	c.EndsAt = endsAt.Time

	return &c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
