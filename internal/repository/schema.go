package repository

// Schema definitions for the Reloan database.
// Compatible with both SQLite and PostgreSQL.

const schemaCustomers = `
CREATE TABLE IF NOT EXISTS customers (
    customer_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    loan_offer REAL NOT NULL DEFAULT 0,
    interest_rate REAL NOT NULL DEFAULT 0,
    tenure_months INTEGER NOT NULL DEFAULT 0,
    emi_amount REAL NOT NULL DEFAULT 0,
    processing_fee REAL NOT NULL DEFAULT 0,
    foreclosure_charges REAL NOT NULL DEFAULT 0,
    offer_expiry TEXT,
    purpose TEXT,
    application_link TEXT,
    account_age_years INTEGER NOT NULL DEFAULT 0,
    is_salary_account INTEGER NOT NULL DEFAULT 0,
    avg_monthly_balance REAL NOT NULL DEFAULT 0,
    credit_score INTEGER NOT NULL DEFAULT 750,
    loan_history_score TEXT NOT NULL DEFAULT 'good',
    monthly_income REAL NOT NULL DEFAULT 0,
    employment_type TEXT NOT NULL DEFAULT 'salaried',
    job_stability_years INTEGER NOT NULL DEFAULT 2,
    is_festive_season INTEGER NOT NULL DEFAULT 0,
    has_existing_loans INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_customers_name ON customers(name);
`

const schemaCampaigns = `
CREATE TABLE IF NOT EXISTS campaigns (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    expression TEXT NOT NULL,
    rate_delta REAL NOT NULL DEFAULT 0,
    fee_multiplier REAL NOT NULL DEFAULT 0,
    max_multiplier REAL NOT NULL DEFAULT 0,
    tag TEXT,
    enabled INTEGER NOT NULL DEFAULT 1,
    starts_at TIMESTAMP,
    ends_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_campaigns_enabled ON campaigns(enabled);
`

const schemaPricingSnapshots = `
CREATE TABLE IF NOT EXISTS pricing_snapshots (
    id TEXT PRIMARY KEY,
    customer_id TEXT NOT NULL,
    result TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_customer ON pricing_snapshots(customer_id);
CREATE INDEX IF NOT EXISTS idx_snapshots_created ON pricing_snapshots(customer_id, created_at);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaCustomers,
		schemaCampaigns,
		schemaPricingSnapshots,
	}
}
