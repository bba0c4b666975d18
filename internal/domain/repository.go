package domain

import (
	"context"
	"time"
)

// Repository defines persistence for customer profiles, campaigns and
// pricing snapshots.
type Repository interface {
	// Customer profile operations
	SaveCustomer(ctx context.Context, profile *CustomerProfile) error
	GetCustomer(ctx context.Context, customerID string) (*CustomerProfile, error)
	ListCustomerIDs(ctx context.Context) ([]string, error)

	// Campaign operations
	SaveCampaign(ctx context.Context, campaign *Campaign) error
	GetCampaign(ctx context.Context, campaignID string) (*Campaign, error)
	ListCampaigns(ctx context.Context) ([]*Campaign, error)
	DeleteCampaign(ctx context.Context, campaignID string) error

	// Pricing audit trail
	SavePricingSnapshot(ctx context.Context, snap *PricingSnapshot) error
	GetPricingSnapshot(ctx context.Context, snapID string) (*PricingSnapshot, error)
	ListPricingSnapshots(ctx context.Context, customerID string, since time.Time) ([]*PricingSnapshot, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string

	// SQLite settings (community tier)
	SQLitePath string

	// PostgreSQL settings (pro tier)
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string
	PostgresSSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
