package domain

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations. Profile snapshots are
// cached for the lifetime of a session; counters back the per-customer tool
// rate limiter. Two-phase setups layer a local LRU (L1) over Redis (L2).
type Cache interface {
	// Get retrieves a value from cache.
	// Returns nil, nil if key not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, key string) error

	// GetProfile retrieves a cached profile snapshot.
	GetProfile(ctx context.Context, customerID string) (*CustomerProfile, error)

	// SetProfile caches an immutable profile snapshot for a session.
	SetProfile(ctx context.Context, profile *CustomerProfile, ttl time.Duration) error

	// IncrementCounter atomically increments a counter and returns its new
	// value. Used for per-customer invocation rate limiting.
	IncrementCounter(ctx context.Context, key string, window time.Duration) (int64, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// ProfileCacheKey is the cache key under which a customer's session
// snapshot is stored.
func ProfileCacheKey(customerID string) string {
	return "profile:" + customerID
}

// CacheConfig holds configuration for cache initialization.
type CacheConfig struct {
	// Type is the cache type: "memory" or "redis"
	Type string

	// Local LRU cache settings (community tier)
	LocalMaxSize int
	LocalTTL     time.Duration

	// Redis settings (pro tier)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Two-phase settings
	EnableTwoPhase bool // If true, check local first, then Redis

	// ProfileTTL bounds how long a session profile snapshot stays cached.
	ProfileTTL time.Duration
}
