// Package profile resolves customer identifiers to normalized profile
// records and manages the per-session snapshot cache.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openbank-labs/reloan/internal/domain"
)

// Service loads profiles from the repository with a session snapshot cache
// in front. The snapshot is immutable for its TTL: callers must not mutate
// the returned profile.
type Service struct {
	repo  domain.Repository
	cache domain.Cache
	ttl   time.Duration
}

// NewService creates a profile service. A zero ttl disables caching.
func NewService(repo domain.Repository, cache domain.Cache, ttl time.Duration) *Service {
	return &Service{repo: repo, cache: cache, ttl: ttl}
}

// Load resolves a customer ID to its profile snapshot.
func (s *Service) Load(ctx context.Context, customerID string) (*domain.CustomerProfile, error) {
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer id is required", domain.ErrMissingData)
	}

	if s.cache != nil && s.ttl > 0 {
		cached, err := s.cache.GetProfile(ctx, customerID)
		if err != nil {
			slog.Warn("profile cache read failed", "customer_id", customerID, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	p, err := s.repo.GetCustomer(ctx, customerID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataSource, err)
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.SetProfile(ctx, p, s.ttl); err != nil {
			slog.Warn("profile cache write failed", "customer_id", customerID, "error", err)
		}
	}

	return p, nil
}

// Invalidate drops the cached snapshot, forcing the next Load to hit the
// repository. Called after re-imports.
func (s *Service) Invalidate(ctx context.Context, customerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, domain.ProfileCacheKey(customerID)); err != nil {
		slog.Warn("profile cache invalidation failed", "customer_id", customerID, "error", err)
	}
}
