package naturalearth

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/orbis-globe/data-engine/internal/domain"
)

// countryFetcher is the interface CachedClient decorates.
type countryFetcher interface {
	FetchCountries(ctx context.Context) ([]domain.GeoFeature, error)
}

// CachedClient wraps a boundary client and reuses the last successful
// result for ttl. The boundary file changes a few times a year, so scheduled
// refreshes need not download it every tick.
type CachedClient struct {
	inner countryFetcher
	ttl   time.Duration
	clock clockwork.Clock

	mu        sync.Mutex
	features  []domain.GeoFeature
	fetchedAt time.Time
}

// NewCachedClient creates a cache decorator around inner.
func NewCachedClient(inner countryFetcher, ttl time.Duration, clock clockwork.Clock) *CachedClient {
	return &CachedClient{inner: inner, ttl: ttl, clock: clock}
}

// FetchCountries returns the cached features while fresh and fetches
// otherwise. Errors are never cached, and an expired entry is not served
// when the refetch fails.
func (c *CachedClient) FetchCountries(ctx context.Context) ([]domain.GeoFeature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.features != nil && c.clock.Since(c.fetchedAt) < c.ttl {
		return c.features, nil
	}

	features, err := c.inner.FetchCountries(ctx)
	if err != nil {
		return nil, err
	}
	// Only cache non-empty results so a bad download is retried next run.
	if len(features) > 0 {
		c.features = features
		c.fetchedAt = c.clock.Now()
	}
	return features, nil
}
