package naturalearth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbis-globe/data-engine/internal/domain"
)

type countingFetcher struct {
	calls    int
	features []domain.GeoFeature
	err      error
}

func (m *countingFetcher) FetchCountries(context.Context) ([]domain.GeoFeature, error) {
	m.calls++
	return m.features, m.err
}

func TestCachedClient_HitWithinTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &countingFetcher{features: []domain.GeoFeature{{Name: "Chile", ISO2: "CL", ISO3: "CHL"}}}
	cached := NewCachedClient(inner, time.Hour, clock)

	f1, err := cached.FetchCountries(context.Background())
	require.NoError(t, err)
	clock.Advance(59 * time.Minute)
	f2, err := cached.FetchCountries(context.Background())
	require.NoError(t, err)

	assert.Equal(t, f1, f2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedClient_ExpiresAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &countingFetcher{features: []domain.GeoFeature{{Name: "Chile"}}}
	cached := NewCachedClient(inner, time.Hour, clock)

	_, err := cached.FetchCountries(context.Background())
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = cached.FetchCountries(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedClient_ErrorsNotCached(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &countingFetcher{err: errors.New("upstream status 503")}
	cached := NewCachedClient(inner, time.Hour, clock)

	_, err := cached.FetchCountries(context.Background())
	require.Error(t, err)

	inner.err = nil
	inner.features = []domain.GeoFeature{{Name: "Chile"}}
	features, err := cached.FetchCountries(context.Background())
	require.NoError(t, err)
	assert.Len(t, features, 1)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedClient_ExpiredEntryNotServedOnError(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &countingFetcher{features: []domain.GeoFeature{{Name: "Chile"}}}
	cached := NewCachedClient(inner, time.Minute, clock)

	_, err := cached.FetchCountries(context.Background())
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	inner.err = errors.New("timeout")
	_, err = cached.FetchCountries(context.Background())
	require.Error(t, err)
}
