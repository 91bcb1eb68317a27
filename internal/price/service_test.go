package price

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testPipeline wires a service around stub providers and a controllable clock.
// There is deliberately no request dedup in the pipeline, so tests drive it
// sequentially.
type testPipeline struct {
	svc   *Service
	cache *Cache
	now   time.Time
}

func newTestPipeline(freshTTL, staleTTL time.Duration, providers ...Provider) *testPipeline {
	p := &testPipeline{now: time.Unix(1700000000, 0)}
	p.cache = NewCache(freshTTL, staleTTL)
	p.cache.now = func() time.Time { return p.now }
	agg := NewAggregator(zap.NewNop(), providers...)
	agg.now = func() time.Time { return p.now }
	p.svc = NewService(zap.NewNop(), p.cache, agg)
	return p
}

func (p *testPipeline) advance(d time.Duration) { p.now = p.now.Add(d) }

func TestServiceFreshHitSkipsProviders(t *testing.T) {
	provider := &stubProvider{name: "Kraken", value: 150000}
	p := newTestPipeline(5*time.Minute, 30*time.Minute, provider)

	first, stale, err := p.svc.GetPrice(context.Background())
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Equal(t, 1, provider.calls)

	// Second call 10s later replays the cached quote without any outbound call.
	p.advance(10 * time.Second)
	second, stale, err := p.svc.GetPrice(context.Background())
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.calls, "fresh hit must not invoke providers")
}

func TestServiceMissFallsThroughToSecondProvider(t *testing.T) {
	a := &stubProvider{name: "A", err: fmt.Errorf("a: %w", ErrTimeout)}
	b := &stubProvider{name: "B", value: 185320.50}
	p := newTestPipeline(5*time.Minute, 30*time.Minute, a, b)

	quote, stale, err := p.svc.GetPrice(context.Background())
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Equal(t, 185320.50, quote.PEN)
	assert.Equal(t, "B", quote.Provider)
	assert.Equal(t, p.now.UnixMilli(), quote.Timestamp)

	// The successful quote is now cached.
	cached, state := p.cache.Read()
	assert.Equal(t, FreshHit, state)
	assert.Equal(t, quote, cached)
}

func TestServiceStaleFallbackWhenProvidersDown(t *testing.T) {
	provider := &stubProvider{name: "Buda", value: 150000}
	p := newTestPipeline(5*time.Minute, 30*time.Minute, provider)

	first, _, err := p.svc.GetPrice(context.Background())
	require.NoError(t, err)

	// Past the fresh window but inside the stale window, with the provider
	// now failing, the previous value is served flagged stale.
	provider.value = 0
	provider.err = fmt.Errorf("down: %w", ErrTimeout)
	p.advance(10 * time.Minute)

	quote, stale, err := p.svc.GetPrice(context.Background())
	require.NoError(t, err)
	assert.True(t, stale)
	assert.Equal(t, first, quote, "stale fallback must serve the cached value unchanged")
}

func TestServiceErrorPastStaleWindow(t *testing.T) {
	provider := &stubProvider{name: "Buda", value: 150000}
	p := newTestPipeline(5*time.Minute, 30*time.Minute, provider)

	_, _, err := p.svc.GetPrice(context.Background())
	require.NoError(t, err)

	// Clock jumps past both TTLs and every provider fails.
	provider.err = fmt.Errorf("down: %w", ErrTimeout)
	p.advance(1000000 * time.Millisecond)

	_, stale, err := p.svc.GetPrice(context.Background())
	require.Error(t, err)
	assert.False(t, stale)

	var allFailed *AllProvidersFailedError
	require.ErrorAs(t, err, &allFailed)
	assert.ErrorIs(t, allFailed.Last, ErrTimeout)
}

func TestServiceEmptyCacheAllFailed(t *testing.T) {
	a := &stubProvider{name: "A", err: fmt.Errorf("a: %w", ErrTimeout)}
	p := newTestPipeline(5*time.Minute, 30*time.Minute, a)

	_, _, err := p.svc.GetPrice(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)

	_, state := p.cache.Read()
	assert.Equal(t, Miss, state, "failures must never populate the cache")
}

func TestServiceRefreshAfterStaleSuccessResetsCache(t *testing.T) {
	provider := &stubProvider{name: "Buda", value: 150000}
	p := newTestPipeline(5*time.Minute, 30*time.Minute, provider)

	_, _, err := p.svc.GetPrice(context.Background())
	require.NoError(t, err)

	// In the stale window but with the provider healthy again, a refresh
	// wins over the stale fallback.
	provider.value = 160000
	p.advance(10 * time.Minute)

	quote, stale, err := p.svc.GetPrice(context.Background())
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Equal(t, 160000.0, quote.PEN)
}
