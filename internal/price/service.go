package price

import (
	"context"

	"go.uber.org/zap"

	"github.com/bitcoinperu/comunidad/pkg/metrics"
)

// Service runs the full pipeline per request: cache check, aggregator
// refresh on a miss, stale fallback when every provider is down.
type Service struct {
	logger *zap.Logger
	cache  *Cache
	agg    *Aggregator
}

// NewService creates the price service around an explicit cache instance
// so tests can control the clock and windows.
func NewService(logger *zap.Logger, cache *Cache, agg *Aggregator) *Service {
	return &Service{
		logger: logger,
		cache:  cache,
		agg:    agg,
	}
}

// GetPrice returns the current BTC/PEN quote. The boolean reports whether
// the quote came from the stale fallback window. An error is returned only
// when no provider succeeded and no stale quote is available.
func (s *Service) GetPrice(ctx context.Context) (Quote, bool, error) {
	cached, state := s.cache.Read()
	metrics.PriceCacheReads.WithLabelValues(state.String()).Inc()
	if state == FreshHit {
		return cached, false, nil
	}

	quote, err := s.agg.Fetch(ctx)
	if err == nil {
		s.cache.Write(quote)
		return quote, false, nil
	}

	if state == StaleHit {
		metrics.PriceStaleServed.Inc()
		s.logger.Warn("serving stale bitcoin price", zap.Error(err))
		return cached, true, nil
	}
	return Quote{}, false, err
}
