package price

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bitcoinperu/comunidad/pkg/metrics"
)

// Aggregator tries providers in priority order and stops at the first
// success. There is no averaging or voting; the order of the provider
// slice encodes trust.
type Aggregator struct {
	providers []Provider
	logger    *zap.Logger
	now       func() time.Time
}

// NewAggregator creates an aggregator over the given providers, which are
// tried in the order given.
func NewAggregator(logger *zap.Logger, providers ...Provider) *Aggregator {
	return &Aggregator{
		providers: providers,
		logger:    logger,
		now:       time.Now,
	}
}

// Fetch returns the first provider's successful quote. If every provider
// fails it returns an AllProvidersFailedError carrying the last error only.
func (a *Aggregator) Fetch(ctx context.Context) (Quote, error) {
	var last error
	for _, p := range a.providers {
		v, err := p.FetchPricePEN(ctx)
		if err == nil && !validPrice(v) {
			err = fmt.Errorf("%w: non-positive or non-finite price %v", ErrInvalidResponse, v)
		}
		if err != nil {
			metrics.PriceProviderRequests.WithLabelValues(p.Name(), outcomeLabel(err)).Inc()
			a.logger.Warn("price provider failed",
				zap.String("provider", p.Name()),
				zap.Error(err))
			last = err
			continue
		}
		metrics.PriceProviderRequests.WithLabelValues(p.Name(), "ok").Inc()
		return Quote{
			PEN:       v,
			Provider:  p.Name(),
			Timestamp: a.now().UnixMilli(),
		}, nil
	}
	return Quote{}, &AllProvidersFailedError{Providers: len(a.providers), Last: last}
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrInvalidResponse):
		return "invalid"
	default:
		return "error"
	}
}
