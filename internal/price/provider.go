package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"
)

// Provider fetches the current BTC price denominated in PEN.
// Implementations must return a positive finite value or an error;
// they perform no retries of their own.
type Provider interface {
	Name() string
	FetchPricePEN(ctx context.Context) (float64, error)
}

// DefaultTimeout bounds a single provider call, including any FX sub-fetch.
const DefaultTimeout = 5 * time.Second

func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrTimeout, url)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d from %s", ErrInvalidResponse, resp.StatusCode, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func validPrice(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// DefaultProviders returns the production provider chain in priority order.
// Order encodes trust: PEN-denominated sources first, then USD tickers
// converted through an FX rate.
func DefaultProviders(timeout time.Duration) []Provider {
	fx := NewFXRates()
	return []Provider{
		NewBuda(timeout),
		NewCoinGecko(timeout),
		NewCoinbase(fx, timeout),
		NewKraken(fx, timeout),
	}
}
