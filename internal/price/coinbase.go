package price

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// Coinbase fetches the BTC-USD spot price and converts it to PEN through
// an FX rate. The spot and FX fetches run concurrently; either failing
// fails the adapter.
type Coinbase struct {
	BaseURL string
	FX      *FXRates
	Timeout time.Duration
	HTTP    *http.Client
}

// NewCoinbase creates a Coinbase provider against the public production API.
func NewCoinbase(fx *FXRates, timeout time.Duration) *Coinbase {
	return &Coinbase{
		BaseURL: "https://api.coinbase.com",
		FX:      fx,
		Timeout: timeout,
		HTTP:    http.DefaultClient,
	}
}

func (c *Coinbase) Name() string { return "Coinbase" }

func (c *Coinbase) FetchPricePEN(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	var usd, rate float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var body struct {
			Data struct {
				Amount string `json:"amount"`
			} `json:"data"`
		}
		if err := getJSON(gctx, c.HTTP, c.BaseURL+"/v2/prices/BTC-USD/spot", &body); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(body.Data.Amount, 64)
		if err != nil || !validPrice(v) {
			return fmt.Errorf("%w: bad spot amount %q", ErrInvalidResponse, body.Data.Amount)
		}
		usd = v
		return nil
	})
	g.Go(func() error {
		v, err := c.FX.USDPEN(gctx)
		if err != nil {
			return err
		}
		rate = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	pen := usd * rate
	if !validPrice(pen) {
		return 0, fmt.Errorf("%w: bad converted price %v", ErrInvalidResponse, pen)
	}
	return pen, nil
}
