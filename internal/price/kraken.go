package price

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// Kraken fetches the XBT/USD last price and converts it to PEN through
// an FX rate, mirroring the Coinbase adapter's concurrent pattern.
type Kraken struct {
	BaseURL string
	FX      *FXRates
	Timeout time.Duration
	HTTP    *http.Client
}

// NewKraken creates a Kraken provider against the public production API.
func NewKraken(fx *FXRates, timeout time.Duration) *Kraken {
	return &Kraken{
		BaseURL: "https://api.kraken.com",
		FX:      fx,
		Timeout: timeout,
		HTTP:    http.DefaultClient,
	}
}

func (k *Kraken) Name() string { return "Kraken" }

func (k *Kraken) FetchPricePEN(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, k.Timeout)
	defer cancel()

	var usd, rate float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// c is [<last trade price>, <lot volume>]
		var body struct {
			Result map[string]struct {
				C []string `json:"c"`
			} `json:"result"`
		}
		if err := getJSON(gctx, k.HTTP, k.BaseURL+"/0/public/Ticker?pair=XBTUSD", &body); err != nil {
			return err
		}
		for _, t := range body.Result {
			if len(t.C) == 0 {
				continue
			}
			v, err := strconv.ParseFloat(t.C[0], 64)
			if err != nil || !validPrice(v) {
				return fmt.Errorf("%w: bad last trade price %q", ErrInvalidResponse, t.C[0])
			}
			usd = v
			return nil
		}
		return fmt.Errorf("%w: no ticker data", ErrInvalidResponse)
	})
	g.Go(func() error {
		v, err := k.FX.USDPEN(gctx)
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
