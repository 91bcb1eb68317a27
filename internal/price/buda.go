package price

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Buda fetches the last traded price from Buda's BTC-PEN market.
type Buda struct {
	BaseURL string
	Timeout time.Duration
	HTTP    *http.Client
}

// NewBuda creates a Buda provider against the public production API.
func NewBuda(timeout time.Duration) *Buda {
	return &Buda{
		BaseURL: "https://www.buda.com",
		Timeout: timeout,
		HTTP:    http.DefaultClient,
	}
}

func (b *Buda) Name() string { return "Buda" }

func (b *Buda) FetchPricePEN(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	// last_price comes as ["183000.0", "PEN"]
	var body struct {
		Ticker struct {
			LastPrice []string `json:"last_price"`
		} `json:"ticker"`
	}
	if err := getJSON(ctx, b.HTTP, b.BaseURL+"/api/v2/markets/btc-pen/ticker", &body); err != nil {
		return 0, err
	}
	if len(body.Ticker.LastPrice) == 0 {
		return 0, fmt.Errorf("%w: missing last_price", ErrInvalidResponse)
	}
	v, err := strconv.ParseFloat(body.Ticker.LastPrice[0], 64)
	if err != nil || !validPrice(v) {
		return 0, fmt.Errorf("%w: bad last_price %q", ErrInvalidResponse, body.Ticker.LastPrice[0])
	}
	return v, nil
}
