package price

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// CoinGecko fetches the PEN-denominated spot price from the simple-price API.
type CoinGecko struct {
	BaseURL string
	Timeout time.Duration
	HTTP    *http.Client
}

// NewCoinGecko creates a CoinGecko provider against the public production API.
func NewCoinGecko(timeout time.Duration) *CoinGecko {
	return &CoinGecko{
		BaseURL: "https://api.coingecko.com",
		Timeout: timeout,
		HTTP:    http.DefaultClient,
	}
}

func (c *CoinGecko) Name() string { return "CoinGecko" }

func (c *CoinGecko) FetchPricePEN(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	var body struct {
		Bitcoin struct {
			PEN float64 `json:"pen"`
		} `json:"bitcoin"`
	}
	url := c.BaseURL + "/api/v3/simple/price?ids=bitcoin&vs_currencies=pen"
	if err := getJSON(ctx, c.HTTP, url, &body); err != nil {
		return 0, err
	}
	if !validPrice(body.Bitcoin.PEN) {
		return 0, fmt.Errorf("%w: bad pen price %v", ErrInvalidResponse, body.Bitcoin.PEN)
	}
	return body.Bitcoin.PEN, nil
}
