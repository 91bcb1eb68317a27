package price

import (
	"context"
	"fmt"
	"net/http"
)

// FXRates fetches the USD→PEN exchange rate used by USD-denominated tickers.
type FXRates struct {
	BaseURL string
	HTTP    *http.Client
}

// NewFXRates returns an FXRates client against the open.er-api.com service.
func NewFXRates() *FXRates {
	return &FXRates{
		BaseURL: "https://open.er-api.com",
		HTTP:    http.DefaultClient,
	}
}

// USDPEN returns the current USD→PEN rate. The caller provides the
// deadline-bearing context; this fetch shares the owning provider's budget.
func (f *FXRates) USDPEN(ctx context.Context) (float64, error) {
	var body struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := getJSON(ctx, f.HTTP, f.BaseURL+"/v6/latest/USD", &body); err != nil {
		return 0, err
	}
	rate, ok := body.Rates["PEN"]
	if !ok || !validPrice(rate) {
		return 0, fmt.Errorf("%w: missing or bad PEN rate", ErrInvalidResponse)
	}
	return rate, nil
}
