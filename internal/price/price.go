// Package price implements the BTC/PEN price pipeline: provider adapters,
// a first-success aggregator, and a single-slot cache with fresh and stale
// serving windows.
package price

import (
	"errors"
	"fmt"
)

// Quote is a single normalized BTC price observation in PEN.
type Quote struct {
	PEN       float64 `json:"pen"`
	Provider  string  `json:"provider"`
	Timestamp int64   `json:"timestamp"` // epoch millis
}

// ErrTimeout reports that a provider call exceeded its time bound.
var ErrTimeout = errors.New("provider timed out")

// ErrInvalidResponse reports a malformed, missing, or non-positive value
// in a provider's response.
var ErrInvalidResponse = errors.New("invalid provider response")

// AllProvidersFailedError is returned by the aggregator when every provider
// in the chain failed. It carries only the last error encountered; earlier
// errors are logged but not retained.
type AllProvidersFailedError struct {
	Providers int
	Last      error
}

func (e *AllProvidersFailedError) Error() string {
	return fmt.Sprintf("all %d price providers failed, last error: %v", e.Providers, e.Last)
}

func (e *AllProvidersFailedError) Unwrap() error { return e.Last }
