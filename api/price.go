package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bitcoinperu/comunidad/internal/price"
)

// getBitcoinPrice serves the aggregated/cached BTC price in PEN.
//
// 200 {"bitcoin": {"pen", "provider", "timestamp"}} on a fresh quote,
// the same plus "stale": true when falling back to the stale window,
// 503 {"error", "details"} when no provider and no cache can serve.
func (s *Server) getBitcoinPrice(c *gin.Context) {
	quote, stale, err := s.prices.GetPrice(c.Request.Context())
	if err != nil {
		details := err.Error()
		var allFailed *price.AllProvidersFailedError
		if errors.As(err, &allFailed) && allFailed.Last != nil {
			details = allFailed.Last.Error()
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "bitcoin price unavailable",
			"details": details,
		})
		return
	}

	body := gin.H{"bitcoin": quote}
	if stale {
		body["stale"] = true
	}
	c.JSON(http.StatusOK, body)
}
