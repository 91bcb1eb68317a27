package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PriceProviderRequests counts provider fetch attempts by provider and outcome
// (ok, timeout, invalid, error).
var PriceProviderRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "comunidad_price_provider_requests_total",
		Help: "Total BTC/PEN provider fetch attempts by provider and outcome",
	},
	[]string{"provider", "outcome"},
)

// PriceCacheReads counts cache slot reads by state (fresh, stale, miss).
var PriceCacheReads = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "comunidad_price_cache_reads_total",
		Help: "Total price cache reads by state",
	},
	[]string{"state"},
)

// PriceStaleServed counts responses served from the stale fallback window.
var PriceStaleServed = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "comunidad_price_stale_served_total",
		Help: "Total price responses served from the stale cache fallback",
	},
)

// SessionsCreated counts successful logins.
var SessionsCreated = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "comunidad_sessions_created_total",
		Help: "Total sessions created via login",
	},
)

// DB connection pool gauges, sampled periodically from main.
var (
	DBOpenConns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "comunidad_db_open_connections",
			Help: "Number of open connections in the DB pool",
		},
	)

	DBIdleConns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "comunidad_db_idle_connections",
			Help: "Number of idle connections in the DB pool",
		},
	)
)

func init() {
	prometheus.MustRegister(PriceProviderRequests, PriceCacheReads, PriceStaleServed)
	prometheus.MustRegister(SessionsCreated)
	prometheus.MustRegister(DBOpenConns, DBIdleConns)
}
