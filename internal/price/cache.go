package price

import (
	"sync"
	"time"
)

// ReadState classifies a cache read by the age of the stored quote.
type ReadState int

const (
	// Miss means no quote is stored, or the stored quote is past the
	// stale window and must not be served.
	Miss ReadState = iota
	// FreshHit means the quote is within the fresh window and is served
	// without consulting providers.
	FreshHit
	// StaleHit means the quote is past the fresh window but within the
	// stale window; it may be served only as a last-resort fallback.
	StaleHit
)

func (s ReadState) String() string {
	switch s {
	case FreshHit:
		return "fresh"
	case StaleHit:
		return "stale"
	default:
		return "miss"
	}
}

// Cache is the single process-wide slot holding the last successful quote.
// The mutex guards memory access only; there is no single-flight dedup, so
// concurrent misses may each trigger a refresh and overwrite the slot.
// Last writer wins, which is acceptable for advisory display data.
type Cache struct {
	mu       sync.RWMutex
	quote    Quote
	hasQuote bool
	cachedAt time.Time

	freshTTL time.Duration
	staleTTL time.Duration
	now      func() time.Time
}

// NewCache creates an empty cache with the given serving windows.
func NewCache(freshTTL, staleTTL time.Duration) *Cache {
	return &Cache{
		freshTTL: freshTTL,
		staleTTL: staleTTL,
		now:      time.Now,
	}
}

// Read returns the stored quote and its state by age.
func (c *Cache) Read() (Quote, ReadState) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.hasQuote {
		return Quote{}, Miss
	}
	age := c.now().Sub(c.cachedAt)
	switch {
	case age < c.freshTTL:
		return c.quote, FreshHit
	case age < c.staleTTL:
		return c.quote, StaleHit
	default:
		return Quote{}, Miss
	}
}

// Write replaces the slot with q and restarts both windows.
func (c *Cache) Write(q Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.quote = q
	c.hasQuote = true
	c.cachedAt = c.now()
}
