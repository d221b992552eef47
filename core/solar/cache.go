package solar

import (
	"context"
	"sync"
	"time"
)

type cacheKey struct {
	date      string
	fracMilli int64
	area      float64
	eff       float64
	mppt      float64
}

// CachedOracle memoizes estimates keyed by (date, interval, panel
// config). One instance is owned by a single simulation run; it is not a
// process-wide singleton, so concurrent independent runs stay isolated.
type CachedOracle struct {
	inner Oracle

	mu      sync.Mutex
	entries map[cacheKey]float64
	hits    int
	misses  int
}

// NewCachedOracle wraps the inner oracle with a per-run cache.
func NewCachedOracle(inner Oracle) *CachedOracle {
	return &CachedOracle{inner: inner, entries: make(map[cacheKey]float64)}
}

// EstimateProduction implements Oracle. Errors are not cached so a
// transient failure can succeed on retry.
func (c *CachedOracle) EstimateProduction(ctx context.Context, date time.Time, dayFraction float64, panel PanelConfig) (float64, error) {
	key := cacheKey{
		date:      date.Format("2006-01-02"),
		fracMilli: int64(dayFraction * 1000),
		area:      panel.AreaM2,
		eff:       panel.Efficiency,
		mppt:      panel.MPPT,
	}
	c.mu.Lock()
	if v, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		return v, nil
	}
	c.misses++
	c.mu.Unlock()

	v, err := c.inner.EstimateProduction(ctx, date, dayFraction, panel)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	c.entries[key] = v
	c.mu.Unlock()
	return v, nil
}

// Stats returns cache hit and miss counts.
func (c *CachedOracle) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
