package service

import (
	"sync"
	"time"

	"takt/internal/core/forecast"
)

// cacheKey is a structured (line, date) key; never a concatenated string,
// so invalidation is exact instead of wildcard deletion
type cacheKey struct {
	LineID string
	Date   string
}

type cacheEntry struct {
	f         forecast.Forecast
	expiresAt time.Time
}

// forecastCache is the short-TTL memo in front of the calculator
// duplicate computation under concurrency is acceptable; values computed
// from the same snapshot are identical, so last writer wins is fine
type forecastCache struct {
	mu sync.RWMutex
	m  map[cacheKey]cacheEntry
}

func newForecastCache() *forecastCache {
	return &forecastCache{m: make(map[cacheKey]cacheEntry)}
}

func (c *forecastCache) get(k cacheKey, now time.Time) (forecast.Forecast, bool) {
	c.mu.RLock()
	e, ok := c.m[k]
	c.mu.RUnlock()
	if !ok || now.After(e.expiresAt) {
		return forecast.Forecast{}, false
	}
	return e.f, true
}

func (c *forecastCache) put(k cacheKey, f forecast.Forecast, expiresAt time.Time) {
	c.mu.Lock()
	c.m[k] = cacheEntry{f: f, expiresAt: expiresAt}
	c.mu.Unlock()
}

func (c *forecastCache) invalidate(k cacheKey) {
	c.mu.Lock()
	delete(c.m, k)
	c.mu.Unlock()
}
