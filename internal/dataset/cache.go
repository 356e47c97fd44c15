package dataset

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/skyalmanac/skyalmanac/pkg/metrics"
)

// Cache lazily loads and retains one Table per location for the process
// lifetime. Each key carries a one-time initialization guard so concurrent
// cold starts for the same location perform a single disk load; once loaded,
// tables are immutable and safe to share.
type Cache struct {
	store   *Store
	logger  *zap.SugaredLogger
	metrics *metrics.Collector

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	once  sync.Once
	table *Table
	err   error
}

// NewCache creates a cache backed by the given store. The metrics collector
// may be nil.
func NewCache(store *Store, logger *zap.SugaredLogger, collector *metrics.Collector) *Cache {
	return &Cache{
		store:   store,
		logger:  logger,
		metrics: collector,
		entries: make(map[string]*cacheEntry),
	}
}

// GetOrLoad returns the cached table for a location, loading it from the
// store on first access. Subsequent calls return the same instance without
// touching storage. A failed load is not retained; the next call retries.
func (c *Cache) GetOrLoad(location string) (*Table, error) {
	c.mu.Lock()
	e, ok := c.entries[location]
	if !ok {
		e = &cacheEntry{}
		c.entries[location] = e
	}
	c.mu.Unlock()

	hit := true
	e.once.Do(func() {
		hit = false
		start := time.Now()
		e.table, e.err = c.store.Load(location)

		if c.metrics != nil {
			c.metrics.DatasetCacheMisses.Inc()
			c.metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
			if e.err == nil {
				c.metrics.DatasetRecordsLoaded.WithLabelValues(location).Set(float64(e.table.Len()))
			}
		}
		if e.err != nil {
			c.logger.Warnf("dataset load failed for %s: %v", location, e.err)
			// Drop the failed entry so a later call can retry the load
			c.mu.Lock()
			delete(c.entries, location)
			c.mu.Unlock()
		}
	})

	if hit && c.metrics != nil {
		c.metrics.DatasetCacheHits.Inc()
	}
	return e.table, e.err
}

// Warm pre-loads the given locations, for callers that need low first-call
// latency. Load failures are logged and skipped.
func (c *Cache) Warm(locations []string) {
	for _, loc := range locations {
		if _, err := c.GetOrLoad(loc); err != nil {
			c.logger.Warnf("pre-warm skipped %s: %v", loc, err)
		}
	}
}
