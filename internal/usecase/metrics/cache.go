package metrics

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/simaogato/fundmetrics-backend/internal/domain"
)

// noCutoffKey is the cache key segment used when no cutoff applies
const noCutoffKey = "none"

// Cache stores computed metrics records by key.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the record stored under key; ok is false on a miss
	Get(ctx context.Context, key string) (rec domain.MetricsRecord, ok bool, err error)

	// Set stores rec under key
	Set(ctx context.Context, key string, rec domain.MetricsRecord) error

	// Clear drops every entry
	Clear(ctx context.Context) error
}

// CacheKey builds the memoization key of a (fund, cutoff) pair.
func CacheKey(fundID uuid.UUID, cutoff domain.Date) string {
	c := noCutoffKey
	if !cutoff.IsZero() {
		c = cutoff.String()
	}
	return fundID.String() + ":" + c
}

// MemoryCache is a process-local Cache backed by a map
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]domain.MetricsRecord
}

// NewMemoryCache creates an empty MemoryCache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]domain.MetricsRecord)}
}

// Get implements Cache
func (c *MemoryCache) Get(_ context.Context, key string) (domain.MetricsRecord, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.entries[key]
	return rec, ok, nil
}

// Set implements Cache
func (c *MemoryCache) Set(_ context.Context, key string, rec domain.MetricsRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = rec
	return nil
}

// Clear implements Cache
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]domain.MetricsRecord)
	return nil
}

// Len returns the number of cached records
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
