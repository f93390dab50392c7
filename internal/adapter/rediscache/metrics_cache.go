package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/simaogato/fundmetrics-backend/internal/domain"
	"github.com/simaogato/fundmetrics-backend/internal/usecase/metrics"
)

const (
	defaultPrefix = "fundmetrics:metrics:"
	scanBatch     = 100
)

// MetricsCache stores metrics records in Redis as JSON under a key prefix.
// Entries expire after the configured TTL; Clear removes every key under the prefix.
type MetricsCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// Option configures a MetricsCache
type Option func(*MetricsCache)

// WithPrefix sets the key prefix
func WithPrefix(prefix string) Option {
	return func(c *MetricsCache) { c.prefix = prefix }
}

// WithTTL sets the entry lifetime; zero keeps entries until cleared
func WithTTL(ttl time.Duration) Option {
	return func(c *MetricsCache) { c.ttl = ttl }
}

// NewMetricsCache creates a new MetricsCache on client
func NewMetricsCache(client redis.UniversalClient, opts ...Option) *MetricsCache {
	c := &MetricsCache{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClient opens a client from a redis:// URL and pings it
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func (c *MetricsCache) fullKey(key string) string { return c.prefix + key }

// Get implements metrics.Cache
func (c *MetricsCache) Get(ctx context.Context, key string) (domain.MetricsRecord, bool, error) {
	raw, err := c.client.Get(ctx, c.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.MetricsRecord{}, false, nil
	}
	if err != nil {
		return domain.MetricsRecord{}, false, fmt.Errorf("failed to get metrics %q: %w", key, err)
	}

	var rec domain.MetricsRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.MetricsRecord{}, false, fmt.Errorf("failed to decode metrics %q: %w", key, err)
	}
	return rec, true, nil
}

// Set implements metrics.Cache
func (c *MetricsCache) Set(ctx context.Context, key string, rec domain.MetricsRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode metrics %q: %w", key, err)
	}
	if err := c.client.Set(ctx, c.fullKey(key), string(data), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set metrics %q: %w", key, err)
	}
	return nil
}

// Clear implements metrics.Cache
func (c *MetricsCache) Clear(ctx context.Context) error {
	var cursor uint64
	match := c.prefix + "*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("failed to scan metrics keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete metrics keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

var _ metrics.Cache = (*MetricsCache)(nil)
