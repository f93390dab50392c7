package metrics

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/simaogato/fundmetrics-backend/internal/domain"
	"github.com/simaogato/fundmetrics-backend/internal/logger"
	"github.com/simaogato/fundmetrics-backend/internal/telemetry"
)

// Loader fetches the fund to compute on a cache miss
type Loader func(ctx context.Context) (*domain.Fund, error)

// Service memoizes Engine results per (fund, cutoff).
//
// Invalidation is coarse: any write anywhere in the owning collection must call
// Invalidate, which drops every entry. An epoch counter is folded into keys so a
// computation racing with Invalidate can never be served after it.
type Service struct {
	engine *Engine
	cache  Cache
	logger *logger.Logger

	epoch atomic.Uint64
	group singleflight.Group
}

// NewService creates a new memoizing metrics Service
func NewService(engine *Engine, cache Cache, log *logger.Logger) *Service {
	return &Service{
		engine: engine,
		cache:  cache,
		logger: log.Named("metrics"),
	}
}

// Engine returns the underlying pure engine
func (s *Service) Engine() *Engine { return s.engine }

// Metrics returns the cached record for (fundID, cutoff), computing it from load on a miss.
// Concurrent misses for the same key share one computation. Cache failures are logged
// and degrade to recomputation; only load errors are returned.
//
// The key, epoch included, is fixed before load runs, so a record loaded before an
// Invalidate is only ever stored under the superseded epoch.
func (s *Service) Metrics(ctx context.Context, fundID uuid.UUID, cutoff domain.Date, load Loader) (domain.MetricsRecord, error) {
	key := s.key(fundID, cutoff)
	if rec, ok := s.lookup(ctx, key); ok {
		return rec, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		fund, err := load(ctx)
		if err != nil {
			return nil, err
		}
		rec := s.compute(fund, cutoff)
		if err := s.cache.Set(ctx, key, rec); err != nil {
			s.logger.Warnw("Metrics cache write failed", "key", key, "error", err)
		}
		return rec, nil
	})
	if err != nil {
		return domain.MetricsRecord{}, err
	}
	return v.(domain.MetricsRecord), nil
}

// Compute returns the record of a fund already in hand. It serves a cached record when
// one exists but never stores its own result: fund may predate the latest Invalidate.
func (s *Service) Compute(ctx context.Context, fund *domain.Fund, cutoff domain.Date) domain.MetricsRecord {
	if fund == nil {
		return s.engine.CalculateMetrics(nil, cutoff)
	}
	if rec, ok := s.lookup(ctx, s.key(fund.ID, cutoff)); ok {
		return rec
	}
	return s.compute(fund, cutoff)
}

func (s *Service) lookup(ctx context.Context, key string) (domain.MetricsRecord, bool) {
	rec, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		telemetry.CacheRequestsTotal.WithLabelValues("error").Inc()
		s.logger.Warnw("Metrics cache read failed", "key", key, "error", err)
		return domain.MetricsRecord{}, false
	case ok:
		telemetry.CacheRequestsTotal.WithLabelValues("hit").Inc()
		return rec, true
	default:
		telemetry.CacheRequestsTotal.WithLabelValues("miss").Inc()
		return domain.MetricsRecord{}, false
	}
}

// Invalidate drops every cached record
func (s *Service) Invalidate(ctx context.Context) error {
	epoch := s.epoch.Add(1)
	telemetry.CacheInvalidationsTotal.Inc()
	s.logger.Debugw("Metrics cache invalidated", "epoch", epoch)
	return s.cache.Clear(ctx)
}

func (s *Service) compute(fund *domain.Fund, cutoff domain.Date) domain.MetricsRecord {
	rec := s.engine.CalculateMetrics(fund, cutoff)
	outcome := "undefined"
	if rec.IRR.Valid {
		outcome = "defined"
	}
	telemetry.RecordsComputedTotal.WithLabelValues(outcome).Inc()
	return rec
}

func (s *Service) key(fundID uuid.UUID, cutoff domain.Date) string {
	return strconv.FormatUint(s.epoch.Load(), 10) + ":" + CacheKey(fundID, cutoff)
}
