package metrics

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/fundmetrics-backend/internal/domain"
	"github.com/simaogato/fundmetrics-backend/internal/logger"
)

// failingCache simulates a cache backend that is down
type failingCache struct{}

func (failingCache) Get(context.Context, string) (domain.MetricsRecord, bool, error) {
	return domain.MetricsRecord{}, false, errors.New("connection refused")
}

func (failingCache) Set(context.Context, string, domain.MetricsRecord) error {
	return errors.New("connection refused")
}

func (failingCache) Clear(context.Context) error { return errors.New("connection refused") }

func countingLoader(fund *domain.Fund, calls *atomic.Int32) Loader {
	return func(context.Context) (*domain.Fund, error) {
		calls.Add(1)
		return fund, nil
	}
}

func TestCacheKey(t *testing.T) {
	id := uuid.MustParse("2f1d7a2e-4b9c-4c3e-9d57-0a4b8f3c1e22")

	assert.Equal(t, "2f1d7a2e-4b9c-4c3e-9d57-0a4b8f3c1e22:none", CacheKey(id, domain.Date{}))
	assert.Equal(t, "2f1d7a2e-4b9c-4c3e-9d57-0a4b8f3c1e22:2021-12-31", CacheKey(id, d("2021-12-31")))
}

func TestService_MemoizesPerFundAndCutoff(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	service := NewService(NewEngine(DefaultIRRConfig()), cache, logger.NewNop())
	fund := newFund(1000, []domain.CashFlow{contribution("2020-01-01", 500, true)}, valuation("2021-01-01", 600))

	var calls atomic.Int32
	load := countingLoader(fund, &calls)

	first, err := service.Metrics(ctx, fund.ID, domain.Date{}, load)
	require.NoError(t, err)
	second, err := service.Metrics(ctx, fund.ID, domain.Date{}, load)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, first, second)

	// A different cutoff is a different entry
	_, err = service.Metrics(ctx, fund.ID, d("2020-06-30"), load)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 2, cache.Len())
}

func TestService_InvalidateDropsEverything(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	service := NewService(NewEngine(DefaultIRRConfig()), cache, logger.NewNop())
	fund := newFund(1000, []domain.CashFlow{contribution("2020-01-01", 500, true)})

	var calls atomic.Int32
	load := countingLoader(fund, &calls)

	_, err := service.Metrics(ctx, fund.ID, domain.Date{}, load)
	require.NoError(t, err)

	require.NoError(t, service.Invalidate(ctx))
	assert.Equal(t, 0, cache.Len())

	// Ledger changed after invalidation: the new record reflects it
	fund.CashFlows = append(fund.CashFlows, contribution("2021-01-01", 100, true))
	rec, err := service.Metrics(ctx, fund.ID, domain.Date{}, load)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.True(t, rec.CalledCapital.Equal(dec(600)))
}

func TestService_LoadErrorIsReturned(t *testing.T) {
	service := NewService(NewEngine(DefaultIRRConfig()), NewMemoryCache(), logger.NewNop())

	_, err := service.Metrics(context.Background(), uuid.New(), domain.Date{}, func(context.Context) (*domain.Fund, error) {
		return nil, domain.ErrFundNotFound
	})

	assert.ErrorIs(t, err, domain.ErrFundNotFound)
}

func TestService_CacheFailureDegradesToCompute(t *testing.T) {
	service := NewService(NewEngine(DefaultIRRConfig()), failingCache{}, logger.NewNop())
	fund := newFund(1000, []domain.CashFlow{contribution("2020-01-01", 500, true)})

	rec, err := service.Metrics(context.Background(), fund.ID, domain.Date{}, countingLoader(fund, new(atomic.Int32)))

	require.NoError(t, err)
	assert.True(t, rec.CalledCapital.Equal(dec(500)))
	assert.Error(t, service.Invalidate(context.Background()))
}

func TestService_ConcurrentCallers(t *testing.T) {
	service := NewService(NewEngine(DefaultIRRConfig()), NewMemoryCache(), logger.NewNop())
	fund := newFund(1000, []domain.CashFlow{contribution("2020-01-01", 500, true)}, valuation("2021-01-01", 700))
	want := service.Engine().CalculateMetrics(fund, domain.Date{})

	var wg sync.WaitGroup
	results := make([]domain.MetricsRecord, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = service.Compute(context.Background(), fund, domain.Date{})
		}(i)
	}
	wg.Wait()

	for _, rec := range results {
		assert.True(t, want.MOIC.Decimal.Equal(rec.MOIC.Decimal))
		assert.True(t, want.NAV.Equal(rec.NAV))
	}
}

func TestService_ComputeDoesNotCacheStaleLedger(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	service := NewService(NewEngine(DefaultIRRConfig()), cache, logger.NewNop())

	// Batch loaded the fund, then a write landed and invalidated before it computed
	stale := newFund(1000, []domain.CashFlow{contribution("2020-01-01", 500, true)})
	fresh := *stale
	fresh.CashFlows = append([]domain.CashFlow{}, stale.CashFlows...)
	fresh.CashFlows = append(fresh.CashFlows, contribution("2021-01-01", 300, true))
	require.NoError(t, service.Invalidate(ctx))

	batched := service.Compute(ctx, stale, domain.Date{})
	assert.True(t, batched.CalledCapital.Equal(dec(500)))
	assert.Zero(t, cache.Len())

	rec, err := service.Metrics(ctx, fresh.ID, domain.Date{}, countingLoader(&fresh, new(atomic.Int32)))
	require.NoError(t, err)
	assert.True(t, rec.CalledCapital.Equal(dec(800)))
}

func TestService_ComputeServesCachedRecord(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewEngine(DefaultIRRConfig()), NewMemoryCache(), logger.NewNop())
	fund := newFund(1000, []domain.CashFlow{contribution("2020-01-01", 500, true)})

	cached, err := service.Metrics(ctx, fund.ID, domain.Date{}, countingLoader(fund, new(atomic.Int32)))
	require.NoError(t, err)

	// Ledger edited without Invalidate: Compute still answers from the cache
	other := *fund
	other.CashFlows = nil
	assert.Equal(t, cached, service.Compute(ctx, &other, domain.Date{}))
}

func TestService_ComputeNilFund(t *testing.T) {
	service := NewService(NewEngine(DefaultIRRConfig()), NewMemoryCache(), logger.NewNop())

	var rec domain.MetricsRecord
	require.NotPanics(t, func() {
		rec = service.Compute(context.Background(), nil, d("2021-12-31"))
	})
	assert.Equal(t, d("2021-12-31"), rec.AsOf)
	assert.False(t, rec.IRR.Valid)
}
