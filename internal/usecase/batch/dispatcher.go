package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/simaogato/fundmetrics-backend/internal/domain"
	"github.com/simaogato/fundmetrics-backend/internal/logger"
	"github.com/simaogato/fundmetrics-backend/internal/telemetry"
)

var (
	ErrNotStarted       = errors.New("batch: dispatcher not started")
	ErrAlreadyStarted   = errors.New("batch: dispatcher already started")
	ErrWorkerInit       = errors.New("batch: worker failed to initialize")
	ErrRequestTimeout   = errors.New("batch: request timed out")
	ErrDispatcherClosed = errors.New("batch: dispatcher closed")
)

// ComputeFunc computes the metrics of one fund. It must be safe for concurrent use.
type ComputeFunc func(ctx context.Context, fund *domain.Fund, cutoff domain.Date) domain.MetricsRecord

// InitFunc prepares the worker before it accepts batches
type InitFunc func(ctx context.Context) error

// Config holds dispatcher limits
type Config struct {
	RequestTimeout time.Duration // how long a caller waits for its batch
	InitTimeout    time.Duration // how long Start waits for the worker to come up
	Concurrency    int           // funds computed in parallel within one batch
	QueueSize      int           // batches buffered ahead of the worker
}

// DefaultConfig returns the default dispatcher limits
func DefaultConfig() Config {
	return Config{
		RequestTimeout: 30 * time.Second,
		InitTimeout:    5 * time.Second,
		Concurrency:    4,
		QueueSize:      16,
	}
}

type state int

const (
	stateIdle state = iota
	stateStarting
	stateReady
	stateFailed
	stateClosed
)

type request struct {
	id     uint64
	funds  []*domain.Fund
	cutoff domain.Date
}

type response struct {
	id      uint64
	results []domain.MetricsRecord
	err     error
}

type pendingRequest struct {
	done  chan response // buffered; receives exactly one response
	timer *time.Timer
}

// Dispatcher offloads batch metrics computation to one background worker.
//
// Each Dispatch gets a monotonically increasing request id and a pending entry with its
// own timeout timer. The entry is removed, and its timer stopped, on completion, timeout,
// caller cancellation or shutdown, whichever happens first. A batch either fully succeeds
// or fails; computation already handed to the worker is not canceled.
type Dispatcher struct {
	compute ComputeFunc
	init    InitFunc
	cfg     Config
	logger  *logger.Logger

	nextID atomic.Uint64

	mu      sync.Mutex
	state   state
	failErr error
	pending map[uint64]*pendingRequest

	requests  chan request
	responses chan response
	stop      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithInit runs fn on the worker before it accepts batches
func WithInit(fn InitFunc) Option {
	return func(d *Dispatcher) { d.init = fn }
}

// NewDispatcher creates a new Dispatcher. Call Start before Dispatch.
func NewDispatcher(compute ComputeFunc, cfg Config, log *logger.Logger, opts ...Option) *Dispatcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	d := &Dispatcher{
		compute:   compute,
		cfg:       cfg,
		logger:    log.Named("batch"),
		pending:   make(map[uint64]*pendingRequest),
		requests:  make(chan request, cfg.QueueSize),
		responses: make(chan response),
		stop:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the worker and waits, at most InitTimeout, for it to initialize.
// On failure every outstanding and future Dispatch is rejected with ErrWorkerInit.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.state != stateIdle {
		d.mu.Unlock()
		return ErrAlreadyStarted
	}
	d.state = stateStarting
	d.mu.Unlock()

	ready := make(chan error, 1)
	d.wg.Add(2)
	go d.work(ready)
	go d.collect()

	timer := time.NewTimer(d.cfg.InitTimeout)
	defer timer.Stop()

	select {
	case err := <-ready:
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrWorkerInit, err)
			d.fail(err)
			return err
		}
	case <-timer.C:
		err := fmt.Errorf("%w: no response within %s", ErrWorkerInit, d.cfg.InitTimeout)
		d.fail(err)
		return err
	case <-ctx.Done():
		err := fmt.Errorf("%w: %v", ErrWorkerInit, ctx.Err())
		d.fail(err)
		return err
	}

	d.mu.Lock()
	if d.state == stateStarting {
		d.state = stateReady
	}
	d.mu.Unlock()

	d.logger.Infow("Batch worker ready",
		"concurrency", d.cfg.Concurrency,
		"request_timeout", d.cfg.RequestTimeout,
	)
	return nil
}

// Dispatch computes the metrics of every fund at cutoff on the worker and returns them
// in input order. It fails with ErrRequestTimeout when no answer arrives within
// RequestTimeout, or with ctx.Err() when the caller gives up first.
func (d *Dispatcher) Dispatch(ctx context.Context, funds []*domain.Fund, cutoff domain.Date) ([]domain.MetricsRecord, error) {
	id := d.nextID.Add(1)
	p, err := d.register(id)
	if err != nil {
		telemetry.BatchRequestsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	started := time.Now()

	select {
	case d.requests <- request{id: id, funds: funds, cutoff: cutoff}:
	case resp := <-p.done:
		return d.finish(resp, started)
	case <-ctx.Done():
		d.abandon(id)
		return nil, ctx.Err()
	}

	select {
	case resp := <-p.done:
		return d.finish(resp, started)
	case <-ctx.Done():
		d.abandon(id)
		return nil, ctx.Err()
	}
}

// Stop rejects every pending request with ErrDispatcherClosed and waits for the worker.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.state == stateClosed {
		d.mu.Unlock()
		return
	}
	d.state = stateClosed
	d.mu.Unlock()

	d.rejectAll(ErrDispatcherClosed)
	d.shutdown()
	d.wg.Wait()
	d.logger.Infow("Batch worker stopped")
}

// Pending returns the number of requests awaiting a response
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func (d *Dispatcher) register(id uint64) (*pendingRequest, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case stateIdle:
		return nil, ErrNotStarted
	case stateFailed:
		return nil, d.failErr
	case stateClosed:
		return nil, ErrDispatcherClosed
	}

	p := &pendingRequest{done: make(chan response, 1)}
	p.timer = time.AfterFunc(d.cfg.RequestTimeout, func() { d.expire(id) })
	d.pending[id] = p
	telemetry.BatchPending.Inc()
	return p, nil
}

// take removes and returns the pending entry of id, if still there
func (d *Dispatcher) take(id uint64) (*pendingRequest, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pending[id]
	if ok {
		delete(d.pending, id)
		telemetry.BatchPending.Dec()
	}
	return p, ok
}

func (d *Dispatcher) expire(id uint64) {
	p, ok := d.take(id)
	if !ok {
		return
	}
	d.logger.Warnw("Batch request timed out", "request_id", id, "timeout", d.cfg.RequestTimeout)
	p.done <- response{id: id, err: fmt.Errorf("%w: request %d after %s", ErrRequestTimeout, id, d.cfg.RequestTimeout)}
}

func (d *Dispatcher) abandon(id uint64) {
	if p, ok := d.take(id); ok {
		p.timer.Stop()
		telemetry.BatchRequestsTotal.WithLabelValues("canceled").Inc()
	}
}

func (d *Dispatcher) complete(resp response) {
	p, ok := d.take(resp.id)
	if !ok {
		d.logger.Debugw("Dropping response for request no longer pending", "request_id", resp.id)
		return
	}
	p.timer.Stop()
	p.done <- resp
}

func (d *Dispatcher) rejectAll(err error) {
	d.mu.Lock()
	rejected := d.pending
	d.pending = make(map[uint64]*pendingRequest)
	d.mu.Unlock()

	for id, p := range rejected {
		telemetry.BatchPending.Dec()
		p.timer.Stop()
		p.done <- response{id: id, err: err}
	}
}

func (d *Dispatcher) fail(err error) {
	d.mu.Lock()
	if d.state == stateClosed {
		d.mu.Unlock()
		return
	}
	d.state = stateFailed
	d.failErr = err
	d.mu.Unlock()

	d.logger.Errorw("Batch worker unavailable", "error", err)
	d.rejectAll(err)
	d.shutdown()
}

func (d *Dispatcher) shutdown() {
	d.stopOnce.Do(func() { close(d.stop) })
}

func (d *Dispatcher) finish(resp response, started time.Time) ([]domain.MetricsRecord, error) {
	telemetry.BatchDuration.Observe(time.Since(started).Seconds())
	switch {
	case resp.err == nil:
		telemetry.BatchRequestsTotal.WithLabelValues("ok").Inc()
	case errors.Is(resp.err, ErrRequestTimeout):
		telemetry.BatchRequestsTotal.WithLabelValues("timeout").Inc()
	default:
		telemetry.BatchRequestsTotal.WithLabelValues("rejected").Inc()
	}
	return resp.results, resp.err
}

// work is the background worker: initialize, then serve batches until stopped.
func (d *Dispatcher) work(ready chan<- error) {
	defer d.wg.Done()

	var err error
	if d.init != nil {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.InitTimeout)
		err = d.init(ctx)
		cancel()
	}
	ready <- err
	if err != nil {
		return
	}

	for {
		select {
		case <-d.stop:
			return
		case req := <-d.requests:
			resp := d.run(req)
			select {
			case d.responses <- resp:
			case <-d.stop:
				return
			}
		}
	}
}

// collect correlates worker responses with pending requests.
func (d *Dispatcher) collect() {
	defer d.wg.Done()
	for {
		select {
		case <-d.stop:
			return
		case resp := <-d.responses:
			d.complete(resp)
		}
	}
}

func (d *Dispatcher) run(req request) response {
	results := make([]domain.MetricsRecord, len(req.funds))

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(d.cfg.Concurrency)
	for i, fund := range req.funds {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("batch: fund %d of request %d: %v", i, req.id, r)
				}
			}()
			results[i] = d.compute(ctx, fund, req.cutoff)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		d.logger.Errorw("Batch computation failed", "request_id", req.id, "error", err)
		return response{id: req.id, err: err}
	}

	d.logger.Debugw("Batch computed", "request_id", req.id, "funds", len(req.funds))
	return response{id: req.id, results: results}
}
