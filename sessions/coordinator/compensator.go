package coordinator

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/talkline/roomsession/internal/errors"
	"github.com/talkline/roomsession/internal/log"
	"github.com/talkline/roomsession/internal/retry"
	"github.com/talkline/roomsession/sessions"
)

// compensator exits backend sessions whose join was abandoned locally but
// may have succeeded remotely. Runs are deduplicated per token, paced, and
// retried; a run is skipped while the token is reserved by a live handle or
// an authoritative join, so a newer session is never torn down.
type compensator struct {
	backend    sessions.BackendRoomClient
	retry      retry.Retry
	limiter    *rate.Limiter
	group      singleflight.Group
	reserved   func(token string) bool
	onIdle     func(token string)
	maxElapsed time.Duration

	mu       sync.Mutex
	inflight map[string]int
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *log.Logger
}

func newCompensator(
	cfg *CompensationConfig,
	backend sessions.BackendRoomClient,
	reserved func(token string) bool,
	onIdle func(token string),
	logger *log.Logger,
) *compensator {
	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &compensator{
		backend:    backend,
		retry:      retry.New(logger, cfg.InitialInterval, cfg.MaxInterval, cfg.MaxElapsed),
		limiter:    rate.NewLimiter(limit, burst),
		reserved:   reserved,
		onIdle:     onIdle,
		maxElapsed: cfg.MaxElapsed,
		inflight:   make(map[string]int),
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
	}
}

// Dispatch schedules an exit for token and returns immediately.
func (cp *compensator) Dispatch(token, reason string) {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	if cp.closed {
		cp.logger.Warn("Compensation dropped after shutdown", log.Token(token))
		return
	}

	orphansDispatched.Add(cp.ctx, 1)
	cp.logger.Info("Dispatching orphan exit", log.Token(token), log.String("reason", reason))

	cp.wg.Add(1)
	go func() {
		defer cp.wg.Done()
		_, _, _ = cp.group.Do(token, func() (any, error) {
			cp.run(token)
			return nil, nil
		})
	}()
}

func (cp *compensator) run(token string) {
	ctx := cp.ctx
	if cp.maxElapsed > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cp.maxElapsed)
		defer cancel()
	}

	if err := cp.limiter.Wait(ctx); err != nil {
		orphansFailed.Add(cp.ctx, 1)
		cp.logger.Warn("Orphan exit not started", log.Token(token), log.Error(err))
		return
	}

	skipped := false
	err := cp.retry.Do(ctx, func() error {
		if !cp.begin(token) {
			skipped = true
			return retry.Permanent(errCompensationSkipped)
		}
		defer cp.end(token)

		err := cp.backend.Exit(ctx, token)
		if err == nil {
			return nil
		}
		classified := sessions.Classify(err)
		if errors.Is(classified, sessions.KindNotFound) {
			// session already gone
			return nil
		}
		if !classified.Retryable() {
			return retry.Permanent(classified)
		}
		return classified
	})

	switch {
	case skipped:
		orphansSkipped.Add(cp.ctx, 1)
		cp.logger.Info("Orphan exit skipped, room reserved again", log.Token(token))
	case err != nil:
		orphansFailed.Add(cp.ctx, 1)
		cp.logger.Warn("Orphan exit gave up", log.Token(token), log.Error(err))
	default:
		orphansCleaned.Add(cp.ctx, 1)
		cp.logger.Info("Orphan session exited", log.Token(token))
	}
}

// begin marks an exit in flight unless the token is reserved. The check and
// the mark happen under one lock so busy() observes either the mark or the
// reservation that prevented it.
func (cp *compensator) begin(token string) bool {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	if cp.reserved(token) {
		return false
	}
	cp.inflight[token]++
	return true
}

func (cp *compensator) end(token string) {
	cp.mu.Lock()
	cp.inflight[token]--
	idle := cp.inflight[token] <= 0
	if idle {
		delete(cp.inflight, token)
	}
	cp.mu.Unlock()

	if idle {
		cp.onIdle(token)
	}
}

// busy reports whether an exit for token is on the wire right now.
func (cp *compensator) busy(token string) bool {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.inflight[token] > 0
}

// Close waits for dispatched runs until ctx ends, then aborts the rest.
func (cp *compensator) Close(ctx context.Context) error {
	cp.mu.Lock()
	cp.closed = true
	cp.mu.Unlock()

	done := make(chan struct{})
	go func() {
		cp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		cp.cancel()
		return nil
	case <-ctx.Done():
		cp.cancel()
		<-done
		return ctx.Err()
	}
}
