package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/talkline/roomsession/internal/log"
)

// Retry runs an operation until it succeeds, the context ends, or the elapsed budget runs out.
type Retry interface {
	Do(ctx context.Context, operation func() error) error
}

func New(logger *log.Logger, initialInterval, maxInterval, maxElapsedTime time.Duration) Retry {
	return &retryImpl{
		logger:          logger,
		initialInterval: initialInterval,
		maxInterval:     maxInterval,
		maxElapsedTime:  maxElapsedTime,
	}
}

type retryImpl struct {
	logger          *log.Logger
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
}

func (r *retryImpl) Do(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime
	b.Reset()

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := operation()
		if err != nil {
			r.logger.Warn("Retry attempt failed",
				log.Int("attempt", attempt),
				log.Error(err))
		}
		return err
	}, backoff.WithContext(b, ctx))
}

// Permanent marks err so Do stops retrying and returns it as is.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Policy bounds the number of attempts of a single logical call and decides
// the pause between them. With Backoff unset every retry is issued immediately.
type Policy struct {
	MaxAttempts         int
	Backoff             bool
	InitialInterval     time.Duration
	MaxInterval         time.Duration
	RandomizationFactor float64
}

// DefaultPolicy is three attempts with no pause.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3}
}

// NewBackOff returns a fresh schedule for one logical call. NextBackOff yields
// the delay before each retry and backoff.Stop once MaxAttempts calls were made.
func (p Policy) NewBackOff() backoff.BackOff {
	retries := p.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}

	if !p.Backoff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(retries))
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.RandomizationFactor = p.RandomizationFactor
	// attempts are capped by count, not by time
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithMaxRetries(b, uint64(retries))
}
