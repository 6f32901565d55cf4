package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"time"
)

// Predicate reports whether a failed attempt should be retried.
type Predicate func(error) bool

// Config controls how many attempts are made and how long to wait
// between them.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// OnRetry, if set, is called before each wait with the attempt that
	// just failed (starting at 1) and its error.
	OnRetry func(attempt int, err error)
}

// DefaultConfig is used for idempotent catalog reads.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   250 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	}
}

// Do calls fn until it succeeds, shouldRetry rejects its error, the
// attempts run out, or ctx is done. A nil shouldRetry means IsRetryable.
func Do(ctx context.Context, cfg Config, shouldRetry Predicate, fn func(context.Context) error) error {
	_, err := Value(ctx, cfg, shouldRetry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Value is Do for functions that return a result.
func Value[T any](ctx context.Context, cfg Config, shouldRetry Predicate, fn func(context.Context) (T, error)) (T, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if shouldRetry == nil {
		shouldRetry = IsRetryable
	}

	var zero T
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if attempt >= cfg.MaxAttempts || !shouldRetry(err) {
			return zero, err
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}
		if !wait(ctx, delayFor(cfg, attempt)) {
			return zero, ctx.Err()
		}
	}
}

// transient is implemented by errors that know whether they are worth
// retrying, such as librarian API errors.
type transient interface {
	Transient() bool
}

// IsRetryable reports whether err looks temporary: an error that says so
// itself, a deadline, or a network timeout. Cancellation never is.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var t transient
	if errors.As(err, &t) {
		return t.Transient()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// delayFor doubles BaseDelay per attempt, caps it at MaxDelay, and picks
// a uniformly random wait up to that bound.
func delayFor(cfg Config, attempt int) time.Duration {
	if cfg.BaseDelay <= 0 {
		return 0
	}
	d := cfg.BaseDelay << (attempt - 1)
	if d <= 0 || (cfg.MaxDelay > 0 && d > cfg.MaxDelay) {
		d = cfg.MaxDelay
	}
	if d <= 0 {
		return 0
	}
	return rand.N(d + 1)
}

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
