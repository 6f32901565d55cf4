// Package poller waits for asynchronous server-side transitions such as
// start, stop, restart, scale and deploy.
//
// Every wait follows the same state machine: the transition request is
// submitted once, then the resource is fetched on a fixed interval until a
// terminal predicate holds. The progress indicator is started with the
// wait and stopped exactly once when it ends, however it ends.
package poller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/progress"
	"onmodulus/xervo/internal/retry"
)

const (
	// DefaultInterval is the delay between status fetches.
	DefaultInterval = time.Second

	// DefaultTimeout bounds a whole wait, submission included.
	DefaultTimeout = 30 * time.Minute

	// DefaultMaxFetchErrors is how many consecutive transient fetch
	// failures end a wait.
	DefaultMaxFetchErrors = 3
)

// Options configures a Poller. Zero values select the defaults.
type Options struct {
	// Interval is the fixed delay between status fetches. There is no
	// backoff.
	Interval time.Duration

	// Timeout bounds the whole wait, submission included.
	Timeout time.Duration

	// MaxFetchErrors is how many consecutive transient fetch failures
	// abort the wait. API errors abort at once.
	MaxFetchErrors int

	Clock  Clock
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxFetchErrors <= 0 {
		o.MaxFetchErrors = DefaultMaxFetchErrors
	}
	if o.Clock == nil {
		o.Clock = RealClock
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// Poller runs waits against one indicator and output stream. A Poller
// runs one wait at a time.
type Poller struct {
	opts      Options
	indicator progress.Indicator
	out       io.Writer
}

// New returns a Poller. out receives the trailing blank line written when
// a wait ends; it is normally the same stream the indicator draws on.
func New(indicator progress.Indicator, out io.Writer, opts Options) *Poller {
	if indicator == nil {
		indicator = progress.Nop{}
	}
	if out == nil {
		out = io.Discard
	}
	return &Poller{opts: opts.withDefaults(), indicator: indicator, out: out}
}

// Options returns the effective options.
func (p *Poller) Options() Options {
	return p.opts
}

// Job describes one transition to wait for.
type Job[T any] struct {
	// Resource names the resource in messages, e.g. `project "api"`.
	Resource string

	// Message is shown by the indicator while polling.
	Message string

	// Submit issues the transition request. Nil when the request was
	// already made, as when resuming an interrupted command.
	Submit func(ctx context.Context) error

	// Fetch returns the resource's current representation.
	Fetch func(ctx context.Context) (T, error)

	// Status extracts the status string from a fetched value.
	Status func(T) string

	// Target is the terminal status, compared case-insensitively. It is
	// ignored when Done is set.
	Target string

	// Done is an optional terminal predicate given the previously
	// observed status and the fetched value.
	Done func(prev string, cur T) bool

	// Initial is the status assumed before the first fetch.
	Initial string

	// OnStatus is called for every observed change of status.
	OnStatus func(prev, cur string)

	// Complete is called exactly once when the wait ends, with the final
	// snapshot on success.
	Complete func(T, error)
}

func (j Job[T]) terminal(prev string, cur T) bool {
	if j.Done != nil {
		return j.Done(prev, cur)
	}
	return domain.StatusIs(j.Status(cur), j.Target)
}

// Run submits job and polls until it reaches a terminal state.
func Run[T any](ctx context.Context, p *Poller, job Job[T]) (T, error) {
	sess := NewSession(job.Resource, job.Initial)
	return run(ctx, p, sess, job, true)
}

// run drives sess through the state machine. When ownIndicator is false
// the caller has already started the indicator and stops it itself.
func run[T any](ctx context.Context, p *Poller, sess *Session, job Job[T], ownIndicator bool) (result T, err error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	if ownIndicator {
		p.indicator.Start(job.Message)
	}
	defer func() {
		if !sess.Finish(err) {
			return
		}
		if ownIndicator {
			p.stopIndicator()
		}
		if job.Complete != nil {
			job.Complete(result, err)
		}
	}()

	if job.Submit != nil {
		if err := job.Submit(ctx); err != nil {
			var zero T
			return zero, err
		}
	}
	sess.Accept()

	return poll(ctx, p, sess, job)
}

func poll[T any](ctx context.Context, p *Poller, sess *Session, job Job[T]) (T, error) {
	var zero T
	log := p.opts.Logger.With("resource", sess.Resource())
	consecutive := 0

	for {
		select {
		case <-ctx.Done():
			return zero, p.abandoned(ctx, sess, job)
		case <-p.opts.Clock.After(p.opts.Interval):
		}

		cur, err := job.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return zero, p.abandoned(ctx, sess, job)
			}
			if !retry.IsRetryable(err) {
				return zero, err
			}
			consecutive++
			if consecutive >= p.opts.MaxFetchErrors {
				return zero, fmt.Errorf("checking %s status (after %d consecutive failures): %w", sess.Resource(), consecutive, err)
			}
			log.Warn("status check failed, retrying", "attempt", consecutive, "max", p.opts.MaxFetchErrors, "error", err)
			continue
		}
		consecutive = 0

		status := job.Status(cur)
		prev := sess.Observe(status)
		log.Debug("polled status", "status", status, "previous", prev)
		if prev != status && job.OnStatus != nil {
			job.OnStatus(prev, status)
		}
		if job.terminal(prev, cur) {
			return cur, nil
		}
	}
}

// abandoned builds the error for a wait whose context ended: ErrTimeout
// for the maximum duration, the context error otherwise.
func (p *Poller) abandoned(ctx context.Context, sess *Session, job interface{ target() string }) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		status := sess.Status()
		if status == "" {
			status = "unknown"
		}
		return fmt.Errorf("%s did not reach %q within %s (last status %q): %w",
			sess.Resource(), job.target(), p.opts.Timeout, status, domain.ErrTimeout)
	}
	return ctx.Err()
}

func (j Job[T]) target() string {
	if j.Target != "" {
		return j.Target
	}
	return "its target status"
}

func (p *Poller) stopIndicator() {
	p.indicator.Stop()
	_, _ = fmt.Fprintln(p.out)
}
