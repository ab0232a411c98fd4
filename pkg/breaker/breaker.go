// Package breaker implements a circuit breaker for outbound provider calls.
//
// The breaker is process-wide state shared by every synthesis call: repeated
// transient failures open the circuit, and while it is open calls fail
// immediately without touching the network. After a reset interval a single
// trial call is let through; its outcome decides whether the circuit closes
// again.
//
// Error classification stays at the call site. The breaker only exposes
// Allow, Success, and Failure, so callers decide which errors count toward
// opening the circuit (authentication failures, for example, must not).
package breaker

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned by Allow while the circuit is open.
// It is distinct from provider errors: no network attempt was made.
var ErrOpen = errors.New("breaker: circuit open")

// Status is the breaker state.
type Status string

const (
	StatusClosed Status = "closed"
	StatusOpen   Status = "open"
)

// Breaker is a two-state circuit breaker safe for concurrent use.
// The zero value is not usable; create one with New.
type Breaker struct {
	threshold int
	reset     time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu       sync.Mutex
	open     bool
	failures int
	openedAt time.Time
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithClock overrides the time source. Tests use this to simulate the reset
// interval elapsing without real delays.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		b.now = now
	}
}

// WithLogger sets the structured logger for state transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Breaker) {
		b.logger = logger.With("component", "breaker")
	}
}

// New creates a breaker that opens after threshold consecutive failures and
// allows a trial call once reset has elapsed.
func New(threshold int, reset time.Duration, opts ...Option) *Breaker {
	b := &Breaker{
		threshold: threshold,
		reset:     reset,
		now:       time.Now,
		logger:    slog.Default().With("component", "breaker"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Allow reports whether a call may proceed. It returns ErrOpen while the
// circuit is open and the reset interval has not yet elapsed.
//
// When the interval has elapsed, exactly one call is admitted as a trial:
// admitting it restamps openedAt, so concurrent callers keep getting ErrOpen
// until the trial resolves via Success or Failure.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return nil
	}
	if b.now().Sub(b.openedAt) < b.reset {
		return ErrOpen
	}

	b.openedAt = b.now()
	b.logger.Info("circuit allowing trial call")
	return nil
}

// Success records a successful call and closes the circuit.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open {
		b.logger.Info("circuit closed after successful trial")
	}
	b.open = false
	b.failures = 0
}

// Failure records a transient failure. Crossing the threshold, or failing a
// trial call, opens the circuit and restamps openedAt.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open {
		// Failed trial: stay open for another full interval.
		b.openedAt = b.now()
		b.logger.Warn("trial call failed, circuit re-opened")
		return
	}

	b.failures++
	if b.failures >= b.threshold {
		b.open = true
		b.openedAt = b.now()
		b.logger.Warn("circuit opened", "consecutive_failures", b.failures)
	}
}

// Status returns the current breaker status.
func (b *Breaker) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.open {
		return StatusOpen
	}
	return StatusClosed
}

// Failures returns the current consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}
