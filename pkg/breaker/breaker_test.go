package breaker_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/boardroomai/voicepipe/pkg/breaker"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	clock := newFakeClock()
	b := breaker.New(3, time.Minute, breaker.WithClock(clock.Now))

	for i := 0; i < 3; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("call %d unexpectedly blocked: %v", i, err)
		}
		b.Failure()
	}

	if b.Status() != breaker.StatusOpen {
		t.Fatalf("expected open after 3 failures, got %s", b.Status())
	}
	if err := b.Allow(); !errors.Is(err, breaker.ErrOpen) {
		t.Errorf("expected ErrOpen, got %v", err)
	}
}

func TestBreakerStaysClosedBelowThreshold(t *testing.T) {
	b := breaker.New(3, time.Minute)

	b.Failure()
	b.Failure()
	if b.Status() != breaker.StatusClosed {
		t.Fatalf("expected closed at 2 failures, got %s", b.Status())
	}
	if err := b.Allow(); err != nil {
		t.Errorf("unexpected block: %v", err)
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b := breaker.New(3, time.Minute)

	b.Failure()
	b.Failure()
	b.Success()
	if b.Failures() != 0 {
		t.Errorf("expected failures reset to 0, got %d", b.Failures())
	}

	// Two more failures should not open the circuit after the reset.
	b.Failure()
	b.Failure()
	if b.Status() != breaker.StatusClosed {
		t.Errorf("expected closed, got %s", b.Status())
	}
}

func TestTrialCallAfterResetInterval(t *testing.T) {
	clock := newFakeClock()
	b := breaker.New(1, time.Minute, breaker.WithClock(clock.Now))

	b.Failure()
	if b.Status() != breaker.StatusOpen {
		t.Fatalf("expected open, got %s", b.Status())
	}

	t.Run("blocked before interval elapses", func(t *testing.T) {
		clock.Advance(30 * time.Second)
		if err := b.Allow(); !errors.Is(err, breaker.ErrOpen) {
			t.Errorf("expected ErrOpen, got %v", err)
		}
	})

	t.Run("exactly one trial allowed after interval", func(t *testing.T) {
		clock.Advance(31 * time.Second)
		if err := b.Allow(); err != nil {
			t.Fatalf("expected trial to be allowed: %v", err)
		}
		// Concurrent caller while the trial is in flight stays blocked.
		if err := b.Allow(); !errors.Is(err, breaker.ErrOpen) {
			t.Errorf("expected second caller blocked, got %v", err)
		}
	})

	t.Run("trial success closes the circuit", func(t *testing.T) {
		b.Success()
		if b.Status() != breaker.StatusClosed {
			t.Errorf("expected closed, got %s", b.Status())
		}
		if err := b.Allow(); err != nil {
			t.Errorf("unexpected block after close: %v", err)
		}
	})
}

func TestFailedTrialReopens(t *testing.T) {
	clock := newFakeClock()
	b := breaker.New(1, time.Minute, breaker.WithClock(clock.Now))

	b.Failure()
	clock.Advance(2 * time.Minute)

	if err := b.Allow(); err != nil {
		t.Fatalf("expected trial allowed: %v", err)
	}
	b.Failure()

	if b.Status() != breaker.StatusOpen {
		t.Fatalf("expected re-opened, got %s", b.Status())
	}

	// The trial restamped openedAt, so a full interval must pass again.
	clock.Advance(30 * time.Second)
	if err := b.Allow(); !errors.Is(err, breaker.ErrOpen) {
		t.Errorf("expected ErrOpen during new interval, got %v", err)
	}
	clock.Advance(31 * time.Second)
	if err := b.Allow(); err != nil {
		t.Errorf("expected new trial allowed, got %v", err)
	}
}

func TestConcurrentFailuresOpenOnce(t *testing.T) {
	clock := newFakeClock()
	b := breaker.New(5, time.Minute, breaker.WithClock(clock.Now))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Failure()
		}()
	}
	wg.Wait()

	if b.Status() != breaker.StatusOpen {
		t.Fatalf("expected open, got %s", b.Status())
	}
	if err := b.Allow(); !errors.Is(err, breaker.ErrOpen) {
		t.Errorf("expected ErrOpen, got %v", err)
	}
}
