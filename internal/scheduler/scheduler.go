package scheduler

import (
	"errors"
	"sync"
	"time"
)

// ErrNotIdle is returned by RunUntilIdle when the step limit is reached with
// work still queued.
var ErrNotIdle = errors.New("scheduler: step limit reached with tasks pending")

// Manual is a Scheduler that only runs tasks when stepped. It is used by tests
// and by headless runs where the caller owns the loop.
//
// # Thread-Safety
//
// Defer and Post may be called from any goroutine; tasks run on the goroutine
// calling Step or RunUntilIdle.
type Manual struct {
	mu      sync.Mutex
	queue   []func()
	now     time.Time
	advance time.Duration
	clock   func() time.Time
	steps   int
}

// ManualOption configures a Manual scheduler.
type ManualOption func(*Manual)

// WithAutoAdvance makes every call to Now move the clock forward by d, so a
// loop with a budget smaller than d yields after each unit of work.
func WithAutoAdvance(d time.Duration) ManualOption {
	return func(m *Manual) { m.advance = d }
}

// WithStart sets the initial clock value.
func WithStart(t time.Time) ManualOption {
	return func(m *Manual) { m.now = t }
}

// WithClock replaces the frozen clock with fn. Auto-advance and Advance have
// no effect on a Manual with a clock.
func WithClock(fn func() time.Time) ManualOption {
	return func(m *Manual) { m.clock = fn }
}

// NewManual creates a stepped scheduler with a frozen clock.
func NewManual(opts ...ManualOption) *Manual {
	m := &Manual{now: time.Unix(0, 0)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Now implements Scheduler.
func (m *Manual) Now() time.Time {
	if m.clock != nil {
		return m.clock()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.now
	m.now = m.now.Add(m.advance)
	return t
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Defer implements Scheduler.
func (m *Manual) Defer(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, fn)
}

// Post implements Poster.
func (m *Manual) Post(fn func()) bool {
	m.Defer(fn)
	return true
}

// Pending returns the number of queued tasks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Steps returns how many tasks have run so far.
func (m *Manual) Steps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.steps
}

// Step runs the oldest queued task. It reports false when the queue was empty.
func (m *Manual) Step() bool {
	m.mu.Lock()
	if len(m.queue) == 0 {
		m.mu.Unlock()
		return false
	}
	fn := m.queue[0]
	m.queue = m.queue[1:]
	m.steps++
	m.mu.Unlock()

	fn()
	return true
}

// RunUntilIdle steps until the queue is empty or max tasks have run. A max of
// zero or less means no limit. It returns the number of tasks run.
func (m *Manual) RunUntilIdle(max int) (int, error) {
	n := 0
	for max <= 0 || n < max {
		if !m.Step() {
			return n, nil
		}
		n++
	}
	if m.Pending() > 0 {
		return n, ErrNotIdle
	}
	return n, nil
}
