package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/vk/nodesync/internal/ctxlog"
)

// Loop is a single-goroutine task loop. Tasks posted from any goroutine run
// one at a time, in order, on the goroutine that called Run or RunUntil.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	closed bool
}

// NewLoop creates an empty loop. Call Run to start processing.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Now implements Scheduler.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Defer implements Scheduler.
func (l *Loop) Defer(fn func()) {
	l.Post(fn)
}

// Post queues fn and reports whether it was accepted. Tasks posted after
// Close are dropped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Close drops queued tasks and rejects new ones.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.queue = nil
}

// Run processes tasks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	return l.run(ctx, nil)
}

// RunUntil processes tasks until done reports true, checked before the first
// task and after every task, or until ctx is cancelled.
func (l *Loop) RunUntil(ctx context.Context, done func() bool) error {
	if done() {
		return nil
	}
	return l.run(ctx, done)
}

func (l *Loop) run(ctx context.Context, done func() bool) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Scheduler loop started.")
	defer logger.Debug("Scheduler loop stopped.")

	for {
		for fn, ok := l.next(); ok; fn, ok = l.next() {
			fn()
			if done != nil && done() {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue = l.queue[1:]
	return fn, true
}
