package tui

import (
	"sync"
	"time"

	"github.com/vk/nodesync/internal/scheduler"
	"github.com/vk/nodesync/internal/viewsync"
)

// ProgressState is the latest progress reported by a reload.
type ProgressState struct {
	Title    string
	Message  string
	Fraction float64
	Active   bool
}

// Host is a view host that keeps visuals in memory and runs deferred work
// when RunFrame is called.
type Host struct {
	*viewsync.MemoryRenderer
	*scheduler.Manual

	mu       sync.Mutex
	progress ProgressState
}

var (
	_ viewsync.Host             = (*Host)(nil)
	_ viewsync.ProgressReporter = (*Host)(nil)
)

// NewHost creates a host on the wall clock.
func NewHost() *Host {
	return &Host{
		MemoryRenderer: viewsync.NewMemoryRenderer(),
		Manual:         scheduler.NewManual(scheduler.WithClock(time.Now)),
	}
}

// Progress implements viewsync.ProgressReporter.
func (h *Host) Progress(title, message string, fraction float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.progress = ProgressState{Title: title, Message: message, Fraction: fraction, Active: fraction < 1}
}

// Status returns the latest reported progress.
func (h *Host) Status() ProgressState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.progress
}

// RunFrame runs the tasks that were queued when it was called. Tasks they
// defer wait for the next frame. It returns how many tasks ran.
func (h *Host) RunFrame() int {
	n := h.Pending()
	ran := 0
	for ran < n && h.Step() {
		ran++
	}
	return ran
}
