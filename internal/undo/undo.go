// Package undo defines the call contract of the external undo stack. The
// engine announces every undoable mutation right before performing it; storing
// and replaying history is the host's responsibility.
package undo

import "sync"

// Bridge is notified immediately before an undoable mutation.
type Bridge interface {
	BeforeChange(scope, label string)
}

// Nop ignores every notification.
type Nop struct{}

// BeforeChange implements Bridge.
func (Nop) BeforeChange(string, string) {}

// Entry is one recorded notification.
type Entry struct {
	Scope string
	Label string
}

// Journal records notifications in order. It is used by headless runs and
// tests to inspect what would have been pushed onto an undo stack.
type Journal struct {
	mu      sync.Mutex
	entries []Entry
}

// BeforeChange implements Bridge.
func (j *Journal) BeforeChange(scope, label string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, Entry{Scope: scope, Label: label})
}

// Entries returns a copy of the recorded notifications.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Labels returns the recorded labels in order.
func (j *Journal) Labels() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, len(j.entries))
	for i, e := range j.entries {
		out[i] = e.Label
	}
	return out
}
