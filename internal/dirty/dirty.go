// Package dirty tracks the nodes whose visual representation is out of date.
package dirty

import (
	"slices"
	"sync"

	"github.com/vk/nodesync/internal/nodeid"
)

// Set is a thread-safe set of node ids pending view reconciliation.
type Set struct {
	mu  sync.Mutex
	ids map[nodeid.ID]struct{}
}

// New creates an empty set.
func New() *Set {
	return &Set{ids: make(map[nodeid.ID]struct{})}
}

// Add marks nodes dirty.
func (s *Set) Add(ids ...nodeid.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// Merge adds every id of other to s. other is left unchanged.
func (s *Set) Merge(other []nodeid.ID) {
	s.Add(other...)
}

// Contains reports whether id is pending.
func (s *Set) Contains(id nodeid.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of pending ids.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Drain empties the set and returns its former content, sorted.
func (s *Set) Drain() []nodeid.ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]nodeid.ID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	s.ids = make(map[nodeid.ID]struct{})
	slices.Sort(out)
	return out
}
