package typesys

import (
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Filter describes which output types an input port accepts. A type is
// accepted when it implements any member of Allow or satisfies Predicate.
// A filter with neither is open and accepts everything.
type Filter struct {
	Allow     []cty.Type
	Predicate func(cty.Type) bool
}

// Accepting builds a filter from an explicit allow-list.
func Accepting(types ...cty.Type) Filter {
	return Filter{Allow: types}
}

// IsOpen reports whether the filter places no restriction on types.
func (f Filter) IsOpen() bool {
	return len(f.Allow) == 0 && f.Predicate == nil
}

// Memoizable reports whether decisions against this filter depend only on its
// allow-list and can be cached.
func (f Filter) Memoizable() bool {
	return f.Predicate == nil
}

// Accepts reports whether t satisfies the filter without conversion.
func (f Filter) Accepts(c *Catalog, t cty.Type) bool {
	if f.IsOpen() {
		return true
	}
	if f.Predicate != nil && f.Predicate(t) {
		return true
	}
	for _, a := range f.Allow {
		if c.Implements(t, a) {
			return true
		}
	}
	return false
}

// CacheKey identifies the allow-list part of the filter.
func (f Filter) CacheKey() string {
	keys := make([]string, len(f.Allow))
	for i, a := range f.Allow {
		keys[i] = Key(a)
	}
	return strings.Join(keys, "|")
}

// String renders the filter for log and error messages.
func (f Filter) String() string {
	if f.IsOpen() {
		return "any"
	}
	names := make([]string, 0, len(f.Allow)+1)
	for _, a := range f.Allow {
		names = append(names, Name(a))
	}
	if f.Predicate != nil {
		names = append(names, "<predicate>")
	}
	return strings.Join(names, " | ")
}
