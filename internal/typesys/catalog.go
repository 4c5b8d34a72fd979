package typesys

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/zclconf/go-cty/cty"
)

// named is the native type behind every user-declared capsule. Named types
// carry no payload of their own; only their identity matters.
type named struct{}

// Catalog holds the named types of one document and the declared supertype
// relation between types. It is safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	byName  map[string]cty.Type
	parents map[string][]cty.Type // Key: Key(type), Value: direct supertypes
	version uint64
}

// NewCatalog returns a catalog pre-populated with the built-in types. Int and
// Float are declared to implement number.
func NewCatalog() *Catalog {
	c := &Catalog{
		byName: map[string]cty.Type{
			"string": cty.String,
			"number": cty.Number,
			"bool":   cty.Bool,
			"any":    cty.DynamicPseudoType,
			"int":    Int,
			"float":  Float,
		},
		parents: make(map[string][]cty.Type),
	}
	c.parents[Key(Int)] = []cty.Type{cty.Number}
	c.parents[Key(Float)] = []cty.Type{cty.Number}
	return c
}

// Declare registers a new named type that implements the given supertypes.
// Supertypes must already be known to the catalog.
func (c *Catalog) Declare(name string, supertypes ...string) (cty.Type, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == "" {
		return cty.NilType, fmt.Errorf("type name cannot be empty")
	}
	if _, exists := c.byName[name]; exists {
		return cty.NilType, fmt.Errorf("type %q is already declared", name)
	}

	supers := make([]cty.Type, 0, len(supertypes))
	for _, s := range supertypes {
		st, ok := c.byName[s]
		if !ok {
			return cty.NilType, fmt.Errorf("type %q: unknown supertype %q", name, s)
		}
		supers = append(supers, st)
	}

	t := cty.Capsule(name, reflect.TypeOf(named{}))
	c.byName[name] = t
	if len(supers) > 0 {
		c.parents[Key(t)] = supers
	}
	c.version++
	return t, nil
}

// Lookup returns the type registered under name.
func (c *Catalog) Lookup(name string) (cty.Type, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.byName[name]
	return t, ok
}

// Names returns all known type names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Version changes every time a type is declared. Caches derived from the
// catalog compare it to decide when to invalidate.
func (c *Catalog) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Implements reports whether a value of type t can be used where super is
// expected without any conversion: identity, "any" on either side, or a
// declared (transitive) supertype relationship.
func (c *Catalog) Implements(t, super cty.Type) bool {
	if t == cty.NilType || super == cty.NilType {
		return false
	}
	if super.Equals(cty.DynamicPseudoType) || t.Equals(cty.DynamicPseudoType) {
		return true
	}
	if t.Equals(super) {
		return true
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	queue := []cty.Type{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		k := Key(cur)
		if seen[k] {
			continue
		}
		seen[k] = true
		for _, p := range c.parents[k] {
			if p.Equals(super) {
				return true
			}
			queue = append(queue, p)
		}
	}
	return false
}
