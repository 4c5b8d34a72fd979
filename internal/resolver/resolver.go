package resolver

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vk/nodesync/internal/registry"
	"github.com/vk/nodesync/internal/typesys"
	"github.com/zclconf/go-cty/cty"
)

// DefaultCacheSize is the number of memoized resolutions kept by New.
const DefaultCacheSize = 512

// Resolver answers type compatibility questions against one catalog and one
// converter registry.
type Resolver struct {
	catalog  *typesys.Catalog
	registry *registry.Registry

	cache      *lru.Cache[string, Resolution]
	mu         sync.Mutex
	regVersion uint64
	catVersion uint64

	hits   atomic.Uint64
	misses atomic.Uint64
}

// Option configures a Resolver.
type Option func(*options)

type options struct {
	cacheSize int
}

// WithCacheSize sets the resolution cache capacity. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// New creates a resolver.
func New(catalog *typesys.Catalog, reg *registry.Registry, opts ...Option) (*Resolver, error) {
	o := options{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Resolver{
		catalog:    catalog,
		registry:   reg,
		regVersion: reg.Version(),
		catVersion: catalog.Version(),
	}
	if o.cacheSize > 0 {
		cache, err := lru.New[string, Resolution](o.cacheSize)
		if err != nil {
			return nil, err
		}
		r.cache = cache
	}
	return r, nil
}

// Catalog returns the type catalog the resolver consults.
func (r *Resolver) Catalog() *typesys.Catalog {
	return r.catalog
}

// Registry returns the converter registry the resolver consults.
func (r *Resolver) Registry() *registry.Registry {
	return r.registry
}

// CanConnect reports whether out can feed an input with the given filter
// without an adapter node.
func (r *Resolver) CanConnect(out cty.Type, filter typesys.Filter) bool {
	return r.Resolve(out, filter).Direct()
}

// FindConverter returns the first registered descriptor converting out into
// in, or nil.
func (r *Resolver) FindConverter(out, in cty.Type) *registry.Descriptor {
	for _, d := range r.registry.Descriptors() {
		if d.Matches(r.catalog, out, in) {
			return d
		}
	}
	return nil
}

// Resolve runs the full rule chain for an output type against an input filter.
func (r *Resolver) Resolve(out cty.Type, filter typesys.Filter) Resolution {
	if r.cache == nil || !filter.Memoizable() {
		return r.resolve(out, filter)
	}

	r.invalidateIfStale()
	key := typesys.Key(out) + "=>" + filter.CacheKey()
	if res, ok := r.cache.Get(key); ok {
		r.hits.Add(1)
		return res
	}
	r.misses.Add(1)
	res := r.resolve(out, filter)
	r.cache.Add(key, res)
	return res
}

// CacheStats returns the cumulative cache hit and miss counts.
func (r *Resolver) CacheStats() (hits, misses uint64) {
	return r.hits.Load(), r.misses.Load()
}

func (r *Resolver) invalidateIfStale() {
	r.mu.Lock()
	defer r.mu.Unlock()

	rv, cv := r.registry.Version(), r.catalog.Version()
	if rv != r.regVersion || cv != r.catVersion {
		r.cache.Purge()
		r.regVersion, r.catVersion = rv, cv
	}
}

func (r *Resolver) resolve(out cty.Type, filter typesys.Filter) Resolution {
	if out == cty.NilType {
		return Resolution{Status: Incompatible}
	}

	if filter.Accepts(r.catalog, out) {
		return Resolution{Status: Compatible}
	}

	for _, co := range typesys.Coercions() {
		if co.From.Equals(out) && filter.Accepts(r.catalog, co.To) {
			return Resolution{Status: Coerced, Coercion: &co}
		}
	}

	var candidates []*registry.Descriptor
	seen := make(map[string]bool)
	for _, d := range r.registry.Descriptors() {
		if !filter.Accepts(r.catalog, d.Target) {
			continue
		}
		if !d.Matches(r.catalog, out, d.Target) {
			continue
		}
		k := typesys.Key(d.Target)
		if seen[k] {
			continue
		}
		seen[k] = true
		candidates = append(candidates, d)
	}

	switch len(candidates) {
	case 0:
		return Resolution{Status: Incompatible}
	case 1:
		return Resolution{Status: Convertible, Converter: candidates[0], Candidates: candidates}
	default:
		return Resolution{Status: Ambiguous, Candidates: candidates}
	}
}
