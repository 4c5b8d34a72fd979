package resolver

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/vk/nodesync/internal/registry"
	"github.com/vk/nodesync/internal/typesys"
	"github.com/zclconf/go-cty/cty"
)

var typePool = []cty.Type{
	cty.String, cty.Number, cty.Bool, typesys.Int, typesys.Float,
	cty.List(cty.String), cty.DynamicPseudoType,
}

// Property: without converters, Resolve is Compatible exactly when the filter
// accepts the type, and never reports a converter.
func TestProperty_ConverterFreeSoundness(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	r, err := New(typesys.NewCatalog(), registry.New())
	if err != nil {
		t.Fatal(err)
	}

	properties.Property("direct acceptance matches filter", prop.ForAll(
		func(outIdx, inIdx int) bool {
			out := typePool[outIdx]
			filter := typesys.Accepting(typePool[inIdx])
			res := r.Resolve(out, filter)
			if res.Converter != nil || len(res.Candidates) > 0 {
				return false
			}
			accepted := filter.Accepts(r.Catalog(), out)
			if accepted {
				return res.Status == Compatible
			}
			_, coercible := typesys.FindCoercion(out, typePool[inIdx])
			if coercible {
				return res.Status == Coerced
			}
			return res.Status == Incompatible
		},
		gen.IntRange(0, len(typePool)-1),
		gen.IntRange(0, len(typePool)-1),
	))

	properties.TestingRun(t)
}

// Property: resolving the same pair twice yields the same status, whether the
// second answer comes from the cache or not.
func TestProperty_CacheTransparency(t *testing.T) {
	properties := gopter.NewProperties(nil)

	reg := registry.New()
	reg.Register(converter("number-to-text", cty.Number, cty.String))
	reg.Register(converter("text-to-bool", cty.String, cty.Bool))
	cached, err := New(typesys.NewCatalog(), reg)
	if err != nil {
		t.Fatal(err)
	}
	uncached, err := New(cached.Catalog(), reg, WithCacheSize(0))
	if err != nil {
		t.Fatal(err)
	}

	properties.Property("cached equals uncached", prop.ForAll(
		func(outIdx, a, b int) bool {
			filter := typesys.Accepting(typePool[a], typePool[b])
			first := cached.Resolve(typePool[outIdx], filter)
			second := cached.Resolve(typePool[outIdx], filter)
			fresh := uncached.Resolve(typePool[outIdx], filter)
			return first.Status == second.Status && first.Status == fresh.Status
		},
		gen.IntRange(0, len(typePool)-1),
		gen.IntRange(0, len(typePool)-1),
		gen.IntRange(0, len(typePool)-1),
	))

	properties.TestingRun(t)
}
