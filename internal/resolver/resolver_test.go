package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/registry"
	"github.com/vk/nodesync/internal/typesys"
	"github.com/zclconf/go-cty/cty"
)

func converter(name string, from, to cty.Type) *registry.Descriptor {
	return &registry.Descriptor{
		Name:   name,
		Source: from,
		Target: to,
		CreateAdapterNode: func(ctx context.Context, req registry.AdapterRequest) (*model.Node, error) {
			return model.NewNode("adapter", name), nil
		},
		InPort:  "in",
		OutPort: "out",
	}
}

func newResolver(t *testing.T, descs ...*registry.Descriptor) (*Resolver, *registry.Registry, *typesys.Catalog) {
	t.Helper()
	cat := typesys.NewCatalog()
	reg := registry.New()
	for _, d := range descs {
		reg.Register(d)
	}
	r, err := New(cat, reg)
	require.NoError(t, err)
	return r, reg, cat
}

func TestResolve_Rules(t *testing.T) {
	r, _, cat := newResolver(t,
		converter("number-to-text", cty.Number, cty.String),
		converter("text-to-bool", cty.String, cty.Bool),
	)
	shape, err := cat.Declare("shape")
	require.NoError(t, err)
	circle, err := cat.Declare("circle", "shape")
	require.NoError(t, err)

	testCases := []struct {
		name          string
		out           cty.Type
		filter        typesys.Filter
		status        Status
		converterName string
	}{
		{name: "identity", out: cty.String, filter: typesys.Accepting(cty.String), status: Compatible},
		{name: "declared subtype", out: circle, filter: typesys.Accepting(shape), status: Compatible},
		{name: "open filter", out: cty.Bool, filter: typesys.Filter{}, status: Compatible},
		{name: "int coerced to text", out: typesys.Int, filter: typesys.Accepting(cty.String), status: Coerced},
		{name: "float coerced to text", out: typesys.Float, filter: typesys.Accepting(cty.String), status: Coerced},
		{name: "number needs converter", out: cty.Number, filter: typesys.Accepting(cty.String), status: Convertible, converterName: "number-to-text"},
		{name: "no rule", out: cty.Bool, filter: typesys.Accepting(cty.Number), status: Incompatible},
		{name: "untyped output", out: cty.NilType, filter: typesys.Accepting(cty.String), status: Incompatible},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := r.Resolve(tc.out, tc.filter)
			assert.Equal(t, tc.status, res.Status)
			if tc.converterName != "" {
				require.NotNil(t, res.Converter)
				assert.Equal(t, tc.converterName, res.Converter.Name)
			} else {
				assert.Nil(t, res.Converter)
			}
		})
	}
}

func TestResolve_CoercionBeforeConverters(t *testing.T) {
	r, _, _ := newResolver(t, converter("int-to-text", typesys.Int, cty.String))
	res := r.Resolve(typesys.Int, typesys.Accepting(cty.String))
	assert.Equal(t, Coerced, res.Status)
	require.NotNil(t, res.Coercion)
	assert.True(t, res.Coercion.To.Equals(cty.String))
}

func TestResolve_Ambiguous(t *testing.T) {
	r, _, _ := newResolver(t,
		converter("number-to-text", cty.Number, cty.String),
		converter("number-to-text-fancy", cty.Number, cty.String),
		converter("number-to-bool", cty.Number, cty.Bool),
	)

	t.Run("several reachable members", func(t *testing.T) {
		res := r.Resolve(cty.Number, typesys.Accepting(cty.String, cty.Bool))
		assert.Equal(t, Ambiguous, res.Status)
		require.Len(t, res.Candidates, 2)
		assert.Equal(t, "number-to-text", res.Candidates[0].Name, "first descriptor per target wins")
		assert.Equal(t, "number-to-bool", res.Candidates[1].Name)
		assert.Nil(t, res.Converter)
		assert.False(t, res.Direct())
		assert.Len(t, res.TargetTypes(), 2)
	})

	t.Run("several descriptors for one member is not ambiguous", func(t *testing.T) {
		res := r.Resolve(cty.Number, typesys.Accepting(cty.String))
		assert.Equal(t, Convertible, res.Status)
		assert.Equal(t, "number-to-text", res.Converter.Name)
	})
}

func TestCanConnectAndFindConverter(t *testing.T) {
	r, _, _ := newResolver(t, converter("number-to-text", cty.Number, cty.String))

	assert.True(t, r.CanConnect(cty.String, typesys.Accepting(cty.String)))
	assert.True(t, r.CanConnect(typesys.Int, typesys.Accepting(cty.String)))
	assert.False(t, r.CanConnect(cty.Number, typesys.Accepting(cty.String)), "a converter is not a direct connection")

	d := r.FindConverter(cty.Number, cty.String)
	require.NotNil(t, d)
	assert.Equal(t, "number-to-text", d.Name)
	assert.Nil(t, r.FindConverter(cty.Bool, cty.String))
}

func TestResolve_CacheInvalidation(t *testing.T) {
	r, reg, _ := newResolver(t, converter("number-to-text", cty.Number, cty.String))
	filter := typesys.Accepting(cty.String)

	assert.Equal(t, Convertible, r.Resolve(cty.Number, filter).Status)
	assert.Equal(t, Convertible, r.Resolve(cty.Number, filter).Status)
	hits, misses := r.CacheStats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)

	reg.Unregister("number-to-text")
	assert.Equal(t, Incompatible, r.Resolve(cty.Number, filter).Status, "registry change must purge cached answers")
}

func TestResolve_PredicateFiltersBypassCache(t *testing.T) {
	r, _, _ := newResolver(t)
	allowLists := typesys.Filter{Predicate: func(t cty.Type) bool { return t.IsListType() }}

	assert.Equal(t, Compatible, r.Resolve(cty.List(cty.String), allowLists).Status)
	assert.Equal(t, Incompatible, r.Resolve(cty.String, allowLists).Status)
	hits, misses := r.CacheStats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}

func TestNew_WithoutCache(t *testing.T) {
	r, err := New(typesys.NewCatalog(), registry.New(), WithCacheSize(0))
	require.NoError(t, err)
	assert.Equal(t, Compatible, r.Resolve(cty.String, typesys.Accepting(cty.String)).Status)
	hits, misses := r.CacheStats()
	assert.Zero(t, hits+misses)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "ambiguous", Ambiguous.String())
	assert.Equal(t, "Status(42)", Status(42).String())
}
