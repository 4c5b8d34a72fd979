package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/typesys"
	"github.com/zclconf/go-cty/cty"
)

func noopFactory(ctx context.Context, req AdapterRequest) (*model.Node, error) {
	return model.NewNode("adapter", "convert"), nil
}

func descriptor(name string, from, to cty.Type) *Descriptor {
	return &Descriptor{
		Name:              name,
		Source:            from,
		Target:            to,
		CreateAdapterNode: noopFactory,
		InPort:            "in",
		OutPort:           "out",
	}
}

func TestRegistry_RegisterAndOrder(t *testing.T) {
	r := New()
	v0 := r.Version()

	r.Register(descriptor("b", cty.Number, cty.String))
	r.Register(descriptor("a", cty.Bool, cty.String))

	names := []string{}
	for _, d := range r.Descriptors() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"b", "a"}, names, "registration order must be preserved")
	assert.Equal(t, 2, r.Len())
	assert.Greater(t, r.Version(), v0)

	d, ok := r.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "a (bool -> string)", d.String())
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := New()
	r.Register(descriptor("x", cty.Number, cty.String))
	assert.PanicsWithValue(t, "converter with name 'x' already registered", func() {
		r.Register(descriptor("x", cty.Bool, cty.String))
	})
	assert.Panics(t, func() { r.Register(&Descriptor{}) })
}

func TestRegistry_Unregister(t *testing.T) {
	r := New()
	r.Register(descriptor("a", cty.Number, cty.String))
	r.Register(descriptor("b", cty.Bool, cty.String))
	r.Register(descriptor("c", cty.String, cty.Number))
	v := r.Version()

	assert.True(t, r.Unregister("b"))
	assert.False(t, r.Unregister("b"))
	assert.Greater(t, r.Version(), v)

	ds := r.Descriptors()
	require.Len(t, ds, 2)
	assert.Equal(t, "a", ds[0].Name)
	assert.Equal(t, "c", ds[1].Name)
	_, ok := r.Lookup("b")
	assert.False(t, ok)
}

func TestDescriptor_Matches(t *testing.T) {
	c := typesys.NewCatalog()
	d := descriptor("num-to-text", cty.Number, cty.String)

	assert.True(t, d.Matches(c, cty.Number, cty.String))
	assert.True(t, d.Matches(c, typesys.Int, cty.String), "subtypes of the source match")
	assert.False(t, d.Matches(c, cty.Bool, cty.String))
	assert.False(t, d.Matches(c, cty.Number, cty.Bool))

	d.CanApply = func(from, to cty.Type) bool { return !from.Equals(typesys.Int) }
	assert.False(t, d.Matches(c, typesys.Int, cty.String))
	assert.True(t, d.Matches(c, cty.Number, cty.String))
}

func TestRegistry_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		r := New()
		r.Register(descriptor("ok", cty.Number, cty.String))
		assert.NoError(t, r.Validate(ctx))
	})

	t.Run("collects every problem", func(t *testing.T) {
		r := New()
		r.Register(&Descriptor{Name: "empty"})
		r.Register(descriptor("same", cty.String, cty.String))

		err := r.Validate(ctx)
		require.Error(t, err)
		msg := err.Error()
		assert.Contains(t, msg, "converter 'empty': source type is not set")
		assert.Contains(t, msg, "converter 'empty': adapter factory is not set")
		assert.Contains(t, msg, "converter 'same': source and target are both 'string'")
	})
}
