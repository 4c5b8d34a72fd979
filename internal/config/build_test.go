package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
	"github.com/vk/nodesync/internal/typesys"
	"github.com/zclconf/go-cty/cty"
)

func TestDeclareTypes(t *testing.T) {
	t.Run("declares in dependency order", func(t *testing.T) {
		c := typesys.NewCatalog()
		err := DeclareTypes(c, []*TypeDefinition{
			{Name: "kelvin", Implements: []string{"temperature"}},
			{Name: "temperature", Implements: []string{"number"}},
		})
		require.NoError(t, err)

		kelvin, ok := c.Lookup("kelvin")
		require.True(t, ok)
		assert.True(t, c.Implements(kelvin, cty.Number))
	})

	t.Run("unknown supertype", func(t *testing.T) {
		err := DeclareTypes(typesys.NewCatalog(), []*TypeDefinition{
			{Name: "kelvin", Implements: []string{"heat"}},
		})
		require.EqualError(t, err, `type "kelvin": unknown supertype "heat"`)
	})

	t.Run("circular", func(t *testing.T) {
		err := DeclareTypes(typesys.NewCatalog(), []*TypeDefinition{
			{Name: "a", Implements: []string{"b"}},
			{Name: "b", Implements: []string{"a"}},
		})
		require.EqualError(t, err, `type "a": circular implements declaration`)
	})

	t.Run("duplicate", func(t *testing.T) {
		err := DeclareTypes(typesys.NewCatalog(), []*TypeDefinition{{Name: "a"}, {Name: "a"}})
		require.Error(t, err)
	})
}

func TestModel_BuildDocument(t *testing.T) {
	seven := cty.NumberIntVal(7)
	m := &Model{
		Nodes: []*NodeDefinition{
			{
				ID: "src", Type: "constant", Label: "Seven",
				Ports: []*PortDefinition{
					{ID: "then", Kind: model.Flow, Direction: model.Output},
					{ID: "out", Kind: model.Value, Direction: model.Output, Type: typesys.Int},
				},
			},
			{
				ID: "sink", Type: "print", Reentrant: true,
				Ports: []*PortDefinition{
					{ID: "exec", Kind: model.Flow, Direction: model.Input},
					{ID: "count", Kind: model.Value, Direction: model.Input, Type: typesys.Int, Default: &seven},
					{ID: "text", Kind: model.Value, Direction: model.Input, Type: cty.String, Accepts: []cty.Type{cty.String, cty.Bool}},
					{ID: "anything", Kind: model.Value, Direction: model.Input},
				},
			},
		},
	}

	doc, err := m.BuildDocument(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, doc.Len())

	src, ok := doc.Node("src")
	require.True(t, ok)
	assert.Equal(t, "Seven", src.DisplayName())
	assert.Len(t, src.FlowOutputs(), 1)

	sink, ok := doc.Node("sink")
	require.True(t, ok)
	assert.True(t, sink.Reentrant)
	require.NotNil(t, sink.FlowInput())

	count, ok := doc.Port(nodeid.Key("sink", "count"))
	require.True(t, ok)
	assert.Equal(t, "7", typesys.Format(count.Value))

	text, ok := doc.Port(nodeid.Key("sink", "text"))
	require.True(t, ok)
	assert.Equal(t, []cty.Type{cty.String, cty.Bool}, text.Filter.Allow)

	anything, ok := doc.Port(nodeid.Key("sink", "anything"))
	require.True(t, ok)
	assert.True(t, anything.Type.Equals(cty.DynamicPseudoType))
}

func TestModel_BuildNodes_Errors(t *testing.T) {
	half := cty.NumberFloatVal(0.5)
	cases := []struct {
		name    string
		port    *PortDefinition
		wantErr string
	}{
		{
			name:    "fractional default for int",
			port:    &PortDefinition{ID: "n", Kind: model.Value, Direction: model.Input, Type: typesys.Int, Default: &half},
			wantErr: "default for input 'n'",
		},
		{
			name:    "default on output",
			port:    &PortDefinition{ID: "n", Kind: model.Value, Direction: model.Output, Type: cty.Number, Default: &half},
			wantErr: "output 'n' cannot declare a default",
		},
		{
			name:    "accepts on flow",
			port:    &PortDefinition{ID: "exec", Kind: model.Flow, Direction: model.Input, Accepts: []cty.Type{cty.String}},
			wantErr: "flow port 'exec'",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := &Model{Nodes: []*NodeDefinition{{ID: "a", Type: "t", Ports: []*PortDefinition{tc.port}}}}
			_, err := m.BuildNodes()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	t.Run("second flow input", func(t *testing.T) {
		m := &Model{Nodes: []*NodeDefinition{{ID: "a", Type: "t", Ports: []*PortDefinition{
			{ID: "x", Kind: model.Flow, Direction: model.Input},
			{ID: "y", Kind: model.Flow, Direction: model.Input},
		}}}}
		_, err := m.BuildNodes()
		require.Error(t, err)
	})
}
