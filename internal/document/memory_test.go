package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
	"github.com/vk/nodesync/internal/typesys"
	"github.com/zclconf/go-cty/cty"
)

func key(raw string) nodeid.PortKey {
	return nodeid.MustParse(raw)
}

// newDoc builds: src(out:number, next:flow) ; dst(in:number, exec:flow) ; sink(in:number)
func newDoc(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory()
	require.NoError(t, m.AddNode(model.NewNode("src", "const").MustAddPort(
		model.ValueOut("out", cty.Number),
		model.FlowOut("next"),
	)))
	require.NoError(t, m.AddNode(model.NewNode("dst", "print").MustAddPort(
		model.FlowIn("exec"),
		model.ValueIn("in", cty.Number),
	)))
	require.NoError(t, m.AddNode(model.NewNode("sink", "print").MustAddPort(
		model.ValueIn("in", cty.Number),
	)))
	return m
}

func TestMemory_AddNode(t *testing.T) {
	m := newDoc(t)

	err := m.AddNode(model.NewNode("src", "const"))
	assert.ErrorIs(t, err, ErrDuplicateNode)
	assert.Error(t, m.AddNode(model.NewNode("bad id", "const")))

	ids := []nodeid.ID{}
	for _, n := range m.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []nodeid.ID{"src", "dst", "sink"}, ids, "nodes keep insertion order")
	assert.Equal(t, 3, m.Len())

	p, ok := m.Port(key("dst.in"))
	require.True(t, ok)
	assert.Equal(t, model.Input, p.Direction)
	_, ok = m.Port(key("dst.missing"))
	assert.False(t, ok)
}

func TestMemory_SetConnection(t *testing.T) {
	t.Run("value reference is stored on the input", func(t *testing.T) {
		m := newDoc(t)
		require.NoError(t, m.SetConnection(key("dst.in"), key("src.out")))

		p, _ := m.Port(key("dst.in"))
		assert.Equal(t, key("src.out"), p.Ref)
		assert.Equal(t, []nodeid.PortKey{key("dst.in")}, m.ConnectedPorts(key("src.out")))
		assert.Equal(t, []nodeid.PortKey{key("src.out")}, m.ConnectedPorts(key("dst.in")))
	})

	t.Run("flow reference is stored on the output", func(t *testing.T) {
		m := newDoc(t)
		require.NoError(t, m.SetConnection(key("src.next"), key("dst.exec")))
		edges := m.Edges()
		require.Len(t, edges, 1)
		assert.Equal(t, model.Flow, edges[0].Kind)
		assert.Equal(t, key("src.next"), edges[0].From)
	})

	t.Run("fan-out from one output", func(t *testing.T) {
		m := newDoc(t)
		require.NoError(t, m.SetConnection(key("dst.in"), key("src.out")))
		require.NoError(t, m.SetConnection(key("sink.in"), key("src.out")))
		assert.Equal(t, []nodeid.PortKey{key("dst.in"), key("sink.in")}, m.ConnectedPorts(key("src.out")))
	})

	t.Run("replacing a reference updates the index", func(t *testing.T) {
		m := newDoc(t)
		require.NoError(t, m.AddNode(model.NewNode("other", "const").MustAddPort(model.ValueOut("out", cty.Number))))
		require.NoError(t, m.SetConnection(key("dst.in"), key("src.out")))
		require.NoError(t, m.SetConnection(key("dst.in"), key("other.out")))

		assert.Empty(t, m.ConnectedPorts(key("src.out")))
		assert.Equal(t, []nodeid.PortKey{key("dst.in")}, m.ConnectedPorts(key("other.out")))
	})

	t.Run("invalid endpoints", func(t *testing.T) {
		m := newDoc(t)
		assert.ErrorIs(t, m.SetConnection(key("src.out"), key("dst.in")), ErrNotOwner)
		assert.ErrorIs(t, m.SetConnection(key("dst.in"), key("src.missing")), ErrPortNotFound)
		assert.ErrorIs(t, m.SetConnection(key("dst.in"), key("src.next")), ErrInvalidEndpoint)
		assert.ErrorIs(t, m.SetConnection(key("nope.in"), key("src.out")), ErrPortNotFound)
	})
}

func TestMemory_ClearConnectionIsSymmetric(t *testing.T) {
	m := newDoc(t)
	require.NoError(t, m.SetConnection(key("dst.in"), key("src.out")))

	prev, err := m.ClearConnection(key("dst.in"))
	require.NoError(t, err)
	assert.Equal(t, key("src.out"), prev)
	assert.Empty(t, m.ConnectedPorts(key("src.out")))
	assert.Empty(t, m.ConnectedPorts(key("dst.in")))

	prev, err = m.ClearConnection(key("dst.in"))
	require.NoError(t, err)
	assert.True(t, prev.IsZero(), "clearing an empty port is a no-op")
}

func TestMemory_EdgesOf(t *testing.T) {
	m := newDoc(t)
	require.NoError(t, m.SetConnection(key("dst.in"), key("src.out")))
	require.NoError(t, m.SetConnection(key("sink.in"), key("src.out")))
	require.NoError(t, m.SetConnection(key("src.next"), key("dst.exec")))

	src := m.EdgesOf("src")
	require.Len(t, src, 3)
	for _, e := range src {
		assert.True(t, e.Touches("src"))
	}

	sink := m.EdgesOf("sink")
	require.Len(t, sink, 1)
	assert.Equal(t, "src.out->sink.in", sink[0].ID())
	assert.Nil(t, m.EdgesOf("ghost"))
}

func TestMemory_RemoveNode(t *testing.T) {
	m := newDoc(t)
	require.NoError(t, m.SetConnection(key("dst.in"), key("src.out")))

	assert.ErrorIs(t, m.RemoveNode("src"), ErrNodeConnected, "referenced nodes cannot be removed")
	assert.ErrorIs(t, m.RemoveNode("dst"), ErrNodeConnected, "referencing nodes cannot be removed")

	_, err := m.ClearConnection(key("dst.in"))
	require.NoError(t, err)
	require.NoError(t, m.RemoveNode("src"))
	_, ok := m.Node("src")
	assert.False(t, ok)
	assert.ErrorIs(t, m.RemoveNode("src"), ErrNodeNotFound)
	assert.Equal(t, 2, m.Len())
}

func TestMemory_RemoveNode_SeesUnindexedReference(t *testing.T) {
	m := newDoc(t)
	require.NoError(t, m.Edit("sink", func(n *model.Node) { n.Inputs[0].Ref = key("src.out") }))

	assert.ErrorIs(t, m.RemoveNode("src"), ErrNodeConnected)
	_, ok := m.Node("src")
	assert.True(t, ok)
}

func TestMemory_ResetPort(t *testing.T) {
	m := newDoc(t)

	in, _ := m.Port(key("dst.in"))
	in.Value = cty.NumberIntVal(5)
	require.NoError(t, m.ResetPort(key("dst.in")))
	assert.True(t, in.Value.RawEquals(typesys.DefaultLiteral(cty.Number)), "value inputs get a default literal")

	out, _ := m.Port(key("src.out"))
	out.Value = cty.NumberIntVal(5)
	require.NoError(t, m.ResetPort(key("src.out")))
	assert.True(t, out.Value == cty.NilVal, "outputs are cleared to no value")

	require.NoError(t, m.ResetPort(key("src.next")))
	assert.ErrorIs(t, m.ResetPort(key("src.nope")), ErrPortNotFound)
}

func TestMemory_SetProxy(t *testing.T) {
	m := newDoc(t)
	require.NoError(t, m.SetConnection(key("dst.in"), key("src.out")))
	require.NoError(t, m.SetProxy(key("dst.in"), true, true))

	edges := m.EdgesOf("dst")
	require.Len(t, edges, 1)
	assert.True(t, edges[0].Proxy)
	assert.ErrorIs(t, m.SetProxy(key("sink.in"), true, false), ErrNotOwner)

	_, err := m.ClearConnection(key("dst.in"))
	require.NoError(t, err)
	p, _ := m.Port(key("dst.in"))
	assert.False(t, p.Proxy, "clearing drops the proxy flag")
}

func TestMemory_EditRefreshAndDangling(t *testing.T) {
	m := newDoc(t)
	require.NoError(t, m.SetConnection(key("dst.in"), key("src.out")))
	v := m.Version()

	// An external edit drops the referenced output port.
	require.NoError(t, m.Edit("src", func(n *model.Node) {
		n.Outputs = n.Outputs[1:]
	}))
	assert.Greater(t, m.Version(), v)

	dangling := m.Dangling()
	require.Len(t, dangling, 1)
	assert.Equal(t, "src.out->dst.in", dangling[0].ID())

	// An external edit sets a reference directly; Refresh indexes it.
	require.NoError(t, m.Edit("sink", func(n *model.Node) {
		n.Inputs[0].Ref = key("dst.in")
	}))
	assert.NotContains(t, m.ConnectedPorts(key("dst.in")), key("sink.in"))
	require.NoError(t, m.Refresh())
	assert.Equal(t, []nodeid.PortKey{key("sink.in"), key("src.out")}, m.ConnectedPorts(key("dst.in")))
	assert.Len(t, m.Dangling(), 2, "an input referencing an input is dangling too")

	assert.ErrorIs(t, m.Edit("ghost", func(*model.Node) {}), ErrNodeNotFound)
}
