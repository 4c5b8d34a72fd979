package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodesync/internal/config"
	"github.com/vk/nodesync/internal/document"
	"github.com/vk/nodesync/internal/edges"
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
	"github.com/vk/nodesync/internal/registry"
	"github.com/vk/nodesync/internal/resolver"
	"github.com/vk/nodesync/internal/scheduler"
	"github.com/vk/nodesync/internal/testutil"
	"github.com/vk/nodesync/internal/typesys"
	"github.com/vk/nodesync/internal/undo"
	"github.com/vk/nodesync/internal/viewsync"
	"github.com/zclconf/go-cty/cty"
)

var key = testutil.Key

type fixture struct {
	editor    *Editor
	renderer  *viewsync.MemoryRenderer
	sched     *scheduler.Manual
	journal   *undo.Journal
	summaries []viewsync.Summary
}

func newFixture(t *testing.T, doc document.Provider, opts ...Option) *fixture {
	t.Helper()
	res, err := resolver.New(typesys.NewCatalog(), registry.New())
	require.NoError(t, err)

	f := &fixture{
		renderer: viewsync.NewMemoryRenderer(),
		sched:    scheduler.NewManual(scheduler.WithAutoAdvance(time.Millisecond)),
		journal:  &undo.Journal{},
	}
	base := []Option{
		WithUndo(f.journal),
		WithOnComplete(func(_ context.Context, sum viewsync.Summary) { f.summaries = append(f.summaries, sum) }),
	}
	f.editor = New(doc, viewsync.NewHost(f.renderer, f.sched), res, append(base, opts...)...)
	return f
}

func (f *fixture) run(t *testing.T) {
	t.Helper()
	_, err := f.sched.RunUntilIdle(100000)
	require.NoError(t, err)
	require.True(t, f.editor.Idle())
}

func edgeIDs(es []viewsync.VisualEdge) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

func nodeIDs(ns []viewsync.VisualNode) []nodeid.ID {
	out := make([]nodeid.ID, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}

func TestEditor_ConnectRendersEdge(t *testing.T) {
	ctx := context.Background()
	doc := testutil.NewDoc(t,
		testutil.ValueNode("a", cty.NilType, cty.Number),
		testutil.ValueNode("b", cty.Number, cty.NilType),
	)
	f := newFixture(t, doc)
	f.editor.Reload(ctx)
	f.run(t)
	require.Empty(t, f.renderer.Edges())

	res := f.editor.Connect(ctx, key("b.in"), key("a.out"))
	require.True(t, res.Ok(), res.Detail)
	assert.False(t, f.editor.Idle(), "a mutation requests a partial reload")

	f.run(t)
	assert.Equal(t, []string{"a.out->b.in"}, edgeIDs(f.renderer.Edges()))
	last := f.summaries[len(f.summaries)-1]
	assert.Equal(t, viewsync.Partial, last.Mode)
	assert.Equal(t, []string{"Connect a.out -> b.in"}, f.journal.Labels())
}

func TestEditor_RejectedConnectDoesNotReload(t *testing.T) {
	ctx := context.Background()
	doc := testutil.NewDoc(t,
		testutil.ValueNode("a", cty.NilType, cty.Bool),
		testutil.ValueNode("b", cty.Number, cty.NilType),
	)
	f := newFixture(t, doc)

	res := f.editor.Connect(ctx, key("a.out"), key("b.in"))
	require.False(t, res.Ok())
	assert.ErrorIs(t, res.Err(), edges.ErrTypeMismatch)
	assert.True(t, f.editor.Idle())
	assert.Zero(t, f.editor.Synchronizer().Generation())
}

func TestEditor_DeleteNodePrunesView(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Grid(t, 3))
	f.editor.Reload(ctx)
	f.run(t)
	require.Len(t, f.renderer.Edges(), 2)

	require.NoError(t, f.editor.DeleteNode(ctx, "n1"))
	f.run(t)

	assert.Equal(t, []nodeid.ID{"n0", "n2"}, nodeIDs(f.renderer.Nodes()))
	assert.Empty(t, f.renderer.Edges())
	_, still := f.editor.View().Node("n1")
	assert.False(t, still)
}

func TestEditor_HealsDanglingReferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Grid(t, 3))
	f.editor.Reload(ctx)
	f.run(t)

	err := f.editor.Edit(ctx, "n2", func(n *model.Node) {
		n.Inputs[0].Ref = key("ghost.out")
	})
	require.NoError(t, err)
	f.run(t)

	assert.Equal(t, 1, f.editor.Healed())
	p, ok := f.editor.Document().Port(key("n2.in"))
	require.True(t, ok)
	assert.False(t, p.Connected())
	assert.Equal(t, []string{"n0.out->n1.in"}, edgeIDs(f.renderer.Edges()))
	assert.NoError(t, f.editor.Edges().AuditFlow())

	// The pass that found the reference is followed by one that redraws
	// the healed node.
	require.GreaterOrEqual(t, len(f.summaries), 3)
	assert.Len(t, f.summaries[1].Dangling, 1)
	assert.Empty(t, f.summaries[len(f.summaries)-1].Dangling)
	assert.Empty(t, f.editor.Document().Dangling())
}

func TestEditor_SwapDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Grid(t, 2))
	f.editor.Reload(ctx)
	f.run(t)

	next := testutil.NewDoc(t,
		testutil.ValueNode("x", cty.NilType, cty.String),
		testutil.ValueNode("y", cty.String, cty.NilType),
	)
	f.editor.SwapDocument(ctx, next)
	f.run(t)

	assert.Equal(t, []nodeid.ID{"x", "y"}, nodeIDs(f.renderer.Nodes()))
	assert.Empty(t, f.renderer.Edges())
	assert.Equal(t, viewsync.Full, f.summaries[len(f.summaries)-1].Mode)

	res := f.editor.Connect(ctx, key("x.out"), key("y.in"))
	require.True(t, res.Ok(), "edge manager is rebound to the new document")
	f.run(t)
	assert.Equal(t, []string{"x.out->y.in"}, edgeIDs(f.renderer.Edges()))
}

func TestEditor_DeleteAfterEdit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.NewDoc(t,
		testutil.ValueNode("a", cty.NilType, cty.Number),
		testutil.ValueNode("b", cty.Number, cty.NilType),
	))
	f.editor.Reload(ctx)
	f.run(t)

	require.NoError(t, f.editor.Edit(ctx, "b", func(n *model.Node) { n.Inputs[0].Ref = key("a.out") }))
	require.NoError(t, f.editor.DeleteNode(ctx, "a"))

	assert.Empty(t, f.editor.Document().Dangling(), "no reload is needed to clear the reference")
	f.run(t)
	assert.Zero(t, f.editor.Healed())
	assert.Equal(t, []nodeid.ID{"b"}, nodeIDs(f.renderer.Nodes()))
}

func TestEditor_AddNode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.NewDoc(t))
	require.NoError(t, f.editor.AddNode(ctx, testutil.FlowNode("start", "then")))
	f.run(t)
	assert.Equal(t, []nodeid.ID{"start"}, nodeIDs(f.renderer.Nodes()))

	assert.ErrorIs(t, f.editor.AddNode(ctx, testutil.FlowNode("start")), document.ErrDuplicateNode)
}

func TestEditor_ProxyOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Grid(t, 2))
	f.editor.Reload(ctx)
	f.run(t)

	e := f.editor.Document().Edges()[0]
	require.NoError(t, f.editor.ConvertToProxy(ctx, e))
	f.run(t)
	require.Len(t, f.renderer.Edges(), 1)
	assert.True(t, f.renderer.Edges()[0].Proxy)

	require.NoError(t, f.editor.ResetProxy(ctx, e))
	f.run(t)
	assert.False(t, f.renderer.Edges()[0].Proxy)

	require.NoError(t, f.editor.DisconnectPort(ctx, key("n1.in")))
	f.run(t)
	assert.Empty(t, f.renderer.Edges())
}

func TestEditor_ApplyConnections(t *testing.T) {
	ctx := context.Background()
	doc := testutil.NewDoc(t,
		testutil.FlowNode("start", "then"),
		testutil.FlowNode("step"),
		testutil.ValueNode("num", cty.NilType, cty.Number),
		testutil.ValueNode("flag", cty.NilType, cty.Bool),
		testutil.ValueNode("sink", cty.Number, cty.NilType),
	)
	f := newFixture(t, doc)
	pinned := true

	applied, rejected := f.editor.ApplyConnections(ctx, []*config.ConnectionDefinition{
		{From: key("start.then"), To: key("step.exec"), Proxy: &pinned},
		{From: key("flag.out"), To: key("sink.in")},
		{From: key("num.out"), To: key("sink.in")},
	})
	assert.Equal(t, 2, applied)
	require.Len(t, rejected, 1)
	assert.ErrorIs(t, rejected[0].Result.Err(), edges.ErrTypeMismatch)
	assert.Contains(t, rejected[0].Error(), "connect flag.out -> sink.in")

	owner, ok := f.editor.Document().Port(key("start.then"))
	require.True(t, ok)
	assert.True(t, owner.Proxy)
	assert.True(t, owner.ProxyPinned)

	f.run(t)
	assert.Equal(t, []string{"num.out->sink.in", "start.then->step.exec"}, edgeIDs(f.renderer.Edges()))
}
