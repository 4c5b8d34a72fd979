package edges

import (
	"context"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
	"github.com/vk/nodesync/internal/testutil"
)

func TestConnect_FlowCycles(t *testing.T) {
	ctx := context.Background()

	t.Run("closing a loop is rejected", func(t *testing.T) {
		doc := testutil.NewDoc(t,
			testutil.FlowNode("A", "next"),
			testutil.FlowNode("B", "next"),
			testutil.FlowNode("C", "next"),
		)
		f := newFixture(t, doc)
		require.True(t, f.mgr.Connect(ctx, key("A.next"), key("B.exec")).Ok())
		require.True(t, f.mgr.Connect(ctx, key("B.next"), key("C.exec")).Ok())

		res := f.mgr.Connect(ctx, key("C.next"), key("A.exec"))
		assert.Equal(t, ReasonIllegalCycle, res.Reason)
		assert.ErrorIs(t, res.Err(), ErrIllegalCycle)
		assert.Equal(t, []nodeid.ID{"C", "A", "B", "C"}, res.Cycle)
		assert.Len(t, doc.Edges(), 2)
	})

	t.Run("open chain is accepted", func(t *testing.T) {
		doc := testutil.NewDoc(t,
			testutil.FlowNode("A", "next"),
			testutil.FlowNode("B", "next"),
			testutil.FlowNode("C", "next"),
			testutil.FlowNode("D", "next"),
		)
		f := newFixture(t, doc)
		require.True(t, f.mgr.Connect(ctx, key("A.next"), key("B.exec")).Ok())
		require.True(t, f.mgr.Connect(ctx, key("B.next"), key("C.exec")).Ok())
		assert.True(t, f.mgr.Connect(ctx, key("C.next"), key("D.exec")).Ok())
		assert.NoError(t, f.mgr.AuditFlow())
	})

	t.Run("loop through a re-entrant node is accepted", func(t *testing.T) {
		doc := testutil.NewDoc(t,
			testutil.Reentrant(testutil.FlowNode("loop", "body", "done")),
			testutil.FlowNode("B", "next"),
			testutil.FlowNode("C", "next"),
		)
		f := newFixture(t, doc)
		require.True(t, f.mgr.Connect(ctx, key("loop.body"), key("B.exec")).Ok())
		require.True(t, f.mgr.Connect(ctx, key("B.next"), key("C.exec")).Ok())
		assert.True(t, f.mgr.Connect(ctx, key("C.next"), key("loop.exec")).Ok())
		assert.NoError(t, f.mgr.AuditFlow())
	})

	t.Run("re-entrant node in the middle of the path", func(t *testing.T) {
		doc := testutil.NewDoc(t,
			testutil.FlowNode("A", "next"),
			testutil.Reentrant(testutil.FlowNode("R", "next")),
			testutil.FlowNode("C", "next"),
		)
		f := newFixture(t, doc)
		require.True(t, f.mgr.Connect(ctx, key("A.next"), key("R.exec")).Ok())
		require.True(t, f.mgr.Connect(ctx, key("R.next"), key("C.exec")).Ok())
		assert.True(t, f.mgr.Connect(ctx, key("C.next"), key("A.exec")).Ok())
	})

	t.Run("rewiring the replaced edge is not a loop", func(t *testing.T) {
		doc := testutil.NewDoc(t,
			testutil.FlowNode("A", "next"),
			testutil.FlowNode("B", "next"),
		)
		f := newFixture(t, doc)
		require.True(t, f.mgr.Connect(ctx, key("A.next"), key("B.exec")).Ok())
		assert.Equal(t, ReasonIllegalCycle, f.mgr.Connect(ctx, key("B.next"), key("A.exec")).Reason)

		// Freeing A.next breaks the path, so B.next -> A is fine.
		require.NoError(t, f.mgr.DisconnectPort(ctx, key("A.next")))
		assert.True(t, f.mgr.Connect(ctx, key("B.next"), key("A.exec")).Ok())
	})
}

// Whatever sequence of flow connects is attempted, the accepted ones never
// form a loop that avoids every re-entrant node.
func TestProperty_FlowStaysAcyclic(t *testing.T) {
	const nodes = 6
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("accepted flow edges keep the graph acyclic", prop.ForAll(
		func(moves []int, reentrantMask int) bool {
			ns := make([]*model.Node, nodes)
			for i := range ns {
				n := testutil.FlowNode(nodeid.ID(fmt.Sprintf("f%d", i)), "a", "b")
				n.Reentrant = reentrantMask&(1<<i) != 0
				ns[i] = n
			}
			doc := testutil.NewDoc(t, ns...)
			f := newFixture(t, doc)
			ctx := context.Background()

			for _, mv := range moves {
				from := mv / (nodes * 2)
				to := (mv / 2) % nodes
				branch := "a"
				if mv%2 == 1 {
					branch = "b"
				}
				res := f.mgr.Connect(ctx,
					key(fmt.Sprintf("f%d.%s", from, branch)),
					key(fmt.Sprintf("f%d.exec", to)))
				if from == to && res.Ok() {
					return false
				}
				if err := f.mgr.AuditFlow(); err != nil {
					return false
				}
			}
			return len(doc.Dangling()) == 0
		},
		gen.SliceOfN(25, gen.IntRange(0, nodes*nodes*2-1)),
		gen.IntRange(0, 1<<nodes-1),
	))

	properties.TestingRun(t)
}

// Connect is symmetric: the order in which the two ports are given never
// changes the outcome or the resulting edge.
func TestProperty_ConnectSymmetry(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("swapping the arguments gives the same edge", prop.ForAll(
		func(i, j int) bool {
			build := func() *fixture {
				doc := testutil.Grid(t, 4)
				return newFixture(t, doc)
			}
			a := key(fmt.Sprintf("n%d.out", i))
			b := key(fmt.Sprintf("n%d.in", j))

			left := build().mgr.Connect(context.Background(), a, b)
			right := build().mgr.Connect(context.Background(), b, a)
			if left.Status != right.Status || left.Reason != right.Reason {
				return false
			}
			return !left.Ok() || left.Edge == right.Edge
		},
		gen.IntRange(0, 3),
		gen.IntRange(0, 3),
	))

	properties.TestingRun(t)
}
