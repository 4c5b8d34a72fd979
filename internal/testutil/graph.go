package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/nodesync/internal/document"
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

// Key parses a `node.port` key and panics on malformed input.
func Key(raw string) nodeid.PortKey {
	return nodeid.MustParse(raw)
}

// NewDoc creates an in-memory document holding the given nodes.
func NewDoc(t *testing.T, nodes ...*model.Node) *document.Memory {
	t.Helper()
	doc := document.NewMemory()
	for _, n := range nodes {
		require.NoError(t, doc.AddNode(n))
	}
	return doc
}

// ValueNode creates a node with one typed input `in` and one typed output `out`.
// A cty.NilType argument omits that port.
func ValueNode(id nodeid.ID, in, out cty.Type) *model.Node {
	n := model.NewNode(id, "value")
	if in != cty.NilType {
		n.MustAddPort(model.ValueIn("in", in))
	}
	if out != cty.NilType {
		n.MustAddPort(model.ValueOut("out", out))
	}
	return n
}

// FlowNode creates a node with the flow input `exec` and the given branches.
func FlowNode(id nodeid.ID, branches ...nodeid.PortID) *model.Node {
	n := model.NewNode(id, "flow").MustAddPort(model.FlowIn("exec"))
	for _, b := range branches {
		n.MustAddPort(model.FlowOut(b))
	}
	return n
}

// Reentrant marks a node re-entrant and returns it.
func Reentrant(n *model.Node) *model.Node {
	n.Reentrant = true
	return n
}

// Reroute marks a node as a reroute and returns it.
func Reroute(n *model.Node) *model.Node {
	n.Reroute = true
	return n
}

// Grid creates count value nodes `n0`..`n{count-1}`, each with a number input
// and output, and chains them together through their value ports.
func Grid(t *testing.T, count int) *document.Memory {
	t.Helper()
	doc := document.NewMemory()
	for i := 0; i < count; i++ {
		require.NoError(t, doc.AddNode(ValueNode(nodeid.ID(fmt.Sprintf("n%d", i)), cty.Number, cty.Number)))
	}
	for i := 1; i < count; i++ {
		owner := nodeid.Key(nodeid.ID(fmt.Sprintf("n%d", i)), "in")
		target := nodeid.Key(nodeid.ID(fmt.Sprintf("n%d", i-1)), "out")
		require.NoError(t, doc.SetConnection(owner, target))
	}
	return doc
}
