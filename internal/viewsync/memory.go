package viewsync

import (
	"slices"
	"strings"
	"sync"

	"github.com/vk/nodesync/internal/nodeid"
)

// OpKind names a renderer call.
type OpKind string

const (
	OpAddNode    OpKind = "add_node"
	OpRemoveNode OpKind = "remove_node"
	OpAddEdge    OpKind = "add_edge"
	OpRemoveEdge OpKind = "remove_edge"
)

// Op is one recorded renderer call.
type Op struct {
	Kind OpKind
	ID   string
}

// MemoryRenderer keeps the visual layer in memory and records every call.
// Headless runs and tests use it in place of a real canvas.
type MemoryRenderer struct {
	mu    sync.Mutex
	nodes map[nodeid.ID]VisualNode
	edges map[string]VisualEdge
	ops   []Op
}

// NewMemoryRenderer creates an empty renderer.
func NewMemoryRenderer() *MemoryRenderer {
	return &MemoryRenderer{
		nodes: make(map[nodeid.ID]VisualNode),
		edges: make(map[string]VisualEdge),
	}
}

// AddVisualNode implements Renderer.
func (r *MemoryRenderer) AddVisualNode(n VisualNode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[n.ID] = n
	r.ops = append(r.ops, Op{Kind: OpAddNode, ID: string(n.ID)})
}

// RemoveVisualNode implements Renderer.
func (r *MemoryRenderer) RemoveVisualNode(id nodeid.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.nodes, id)
	r.ops = append(r.ops, Op{Kind: OpRemoveNode, ID: string(id)})
}

// AddVisualEdge implements Renderer.
func (r *MemoryRenderer) AddVisualEdge(e VisualEdge) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edges[e.ID] = e
	r.ops = append(r.ops, Op{Kind: OpAddEdge, ID: e.ID})
}

// RemoveVisualEdge implements Renderer.
func (r *MemoryRenderer) RemoveVisualEdge(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.edges, id)
	r.ops = append(r.ops, Op{Kind: OpRemoveEdge, ID: id})
}

// Nodes returns the rendered nodes sorted by id.
func (r *MemoryRenderer) Nodes() []VisualNode {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]VisualNode, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b VisualNode) int { return strings.Compare(string(a.ID), string(b.ID)) })
	return out
}

// Edges returns the rendered edges sorted by id.
func (r *MemoryRenderer) Edges() []VisualEdge {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]VisualEdge, 0, len(r.edges))
	for _, e := range r.edges {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b VisualEdge) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Ops returns the recorded calls in order.
func (r *MemoryRenderer) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.ops)
}

// ResetOps forgets the recorded calls but keeps the rendered state.
func (r *MemoryRenderer) ResetOps() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
}
