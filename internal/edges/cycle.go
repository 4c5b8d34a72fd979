package edges

import (
	"fmt"

	"github.com/vk/nodesync/internal/dag"
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
)

// flowCycle reports whether connecting src to dst would let control return to
// src's node without passing through a re-entrant node. The returned path
// starts and ends at src's node.
func (m *Manager) flowCycle(src, dst *model.Port) ([]nodeid.ID, bool) {
	srcNode, ok := m.doc.Node(src.Node)
	if !ok {
		return nil, false
	}
	dstNode, ok := m.doc.Node(dst.Node)
	if !ok {
		return nil, false
	}
	if srcNode.Reentrant || dstNode.Reentrant {
		return nil, false
	}

	g := m.flowGraphFrom(dst.Node, src.Key())
	path, found := g.PathTo(dst.Node, src.Node, m.isReentrant)
	if !found {
		return nil, false
	}
	return append([]nodeid.ID{src.Node}, path...), true
}

// flowGraphFrom collects the control-flow subgraph reachable from start,
// following the adjacency index. The edge owned by skip is ignored because it
// is about to be replaced. Re-entrant nodes are included but not expanded.
func (m *Manager) flowGraphFrom(start nodeid.ID, skip nodeid.PortKey) *dag.Graph {
	g := dag.New()
	g.AddNode(start)

	seen := map[nodeid.ID]bool{start: true}
	queue := []nodeid.ID{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id != start && m.isReentrant(id) {
			continue
		}
		for _, e := range m.doc.EdgesOf(id) {
			if e.Kind != model.Flow || e.From.Node != id || e.Owner() == skip {
				continue
			}
			if _, ok := m.doc.Node(e.To.Node); !ok {
				continue
			}
			g.AddNode(e.To.Node)
			_ = g.AddEdge(id, e.To.Node)
			if !seen[e.To.Node] {
				seen[e.To.Node] = true
				queue = append(queue, e.To.Node)
			}
		}
	}
	return g
}

func (m *Manager) isReentrant(id nodeid.ID) bool {
	n, ok := m.doc.Node(id)
	return ok && n.Reentrant
}

// AuditFlow checks the whole document for control-flow cycles that do not
// pass through a re-entrant node. Such cycles can only appear through
// external edits, since Connect rejects them.
func (m *Manager) AuditFlow() error {
	g := dag.New()
	for _, n := range m.doc.Nodes() {
		g.AddNode(n.ID)
	}
	for _, e := range m.doc.Edges() {
		if e.Kind != model.Flow {
			continue
		}
		if _, ok := m.doc.Node(e.To.Node); !ok {
			continue
		}
		if err := g.AddEdge(e.From.Node, e.To.Node); err != nil {
			return fmt.Errorf("flow audit: %w", err)
		}
	}
	if err := g.DetectCycles(m.isReentrant); err != nil {
		return fmt.Errorf("flow audit: %w: %w", ErrIllegalCycle, err)
	}
	return nil
}
