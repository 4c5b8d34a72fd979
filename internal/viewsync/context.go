package viewsync

import (
	"slices"
	"strings"

	"github.com/vk/nodesync/internal/nodeid"
)

// ViewContext is what one Synchronizer knows about the visual layer of one
// open document: the nodes and edges it has rendered and the nodes whose
// reconciliation failed. It is owned by the synchronizer and reset when the
// document is swapped.
type ViewContext struct {
	nodes   map[nodeid.ID]VisualNode
	edges   map[string]VisualEdge
	byNode  map[nodeid.ID]map[string]struct{}
	flagged map[nodeid.ID]string
}

func newViewContext() *ViewContext {
	v := &ViewContext{}
	v.reset()
	return v
}

func (v *ViewContext) reset() {
	v.nodes = make(map[nodeid.ID]VisualNode)
	v.edges = make(map[string]VisualEdge)
	v.byNode = make(map[nodeid.ID]map[string]struct{})
	v.flagged = make(map[nodeid.ID]string)
}

// Node returns the rendered node with the given id.
func (v *ViewContext) Node(id nodeid.ID) (VisualNode, bool) {
	n, ok := v.nodes[id]
	return n, ok
}

// NodeIDs returns the ids of all rendered nodes, sorted.
func (v *ViewContext) NodeIDs() []nodeid.ID {
	ids := make([]nodeid.ID, 0, len(v.nodes))
	for id := range v.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// knownIDs returns the ids of rendered and flagged nodes, sorted.
func (v *ViewContext) knownIDs() []nodeid.ID {
	ids := v.NodeIDs()
	for id := range v.flagged {
		if _, ok := v.nodes[id]; !ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Edge returns the rendered edge with the given id.
func (v *ViewContext) Edge(id string) (VisualEdge, bool) {
	e, ok := v.edges[id]
	return e, ok
}

// Edges returns all rendered edges, sorted by id.
func (v *ViewContext) Edges() []VisualEdge {
	out := make([]VisualEdge, 0, len(v.edges))
	for _, e := range v.edges {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b VisualEdge) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Flagged returns the nodes whose last reconciliation failed, with the error.
func (v *ViewContext) Flagged() map[nodeid.ID]string {
	out := make(map[nodeid.ID]string, len(v.flagged))
	for id, msg := range v.flagged {
		out[id] = msg
	}
	return out
}

// IsFlagged reports whether the node's last reconciliation failed.
func (v *ViewContext) IsFlagged(id nodeid.ID) bool {
	_, ok := v.flagged[id]
	return ok
}

// edgesTouching returns the ids of rendered edges with an endpoint on id.
func (v *ViewContext) edgesTouching(id nodeid.ID) []string {
	set := v.byNode[id]
	out := make([]string, 0, len(set))
	for eid := range set {
		out = append(out, eid)
	}
	slices.Sort(out)
	return out
}

func (v *ViewContext) putNode(n VisualNode) {
	v.nodes[n.ID] = n
	delete(v.flagged, n.ID)
}

func (v *ViewContext) dropNode(id nodeid.ID) {
	delete(v.nodes, id)
	delete(v.flagged, id)
}

func (v *ViewContext) flag(id nodeid.ID, msg string) {
	v.flagged[id] = msg
}

func (v *ViewContext) putEdge(e VisualEdge) {
	if old, ok := v.edges[e.ID]; ok {
		v.unlink(old)
	}
	v.edges[e.ID] = e
	v.link(e.From.Node, e.ID)
	v.link(e.To.Node, e.ID)
}

func (v *ViewContext) dropEdge(id string) {
	if e, ok := v.edges[id]; ok {
		v.unlink(e)
		delete(v.edges, id)
	}
}

func (v *ViewContext) link(node nodeid.ID, eid string) {
	set, ok := v.byNode[node]
	if !ok {
		set = make(map[string]struct{})
		v.byNode[node] = set
	}
	set[eid] = struct{}{}
}

func (v *ViewContext) unlink(e VisualEdge) {
	for _, node := range []nodeid.ID{e.From.Node, e.To.Node} {
		if set, ok := v.byNode[node]; ok {
			delete(set, e.ID)
			if len(set) == 0 {
				delete(v.byNode, node)
			}
		}
	}
}
