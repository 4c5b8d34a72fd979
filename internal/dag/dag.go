package dag

import (
	"fmt"
	"slices"

	"github.com/vk/nodesync/internal/nodeid"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[nodeid.ID]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id nodeid.ID) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{
		id:    id,
		preds: make(map[nodeid.ID]*node),
		succs: make(map[nodeid.ID]*node),
	}
}

// AddEdge records that control flows from `fromID` to `toID`. An error is
// returned if either node does not exist or if the edge would create a
// self-reference.
func (g *Graph) AddEdge(fromID, toID nodeid.ID) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	toNode.preds[fromID] = fromNode
	fromNode.succs[toID] = toNode

	return nil
}

// Successors returns the sorted IDs of the nodes id transfers control to.
func (g *Graph) Successors(id nodeid.ID) ([]nodeid.ID, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedIDs(n.succs), nil
}

// Predecessors returns the sorted IDs of the nodes that transfer control to id.
func (g *Graph) Predecessors(id nodeid.ID) ([]nodeid.ID, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedIDs(n.preds), nil
}

// PathTo searches forward from `from` for `to` and returns the first path
// found, including both ends. Nodes for which blocked returns true are never
// expanded, so a path cannot pass through them; `from` itself is always
// expanded. The search order is deterministic.
func (g *Graph) PathTo(from, to nodeid.ID, blocked func(nodeid.ID) bool) ([]nodeid.ID, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	start, ok := g.nodes[from]
	if !ok {
		return nil, false
	}
	if _, ok := g.nodes[to]; !ok {
		return nil, false
	}

	visited := make(map[nodeid.ID]bool)
	var path []nodeid.ID

	var visit func(n *node, first bool) bool
	visit = func(n *node, first bool) bool {
		path = append(path, n.id)
		if !first && n.id == to {
			return true
		}
		if visited[n.id] {
			path = path[:len(path)-1]
			return false
		}
		visited[n.id] = true

		if first || blocked == nil || !blocked(n.id) {
			for _, id := range sortedIDs(n.succs) {
				if visit(n.succs[id], false) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		return false
	}

	// When from == to the start is not matched on entry, so a path back to
	// it needs at least one edge.
	if visit(start, true) {
		return path, true
	}
	return nil, false
}

// DetectCycles checks the graph for any cycles that do not pass through a
// node for which allowed returns true. It returns a non-nil error naming the
// first node involved in the detected cycle.
func (g *Graph) DetectCycles(allowed func(nodeid.ID) bool) error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Use classic depth-first search with three sets of nodes:
	// permanent: nodes that have been fully visited and are not part of a cycle.
	// temporary: nodes currently in the recursion stack for the current traversal.
	// unvisited: all other nodes.
	permanent := make(map[nodeid.ID]bool)
	temporary := make(map[nodeid.ID]bool)

	var visit func(n *node) error
	visit = func(n *node) error {
		if allowed != nil && allowed(n.id) {
			return nil // Cycles through this node are legal.
		}
		if permanent[n.id] {
			return nil
		}
		if temporary[n.id] {
			return fmt.Errorf("cycle detected involving node '%s'", n.id)
		}

		temporary[n.id] = true
		for _, id := range sortedIDs(n.succs) {
			if err := visit(n.succs[id]); err != nil {
				return err
			}
		}
		delete(temporary, n.id)
		permanent[n.id] = true

		return nil
	}

	ids := make([]nodeid.ID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if !permanent[id] {
			if err := visit(g.nodes[id]); err != nil {
				return err
			}
		}
	}

	return nil
}

func sortedIDs(m map[nodeid.ID]*node) []nodeid.ID {
	ids := make([]nodeid.ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
