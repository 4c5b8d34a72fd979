package dag

import (
	"sync"

	"github.com/vk/nodesync/internal/nodeid"
)

// Graph is a collection of nodes and their successor links.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[nodeid.ID]*node
}

// node represents a single vertex in the graph. It is un-exported to
// enforce interaction with the graph via the public API.
type node struct {
	id nodeid.ID
	// preds holds the nodes that transfer control to this node.
	preds map[nodeid.ID]*node
	// succs holds the nodes this node transfers control to.
	succs map[nodeid.ID]*node
}
