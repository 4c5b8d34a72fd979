package document

import (
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
)

// Provider is the document boundary the engine works against. Enumeration is
// in a stable order: nodes in insertion order, ports in declaration order.
type Provider interface {
	Nodes() []*model.Node
	Node(id nodeid.ID) (*model.Node, bool)
	Port(key nodeid.PortKey) (*model.Port, bool)
	Len() int

	AddNode(n *model.Node) error
	RemoveNode(id nodeid.ID) error
	// Edit applies an external change to a node's fields. The adjacency
	// index is not updated until Refresh.
	Edit(id nodeid.ID, fn func(n *model.Node)) error

	// SetConnection stores target as owner's reference, replacing any
	// previous one.
	SetConnection(owner, target nodeid.PortKey) error
	// ClearConnection empties owner's reference and returns the previous target.
	ClearConnection(owner nodeid.PortKey) (nodeid.PortKey, error)
	// ConnectedPorts returns every port connected to key, from either side.
	ConnectedPorts(key nodeid.PortKey) []nodeid.PortKey
	// EdgesOf returns every edge touching a port of the node.
	EdgesOf(id nodeid.ID) []model.Edge
	// Edges returns every stored reference as an edge.
	Edges() []model.Edge
	// SetProxy updates the proxy flag of the edge owned by owner.
	SetProxy(owner nodeid.PortKey, proxy, pinned bool) error
	// ResetPort restores a port's value after it loses its connection.
	ResetPort(key nodeid.PortKey) error

	// Dangling returns the edges whose reference no longer resolves.
	Dangling() []model.Edge

	// Refresh reconciles externally edited fields with the adjacency index.
	Refresh() error
	// Version increments on every mutation.
	Version() uint64
}
