package document

import (
	"fmt"
	"slices"
	"sync"

	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
	"github.com/vk/nodesync/internal/typesys"
	"github.com/zclconf/go-cty/cty"
)

// Memory implements Provider using maps and a mutex for thread-safe access.
type Memory struct {
	mu      sync.RWMutex
	order   []nodeid.ID
	nodes   map[nodeid.ID]*model.Node
	refs    map[nodeid.PortKey]nodeid.PortKey              // Key: owner port, Value: target port
	owners  map[nodeid.PortKey]map[nodeid.PortKey]struct{} // Key: target port, Value: set of owner ports
	version uint64
}

var _ Provider = (*Memory)(nil)

// NewMemory creates a new, empty in-memory document.
func NewMemory() *Memory {
	return &Memory{
		nodes:  make(map[nodeid.ID]*model.Node),
		refs:   make(map[nodeid.PortKey]nodeid.PortKey),
		owners: make(map[nodeid.PortKey]map[nodeid.PortKey]struct{}),
	}
}

// Nodes returns all nodes in insertion order.
func (m *Memory) Nodes() []*model.Node {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*model.Node, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.nodes[id])
	}
	return out
}

// Node retrieves a single node by id.
func (m *Memory) Node(id nodeid.ID) (*model.Node, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	return n, ok
}

// Port retrieves a single port by key.
func (m *Memory) Port(key nodeid.PortKey) (*model.Port, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.port(key)
}

func (m *Memory) port(key nodeid.PortKey) (*model.Port, bool) {
	n, ok := m.nodes[key.Node]
	if !ok {
		return nil, false
	}
	return n.Port(key.Port)
}

// Len returns the number of nodes.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// Version increments on every mutation.
func (m *Memory) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// AddNode inserts a node. References already present on its ports are indexed.
func (m *Memory) AddNode(n *model.Node) error {
	if err := nodeid.ValidateSegment(string(n.ID)); err != nil {
		return fmt.Errorf("add node: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.nodes[n.ID]; exists {
		return fmt.Errorf("add node '%s': %w", n.ID, ErrDuplicateNode)
	}
	for _, p := range n.Ports() {
		p.Node = n.ID
	}
	m.nodes[n.ID] = n
	m.order = append(m.order, n.ID)
	for _, p := range n.Ports() {
		if p.StoresReference() && p.Connected() {
			m.index(p.Key(), p.Ref)
		}
	}
	m.version++
	return nil
}

// RemoveNode deletes a node. The node must have no connections left in either
// direction; callers disconnect first.
func (m *Memory) RemoveNode(id nodeid.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.nodes[id]
	if !ok {
		return fmt.Errorf("remove node '%s': %w", id, ErrNodeNotFound)
	}
	for _, p := range n.Ports() {
		if p.StoresReference() && p.Connected() {
			return fmt.Errorf("remove node '%s': port '%s' references %s: %w", id, p.ID, p.Ref, ErrNodeConnected)
		}
	}
	// The index may lag behind Edit, so check the port fields themselves.
	for _, otherID := range m.order {
		if otherID == id {
			continue
		}
		for _, op := range m.nodes[otherID].Ports() {
			if op.StoresReference() && op.Connected() && op.Ref.Node == id {
				return fmt.Errorf("remove node '%s': port '%s' is referenced by %s: %w", id, op.Ref.Port, op.Key(), ErrNodeConnected)
			}
		}
	}

	for _, p := range n.Ports() {
		delete(m.owners, p.Key())
		delete(m.refs, p.Key())
	}
	delete(m.nodes, id)
	m.order = slices.DeleteFunc(m.order, func(x nodeid.ID) bool { return x == id })
	m.version++
	return nil
}

// Edit applies fn to the node under the write lock.
func (m *Memory) Edit(id nodeid.ID, fn func(n *model.Node)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.nodes[id]
	if !ok {
		return fmt.Errorf("edit node '%s': %w", id, ErrNodeNotFound)
	}
	fn(n)
	n.ID = id
	for _, p := range n.Ports() {
		p.Node = id
	}
	m.version++
	return nil
}

// SetConnection stores target on owner, replacing any previous reference.
func (m *Memory) SetConnection(owner, target nodeid.PortKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	op, ok := m.port(owner)
	if !ok {
		return portErr("set connection", owner, ErrPortNotFound)
	}
	if !op.StoresReference() {
		return portErr("set connection", owner, ErrNotOwner)
	}
	tp, ok := m.port(target)
	if !ok {
		return portErr("set connection", target, ErrPortNotFound)
	}
	if tp.Kind != op.Kind || tp.Direction == op.Direction || tp.Node == op.Node {
		return portErr("set connection", owner, fmt.Errorf("%w: %s %s cannot reference %s %s", ErrInvalidEndpoint, op.Kind, op.Direction, tp.Kind, tp.Direction))
	}

	if op.Connected() {
		m.unindex(owner, op.Ref)
	}
	op.Ref = target
	op.Proxy, op.ProxyPinned = false, false
	m.index(owner, target)
	m.version++
	return nil
}

// ClearConnection empties owner's reference.
func (m *Memory) ClearConnection(owner nodeid.PortKey) (nodeid.PortKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	op, ok := m.port(owner)
	if !ok {
		return nodeid.PortKey{}, portErr("clear connection", owner, ErrPortNotFound)
	}
	if !op.StoresReference() {
		return nodeid.PortKey{}, portErr("clear connection", owner, ErrNotOwner)
	}
	prev := op.Ref
	if prev.IsZero() {
		return prev, nil
	}
	m.unindex(owner, prev)
	op.Ref = nodeid.PortKey{}
	op.Proxy, op.ProxyPinned = false, false
	m.version++
	return prev, nil
}

// ConnectedPorts returns the ports connected to key, sorted.
func (m *Memory) ConnectedPorts(key nodeid.PortKey) []nodeid.PortKey {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []nodeid.PortKey
	if target, ok := m.refs[key]; ok {
		out = append(out, target)
	}
	for owner := range m.owners[key] {
		out = append(out, owner)
	}
	slices.SortFunc(out, comparePortKeys)
	return out
}

// EdgesOf returns every edge touching a port of node id, sorted.
func (m *Memory) EdgesOf(id nodeid.ID) []model.Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.nodes[id]
	if !ok {
		return nil
	}

	seen := make(map[string]bool)
	var out []model.Edge
	add := func(owner *model.Port) {
		e, ok := model.EdgeFromOwner(owner)
		if !ok || seen[e.ID()] {
			return
		}
		seen[e.ID()] = true
		out = append(out, e)
	}
	for _, p := range n.Ports() {
		add(p)
		for ownerKey := range m.owners[p.Key()] {
			if owner, live := m.port(ownerKey); live && owner.Ref == p.Key() {
				add(owner)
			}
		}
	}
	slices.SortFunc(out, compareEdges)
	return out
}

// Edges returns every reference held by a port, in node then port order.
func (m *Memory) Edges() []model.Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Edge
	for _, id := range m.order {
		for _, p := range m.nodes[id].Ports() {
			if e, ok := model.EdgeFromOwner(p); ok {
				out = append(out, e)
			}
		}
	}
	return out
}

// SetProxy updates the proxy flag of the edge owned by owner.
func (m *Memory) SetProxy(owner nodeid.PortKey, proxy, pinned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	op, ok := m.port(owner)
	if !ok {
		return portErr("set proxy", owner, ErrPortNotFound)
	}
	if !op.StoresReference() || !op.Connected() {
		return portErr("set proxy", owner, ErrNotOwner)
	}
	if op.Proxy == proxy && op.ProxyPinned == pinned {
		return nil
	}
	op.Proxy, op.ProxyPinned = proxy, pinned
	m.version++
	return nil
}

// ResetPort restores a port's value: a Value Input gets the default literal of
// its declared type, a Value Output is cleared to no value. Flow ports carry no
// value and are left alone.
func (m *Memory) ResetPort(key nodeid.PortKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.port(key)
	if !ok {
		return portErr("reset port", key, ErrPortNotFound)
	}
	switch p.Kind {
	case model.Value:
		switch p.Direction {
		case model.Input:
			p.Value = typesys.DefaultLiteral(p.Type)
		case model.Output:
			p.Value = cty.NilVal
		}
		m.version++
	case model.Flow:
	}
	return nil
}

// Refresh rebuilds the adjacency index from the port fields.
func (m *Memory) Refresh() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refs = make(map[nodeid.PortKey]nodeid.PortKey)
	m.owners = make(map[nodeid.PortKey]map[nodeid.PortKey]struct{})
	for _, id := range m.order {
		for _, p := range m.nodes[id].Ports() {
			if p.StoresReference() && p.Connected() {
				m.index(p.Key(), p.Ref)
			}
		}
	}
	return nil
}

// Dangling returns the edges whose reference does not resolve to a live port
// of the opposite kind and direction.
func (m *Memory) Dangling() []model.Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Edge
	for _, id := range m.order {
		for _, p := range m.nodes[id].Ports() {
			e, ok := model.EdgeFromOwner(p)
			if !ok {
				continue
			}
			if t, live := m.port(p.Ref); !live || t.Kind != p.Kind || t.Direction == p.Direction {
				out = append(out, e)
			}
		}
	}
	return out
}

func (m *Memory) index(owner, target nodeid.PortKey) {
	m.refs[owner] = target
	set, ok := m.owners[target]
	if !ok {
		set = make(map[nodeid.PortKey]struct{})
		m.owners[target] = set
	}
	set[owner] = struct{}{}
}

func (m *Memory) unindex(owner, target nodeid.PortKey) {
	delete(m.refs, owner)
	if set, ok := m.owners[target]; ok {
		delete(set, owner)
		if len(set) == 0 {
			delete(m.owners, target)
		}
	}
}

func comparePortKeys(a, b nodeid.PortKey) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}

func compareEdges(a, b model.Edge) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}
