// internal/nodeid/types.go
package nodeid

// ID is the stable identifier of a node inside one document.
type ID string

// PortID identifies a port within its owning node.
type PortID string

// PortKey is the fully qualified address of a port: owner node plus port id.
// The zero value means "no port" and is used as the empty connection reference.
type PortKey struct {
	Node ID
	Port PortID
}

// Key builds a PortKey from its two components.
func Key(node ID, port PortID) PortKey {
	return PortKey{Node: node, Port: port}
}

// IsZero reports whether the key points nowhere.
func (k PortKey) IsZero() bool {
	return k.Node == "" && k.Port == ""
}

// String serializes the key into its canonical `node.port` form.
func (k PortKey) String() string {
	if k.IsZero() {
		return ""
	}
	return string(k.Node) + "." + string(k.Port)
}

// Less orders keys by node then port, giving callers a stable iteration order.
func (k PortKey) Less(other PortKey) bool {
	if k.Node != other.Node {
		return k.Node < other.Node
	}
	return k.Port < other.Port
}
