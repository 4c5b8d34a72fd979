package viewsync

import (
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
	"github.com/vk/nodesync/internal/scheduler"
	"github.com/vk/nodesync/internal/typesys"
)

// VisualPort is the rendered form of a port.
type VisualPort struct {
	ID        nodeid.PortID
	Label     string
	Kind      model.Kind
	Direction model.Direction
	Type      string
	Value     string
	// Connected is set when the port itself stores a reference.
	Connected bool
}

// VisualNode is the rendered form of a node. Ports are copied so the renderer
// never shares memory with the document.
type VisualNode struct {
	ID        nodeid.ID
	Type      string
	Label     string
	Reentrant bool
	Reroute   bool
	Inputs    []VisualPort
	Outputs   []VisualPort
	// Flagged is set by renderers that keep a placeholder for a node whose
	// reconciliation failed.
	Flagged bool
}

// Equal reports whether two visual nodes render identically.
func (n VisualNode) Equal(o VisualNode) bool {
	return n.ID == o.ID &&
		n.Type == o.Type &&
		n.Label == o.Label &&
		n.Reentrant == o.Reentrant &&
		n.Reroute == o.Reroute &&
		n.Flagged == o.Flagged &&
		equalPorts(n.Inputs, o.Inputs) &&
		equalPorts(n.Outputs, o.Outputs)
}

func equalPorts(a, b []VisualPort) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// VisualEdge is the rendered form of a connection.
type VisualEdge struct {
	ID    string
	From  nodeid.PortKey
	To    nodeid.PortKey
	Kind  model.Kind
	Proxy bool
}

// Renderer receives visual mutations. Adding an existing id replaces it.
type Renderer interface {
	AddVisualNode(n VisualNode)
	RemoveVisualNode(id nodeid.ID)
	AddVisualEdge(e VisualEdge)
	RemoveVisualEdge(id string)
}

// Host is the view host: a renderer plus the scheduling primitive the
// reload loop yields to.
type Host interface {
	Renderer
	scheduler.Scheduler
}

type host struct {
	Renderer
	scheduler.Scheduler
}

// NewHost combines a renderer and a scheduler into a Host.
func NewHost(r Renderer, s scheduler.Scheduler) Host {
	return host{Renderer: r, Scheduler: s}
}

// ProgressReporter receives progress of long reloads. Fraction is in [0, 1].
type ProgressReporter interface {
	Progress(title, message string, fraction float64)
}

// ProgressFunc adapts a function to ProgressReporter.
type ProgressFunc func(title, message string, fraction float64)

// Progress implements ProgressReporter.
func (f ProgressFunc) Progress(title, message string, fraction float64) {
	f(title, message, fraction)
}

func visualNode(n *model.Node) VisualNode {
	return VisualNode{
		ID:        n.ID,
		Type:      n.Type,
		Label:     n.DisplayName(),
		Reentrant: n.Reentrant,
		Reroute:   n.Reroute,
		Inputs:    visualPorts(n.Inputs),
		Outputs:   visualPorts(n.Outputs),
	}
}

func visualPorts(ports []*model.Port) []VisualPort {
	out := make([]VisualPort, 0, len(ports))
	for _, p := range ports {
		out = append(out, visualPort(p))
	}
	return out
}

func visualPort(p *model.Port) VisualPort {
	vp := VisualPort{
		ID:        p.ID,
		Label:     p.DisplayName(),
		Kind:      p.Kind,
		Direction: p.Direction,
		Connected: p.Connected(),
	}
	switch p.Kind {
	case model.Value:
		vp.Type = typeName(p)
		vp.Value = formatValue(p)
	case model.Flow:
	default:
		panic("viewsync: unknown port kind")
	}
	return vp
}

func visualEdge(e model.Edge) VisualEdge {
	return VisualEdge{ID: e.ID(), From: e.From, To: e.To, Kind: e.Kind, Proxy: e.Proxy}
}

// typeName shows the filter for polymorphic inputs and the declared type
// otherwise.
func typeName(p *model.Port) string {
	if p.Direction == model.Input && !p.Filter.IsOpen() {
		return p.Filter.String()
	}
	return typesys.Name(p.Type)
}

func formatValue(p *model.Port) string {
	if p.Connected() {
		return ""
	}
	return typesys.Format(p.Value)
}
