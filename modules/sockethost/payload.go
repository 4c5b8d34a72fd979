package sockethost

import (
	"github.com/vk/nodesync/internal/viewsync"
)

// NodePayload is the wire form of a visual node.
type NodePayload struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	Label     string        `json:"label"`
	Reentrant bool          `json:"reentrant,omitempty"`
	Reroute   bool          `json:"reroute,omitempty"`
	Flagged   bool          `json:"flagged,omitempty"`
	Inputs    []PortPayload `json:"inputs"`
	Outputs   []PortPayload `json:"outputs"`
}

type PortPayload struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Kind      string `json:"kind"`
	Type      string `json:"type,omitempty"`
	Value     string `json:"value,omitempty"`
	Connected bool   `json:"connected"`
}

// EdgePayload is the wire form of a visual edge.
type EdgePayload struct {
	ID    string `json:"id"`
	From  string `json:"from"`
	To    string `json:"to"`
	Kind  string `json:"kind"`
	Proxy bool   `json:"proxy"`
}

type IDPayload struct {
	ID string `json:"id"`
}

type ProgressPayload struct {
	Title    string  `json:"title"`
	Message  string  `json:"message"`
	Fraction float64 `json:"fraction"`
}

func toNodePayload(n viewsync.VisualNode) NodePayload {
	return NodePayload{
		ID:        string(n.ID),
		Type:      n.Type,
		Label:     n.Label,
		Reentrant: n.Reentrant,
		Reroute:   n.Reroute,
		Flagged:   n.Flagged,
		Inputs:    toPortPayloads(n.Inputs),
		Outputs:   toPortPayloads(n.Outputs),
	}
}

func toPortPayloads(ports []viewsync.VisualPort) []PortPayload {
	out := make([]PortPayload, len(ports))
	for i, p := range ports {
		out[i] = PortPayload{
			ID:        string(p.ID),
			Label:     p.Label,
			Kind:      p.Kind.String(),
			Type:      p.Type,
			Value:     p.Value,
			Connected: p.Connected,
		}
	}
	return out
}

func toEdgePayload(e viewsync.VisualEdge) EdgePayload {
	return EdgePayload{
		ID:    e.ID,
		From:  e.From.String(),
		To:    e.To.String(),
		Kind:  e.Kind.String(),
		Proxy: e.Proxy,
	}
}
