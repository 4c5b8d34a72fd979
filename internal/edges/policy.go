package edges

import (
	"context"

	"github.com/vk/nodesync/internal/document"
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
	"github.com/vk/nodesync/internal/registry"
)

// ProxyPolicy decides whether an edge should be drawn collapsed. It is only
// consulted for edges whose proxy state was not pinned by the user.
type ProxyPolicy interface {
	ShouldCollapse(doc document.Provider, e model.Edge) bool
}

// ProxyPolicyFunc adapts a function to ProxyPolicy.
type ProxyPolicyFunc func(doc document.Provider, e model.Edge) bool

// ShouldCollapse implements ProxyPolicy.
func (f ProxyPolicyFunc) ShouldCollapse(doc document.Provider, e model.Edge) bool {
	return f(doc, e)
}

// RerouteProxyPolicy collapses every edge that starts or ends at a reroute node.
type RerouteProxyPolicy struct{}

// ShouldCollapse implements ProxyPolicy.
func (RerouteProxyPolicy) ShouldCollapse(doc document.Provider, e model.Edge) bool {
	for _, id := range []nodeid.ID{e.From.Node, e.To.Node} {
		if n, ok := doc.Node(id); ok && n.Reroute {
			return true
		}
	}
	return false
}

// NeverProxy leaves every unpinned edge expanded.
type NeverProxy struct{}

// ShouldCollapse implements ProxyPolicy.
func (NeverProxy) ShouldCollapse(document.Provider, model.Edge) bool { return false }

// Chooser picks one converter when several distinct conversions are possible.
// Returning false rejects the connection with the candidates attached.
type Chooser func(ctx context.Context, from, to *model.Port, candidates []*registry.Descriptor) (*registry.Descriptor, bool)

// ChooseFirst picks the first candidate in registry order.
func ChooseFirst(_ context.Context, _, _ *model.Port, candidates []*registry.Descriptor) (*registry.Descriptor, bool) {
	if len(candidates) == 0 {
		return nil, false
	}
	return candidates[0], true
}

// RejectAmbiguous never picks, leaving the choice to the caller.
func RejectAmbiguous(context.Context, *model.Port, *model.Port, []*registry.Descriptor) (*registry.Descriptor, bool) {
	return nil, false
}
