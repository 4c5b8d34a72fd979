package edges

import (
	"context"
	"fmt"

	"github.com/vk/nodesync/internal/ctxlog"
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
)

// Disconnect removes one edge, resets the freed ports and marks both
// endpoints dirty.
func (m *Manager) Disconnect(ctx context.Context, e model.Edge) error {
	if _, err := m.lookupEdge(e); err != nil {
		return err
	}
	m.undo.BeforeChange(undoScope, fmt.Sprintf("Disconnect %s", e.ID()))
	if err := m.disconnect(ctx, e); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Edge disconnected.", "edge", e.ID())
	return nil
}

// DisconnectPort removes every edge touching a port.
func (m *Manager) DisconnectPort(ctx context.Context, key nodeid.PortKey) error {
	if err := m.doc.Refresh(); err != nil {
		return fmt.Errorf("disconnect port %s: %w", key, err)
	}
	p, ok := m.doc.Port(key)
	if !ok {
		return fmt.Errorf("disconnect port %s: %w", key, ErrPortNotFound)
	}

	var touching []model.Edge
	if e, ok := model.EdgeFromOwner(p); ok {
		touching = append(touching, e)
	}
	for _, other := range m.doc.ConnectedPorts(key) {
		op, ok := m.doc.Port(other)
		if !ok || op.Ref != key {
			continue
		}
		if e, ok := model.EdgeFromOwner(op); ok {
			touching = append(touching, e)
		}
	}
	if len(touching) == 0 {
		return nil
	}

	m.undo.BeforeChange(undoScope, fmt.Sprintf("Disconnect all from %s", key))
	for _, e := range touching {
		if err := m.disconnect(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// DeleteNode disconnects every edge touching the node, in both directions,
// and then removes it from the document.
func (m *Manager) DeleteNode(ctx context.Context, id nodeid.ID) error {
	if _, ok := m.doc.Node(id); !ok {
		return fmt.Errorf("delete node '%s': node not found", id)
	}
	m.undo.BeforeChange(undoScope, fmt.Sprintf("Delete node %s", id))
	return m.deleteNode(ctx, id)
}

func (m *Manager) deleteNode(ctx context.Context, id nodeid.ID) error {
	logger := ctxlog.FromContext(ctx)

	// References written through Edit are not indexed yet.
	if err := m.doc.Refresh(); err != nil {
		return fmt.Errorf("delete node '%s': %w", id, err)
	}

	// Snapshot once so every edge is cleared exactly once, even when several
	// of them share a port.
	touching := m.doc.EdgesOf(id)
	for _, e := range touching {
		if err := m.disconnect(ctx, e); err != nil {
			return fmt.Errorf("delete node '%s': %w", id, err)
		}
	}
	if err := m.doc.RemoveNode(id); err != nil {
		return fmt.Errorf("delete node '%s': %w", id, err)
	}
	m.dirty.Add(id)
	m.recorder.NodeDeleted(len(touching))
	logger.Debug("Node deleted.", "node", id, "edges", len(touching))
	return nil
}

// disconnect clears the reference of e without notifying the undo bridge.
func (m *Manager) disconnect(ctx context.Context, e model.Edge) error {
	if _, err := m.doc.ClearConnection(e.Owner()); err != nil {
		return err
	}
	if err := m.doc.ResetPort(e.Owner()); err != nil {
		return err
	}
	m.resetIfFree(e.Target())
	m.dirty.Add(e.From.Node, e.To.Node)
	m.RecomputeProxies(ctx, e.From.Node, e.To.Node)
	return nil
}

// resetIfFree resets a port that is no longer referenced by anything.
func (m *Manager) resetIfFree(key nodeid.PortKey) {
	if _, ok := m.doc.Port(key); !ok {
		return
	}
	if len(m.doc.ConnectedPorts(key)) > 0 {
		return
	}
	_ = m.doc.ResetPort(key)
}

func (m *Manager) lookupEdge(e model.Edge) (*model.Port, error) {
	owner, ok := m.doc.Port(e.Owner())
	if !ok || owner.Ref != e.Target() {
		return nil, fmt.Errorf("%s: %w", e.ID(), ErrEdgeNotFound)
	}
	return owner, nil
}

// ConvertToProxy pins an edge into the collapsed state. The reference chain
// is left untouched.
func (m *Manager) ConvertToProxy(ctx context.Context, e model.Edge) error {
	return m.pinProxy(ctx, e, true, "Collapse")
}

// ExpandProxy pins an edge into the expanded state.
func (m *Manager) ExpandProxy(ctx context.Context, e model.Edge) error {
	return m.pinProxy(ctx, e, false, "Expand")
}

// ResetProxy returns an edge to automatic proxy detection.
func (m *Manager) ResetProxy(ctx context.Context, e model.Edge) error {
	if _, err := m.lookupEdge(e); err != nil {
		return err
	}
	m.undo.BeforeChange(undoScope, fmt.Sprintf("Reset proxy %s", e.ID()))
	if err := m.doc.SetProxy(e.Owner(), m.policy.ShouldCollapse(m.doc, e), false); err != nil {
		return err
	}
	m.dirty.Add(e.From.Node, e.To.Node)
	return nil
}

func (m *Manager) pinProxy(ctx context.Context, e model.Edge, proxy bool, verb string) error {
	owner, err := m.lookupEdge(e)
	if err != nil {
		return err
	}
	if owner.ProxyPinned && owner.Proxy == proxy {
		return nil
	}
	m.undo.BeforeChange(undoScope, fmt.Sprintf("%s %s", verb, e.ID()))
	if err := m.doc.SetProxy(e.Owner(), proxy, true); err != nil {
		return err
	}
	m.dirty.Add(e.From.Node, e.To.Node)
	ctxlog.FromContext(ctx).Debug("Edge proxy pinned.", "edge", e.ID(), "proxy", proxy)
	return nil
}

// RecomputeProxies re-applies the proxy policy to every unpinned edge
// touching the given nodes. Proxy state is derived, so this is not undoable.
func (m *Manager) RecomputeProxies(ctx context.Context, ids ...nodeid.ID) {
	for _, id := range ids {
		for _, e := range m.doc.EdgesOf(id) {
			owner, ok := m.doc.Port(e.Owner())
			if !ok || owner.ProxyPinned {
				continue
			}
			want := m.policy.ShouldCollapse(m.doc, e)
			if owner.Proxy == want {
				continue
			}
			if err := m.doc.SetProxy(e.Owner(), want, false); err != nil {
				ctxlog.FromContext(ctx).Warn("Failed to update proxy flag.", "edge", e.ID(), "error", err)
				continue
			}
			m.dirty.Add(e.From.Node, e.To.Node)
		}
	}
}

// HealDangling clears every reference in the document that no longer
// resolves. It returns the healed edges.
func (m *Manager) HealDangling(ctx context.Context) []model.Edge {
	return m.Heal(ctx, m.doc.Dangling())
}

// Heal clears the given references if they still do not resolve. Healing is
// an integrity repair: it is logged, not announced to the undo bridge.
func (m *Manager) Heal(ctx context.Context, candidates []model.Edge) []model.Edge {
	logger := ctxlog.FromContext(ctx)

	stillDangling := make(map[string]bool)
	for _, e := range m.doc.Dangling() {
		stillDangling[e.ID()] = true
	}

	var healed []model.Edge
	for _, e := range candidates {
		if !stillDangling[e.ID()] {
			continue
		}
		if _, err := m.doc.ClearConnection(e.Owner()); err != nil {
			logger.Error("Failed to clear dangling reference.", "edge", e.ID(), "error", err)
			continue
		}
		_ = m.doc.ResetPort(e.Owner())
		m.dirty.Add(e.Owner().Node)
		logger.Warn("Dangling reference cleared.", "edge", e.ID())
		healed = append(healed, e)
		delete(stillDangling, e.ID())
	}
	if len(healed) > 0 {
		m.recorder.DanglingHealed(len(healed))
	}
	return healed
}
