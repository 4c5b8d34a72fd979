package viewsync

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/vk/nodesync/internal/ctxlog"
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
)

const progressTitle = "Reloading graph"

type phase int

const (
	phaseStart phase = iota
	phaseNodes
	phaseEdges
	phasePrune
)

// pass is one reload generation: its scope, its cursor and what it did.
type pass struct {
	ctx   context.Context
	gen   uint64
	mode  Mode
	state State

	// targets is the node scope of a partial pass.
	targets map[nodeid.ID]struct{}

	phase  phase
	cursor int
	nodes  []nodeid.ID
	edges  []model.Edge
	prune  []string
	seen   map[string]struct{}

	started time.Time
	summary Summary
}

func newPass(ctx context.Context, gen uint64, mode Mode) *pass {
	return &pass{
		ctx:     ctx,
		gen:     gen,
		mode:    mode,
		state:   Reloading,
		targets: make(map[nodeid.ID]struct{}),
		seen:    make(map[string]struct{}),
		summary: Summary{Generation: gen, Mode: mode},
	}
}

func (p *pass) inScope(id nodeid.ID) bool {
	if p.mode == Full {
		return true
	}
	_, ok := p.targets[id]
	return ok
}

// targetIDs returns the node scope of a partial pass, sorted.
func (p *pass) targetIDs() []nodeid.ID {
	ids := make([]nodeid.ID, 0, len(p.targets))
	for id := range p.targets {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// step performs one unit of work or one phase transition. It reports true
// once the pass has nothing left to do.
func (s *Synchronizer) step(p *pass) bool {
	switch p.phase {
	case phaseNodes:
		if p.cursor < len(p.nodes) {
			s.reconcileNode(p, p.nodes[p.cursor])
			p.cursor++
			return false
		}
		p.edges = s.edgeWork(p)
		p.phase, p.cursor = phaseEdges, 0
		return false
	case phaseEdges:
		if p.cursor < len(p.edges) {
			s.reconcileEdge(p, p.edges[p.cursor])
			p.cursor++
			return false
		}
		p.prune = s.pruneWork(p)
		p.phase, p.cursor = phasePrune, 0
		return false
	case phasePrune:
		if p.cursor < len(p.prune) {
			s.removeEdge(p, p.prune[p.cursor])
			p.cursor++
			return false
		}
		return true
	default:
		panic(fmt.Sprintf("viewsync: pass in unexpected phase %d", int(p.phase)))
	}
}

// nodeWork lists the nodes of the pass in document order, followed by the
// scoped ids that are no longer in the document.
func (s *Synchronizer) nodeWork(p *pass) []nodeid.ID {
	var ids []nodeid.ID
	present := make(map[nodeid.ID]bool)
	for _, n := range s.doc.Nodes() {
		present[n.ID] = true
		if p.inScope(n.ID) {
			ids = append(ids, n.ID)
		}
	}

	var gone []nodeid.ID
	if p.mode == Full {
		gone = s.view.knownIDs()
	} else {
		gone = p.targetIDs()
	}
	for _, id := range gone {
		if !present[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *Synchronizer) reconcileNode(p *pass, id nodeid.ID) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprint(r)
			s.view.flag(id, msg)
			p.summary.Flagged = append(p.summary.Flagged, id)
			s.recorder.NodeFlagged()
			ctxlog.FromContext(p.ctx).Error("Failed to reconcile node, skipping.", "node", id, "panic", msg)
		}
	}()

	n, ok := s.doc.Node(id)
	if !ok {
		s.removeNode(p, id)
		return
	}

	vn := visualNode(n)
	if old, ok := s.view.Node(id); ok && p.mode == Partial && !s.view.IsFlagged(id) && old.Equal(vn) {
		return
	}
	s.host.AddVisualNode(vn)
	s.view.putNode(vn)
	p.summary.NodesRendered++
}

func (s *Synchronizer) removeNode(p *pass, id nodeid.ID) {
	for _, eid := range s.view.edgesTouching(id) {
		s.removeEdge(p, eid)
	}
	if _, ok := s.view.Node(id); ok {
		s.host.RemoveVisualNode(id)
		p.summary.NodesRemoved++
	}
	s.view.dropNode(id)
}

// edgeWork lists the references to resolve: all of them for a full pass, the
// ones touching scoped nodes otherwise.
func (s *Synchronizer) edgeWork(p *pass) []model.Edge {
	var edges []model.Edge
	if p.mode == Full {
		edges = s.doc.Edges()
	} else {
		seen := make(map[string]bool)
		for _, id := range p.targetIDs() {
			for _, e := range s.doc.EdgesOf(id) {
				if !seen[e.ID()] {
					seen[e.ID()] = true
					edges = append(edges, e)
				}
			}
		}
	}
	slices.SortFunc(edges, func(a, b model.Edge) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})
	return edges
}

func (s *Synchronizer) reconcileEdge(p *pass, e model.Edge) {
	logger := ctxlog.FromContext(p.ctx)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Failed to reconcile edge, skipping.", "edge", e.ID(), "panic", fmt.Sprint(r))
		}
	}()

	if !s.resolves(e) {
		p.summary.Dangling = append(p.summary.Dangling, e)
		logger.Warn("Dangling reference skipped.", "edge", e.ID())
		return
	}
	if !s.materialized(e.From.Node) || !s.materialized(e.To.Node) {
		return
	}

	ve := visualEdge(e)
	p.seen[ve.ID] = struct{}{}
	if old, ok := s.view.Edge(ve.ID); ok && p.mode == Partial && old == ve {
		return
	}
	s.host.AddVisualEdge(ve)
	s.view.putEdge(ve)
	p.summary.EdgesRendered++
}

// resolves reports whether both ends of e exist with the kind and direction
// the reference implies.
func (s *Synchronizer) resolves(e model.Edge) bool {
	from, ok := s.doc.Port(e.From)
	if !ok || from.Kind != e.Kind || from.Direction != model.Output {
		return false
	}
	to, ok := s.doc.Port(e.To)
	if !ok || to.Kind != e.Kind || to.Direction != model.Input {
		return false
	}
	return true
}

func (s *Synchronizer) materialized(id nodeid.ID) bool {
	_, ok := s.view.Node(id)
	return ok && !s.view.IsFlagged(id)
}

// pruneWork lists rendered edges in scope that the pass did not produce.
func (s *Synchronizer) pruneWork(p *pass) []string {
	var ids []string
	if p.mode == Full {
		for _, e := range s.view.Edges() {
			if _, ok := p.seen[e.ID]; !ok {
				ids = append(ids, e.ID)
			}
		}
		return ids
	}

	seen := make(map[string]bool)
	for _, id := range p.targetIDs() {
		for _, eid := range s.view.edgesTouching(id) {
			if _, ok := p.seen[eid]; ok || seen[eid] {
				continue
			}
			seen[eid] = true
			ids = append(ids, eid)
		}
	}
	slices.Sort(ids)
	return ids
}

func (s *Synchronizer) removeEdge(p *pass, id string) {
	if _, ok := s.view.Edge(id); !ok {
		return
	}
	s.host.RemoveVisualEdge(id)
	s.view.dropEdge(id)
	p.summary.EdgesRemoved++
}

func (s *Synchronizer) report(p *pass) {
	if s.progress == nil {
		return
	}
	var fraction float64
	var msg string
	switch p.phase {
	case phaseNodes:
		fraction = 0.5 * ratio(p.cursor, len(p.nodes))
		msg = fmt.Sprintf("nodes %d/%d", p.cursor, len(p.nodes))
	case phaseEdges:
		fraction = 0.5 + 0.4*ratio(p.cursor, len(p.edges))
		msg = fmt.Sprintf("edges %d/%d", p.cursor, len(p.edges))
	case phasePrune:
		fraction = 0.9 + 0.1*ratio(p.cursor, len(p.prune))
		msg = fmt.Sprintf("cleanup %d/%d", p.cursor, len(p.prune))
	}
	s.progress.Progress(progressTitle, msg, fraction)
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 1
	}
	return float64(n) / float64(total)
}
