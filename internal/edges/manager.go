package edges

import (
	"context"
	"fmt"

	"github.com/vk/nodesync/internal/ctxlog"
	"github.com/vk/nodesync/internal/dirty"
	"github.com/vk/nodesync/internal/document"
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
	"github.com/vk/nodesync/internal/registry"
	"github.com/vk/nodesync/internal/resolver"
	"github.com/vk/nodesync/internal/typesys"
	"github.com/vk/nodesync/internal/undo"
)

// undoScope is the scope passed to the undo bridge for graph mutations.
const undoScope = "graph"

// Recorder receives connection metrics.
type Recorder interface {
	ConnectAttempt(kind model.Kind, status Status, reason Reason)
	DanglingHealed(n int)
	NodeDeleted(edges int)
}

type nopRecorder struct{}

func (nopRecorder) ConnectAttempt(model.Kind, Status, Reason) {}
func (nopRecorder) DanglingHealed(int)                        {}
func (nopRecorder) NodeDeleted(int)                           {}

// Manager validates and performs connection changes on one document.
type Manager struct {
	doc         document.Provider
	resolver    *resolver.Resolver
	dirty       *dirty.Set
	undo        undo.Bridge
	policy      ProxyPolicy
	chooser     Chooser
	autoConvert bool
	recorder    Recorder
}

// Option configures a Manager.
type Option func(*Manager)

// WithUndo sets the undo bridge notified before every undoable mutation.
func WithUndo(b undo.Bridge) Option {
	return func(m *Manager) { m.undo = b }
}

// WithProxyPolicy replaces the automatic proxy policy.
func WithProxyPolicy(p ProxyPolicy) Option {
	return func(m *Manager) { m.policy = p }
}

// WithChooser sets how ambiguous conversions are resolved.
func WithChooser(c Chooser) Option {
	return func(m *Manager) { m.chooser = c }
}

// WithAutoConvert controls whether a single available converter is inserted
// automatically. When disabled, such connections are rejected with the
// converter listed as a candidate.
func WithAutoConvert(on bool) Option {
	return func(m *Manager) { m.autoConvert = on }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// New creates a manager for doc. Touched nodes are added to d.
func New(doc document.Provider, res *resolver.Resolver, d *dirty.Set, opts ...Option) *Manager {
	m := &Manager{
		doc:         doc,
		resolver:    res,
		dirty:       d,
		undo:        undo.Nop{},
		policy:      RerouteProxyPolicy{},
		chooser:     RejectAmbiguous,
		autoConvert: true,
		recorder:    nopRecorder{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Document returns the document the manager mutates.
func (m *Manager) Document() document.Provider {
	return m.doc
}

// plan is a validated connect request.
type plan struct {
	src       *model.Port // output end
	dst       *model.Port // input end
	coercion  *typesys.Coercion
	converter *registry.Descriptor
}

// Connect validates and performs a connection between two ports. The ports
// may be given in either order; the output end is always the source.
func (m *Manager) Connect(ctx context.Context, a, b nodeid.PortKey) Result {
	res := m.connect(ctx, a, b, true)
	m.report(ctx, a, b, res)
	return res
}

// Check runs the same validation as Connect without mutating anything and
// without invoking adapter factories. The chooser is not consulted: an
// ambiguous conversion is reported as a TypeMismatch with its candidates.
func (m *Manager) Check(ctx context.Context, a, b nodeid.PortKey) Result {
	_, res := m.plan(ctx, a, b, true, false)
	return res
}

// ConnectVia inserts the adapter node of converter d between an output and an
// input port. The factory is invoked exactly once; if either leg cannot be
// connected the adapter is removed again.
func (m *Manager) ConnectVia(ctx context.Context, from, to nodeid.PortKey, d *registry.Descriptor) Result {
	src, ok := m.doc.Port(from)
	if !ok {
		return reject(ReasonPortNotFound, "%s", from)
	}
	dst, ok := m.doc.Port(to)
	if !ok {
		return reject(ReasonPortNotFound, "%s", to)
	}
	if src.Direction == model.Input {
		src, dst = dst, src
	}
	if src.Kind != model.Value || dst.Kind != model.Value || src.Direction == dst.Direction {
		return reject(ReasonKindMismatch, "converters only bridge a value output and a value input")
	}
	res := m.insertAdapter(ctx, src, dst, d)
	m.report(ctx, from, to, res)
	return res
}

func (m *Manager) report(ctx context.Context, a, b nodeid.PortKey, res Result) {
	logger := ctxlog.FromContext(ctx)
	kind := model.Value
	if p, ok := m.doc.Port(a); ok {
		kind = p.Kind
	}
	m.recorder.ConnectAttempt(kind, res.Status, res.Reason)
	if res.Ok() {
		logger.Debug("Ports connected.", "from", a, "to", b, "edge", res.Edge.ID(), "adapter", res.Adapter != nil)
		return
	}
	logger.Info("Connection rejected.", "from", a, "to", b, "reason", res.Reason, "detail", res.Detail)
}

func (m *Manager) connect(ctx context.Context, a, b nodeid.PortKey, allowConvert bool) Result {
	p, res := m.plan(ctx, a, b, allowConvert, allowConvert)
	if !res.Ok() {
		return res
	}
	if p.converter != nil {
		return m.insertAdapter(ctx, p.src, p.dst, p.converter)
	}
	return m.commit(ctx, p, res)
}

// plan validates a request. allowConvert permits converter insertion; choose
// permits asking the chooser to settle an ambiguous conversion.
func (m *Manager) plan(ctx context.Context, a, b nodeid.PortKey, allowConvert, choose bool) (plan, Result) {
	pa, ok := m.doc.Port(a)
	if !ok {
		return plan{}, reject(ReasonPortNotFound, "%s", a)
	}
	pb, ok := m.doc.Port(b)
	if !ok {
		return plan{}, reject(ReasonPortNotFound, "%s", b)
	}
	if pa.Node == pb.Node {
		return plan{}, reject(ReasonSameNode, "%s and %s are both on node '%s'", a, b, pa.Node)
	}
	if pa.Direction == pb.Direction {
		return plan{}, reject(ReasonSameDirection, "%s and %s are both %s ports", a, b, pa.Direction)
	}
	if pa.Kind != pb.Kind {
		return plan{}, reject(ReasonKindMismatch, "%s is a %s port but %s is a %s port", a, pa.Kind, b, pb.Kind)
	}

	p := plan{src: pa, dst: pb}
	if pa.Direction == model.Input {
		p.src, p.dst = pb, pa
	}

	switch p.src.Kind {
	case model.Value:
		return m.planValue(ctx, p, allowConvert, choose)
	case model.Flow:
		if cycle, found := m.flowCycle(p.src, p.dst); found {
			r := reject(ReasonIllegalCycle, "%s -> %s would loop back through %v", p.src.Key(), p.dst.Key(), cycle)
			r.Cycle = cycle
			return p, r
		}
		return p, Result{Status: Connected}
	default:
		panic(fmt.Sprintf("edges: unknown port kind %d", int(p.src.Kind)))
	}
}

func (m *Manager) planValue(ctx context.Context, p plan, allowConvert, choose bool) (plan, Result) {
	filter := p.dst.AcceptedTypes()
	res := m.resolver.Resolve(p.src.Type, filter)

	switch res.Status {
	case resolver.Compatible:
		return p, Result{Status: Connected}
	case resolver.Coerced:
		p.coercion = res.Coercion
		return p, Result{Status: Connected, Coercion: res.Coercion}
	case resolver.Convertible:
		if allowConvert && m.autoConvert {
			p.converter = res.Converter
			return p, Result{Status: Connected, Converter: res.Converter}
		}
		r := reject(ReasonTypeMismatch, "%s (%s) needs a converter to reach %s (%s)",
			p.src.Key(), typesys.Name(p.src.Type), p.dst.Key(), filter)
		r.Candidates = res.Candidates
		return p, r
	case resolver.Ambiguous:
		if allowConvert && choose {
			if d, ok := m.chooser(ctx, p.src, p.dst, res.Candidates); ok {
				p.converter = d
				return p, Result{Status: Connected, Converter: d}
			}
		}
		r := reject(ReasonTypeMismatch, "%s (%s) can be converted to %d types accepted by %s",
			p.src.Key(), typesys.Name(p.src.Type), len(res.Candidates), p.dst.Key())
		r.Candidates = res.Candidates
		return p, r
	default:
		return p, reject(ReasonTypeMismatch, "%s (%s) is not accepted by %s (%s)",
			p.src.Key(), typesys.Name(p.src.Type), p.dst.Key(), filter)
	}
}

// ownerAndTarget returns the end that stores the reference and the end it
// points at.
func ownerAndTarget(src, dst *model.Port) (owner, target *model.Port) {
	switch src.Kind {
	case model.Value:
		return dst, src
	case model.Flow:
		return src, dst
	default:
		panic(fmt.Sprintf("edges: unknown port kind %d", int(src.Kind)))
	}
}

func (m *Manager) commit(ctx context.Context, p plan, res Result) Result {
	owner, target := ownerAndTarget(p.src, p.dst)
	if owner.Ref == target.Key() {
		e, _ := m.edgeOwnedBy(owner.Key())
		res.Edge = e
		return res
	}

	m.undo.BeforeChange(undoScope, fmt.Sprintf("Connect %s -> %s", p.src.Key(), p.dst.Key()))

	var freed nodeid.PortKey
	if old, ok := m.edgeOwnedBy(owner.Key()); ok {
		res.Replaced = append(res.Replaced, old)
		freed = old.Target()
		m.dirty.Add(old.From.Node, old.To.Node)
	}
	if err := m.doc.SetConnection(owner.Key(), target.Key()); err != nil {
		return reject(ReasonPortNotFound, "%v", err)
	}
	if !freed.IsZero() {
		m.resetIfFree(freed)
	}

	m.dirty.Add(p.src.Node, p.dst.Node)
	m.RecomputeProxies(ctx, p.src.Node, p.dst.Node)

	e, _ := m.edgeOwnedBy(owner.Key())
	res.Edge = e
	res.Edges = []model.Edge{e}
	return res
}

func (m *Manager) insertAdapter(ctx context.Context, src, dst *model.Port, d *registry.Descriptor) Result {
	logger := ctxlog.FromContext(ctx)

	adapter, err := d.CreateAdapterNode(ctx, registry.AdapterRequest{
		From:       src.Key(),
		To:         dst.Key(),
		SourceType: src.Type,
		TargetType: d.Target,
	})
	if err != nil {
		return reject(ReasonAdapterFailed, "converter %s: %v", d.Name, err)
	}
	if adapter == nil {
		return reject(ReasonAdapterFailed, "converter %s returned no node", d.Name)
	}
	m.undo.BeforeChange(undoScope, fmt.Sprintf("Insert %s between %s and %s", d.Name, src.Key(), dst.Key()))
	if err := m.doc.AddNode(adapter); err != nil {
		return reject(ReasonAdapterFailed, "converter %s: %v", d.Name, err)
	}
	m.dirty.Add(adapter.ID)
	logger.Debug("Adapter node inserted.", "converter", d.Name, "node", adapter.ID)

	in := nodeid.Key(adapter.ID, d.InPort)
	out := nodeid.Key(adapter.ID, d.OutPort)

	first := m.connect(ctx, src.Key(), in, false)
	if !first.Ok() {
		m.rollbackAdapter(ctx, adapter.ID)
		return reject(ReasonAdapterFailed, "converter %s input: %s", d.Name, first.Err())
	}
	second := m.connect(ctx, out, dst.Key(), false)
	if !second.Ok() {
		m.rollbackAdapter(ctx, adapter.ID)
		return reject(ReasonAdapterFailed, "converter %s output: %s", d.Name, second.Err())
	}

	return Result{
		Status:    Connected,
		Edge:      second.Edge,
		Edges:     append(first.Edges, second.Edges...),
		Replaced:  append(first.Replaced, second.Replaced...),
		Coercion:  second.Coercion,
		Adapter:   adapter,
		Converter: d,
	}
}

func (m *Manager) rollbackAdapter(ctx context.Context, id nodeid.ID) {
	if err := m.deleteNode(ctx, id); err != nil {
		ctxlog.FromContext(ctx).Error("Failed to roll back adapter node.", "node", id, "error", err)
	}
}

// edgeOwnedBy returns the edge stored on owner, if any.
func (m *Manager) edgeOwnedBy(owner nodeid.PortKey) (model.Edge, bool) {
	p, ok := m.doc.Port(owner)
	if !ok {
		return model.Edge{}, false
	}
	return model.EdgeFromOwner(p)
}
