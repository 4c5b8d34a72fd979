package engine

import (
	"context"
	"time"

	"github.com/vk/nodesync/internal/ctxlog"
	"github.com/vk/nodesync/internal/dirty"
	"github.com/vk/nodesync/internal/document"
	"github.com/vk/nodesync/internal/edges"
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
	"github.com/vk/nodesync/internal/registry"
	"github.com/vk/nodesync/internal/resolver"
	"github.com/vk/nodesync/internal/undo"
	"github.com/vk/nodesync/internal/viewsync"
)

// Recorder receives both connection and reload metrics.
type Recorder interface {
	edges.Recorder
	viewsync.Recorder
}

// Option configures an Editor.
type Option func(*Editor)

// WithUndo sets the undo bridge announced before every user-visible change.
func WithUndo(b undo.Bridge) Option {
	return func(e *Editor) { e.edgeOpts = append(e.edgeOpts, edges.WithUndo(b)) }
}

// WithChooser sets how ambiguous converters are resolved.
func WithChooser(c edges.Chooser) Option {
	return func(e *Editor) { e.edgeOpts = append(e.edgeOpts, edges.WithChooser(c)) }
}

// WithAutoConvert toggles automatic converter insertion.
func WithAutoConvert(on bool) Option {
	return func(e *Editor) { e.edgeOpts = append(e.edgeOpts, edges.WithAutoConvert(on)) }
}

// WithProxyPolicy sets the automatic proxy policy.
func WithProxyPolicy(p edges.ProxyPolicy) Option {
	return func(e *Editor) { e.edgeOpts = append(e.edgeOpts, edges.WithProxyPolicy(p)) }
}

// WithBudget sets the synchronizer's time budget per slice.
func WithBudget(d time.Duration) Option {
	return func(e *Editor) { e.syncOpts = append(e.syncOpts, viewsync.WithBudget(d)) }
}

// WithProgress sets the reload progress reporter.
func WithProgress(p viewsync.ProgressReporter) Option {
	return func(e *Editor) { e.syncOpts = append(e.syncOpts, viewsync.WithProgress(p)) }
}

// WithOnComplete sets the callback run after every completed reload.
func WithOnComplete(fn func(ctx context.Context, sum viewsync.Summary)) Option {
	return func(e *Editor) { e.onComplete = fn }
}

// WithRecorder sets the metrics recorder of both the edge manager and the
// synchronizer.
func WithRecorder(r Recorder) Option {
	return func(e *Editor) {
		e.edgeOpts = append(e.edgeOpts, edges.WithRecorder(r))
		e.syncOpts = append(e.syncOpts, viewsync.WithRecorder(r))
	}
}

// Editor is the facade over one open document.
type Editor struct {
	doc      document.Provider
	res      *resolver.Resolver
	dirty    *dirty.Set
	edges    *edges.Manager
	sync     *viewsync.Synchronizer
	edgeOpts []edges.Option
	syncOpts []viewsync.Option

	onComplete func(context.Context, viewsync.Summary)
	healed     int
}

// New creates an editor for doc rendering into host. No reload is requested
// until Reload or a mutation is made.
func New(doc document.Provider, host viewsync.Host, res *resolver.Resolver, opts ...Option) *Editor {
	e := &Editor{
		doc:   doc,
		res:   res,
		dirty: dirty.New(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.edges = edges.New(doc, res, e.dirty, e.edgeOpts...)
	syncOpts := append([]viewsync.Option{
		viewsync.WithDanglingHandler(e.healDangling),
		viewsync.WithOnComplete(e.completed),
		viewsync.WithHousekeeping(e.flushDirty),
	}, e.syncOpts...)
	e.sync = viewsync.New(doc, host, e.dirty, syncOpts...)
	return e
}

// Document returns the open document.
func (e *Editor) Document() document.Provider { return e.doc }

// Edges returns the edge manager bound to the open document.
func (e *Editor) Edges() *edges.Manager { return e.edges }

// Synchronizer returns the view synchronizer.
func (e *Editor) Synchronizer() *viewsync.Synchronizer { return e.sync }

// View returns the view context of the synchronizer.
func (e *Editor) View() *viewsync.ViewContext { return e.sync.View() }

// Idle reports whether no reload is in flight.
func (e *Editor) Idle() bool { return e.sync.State() == viewsync.Idle }

// Healed returns the number of dangling references repaired so far.
func (e *Editor) Healed() int { return e.healed }

// Reload requests a full reload.
func (e *Editor) Reload(ctx context.Context) uint64 {
	return e.sync.RequestFull(ctx)
}

// SwapDocument replaces the open document. The edge manager is rebound, the
// dirty set is discarded and a full reload is requested; that reload clears
// what the view context knew about the previous document.
func (e *Editor) SwapDocument(ctx context.Context, doc document.Provider) uint64 {
	ctxlog.FromContext(ctx).Info("📄 Swapping document.", "nodes", doc.Len())
	e.doc = doc
	e.dirty.Drain()
	e.edges = edges.New(doc, e.res, e.dirty, e.edgeOpts...)
	return e.sync.SetDocument(ctx, doc)
}

// Connect connects two ports, in either drag order.
func (e *Editor) Connect(ctx context.Context, a, b nodeid.PortKey) edges.Result {
	res := e.edges.Connect(ctx, a, b)
	e.requestPartial(ctx)
	return res
}

// Check validates a connection without changing anything.
func (e *Editor) Check(ctx context.Context, a, b nodeid.PortKey) edges.Result {
	return e.edges.Check(ctx, a, b)
}

// ConnectVia connects from and to through an adapter built by d.
func (e *Editor) ConnectVia(ctx context.Context, from, to nodeid.PortKey, d *registry.Descriptor) edges.Result {
	res := e.edges.ConnectVia(ctx, from, to, d)
	e.requestPartial(ctx)
	return res
}

// Disconnect removes one edge.
func (e *Editor) Disconnect(ctx context.Context, edge model.Edge) error {
	return e.after(ctx, e.edges.Disconnect(ctx, edge))
}

// DisconnectPort removes every edge attached to a port.
func (e *Editor) DisconnectPort(ctx context.Context, key nodeid.PortKey) error {
	return e.after(ctx, e.edges.DisconnectPort(ctx, key))
}

// DeleteNode removes a node and every edge touching it.
func (e *Editor) DeleteNode(ctx context.Context, id nodeid.ID) error {
	return e.after(ctx, e.edges.DeleteNode(ctx, id))
}

// ConvertToProxy collapses an edge and pins it.
func (e *Editor) ConvertToProxy(ctx context.Context, edge model.Edge) error {
	return e.after(ctx, e.edges.ConvertToProxy(ctx, edge))
}

// ExpandProxy expands an edge and pins it.
func (e *Editor) ExpandProxy(ctx context.Context, edge model.Edge) error {
	return e.after(ctx, e.edges.ExpandProxy(ctx, edge))
}

// ResetProxy hands an edge back to the automatic proxy policy.
func (e *Editor) ResetProxy(ctx context.Context, edge model.Edge) error {
	return e.after(ctx, e.edges.ResetProxy(ctx, edge))
}

// AddNode inserts a node into the document and renders it.
func (e *Editor) AddNode(ctx context.Context, n *model.Node) error {
	if err := e.doc.AddNode(n); err != nil {
		return err
	}
	e.dirty.Add(n.ID)
	e.requestPartial(ctx)
	return nil
}

// Edit applies an external change to a node. References changed this way are
// re-indexed, and healed if they dangle, by the next reload.
func (e *Editor) Edit(ctx context.Context, id nodeid.ID, fn func(n *model.Node)) error {
	if err := e.doc.Edit(id, fn); err != nil {
		return err
	}
	e.dirty.Add(id)
	e.requestPartial(ctx)
	return nil
}

func (e *Editor) after(ctx context.Context, err error) error {
	e.requestPartial(ctx)
	return err
}

func (e *Editor) requestPartial(ctx context.Context) {
	if e.dirty.Len() > 0 {
		e.sync.RequestPartial(ctx)
	}
}

func (e *Editor) healDangling(ctx context.Context, dangling []model.Edge) {
	healed := e.edges.Heal(ctx, dangling)
	e.healed += len(healed)
}

func (e *Editor) completed(ctx context.Context, sum viewsync.Summary) {
	if e.onComplete != nil {
		e.onComplete(ctx, sum)
	}
}

// flushDirty picks up nodes dirtied while the pass ran, such as healed ones.
func (e *Editor) flushDirty(ctx context.Context) {
	if e.dirty.Len() > 0 {
		ctxlog.FromContext(ctx).Debug("Nodes changed during reload, scheduling another.", "dirty", e.dirty.Len())
		e.sync.RequestPartial(ctx)
	}
}
