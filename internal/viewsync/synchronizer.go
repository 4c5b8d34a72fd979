package viewsync

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/nodesync/internal/ctxlog"
	"github.com/vk/nodesync/internal/dirty"
	"github.com/vk/nodesync/internal/document"
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/nodeid"
)

// DefaultBudget is the time a reload may spend before yielding to the host.
const DefaultBudget = 4 * time.Millisecond

// State is the state of the synchronizer or of one reload pass.
type State int

const (
	Idle State = iota
	Reloading
	// Superseded is the terminal state of a pass made stale by a newer request.
	Superseded
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Reloading:
		return "reloading"
	case Superseded:
		return "superseded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Mode selects what a reload pass covers.
type Mode int

const (
	// Partial reconciles only dirty nodes and the edges touching them.
	Partial Mode = iota
	// Full re-renders every node and edge and prunes everything else.
	Full
)

func (m Mode) String() string {
	switch m {
	case Partial:
		return "partial"
	case Full:
		return "full"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Outcome is how a pass ended.
type Outcome int

const (
	Completed Outcome = iota
	Stale
)

func (o Outcome) String() string {
	if o == Stale {
		return "superseded"
	}
	return "completed"
}

// Recorder receives reload metrics.
type Recorder interface {
	ReloadFinished(mode Mode, outcome Outcome, elapsed time.Duration, ticks int)
	NodeFlagged()
}

type nopRecorder struct{}

func (nopRecorder) ReloadFinished(Mode, Outcome, time.Duration, int) {}
func (nopRecorder) NodeFlagged()                                    {}

// Summary describes one completed pass.
type Summary struct {
	Generation    uint64
	Mode          Mode
	NodesRendered int
	NodesRemoved  int
	EdgesRendered int
	EdgesRemoved  int
	// Dangling lists references that did not resolve and were not drawn.
	Dangling []model.Edge
	// Flagged lists nodes whose reconciliation failed and was skipped.
	Flagged []nodeid.ID
	// Ticks is the number of host turns the pass ran in.
	Ticks   int
	Elapsed time.Duration
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithBudget sets the time budget of one slice of work.
func WithBudget(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.budget = d
		}
	}
}

// WithProgress sets the progress reporter.
func WithProgress(p ProgressReporter) Option {
	return func(s *Synchronizer) { s.progress = p }
}

// WithOnComplete sets the callback run once per completed, non-superseded pass.
func WithOnComplete(fn func(ctx context.Context, sum Summary)) Option {
	return func(s *Synchronizer) { s.onComplete = fn }
}

// WithHousekeeping adds tasks run after every completion callback.
func WithHousekeeping(fns ...func(ctx context.Context)) Option {
	return func(s *Synchronizer) { s.housekeeping = append(s.housekeeping, fns...) }
}

// WithDanglingHandler sets the callback receiving the unresolved references
// found by a completed pass, before the completion callback runs.
func WithDanglingHandler(fn func(ctx context.Context, edges []model.Edge)) Option {
	return func(s *Synchronizer) { s.onDangling = fn }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Synchronizer) { s.recorder = r }
}

// Synchronizer reconciles a Host against a document. All methods must be
// called from the host's logical thread.
type Synchronizer struct {
	doc   document.Provider
	host  Host
	dirty *dirty.Set
	view  *ViewContext

	budget       time.Duration
	progress     ProgressReporter
	onComplete   func(context.Context, Summary)
	housekeeping []func(context.Context)
	onDangling   func(context.Context, []model.Edge)
	recorder     Recorder

	generation uint64
	active     *pass
	running    *pass
	last       Summary
}

// New creates an idle synchronizer. Dirty node ids are drained from d when a
// reload is requested.
func New(doc document.Provider, h Host, d *dirty.Set, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		doc:      doc,
		host:     h,
		dirty:    d,
		view:     newViewContext(),
		budget:   DefaultBudget,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns Reloading while a pass is in flight and Idle otherwise.
func (s *Synchronizer) State() State {
	if s.active != nil {
		return Reloading
	}
	return Idle
}

// Generation returns the id of the most recent request.
func (s *Synchronizer) Generation() uint64 {
	return s.generation
}

// View returns the synchronizer's view context.
func (s *Synchronizer) View() *ViewContext {
	return s.view
}

// Document returns the document being synchronized.
func (s *Synchronizer) Document() document.Provider {
	return s.doc
}

// LastSummary returns the summary of the most recent completed pass.
func (s *Synchronizer) LastSummary() Summary {
	return s.last
}

// SetDocument swaps the document and requests a full reload. That reload
// prunes the visuals and failure flags left by the previous document.
func (s *Synchronizer) SetDocument(ctx context.Context, doc document.Provider) uint64 {
	s.doc = doc
	return s.Request(ctx, Full)
}

// RequestFull requests a full reload.
func (s *Synchronizer) RequestFull(ctx context.Context) uint64 {
	return s.Request(ctx, Full)
}

// RequestPartial requests a reload of the dirty nodes.
func (s *Synchronizer) RequestPartial(ctx context.Context) uint64 {
	return s.Request(ctx, Partial)
}

// Request starts a new reload generation and returns its id. An in-flight
// pass becomes stale; the new pass covers its nodes as well as the newly
// dirty ones, and is a full pass if the stale one was.
func (s *Synchronizer) Request(ctx context.Context, mode Mode) uint64 {
	logger := ctxlog.FromContext(ctx)

	s.generation++
	p := newPass(ctx, s.generation, mode)
	ids := s.dirty.Drain()
	if old := s.active; old != nil {
		if old.mode == Full {
			p.mode = Full
			p.summary.Mode = Full
		}
		ids = append(ids, old.targetIDs()...)
		logger.Debug("Reload superseded by a newer request.", "stale", old.gen, "generation", p.gen)
	}
	if p.mode == Partial {
		for _, id := range ids {
			p.targets[id] = struct{}{}
		}
	}

	s.active = p
	logger.Debug("Reload requested.", "generation", p.gen, "mode", p.mode, "dirty", len(ids))
	s.host.Defer(func() { s.resume(p) })
	return p.gen
}

// resume runs one slice of p. It is the only entry point of the host's
// scheduling primitive.
func (s *Synchronizer) resume(p *pass) {
	if s.isStale(p) {
		s.retire(p)
		return
	}
	s.running = p
	defer func() { s.running = nil }()

	start := s.host.Now()
	p.summary.Ticks++
	if p.phase == phaseStart {
		p.started = start
		s.begin(p)
	}

	for {
		if s.isStale(p) {
			s.retire(p)
			return
		}
		if done := s.step(p); done {
			s.finish(p)
			return
		}
		if s.host.Now().Sub(start) >= s.budget {
			s.report(p)
			s.host.Defer(func() { s.resume(p) })
			return
		}
	}
}

func (s *Synchronizer) isStale(p *pass) bool {
	return p.gen != s.generation
}

// retire ends a stale pass. Staleness is expected: nothing is raised and the
// renderer is not touched.
func (s *Synchronizer) retire(p *pass) {
	if p.state == Superseded {
		return
	}
	p.state = Superseded
	var elapsed time.Duration
	if !p.started.IsZero() {
		elapsed = s.host.Now().Sub(p.started)
	}
	s.recorder.ReloadFinished(p.mode, Stale, elapsed, p.summary.Ticks)
	ctxlog.FromContext(p.ctx).Debug("Stale reload stopped.", "generation", p.gen, "ticks", p.summary.Ticks)
}

func (s *Synchronizer) begin(p *pass) {
	logger := ctxlog.FromContext(p.ctx)
	if err := s.doc.Refresh(); err != nil {
		logger.Error("Document refresh failed before reload.", "error", err)
	}
	p.nodes = s.nodeWork(p)
	p.phase = phaseNodes
	logger.Debug("Reload started.", "generation", p.gen, "mode", p.mode, "nodes", len(p.nodes))
}

func (s *Synchronizer) finish(p *pass) {
	logger := ctxlog.FromContext(p.ctx)

	s.active = nil
	p.state = Idle
	p.summary.Elapsed = s.host.Now().Sub(p.started)
	s.last = p.summary

	if s.progress != nil {
		s.progress.Progress(progressTitle, "done", 1)
	}
	s.recorder.ReloadFinished(p.mode, Completed, p.summary.Elapsed, p.summary.Ticks)
	logger.Info("Reload finished.",
		"generation", p.gen,
		"mode", p.mode,
		"rendered", p.summary.NodesRendered,
		"edges", p.summary.EdgesRendered,
		"dangling", len(p.summary.Dangling),
		"flagged", len(p.summary.Flagged),
		"ticks", p.summary.Ticks,
	)

	if len(p.summary.Dangling) > 0 && s.onDangling != nil {
		s.onDangling(p.ctx, p.summary.Dangling)
	}
	if s.onComplete != nil {
		s.onComplete(p.ctx, p.summary)
	}
	for _, fn := range s.housekeeping {
		fn(p.ctx)
	}
}
