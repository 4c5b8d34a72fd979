package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/vk/nodesync/internal/ctxlog"
	"github.com/vk/nodesync/internal/engine"
	"github.com/vk/nodesync/internal/highlight"
	"github.com/vk/nodesync/internal/nodeid"
	"github.com/vk/nodesync/internal/preview"
	"github.com/vk/nodesync/internal/scheduler"
	"github.com/vk/nodesync/internal/viewsync"
	"github.com/vk/nodesync/modules/sockethost"
)

// maxHeadlessSteps bounds a headless run so a pass that never settles fails
// instead of spinning.
const maxHeadlessSteps = 1_000_000

// ErrRejected is returned by Check when declared connections were refused.
var ErrRejected = errors.New("declared connections rejected")

// Report summarises a headless check of a document.
type Report struct {
	Nodes    int
	Edges    int
	Proxies  int
	Applied  int
	Rejected []engine.Rejection
	Healed   int
	Flagged  map[nodeid.ID]string
	Passes   int
	Ticks    int
	FlowErr  error
}

// Check opens the document against an in-memory view, runs the view to
// completion on a manual scheduler and writes a report to w. It returns
// ErrRejected when any declared connection was refused and the flow audit
// error when the flow graph has an illegal cycle.
func (a *App) Check(ctx context.Context, w io.Writer) (*Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := ctxlog.FromContext(ctx)

	rep := &Report{}
	sched := scheduler.NewManual(scheduler.WithAutoAdvance(time.Millisecond))
	renderer := viewsync.NewMemoryRenderer()
	s, err := a.Open(ctx, viewsync.NewHost(renderer, sched), engine.WithOnComplete(func(_ context.Context, sum viewsync.Summary) {
		rep.Passes++
		rep.Ticks += sum.Ticks
	}))
	if err != nil {
		return nil, err
	}

	if _, err := sched.RunUntilIdle(maxHeadlessSteps); err != nil {
		return nil, fmt.Errorf("view did not settle: %w", err)
	}

	view := s.Editor.View()
	rep.Nodes = len(renderer.Nodes())
	for _, e := range view.Edges() {
		rep.Edges++
		if e.Proxy {
			rep.Proxies++
		}
	}
	rep.Applied = s.Applied
	rep.Rejected = s.Rejected
	rep.Healed = s.Editor.Healed()
	rep.Flagged = view.Flagged()
	rep.FlowErr = s.Editor.Edges().AuditFlow()

	writeReport(w, rep)
	logger.Debug("Check finished.", "passes", rep.Passes, "ticks", rep.Ticks)

	if rep.FlowErr != nil {
		return rep, rep.FlowErr
	}
	if len(rep.Rejected) > 0 {
		return rep, fmt.Errorf("%w: %d of %d", ErrRejected, len(rep.Rejected), len(rep.Rejected)+rep.Applied)
	}
	return rep, nil
}

func writeReport(w io.Writer, rep *Report) {
	fmt.Fprintf(w, "nodes:       %d\n", rep.Nodes)
	fmt.Fprintf(w, "edges:       %d (%d proxy)\n", rep.Edges, rep.Proxies)
	fmt.Fprintf(w, "connections: %d applied, %d rejected\n", rep.Applied, len(rep.Rejected))
	for _, r := range rep.Rejected {
		fmt.Fprintf(w, "  ✗ %s\n", r.Error())
	}
	if rep.Healed > 0 {
		fmt.Fprintf(w, "healed:      %d dangling reference(s)\n", rep.Healed)
	}
	for _, id := range slices.Sorted(maps.Keys(rep.Flagged)) {
		fmt.Fprintf(w, "flagged:     %s: %s\n", id, rep.Flagged[id])
	}
	if rep.FlowErr != nil {
		fmt.Fprintf(w, "flow:        %v\n", rep.FlowErr)
	}
	fmt.Fprintf(w, "view:        %d pass(es), %d tick(s)\n", rep.Passes, rep.Ticks)
}

// Preview opens the document headlessly and writes it to w as Mermaid text.
// With color set, the text is styled on the highlight worker and written
// once the result is posted back to the loop.
func (a *App) Preview(ctx context.Context, w io.Writer, color bool) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	sched := scheduler.NewManual()
	s, err := a.Open(ctx, viewsync.NewHost(viewsync.NewMemoryRenderer(), sched))
	if err != nil {
		return err
	}
	if _, err := sched.RunUntilIdle(maxHeadlessSteps); err != nil {
		return fmt.Errorf("view did not settle: %w", err)
	}

	text := preview.ToMermaid(s.Editor.Document())
	if !color {
		_, err := io.WriteString(w, text)
		return err
	}

	loop := scheduler.NewLoop()
	defer loop.Close()

	var out string
	done := false
	worker := highlight.Start(ctx, loop, func(r highlight.Result) {
		out = r.Text
		done = true
	})
	defer worker.Close()

	worker.Submit(text)
	if err := loop.RunUntil(ctx, func() bool { return done }); err != nil {
		return fmt.Errorf("highlight: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// Push opens the document and streams its view to a remote socket.io
// renderer, returning once the first reload has completed.
func (a *App) Push(ctx context.Context) error {
	remote := a.config.Settings.Remote
	if remote.URL == "" {
		return errors.New("no remote URL configured")
	}
	ctx = ctxlog.With(ctxlog.WithLogger(ctx, a.logger), "remote", remote.URL)
	logger := ctxlog.FromContext(ctx)

	conn, err := sockethost.Dial(ctx, sockethost.Options{URL: remote.URL, Namespace: remote.Namespace})
	if err != nil {
		return err
	}
	defer conn.Disconnect()

	renderer := sockethost.NewSocketRenderer(conn)
	loop := scheduler.NewLoop()
	defer loop.Close()

	var opts []engine.Option
	if a.config.Settings.View.Progress {
		opts = append(opts, engine.WithProgress(renderer))
	}
	s, err := a.Open(ctx, viewsync.NewHost(renderer, loop), opts...)
	if err != nil {
		return err
	}

	logger.Info("🚀 Streaming view to remote renderer...")
	if err := loop.RunUntil(ctx, s.Editor.Idle); err != nil {
		return fmt.Errorf("push interrupted: %w", err)
	}
	logger.Info("🏁 View pushed.", "nodes", len(s.Editor.View().NodeIDs()), "edges", len(s.Editor.View().Edges()))
	return nil
}
