// Package highlight styles preview text on a background worker. The worker
// never touches the document; finished results are posted back to the
// logical thread and picked up on its next turn.
package highlight

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vk/nodesync/internal/ctxlog"
	"github.com/vk/nodesync/internal/scheduler"
	"golang.org/x/sync/errgroup"
)

var (
	keywordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF00FF")).
			Bold(true)

	arrowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FFFF"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00"))

	arrowRe = regexp.MustCompile(`(==>|-\.->|-->)`)
	labelRe = regexp.MustCompile(`"[^"]*"|\|[^|]*\|`)
)

// Result is one highlighted text.
type Result struct {
	Seq  uint64
	Text string
}

// Worker highlights submitted text on its own goroutine. Only the latest
// submission is processed; older pending ones are dropped.
type Worker struct {
	requests chan request
	poster   scheduler.Poster
	onResult func(Result)

	group  *errgroup.Group
	cancel context.CancelFunc
	seq    uint64
}

type request struct {
	seq  uint64
	text string
}

// Start launches the worker. onResult runs through poster, so it executes on
// the logical thread.
func Start(ctx context.Context, poster scheduler.Poster, onResult func(Result)) *Worker {
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	w := &Worker{
		requests: make(chan request, 1),
		poster:   poster,
		onResult: onResult,
		group:    g,
		cancel:   cancel,
	}
	g.Go(func() error { return w.run(gctx) })
	return w
}

// Submit queues text for highlighting and returns its sequence number. It
// must be called from the logical thread.
func (w *Worker) Submit(text string) uint64 {
	w.seq++
	req := request{seq: w.seq, text: text}
	for {
		select {
		case w.requests <- req:
			return req.seq
		default:
		}
		// Replace the stale pending request.
		select {
		case <-w.requests:
		default:
		}
	}
}

// Close stops the worker and waits for it to exit.
func (w *Worker) Close() error {
	w.cancel()
	if err := w.group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (w *Worker) run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-w.requests:
			res := Result{Seq: req.seq, Text: Mermaid(req.text)}
			if !w.poster.Post(func() { w.onResult(res) }) {
				logger.Debug("Highlight result dropped, scheduler closed.", "seq", req.seq)
			}
		}
	}
}

// Mermaid styles Mermaid flowchart text line by line.
func Mermaid(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = styleLine(line)
	}
	return strings.Join(lines, "\n")
}

func styleLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "graph ") {
		return strings.Replace(line, "graph", keywordStyle.Render("graph"), 1)
	}
	line = labelRe.ReplaceAllStringFunc(line, func(s string) string { return labelStyle.Render(s) })
	return arrowRe.ReplaceAllStringFunc(line, func(s string) string { return arrowStyle.Render(s) })
}
