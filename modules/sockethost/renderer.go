package sockethost

import (
	"github.com/vk/nodesync/internal/nodeid"
	"github.com/vk/nodesync/internal/viewsync"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names emitted to the remote view.
const (
	EventNodeAdd    = "node:add"
	EventNodeRemove = "node:remove"
	EventEdgeAdd    = "edge:add"
	EventEdgeRemove = "edge:remove"
	EventProgress   = "view:progress"
)

// EmitFunc sends one event to the remote side.
type EmitFunc func(event string, payload any)

// Renderer forwards visual mutations to a remote view. It implements both
// viewsync.Renderer and viewsync.ProgressReporter.
type Renderer struct {
	emit EmitFunc
}

var (
	_ viewsync.Renderer         = (*Renderer)(nil)
	_ viewsync.ProgressReporter = (*Renderer)(nil)
)

// NewRenderer creates a renderer emitting through fn.
func NewRenderer(fn EmitFunc) *Renderer {
	return &Renderer{emit: fn}
}

// NewSocketRenderer creates a renderer emitting on a connected socket.
func NewSocketRenderer(io *socket.Socket) *Renderer {
	return NewRenderer(func(event string, payload any) {
		io.Emit(event, payload)
	})
}

func (r *Renderer) AddVisualNode(n viewsync.VisualNode) {
	r.emit(EventNodeAdd, toNodePayload(n))
}

func (r *Renderer) RemoveVisualNode(id nodeid.ID) {
	r.emit(EventNodeRemove, IDPayload{ID: string(id)})
}

func (r *Renderer) AddVisualEdge(e viewsync.VisualEdge) {
	r.emit(EventEdgeAdd, toEdgePayload(e))
}

func (r *Renderer) RemoveVisualEdge(id string) {
	r.emit(EventEdgeRemove, IDPayload{ID: id})
}

// Progress forwards reload progress.
func (r *Renderer) Progress(title, message string, fraction float64) {
	r.emit(EventProgress, ProgressPayload{Title: title, Message: message, Fraction: fraction})
}
