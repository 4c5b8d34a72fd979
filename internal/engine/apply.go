package engine

import (
	"context"
	"fmt"

	"github.com/vk/nodesync/internal/config"
	"github.com/vk/nodesync/internal/ctxlog"
	"github.com/vk/nodesync/internal/edges"
	"github.com/vk/nodesync/internal/model"
)

// Rejection pairs a declared connection with the reason it was refused.
type Rejection struct {
	Connection *config.ConnectionDefinition
	Result     edges.Result
}

func (r Rejection) Error() string {
	return fmt.Sprintf("connect %s -> %s: %v", r.Connection.From, r.Connection.To, r.Result.Err())
}

// ApplyConnections replays declared connections through the edge manager,
// so each one is validated exactly like an interactive drag. Rejected
// connections are skipped and returned; the rest are applied in order.
func (e *Editor) ApplyConnections(ctx context.Context, defs []*config.ConnectionDefinition) (applied int, rejected []Rejection) {
	logger := ctxlog.FromContext(ctx)

	for _, def := range defs {
		res := e.edges.Connect(ctx, def.From, def.To)
		if !res.Ok() {
			logger.Info("Declared connection rejected.", "from", def.From, "to", def.To, "reason", res.Reason, "detail", res.Detail)
			rejected = append(rejected, Rejection{Connection: def, Result: res})
			continue
		}
		applied++

		if def.Proxy == nil {
			continue
		}
		pin := res.Edges
		if len(pin) == 0 {
			pin = []model.Edge{res.Edge}
		}
		for _, edge := range pin {
			var err error
			if *def.Proxy {
				err = e.edges.ConvertToProxy(ctx, edge)
			} else {
				err = e.edges.ExpandProxy(ctx, edge)
			}
			if err != nil {
				logger.Warn("Failed to pin proxy state.", "edge", edge.ID(), "error", err)
			}
		}
	}

	e.requestPartial(ctx)
	logger.Debug("Declared connections applied.", "applied", applied, "rejected", len(rejected))
	return applied, rejected
}
