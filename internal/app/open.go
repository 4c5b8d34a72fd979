package app

import (
	"context"
	"fmt"

	"github.com/vk/nodesync/internal/config"
	"github.com/vk/nodesync/internal/ctxlog"
	"github.com/vk/nodesync/internal/engine"
	"github.com/vk/nodesync/internal/viewsync"
)

// Session is one opened document bound to a view host.
type Session struct {
	Model    *config.Model
	Editor   *engine.Editor
	Applied  int
	Rejected []engine.Rejection
}

// Open loads the configured documents, builds the document, replays its
// declared connections and requests the first full reload into host. The
// reload runs on host's scheduler; Open does not wait for it.
func (a *App) Open(ctx context.Context, host viewsync.Host, opts ...engine.Option) (*Session, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading documents...", "paths", a.config.DocumentPaths)

	m, err := a.loader.Load(ctx, a.config.DocumentPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	doc, err := m.BuildDocument(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build document: %w", err)
	}
	logger.Info("📄 Document loaded.", "nodes", doc.Len(), "types", len(m.Types), "connections", len(m.Connections))

	editor := engine.New(doc, host, a.resolver, append(a.editorOptions(), opts...)...)
	applied, rejected := editor.ApplyConnections(ctx, m.Connections)
	editor.Reload(ctx)

	return &Session{
		Model:    m,
		Editor:   editor,
		Applied:  applied,
		Rejected: rejected,
	}, nil
}
