package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	t.Run("returns embedded logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		ctx := WithLogger(context.Background(), logger)

		FromContext(ctx).Info("hello", "k", "v")

		assert.Same(t, logger, FromContext(ctx))
		assert.Contains(t, buf.String(), "k=v")
	})

	t.Run("falls back to default logger", func(t *testing.T) {
		assert.Same(t, slog.Default(), FromContext(context.Background()))
	})
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	FromContext(With(ctx, "generation", 7)).Info("reload")
	FromContext(ctx).Info("plain")

	assert.Contains(t, buf.String(), "msg=reload generation=7")
	assert.NotContains(t, buf.String(), "msg=plain generation")
}
