package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodesync/internal/engine"
	"github.com/vk/nodesync/internal/registry"
	"github.com/vk/nodesync/internal/resolver"
	"github.com/vk/nodesync/internal/testutil"
	"github.com/vk/nodesync/internal/typesys"
)

func newTestModel(t *testing.T) (Model, *Host, *engine.Editor) {
	t.Helper()
	res, err := resolver.New(typesys.NewCatalog(), registry.New())
	require.NoError(t, err)

	ctx := context.Background()
	host := NewHost()
	editor := engine.New(testutil.Grid(t, 3), host, res, engine.WithProgress(host))
	editor.Reload(ctx)
	return New(ctx, editor, host), host, editor
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func settle(t *testing.T, m Model, editor *engine.Editor) Model {
	t.Helper()
	for i := 0; i < 10000 && !editor.Idle(); i++ {
		m, _ = update(t, m, frameMsg{})
	}
	require.True(t, editor.Idle(), "reload did not finish")
	return m
}

func TestHost_RunFrameDefersNestedWork(t *testing.T) {
	h := NewHost()
	var ran []string
	h.Defer(func() {
		ran = append(ran, "first")
		h.Defer(func() { ran = append(ran, "nested") })
	})

	assert.Equal(t, 1, h.RunFrame())
	assert.Equal(t, []string{"first"}, ran)
	assert.Equal(t, 1, h.Pending())

	assert.Equal(t, 1, h.RunFrame())
	assert.Equal(t, []string{"first", "nested"}, ran)
	assert.Zero(t, h.RunFrame())
}

func TestHost_Progress(t *testing.T) {
	h := NewHost()
	h.Progress("Reloading view", "nodes", 0.5)
	assert.True(t, h.Status().Active)

	h.Progress("Reloading view", "done", 1)
	assert.False(t, h.Status().Active)
	assert.Equal(t, "done", h.Status().Message)
}

func TestModel_RendersAfterFrames(t *testing.T) {
	m, host, editor := newTestModel(t)
	assert.Equal(t, "Initializing...", m.View())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m = settle(t, m, editor)

	assert.Len(t, host.Nodes(), 3)
	view := m.View()
	assert.Contains(t, view, "n0")
	assert.Contains(t, view, "n0.out")
	assert.Contains(t, view, "3 nodes, 2 edges")
}

func TestModel_Keys(t *testing.T) {
	m, _, editor := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m = settle(t, m, editor)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.False(t, editor.Idle(), "r requests a reload")
	m = settle(t, m, editor)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
