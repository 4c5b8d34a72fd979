package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vk/nodesync/internal/engine"
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/viewsync"
)

// frameInterval is the delay between two frames, roughly 60 per second.
const frameInterval = 16 * time.Millisecond

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FFFF")).
			MarginLeft(2)

	nodeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFF00"))

	portStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	proxyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginLeft(2)
)

type keyMap struct {
	Reload key.Binding
	Quit   key.Binding
	Up     key.Binding
	Down   key.Binding
}

var keys = keyMap{
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Reload, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Reload, k.Quit}}
}

type frameMsg time.Time

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Model is the bubbletea model of the terminal view.
type Model struct {
	ctx      context.Context
	editor   *engine.Editor
	host     *Host
	viewport viewport.Model
	help     help.Model
	keys     keyMap
	ready    bool
}

// New creates a model showing editor's view rendered into host.
func New(ctx context.Context, editor *engine.Editor, host *Host) Model {
	return Model{
		ctx:    ctx,
		editor: editor,
		host:   host,
		help:   help.New(),
		keys:   keys,
	}
}

func (m Model) Init() tea.Cmd {
	return frameCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := msg.Height - lipgloss.Height(m.header()) - 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.help.Width = msg.Width
		m.viewport.SetContent(m.content())

	case frameMsg:
		if m.host.RunFrame() > 0 && m.ready {
			m.viewport.SetContent(m.content())
		}
		return m, frameCmd()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reload):
			m.editor.Reload(m.ctx)
		}
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var s strings.Builder
	s.WriteString(m.header())
	s.WriteString("\n")
	s.WriteString(m.viewport.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	return s.String()
}

func (m Model) header() string {
	return titleStyle.Render("nodesync") + "\n" + statusStyle.Render(m.status())
}

func (m Model) status() string {
	if p := m.host.Status(); p.Active {
		return fmt.Sprintf("%s: %s %3.0f%%", p.Title, p.Message, p.Fraction*100)
	}
	if !m.editor.Idle() {
		return "reloading..."
	}
	sum := m.editor.Synchronizer().LastSummary()
	return fmt.Sprintf("%d nodes, %d edges · last %s reload in %d tick(s)",
		len(m.host.Nodes()), len(m.host.Edges()), sum.Mode, sum.Ticks)
}

// content renders the nodes and edges currently held by the host.
func (m Model) content() string {
	var s strings.Builder
	flagged := m.editor.View().Flagged()

	for _, n := range m.host.Nodes() {
		name := n.Label
		if name == "" {
			name = string(n.ID)
		}
		fmt.Fprintf(&s, "%s %s\n", nodeStyle.Render(name), portStyle.Render("("+n.Type+")"))
		if msg, ok := flagged[n.ID]; ok {
			s.WriteString("  " + errorStyle.Render("✗ "+msg) + "\n")
		}
		writePorts(&s, "◂", n.Inputs)
		writePorts(&s, "▸", n.Outputs)
	}

	edges := m.host.Edges()
	if len(edges) > 0 {
		s.WriteString("\n")
	}
	for _, e := range edges {
		s.WriteString(edgeLine(e) + "\n")
	}
	return s.String()
}

func writePorts(w io.StringWriter, marker string, ports []viewsync.VisualPort) {
	for _, p := range ports {
		line := fmt.Sprintf("  %s %s", marker, p.ID)
		if p.Kind == model.Value {
			line += ": " + p.Type
			if p.Value != "" {
				line += " = " + p.Value
			}
		}
		w.WriteString(portStyle.Render(line) + "\n")
	}
}

func edgeLine(e viewsync.VisualEdge) string {
	arrow := "──▶"
	if e.Kind == model.Flow {
		arrow = "══▶"
	}
	line := fmt.Sprintf("%s %s %s", e.From, arrow, e.To)
	if e.Proxy {
		return proxyStyle.Render(line + " (proxy)")
	}
	return line
}

// Run shows the view until the user quits or ctx is cancelled.
func Run(ctx context.Context, editor *engine.Editor, host *Host, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	p := tea.NewProgram(New(ctx, editor, host), opts...)
	_, err := p.Run()
	return err
}
