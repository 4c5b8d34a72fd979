package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/vk/nodesync/internal/engine"
	"github.com/vk/nodesync/internal/tui"
)

func runView(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, args)
	if err != nil {
		return err
	}
	defer a.Close()

	host := tui.NewHost()
	var opts []engine.Option
	if a.Settings().View.Progress {
		opts = append(opts, engine.WithProgress(host))
	}
	s, err := a.Open(cmd.Context(), host, opts...)
	if err != nil {
		return err
	}
	return tui.Run(a.Context(), s.Editor, host,
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
}
