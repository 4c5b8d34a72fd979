package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/vk/nodesync/internal/app"
	"github.com/vk/nodesync/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Execute runs the command line with args, writing command output to outW and
// logs to errW.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(outW)
	root.SetErr(errW)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return &ExitError{Code: 1, Message: err.Error()}
}

// NewRootCommand builds the nodesync command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nodesync",
		Short: "Validate, preview and view node-graph documents",
		Long: `nodesync loads node-graph documents written in HCL, validates every declared
connection against the port types and converters, and keeps a view of the
graph in sync with the document.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to a YAML settings file")
	flags.String("log-level", "", "Logging level: debug, info, warn or error")
	flags.String("log-format", "", "Log output format: text or json")
	flags.Duration("budget", 0, "Time budget of one view reload step")
	flags.Bool("auto-convert", true, "Insert converter nodes for convertible connections")
	flags.Int("port", 0, "Port for the health and metrics server, 0 disables it")

	checkCmd := &cobra.Command{
		Use:   "check <path>...",
		Short: "Load documents, apply their connections and report problems",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCheck,
	}

	previewCmd := &cobra.Command{
		Use:   "preview <path>...",
		Short: "Print the document as a Mermaid flowchart",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPreview,
	}
	previewCmd.Flags().Bool("color", false, "Highlight the Mermaid output")

	viewCmd := &cobra.Command{
		Use:   "view <path>...",
		Short: "Show the document in an interactive terminal view",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runView,
	}

	pushCmd := &cobra.Command{
		Use:   "push <path>...",
		Short: "Stream the document's view to a remote socket.io renderer",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPush,
	}
	pushCmd.Flags().String("url", "", "Remote renderer URL")
	pushCmd.Flags().String("namespace", "", "socket.io namespace")

	rootCmd.AddCommand(checkCmd, previewCmd, viewCmd, pushCmd)
	return rootCmd
}

// loadSettings reads the settings file and applies flag overrides.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	settings, err := config.LoadFromPath(path)
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}

	if v, _ := flags.GetString("log-level"); v != "" {
		settings.Log.Level = v
	}
	if v, _ := flags.GetString("log-format"); v != "" {
		settings.Log.Format = v
	}
	if v, _ := flags.GetDuration("budget"); v > 0 {
		settings.View.Budget = config.Duration(v)
	}
	if flags.Changed("auto-convert") {
		v, _ := flags.GetBool("auto-convert")
		settings.Resolver.AutoConvert = &v
	}
	if flags.Changed("port") {
		settings.Server.Port, _ = flags.GetInt("port")
	}
	if f := flags.Lookup("url"); f != nil && f.Changed {
		settings.Remote.URL = f.Value.String()
	}
	if f := flags.Lookup("namespace"); f != nil && f.Changed {
		settings.Remote.Namespace = f.Value.String()
	}

	if err := settings.Validate(); err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return settings, nil
}

// newApp builds the App for a subcommand and starts its health server.
func newApp(cmd *cobra.Command, args []string) (*app.App, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := app.NewConfig(app.Config{DocumentPaths: args, Settings: settings})
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	a, err := app.NewApp(cmd.ErrOrStderr(), cfg)
	if err != nil {
		return nil, err
	}
	a.StartServer()
	return a, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, args)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.Check(cmd.Context(), cmd.OutOrStdout()); err != nil {
		return &ExitError{Code: 1, Message: fmt.Sprintf("check failed: %v", err)}
	}
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, args)
	if err != nil {
		return err
	}
	defer a.Close()

	color, _ := cmd.Flags().GetBool("color")
	return a.Preview(cmd.Context(), cmd.OutOrStdout(), color)
}

func runPush(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, args)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()
	return a.Push(ctx)
}
