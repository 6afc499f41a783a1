// Package commands implements the CLI commands for the kiln build orchestrator.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/adapters/detector"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/build"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

// CLI represents the command line interface for kiln.
type CLI struct {
	app     Application
	logger  ports.Logger
	rootCmd *cobra.Command

	// detect reports the log format to use when --log-format is auto.
	detect func() detector.LogFormat
	format detector.LogFormat
}

// Application represents the application logic interface.
type Application interface {
	Build(ctx context.Context, opts app.BuildOptions) error
	Watch(ctx context.Context, opts app.WatchOptions) error
	Clean(ctx context.Context) error
	History(ctx context.Context, n int) ([]domain.Invocation, error)
}

// New creates a new CLI instance with the given app. The logger is switched
// to the resolved format before any command runs; it may be nil.
func New(a Application, log ports.Logger) *CLI {
	rootCmd := &cobra.Command{
		Use:           "kiln",
		Short:         "An incremental build orchestrator for front-end sources",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	// Registered before the version flag so -v stays with --verbose.
	rootCmd.PersistentFlags().String("log-format", "auto", "Log format: auto, pretty, or json")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print file starts, debug logs and full diagnostics")

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		logger:  log,
		rootCmd: rootCmd,
		detect:  detector.DetectEnvironment,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		flag, _ := cmd.Flags().GetString("log-format")
		verbose, _ := cmd.Flags().GetBool("verbose")

		c.format = detector.ResolveFormat(c.detect(), flag)
		if c.logger != nil {
			c.logger.SetJSON(c.format == detector.FormatJSON)
			c.logger.SetVerbose(verbose)
		}
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newHistoryCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// SetDetector replaces terminal detection. Used for testing.
func (c *CLI) SetDetector(detect func() detector.LogFormat) {
	c.detect = detect
}

// addOverrideFlags registers the flags shared by build and watch.
func addOverrideFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("clean", false, "Delete the persisted cache before building")
	cmd.Flags().IntP("concurrency", "j", 0, "Maximum files compiled at once (0 picks automatically)")
	cmd.Flags().BoolP("production", "p", false, "Build for production (enables minification)")
	cmd.Flags().Bool("tui", false, "Show progress in an interactive terminal view")
}

func overrides(cmd *cobra.Command) app.Overrides {
	production, _ := cmd.Flags().GetBool("production")
	verbose, _ := cmd.Flags().GetBool("verbose")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	return app.Overrides{
		Production:  production,
		Verbose:     verbose,
		Concurrency: concurrency,
	}
}
