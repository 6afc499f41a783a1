package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/adapters/detector"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [files...]",
		Short: "Compile the given files, or every source file when none are given",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clean, _ := cmd.Flags().GetBool("clean")
			interactive, _ := cmd.Flags().GetBool("tui")

			return c.app.Build(cmd.Context(), app.BuildOptions{
				Files:       args,
				Clean:       clean,
				Plain:       c.format == detector.FormatJSON,
				Interactive: interactive,
				Overrides:   overrides(cmd),
			})
		},
	}
	addOverrideFlags(cmd)
	return cmd
}

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Build everything, then rebuild files as they change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clean, _ := cmd.Flags().GetBool("clean")
			interactive, _ := cmd.Flags().GetBool("tui")

			return c.app.Watch(cmd.Context(), app.WatchOptions{
				Clean:       clean,
				Plain:       c.format == detector.FormatJSON,
				Interactive: interactive,
				Overrides:   overrides(cmd),
			})
		},
	}
	addOverrideFlags(cmd)
	return cmd
}
