package commands

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/core/domain"
)

const defaultHistory = 10

func (c *CLI) newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent builds and watch cycles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, _ := cmd.Flags().GetInt("limit")
			filter, _ := cmd.Flags().GetString("mode")

			invocations, err := c.app.History(cmd.Context(), n)
			if err != nil {
				return err
			}
			if filter != "" {
				mode, err := domain.ParseMode(filter)
				if err != nil {
					return err
				}
				invocations = slices.DeleteFunc(invocations, func(inv domain.Invocation) bool {
					return inv.Mode != mode
				})
			}

			out := cmd.OutOrStdout()
			if len(invocations) == 0 {
				_, _ = fmt.Fprintln(out, "No builds recorded yet.")
				return nil
			}
			_, _ = fmt.Fprintln(out, historyTable(invocations))
			return nil
		},
	}
	cmd.Flags().IntP("limit", "n", defaultHistory, "Number of invocations to show")
	cmd.Flags().String("mode", "", "Only show invocations of this mode: individual, batch, or watch")
	return cmd
}

func historyTable(invocations []domain.Invocation) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("STARTED", "MODE", "FILES", "BUILT", "CACHED", "FAILED", "WARNINGS", "DURATION")

	for _, inv := range invocations {
		duration := "unfinished"
		if inv.Finished() {
			duration = inv.Summary.Duration.Round(time.Millisecond).String()
		}
		t.Row(
			inv.StartedAt.Local().Format(time.DateTime),
			string(inv.Mode),
			strconv.Itoa(inv.Summary.Total),
			strconv.Itoa(inv.Summary.Succeeded),
			strconv.Itoa(inv.Summary.Cached),
			strconv.Itoa(inv.Summary.Failed),
			strconv.Itoa(inv.Summary.Warnings),
			duration,
		)
	}
	return t.String()
}
