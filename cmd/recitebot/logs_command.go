package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"recitebot/internal/logging"
	"recitebot/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var filter logs.Filter

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the recitebot log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			out := cmd.OutOrStdout()

			limit := lines
			if filter != (logs.Filter{}) {
				// read everything so filtering still yields up to lines matches
				limit = 0
			}
			recent, offset, err := readRecent(path, limit)
			if err != nil {
				return err
			}
			matched := filter.Apply(recent)
			if lines > 0 && len(matched) > lines {
				matched = matched[len(matched)-lines:]
			}
			for _, line := range matched {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, logs.DefaultPoll, func(line string) {
				if filter.Match(line) {
					fmt.Fprintln(out, line)
				}
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	cmd.Flags().StringVar(&filter.Component, "component", "", "Only show lines from this component (server, gateway, tui, ...)")
	cmd.Flags().StringVar(&filter.RequestID, "request", "", "Only show lines for this request ID")
	cmd.Flags().StringVar(&filter.Contains, "grep", "", "Only show lines containing this text")
	return cmd
}

// readRecent returns the last limit lines, or every line when limit is zero.
func readRecent(path string, limit int) ([]string, int64, error) {
	if limit > 0 {
		return logs.Last(path, limit)
	}
	return logs.ReadFrom(path, 0)
}
