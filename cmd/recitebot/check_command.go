package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"recitebot/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var localOnly bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check directories and the text-processing backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var results []preflight.Result
			if localOnly {
				results = preflight.RunLocal(cfg)
			} else {
				results = preflight.RunAll(cmd.Context(), cfg)
			}

			if asJSON {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					rows = append(rows, []string{r.Name, statusLabel(r.Passed, colorize), r.Detail})
				}
				fmt.Fprintln(out, renderTable([]column{textColumn("Check"), textColumn("Status"), proseColumn("Detail")}, rows))
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d of %d checks failed", len(failed), len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	cmd.Flags().BoolVar(&localOnly, "local", false, "Skip network probes")
	return cmd
}
