package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"recitebot/internal/daemonrun"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the recitebot HTTP server in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				OnListen: func(addr string) {
					fmt.Fprintf(out, "Listening on http://%s\n", addr)
				},
			})
		},
	}
}
