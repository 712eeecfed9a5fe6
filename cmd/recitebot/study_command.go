package main

import (
	"strings"

	"github.com/spf13/cobra"

	"recitebot/internal/gateway"
	"recitebot/internal/studyset"
	"recitebot/internal/tui"
)

func newStudyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "study [document]",
		Short: "Open the terminal study view",
		Long: "Open the terminal study view on a study set document. Paste text to split it\n" +
			"into chapters, edit them, and press w to write the document back.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.Paths.Document
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				path = strings.TrimSpace(args[0])
			}

			logger := ctx.logger()
			processor, err := gateway.New(cfg, logger)
			if err != nil {
				return err
			}
			doc := studyset.NewDocument(path, studyset.WithLogger(logger))
			if _, err := doc.Load(); err != nil {
				return err
			}
			return tui.Run(cmd.Context(), tui.Config{
				Processor: processor,
				Document:  doc,
				Logger:    logger,
			})
		},
	}
}
