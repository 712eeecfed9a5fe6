package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"recitebot/internal/config"
	"recitebot/internal/gateway"
	"recitebot/internal/logging"
	"recitebot/internal/studyset"
	"recitebot/internal/textutil"
)

var errNoInput = errors.New("no input: pass a file or pipe text on stdin")

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var remote bool
	var asJSON bool
	var saveName string
	var outputPath string
	var urlBase string

	cmd := &cobra.Command{
		Use:   "process [file]",
		Short: "Split study text into chapters",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			backend := *cfg
			if remote {
				backend.Gateway.Backend = config.BackendRemote
			}
			logger := ctx.logger()
			processor, err := gateway.New(&backend, logger)
			if err != nil {
				return err
			}

			outcome, err := gateway.Go(cmd.Context(), processor, text).Wait(cmd.Context())
			if err != nil {
				return err
			}
			var exitErr *gateway.ExitError
			if errors.As(outcome.Err, &exitErr) {
				if _, parseErr := studyset.ParseChapters([]byte(outcome.Output)); parseErr == nil {
					logging.WarnWithContext(logger, "processor exited with an error but produced chapters", "process_exit_nonzero",
						logging.Int("exit_code", exitErr.Code),
						logging.String("stderr", textutil.FirstLine(exitErr.Stderr, 200)),
					)
					outcome.Err = nil
				}
			}
			if outcome.Err != nil {
				logger.Warn("processing failed",
					logging.String(logging.FieldEventType, "process_failed"),
					logging.Error(outcome.Err),
				)
				return fmt.Errorf("process text: %w", outcome.Err)
			}
			chapters, err := studyset.ParseChapters([]byte(outcome.Output))
			if err != nil {
				return fmt.Errorf("process text: %w", err)
			}

			stderr := cmd.ErrOrStderr()
			if name := strings.TrimSpace(saveName); name != "" {
				lib, err := ctx.openLibrary()
				if err != nil {
					return err
				}
				filename, err := lib.Save(name, chapters)
				if err != nil {
					return fmt.Errorf("save book: %w", err)
				}
				fmt.Fprintf(stderr, "Saved book as %s\n", filename)
			}
			if path := strings.TrimSpace(outputPath); path != "" {
				doc := studyset.NewDocument(path, studyset.WithLogger(logger))
				doc.Replace(studyset.StudySet{Title: strings.TrimSpace(saveName), Chapters: chapters})
				if err := doc.Save(); err != nil {
					return err
				}
				fmt.Fprintf(stderr, "Wrote study set to %s\n", path)
			}
			if base := strings.TrimSpace(urlBase); base != "" {
				link, err := studyset.ResultURL(base, chapters)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), link)
				return nil
			}

			if asJSON {
				return writeJSON(cmd, chapters)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderChapters(chapters))
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Send the text to the configured recitebot server")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print chapters as JSON")
	cmd.Flags().StringVar(&saveName, "save", "", "Store the chapters in the library under this book name")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the chapters to a study set document")
	cmd.Flags().StringVar(&urlBase, "url", "", "Print a study page URL with this base instead of the table")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	var data []byte
	var err error
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
	} else {
		in := cmd.InOrStdin()
		if len(args) == 0 && isInteractive(in) {
			return "", errNoInput
		}
		data, err = io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", errors.New("input text is empty")
	}
	return text, nil
}

func renderChapters(chapters []studyset.Chapter) string {
	rows := make([][]string, 0, len(chapters))
	for i, ch := range chapters {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			ch.Title,
			textutil.FirstLine(ch.Content, previewWidth),
		})
	}
	return renderTable([]column{countColumn("#"), textColumn("Title"), textColumn("Content")}, rows)
}
