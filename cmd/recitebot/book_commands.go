package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"recitebot/internal/client"
	"recitebot/internal/editor"
	"recitebot/internal/studyset"
)

func newBookCommand(ctx *commandContext) *cobra.Command {
	bookCmd := &cobra.Command{
		Use:   "book",
		Short: "Inspect and publish saved books",
	}

	bookCmd.AddCommand(newBookListCommand(ctx))
	bookCmd.AddCommand(newBookShowCommand(ctx))
	bookCmd.AddCommand(newBookPushCommand(ctx))

	return bookCmd
}

func newBookListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books in the library, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := ctx.openLibrary()
			if err != nil {
				return err
			}
			books, err := lib.List()
			if err != nil {
				return fmt.Errorf("list books: %w", err)
			}
			if asJSON {
				return writeJSON(cmd, books)
			}
			out := cmd.OutOrStdout()
			if len(books) == 0 {
				fmt.Fprintln(out, "No books saved yet")
				return nil
			}
			rows := make([][]string, 0, len(books))
			for _, book := range books {
				rows = append(rows, []string{book.Name, book.Filename, book.Modified})
			}
			fmt.Fprintln(out, renderTable([]column{textColumn("Name"), textColumn("File"), textColumn("Modified")}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print books as JSON")
	return cmd
}

func newBookShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <filename>",
		Short: "Show the chapters of a saved book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := ctx.openLibrary()
			if err != nil {
				return err
			}
			book, err := lib.Load(args[0])
			if err != nil {
				return fmt.Errorf("show book: %w", err)
			}
			if asJSON {
				return writeJSON(cmd, book)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderHeading(book.Name, shouldColorize(out)))
			fmt.Fprintln(out, renderChapters(book.Chapters))
			fmt.Fprintf(out, "%d chapters\n", len(book.Chapters))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the book as JSON")
	return cmd
}

func newBookPushCommand(ctx *commandContext) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "push <document>",
		Short: "Save a study set document to the recitebot server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			doc := studyset.NewDocument(args[0], studyset.WithLogger(ctx.logger()))
			found, err := doc.Load()
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("push book: no study set in %s", args[0])
			}
			set := doc.Current()

			ed := editor.New()
			ed.Render(set.Chapters)
			bookName := strings.TrimSpace(name)
			if bookName == "" {
				bookName = set.Title
			}
			ed.SetBookName(bookName)
			snap := ed.Snapshot()

			c := client.New(cfg.Server.URL, client.WithToken(cfg.Server.Token))
			msg, err := c.SaveBook(cmd.Context(), snap.BookName, snap.Chapters)
			if err != nil {
				if errors.Is(err, client.ErrNoChapters) {
					return fmt.Errorf("push book: %s has no chapters", args[0])
				}
				return fmt.Errorf("push book: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Book name (defaults to the document title)")
	return cmd
}
