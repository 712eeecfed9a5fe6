package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"recitebot/internal/review"
)

func newReciteCommand(ctx *commandContext) *cobra.Command {
	reciteCmd := &cobra.Command{
		Use:   "recite",
		Short: "Manage the recite list and review schedule",
	}

	reciteCmd.AddCommand(newReciteListCommand(ctx))
	reciteCmd.AddCommand(newReciteAddCommand(ctx))
	reciteCmd.AddCommand(newReciteRemoveCommand(ctx))
	reciteCmd.AddCommand(newReciteDoneCommand(ctx))
	reciteCmd.AddCommand(newReciteGroupsCommand(ctx, "due", "Show chapters due for review", true))
	reciteCmd.AddCommand(newReciteGroupsCommand(ctx, "all", "Show every chapter on the recite list", false))
	reciteCmd.AddCommand(newReciteStrategiesCommand())
	reciteCmd.AddCommand(newReciteStrategyCommand(ctx))

	return reciteCmd
}

func newReciteListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recite items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withReviews(func(store *review.Store) error {
				items, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, items)
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "Recite list is empty")
					return nil
				}
				now := time.Now()
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						item.BookName,
						item.ChapterTitle,
						item.Strategy,
						progressLabel(item),
						review.Until(item.NextReviewAt, now).Message,
					})
				}
				fmt.Fprintln(out, renderTable([]column{
					textColumn("Book"),
					textColumn("Chapter"),
					textColumn("Strategy"),
					countColumn("Reviews"),
					textColumn("Next Review"),
				}, rows))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print items as JSON")
	return cmd
}

func newReciteAddCommand(ctx *commandContext) *cobra.Command {
	var strategy string
	cmd := &cobra.Command{
		Use:   "add <book> <chapter>",
		Short: "Add a chapter to the recite list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withReviews(func(store *review.Store) error {
				item, created, err := store.Add(cmd.Context(), args[0], args[1], strategy)
				if err != nil {
					return reciteError("add", err)
				}
				out := cmd.OutOrStdout()
				if !created {
					fmt.Fprintf(out, "%s is already on the recite list\n", item.ID)
					return nil
				}
				fmt.Fprintf(out, "Added %s (%s)\n", item.ID, item.Strategy)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "Review strategy (defaults to review.default_strategy)")
	return cmd
}

func newReciteRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <book> <chapter>",
		Short: "Remove a chapter from the recite list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withReviews(func(store *review.Store) error {
				removed, err := store.Remove(cmd.Context(), args[0], args[1])
				if err != nil {
					return reciteError("remove", err)
				}
				if !removed {
					return reciteError("remove", review.ErrNotFound)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", review.ItemID(strings.TrimSpace(args[0]), strings.TrimSpace(args[1])))
				return nil
			})
		},
	}
}

func newReciteDoneCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "done <book> <chapter>",
		Short: "Mark a chapter as memorized and schedule its next review",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withReviews(func(store *review.Store) error {
				item, err := store.MarkMemorized(cmd.Context(), args[0], args[1])
				if err != nil {
					return reciteError("mark memorized", err)
				}
				progress := review.Completion(item.ReviewCount, item.Strategy)
				countdown := review.Until(item.NextReviewAt, time.Now())
				if asJSON {
					return writeJSON(cmd, struct {
						Item       review.Item      `json:"item"`
						Completion review.Progress  `json:"completion"`
						Countdown  review.Countdown `json:"time_until_next_review"`
					}{item, progress, countdown})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Marked %s as memorized (%s)\n", item.ID, progressLabel(item))
				if item.NextReviewAt != nil {
					fmt.Fprintf(out, "Next review: %s (%s)\n", item.NextReviewAt.Local().Format(time.RFC3339), countdown.Message)
				}
				if progress.IsCompleted {
					fmt.Fprintln(out, "Schedule complete")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func newReciteGroupsCommand(ctx *commandContext, use, short string, dueOnly bool) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := ctx.openLibrary()
			if err != nil {
				return err
			}
			return ctx.withReviews(func(store *review.Store) error {
				items, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				var filter func(review.Item) bool
				if dueOnly {
					filter = review.DueFilter(time.Now())
				}
				groups := review.Collect(items, lib, filter)
				if asJSON {
					return writeJSON(cmd, groups)
				}
				renderGroups(cmd.OutOrStdout(), groups, dueOnly)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print chapters as JSON")
	return cmd
}

func newReciteStrategiesCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "List review strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := review.Strategies()
			if asJSON {
				return writeJSON(cmd, all)
			}
			rows := make([][]string, 0, len(all))
			for _, s := range all {
				rows = append(rows, []string{
					s.Name,
					formatIntervals(s.Intervals),
					strconv.Itoa(s.CycleDays),
					s.Description,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{
				textColumn("Name"),
				textColumn("Intervals (days)"),
				countColumn("Cycle"),
				proseColumn("Description"),
			}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print strategies as JSON")
	return cmd
}

func newReciteStrategyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "strategy <book> <chapter> <strategy>",
		Short: "Change the review strategy of a chapter",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withReviews(func(store *review.Store) error {
				item, old, err := store.ChangeStrategy(cmd.Context(), args[0], args[1], args[2])
				if err != nil {
					return reciteError("change strategy", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Changed %s from %s to %s\n", item.ID, old, item.Strategy)
				return nil
			})
		},
	}
}

func reciteError(op string, err error) error {
	switch {
	case errors.Is(err, review.ErrNotFound):
		return fmt.Errorf("%s: chapter not found in recite list", op)
	case errors.Is(err, review.ErrUnknownStrategy):
		names := make([]string, 0, 3)
		for _, s := range review.Strategies() {
			names = append(names, s.Name)
		}
		return fmt.Errorf("%s: unknown review strategy (choose %s)", op, strings.Join(names, ", "))
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func renderGroups(out io.Writer, groups []review.BookGroup, dueOnly bool) {
	if len(groups) == 0 {
		if dueOnly {
			fmt.Fprintln(out, "Nothing is due for review")
		} else {
			fmt.Fprintln(out, "Recite list is empty")
		}
		return
	}
	colorize := shouldColorize(out)
	now := time.Now()
	for i, group := range groups {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, renderHeading(group.BookName, colorize))
		rows := make([][]string, 0, len(group.Chapters))
		for _, ch := range group.Chapters {
			rows = append(rows, []string{
				ch.Title,
				strconv.Itoa(ch.ReviewCount),
				review.Until(ch.NextReviewAt, now).Message,
			})
		}
		fmt.Fprintln(out, renderTable([]column{
			textColumn("Chapter"),
			countColumn("Reviews"),
			textColumn("Next Review"),
		}, rows))
	}
}

func progressLabel(item review.Item) string {
	p := review.Completion(item.ReviewCount, item.Strategy)
	return fmt.Sprintf("%d/%d", p.CurrentReviewCount, p.TotalReviewsNeeded)
}

func formatIntervals(intervals []float64) string {
	parts := make([]string, len(intervals))
	for i, v := range intervals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}
