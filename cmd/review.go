package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/wordtrack/internal/database"
	"github.com/example/wordtrack/internal/tracker"
	"github.com/spf13/cobra"
)

func newReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review <item-id> <quality 0-5>",
		Short: "Record a self-graded review in the open session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}
			quality, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quality %q", args[1])
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.tracker.RecordReview(cmd.Context(), a.learner, itemID, quality)
			if err != nil {
				return err
			}
			printReview(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func newAnswerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "answer <item-id> <translation...>",
		Short: "Grade a typed translation and record it in the open session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			word, err := a.store.GetWord(cmd.Context(), itemID)
			if errors.Is(err, database.ErrNotFound) {
				return fmt.Errorf("%w: %d", tracker.ErrUnknownItem, itemID)
			} else if err != nil {
				return err
			}
			grader, err := a.grader()
			if err != nil {
				return err
			}
			quality, err := grader.Grade(cmd.Context(), *word, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			res, err := a.tracker.RecordReview(cmd.Context(), a.learner, itemID, quality)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s = %s (quality %d)\n", word.Text, word.Translation, quality)
			printReview(out, res)
			return nil
		},
	}
}

func printReview(out io.Writer, res *tracker.ReviewResult) {
	rec := res.Record
	fmt.Fprintf(out, "Item %d: %s, next review %s (in %d days), +%d XP\n",
		rec.ItemID, rec.MasteryLevel, rec.NextReviewDate.Format("2006-01-02"), rec.IntervalDays, res.XPEarned)
	if res.Mastered {
		fmt.Fprintln(out, "Word mastered!")
	}
}
