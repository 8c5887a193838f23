package cmd

import (
	"errors"
	"fmt"

	"github.com/example/wordtrack/internal/spaced_repetition"
	"github.com/spf13/cobra"
)

func newQueueCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "List the words to review next",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if limit <= 0 {
				limit = a.cfg.QueueLimit
			}
			out := cmd.OutOrStdout()
			ids, err := a.tracker.Queue(cmd.Context(), a.learner, limit)
			if errors.Is(err, spaced_repetition.ErrEmptyQueue) {
				fmt.Fprintln(out, "Nothing to review right now.")
				return nil
			}
			if err != nil {
				return err
			}

			for i, id := range ids {
				word, err := a.store.GetWord(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%2d. [%d] %s - %s\n", i+1, id, word.Text, word.Translation)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of words (default QUEUE_LIMIT)")
	return cmd
}
