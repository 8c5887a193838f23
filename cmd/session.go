package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Start, close and inspect study sessions",
	}
	cmd.AddCommand(newSessionStartCmd())
	cmd.AddCommand(newSessionCloseCmd())
	cmd.AddCommand(newSessionShowCmd())
	cmd.AddCommand(newSessionHistoryCmd())
	return cmd
}

func newSessionStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start [lesson]",
		Short: "Open a study session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.tracker.StartSession(cmd.Context(), a.learner, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s started\n", s.ID)
			return nil
		},
	}
}

func newSessionCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close [quiz-score]",
		Short: "Close the open session with a quiz score between 0 and 100",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			score := 0.0
			if len(args) == 1 {
				var err error
				if score, err = strconv.ParseFloat(args[0], 64); err != nil {
					return fmt.Errorf("invalid quiz score %q", args[0])
				}
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.tracker.CloseSession(cmd.Context(), a.learner, score)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Session %s closed after %s\n", res.Session.ID, res.Session.Duration().Round(time.Second))
			fmt.Fprintf(out, "Words reviewed: %d, XP earned: %d\n", len(res.Session.WordsCovered), res.XPAwarded)
			if res.DailyGoalMet {
				fmt.Fprintln(out, "Daily goal reached!")
			}
			if res.LevelsGained > 0 {
				fmt.Fprintf(out, "Level up! You are now level %d\n", res.Progress.Level)
			}
			fmt.Fprintf(out, "Streak: %d days\n", res.Progress.CurrentStreak)
			for _, ach := range res.Unlocked {
				fmt.Fprintf(out, "Achievement unlocked: %s %s\n", ach.Icon, ach.Name)
			}
			return nil
		},
	}
}

func newSessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the open session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.tracker.OpenSession(cmd.Context(), a.learner)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s since %s: %d words, %d XP\n",
				s.ID, s.StartTime.Local().Format("15:04"), len(s.WordsCovered), s.XPEarned)
			return nil
		},
	}
}

func newSessionHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			sessions, err := a.tracker.RecentSessions(cmd.Context(), a.learner, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions yet.")
				return nil
			}
			for _, s := range sessions {
				status := "open"
				if !s.IsOpen() {
					status = s.Duration().Round(time.Second).String()
				}
				fmt.Fprintf(out, "%s  %-8s  %2d words  %3.0f%%  %d XP\n",
					s.StartTime.Local().Format("2006-01-02 15:04"), status,
					len(s.WordsCovered), s.QuizScore, s.XPEarned)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of sessions")
	return cmd
}
