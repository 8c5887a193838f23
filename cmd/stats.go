package cmd

import (
	"fmt"
	"strconv"

	"github.com/example/wordtrack/internal/quiz"
	"github.com/example/wordtrack/pkg/models"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show level, streak and learning statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.tracker.Progress(cmd.Context(), a.learner)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			lvl := stats.Level
			fmt.Fprintf(out, "Level %d: %d/%d XP (%.0f%%), %d XP in total\n",
				lvl.Level, lvl.CurrentXP, lvl.XPForNext, lvl.Percent, lvl.TotalXP)
			fmt.Fprintf(out, "Streak: %d days (longest %d)\n",
				stats.Progress.CurrentStreak, stats.Progress.LongestStreak)
			fmt.Fprintf(out, "Sessions: %d, study time: %d min, best quiz: %.0f%%\n",
				stats.Aggregates.TotalSessions, stats.Aggregates.StudyMinutes, stats.Aggregates.BestQuizScore)
			fmt.Fprintf(out, "Words: %d learning, %d review, %d mastered; %d due today\n",
				stats.MasteryCounts[models.MasteryLearning], stats.MasteryCounts[models.MasteryReview],
				stats.MasteryCounts[models.MasteryMastered], stats.DueToday)
			return nil
		},
	}
}

func newAchievementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "List achievements and which are unlocked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.tracker.Achievements(cmd.Context(), a.learner)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, ach := range list {
				mark := "[ ]"
				if ach.Unlocked() {
					mark = "[x]"
				}
				fmt.Fprintf(out, "%s %s %s - %s\n", mark, ach.Icon, ach.Name, ach.Description)
			}
			return nil
		},
	}
}

func newDifficultyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "difficulty [item-id]",
		Short: "Recommend a quiz difficulty from recent answers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var itemID int64
			if len(args) == 1 {
				var err error
				if itemID, err = strconv.ParseInt(args[0], 10, 64); err != nil {
					return fmt.Errorf("invalid item id %q", args[0])
				}
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			selector := quiz.NewSelector(a.store)
			var d quiz.Difficulty
			if itemID > 0 {
				d, err = selector.ForItem(cmd.Context(), a.learner, itemID)
			} else {
				d, err = selector.ForLearner(cmd.Context(), a.learner)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), d)
			return nil
		},
	}
}
