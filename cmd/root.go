package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the wordtrack command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wordtrack",
		Short: "Vocabulary trainer with spaced repetition",
		Long: `Wordtrack schedules vocabulary reviews with SM-2, tracks study sessions,
streaks, XP and achievements, and serves a Telegram bot on top of them.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().String("env-file", "", "Path to a .env file (default .env)")
	rootCmd.PersistentFlags().Int64("learner", 0, "Learner id (overrides LEARNER_ID)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newQueueCmd())
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newReviewCmd())
	rootCmd.AddCommand(newAnswerCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newAchievementsCmd())
	rootCmd.AddCommand(newDifficultyCmd())
	return rootCmd
}

// Execute runs the CLI and exits non-zero on failure
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
