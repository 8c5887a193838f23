package cmd

import (
	"log/slog"

	"github.com/example/wordtrack/internal/ai"
	"github.com/example/wordtrack/internal/config"
	"github.com/example/wordtrack/internal/database"
	"github.com/example/wordtrack/internal/logging"
	"github.com/example/wordtrack/internal/tracker"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// app holds the collaborators every command works with
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *database.SQLStore
	tracker *tracker.Tracker
	learner int64
}

// openApp loads the configuration and connects to the database
func openApp(cmd *cobra.Command) (*app, error) {
	var envFiles []string
	if f, _ := cmd.Flags().GetString("env-file"); f != "" {
		envFiles = append(envFiles, f)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)

	store, err := database.Connect(cfg.DBType, cfg.DBDSN)
	if err != nil {
		return nil, err
	}

	learner := cfg.LearnerID
	if id, _ := cmd.Flags().GetInt64("learner"); id > 0 {
		learner = id
	}

	tr := tracker.New(store,
		tracker.WithLogger(logger),
		tracker.WithDailyGoal(cfg.DailyGoalMinutes))

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		tracker: tr,
		learner: learner,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// openAI returns the OpenAI client, nil when no key is configured
func (a *app) openAI() (*ai.OpenAI, error) {
	if !a.cfg.AIEnabled() {
		return nil, nil
	}
	client, err := ai.NewOpenAI(a.cfg.OpenAIKey, a.cfg.OpenAIModel, a.cfg.OpenAIBaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create OpenAI client")
	}
	return client, nil
}

// grader prefers OpenAI and falls back to exact matching
func (a *app) grader() (ai.Grader, error) {
	client, err := a.openAI()
	if err != nil || client == nil {
		return ai.ExactGrader{}, err
	}
	return client, nil
}
