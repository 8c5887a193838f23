package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/wordtrack/internal/bot"
	"github.com/example/wordtrack/internal/scheduler"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the reminder scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			grader, err := a.grader()
			if err != nil {
				return err
			}
			botConfig := bot.DefaultConfig()
			botConfig.QueueLimit = a.cfg.QueueLimit
			deps := bot.Deps{
				Tracker: a.tracker,
				Store:   a.store,
				Grader:  grader,
				Config:  botConfig,
				Logger:  a.logger,
			}
			if client, err := a.openAI(); err != nil {
				return err
			} else if client != nil {
				deps.Examples = client
			}

			b, err := bot.New(a.cfg.TelegramToken, deps)
			if err != nil {
				return err
			}
			sched := scheduler.New(a.store, b, scheduler.Config{
				StartHour: a.cfg.NotificationStartHour,
				EndHour:   a.cfg.NotificationEndHour,
				MaxCount:  a.cfg.QueueLimit,
			}, a.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return b.Start(ctx)
			})
			g.Go(func() error {
				if err := sched.Start(); err != nil {
					return err
				}
				<-ctx.Done()
				sched.Stop()
				return nil
			})

			a.logger.Info("bot started, press Ctrl+C to stop")
			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			a.logger.Info("bot stopped")
			return nil
		},
	}
}
