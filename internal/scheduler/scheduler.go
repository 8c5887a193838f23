package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/wordtrack/internal/logging"
	"github.com/example/wordtrack/pkg/models"
	"github.com/go-co-op/gocron"
)

// Store is the read side of the database the reminder job needs
type Store interface {
	LearnerIDs(ctx context.Context) ([]int64, error)
	DueBefore(ctx context.Context, learnerID int64, date time.Time) ([]models.MasteryRecord, error)
}

// Notifier interface for sending notifications
type Notifier interface {
	SendReminders(learnerID int64, count int) error
}

// Config holds the reminder window and cap
type Config struct {
	StartHour int // first hour reminders may be sent (inclusive)
	EndHour   int // last hour reminders may be sent (inclusive)
	MaxCount  int // reminders never announce more than this many words; 0 means no cap
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     Store
	notifier  Notifier
	config    Config
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a new scheduler instance
func New(store Store, notifier Notifier, config Config, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		store:     store,
		notifier:  notifier,
		config:    config,
		logger:    logging.Component(logger, "scheduler"),
		now:       time.Now,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	// hourly check for learners with due words
	if _, err := s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) checkAndSendReminders() {
	s.SendDueReminders(context.Background())
}

// SendDueReminders notifies every learner with due words, if the current
// hour is inside the notification window. It returns the number of
// reminders sent.
func (s *Scheduler) SendDueReminders(ctx context.Context) int {
	hour := s.now().Hour()
	if hour < s.config.StartHour || hour > s.config.EndHour {
		s.logger.Debug("outside notification hours, skipping reminders",
			slog.Int("hour", hour),
			slog.Int("start_hour", s.config.StartHour),
			slog.Int("end_hour", s.config.EndHour))
		return 0
	}

	learners, err := s.store.LearnerIDs(ctx)
	if err != nil {
		s.logger.Error("failed to list learners", slog.Any("error", err))
		return 0
	}

	sent := 0
	for _, id := range learners {
		ok, err := s.remind(ctx, id)
		if err != nil {
			s.logger.Error("failed to send reminder",
				slog.Int64(logging.FieldLearnerID, id),
				slog.Any("error", err))
			continue
		}
		if ok {
			sent++
		}
	}
	return sent
}

// RunManualCheck forces a check for a specific learner regardless of the hour
func (s *Scheduler) RunManualCheck(ctx context.Context, learnerID int64) error {
	_, err := s.remind(ctx, learnerID)
	return err
}

func (s *Scheduler) remind(ctx context.Context, learnerID int64) (bool, error) {
	due, err := s.store.DueBefore(ctx, learnerID, models.DateOf(s.now()))
	if err != nil {
		return false, err
	}
	if len(due) == 0 {
		return false, nil
	}
	count := len(due)
	if s.config.MaxCount > 0 && count > s.config.MaxCount {
		count = s.config.MaxCount
	}
	if err := s.notifier.SendReminders(learnerID, count); err != nil {
		return false, err
	}
	return true, nil
}
