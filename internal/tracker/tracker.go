package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/wordtrack/internal/database"
	"github.com/example/wordtrack/internal/leveling"
	"github.com/example/wordtrack/internal/logging"
	"github.com/example/wordtrack/internal/spaced_repetition"
	"github.com/example/wordtrack/pkg/models"
	"github.com/google/uuid"
)

// Tracker owns the study session lifecycle of every learner. Mutations of
// one learner are serialised; different learners proceed in parallel.
type Tracker struct {
	store     database.Store
	sm2       *spaced_repetition.SM2
	engine    *leveling.Engine
	logger    *slog.Logger
	dailyGoal int
	now       func() time.Time

	locks sync.Map // learner id -> *sync.Mutex
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// WithEngine replaces the default achievement engine
func WithEngine(engine *leveling.Engine) Option {
	return func(t *Tracker) { t.engine = engine }
}

// WithDailyGoal sets the daily goal in minutes given to new learners
func WithDailyGoal(minutes int) Option {
	return func(t *Tracker) { t.dailyGoal = minutes }
}

// New creates a tracker over store
func New(store database.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:     store,
		dailyGoal: models.DefaultDailyGoalMinutes,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = logging.Component(t.logger, "tracker")
	t.sm2 = spaced_repetition.NewSM2(t.logger)
	if t.engine == nil {
		t.engine = leveling.NewEngine(nil)
	}
	return t
}

// ReviewResult describes one recorded review
type ReviewResult struct {
	Previous  models.MasteryRecord
	Record    models.MasteryRecord
	XPEarned  int
	SessionID string
	Mastered  bool // the item reached the mastered level with this review
}

// CloseResult describes a closed session and its effect on the learner
type CloseResult struct {
	Session      models.StudySession
	Progress     models.LearnerProgress
	XPAwarded    int // session XP plus achievement bonuses
	LevelsGained int
	DailyGoalMet bool
	Unlocked     []models.Achievement
}

// Stats is the read-only summary of a learner
type Stats struct {
	Progress      models.LearnerProgress
	Level         leveling.LevelInfo
	Aggregates    models.Aggregates
	MasteryCounts map[models.MasteryLevel]int
	DueToday      int
}

func (t *Tracker) lock(learnerID int64) func() {
	v, _ := t.locks.LoadOrStore(learnerID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// StartSession opens a study session. It fails with ErrSessionAlreadyOpen
// while another session of the learner is open. The learner's progress
// record is created on the first session.
func (t *Tracker) StartSession(ctx context.Context, learnerID int64, lessonRef string) (*models.StudySession, error) {
	defer t.lock(learnerID)()

	session := &models.StudySession{
		ID:              uuid.NewString(),
		LearnerID:       learnerID,
		StartTime:       t.now(),
		LessonReference: lessonRef,
	}
	err := t.store.InTx(ctx, func(repo database.Repository) error {
		if _, err := repo.GetOpenSession(ctx, learnerID); err == nil {
			return ErrSessionAlreadyOpen
		} else if !errors.Is(err, database.ErrNotFound) {
			return err
		}
		if _, err := t.loadProgress(ctx, repo, learnerID, true); err != nil {
			return err
		}
		return repo.CreateSession(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	t.logger.Info("study session started",
		slog.Int64(logging.FieldLearnerID, learnerID),
		slog.String(logging.FieldSessionID, session.ID))
	return session, nil
}

// RecordReview grades one item inside the open session. Quality outside
// [0,5] is clamped. The new mastery state, session coverage, session XP and
// history event are written together or not at all.
func (t *Tracker) RecordReview(ctx context.Context, learnerID, itemID int64, quality int) (*ReviewResult, error) {
	defer t.lock(learnerID)()

	now := t.now()
	var result ReviewResult
	err := t.store.InTx(ctx, func(repo database.Repository) error {
		session, err := repo.GetOpenSession(ctx, learnerID)
		if errors.Is(err, database.ErrNotFound) {
			return ErrNoOpenSession
		} else if err != nil {
			return err
		}

		exists, err := repo.WordExists(ctx, itemID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %d", ErrUnknownItem, itemID)
		}

		prev, err := repo.GetMastery(ctx, learnerID, itemID)
		switch {
		case errors.Is(err, database.ErrNotFound):
			rec := models.NewMasteryRecord(learnerID, itemID, now)
			prev = &rec
		case err != nil:
			return err
		}

		next := t.sm2.Review(*prev, quality, now)
		if err := repo.UpsertMastery(ctx, &next); err != nil {
			return err
		}
		if err := repo.AddSessionWord(ctx, session.ID, itemID); err != nil {
			return err
		}

		result = ReviewResult{
			Previous:  *prev,
			Record:    next,
			SessionID: session.ID,
			Mastered:  prev.MasteryLevel != models.MasteryMastered && next.MasteryLevel == models.MasteryMastered,
		}
		result.XPEarned = reviewXP(result)
		if result.XPEarned > 0 {
			if err := repo.AddSessionXP(ctx, session.ID, result.XPEarned); err != nil {
				return err
			}
		}

		q, _ := spaced_repetition.ClampQuality(quality)
		return repo.AppendReview(ctx, &models.ReviewEvent{
			LearnerID:  learnerID,
			ItemID:     itemID,
			SessionID:  session.ID,
			Quality:    int(q),
			ReviewedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	t.logger.Debug("review recorded",
		slog.Int64(logging.FieldLearnerID, learnerID),
		slog.Int64(logging.FieldItemID, itemID),
		slog.Int("interval_days", result.Record.IntervalDays),
		slog.String("mastery_level", string(result.Record.MasteryLevel)))
	return &result, nil
}

// CloseSession closes the open session with quizScore (clamped to [0,100]),
// updates the streak, applies the session XP and bonuses, and unlocks any
// achievements now satisfied. Closing twice fails with ErrNoOpenSession.
func (t *Tracker) CloseSession(ctx context.Context, learnerID int64, quizScore float64) (*CloseResult, error) {
	defer t.lock(learnerID)()

	end := t.now()
	var result CloseResult
	err := t.store.InTx(ctx, func(repo database.Repository) error {
		session, err := repo.GetOpenSession(ctx, learnerID)
		if errors.Is(err, database.ErrNotFound) {
			return ErrNoOpenSession
		} else if err != nil {
			return err
		}
		progress, err := t.loadProgress(ctx, repo, learnerID, false)
		if err != nil {
			return err
		}

		// time already studied today, before this session
		dayStart := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())
		earlier, err := repo.ClosedSessionsSince(ctx, learnerID, dayStart)
		if err != nil {
			return err
		}
		var studied time.Duration
		for _, s := range earlier {
			studied += studiedSince(s.StartTime, *s.EndTime, dayStart)
		}

		session.EndTime = &end
		session.QuizScore = clampScore(quizScore)

		bonus := 0
		if session.QuizScore >= perfectQuizScore {
			bonus += XPQuizPerfect
		}
		goal := time.Duration(progress.DailyGoal) * time.Minute
		if studied < goal && studied+studiedSince(session.StartTime, end, dayStart) >= goal {
			bonus += XPDailyGoalMet
			result.DailyGoalMet = true
		}
		before := progress.CurrentStreak
		UpdateStreak(progress, end)
		bonus += streakBonus(before, progress.CurrentStreak)
		session.XPEarned += bonus

		if err := repo.CloseSession(ctx, session); err != nil {
			return err
		}
		result.LevelsGained = leveling.AwardXP(progress, session.XPEarned)
		result.XPAwarded = session.XPEarned
		if err := repo.SaveProgress(ctx, progress); err != nil {
			return err
		}

		unlocked, err := t.unlockAchievements(ctx, repo, learnerID, end)
		if err != nil {
			return err
		}
		if len(unlocked) > 0 {
			extra := XPAchievement * len(unlocked)
			result.LevelsGained += leveling.AwardXP(progress, extra)
			result.XPAwarded += extra
			if err := repo.SaveProgress(ctx, progress); err != nil {
				return err
			}
		}

		result.Session = *session
		result.Progress = *progress
		result.Unlocked = unlocked
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.logger.Info("study session closed",
		slog.Int64(logging.FieldLearnerID, learnerID),
		slog.String(logging.FieldSessionID, result.Session.ID),
		slog.Int("xp", result.XPAwarded),
		slog.Int("streak", result.Progress.CurrentStreak),
		slog.Int("level", result.Progress.Level))
	for _, a := range result.Unlocked {
		t.logger.Info("achievement unlocked",
			slog.Int64(logging.FieldLearnerID, learnerID),
			slog.String(logging.FieldAchievementID, a.ID))
	}
	return &result, nil
}

// unlockAchievements evaluates locked achievements and records new unlocks
func (t *Tracker) unlockAchievements(ctx context.Context, repo database.Repository, learnerID int64, at time.Time) ([]models.Achievement, error) {
	agg, err := repo.Aggregates(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	unlocked, err := repo.UnlockedAchievements(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	var out []models.Achievement
	for _, def := range t.engine.Evaluate(unlocked, agg) {
		created, err := repo.UnlockAchievement(ctx, learnerID, def.ID, at)
		if err != nil {
			return nil, err
		}
		if !created {
			continue
		}
		unlockedAt := at
		out = append(out, models.Achievement{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			Category:    def.Category,
			UnlockedAt:  &unlockedAt,
		})
	}
	return out, nil
}

// loadProgress returns the learner's progress, starting a fresh record when
// there is none. The fresh record is saved only when create is set.
func (t *Tracker) loadProgress(ctx context.Context, repo database.Repository, learnerID int64, create bool) (*models.LearnerProgress, error) {
	p, err := repo.GetProgress(ctx, learnerID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	fresh := models.NewLearnerProgress(learnerID, t.dailyGoal, t.now())
	if create {
		if err := repo.SaveProgress(ctx, &fresh); err != nil {
			return nil, err
		}
	}
	return &fresh, nil
}

// Queue returns up to limit item ids for the learner to review now
func (t *Tracker) Queue(ctx context.Context, learnerID int64, limit int) ([]int64, error) {
	return spaced_repetition.BuildQueue(ctx, t.store, learnerID, t.now(), limit)
}

// OpenSession returns the learner's open session
func (t *Tracker) OpenSession(ctx context.Context, learnerID int64) (*models.StudySession, error) {
	s, err := t.store.GetOpenSession(ctx, learnerID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNoOpenSession
	}
	return s, err
}

// Progress returns the learner's level, streak and totals. A learner who
// never studied gets the starting state.
func (t *Tracker) Progress(ctx context.Context, learnerID int64) (*Stats, error) {
	p, err := t.loadProgress(ctx, t.store, learnerID, false)
	if err != nil {
		return nil, err
	}
	agg, err := t.store.Aggregates(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	recs, err := t.store.ListMastery(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	today := models.DateOf(t.now())
	stats := &Stats{
		Progress:      *p,
		Level:         leveling.LevelInfoOf(*p),
		Aggregates:    agg,
		MasteryCounts: make(map[models.MasteryLevel]int),
	}
	for _, rec := range recs {
		stats.MasteryCounts[rec.MasteryLevel]++
		if rec.IsDue(today) {
			stats.DueToday++
		}
	}
	return stats, nil
}

// Achievements returns the full catalog with the learner's unlock times
func (t *Tracker) Achievements(ctx context.Context, learnerID int64) ([]models.Achievement, error) {
	unlocked, err := t.store.UnlockedAchievements(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	return t.engine.View(unlocked), nil
}

// RecentSessions returns up to limit sessions, newest first
func (t *Tracker) RecentSessions(ctx context.Context, learnerID int64, limit int) ([]models.StudySession, error) {
	return t.store.ListSessions(ctx, learnerID, limit)
}

// reviewXP is the XP a single review earns
func reviewXP(r ReviewResult) int {
	xp := 0
	switch {
	case r.Previous.TimesPracticed == 0:
		xp += XPWordLearned
	case r.Record.TimesCorrect > r.Previous.TimesCorrect:
		xp += XPQuizCorrect
	}
	if r.Mastered {
		xp += XPWordMastered
	}
	return xp
}
