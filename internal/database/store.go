package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/wordtrack/pkg/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when a keyed record does not exist
var ErrNotFound = errors.New("database: record not found")

// Repository is the set of keyed stores behind the scheduler.
// Every per-learner record is keyed by learner id.
type Repository interface {
	// Mastery records
	GetMastery(ctx context.Context, learnerID, itemID int64) (*models.MasteryRecord, error)
	UpsertMastery(ctx context.Context, rec *models.MasteryRecord) error
	DueBefore(ctx context.Context, learnerID int64, date time.Time) ([]models.MasteryRecord, error)
	UpcomingAfter(ctx context.Context, learnerID int64, date time.Time, limit int) ([]models.MasteryRecord, error)
	ListMastery(ctx context.Context, learnerID int64) ([]models.MasteryRecord, error)

	// Study sessions
	CreateSession(ctx context.Context, s *models.StudySession) error
	GetOpenSession(ctx context.Context, learnerID int64) (*models.StudySession, error)
	AddSessionWord(ctx context.Context, sessionID string, itemID int64) error
	AddSessionXP(ctx context.Context, sessionID string, xp int) error
	CloseSession(ctx context.Context, s *models.StudySession) error
	ListSessions(ctx context.Context, learnerID int64, limit int) ([]models.StudySession, error)
	ClosedSessionsSince(ctx context.Context, learnerID int64, since time.Time) ([]models.StudySession, error)

	// Learner progress
	GetProgress(ctx context.Context, learnerID int64) (*models.LearnerProgress, error)
	SaveProgress(ctx context.Context, p *models.LearnerProgress) error
	LearnerIDs(ctx context.Context) ([]int64, error)

	// Achievements
	UnlockedAchievements(ctx context.Context, learnerID int64) (map[string]time.Time, error)
	UnlockAchievement(ctx context.Context, learnerID int64, achievementID string, at time.Time) (bool, error)

	// Review history and statistics
	AppendReview(ctx context.Context, e *models.ReviewEvent) error
	RecentReviews(ctx context.Context, learnerID, itemID int64, limit int) ([]models.ReviewEvent, error)
	Aggregates(ctx context.Context, learnerID int64) (models.Aggregates, error)

	// Vocabulary
	GetWord(ctx context.Context, id int64) (*models.Word, error)
	WordExists(ctx context.Context, id int64) (bool, error)
	WordIDs(ctx context.Context) ([]int64, error)
	UpsertWord(ctx context.Context, w *models.Word) (bool, error)
}

// Store is a Repository that can group writes into one atomic unit
type Store interface {
	Repository
	InTx(ctx context.Context, fn func(Repository) error) error
	Close() error
}

// timeLayout is fixed width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "bad timestamp %q", s)
	}
	return t, nil
}

func nullDate(date time.Time) sql.NullString {
	if date.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: models.FormatDate(date), Valid: true}
}

func parseNullDate(s sql.NullString) (time.Time, error) {
	if !s.Valid {
		return time.Time{}, nil
	}
	return models.ParseDate(s.String)
}

// queries implements Repository over a *sqlx.DB or a *sqlx.Tx
type queries struct {
	q sqlx.ExtContext
}

func (r *queries) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	err := sqlx.GetContext(ctx, r.q, dest, r.q.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *queries) selectAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, r.q, dest, r.q.Rebind(query), args...)
}

func (r *queries) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return r.q.ExecContext(ctx, r.q.Rebind(query), args...)
}
