package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/wordtrack/pkg/models"
	"github.com/pkg/errors"
)

const sessionColumns = `id, learner_id, start_time, end_time, lesson_reference, quiz_score, xp_earned`

type sessionRow struct {
	ID              string         `db:"id"`
	LearnerID       int64          `db:"learner_id"`
	StartTime       string         `db:"start_time"`
	EndTime         sql.NullString `db:"end_time"`
	LessonReference string         `db:"lesson_reference"`
	QuizScore       float64        `db:"quiz_score"`
	XPEarned        int            `db:"xp_earned"`
}

func (r sessionRow) toModel() (models.StudySession, error) {
	start, err := parseTime(r.StartTime)
	if err != nil {
		return models.StudySession{}, err
	}
	s := models.StudySession{
		ID:              r.ID,
		LearnerID:       r.LearnerID,
		StartTime:       start,
		LessonReference: r.LessonReference,
		QuizScore:       r.QuizScore,
		XPEarned:        r.XPEarned,
	}
	if r.EndTime.Valid {
		end, err := parseTime(r.EndTime.String)
		if err != nil {
			return models.StudySession{}, err
		}
		s.EndTime = &end
	}
	return s, nil
}

// CreateSession persists a new open session. A second open session for the
// same learner violates the single-open index and fails.
func (r *queries) CreateSession(ctx context.Context, s *models.StudySession) error {
	_, err := r.exec(ctx, `
		INSERT INTO study_sessions (id, learner_id, start_time, lesson_reference, quiz_score, xp_earned)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.LearnerID, formatTime(s.StartTime), s.LessonReference, s.QuizScore, s.XPEarned)
	if err != nil {
		return errors.Wrap(err, "failed to create study session")
	}
	return nil
}

// GetOpenSession returns the learner's open session, ErrNotFound when none
func (r *queries) GetOpenSession(ctx context.Context, learnerID int64) (*models.StudySession, error) {
	var row sessionRow
	err := r.get(ctx, &row, `SELECT `+sessionColumns+` FROM study_sessions
		WHERE learner_id = ? AND end_time IS NULL`, learnerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to get open session")
	}
	s, err := row.toModel()
	if err != nil {
		return nil, err
	}
	if s.WordsCovered, err = r.sessionWords(ctx, s.ID); err != nil {
		return nil, err
	}
	return &s, nil
}

// AddSessionWord records an item as covered. Repeats are ignored.
func (r *queries) AddSessionWord(ctx context.Context, sessionID string, itemID int64) error {
	_, err := r.exec(ctx, `
		INSERT INTO session_words (session_id, item_id) VALUES (?, ?)
		ON CONFLICT (session_id, item_id) DO NOTHING`, sessionID, itemID)
	if err != nil {
		return errors.Wrapf(err, "failed to add item %d to session", itemID)
	}
	return nil
}

// AddSessionXP adds xp to an open session's running total
func (r *queries) AddSessionXP(ctx context.Context, sessionID string, xp int) error {
	res, err := r.exec(ctx, `
		UPDATE study_sessions SET xp_earned = xp_earned + ?
		WHERE id = ? AND end_time IS NULL`, xp, sessionID)
	if err != nil {
		return errors.Wrap(err, "failed to add session xp")
	}
	return requireAffected(res)
}

// CloseSession stamps the end time, score and xp of an open session.
// It returns ErrNotFound if the session is not open.
func (r *queries) CloseSession(ctx context.Context, s *models.StudySession) error {
	if s.EndTime == nil {
		return errors.New("cannot close a session without an end time")
	}
	res, err := r.exec(ctx, `
		UPDATE study_sessions
		SET end_time = ?, quiz_score = ?, xp_earned = ?, duration_seconds = ?
		WHERE id = ? AND end_time IS NULL`,
		formatTime(*s.EndTime), s.QuizScore, s.XPEarned, int64(s.Duration()/time.Second), s.ID)
	if err != nil {
		return errors.Wrap(err, "failed to close study session")
	}
	return requireAffected(res)
}

// ListSessions returns up to limit sessions of the learner, newest first
func (r *queries) ListSessions(ctx context.Context, learnerID int64, limit int) ([]models.StudySession, error) {
	if limit <= 0 {
		return nil, nil
	}
	var rows []sessionRow
	err := r.selectAll(ctx, &rows, `SELECT `+sessionColumns+` FROM study_sessions
		WHERE learner_id = ?
		ORDER BY start_time DESC
		LIMIT ?`, learnerID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list study sessions")
	}
	return r.sessionModels(ctx, rows)
}

// ClosedSessionsSince returns sessions that ended at or after since
func (r *queries) ClosedSessionsSince(ctx context.Context, learnerID int64, since time.Time) ([]models.StudySession, error) {
	var rows []sessionRow
	err := r.selectAll(ctx, &rows, `SELECT `+sessionColumns+` FROM study_sessions
		WHERE learner_id = ? AND end_time IS NOT NULL AND end_time >= ?
		ORDER BY start_time ASC`, learnerID, formatTime(since))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list closed sessions")
	}
	return r.sessionModels(ctx, rows)
}

func (r *queries) sessionModels(ctx context.Context, rows []sessionRow) ([]models.StudySession, error) {
	sessions := make([]models.StudySession, 0, len(rows))
	for _, row := range rows {
		s, err := row.toModel()
		if err != nil {
			return nil, err
		}
		if s.WordsCovered, err = r.sessionWords(ctx, s.ID); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (r *queries) sessionWords(ctx context.Context, sessionID string) ([]int64, error) {
	var ids []int64
	err := r.selectAll(ctx, &ids, `SELECT item_id FROM session_words
		WHERE session_id = ? ORDER BY item_id ASC`, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get session words")
	}
	return ids, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
