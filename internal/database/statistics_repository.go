package database

import (
	"context"
	"database/sql"

	"github.com/example/wordtrack/pkg/models"
	"github.com/pkg/errors"
)

// Aggregates computes the totals achievement conditions are checked against.
// Study minutes count closed sessions only.
func (r *queries) Aggregates(ctx context.Context, learnerID int64) (models.Aggregates, error) {
	var agg models.Aggregates

	var mastery struct {
		Learned  int           `db:"learned"`
		Mastered sql.NullInt64 `db:"mastered"`
	}
	err := r.get(ctx, &mastery, `
		SELECT COUNT(*) AS learned,
			SUM(CASE WHEN mastery_level = 'mastered' THEN 1 ELSE 0 END) AS mastered
		FROM mastery_records
		WHERE learner_id = ? AND times_practiced > 0`, learnerID)
	if err != nil {
		return agg, errors.Wrap(err, "failed to count learned words")
	}
	agg.WordsLearned = mastery.Learned
	agg.MasteredWords = int(mastery.Mastered.Int64)

	var sessions struct {
		Total   int             `db:"total"`
		Best    sql.NullFloat64 `db:"best"`
		Seconds sql.NullInt64   `db:"seconds"`
	}
	err = r.get(ctx, &sessions, `
		SELECT COUNT(*) AS total, MAX(quiz_score) AS best, SUM(duration_seconds) AS seconds
		FROM study_sessions
		WHERE learner_id = ? AND end_time IS NOT NULL`, learnerID)
	if err != nil {
		return agg, errors.Wrap(err, "failed to aggregate sessions")
	}
	agg.TotalSessions = sessions.Total
	agg.BestQuizScore = sessions.Best.Float64
	agg.StudyMinutes = int(sessions.Seconds.Int64 / 60)

	p, err := r.GetProgress(ctx, learnerID)
	switch {
	case err == nil:
		agg.CurrentStreak = p.CurrentStreak
	case !errors.Is(err, ErrNotFound):
		return agg, err
	}
	return agg, nil
}
