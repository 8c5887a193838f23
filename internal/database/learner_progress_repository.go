package database

import (
	"context"
	"database/sql"

	"github.com/example/wordtrack/pkg/models"
	"github.com/pkg/errors"
)

type progressRow struct {
	LearnerID     int64          `db:"learner_id"`
	Level         int            `db:"level"`
	CurrentXP     int            `db:"current_xp"`
	TotalXPEarned int            `db:"total_xp_earned"`
	CurrentStreak int            `db:"current_streak"`
	LongestStreak int            `db:"longest_streak"`
	LastStudyDate sql.NullString `db:"last_study_date"`
	DailyGoal     int            `db:"daily_goal"`
	CreatedAt     string         `db:"created_at"`
}

// GetProgress returns the learner's progress, ErrNotFound for a new learner
func (r *queries) GetProgress(ctx context.Context, learnerID int64) (*models.LearnerProgress, error) {
	var row progressRow
	err := r.get(ctx, &row, `
		SELECT learner_id, level, current_xp, total_xp_earned, current_streak,
			longest_streak, last_study_date, daily_goal, created_at
		FROM learner_progress WHERE learner_id = ?`, learnerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to get learner progress")
	}

	last, err := parseNullDate(row.LastStudyDate)
	if err != nil {
		return nil, errors.Wrap(err, "bad last_study_date")
	}
	created, err := parseTime(row.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &models.LearnerProgress{
		LearnerID:     row.LearnerID,
		Level:         row.Level,
		CurrentXP:     row.CurrentXP,
		TotalXPEarned: row.TotalXPEarned,
		CurrentStreak: row.CurrentStreak,
		LongestStreak: row.LongestStreak,
		LastStudyDate: last,
		DailyGoal:     row.DailyGoal,
		CreatedAt:     created,
	}, nil
}

// SaveProgress inserts or replaces the learner's progress
func (r *queries) SaveProgress(ctx context.Context, p *models.LearnerProgress) error {
	_, err := r.exec(ctx, `
		INSERT INTO learner_progress (learner_id, level, current_xp, total_xp_earned,
			current_streak, longest_streak, last_study_date, daily_goal, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (learner_id) DO UPDATE SET
			level = excluded.level,
			current_xp = excluded.current_xp,
			total_xp_earned = excluded.total_xp_earned,
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			last_study_date = excluded.last_study_date,
			daily_goal = excluded.daily_goal`,
		p.LearnerID, p.Level, p.CurrentXP, p.TotalXPEarned, p.CurrentStreak,
		p.LongestStreak, nullDate(p.LastStudyDate), p.DailyGoal, formatTime(p.CreatedAt))
	if err != nil {
		return errors.Wrap(err, "failed to save learner progress")
	}
	return nil
}

// LearnerIDs lists every learner with stored progress or mastery records
func (r *queries) LearnerIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.selectAll(ctx, &ids, `
		SELECT learner_id FROM learner_progress
		UNION
		SELECT DISTINCT learner_id FROM mastery_records
		ORDER BY learner_id`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list learners")
	}
	return ids, nil
}
