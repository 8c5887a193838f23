package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// UnlockedAchievements maps achievement id to unlock time for the learner
func (r *queries) UnlockedAchievements(ctx context.Context, learnerID int64) (map[string]time.Time, error) {
	var rows []struct {
		AchievementID string `db:"achievement_id"`
		UnlockedAt    string `db:"unlocked_at"`
	}
	err := r.selectAll(ctx, &rows, `SELECT achievement_id, unlocked_at
		FROM learner_achievements WHERE learner_id = ?`, learnerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get unlocked achievements")
	}

	unlocked := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		at, err := parseTime(row.UnlockedAt)
		if err != nil {
			return nil, err
		}
		unlocked[row.AchievementID] = at
	}
	return unlocked, nil
}

// UnlockAchievement records an unlock. It reports false when the learner
// already had the achievement, leaving the original unlock time untouched.
func (r *queries) UnlockAchievement(ctx context.Context, learnerID int64, achievementID string, at time.Time) (bool, error) {
	res, err := r.exec(ctx, `
		INSERT INTO learner_achievements (learner_id, achievement_id, unlocked_at)
		VALUES (?, ?, ?)
		ON CONFLICT (learner_id, achievement_id) DO NOTHING`,
		learnerID, achievementID, formatTime(at))
	if err != nil {
		return false, errors.Wrapf(err, "failed to unlock achievement %s", achievementID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to read affected rows")
	}
	return n > 0, nil
}
