package models

import "time"

// DefaultDailyGoalMinutes is the daily study goal for a new learner
const DefaultDailyGoalMinutes = 15

// LearnerProgress holds the longitudinal level and streak state of a learner
type LearnerProgress struct {
	LearnerID     int64     `json:"learner_id"`
	Level         int       `json:"level"`
	CurrentXP     int       `json:"current_xp"`
	TotalXPEarned int       `json:"total_xp_earned"`
	CurrentStreak int       `json:"current_streak"`
	LongestStreak int       `json:"longest_streak"`
	LastStudyDate time.Time `json:"last_study_date"` // zero when the learner never closed a session
	DailyGoal     int       `json:"daily_goal"`      // minutes
	CreatedAt     time.Time `json:"created_at"`
}

// NewLearnerProgress returns the starting state for a learner
func NewLearnerProgress(learnerID int64, dailyGoal int, now time.Time) LearnerProgress {
	if dailyGoal <= 0 {
		dailyGoal = DefaultDailyGoalMinutes
	}
	return LearnerProgress{
		LearnerID: learnerID,
		Level:     1,
		DailyGoal: dailyGoal,
		CreatedAt: now,
	}
}
