package models

import "time"

// AchievementCategory groups achievements by what they measure
type AchievementCategory string

const (
	CategoryWords   AchievementCategory = "words"
	CategoryStreak  AchievementCategory = "streak"
	CategoryScore   AchievementCategory = "score"
	CategoryTime    AchievementCategory = "time"
	CategorySpecial AchievementCategory = "special"
)

// Achievement is a catalog entry joined with the learner's unlock state
type Achievement struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Icon        string              `json:"icon"`
	Category    AchievementCategory `json:"category"`
	UnlockedAt  *time.Time          `json:"unlocked_at,omitempty"`
}

// Unlocked reports whether the achievement has been earned
func (a Achievement) Unlocked() bool {
	return a.UnlockedAt != nil
}

// Aggregates are the learner totals achievement conditions are evaluated against
type Aggregates struct {
	WordsLearned  int     `json:"words_learned"`
	MasteredWords int     `json:"mastered_words"`
	TotalSessions int     `json:"total_sessions"`
	BestQuizScore float64 `json:"best_quiz_score"`
	StudyMinutes  int     `json:"study_minutes"`
	CurrentStreak int     `json:"current_streak"`
}
