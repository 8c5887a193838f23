package tracker

import (
	"math"
	"time"
)

// XP rewards
const (
	XPWordLearned    = 10
	XPWordMastered   = 50
	XPQuizCorrect    = 5
	XPQuizPerfect    = 30
	XPDailyGoalMet   = 20
	XPStreakBonus7   = 50
	XPStreakBonus30  = 200
	XPAchievement    = 50
	perfectQuizScore = 100
)

// streakBonus returns the bonus for a streak that just moved from before to after
func streakBonus(before, after int) int {
	switch {
	case after == before:
		return 0
	case after == 30:
		return XPStreakBonus30
	case after == 7:
		return XPStreakBonus7
	}
	return 0
}

// clampScore forces a quiz score into [0,100]. NaN counts as 0.
func clampScore(score float64) float64 {
	switch {
	case math.IsNaN(score), score < 0:
		return 0
	case score > perfectQuizScore:
		return perfectQuizScore
	}
	return score
}

// studiedSince is the part of a session from start to end that falls after
// dayStart. A session crossing midnight only counts its minutes on the new day.
func studiedSince(start, end, dayStart time.Time) time.Duration {
	if start.Before(dayStart) {
		start = dayStart
	}
	if end.Before(start) {
		return 0
	}
	return end.Sub(start)
}
