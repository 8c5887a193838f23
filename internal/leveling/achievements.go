package leveling

import (
	"github.com/example/wordtrack/pkg/models"
)

// Condition is the unlock predicate of an achievement. The set of
// implementations is closed: one variant per kind of aggregate.
type Condition interface {
	Met(agg models.Aggregates) bool
	condition()
}

// WordsLearned is met once Count distinct words have been practiced
type WordsLearned struct{ Count int }

// StreakDays is met when the current streak reaches Days
type StreakDays struct{ Days int }

// QuizScore is met after MinSessions closed sessions, or once a session
// scored at least MinBestScore. Zero fields are not checked.
type QuizScore struct {
	MinSessions  int
	MinBestScore float64
}

// StudyTime is met after Minutes of closed-session study time
type StudyTime struct{ Minutes int }

// MasteredWords is met once Count words reach the mastered level
type MasteredWords struct{ Count int }

func (c WordsLearned) Met(agg models.Aggregates) bool  { return agg.WordsLearned >= c.Count }
func (c StreakDays) Met(agg models.Aggregates) bool    { return agg.CurrentStreak >= c.Days }
func (c StudyTime) Met(agg models.Aggregates) bool     { return agg.StudyMinutes >= c.Minutes }
func (c MasteredWords) Met(agg models.Aggregates) bool { return agg.MasteredWords >= c.Count }

func (c QuizScore) Met(agg models.Aggregates) bool {
	if c.MinSessions > 0 && agg.TotalSessions < c.MinSessions {
		return false
	}
	if c.MinBestScore > 0 && agg.BestQuizScore < c.MinBestScore {
		return false
	}
	return c.MinSessions > 0 || c.MinBestScore > 0
}

func (WordsLearned) condition()  {}
func (StreakDays) condition()    {}
func (QuizScore) condition()     {}
func (StudyTime) condition()     {}
func (MasteredWords) condition() {}

// Definition is a catalog entry
type Definition struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Category    models.AchievementCategory
	Condition   Condition
}

// DefaultCatalog returns the built-in achievements
func DefaultCatalog() []Definition {
	return []Definition{
		{"first_word", "First Step", "Learn your first word", "🌱", models.CategoryWords, WordsLearned{1}},
		{"words_10", "Word Collector", "Learn 10 words", "📚", models.CategoryWords, WordsLearned{10}},
		{"words_50", "Vocabulary Builder", "Learn 50 words", "🏗️", models.CategoryWords, WordsLearned{50}},
		{"words_100", "Word Master", "Learn 100 words", "🎓", models.CategoryWords, WordsLearned{100}},
		{"streak_3", "Getting Started", "Study 3 days in a row", "🔥", models.CategoryStreak, StreakDays{3}},
		{"streak_7", "Week Warrior", "Study 7 days in a row", "⚡", models.CategoryStreak, StreakDays{7}},
		{"streak_30", "Monthly Master", "Study 30 days in a row", "🏆", models.CategoryStreak, StreakDays{30}},
		{"quiz_first", "Quiz Taker", "Complete your first session", "✏️", models.CategoryScore, QuizScore{MinSessions: 1}},
		{"quiz_perfect", "Perfect Score", "Score 100% on a quiz", "💯", models.CategoryScore, QuizScore{MinBestScore: 100}},
		{"quiz_10", "Quiz Champion", "Complete 10 sessions", "🎯", models.CategoryScore, QuizScore{MinSessions: 10}},
		{"time_1h", "Dedicated Learner", "Study for 1 hour total", "⏰", models.CategoryTime, StudyTime{60}},
		{"time_10h", "Committed Scholar", "Study for 10 hours total", "📖", models.CategoryTime, StudyTime{600}},
		{"hsk1_complete", "Level Complete", "Master 150 words", "🥇", models.CategorySpecial, MasteredWords{150}},
	}
}
