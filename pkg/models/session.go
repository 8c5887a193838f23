package models

import "time"

// StudySession is one sitting of study. It is open while EndTime is nil and
// immutable once closed.
type StudySession struct {
	ID              string     `json:"id"`
	LearnerID       int64      `json:"learner_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	LessonReference string     `json:"lesson_reference"`
	WordsCovered    []int64    `json:"words_covered"`
	QuizScore       float64    `json:"quiz_score"`
	XPEarned        int        `json:"xp_earned"`
}

// IsOpen reports whether the session has not been closed yet
func (s StudySession) IsOpen() bool {
	return s.EndTime == nil
}

// Duration returns the length of a closed session, 0 while open
func (s StudySession) Duration() time.Duration {
	if s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// Covers reports whether itemID was reviewed during the session
func (s StudySession) Covers(itemID int64) bool {
	for _, id := range s.WordsCovered {
		if id == itemID {
			return true
		}
	}
	return false
}
