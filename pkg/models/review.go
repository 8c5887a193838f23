package models

import "time"

// PassingQuality is the lowest SM-2 quality that counts as a correct answer
const PassingQuality = 3

// ReviewEvent is one graded answer, kept as history for difficulty selection
type ReviewEvent struct {
	ID         string    `json:"id"`
	LearnerID  int64     `json:"learner_id"`
	ItemID     int64     `json:"item_id"`
	SessionID  string    `json:"session_id"`
	Quality    int       `json:"quality"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

// Correct reports whether the answer passed
func (e ReviewEvent) Correct() bool {
	return e.Quality >= PassingQuality
}
