package models

import "time"

// Initial SM-2 state for an item seen for the first time
const (
	DefaultEasinessFactor = 2.5
	MinEasinessFactor     = 1.3
)

// MasteryLevel is the derived learning stage of an item
type MasteryLevel string

const (
	MasteryNew      MasteryLevel = "new"
	MasteryLearning MasteryLevel = "learning"
	MasteryReview   MasteryLevel = "review"
	MasteryMastered MasteryLevel = "mastered"
)

// MasteryRecord tracks a learner's review state for one vocabulary item
type MasteryRecord struct {
	LearnerID         int64        `json:"learner_id"`
	ItemID            int64        `json:"item_id"`
	TimesPracticed    int          `json:"times_practiced"`
	TimesCorrect      int          `json:"times_correct"`
	MasteryLevel      MasteryLevel `json:"mastery_level"`
	EasinessFactor    float64      `json:"easiness_factor"`
	IntervalDays      int          `json:"interval_days"`
	Repetitions       int          `json:"repetitions"`
	NextReviewDate    time.Time    `json:"next_review_date"`
	LastPracticedDate time.Time    `json:"last_practiced_date"` // zero until the first review
}

// NewMasteryRecord creates the record for a first exposure. The item is due on
// the day it is first seen.
func NewMasteryRecord(learnerID, itemID int64, firstSeen time.Time) MasteryRecord {
	return MasteryRecord{
		LearnerID:      learnerID,
		ItemID:         itemID,
		MasteryLevel:   MasteryNew,
		EasinessFactor: DefaultEasinessFactor,
		NextReviewDate: DateOf(firstSeen),
	}
}

// IsDue reports whether the item should be reviewed on date
func (r MasteryRecord) IsDue(date time.Time) bool {
	return !r.NextReviewDate.After(DateOf(date))
}

// Accuracy is the share of correct reviews, 0 when never practiced
func (r MasteryRecord) Accuracy() float64 {
	if r.TimesPracticed == 0 {
		return 0
	}
	return float64(r.TimesCorrect) / float64(r.TimesPracticed)
}
