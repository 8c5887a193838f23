package tracker

import (
	"time"

	"github.com/example/wordtrack/pkg/models"
)

// UpdateStreak applies a closed session on studyDate to the streak counters.
// A first study day starts the streak at 1, the next calendar day extends it,
// a gap resets it to 1 and a repeat day changes nothing. A date before the
// last study date is ignored.
func UpdateStreak(p *models.LearnerProgress, studyDate time.Time) {
	day := models.DateOf(studyDate)

	if p.LastStudyDate.IsZero() {
		p.CurrentStreak = 1
		p.LastStudyDate = day
	} else {
		switch delta := models.DaysBetween(p.LastStudyDate, day); {
		case delta <= 0:
			// same day, or clock went backwards
		case delta == 1:
			p.CurrentStreak++
			p.LastStudyDate = day
		default:
			p.CurrentStreak = 1
			p.LastStudyDate = day
		}
	}

	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
}
