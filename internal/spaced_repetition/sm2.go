package spaced_repetition

import (
	"log/slog"
	"math"
	"time"

	"github.com/example/wordtrack/internal/logging"
	"github.com/example/wordtrack/pkg/models"
)

// QualityResponse represents the quality of response in SM-2
type QualityResponse int

const (
	// Complete blackout, unable to recall
	QualityBlackout QualityResponse = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect QualityResponse = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar QualityResponse = 2
	// Correct response but required significant effort
	QualityCorrectDifficult QualityResponse = 3
	// Correct response after some hesitation
	QualityCorrectHesitation QualityResponse = 4
	// Perfect response with no hesitation
	QualityPerfect QualityResponse = 5
)

// Thresholds used to derive the mastery level of an item
const (
	masteredRepetitions = 5
	masteredAccuracy    = 0.9
	masteredInterval    = 21
	reviewRepetitions   = 3
	reviewAccuracy      = 0.75
)

// SM2 implements the SuperMemo-2 algorithm for spaced repetition
type SM2 struct {
	logger *slog.Logger
}

// NewSM2 creates a calculator. A nil logger discards clamp warnings.
func NewSM2(logger *slog.Logger) *SM2 {
	if logger == nil {
		logger = logging.Discard()
	}
	return &SM2{logger: logger}
}

// ClampQuality forces quality into [0,5] and reports whether it had to
func ClampQuality(quality int) (QualityResponse, bool) {
	switch {
	case quality < int(QualityBlackout):
		return QualityBlackout, true
	case quality > int(QualityPerfect):
		return QualityPerfect, true
	}
	return QualityResponse(quality), false
}

// Review applies one graded answer to rec and returns the next state.
// rec is not modified. Out-of-range quality is clamped and logged, never rejected.
func (sm *SM2) Review(rec models.MasteryRecord, quality int, reviewDate time.Time) models.MasteryRecord {
	q, clamped := ClampQuality(quality)
	if clamped {
		sm.logger.Warn("quality out of range, clamped",
			slog.Int64(logging.FieldLearnerID, rec.LearnerID),
			slog.Int64(logging.FieldItemID, rec.ItemID),
			slog.Int("quality", quality),
			slog.Int("clamped_to", int(q)))
	}

	next := rec
	if next.EasinessFactor < models.MinEasinessFactor {
		next.EasinessFactor = models.MinEasinessFactor
	}

	next.TimesPracticed++
	if q >= QualityCorrectDifficult {
		next.TimesCorrect++
	}

	if q < QualityCorrectDifficult {
		next.Repetitions = 0
		next.IntervalDays = 1
	} else {
		switch next.Repetitions {
		case 0:
			next.IntervalDays = 1
		case 1:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.Round(float64(next.IntervalDays) * next.EasinessFactor))
		}
		next.Repetitions++
	}

	next.EasinessFactor = NextEasinessFactor(next.EasinessFactor, q)

	day := models.DateOf(reviewDate)
	next.LastPracticedDate = day
	next.NextReviewDate = models.AddDays(day, next.IntervalDays)
	next.MasteryLevel = MasteryLevelOf(next)

	return next
}

// NextEasinessFactor is the SM-2 easiness update with the 1.3 floor
func NextEasinessFactor(ef float64, q QualityResponse) float64 {
	d := float64(QualityPerfect - q)
	return math.Max(models.MinEasinessFactor, ef+(0.1-d*(0.08+d*0.02)))
}

// MasteryLevelOf derives the categorical mastery level from practice history
func MasteryLevelOf(rec models.MasteryRecord) models.MasteryLevel {
	if rec.TimesPracticed == 0 {
		return models.MasteryNew
	}
	accuracy := rec.Accuracy()
	switch {
	case rec.Repetitions >= masteredRepetitions && accuracy >= masteredAccuracy && rec.IntervalDays >= masteredInterval:
		return models.MasteryMastered
	case rec.Repetitions >= reviewRepetitions && accuracy >= reviewAccuracy:
		return models.MasteryReview
	default:
		return models.MasteryLearning
	}
}

// IsWordMastered determines if a word is considered "mastered"
func IsWordMastered(rec models.MasteryRecord) bool {
	return MasteryLevelOf(rec) == models.MasteryMastered
}
