package spaced_repetition

import (
	"testing"
	"time"

	"github.com/example/wordtrack/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestReviewPerfectSequence(t *testing.T) {
	sm := NewSM2(nil)
	rec := models.NewMasteryRecord(1, 10, day0)

	wantIntervals := []int{1, 6, 16}
	wantEF := []float64{2.6, 2.7, 2.8}
	date := day0
	for i := range wantIntervals {
		rec = sm.Review(rec, 5, date)
		assert.Equal(t, wantIntervals[i], rec.IntervalDays, "review %d", i+1)
		assert.InDelta(t, wantEF[i], rec.EasinessFactor, 1e-9, "review %d", i+1)
		assert.Equal(t, i+1, rec.Repetitions)
		assert.Equal(t, models.AddDays(date, rec.IntervalDays), rec.NextReviewDate)
		date = rec.NextReviewDate
	}
	assert.Equal(t, 3, rec.TimesPracticed)
	assert.Equal(t, 3, rec.TimesCorrect)
	assert.Equal(t, models.MasteryReview, rec.MasteryLevel)
}

func TestReviewFailureResets(t *testing.T) {
	sm := NewSM2(nil)
	rec := models.NewMasteryRecord(1, 10, day0)
	rec.Repetitions = 4
	rec.IntervalDays = 30
	rec.EasinessFactor = 2.5

	next := sm.Review(rec, 1, day0)
	assert.Equal(t, 0, next.Repetitions)
	assert.Equal(t, 1, next.IntervalDays)
	assert.InDelta(t, 1.96, next.EasinessFactor, 1e-9)
	assert.Equal(t, models.AddDays(day0, 1), next.NextReviewDate)
	assert.Equal(t, 0, next.TimesCorrect)

	// The input is not modified
	assert.Equal(t, 4, rec.Repetitions)
}

func TestReviewEasinessFloor(t *testing.T) {
	sm := NewSM2(nil)
	rec := models.NewMasteryRecord(1, 10, day0)
	for i := 0; i < 10; i++ {
		rec = sm.Review(rec, 0, day0)
		assert.GreaterOrEqual(t, rec.EasinessFactor, models.MinEasinessFactor)
	}
	assert.Equal(t, models.MinEasinessFactor, rec.EasinessFactor)

	// A corrupted stored value is lifted to the floor before use
	rec.EasinessFactor = 0.5
	rec = sm.Review(rec, 4, day0)
	assert.InDelta(t, 1.3, rec.EasinessFactor, 1e-9)
}

func TestReviewClampsQuality(t *testing.T) {
	sm := NewSM2(nil)
	rec := models.NewMasteryRecord(1, 10, day0)

	high := sm.Review(rec, 9, day0)
	perfect := sm.Review(rec, 5, day0)
	assert.Equal(t, perfect, high)

	low := sm.Review(rec, -2, day0)
	blackout := sm.Review(rec, 0, day0)
	assert.Equal(t, blackout, low)

	q, clamped := ClampQuality(3)
	assert.Equal(t, QualityCorrectDifficult, q)
	assert.False(t, clamped)
}

func TestReviewUsesLocalCalendarDay(t *testing.T) {
	sm := NewSM2(nil)
	zone := time.FixedZone("UTC+9", 9*3600)
	late := time.Date(2024, 3, 1, 23, 30, 0, 0, zone)

	next := sm.Review(models.NewMasteryRecord(1, 10, late), 5, late)
	assert.Equal(t, "2024-03-01", models.FormatDate(next.LastPracticedDate))
	assert.Equal(t, "2024-03-02", models.FormatDate(next.NextReviewDate))
}

func TestMasteryLevelOf(t *testing.T) {
	tests := []struct {
		name string
		rec  models.MasteryRecord
		want models.MasteryLevel
	}{
		{"never practiced", models.MasteryRecord{}, models.MasteryNew},
		{"practiced once", models.MasteryRecord{TimesPracticed: 1, TimesCorrect: 1, Repetitions: 1}, models.MasteryLearning},
		{"review", models.MasteryRecord{TimesPracticed: 4, TimesCorrect: 3, Repetitions: 3, IntervalDays: 16}, models.MasteryReview},
		{"mastered", models.MasteryRecord{TimesPracticed: 5, TimesCorrect: 5, Repetitions: 5, IntervalDays: 21}, models.MasteryMastered},
		{"long interval low accuracy", models.MasteryRecord{TimesPracticed: 10, TimesCorrect: 6, Repetitions: 5, IntervalDays: 40}, models.MasteryLearning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MasteryLevelOf(tt.rec))
		})
	}
	require.True(t, IsWordMastered(tests[3].rec))
}

func TestNextEasinessFactor(t *testing.T) {
	assert.InDelta(t, 2.6, NextEasinessFactor(2.5, QualityPerfect), 1e-9)
	assert.InDelta(t, 2.5, NextEasinessFactor(2.5, QualityCorrectHesitation), 1e-9)
	assert.InDelta(t, 2.36, NextEasinessFactor(2.5, QualityCorrectDifficult), 1e-9)
}
