package quiz

import (
	"context"
	"fmt"

	"github.com/example/wordtrack/pkg/models"
)

// Difficulty is the recommended difficulty of the next quiz
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Normal Difficulty = "normal"
	Hard   Difficulty = "hard"
)

// Recommendation thresholds over the recent correct ratio
const (
	historyWindow = 10
	hardRatio     = 0.8
	easyRatio     = 0.4
)

// RecommendDifficulty picks a difficulty from outcomes ordered oldest to
// newest. Only the last 10 count; an empty history is Normal.
func RecommendDifficulty(history []bool) Difficulty {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	if len(history) == 0 {
		return Normal
	}
	correct := 0
	for _, ok := range history {
		if ok {
			correct++
		}
	}
	ratio := float64(correct) / float64(len(history))
	switch {
	case ratio >= hardRatio:
		return Hard
	case ratio <= easyRatio:
		return Easy
	}
	return Normal
}

// HistorySource reads recent graded answers, newest first
type HistorySource interface {
	RecentReviews(ctx context.Context, learnerID, itemID int64, limit int) ([]models.ReviewEvent, error)
}

// Selector recommends difficulty from the stored review history. It reads
// the history on every call.
type Selector struct {
	history HistorySource
}

// NewSelector creates a selector over history
func NewSelector(history HistorySource) *Selector {
	return &Selector{history: history}
}

// ForLearner recommends a difficulty from the learner's latest answers
func (s *Selector) ForLearner(ctx context.Context, learnerID int64) (Difficulty, error) {
	return s.recommend(ctx, learnerID, 0)
}

// ForItem recommends a difficulty from the learner's latest answers on one item
func (s *Selector) ForItem(ctx context.Context, learnerID, itemID int64) (Difficulty, error) {
	return s.recommend(ctx, learnerID, itemID)
}

func (s *Selector) recommend(ctx context.Context, learnerID, itemID int64) (Difficulty, error) {
	events, err := s.history.RecentReviews(ctx, learnerID, itemID, historyWindow)
	if err != nil {
		return Normal, fmt.Errorf("failed to read review history: %w", err)
	}
	// events are newest first
	outcomes := make([]bool, len(events))
	for i, e := range events {
		outcomes[len(events)-1-i] = e.Correct()
	}
	return RecommendDifficulty(outcomes), nil
}
