package spaced_repetition

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/example/wordtrack/pkg/models"
)

// ErrEmptyQueue signals that nothing is available to review. It is not a fault.
var ErrEmptyQueue = errors.New("spaced_repetition: nothing to review")

// QueueSource is the read side of the store the queue builder needs
type QueueSource interface {
	DueBefore(ctx context.Context, learnerID int64, date time.Time) ([]models.MasteryRecord, error)
	UpcomingAfter(ctx context.Context, learnerID int64, date time.Time, limit int) ([]models.MasteryRecord, error)
	ListMastery(ctx context.Context, learnerID int64) ([]models.MasteryRecord, error)
	WordIDs(ctx context.Context) ([]int64, error)
}

// BuildQueue returns up to limit item ids to review on asOf. Priority order:
// due items (oldest due first), then never-studied vocabulary (ascending id),
// then not-yet-due items (nearest first) while the queue is under-filled.
func BuildQueue(ctx context.Context, src QueueSource, learnerID int64, asOf time.Time, limit int) ([]int64, error) {
	if limit <= 0 {
		return nil, ErrEmptyQueue
	}
	day := models.DateOf(asOf)

	due, err := src.DueBefore(ctx, learnerID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to get due items: %w", err)
	}
	queue := make([]int64, 0, limit)
	for _, rec := range due {
		if len(queue) == limit {
			return queue, nil
		}
		queue = append(queue, rec.ItemID)
	}

	fresh, err := newItems(ctx, src, learnerID)
	if err != nil {
		return nil, err
	}
	for _, id := range fresh {
		if len(queue) == limit {
			return queue, nil
		}
		queue = append(queue, id)
	}

	if len(queue) < limit {
		upcoming, err := src.UpcomingAfter(ctx, learnerID, day, limit-len(queue))
		if err != nil {
			return nil, fmt.Errorf("failed to get upcoming items: %w", err)
		}
		for _, rec := range upcoming {
			queue = append(queue, rec.ItemID)
		}
	}

	if len(queue) == 0 {
		return nil, ErrEmptyQueue
	}
	return queue, nil
}

// newItems lists vocabulary ids the learner has no record for yet
func newItems(ctx context.Context, src QueueSource, learnerID int64) ([]int64, error) {
	words, err := src.WordIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vocabulary: %w", err)
	}
	studied, err := src.ListMastery(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mastery records: %w", err)
	}
	seen := make(map[int64]struct{}, len(studied))
	for _, rec := range studied {
		seen[rec.ItemID] = struct{}{}
	}

	var fresh []int64
	for _, id := range words {
		if _, ok := seen[id]; !ok {
			fresh = append(fresh, id)
		}
	}
	sort.Slice(fresh, func(i, j int) bool { return fresh[i] < fresh[j] })
	return fresh, nil
}

// SortByDueDate orders records by next review date, ties by item id
func SortByDueDate(recs []models.MasteryRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].NextReviewDate.Equal(recs[j].NextReviewDate) {
			return recs[i].NextReviewDate.Before(recs[j].NextReviewDate)
		}
		return recs[i].ItemID < recs[j].ItemID
	})
}
