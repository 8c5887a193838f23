package database

import (
	"context"

	"github.com/example/wordtrack/pkg/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// AppendReview stores one graded answer. An empty ID is filled in.
func (r *queries) AppendReview(ctx context.Context, e *models.ReviewEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := r.exec(ctx, `
		INSERT INTO review_history (id, learner_id, item_id, session_id, quality, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.LearnerID, e.ItemID, e.SessionID, e.Quality, formatTime(e.ReviewedAt))
	if err != nil {
		return errors.Wrap(err, "failed to save review")
	}
	return nil
}

// RecentReviews returns up to limit reviews, newest first.
// itemID 0 selects reviews of every item.
func (r *queries) RecentReviews(ctx context.Context, learnerID, itemID int64, limit int) ([]models.ReviewEvent, error) {
	if limit <= 0 {
		return nil, nil
	}
	query := `SELECT id, learner_id, item_id, session_id, quality, reviewed_at
		FROM review_history WHERE learner_id = ?`
	args := []interface{}{learnerID}
	if itemID != 0 {
		query += ` AND item_id = ?`
		args = append(args, itemID)
	}
	query += ` ORDER BY reviewed_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	var rows []struct {
		ID         string `db:"id"`
		LearnerID  int64  `db:"learner_id"`
		ItemID     int64  `db:"item_id"`
		SessionID  string `db:"session_id"`
		Quality    int    `db:"quality"`
		ReviewedAt string `db:"reviewed_at"`
	}
	if err := r.selectAll(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to get review history")
	}

	events := make([]models.ReviewEvent, 0, len(rows))
	for _, row := range rows {
		at, err := parseTime(row.ReviewedAt)
		if err != nil {
			return nil, err
		}
		events = append(events, models.ReviewEvent{
			ID:         row.ID,
			LearnerID:  row.LearnerID,
			ItemID:     row.ItemID,
			SessionID:  row.SessionID,
			Quality:    row.Quality,
			ReviewedAt: at,
		})
	}
	return events, nil
}
