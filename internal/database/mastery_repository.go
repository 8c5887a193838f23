package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/wordtrack/pkg/models"
	"github.com/pkg/errors"
)

const masteryColumns = `learner_id, item_id, times_practiced, times_correct, mastery_level,
	easiness_factor, interval_days, repetitions, next_review_date, last_practiced_date`

// masteryRow is the storage shape of models.MasteryRecord
type masteryRow struct {
	LearnerID         int64          `db:"learner_id"`
	ItemID            int64          `db:"item_id"`
	TimesPracticed    int            `db:"times_practiced"`
	TimesCorrect      int            `db:"times_correct"`
	MasteryLevel      string         `db:"mastery_level"`
	EasinessFactor    float64        `db:"easiness_factor"`
	IntervalDays      int            `db:"interval_days"`
	Repetitions       int            `db:"repetitions"`
	NextReviewDate    string         `db:"next_review_date"`
	LastPracticedDate sql.NullString `db:"last_practiced_date"`
}

func (r masteryRow) toModel() (models.MasteryRecord, error) {
	next, err := models.ParseDate(r.NextReviewDate)
	if err != nil {
		return models.MasteryRecord{}, errors.Wrapf(err, "bad next_review_date for item %d", r.ItemID)
	}
	last, err := parseNullDate(r.LastPracticedDate)
	if err != nil {
		return models.MasteryRecord{}, errors.Wrapf(err, "bad last_practiced_date for item %d", r.ItemID)
	}
	return models.MasteryRecord{
		LearnerID:         r.LearnerID,
		ItemID:            r.ItemID,
		TimesPracticed:    r.TimesPracticed,
		TimesCorrect:      r.TimesCorrect,
		MasteryLevel:      models.MasteryLevel(r.MasteryLevel),
		EasinessFactor:    r.EasinessFactor,
		IntervalDays:      r.IntervalDays,
		Repetitions:       r.Repetitions,
		NextReviewDate:    next,
		LastPracticedDate: last,
	}, nil
}

func masteryModels(rows []masteryRow) ([]models.MasteryRecord, error) {
	recs := make([]models.MasteryRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toModel()
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// GetMastery returns the record of one item, ErrNotFound when never studied
func (r *queries) GetMastery(ctx context.Context, learnerID, itemID int64) (*models.MasteryRecord, error) {
	var row masteryRow
	err := r.get(ctx, &row, `SELECT `+masteryColumns+` FROM mastery_records
		WHERE learner_id = ? AND item_id = ?`, learnerID, itemID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to get mastery record")
	}
	rec, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpsertMastery inserts or replaces the record keyed by (learner, item)
func (r *queries) UpsertMastery(ctx context.Context, rec *models.MasteryRecord) error {
	_, err := r.exec(ctx, `
		INSERT INTO mastery_records (`+masteryColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (learner_id, item_id) DO UPDATE SET
			times_practiced = excluded.times_practiced,
			times_correct = excluded.times_correct,
			mastery_level = excluded.mastery_level,
			easiness_factor = excluded.easiness_factor,
			interval_days = excluded.interval_days,
			repetitions = excluded.repetitions,
			next_review_date = excluded.next_review_date,
			last_practiced_date = excluded.last_practiced_date,
			updated_at = excluded.updated_at`,
		rec.LearnerID, rec.ItemID, rec.TimesPracticed, rec.TimesCorrect, string(rec.MasteryLevel),
		rec.EasinessFactor, rec.IntervalDays, rec.Repetitions,
		models.FormatDate(rec.NextReviewDate), nullDate(rec.LastPracticedDate),
		formatTime(time.Now()),
	)
	if err != nil {
		return errors.Wrapf(err, "failed to save mastery record for item %d", rec.ItemID)
	}
	return nil
}

// DueBefore returns records whose next review is on or before date,
// oldest due first and ties by item id
func (r *queries) DueBefore(ctx context.Context, learnerID int64, date time.Time) ([]models.MasteryRecord, error) {
	var rows []masteryRow
	err := r.selectAll(ctx, &rows, `SELECT `+masteryColumns+` FROM mastery_records
		WHERE learner_id = ? AND next_review_date <= ?
		ORDER BY next_review_date ASC, item_id ASC`, learnerID, models.FormatDate(date))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get due words")
	}
	return masteryModels(rows)
}

// UpcomingAfter returns up to limit records not yet due on date, nearest first
func (r *queries) UpcomingAfter(ctx context.Context, learnerID int64, date time.Time, limit int) ([]models.MasteryRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	var rows []masteryRow
	err := r.selectAll(ctx, &rows, `SELECT `+masteryColumns+` FROM mastery_records
		WHERE learner_id = ? AND next_review_date > ?
		ORDER BY next_review_date ASC, item_id ASC
		LIMIT ?`, learnerID, models.FormatDate(date), limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get upcoming words")
	}
	return masteryModels(rows)
}

// ListMastery returns every record of the learner ordered by item id
func (r *queries) ListMastery(ctx context.Context, learnerID int64) ([]models.MasteryRecord, error) {
	var rows []masteryRow
	err := r.selectAll(ctx, &rows, `SELECT `+masteryColumns+` FROM mastery_records
		WHERE learner_id = ? ORDER BY item_id ASC`, learnerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list mastery records")
	}
	return masteryModels(rows)
}
