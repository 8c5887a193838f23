package database

import (
	"context"
	"time"

	"github.com/example/wordtrack/pkg/models"
	"github.com/pkg/errors"
)

// GetWord returns a vocabulary item by id
func (r *queries) GetWord(ctx context.Context, id int64) (*models.Word, error) {
	var row struct {
		models.Word
		CreatedAt string `db:"created_at"`
	}
	err := r.get(ctx, &row, `SELECT id, text, translation, pronunciation, topic, created_at
		FROM words WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to get word by ID")
	}
	w := row.Word
	if w.CreatedAt, err = parseTime(row.CreatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

// WordExists reports whether id names a vocabulary item
func (r *queries) WordExists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := r.get(ctx, &n, `SELECT COUNT(*) FROM words WHERE id = ?`, id); err != nil {
		return false, errors.Wrap(err, "failed to check word")
	}
	return n > 0, nil
}

// WordIDs lists every vocabulary id in ascending order
func (r *queries) WordIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.selectAll(ctx, &ids, `SELECT id FROM words ORDER BY id ASC`); err != nil {
		return nil, errors.Wrap(err, "failed to list words")
	}
	return ids, nil
}

// UpsertWord inserts a word or updates the translation and pronunciation of
// the existing (text, topic) entry. w.ID is set either way; the result
// reports whether a new row was created.
func (r *queries) UpsertWord(ctx context.Context, w *models.Word) (bool, error) {
	var existing int64
	err := r.get(ctx, &existing, `SELECT id FROM words WHERE text = ? AND topic = ?`, w.Text, w.Topic)
	switch {
	case err == nil:
		w.ID = existing
		_, err = r.exec(ctx, `UPDATE words SET translation = ?, pronunciation = ? WHERE id = ?`,
			w.Translation, w.Pronunciation, existing)
		if err != nil {
			return false, errors.Wrapf(err, "failed to update word %q", w.Text)
		}
		return false, nil
	case !errors.Is(err, ErrNotFound):
		return false, errors.Wrapf(err, "failed to look up word %q", w.Text)
	}

	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	// RETURNING works on both PostgreSQL and SQLite 3.35+
	err = r.get(ctx, &w.ID, `
		INSERT INTO words (text, translation, pronunciation, topic, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`,
		w.Text, w.Translation, w.Pronunciation, w.Topic, formatTime(w.CreatedAt))
	if err != nil {
		return false, errors.Wrapf(err, "failed to create word %q", w.Text)
	}
	return true, nil
}
