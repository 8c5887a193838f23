package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Supported database types
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// SQLStore is the sqlx-backed Store. It works against SQLite and PostgreSQL.
type SQLStore struct {
	db *sqlx.DB
	queries
}

// Connect opens the database of the given type and creates the schema.
// For SQLite the parent directory of the file is created when missing.
func Connect(dbType, dsn string) (*SQLStore, error) {
	driver, err := driverName(dbType)
	if err != nil {
		return nil, err
	}

	if driver == "sqlite3" && !strings.HasPrefix(dsn, ":memory:") && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, errors.Wrap(err, "failed to create data directory")
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if driver == "sqlite3" {
		// SQLite doesn't support multiple writers, and a :memory: database
		// lives only as long as its single connection
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "failed to enable foreign keys")
		}
	}

	if err := initializeSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLStore{db: db, queries: queries{q: db}}, nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InTx runs fn inside a transaction. Nothing is committed if fn fails.
func (s *SQLStore) InTx(ctx context.Context, fn func(Repository) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&queries{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "rollback failed: %v", rbErr)
		}
		return err
	}
	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}

func driverName(dbType string) (string, error) {
	switch strings.ToLower(dbType) {
	case TypeSQLite, "sqlite3", "":
		return "sqlite3", nil
	case TypePostgres, "postgresql":
		return "postgres", nil
	}
	return "", errors.Errorf("unsupported database type %q", dbType)
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(ctx context.Context, db *sqlx.DB) error {
	wordID := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == "postgres" {
		wordID = "BIGSERIAL PRIMARY KEY"
	}

	statements := []struct {
		name string
		ddl  string
	}{
		{"words", `
			CREATE TABLE IF NOT EXISTS words (
				id ` + wordID + `,
				text TEXT NOT NULL,
				translation TEXT NOT NULL,
				pronunciation TEXT NOT NULL DEFAULT '',
				topic TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				UNIQUE(text, topic)
			)`},
		{"mastery_records", `
			CREATE TABLE IF NOT EXISTS mastery_records (
				learner_id BIGINT NOT NULL,
				item_id BIGINT NOT NULL,
				times_practiced INTEGER NOT NULL DEFAULT 0,
				times_correct INTEGER NOT NULL DEFAULT 0,
				mastery_level TEXT NOT NULL DEFAULT 'new',
				easiness_factor DOUBLE PRECISION NOT NULL DEFAULT 2.5,
				interval_days INTEGER NOT NULL DEFAULT 0,
				repetitions INTEGER NOT NULL DEFAULT 0,
				next_review_date TEXT NOT NULL,
				last_practiced_date TEXT,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (learner_id, item_id),
				FOREIGN KEY (item_id) REFERENCES words(id)
			)`},
		{"mastery_records due index", `
			CREATE INDEX IF NOT EXISTS idx_mastery_due
			ON mastery_records(learner_id, next_review_date, item_id)`},
		{"study_sessions", `
			CREATE TABLE IF NOT EXISTS study_sessions (
				id TEXT PRIMARY KEY,
				learner_id BIGINT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				lesson_reference TEXT NOT NULL DEFAULT '',
				quiz_score DOUBLE PRECISION NOT NULL DEFAULT 0,
				xp_earned INTEGER NOT NULL DEFAULT 0,
				duration_seconds BIGINT NOT NULL DEFAULT 0
			)`},
		{"single open session index", `
			CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_open
			ON study_sessions(learner_id) WHERE end_time IS NULL`},
		{"session_words", `
			CREATE TABLE IF NOT EXISTS session_words (
				session_id TEXT NOT NULL,
				item_id BIGINT NOT NULL,
				PRIMARY KEY (session_id, item_id),
				FOREIGN KEY (session_id) REFERENCES study_sessions(id)
			)`},
		{"learner_progress", `
			CREATE TABLE IF NOT EXISTS learner_progress (
				learner_id BIGINT PRIMARY KEY,
				level INTEGER NOT NULL DEFAULT 1,
				current_xp INTEGER NOT NULL DEFAULT 0,
				total_xp_earned INTEGER NOT NULL DEFAULT 0,
				current_streak INTEGER NOT NULL DEFAULT 0,
				longest_streak INTEGER NOT NULL DEFAULT 0,
				last_study_date TEXT,
				daily_goal INTEGER NOT NULL DEFAULT 15,
				created_at TEXT NOT NULL
			)`},
		{"learner_achievements", `
			CREATE TABLE IF NOT EXISTS learner_achievements (
				learner_id BIGINT NOT NULL,
				achievement_id TEXT NOT NULL,
				unlocked_at TEXT NOT NULL,
				PRIMARY KEY (learner_id, achievement_id)
			)`},
		{"review_history", `
			CREATE TABLE IF NOT EXISTS review_history (
				id TEXT PRIMARY KEY,
				learner_id BIGINT NOT NULL,
				item_id BIGINT NOT NULL,
				session_id TEXT NOT NULL,
				quality INTEGER NOT NULL,
				reviewed_at TEXT NOT NULL
			)`},
		{"review_history index", `
			CREATE INDEX IF NOT EXISTS idx_review_history_recent
			ON review_history(learner_id, reviewed_at)`},
	}

	for _, st := range statements {
		if _, err := db.ExecContext(ctx, st.ddl); err != nil {
			return errors.Wrapf(err, "failed to create %s", st.name)
		}
	}
	return nil
}
