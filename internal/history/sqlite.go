// Package history persists question/answer exchanges in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotae/internal/models"
)

// Store keeps ask records in a SQLite database.
type Store struct {
	db *sql.DB
}

// New opens or creates a SQLite database at dbPath and initializes the
// schema. Parent directories are created if they do not exist.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS asks (
		id TEXT PRIMARY KEY,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		model TEXT NOT NULL,
		sources TEXT,
		feedback INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_asks_created_at ON asks(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Record inserts an exchange. A missing ID is generated and the creation
// time is set before writing.
func (s *Store) Record(ctx context.Context, rec *models.AskRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.CreatedAt = time.Now()

	sourcesJSON, err := json.Marshal(rec.Sources)
	if err != nil {
		return fmt.Errorf("failed to marshal sources: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO asks (id, question, answer, model, sources, feedback, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Question, rec.Answer, rec.Model, string(sourcesJSON), rec.Feedback, rec.DurationMs, rec.CreatedAt,
	)
	return err
}

// Get returns an exchange by ID.
func (s *Store) Get(ctx context.Context, id string) (*models.AskRecord, error) {
	var rec models.AskRecord
	var sourcesJSON string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, question, answer, model, sources, feedback, duration_ms, created_at
		 FROM asks WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Question, &rec.Answer, &rec.Model, &sourcesJSON, &rec.Feedback, &rec.DurationMs, &rec.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: ask record %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if sourcesJSON != "" {
		if err := json.Unmarshal([]byte(sourcesJSON), &rec.Sources); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sources: %w", err)
		}
	}

	return &rec, nil
}

// List returns exchanges ordered newest first, with offset and limit.
func (s *Store) List(ctx context.Context, offset, limit int) ([]*models.AskRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, answer, model, sources, feedback, duration_ms, created_at
		 FROM asks ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*models.AskRecord
	for rows.Next() {
		var rec models.AskRecord
		var sourcesJSON string
		if err := rows.Scan(&rec.ID, &rec.Question, &rec.Answer, &rec.Model, &sourcesJSON, &rec.Feedback, &rec.DurationMs, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if sourcesJSON != "" {
			_ = json.Unmarshal([]byte(sourcesJSON), &rec.Sources)
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

// SetFeedback updates the feedback value of an exchange. Valid values are
// -1, 0, and 1.
func (s *Store) SetFeedback(ctx context.Context, id string, feedback int) error {
	if feedback < -1 || feedback > 1 {
		return fmt.Errorf("%w: feedback must be -1, 0, or 1, got %d", models.ErrInvalidQuery, feedback)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE asks SET feedback = ? WHERE id = ?`, feedback, id,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: ask record %s", models.ErrNotFound, id)
	}
	return nil
}

// Count returns the total number of stored exchanges.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM asks`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
