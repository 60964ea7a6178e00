package leadstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// Store persists contact leads and unanswered questions recorded by the
// conversation tools.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS leads (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS unknown_questions (
	id TEXT PRIMARY KEY,
	question TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
`

// Open creates or opens the lead database at path, applying the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lead store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open lead store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply lead store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// RecordLead stores a contact lead and returns its identifier.
func (s *Store) RecordLead(ctx context.Context, email, name, notes string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (id, email, name, notes, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, email, name, notes, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("record lead: %w", err)
	}
	return id, nil
}

// RecordUnknownQuestion stores a question the assistant could not answer.
func (s *Store) RecordUnknownQuestion(ctx context.Context, question string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO unknown_questions (id, question, created_at) VALUES (?, ?, ?)`,
		id, question, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("record unknown question: %w", err)
	}
	return id, nil
}

// CountLeads returns the number of stored leads.
func (s *Store) CountLeads(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountUnknownQuestions returns the number of stored unanswered questions.
func (s *Store) CountUnknownQuestions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM unknown_questions`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
