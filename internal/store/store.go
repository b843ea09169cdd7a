// Package store persists documents, extractions, and LLM call records in a
// local SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if needed) the database at path and runs migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, log: logger}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database ready", "path", path)
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id          TEXT PRIMARY KEY,
			filename    TEXT NOT NULL,
			size        INTEGER NOT NULL,
			page_count  INTEGER NOT NULL,
			stored_path TEXT NOT NULL DEFAULT '',
			uploaded_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS document_pages (
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			page_num    INTEGER NOT NULL,
			text        TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (document_id, page_num)
		)`,
		`CREATE TABLE IF NOT EXISTS extractions (
			id             TEXT PRIMARY KEY,
			document_id    TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			provider       TEXT NOT NULL,
			model          TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL,
			message        TEXT NOT NULL DEFAULT '',
			total_rules    INTEGER NOT NULL DEFAULT 0,
			approved_count INTEGER NOT NULL DEFAULT 0,
			result_json    TEXT NOT NULL,
			created_at     TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_extractions_document ON extractions(document_id)`,
		`CREATE TABLE IF NOT EXISTS llm_calls (
			id            TEXT PRIMARY KEY,
			timestamp     TIMESTAMP NOT NULL,
			latency_ms    INTEGER NOT NULL DEFAULT 0,
			document_id   TEXT NOT NULL DEFAULT '',
			extraction_id TEXT NOT NULL DEFAULT '',
			prompt_key    TEXT NOT NULL,
			provider      TEXT NOT NULL,
			model         TEXT NOT NULL DEFAULT '',
			input_tokens  INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			response      TEXT NOT NULL DEFAULT '',
			success       INTEGER NOT NULL DEFAULT 0,
			error         TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_llm_calls_document ON llm_calls(document_id)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
