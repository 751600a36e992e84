package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kdabb05/llmud/pkg/storage"
)

// SQLiteStorage keeps session documents in a single SQLite table keyed by
// (session_id, resource).
type SQLiteStorage struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure SQLiteStorage implements DocumentStore interface
var _ storage.DocumentStore = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens (or creates) the database at path.
func NewSQLiteStorage(path string, logger *slog.Logger) (*SQLiteStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("empty sqlite path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("SQLite storage opened", "path", path)
	return &SQLiteStorage{db: db, logger: logger}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS documents (
			session_id TEXT NOT NULL,
			resource   TEXT NOT NULL,
			body       BLOB NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (session_id, resource)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize sqlite schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close SQLite database", "error", err)
		return err
	}
	return nil
}

func (s *SQLiteStorage) Get(ctx context.Context, key storage.Key) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE session_id = ? AND resource = ?`,
		key.Session, key.Resource,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", key, storage.ErrNotFound)
		}
		s.logger.Error("Failed to load document", "key", key.String(), "error", err)
		return nil, fmt.Errorf("failed to load document %s: %w", key, err)
	}
	return body, nil
}

func (s *SQLiteStorage) Put(ctx context.Context, key storage.Key, doc []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (session_id, resource, body, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id, resource) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		key.Session, key.Resource, doc, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		s.logger.Error("Failed to save document", "key", key.String(), "error", err)
		return fmt.Errorf("failed to save document %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStorage) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM documents WHERE session_id = ?`, sessionID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check session %s: %w", sessionID, err)
	}
	return n > 0, nil
}

func (s *SQLiteStorage) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE session_id = ?`, sessionID); err != nil {
		s.logger.Error("Failed to delete session", "session_id", sessionID, "error", err)
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}
