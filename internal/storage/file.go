package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/kdabb05/llmud/pkg/storage"
)

// FileStorage keeps each session in its own directory under
// <dataDir>/sessions/<id>/, one JSON file per resource.
type FileStorage struct {
	root   string
	logger *slog.Logger
}

// Ensure FileStorage implements DocumentStore interface
var _ storage.DocumentStore = (*FileStorage)(nil)

// NewFileStorage creates file-backed session storage under dataDir.
func NewFileStorage(dataDir string, logger *slog.Logger) (*FileStorage, error) {
	if dataDir == "" {
		dataDir = "./data"
	}
	root := filepath.Join(dataDir, "sessions")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &FileStorage{root: root, logger: logger}, nil
}

func (f *FileStorage) Ping(ctx context.Context) error {
	info, err := os.Stat(f.root)
	if err != nil {
		return fmt.Errorf("sessions directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("sessions path %s is not a directory", f.root)
	}
	return nil
}

func (f *FileStorage) Close() error {
	return nil
}

func (f *FileStorage) sessionDir(sessionID string) string {
	return filepath.Join(f.root, escapeSegment(sessionID))
}

// path maps a resource like "characters/Hero" to
// <root>/<session>/characters/Hero.json. Everything after the first slash is
// one escaped segment, so names cannot climb out of the session directory.
func (f *FileStorage) path(key storage.Key) string {
	elems := []string{f.sessionDir(key.Session)}
	for _, p := range strings.SplitN(key.Resource, "/", 2) {
		elems = append(elems, escapeSegment(p))
	}
	return filepath.Join(elems...) + ".json"
}

func escapeSegment(s string) string {
	if s == "." || s == ".." {
		return strings.ReplaceAll(s, ".", "%2E")
	}
	return url.PathEscape(s)
}

func (f *FileStorage) Get(ctx context.Context, key storage.Key) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("document %s: %w", key, storage.ErrNotFound)
		}
		f.logger.Error("Failed to read document", "key", key.String(), "error", err)
		return nil, fmt.Errorf("failed to read document %s: %w", key, err)
	}
	return data, nil
}

// Put writes to a temporary file and renames it into place.
func (f *FileStorage) Put(ctx context.Context, key storage.Key, doc []byte) error {
	path := f.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write document %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write document %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		f.logger.Error("Failed to save document", "key", key.String(), "error", err)
		return fmt.Errorf("failed to save document %s: %w", key, err)
	}
	return nil
}

func (f *FileStorage) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	info, err := os.Stat(f.sessionDir(sessionID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check session %s: %w", sessionID, err)
	}
	return info.IsDir(), nil
}

func (f *FileStorage) DeleteSession(ctx context.Context, sessionID string) error {
	if err := os.RemoveAll(f.sessionDir(sessionID)); err != nil {
		f.logger.Error("Failed to delete session", "session_id", sessionID, "error", err)
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}
