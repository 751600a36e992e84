package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdabb05/llmud/internal/config"
	"github.com/kdabb05/llmud/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// exerciseDocumentStore runs the contract every backend must satisfy.
func exerciseDocumentStore(t *testing.T, s storage.DocumentStore) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	_, err := s.Get(ctx, storage.StateKey("s1"))
	assert.True(t, errors.Is(err, storage.ErrNotFound), "expected ErrNotFound, got %v", err)

	exists, err := s.SessionExists(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Put(ctx, storage.CharacterKey("s1", "Hero"), []byte(`{"name":"Hero","gold":15}`)))
	require.NoError(t, s.Put(ctx, storage.StateKey("s1"), []byte(`{"session_id":"s1"}`)))
	require.NoError(t, s.Put(ctx, storage.StateKey("s2"), []byte(`{"session_id":"s2"}`)))

	exists, err = s.SessionExists(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, exists)

	// Put replaces the whole document.
	require.NoError(t, s.Put(ctx, storage.CharacterKey("s1", "Hero"), []byte(`{"name":"Hero","gold":10}`)))
	doc, err := s.Get(ctx, storage.CharacterKey("s1", "Hero"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Hero","gold":10}`, string(doc))

	require.NoError(t, s.DeleteSession(ctx, "s1"))
	_, err = s.Get(ctx, storage.CharacterKey("s1", "Hero"))
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	_, err = s.Get(ctx, storage.StateKey("s1"))
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	exists, err = s.SessionExists(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, exists)

	// Other sessions are untouched, and deleting twice is fine.
	_, err = s.Get(ctx, storage.StateKey("s2"))
	assert.NoError(t, err)
	assert.NoError(t, s.DeleteSession(ctx, "s1"))
}

func TestFileStorage(t *testing.T) {
	s, err := NewFileStorage(t.TempDir(), testLogger())
	require.NoError(t, err)
	defer s.Close()
	exerciseDocumentStore(t, s)
}

func TestFileStorage_EscapesPathSegments(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(dir, testLogger())
	require.NoError(t, err)

	ctx := context.Background()
	key := storage.CharacterKey("s1", "../../escape")
	require.NoError(t, s.Put(ctx, key, []byte(`{}`)))

	_, err = s.Get(ctx, key)
	require.NoError(t, err)
	matches, _ := filepath.Glob(filepath.Join(dir, "sessions", "s1", "characters", "*.json"))
	assert.Len(t, matches, 1, "character file must stay inside the session directory")
}

func TestSQLiteStorage(t *testing.T) {
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "db", "sessions.db"), testLogger())
	require.NoError(t, err)
	defer s.Close()
	exerciseDocumentStore(t, s)
}

func TestRedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStorage(mr.Addr(), 0, testLogger())
	defer s.Close()
	exerciseDocumentStore(t, s)
}

func TestRedisStorage_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStorage(mr.Addr(), time.Hour, testLogger())
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, storage.StateKey("s1"), []byte(`{}`)))
	assert.Equal(t, time.Hour, mr.TTL("session:s1:game_state"))
	assert.Equal(t, time.Hour, mr.TTL("session:s1:index"))

	mr.FastForward(2 * time.Hour)
	exists, err := s.SessionExists(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisStorage_TTLCoversWholeSession(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStorage(mr.Addr(), time.Hour, testLogger())
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, storage.CharacterKey("s1", "Hero"), []byte(`{"name":"Hero"}`)))
	require.NoError(t, s.Put(ctx, storage.StateKey("s1"), []byte(`{}`)))

	// Only the state is written again; the sheet must stay alive with it.
	mr.FastForward(50 * time.Minute)
	require.NoError(t, s.Put(ctx, storage.StateKey("s1"), []byte(`{"turn_count":1}`)))
	assert.Equal(t, time.Hour, mr.TTL("session:s1:characters/Hero"))

	mr.FastForward(20 * time.Minute)
	exists, err := s.SessionExists(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, exists)
	doc, err := s.Get(ctx, storage.CharacterKey("s1", "Hero"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Hero"}`, string(doc))

	mr.FastForward(time.Hour)
	exists, err = s.SessionExists(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, exists)
	_, err = s.Get(ctx, storage.CharacterKey("s1", "Hero"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRedisStorage_WaitForConnectionCancelled(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	s := NewRedisStorage(addr, 0, testLogger())
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.WaitForConnection(ctx))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{config.BackendFile, config.BackendSQLite, config.BackendMemory} {
		t.Run(backend, func(t *testing.T) {
			cfg := &config.Config{
				StorageBackend: backend,
				DataDir:        dir,
				SQLitePath:     filepath.Join(dir, "sessions.db"),
			}
			s, err := Open(context.Background(), cfg, testLogger())
			require.NoError(t, err)
			defer s.Close()
			assert.NoError(t, s.Ping(context.Background()))
		})
	}

	_, err := Open(context.Background(), &config.Config{StorageBackend: "tape"}, testLogger())
	assert.Error(t, err)
}

func TestOpen_MemoryBackend(t *testing.T) {
	s, err := Open(context.Background(), &config.Config{StorageBackend: config.BackendMemory}, testLogger())
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &storage.MemoryStorage{}, s)
}
