package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "ENVIRONMENT", "LOG_LEVEL", "DATA_DIR", "STORAGE_BACKEND",
		"REDIS_URL", "SQLITE_PATH", "SESSION_TTL", "DEFAULT_MAP", "LAYOUT_FILE", "MCP_TRANSPORT", "MCP_URL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, BackendFile, cfg.StorageBackend)
	assert.Equal(t, "data/sessions.db", cfg.SQLitePath)
	assert.Equal(t, "data/layouts.yaml", cfg.LayoutFile)
	assert.Equal(t, time.Duration(0), cfg.SessionTTL)
	assert.Equal(t, "village", cfg.DefaultMap)
	assert.Equal(t, TransportHTTP, cfg.MCPTransport)
	assert.Equal(t, "http://localhost:8080/mcp", cfg.MCPURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/llmud")
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MCP_TRANSPORT", "stdio")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("LAYOUT_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.StorageBackend)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, TransportStdio, cfg.MCPTransport)
	assert.Equal(t, "/srv/llmud/sessions.db", cfg.SQLitePath)
	assert.Equal(t, "/srv/llmud/layouts.yaml", cfg.LayoutFile)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown backend", "STORAGE_BACKEND", "postgres"},
		{"unknown transport", "MCP_TRANSPORT", "websocket"},
		{"bad ttl", "SESSION_TTL", "soon"},
		{"negative ttl", "SESSION_TTL", "-1m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("chatty"))
}
