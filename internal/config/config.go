package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Storage backends
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// MCP transports
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

type Config struct {
	Port           string
	Environment    string
	LogLevel       slog.Level
	DataDir        string
	StorageBackend string
	RedisURL       string
	SQLitePath     string
	SessionTTL     time.Duration
	DefaultMap     string
	LayoutFile     string
	MCPTransport   string
	MCPURL         string
}

func Load() (*Config, error) {
	dataDir := getEnv("DATA_DIR", "./data")

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if ttl < 0 {
		return nil, fmt.Errorf("invalid SESSION_TTL: must not be negative")
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DataDir:        dataDir,
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendFile)),
		RedisURL:       getEnv("REDIS_URL", "localhost:6379"),
		SQLitePath:     getEnv("SQLITE_PATH", filepath.Join(dataDir, "sessions.db")),
		SessionTTL:     ttl,
		DefaultMap:     getEnv("DEFAULT_MAP", "village"),
		LayoutFile:     getEnv("LAYOUT_FILE", filepath.Join(dataDir, "layouts.yaml")),
		MCPTransport:   strings.ToLower(getEnv("MCP_TRANSPORT", TransportHTTP)),
		MCPURL:         getEnv("MCP_URL", "http://localhost:8080/mcp"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case BackendFile, BackendRedis, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q: must be one of file, redis, sqlite, memory", c.StorageBackend)
	}
	switch c.MCPTransport {
	case TransportHTTP, TransportStdio:
	default:
		return fmt.Errorf("invalid MCP_TRANSPORT %q: must be http or stdio", c.MCPTransport)
	}
	if c.DefaultMap == "" {
		return fmt.Errorf("DEFAULT_MAP cannot be empty")
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
