package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/kdabb05/llmud/internal/config"
)

// Setup configures the global slog logger based on environment. With the
// stdio MCP transport, stdout carries the protocol, so logs go to stderr.
func Setup(cfg *config.Config) *slog.Logger {
	var out io.Writer = os.Stdout
	if cfg.MCPTransport == config.TransportStdio {
		out = os.Stderr
	}
	logger := New(cfg, out)

	// Set as default logger
	slog.SetDefault(logger)

	return logger
}

// New builds a logger writing to out without installing it as the default.
func New(cfg *config.Config, out io.Writer) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	if cfg.Environment == "production" {
		// JSON format for production
		handler = slog.NewJSONHandler(out, opts)
	} else {
		// Text format for development
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler)
}

// WithRequestID adds request ID to logger context
func WithRequestID(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With("request_id", requestID)
}

// WithError adds error to logger context
func WithError(logger *slog.Logger, err error) *slog.Logger {
	return logger.With("error", err.Error())
}
