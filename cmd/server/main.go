package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kdabb05/llmud/internal/config"
	"github.com/kdabb05/llmud/internal/handlers"
	"github.com/kdabb05/llmud/internal/logger"
	"github.com/kdabb05/llmud/internal/mcpserver"
	"github.com/kdabb05/llmud/internal/middleware"
	"github.com/kdabb05/llmud/internal/services"
	"github.com/kdabb05/llmud/internal/storage"
	"github.com/kdabb05/llmud/pkg/dice"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting llmud",
		"environment", cfg.Environment,
		"transport", cfg.MCPTransport,
		"storage", cfg.StorageBackend,
		"data_dir", cfg.DataDir,
		"default_map", cfg.DefaultMap)

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	docs, err := storage.Open(storageCtx, cfg, log)
	storageCancel()
	if err != nil {
		log.Error("Failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := docs.Close(); err != nil {
			log.Error("Error closing storage", "error", err)
		}
	}()
	log.Info("Storage ready", "backend", cfg.StorageBackend)

	world := storage.NewFileWorld(cfg.DataDir, cfg.LayoutFile, log)
	if _, err := world.GetMap(context.Background(), cfg.DefaultMap); err != nil {
		log.Error("Default map is not loadable", "map", cfg.DefaultMap, "error", err)
		os.Exit(1)
	}

	game := services.NewGameService(docs, world, dice.NewRoller(), cfg.DefaultMap, log)
	tools := mcpserver.New(game, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MCPTransport == config.TransportStdio {
		log.Info("Serving MCP over stdio")
		if err := tools.RunStdio(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("MCP stdio session ended", "error", err)
			os.Exit(1)
		}
		log.Info("Server exited")
		return
	}

	mux := handlers.NewRouter(game, tools.Handler(), log)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(mux),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: MCP responses may stream
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}
