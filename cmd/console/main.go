package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

type ConsoleConfig struct {
	MCPURL    string
	SessionID string
	Character string
	MapDir    string
	Timeout   time.Duration
}

func main() {
	cfg := &ConsoleConfig{Timeout: 30 * time.Second}
	flag.StringVar(&cfg.MCPURL, "url", getEnv("MCP_URL", "http://localhost:8080/mcp"), "MCP endpoint of the game server")
	flag.StringVar(&cfg.SessionID, "session", "", "session to create or rejoin (default: a new random session)")
	flag.StringVar(&cfg.Character, "character", "Adventurer", "character name")
	flag.StringVar(&cfg.MapDir, "maps", os.TempDir(), "directory the map command writes SVG files to")
	flag.Parse()

	if cfg.SessionID == "" {
		cfg.SessionID = "adventure_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	client, err := connect(ctx, cfg.MCPURL)
	if err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "Could not connect to the game server: %v\nStart it with: go run ./cmd/server\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = client.Close()
	}()

	created, err := client.joinSession(ctx, cfg.SessionID, cfg.Character)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start session: %v\n", err)
		os.Exit(1)
	}

	p := &player{
		client:    client,
		sessionID: cfg.SessionID,
		character: cfg.Character,
		mapDir:    cfg.MapDir,
	}
	program := tea.NewProgram(NewConsoleUI(cfg, p, created),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
