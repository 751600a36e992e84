package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kdabb05/llmud/pkg/lore"
	"github.com/kdabb05/llmud/pkg/scenario"
	"github.com/kdabb05/llmud/pkg/storage"
)

// FileWorld serves maps, layouts and lore from the data directory:
//
//	<dataDir>/maps/<name>.json
//	<dataDir>/layouts.yaml (or layoutFile)
//	<dataDir>/world/<category>.json
//
// Parsed files are cached for the life of the process.
type FileWorld struct {
	dataDir    string
	layoutFile string
	logger     *slog.Logger

	mu      sync.Mutex
	maps    map[string]*scenario.Map
	layouts scenario.Layouts
	lore    map[lore.Category]lore.Collection
}

// Ensure FileWorld implements WorldStore interface
var _ storage.WorldStore = (*FileWorld)(nil)

// NewFileWorld creates a world store rooted at dataDir. An empty layoutFile
// means <dataDir>/layouts.yaml.
func NewFileWorld(dataDir, layoutFile string, logger *slog.Logger) *FileWorld {
	if layoutFile == "" {
		layoutFile = filepath.Join(dataDir, "layouts.yaml")
	}
	return &FileWorld{
		dataDir:    dataDir,
		layoutFile: layoutFile,
		logger:     logger,
		maps:       make(map[string]*scenario.Map),
		lore:       make(map[lore.Category]lore.Collection),
	}
}

func (w *FileWorld) GetMap(ctx context.Context, name string) (*scenario.Map, error) {
	if !scenario.IsValidID(name) {
		return nil, fmt.Errorf("map %q: %w", name, storage.ErrNotFound)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if m, ok := w.maps[name]; ok {
		return m, nil
	}

	path := filepath.Join(w.dataDir, "maps", name+".json")
	w.logger.Debug("Loading map", "name", name, "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("map %s: %w", name, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}

	m, err := scenario.ParseMap(name, data)
	if err != nil {
		w.logger.Error("Failed to parse map", "path", path, "error", err)
		return nil, err
	}
	w.maps[name] = m
	return m, nil
}

func (w *FileWorld) ListMaps(ctx context.Context) ([]string, error) {
	dir := filepath.Join(w.dataDir, "maps")
	var names []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		names = append(names, strings.TrimSuffix(filepath.Base(path), ".json"))
		return nil
	})
	if err != nil {
		w.logger.Error("Failed to walk maps directory", "error", err)
		return nil, fmt.Errorf("failed to list maps: %w", err)
	}

	sort.Strings(names)
	return names, nil
}

func (w *FileWorld) GetLayout(ctx context.Context, mapName string) (scenario.Layout, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.layouts == nil {
		data, err := os.ReadFile(w.layoutFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			w.logger.Warn("Layout file not found, maps will render without positions", "path", w.layoutFile)
			data = nil
		case err != nil:
			return nil, fmt.Errorf("failed to read layout file: %w", err)
		}
		layouts, err := scenario.ParseLayouts(data)
		if err != nil {
			return nil, err
		}
		w.layouts = layouts
	}

	if l, ok := w.layouts[mapName]; ok {
		return l, nil
	}
	return scenario.Layout{}, nil
}

func (w *FileWorld) GetLore(ctx context.Context, category lore.Category) (lore.Collection, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if c, ok := w.lore[category]; ok {
		return c, nil
	}

	path := filepath.Join(w.dataDir, "world", category.File())
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("lore %s: %w", category, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read lore file: %w", err)
	}

	c, err := lore.ParseCollection(data)
	if err != nil {
		w.logger.Error("Failed to parse lore file", "path", path, "error", err)
		return nil, err
	}
	w.lore[category] = c
	return c, nil
}
