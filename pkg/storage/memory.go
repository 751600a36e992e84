package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kdabb05/llmud/pkg/lore"
	"github.com/kdabb05/llmud/pkg/scenario"
)

// MemoryStorage is an in-memory DocumentStore and WorldStore. It backs the
// "memory" storage backend and tests.
type MemoryStorage struct {
	mu        sync.RWMutex
	docs      map[string]map[string][]byte // session → resource → document
	maps      map[string]*scenario.Map
	layouts   scenario.Layouts
	lore      map[lore.Category]lore.Collection
	pingError error
	putErrors map[string]error // resource → error
}

// Ensure MemoryStorage implements both interfaces
var (
	_ DocumentStore = (*MemoryStorage)(nil)
	_ WorldStore    = (*MemoryStorage)(nil)
)

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		docs:      make(map[string]map[string][]byte),
		maps:      make(map[string]*scenario.Map),
		layouts:   make(scenario.Layouts),
		lore:      make(map[lore.Category]lore.Collection),
		putErrors: make(map[string]error),
	}
}

// SetPingError makes Ping fail with err.
func (m *MemoryStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// FailPut makes every Put of resource fail with err. A nil err clears it.
func (m *MemoryStorage) FailPut(resource string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.putErrors, resource)
		return
	}
	m.putErrors[resource] = err
}

// AddMap registers a map.
func (m *MemoryStorage) AddMap(mp *scenario.Map) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maps[mp.Name] = mp
}

// SetLayout registers the layout for a map.
func (m *MemoryStorage) SetLayout(mapName string, layout scenario.Layout) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layouts[mapName] = layout
}

// SetLore registers a lore collection.
func (m *MemoryStorage) SetLore(category lore.Category, c lore.Collection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lore[category] = c
}

// Sessions returns the ids of all stored sessions, sorted.
func (m *MemoryStorage) Sessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *MemoryStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MemoryStorage) Close() error {
	return nil
}

func (m *MemoryStorage) Get(ctx context.Context, key Key) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[key.Session][key.Resource]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", key, ErrNotFound)
	}
	return append([]byte(nil), doc...), nil
}

func (m *MemoryStorage) Put(ctx context.Context, key Key, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.putErrors[key.Resource]; err != nil {
		return err
	}
	if m.docs[key.Session] == nil {
		m.docs[key.Session] = make(map[string][]byte)
	}
	m.docs[key.Session][key.Resource] = append([]byte(nil), doc...)
	return nil
}

func (m *MemoryStorage) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.docs[sessionID]
	return ok, nil
}

func (m *MemoryStorage) DeleteSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, sessionID)
	return nil
}

func (m *MemoryStorage) GetMap(ctx context.Context, name string) (*scenario.Map, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mp, ok := m.maps[name]
	if !ok {
		return nil, fmt.Errorf("map %s: %w", name, ErrNotFound)
	}
	return mp, nil
}

func (m *MemoryStorage) ListMaps(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.maps))
	for name := range m.maps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStorage) GetLayout(ctx context.Context, mapName string) (scenario.Layout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if l, ok := m.layouts[mapName]; ok {
		return l, nil
	}
	return scenario.Layout{}, nil
}

func (m *MemoryStorage) GetLore(ctx context.Context, category lore.Category) (lore.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.lore[category]
	if !ok {
		return nil, fmt.Errorf("lore %s: %w", category, ErrNotFound)
	}
	return c, nil
}
