package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/kdabb05/llmud/pkg/lore"
	"github.com/kdabb05/llmud/pkg/scenario"
)

func TestMemoryStorage_Documents(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorage()

	if _, err := m.Get(ctx, StateKey("s1")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if ok, _ := m.SessionExists(ctx, "s1"); ok {
		t.Fatal("session should not exist yet")
	}

	if err := m.Put(ctx, CharacterKey("s1", "Hero"), []byte(`{"name":"Hero"}`)); err != nil {
		t.Fatal(err)
	}
	if ok, _ := m.SessionExists(ctx, "s1"); !ok {
		t.Fatal("session should exist after put")
	}
	doc, err := m.Get(ctx, CharacterKey("s1", "Hero"))
	if err != nil || string(doc) != `{"name":"Hero"}` {
		t.Fatalf("get = %s, %v", doc, err)
	}

	m.FailPut(ResourceState, errors.New("disk full"))
	if err := m.Put(ctx, StateKey("s1"), []byte(`{}`)); err == nil {
		t.Fatal("expected injected put failure")
	}
	m.FailPut(ResourceState, nil)
	if err := m.Put(ctx, StateKey("s1"), []byte(`{}`)); err != nil {
		t.Fatal(err)
	}

	if err := m.DeleteSession(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if err := m.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if len(m.Sessions()) != 0 {
		t.Errorf("sessions = %v", m.Sessions())
	}
}

func TestMemoryStorage_World(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorage()
	m.AddMap(&scenario.Map{Name: "village", StartingRoom: "tavern"})
	m.SetLayout("village", scenario.Layout{"tavern": {X: 1, Y: 1}})
	m.SetLore(lore.NPCs, lore.Collection{})

	if _, err := m.GetMap(ctx, "village"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.GetMap(ctx, "castle"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if names, _ := m.ListMaps(ctx); len(names) != 1 || names[0] != "village" {
		t.Errorf("maps = %v", names)
	}
	if l, _ := m.GetLayout(ctx, "castle"); l == nil || len(l) != 0 {
		t.Errorf("expected empty layout, got %v", l)
	}
	if _, err := m.GetLore(ctx, lore.Items); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCharacterName(t *testing.T) {
	key := CharacterKey("s1", "Hero")
	name, ok := CharacterName(key.Resource)
	if !ok || name != "Hero" {
		t.Errorf("CharacterName(%q) = %q, %v", key.Resource, name, ok)
	}
	if _, ok := CharacterName(ResourceState); ok {
		t.Error("state resource is not a character")
	}
	if key.String() != "s1/characters/Hero" {
		t.Errorf("key string = %q", key.String())
	}
}
