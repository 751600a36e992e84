package state

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kdabb05/llmud/pkg/gameerr"
	"github.com/kdabb05/llmud/pkg/scenario"
)

func testMap() *scenario.Map {
	return &scenario.Map{
		Name:         "village",
		StartingRoom: "tavern",
		Rooms: map[string]scenario.Room{
			"tavern": {Description: "A warm tavern.", Exits: map[string]string{"north": "street", "down": "cellar"}},
			"cellar": {Description: "Damp and dark.", Exits: map[string]string{"up": "tavern"}, Items: []string{"rusty key"}},
			"street": {Description: "Muddy cobbles.", Exits: map[string]string{"south": "tavern", "east": "ruins"}},
		},
	}
}

func TestNewSessionState(t *testing.T) {
	s := NewSessionState("s1", testMap(), "Hero")
	if s.CurrentRoom != "tavern" || s.CurrentMap != "village" {
		t.Errorf("unexpected position %s/%s", s.CurrentMap, s.CurrentRoom)
	}
	if !reflect.DeepEqual(s.Characters, []string{"Hero"}) {
		t.Errorf("characters = %v", s.Characters)
	}
	if s.TurnCount != 0 || s.ActiveQuests == nil || s.EventFlags == nil {
		t.Errorf("unexpected initial state %+v", s)
	}
	if !s.HasCharacter("Hero") || s.HasCharacter("Villain") {
		t.Error("HasCharacter mismatch")
	}
}

func TestSessionState_EncodeDecode(t *testing.T) {
	s := NewSessionState("s1", testMap(), "Hero")
	s.EventFlags["met_innkeeper"] = true
	data, err := s.Encode()
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeSessionState(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentRoom != "tavern" || got.EventFlags["met_innkeeper"] != true {
		t.Errorf("decoded %+v", got)
	}

	legacy, err := DecodeSessionState([]byte(`{"current_room":"tavern","current_map":"village","turn_count":3}`))
	if err != nil {
		t.Fatal(err)
	}
	if legacy.Characters == nil || legacy.ActiveQuests == nil || legacy.EventFlags == nil {
		t.Errorf("expected empty collections, got %+v", legacy)
	}
}

func TestSessionState_Move(t *testing.T) {
	m := testMap()
	s := NewSessionState("s1", m, "Hero")

	view, err := s.Move(m, "  NORTH ")
	if err != nil {
		t.Fatalf("Move north: %v", err)
	}
	if view.CurrentRoom != "street" || view.Description != "Muddy cobbles." {
		t.Errorf("view = %+v", view)
	}
	if s.CurrentRoom != "street" || s.TurnCount != 1 {
		t.Errorf("state = %s/%d", s.CurrentRoom, s.TurnCount)
	}

	if _, err := s.Move(m, "south"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Move(m, "down"); err != nil {
		t.Fatal(err)
	}
	if s.CurrentRoom != "cellar" || s.TurnCount != 3 {
		t.Errorf("state = %s/%d", s.CurrentRoom, s.TurnCount)
	}
}

func TestSessionState_MoveNoSuchExit(t *testing.T) {
	m := testMap()
	s := NewSessionState("s1", m, "Hero")

	_, err := s.Move(m, "west")
	var ge *gameerr.Error
	if !errors.As(err, &ge) || ge.Kind != gameerr.KindNoSuchExit {
		t.Fatalf("expected NoSuchExit, got %v", err)
	}
	if !reflect.DeepEqual(ge.ValidExits, []string{"down", "north"}) {
		t.Errorf("valid exits = %v", ge.ValidExits)
	}
	if ge.Message != "No exit to the west" {
		t.Errorf("message = %q", ge.Message)
	}
	if s.CurrentRoom != "tavern" || s.TurnCount != 0 {
		t.Errorf("state changed: %s/%d", s.CurrentRoom, s.TurnCount)
	}
}

func TestSessionState_MoveCorruptMap(t *testing.T) {
	m := testMap()
	s := NewSessionState("s1", m, "Hero")
	s.CurrentRoom = "street"

	_, err := s.Move(m, "east")
	if !errors.Is(err, gameerr.CorruptMap) {
		t.Fatalf("expected CorruptMap, got %v", err)
	}
	if s.CurrentRoom != "street" || s.TurnCount != 0 {
		t.Errorf("state changed: %s/%d", s.CurrentRoom, s.TurnCount)
	}
}

func TestSessionState_CurrentView(t *testing.T) {
	m := testMap()
	s := NewSessionState("s1", m, "Hero")
	view, err := s.CurrentView(m)
	if err != nil {
		t.Fatal(err)
	}
	if view.CurrentRoom != "tavern" || view.Exits["down"] != "cellar" {
		t.Errorf("view = %+v", view)
	}
	view.Exits["west"] = "nowhere"
	if _, ok := m.Rooms["tavern"].Exits["west"]; ok {
		t.Error("view exits alias the map")
	}

	s.CurrentRoom = "attic"
	if _, err := s.CurrentView(m); !errors.Is(err, gameerr.NotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
	if _, err := s.Move(m, "north"); !errors.Is(err, gameerr.NotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestSessionState_ViewItems(t *testing.T) {
	m := testMap()
	s := NewSessionState("s1", m, "Hero")

	view, err := s.CurrentView(m)
	if err != nil {
		t.Fatal(err)
	}
	if view.Items == nil || len(view.Items) != 0 {
		t.Errorf("tavern items = %#v, want empty list", view.Items)
	}

	view, err = s.Move(m, "down")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(view.Items, []string{"rusty key"}) {
		t.Errorf("cellar items = %v", view.Items)
	}
	view.Items[0] = "gold bar"
	if m.Rooms["cellar"].Items[0] != "rusty key" {
		t.Error("view items alias the map")
	}
}

func TestValidateSessionID(t *testing.T) {
	for _, id := range []string{"s1", "my_adventure", "Game_42", "ñandú"} {
		if err := ValidateSessionID(id); err != nil {
			t.Errorf("%q: unexpected error %v", id, err)
		}
	}
	for _, id := range []string{"", "   ", "bad id", "../etc", "a-b", "x.y"} {
		if err := ValidateSessionID(id); !errors.Is(err, gameerr.Malformed) {
			t.Errorf("%q: expected Malformed, got %v", id, err)
		}
	}
}
