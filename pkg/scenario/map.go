package scenario

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
)

// DefaultStartingRoom is used when a map does not name one.
const DefaultStartingRoom = "tavern"

// Map is a named, read-only graph of rooms.
type Map struct {
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	StartingRoom string          `json:"starting_room"`
	Rooms        map[string]Room `json:"rooms"`
}

// ParseMap decodes a map document. name is used when the document has none.
func ParseMap(name string, data []byte) (*Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse map %s: %w", name, err)
	}
	if m.Name == "" {
		m.Name = name
	}
	if m.StartingRoom == "" {
		m.StartingRoom = DefaultStartingRoom
	}
	if m.Rooms == nil {
		m.Rooms = map[string]Room{}
	}
	return &m, nil
}

// Room looks up a room by id.
func (m *Map) Room(id string) (Room, bool) {
	r, ok := m.Rooms[id]
	return r, ok
}

// RoomIDs returns all room ids in sorted order.
func (m *Map) RoomIDs() []string {
	ids := make([]string, 0, len(m.Rooms))
	for id := range m.Rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var idPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// IsValidID reports whether id is lowercase snake_case.
func IsValidID(id string) bool {
	return idPattern.MatchString(id)
}

// Validate checks the map's integrity: the starting room exists, every exit
// points at a room on the map, and ids are snake_case. Sessions do not call
// this; traversal reports broken exits when they are used.
func (m *Map) Validate() []error {
	var errs []error
	if !IsValidID(m.Name) {
		errs = append(errs, fmt.Errorf("map name %q must be lowercase snake_case", m.Name))
	}
	if _, ok := m.Rooms[m.StartingRoom]; !ok {
		errs = append(errs, fmt.Errorf("starting room %q does not exist", m.StartingRoom))
	}
	for _, id := range m.RoomIDs() {
		if !IsValidID(id) {
			errs = append(errs, fmt.Errorf("room id %q must be lowercase snake_case", id))
		}
		room := m.Rooms[id]
		for _, dir := range room.Directions() {
			target := room.Exits[dir]
			if _, ok := m.Rooms[target]; !ok {
				errs = append(errs, fmt.Errorf("room %q exit %q leads to unknown room %q", id, dir, target))
			}
		}
	}
	return errs
}
