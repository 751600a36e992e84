package scenario

import "sort"

// Room is a place on a map with a description and labeled exits.
type Room struct {
	Name        string            `json:"name,omitempty"`  // Optional display name; the map key is the id.
	Description string            `json:"description"`     // Shown on arrival and by look
	Exits       map[string]string `json:"exits,omitempty"` // Direction → Room id
	Items       []string          `json:"items,omitempty"` // Scenery listed in the room view; not tracked by sessions
}

// Directions returns the exit labels in sorted order.
func (r Room) Directions() []string {
	dirs := make([]string, 0, len(r.Exits))
	for d := range r.Exits {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// Target returns the room id an exit leads to.
func (r Room) Target(direction string) (string, bool) {
	id, ok := r.Exits[direction]
	return id, ok
}

// Neighbors returns the set of room ids reachable in one move.
func (r Room) Neighbors() map[string]bool {
	out := make(map[string]bool, len(r.Exits))
	for _, id := range r.Exits {
		out[id] = true
	}
	return out
}
