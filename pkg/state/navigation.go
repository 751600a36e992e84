package state

import (
	"fmt"
	"strings"
	"time"

	"github.com/kdabb05/llmud/pkg/gameerr"
	"github.com/kdabb05/llmud/pkg/scenario"
)

// View is what the player sees in a room.
type View struct {
	CurrentRoom string            `json:"current_room"`
	Description string            `json:"room_description"`
	Exits       map[string]string `json:"exits"`
	Items       []string          `json:"items"`
}

// NormalizeDirection lowercases and trims a direction label.
func NormalizeDirection(direction string) string {
	return strings.ToLower(strings.TrimSpace(direction))
}

// CurrentView returns the current room's description, exits and items. It does not
// change the state.
func (s *SessionState) CurrentView(m *scenario.Map) (View, error) {
	room, ok := m.Room(s.CurrentRoom)
	if !ok {
		return View{}, gameerr.New(gameerr.KindNotFound,
			fmt.Sprintf("Room '%s' not found in map '%s'", s.CurrentRoom, m.Name),
			"The session may be corrupted; start a new session")
	}
	return viewOf(s.CurrentRoom, room), nil
}

// Move follows an exit from the current room. On success the session moves
// to the target room and the turn count goes up by one. On failure nothing
// changes.
func (s *SessionState) Move(m *scenario.Map, direction string) (View, error) {
	room, ok := m.Room(s.CurrentRoom)
	if !ok {
		return View{}, gameerr.New(gameerr.KindNotFound,
			fmt.Sprintf("Current room '%s' not found in map '%s'", s.CurrentRoom, m.Name),
			"The session may be corrupted; start a new session")
	}

	dir := NormalizeDirection(direction)
	targetID, ok := room.Target(dir)
	if !ok {
		err := gameerr.New(gameerr.KindNoSuchExit,
			fmt.Sprintf("No exit to the %s", dir),
			"Choose one of the valid exits")
		err.ValidExits = room.Directions()
		return View{}, err
	}

	target, ok := m.Room(targetID)
	if !ok {
		return View{}, gameerr.New(gameerr.KindCorruptMap,
			fmt.Sprintf("Exit '%s' from '%s' leads to unknown room '%s'", dir, s.CurrentRoom, targetID),
			"Map data is corrupted; report this to the game author")
	}

	s.CurrentRoom = targetID
	s.TurnCount++
	s.UpdatedAt = time.Now().UTC()
	return viewOf(targetID, target), nil
}

func viewOf(id string, room scenario.Room) View {
	exits := make(map[string]string, len(room.Exits))
	for dir, target := range room.Exits {
		exits[dir] = target
	}
	items := append([]string{}, room.Items...)
	return View{CurrentRoom: id, Description: room.Description, Exits: exits, Items: items}
}
