package scenario

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Coord places a room on the renderer's grid. Level < 0 is below ground.
type Coord struct {
	X     int `yaml:"x" json:"x"`
	Y     int `yaml:"y" json:"y"`
	Level int `yaml:"level,omitempty" json:"level,omitempty"`
}

// Layout maps room ids to grid coordinates for one map.
// Rooms without an entry are not drawn.
type Layout map[string]Coord

// Layouts is the layout table for every map, keyed by map name.
type Layouts map[string]Layout

// ParseLayouts decodes a YAML layout table:
//
//	village:
//	  tavern: {x: 2, y: 3}
//	  cellar: {x: 2, y: 3, level: -1}
func ParseLayouts(data []byte) (Layouts, error) {
	var l Layouts
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to parse layouts: %w", err)
	}
	if l == nil {
		l = Layouts{}
	}
	return l, nil
}

// Extent returns the largest x and y in the layout.
func (l Layout) Extent() (maxX, maxY int) {
	for _, c := range l {
		if c.X > maxX {
			maxX = c.X
		}
		if c.Y > maxY {
			maxY = c.Y
		}
	}
	return maxX, maxY
}

// Missing returns the ids from rooms that have no coordinates.
func (l Layout) Missing(m *Map) []string {
	var out []string
	for _, id := range m.RoomIDs() {
		if _, ok := l[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
