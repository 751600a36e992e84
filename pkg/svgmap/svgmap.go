// Package svgmap draws a map's rooms and exits as a self-contained SVG
// diagram, highlighting the current room and the rooms one move away.
package svgmap

import (
	"bytes"
	"fmt"
	"html"
	"sort"
	"strings"

	svg "github.com/ajstarks/svgo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kdabb05/llmud/pkg/scenario"
)

// Grid geometry in pixels.
const (
	CellSize          = 100
	RoomWidth         = 80
	RoomHeight        = 50
	Padding           = 60
	UndergroundOffset = 15
	legendHeight      = 30
	maxNameLength     = 12
)

const (
	colorBackground    = "#f5f5f5"
	colorCurrentFill   = "#4a9eff"
	colorCurrentStroke = "#2563eb"
	colorNearbyFill    = "#a7f3d0"
	colorNearbyStroke  = "#059669"
	colorNearbyGlow    = "#10b981"
	colorNeutralFill   = "#e8e8e8"
	colorNeutralStroke = "#666666"
	colorEdge          = "#888888"
	colorIndicator     = "#666666"
)

// Room styles, also emitted as class names.
const (
	StyleCurrent = "current"
	StyleNearby  = "nearby"
	StyleNeutral = "neutral"
)

var abbreviations = map[string]string{
	"north":     "N",
	"south":     "S",
	"east":      "E",
	"west":      "W",
	"northeast": "NE",
	"northwest": "NW",
	"southeast": "SE",
	"southwest": "SW",
	"up":        "↑",
	"down":      "↓",
}

// Abbreviate returns the short label drawn on an accessible exit.
func Abbreviate(direction string) string {
	if a, ok := abbreviations[direction]; ok {
		return a
	}
	for _, r := range direction {
		return strings.ToUpper(string(r))
	}
	return ""
}

func isVertical(direction string) bool {
	return direction == "up" || direction == "down"
}

var titleCaser = cases.Title(language.English)

// TitleName turns a room id into a display title: "village_gate" → "Village Gate".
func TitleName(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}

// DisplayName is TitleName shortened to fit inside a room box.
func DisplayName(id string) string {
	name := []rune(TitleName(id))
	if len(name) > maxNameLength {
		return string(name[:maxNameLength-1]) + "..."
	}
	return string(name)
}

type point struct{ x, y int }

// center returns the pixel center of a grid cell; rooms below ground are
// nudged down and right so they sit under the room above them.
func center(c scenario.Coord) point {
	p := point{
		x: Padding + c.X*CellSize + CellSize/2,
		y: Padding + c.Y*CellSize + CellSize/2,
	}
	if c.Level < 0 {
		p.x += UndergroundOffset
		p.y += UndergroundOffset
	}
	return p
}

// Render draws rooms with current highlighted. Rooms missing from layout are
// skipped. The output is deterministic for the same inputs.
func Render(rooms map[string]scenario.Room, current string, layout scenario.Layout) string {
	var buf bytes.Buffer
	r := renderer{
		rooms:   rooms,
		current: current,
		layout:  layout,
		nearby:  nearbySet(rooms, current),
		canvas:  svg.New(&buf),
	}
	r.draw()
	return buf.String()
}

// RenderMap renders every room of m.
func RenderMap(m *scenario.Map, current string, layout scenario.Layout) string {
	return Render(m.Rooms, current, layout)
}

// Nearby returns the sorted ids of rooms one move from current.
func Nearby(rooms map[string]scenario.Room, current string) []string {
	set := nearbySet(rooms, current)
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func nearbySet(rooms map[string]scenario.Room, current string) map[string]bool {
	room, ok := rooms[current]
	if !ok {
		return map[string]bool{}
	}
	set := room.Neighbors()
	delete(set, current)
	return set
}

type renderer struct {
	rooms   map[string]scenario.Room
	current string
	layout  scenario.Layout
	nearby  map[string]bool
	canvas  *svg.SVG
}

func (r *renderer) draw() {
	maxX, maxY := r.layout.Extent()
	width := (maxX+1)*CellSize + 2*Padding
	height := (maxY+1)*CellSize + 2*Padding + legendHeight

	r.canvas.Start(width, height, fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height))
	r.canvas.Rect(0, 0, width, height, attr("fill", colorBackground))

	r.canvas.Group(`class="connections"`)
	r.drawConnections()
	r.canvas.Gend()

	r.canvas.Group(`class="rooms"`)
	for _, id := range r.placedRooms() {
		r.drawRoom(id)
	}
	r.canvas.Gend()

	r.drawLegend(height)
	r.canvas.End()
}

// placedRooms returns the ids of rooms that have layout coordinates, sorted.
func (r *renderer) placedRooms() []string {
	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		if _, ok := r.layout[id]; ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// connectionOrder visits the current room first so its exits claim their
// pairs before the reverse exits do.
func (r *renderer) connectionOrder() []string {
	ids := r.placedRooms()
	order := make([]string, 0, len(ids))
	if _, ok := r.layout[r.current]; ok {
		if _, ok := r.rooms[r.current]; ok {
			order = append(order, r.current)
		}
	}
	for _, id := range ids {
		if id != r.current {
			order = append(order, id)
		}
	}
	return order
}

func (r *renderer) drawConnections() {
	drawn := make(map[[2]string]bool)
	for _, id := range r.connectionOrder() {
		room := r.rooms[id]
		for _, dir := range room.Directions() {
			target := room.Exits[dir]
			if target == id {
				continue
			}
			if _, ok := r.rooms[target]; !ok {
				continue
			}
			if _, ok := r.layout[target]; !ok {
				continue
			}
			pair := [2]string{id, target}
			if target < id {
				pair = [2]string{target, id}
			}
			if drawn[pair] {
				continue
			}
			drawn[pair] = true

			accessible := id == r.current && r.nearby[target]
			if isVertical(dir) {
				r.drawStub(id, target, dir, accessible)
			} else {
				r.drawEdge(id, target, dir, accessible)
			}
		}
	}
}

func edgeStyle(accessible bool) []string {
	if accessible {
		return []string{`class="edge accessible"`, attr("stroke", colorNearbyGlow), `stroke-width="3"`}
	}
	return []string{`class="edge"`, attr("stroke", colorEdge), `stroke-width="2"`}
}

func (r *renderer) drawEdge(from, to, dir string, accessible bool) {
	a, b := center(r.layout[from]), center(r.layout[to])
	start, end := boxEdge(a, b), boxEdge(b, a)
	r.canvas.Line(start.x, start.y, end.x, end.y, edgeStyle(accessible)...)
	if accessible {
		r.drawLabel(start, end, dir)
	}
}

// boxEdge moves from the center of a room box to its border in the direction of other.
func boxEdge(from, other point) point {
	dx, dy := other.x-from.x, other.y-from.y
	if abs(dx)*RoomHeight >= abs(dy)*RoomWidth {
		return point{x: from.x + sign(dx)*RoomWidth/2, y: from.y + scale(dy, abs(dx), RoomWidth/2)}
	}
	return point{x: from.x + scale(dx, abs(dy), RoomHeight/2), y: from.y + sign(dy)*RoomHeight/2}
}

// drawStub draws a short dashed connector beside the rooms for up/down exits.
func (r *renderer) drawStub(from, to, dir string, accessible bool) {
	a, b := center(r.layout[from]), center(r.layout[to])
	x1, y1 := a.x+RoomWidth/2-10, a.y
	x2, y2 := b.x+RoomWidth/2-10, b.y
	if a == b {
		y2 = y1 + RoomHeight/2
	}
	style := append(edgeStyle(accessible), `stroke-dasharray="4,2"`)
	r.canvas.Line(x1, y1, x2, y2, style...)
	if accessible {
		r.drawLabel(point{x1, y1}, point{x2, y2}, dir)
	}
}

func (r *renderer) drawLabel(start, end point, dir string) {
	label := Abbreviate(dir)
	if label == "" {
		return
	}
	mx, my := (start.x+end.x)/2, (start.y+end.y)/2
	// Horizontal edges get the label above, vertical ones to the right.
	if abs(end.x-start.x) >= abs(end.y-start.y) {
		my -= 6
	} else {
		mx += 10
		my += 4
	}
	r.canvas.Text(mx, my, label,
		`class="direction-label"`,
		`text-anchor="middle"`,
		`font-family="sans-serif"`,
		`font-size="12"`,
		`font-weight="bold"`,
		attr("fill", colorNearbyStroke))
}

func (r *renderer) styleOf(id string) string {
	switch {
	case id == r.current:
		return StyleCurrent
	case r.nearby[id]:
		return StyleNearby
	default:
		return StyleNeutral
	}
}

func (r *renderer) drawRoom(id string) {
	coord := r.layout[id]
	c := center(coord)
	x, y := c.x-RoomWidth/2, c.y-RoomHeight/2
	style := r.styleOf(id)

	class := "room " + style
	if coord.Level < 0 {
		class += " underground"
	}
	r.canvas.Group(attr("class", class), attr("data-room", id))

	if style == StyleNearby {
		r.canvas.Roundrect(x-3, y-3, RoomWidth+6, RoomHeight+6, 10, 10,
			`class="glow"`, `fill="none"`, attr("stroke", colorNearbyGlow), `stroke-width="2"`, `opacity="0.5"`)
	}

	box := []string{}
	textFill, weight := "#333333", "normal"
	switch style {
	case StyleCurrent:
		box = append(box, attr("fill", colorCurrentFill), attr("stroke", colorCurrentStroke), `stroke-width="3"`)
		textFill, weight = "white", "bold"
	case StyleNearby:
		box = append(box, attr("fill", colorNearbyFill), attr("stroke", colorNearbyStroke), `stroke-width="2"`)
	default:
		box = append(box, attr("fill", colorNeutralFill), attr("stroke", colorNeutralStroke), `stroke-width="1"`)
	}
	if coord.Level < 0 {
		box = append(box, `stroke-dasharray="5,3"`)
	}
	r.canvas.Roundrect(x, y, RoomWidth, RoomHeight, 6, 6, box...)

	r.canvas.Text(c.x, c.y+4, DisplayName(r.roomName(id)),
		`text-anchor="middle"`,
		`font-family="sans-serif"`,
		`font-size="11"`,
		attr("font-weight", weight),
		attr("fill", textFill))

	r.drawIndicators(id, x, y)
	r.canvas.Gend()
}

func (r *renderer) roomName(id string) string {
	if name := r.rooms[id].Name; name != "" {
		return name
	}
	return id
}

// drawIndicators marks rooms with up/down exits with small triangles.
func (r *renderer) drawIndicators(id string, x, y int) {
	exits := r.rooms[id].Exits
	right := x + RoomWidth - 8
	if _, ok := exits["up"]; ok {
		r.canvas.Polygon(
			[]int{right - 5, right, right + 5},
			[]int{y + 12, y + 5, y + 12},
			`class="indicator up"`, attr("fill", colorIndicator))
	}
	if _, ok := exits["down"]; ok {
		bottom := y + RoomHeight
		r.canvas.Polygon(
			[]int{right - 5, right, right + 5},
			[]int{bottom - 12, bottom - 5, bottom - 12},
			`class="indicator down"`, attr("fill", colorIndicator))
	}
}

func (r *renderer) drawLegend(height int) {
	y := height - legendHeight
	r.canvas.Group(`class="legend"`)
	r.canvas.Rect(10, y, 14, 14, attr("fill", colorCurrentFill), attr("stroke", colorCurrentStroke))
	r.canvas.Text(30, y+11, "Current: "+TitleName(r.roomName(r.current)),
		`font-family="sans-serif"`, `font-size="12"`, `fill="#333333"`)
	nx := 10 + Padding*3
	r.canvas.Rect(nx, y, 14, 14, attr("fill", colorNearbyFill), attr("stroke", colorNearbyStroke))
	r.canvas.Text(nx+20, y+11, "= Nearby (one move)",
		`font-family="sans-serif"`, `font-size="12"`, `fill="#333333"`)
	r.canvas.Gend()
}

func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, html.EscapeString(value))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

// scale returns n*limit/d, or 0 when d is 0.
func scale(n, d, limit int) int {
	if d == 0 {
		return 0
	}
	return n * limit / d
}
