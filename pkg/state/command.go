package state

import (
	"strings"
)

type CommandType string

const (
	CmdLook      CommandType = "look"
	CmdMove      CommandType = "move"
	CmdInventory CommandType = "inventory"
	CmdSheet     CommandType = "sheet"
	CmdRoll      CommandType = "roll"
	CmdSet       CommandType = "set"
	CmdLookup    CommandType = "lookup"
	CmdMap       CommandType = "map"
	CmdCopy      CommandType = "copy"
	CmdHelp      CommandType = "help"
	CmdQuit      CommandType = "quit"
	CmdNone      CommandType = "" // Not a command
)

// Command is a parsed line of player input.
type Command struct {
	Type CommandType
	Args []string
}

// Arg returns the i'th argument or "".
func (c Command) Arg(i int) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return ""
}

// Rest joins the arguments from i on.
func (c Command) Rest(i int) string {
	if i >= len(c.Args) {
		return ""
	}
	return strings.Join(c.Args[i:], " ")
}

var directionAliases = map[string]string{
	"n":  "north",
	"s":  "south",
	"e":  "east",
	"w":  "west",
	"u":  "up",
	"d":  "down",
	"ne": "northeast",
	"nw": "northwest",
	"se": "southeast",
	"sw": "southwest",
}

var bareDirections = map[string]bool{
	"north": true, "south": true, "east": true, "west": true, "up": true, "down": true,
	"northeast": true, "northwest": true, "southeast": true, "southwest": true,
	"in": true, "out": true,
}

// ExpandDirection turns short forms like "n" into full direction names.
func ExpandDirection(dir string) string {
	dir = NormalizeDirection(dir)
	if full, ok := directionAliases[dir]; ok {
		return full
	}
	return dir
}

// ParseCommand recognizes console commands. Unrecognized input returns CmdNone.
func ParseCommand(input string) Command {
	fields := strings.Fields(strings.TrimSpace(input))
	if len(fields) == 0 {
		return Command{Type: CmdNone}
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	if _, ok := directionAliases[verb]; ok && len(args) == 0 {
		return Command{Type: CmdMove, Args: []string{ExpandDirection(verb)}}
	}
	if bareDirections[verb] && len(args) == 0 {
		return Command{Type: CmdMove, Args: []string{verb}}
	}

	known := map[string]CommandType{
		"look":      CmdLook,
		"l":         CmdLook,
		"location":  CmdLook,
		"go":        CmdMove,
		"move":      CmdMove,
		"walk":      CmdMove,
		"inventory": CmdInventory,
		"i":         CmdInventory,
		"inv":       CmdInventory,
		"sheet":     CmdSheet,
		"stats":     CmdSheet,
		"roll":      CmdRoll,
		"set":       CmdSet,
		"lookup":    CmdLookup,
		"map":       CmdMap,
		"/copy":     CmdCopy,
		"/help":     CmdHelp,
		"help":      CmdHelp,
		"quit":      CmdQuit,
		"exit":      CmdQuit,
		"/quit":     CmdQuit,
	}
	cmd, ok := known[verb]
	if !ok {
		return Command{Type: CmdNone, Args: fields}
	}
	if cmd == CmdMove {
		if len(args) == 0 {
			return Command{Type: CmdMove}
		}
		return Command{Type: CmdMove, Args: []string{ExpandDirection(strings.Join(args, " "))}}
	}
	return Command{Type: cmd, Args: args}
}
