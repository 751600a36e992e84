package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kdabb05/llmud/internal/mcpserver"
	"github.com/kdabb05/llmud/pkg/actor"
	"github.com/kdabb05/llmud/pkg/lore"
	"github.com/kdabb05/llmud/pkg/state"
)

const helpText = `Commands:
• look, l              Describe the current room
• n/s/e/w/u/d, go <dir> Move through an exit
• sheet, stats         Show your character sheet
• inventory, i         Show your inventory
• set <field> <value>  Update your sheet (e.g. set gold +5, set inventory+ rope)
• roll <dice>          Roll dice (e.g. roll 2d6+3)
• lookup <kind> <what> Look up lore: region, npc, creature, scenario, item
• map                  Save the SVG map to a file
• /copy                Copy the last SVG map to the clipboard
• quit                 Leave the game`

// player runs console commands against one session and character.
type player struct {
	client    *gameClient
	sessionID string
	character string
	mapDir    string
}

// outcome is the result of one command.
type outcome struct {
	text  string
	copy  bool
	quit  bool
	state *mcpserver.SessionStateResult
	view  *mcpserver.MapResult
	sheet actor.Sheet
}

func (p *player) run(ctx context.Context, input string) (outcome, error) {
	cmd := state.ParseCommand(input)

	switch cmd.Type {
	case state.CmdHelp:
		return outcome{text: helpText}, nil
	case state.CmdQuit:
		return outcome{quit: true}, nil
	case state.CmdCopy:
		return outcome{copy: true}, nil

	case state.CmdLook:
		view, err := p.client.look(ctx, p.sessionID)
		if err != nil {
			return outcome{}, err
		}
		return outcome{text: formatRoom(view), view: view}, nil

	case state.CmdMove:
		if cmd.Arg(0) == "" {
			return outcome{text: "Go where? Try 'go north' or just 'n'."}, nil
		}
		view, err := p.client.move(ctx, p.sessionID, cmd.Arg(0))
		if err != nil {
			return outcome{}, err
		}
		st, err := p.client.state(ctx, p.sessionID)
		if err != nil {
			return outcome{}, err
		}
		return outcome{text: formatRoom(view), state: st, view: view}, nil

	case state.CmdSheet:
		sheet, err := p.client.sheet(ctx, p.sessionID, p.character)
		if err != nil {
			return outcome{}, err
		}
		return outcome{text: formatSheet(sheet), sheet: sheet}, nil

	case state.CmdInventory:
		sheet, err := p.client.sheet(ctx, p.sessionID, p.character)
		if err != nil {
			return outcome{}, err
		}
		return outcome{text: formatInventory(sheet), sheet: sheet}, nil

	case state.CmdSet:
		if len(cmd.Args) < 2 {
			return outcome{text: "Usage: set <field> <value>"}, nil
		}
		updates := actor.Updates{{Key: cmd.Arg(0), Value: parseValue(cmd.Rest(1))}}
		sheet, err := p.client.update(ctx, p.sessionID, p.character, updates)
		if err != nil {
			return outcome{}, err
		}
		return outcome{text: "Updated.\n\n" + formatSheet(sheet), sheet: sheet}, nil

	case state.CmdRoll:
		notation := cmd.Arg(0)
		if notation == "" {
			notation = "1d20"
		}
		res, err := p.client.roll(ctx, notation)
		if err != nil {
			return outcome{}, err
		}
		return outcome{text: formatRoll(res)}, nil

	case state.CmdLookup:
		category, ok := lore.ParseCategory(cmd.Arg(0))
		if !ok || cmd.Rest(1) == "" {
			return outcome{text: "Usage: lookup <region|npc|creature|scenario|item> <name>"}, nil
		}
		res, err := p.client.lookup(ctx, category, cmd.Rest(1))
		if err != nil {
			return outcome{}, err
		}
		return outcome{text: formatLookup(res)}, nil

	case state.CmdMap:
		view, err := p.client.look(ctx, p.sessionID)
		if err != nil {
			return outcome{}, err
		}
		path, err := p.saveMap(view.Diagram)
		if err != nil {
			return outcome{}, err
		}
		return outcome{text: formatRoom(view) + "\n\nMap saved to " + path, view: view}, nil
	}

	return outcome{text: fmt.Sprintf("I don't understand '%s'. Type 'help' for commands.", strings.TrimSpace(input))}, nil
}

func (p *player) saveMap(diagram string) (string, error) {
	dir := p.mapDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, p.sessionID+"_map.svg")
	if err := os.WriteFile(path, []byte(diagram), 0o644); err != nil {
		return "", fmt.Errorf("failed to save map: %w", err)
	}
	return path, nil
}

// parseValue reads a set value as JSON when it parses, else as text. Signed
// values such as "+5" or "-3" stay text so they apply as deltas.
func parseValue(raw string) any {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "+") || strings.HasPrefix(raw, "-") {
		return raw
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return actor.Normalize(v)
	}
	return raw
}

func formatRoom(view *mcpserver.MapResult) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(strings.ReplaceAll(view.CurrentRoom, "_", " ")) + "\n")
	b.WriteString(view.RoomDescription + "\n\n")
	if len(view.Items) > 0 {
		b.WriteString("You see: " + strings.Join(view.Items, ", ") + ".\n\n")
	}
	if len(view.Exits) == 0 {
		b.WriteString("There are no exits.")
		return b.String()
	}
	dirs := make([]string, 0, len(view.Exits))
	for d := range view.Exits {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	b.WriteString("Exits:")
	for _, d := range dirs {
		fmt.Fprintf(&b, "\n• %s → %s", d, view.Exits[d])
	}
	return b.String()
}

func formatSheet(sheet actor.Sheet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nGold: %d\n", sheet.Name(), sheet.Gold())
	if keys := sheet.StatKeys(); len(keys) > 0 {
		b.WriteString("Stats:\n")
		stats := sheet.Stats()
		for _, k := range keys {
			fmt.Fprintf(&b, "• %s: %v\n", k, stats[k])
		}
	}
	b.WriteString(formatInventory(sheet))
	if notes := sheet.Notes(); len(notes) > 0 {
		b.WriteString("\nNotes:")
		for _, n := range notes {
			b.WriteString("\n• " + n)
		}
	}
	return b.String()
}

func formatInventory(sheet actor.Sheet) string {
	items := sheet.Inventory()
	if len(items) == 0 {
		return "Inventory: empty"
	}
	return "Inventory: " + strings.Join(items, ", ")
}

func formatRoll(res *mcpserver.RollDiceResult) string {
	rolls := make([]string, len(res.Rolls))
	for i, r := range res.Rolls {
		rolls[i] = fmt.Sprint(r)
	}
	s := fmt.Sprintf("%s: [%s]", res.Notation, strings.Join(rolls, ", "))
	if res.Modifier != 0 {
		s += fmt.Sprintf(" %+d", res.Modifier)
	}
	return fmt.Sprintf("%s = %d", s, res.Total)
}

func formatLookup(res *mcpserver.LookupResult) string {
	if !res.Found {
		s := res.Error
		if len(res.Suggestions) > 0 {
			s += "\nDid you mean: " + strings.Join(res.Suggestions, ", ") + "?"
		} else if len(res.Available) > 0 {
			s += "\nKnown items: " + strings.Join(res.Available, ", ")
		}
		return s
	}

	var b strings.Builder
	switch {
	case res.Region != nil:
		fmt.Fprintf(&b, "%s\n%s", res.Region.Region, res.Region.Description)
		writeList(&b, "Notable features", res.Region.NotableFeatures)
		writeList(&b, "Connections", res.Region.Connections)
	case res.NPC != nil:
		fmt.Fprintf(&b, "%s, %s\n%s", res.NPC.Name, res.NPC.Role, res.NPC.Description)
		if res.NPC.Personality != "" {
			b.WriteString("\nPersonality: " + res.NPC.Personality)
		}
		writeList(&b, "Knows about", res.NPC.KnowsAbout)
	case res.Creature != nil:
		fmt.Fprintf(&b, "%s\n%s", res.Creature.Type, res.Creature.Description)
		if len(res.Creature.Stats) > 0 {
			keys := make([]string, 0, len(res.Creature.Stats))
			for k := range res.Creature.Stats {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			stats := make([]string, len(keys))
			for i, k := range keys {
				stats[i] = fmt.Sprintf("%s %v", k, res.Creature.Stats[k])
			}
			b.WriteString("\nStats: " + strings.Join(stats, ", "))
		}
		writeList(&b, "Weaknesses", res.Creature.Weaknesses)
		writeList(&b, "Abilities", res.Creature.Abilities)
	case res.Scenario != nil:
		fmt.Fprintf(&b, "%s\n%s", res.Scenario.Title, res.Scenario.Hook)
		if res.Scenario.Details != "" {
			b.WriteString("\n" + res.Scenario.Details)
		}
		writeList(&b, "Rewards", res.Scenario.Rewards)
	default:
		for i, item := range res.Items {
			if i > 0 {
				b.WriteString("\n\n")
			}
			fmt.Fprintf(&b, "%s (%s)\n%s", item.Name, item.Rarity, item.Description)
			writeList(&b, "Effects", item.Effects)
		}
	}
	return b.String()
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n" + label + ": " + strings.Join(items, ", "))
}
