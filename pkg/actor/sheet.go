package actor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Sheet is a character sheet document. The well-known fields are name,
// stats, inventory, gold and notes; any other field an update writes is
// preserved as-is.
type Sheet map[string]any

// Well-known sheet fields.
const (
	FieldName      = "name"
	FieldStats     = "stats"
	FieldInventory = "inventory"
	FieldGold      = "gold"
	FieldNotes     = "notes"

	StatHP    = "hp"
	StatMaxHP = "max_hp"
)

// NewSheet returns the starting sheet every new character receives.
func NewSheet(name string) Sheet {
	return Sheet{
		FieldName: name,
		FieldStats: map[string]any{
			StatHP:      20,
			StatMaxHP:   20,
			"strength":  10,
			"dexterity": 10,
			"wisdom":    10,
		},
		FieldInventory: []any{"torch", "rope", "dagger"},
		FieldGold:      15,
		FieldNotes:     []any{},
	}
}

// DecodeSheet parses a stored sheet document.
func DecodeSheet(data []byte) (Sheet, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode character sheet: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("character sheet document is empty")
	}
	return Sheet(Normalize(raw).(map[string]any)), nil
}

// Encode serializes the sheet for storage.
func (s Sheet) Encode() ([]byte, error) {
	return json.MarshalIndent(map[string]any(s), "", "  ")
}

func (s Sheet) Name() string {
	name, _ := s[FieldName].(string)
	return name
}

// Gold returns the gold count, or 0 if the field is missing or not numeric.
func (s Sheet) Gold() int {
	n, _ := intValue(s[FieldGold])
	return n
}

// Stats returns the stats mapping, or nil if absent.
func (s Sheet) Stats() map[string]any {
	stats, _ := s[FieldStats].(map[string]any)
	return stats
}

// Stat returns an integer stat.
func (s Sheet) Stat(key string) (int, bool) {
	return intValue(s.Stats()[key])
}

// Inventory returns the string items of the inventory in order.
func (s Sheet) Inventory() []string {
	return stringItems(s[FieldInventory])
}

func (s Sheet) Notes() []string {
	return stringItems(s[FieldNotes])
}

// Clone returns a deep copy of the sheet.
func (s Sheet) Clone() Sheet {
	if s == nil {
		return nil
	}
	return Sheet(cloneValue(map[string]any(s)).(map[string]any))
}

// ClampHP lowers stats.hp to stats.max_hp when it exceeds it. It never raises hp.
func (s Sheet) ClampHP() {
	stats := s.Stats()
	if stats == nil {
		return
	}
	hp, ok := numberValue(stats[StatHP])
	if !ok {
		return
	}
	maxHP, ok := numberValue(stats[StatMaxHP])
	if !ok {
		return
	}
	if hp > maxHP {
		stats[StatHP] = stats[StatMaxHP]
	}
}

// StatKeys returns the stat names in sorted order.
func (s Sheet) StatKeys() []string {
	stats := s.Stats()
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringItems(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	items := make([]string, 0, len(list))
	for _, item := range list {
		if str, ok := item.(string); ok {
			items = append(items, str)
		} else {
			items = append(items, fmt.Sprint(item))
		}
	}
	return items
}
