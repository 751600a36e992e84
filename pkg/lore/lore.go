// Package lore holds read-only world reference data: regions, NPCs,
// creatures, scenarios and items, with lookup by key and suggestions for
// near misses.
package lore

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Category names a lore collection.
type Category string

const (
	Geography Category = "geography"
	NPCs      Category = "npcs"
	Creatures Category = "creatures"
	Scenarios Category = "scenarios"
	Items     Category = "items"
)

// Categories lists every lore category.
var Categories = []Category{Geography, NPCs, Creatures, Scenarios, Items}

// File is the document name a category is stored under.
func (c Category) File() string {
	return string(c) + ".json"
}

// ParseCategory accepts a category name or a common singular form.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "geography", "region", "regions", "place":
		return Geography, true
	case "npcs", "npc", "person", "people":
		return NPCs, true
	case "creatures", "creature", "monster", "monsters":
		return Creatures, true
	case "scenarios", "scenario", "quest", "quests":
		return Scenarios, true
	case "items", "item":
		return Items, true
	}
	return "", false
}

// Collection maps normalized keys to raw entries.
type Collection map[string]json.RawMessage

// ParseCollection decodes a lore document.
func ParseCollection(data []byte) (Collection, error) {
	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse lore collection: %w", err)
	}
	if c == nil {
		c = Collection{}
	}
	return c, nil
}

// Keys returns the collection's keys in sorted order.
func (c Collection) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NormalizeKey lowercases s and replaces spaces with underscores.
func NormalizeKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// Region describes a geographic area.
type Region struct {
	Region          string   `json:"region"`
	Description     string   `json:"description"`
	NotableFeatures []string `json:"notable_features"`
	Connections     []string `json:"connections"`
}

// NPC describes a non-player character.
type NPC struct {
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Description string   `json:"description"`
	Personality string   `json:"personality"`
	KnowsAbout  []string `json:"knows_about"`
}

// Creature describes a creature type for encounters.
type Creature struct {
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Stats       map[string]any `json:"stats"`
	Weaknesses  []string       `json:"weaknesses"`
	Abilities   []string       `json:"abilities"`
}

// Scenario is an adventure hook.
type Scenario struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Hook    string   `json:"hook"`
	Details string   `json:"details"`
	Rewards []string `json:"rewards"`
}

// Item is an object or artifact in the world.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Rarity      string   `json:"rarity"`
	Effects     []string `json:"effects"`
	Hooks       []string `json:"hooks"`
	KnownBy     []string `json:"known_by"`
}

// Miss is returned when a lookup finds nothing.
type Miss struct {
	Query       string
	Suggestions []string
}

func (m *Miss) Error() string {
	if len(m.Suggestions) == 0 {
		return fmt.Sprintf("nothing found for %q", m.Query)
	}
	return fmt.Sprintf("nothing found for %q; did you mean %s?", m.Query, strings.Join(m.Suggestions, ", "))
}

func decode[T any](c Collection, key string) (T, error) {
	var v T
	if err := json.Unmarshal(c[key], &v); err != nil {
		return v, fmt.Errorf("failed to decode lore entry %q: %w", key, err)
	}
	return v, nil
}

func (c Collection) miss(query, key string) *Miss {
	return &Miss{Query: query, Suggestions: FindSimilar(key, c.Keys(), MaxSuggestions)}
}

// Region looks up a region.
func (c Collection) Region(query string) (*Region, error) {
	key := NormalizeKey(query)
	if _, ok := c[key]; !ok {
		return nil, c.miss(query, key)
	}
	r, err := decode[Region](c, key)
	if err != nil {
		return nil, err
	}
	r.Region = key
	return &r, nil
}

// NPC looks up an NPC by key or by display name.
func (c Collection) NPC(query string) (*NPC, error) {
	key := NormalizeKey(query)
	if _, ok := c[key]; ok {
		n, err := decode[NPC](c, key)
		if err != nil {
			return nil, err
		}
		if n.Name == "" {
			n.Name = key
		}
		return &n, nil
	}

	keys := c.Keys()
	candidates := append([]string{}, keys...)
	for _, k := range keys {
		n, err := decode[NPC](c, k)
		if err != nil || n.Name == "" {
			continue
		}
		if strings.EqualFold(n.Name, strings.TrimSpace(query)) {
			return &n, nil
		}
		candidates = append(candidates, n.Name)
	}
	return nil, &Miss{Query: query, Suggestions: FindSimilar(query, candidates, MaxSuggestions)}
}

// Creature looks up a creature type.
func (c Collection) Creature(query string) (*Creature, error) {
	key := NormalizeKey(query)
	if _, ok := c[key]; !ok {
		return nil, c.miss(query, key)
	}
	cr, err := decode[Creature](c, key)
	if err != nil {
		return nil, err
	}
	if cr.Type == "" {
		cr.Type = key
	}
	if cr.Stats == nil {
		cr.Stats = map[string]any{}
	}
	return &cr, nil
}

// Scenario looks up an adventure scenario.
func (c Collection) Scenario(query string) (*Scenario, error) {
	key := NormalizeKey(query)
	if _, ok := c[key]; !ok {
		return nil, c.miss(query, key)
	}
	s, err := decode[Scenario](c, key)
	if err != nil {
		return nil, err
	}
	if s.ID == "" {
		s.ID = key
	}
	return &s, nil
}

// ItemMiss is returned when no item matches at all. All lists every item
// name when there are no suggestions either.
type ItemMiss struct {
	Miss
	All []string
}

// Items finds items by exact key, or by substring of key or display name.
// An exact key match returns exactly one item.
func (c Collection) Items(query string) ([]Item, error) {
	key := NormalizeKey(query)
	if _, ok := c[key]; ok {
		it, err := c.item(key)
		if err != nil {
			return nil, err
		}
		return []Item{it}, nil
	}

	var matches []Item
	for _, k := range c.Keys() {
		it, err := c.item(k)
		if err != nil {
			continue
		}
		if strings.Contains(k, key) || strings.Contains(strings.ToLower(it.Name), strings.ToLower(strings.TrimSpace(query))) {
			matches = append(matches, it)
		}
	}
	if len(matches) > 0 {
		return matches, nil
	}

	miss := &ItemMiss{Miss: *c.miss(query, key)}
	if len(miss.Suggestions) == 0 {
		for _, k := range c.Keys() {
			it, err := c.item(k)
			if err != nil {
				continue
			}
			miss.All = append(miss.All, it.Name)
		}
	}
	return nil, miss
}

func (c Collection) item(key string) (Item, error) {
	it, err := decode[Item](c, key)
	if err != nil {
		return it, err
	}
	if it.ID == "" {
		it.ID = key
	}
	if it.Name == "" {
		it.Name = key
	}
	return it, nil
}
