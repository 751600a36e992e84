package actor

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/kdabb05/llmud/pkg/gameerr"
)

func TestParseDirective(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     any
		wantOp    Op
		wantPath  []string
		wantDelta int
		wantHas   bool
		wantKind  gameerr.Kind
	}{
		{name: "append", key: "inventory+", value: "lantern", wantOp: OpAppend, wantPath: []string{"inventory"}},
		{name: "remove", key: "inventory-", value: "torch", wantOp: OpRemove, wantPath: []string{"inventory"}},
		{name: "nested literal", key: "stats.strength", value: 12, wantOp: OpNestedSet, wantPath: []string{"stats", "strength"}},
		{name: "nested delta", key: "stats.hp", value: "-5", wantOp: OpNestedSet, wantPath: []string{"stats", "hp"}, wantDelta: -5, wantHas: true},
		{name: "deep path", key: "a.b.c", value: true, wantOp: OpNestedSet, wantPath: []string{"a", "b", "c"}},
		{name: "top level delta", key: "gold", value: "+7", wantOp: OpDelta, wantPath: []string{"gold"}, wantDelta: 7},
		{name: "plain assign", key: "title", value: "Knight", wantOp: OpAssign, wantPath: []string{"title"}},
		{name: "assign number", key: "gold", value: 3, wantOp: OpAssign, wantPath: []string{"gold"}},
		{name: "string not starting with sign is assign", key: "mood", value: "calm", wantOp: OpAssign, wantPath: []string{"mood"}},
		{name: "invalid top level delta", key: "gold", value: "+lots", wantKind: gameerr.KindInvalidDelta},
		{name: "bare sign", key: "gold", value: "-", wantKind: gameerr.KindInvalidDelta},
		{name: "delta out of range", key: "gold", value: "+2147483648", wantKind: gameerr.KindInvalidDelta},
		{name: "negative delta out of range", key: "stats.hp", value: "-2147483648", wantKind: gameerr.KindInvalidDelta},
		{name: "invalid nested delta", key: "stats.hp", value: "-x", wantKind: gameerr.KindInvalidDelta},
		{name: "empty key", key: "", value: 1, wantKind: gameerr.KindMalformed},
		{name: "empty field before suffix", key: "+", value: 1, wantKind: gameerr.KindMalformed},
		{name: "empty path segment", key: "stats..hp", value: 1, wantKind: gameerr.KindMalformed},
		{name: "name is immutable", key: "name", value: "Villain", wantKind: gameerr.KindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDirective(tt.key, tt.value)
			if tt.wantKind != "" {
				if err == nil {
					t.Fatalf("expected %s error, got directive %+v", tt.wantKind, d)
				}
				if got := gameerr.KindOf(err); got != tt.wantKind {
					t.Fatalf("expected kind %s, got %s (%v)", tt.wantKind, got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Op != tt.wantOp {
				t.Errorf("op = %s, want %s", d.Op, tt.wantOp)
			}
			if !reflect.DeepEqual(d.Path, tt.wantPath) {
				t.Errorf("path = %v, want %v", d.Path, tt.wantPath)
			}
			if d.Delta != tt.wantDelta {
				t.Errorf("delta = %d, want %d", d.Delta, tt.wantDelta)
			}
			if d.HasDelta != tt.wantHas {
				t.Errorf("hasDelta = %v, want %v", d.HasDelta, tt.wantHas)
			}
		})
	}
}

func TestUpdates_UnmarshalKeepsOrder(t *testing.T) {
	var u Updates
	raw := `{"zeta": 1, "inventory+": "rope", "alpha": "+2", "inventory-": "rope"}`
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	var keys []string
	for _, upd := range u {
		keys = append(keys, upd.Key)
	}
	want := []string{"zeta", "inventory+", "alpha", "inventory-"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	if v, ok := u[0].Value.(int); !ok || v != 1 {
		t.Errorf("expected numeric value normalized to int, got %#v", u[0].Value)
	}

	out, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"zeta":1,"inventory+":"rope","alpha":"+2","inventory-":"rope"}` {
		t.Errorf("unexpected marshal output %s", out)
	}
}

func TestUpdates_UnmarshalRejectsNonObject(t *testing.T) {
	var u Updates
	if err := json.Unmarshal([]byte(`["gold"]`), &u); err == nil {
		t.Fatal("expected error for array input")
	}
}

func TestParseUpdates_StopsAtFirstInvalid(t *testing.T) {
	_, err := ParseUpdates(Updates{
		{Key: "gold", Value: "+1"},
		{Key: "stats.hp", Value: "+?"},
	})
	if !errors.Is(err, gameerr.InvalidDelta) {
		t.Fatalf("expected InvalidDelta, got %v", err)
	}
}

func TestUpdatesFromMap_SortsKeys(t *testing.T) {
	u := UpdatesFromMap(map[string]any{"b": 1, "a": 2.0})
	if u[0].Key != "a" || u[1].Key != "b" {
		t.Fatalf("unexpected order %+v", u)
	}
	if _, ok := u[0].Value.(int); !ok {
		t.Errorf("expected float64 2.0 normalized to int, got %T", u[0].Value)
	}
}
