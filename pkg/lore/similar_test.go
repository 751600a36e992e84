package lore

import (
	"math"
	"reflect"
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"abcd", "abcd", 1},
		{"", "", 1},
		{"abc", "", 0},
		{"abcd", "bcde", 0.75},
		{"wolf", "golf", 0.75},
		{"abc", "xyz", 0},
	}
	for _, tt := range tests {
		if got := Ratio(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestScore_Substring(t *testing.T) {
	if got := Score("wolf", "dire_wolf"); got != 0.9 {
		t.Errorf("substring score = %v", got)
	}
	if got := Score("Dire_Wolf_Alpha", "dire_wolf"); got != 0.9 {
		t.Errorf("reverse substring score = %v", got)
	}
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"goblin", "dire_wolf", "wolf_pack", "skeleton", "golem"}

	got := FindSimilar("wolf", candidates, MaxSuggestions)
	// Substring hits first, then the best ratio above the cutoff.
	if !reflect.DeepEqual(got, []string{"dire_wolf", "wolf_pack", "golem"}) {
		t.Errorf("FindSimilar(wolf) = %v", got)
	}

	got = FindSimilar("goblim", candidates, MaxSuggestions)
	if len(got) == 0 || got[0] != "goblin" {
		t.Errorf("FindSimilar(goblim) = %v", got)
	}

	if got := FindSimilar("zzzz", candidates, MaxSuggestions); len(got) != 0 {
		t.Errorf("expected no suggestions, got %v", got)
	}
	if got := FindSimilar("wolf", nil, MaxSuggestions); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}
