package actor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/kdabb05/llmud/pkg/gameerr"
)

// Op is the kind of mutation a directive performs.
type Op int

const (
	// OpAssign replaces a top-level field: "field": value
	OpAssign Op = iota
	// OpAppend appends to a list: "field+": value
	OpAppend
	// OpRemove removes the first occurrence from a list: "field-": value
	OpRemove
	// OpNestedSet sets or adjusts a nested leaf: "a.b.c": value or "a.b": "+N"
	OpNestedSet
	// OpDelta adjusts a top-level number: "field": "+N"
	OpDelta
)

func (o Op) String() string {
	switch o {
	case OpAssign:
		return "assign"
	case OpAppend:
		return "append"
	case OpRemove:
		return "remove"
	case OpNestedSet:
		return "nested_set"
	case OpDelta:
		return "delta"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Directive is one classified update.
type Directive struct {
	Op  Op
	Key string
	// Path is the field path. It has one element for every op except OpNestedSet.
	Path  []string
	Value any
	// Delta is set for OpDelta, and for OpNestedSet when HasDelta is true.
	Delta    int
	HasDelta bool
}

// Field returns the top-level field the directive touches.
func (d Directive) Field() string {
	return d.Path[0]
}

// Update is a raw key/value pair from an update request.
type Update struct {
	Key   string
	Value any
}

// Updates is an ordered set of update pairs. It decodes from a JSON object
// keeping the object's key order.
type Updates []Update

// UpdatesFromMap builds Updates from a map in sorted key order.
func UpdatesFromMap(m map[string]any) Updates {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(Updates, 0, len(keys))
	for _, k := range keys {
		out = append(out, Update{Key: k, Value: Normalize(m[k])})
	}
	return out
}

func (u *Updates) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read updates: %w", err)
	}
	if tok == nil {
		*u = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("updates must be a JSON object")
	}

	var out Updates
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to read update key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected update key %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("failed to read value for %q: %w", key, err)
		}
		out = append(out, Update{Key: key, Value: Normalize(value)})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to read updates: %w", err)
	}
	*u = out
	return nil
}

func (u Updates) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, upd := range u {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(upd.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(upd.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseDirective classifies one raw update key and value.
func ParseDirective(key string, value any) (Directive, error) {
	if key == "" {
		return Directive{}, gameerr.New(gameerr.KindMalformed, "Empty update key", "Use a field name such as 'gold' or 'inventory+'")
	}
	value = Normalize(value)

	var d Directive
	switch {
	case strings.HasSuffix(key, "+"):
		d = Directive{Op: OpAppend, Key: key, Path: []string{strings.TrimSuffix(key, "+")}, Value: value}
	case strings.HasSuffix(key, "-"):
		d = Directive{Op: OpRemove, Key: key, Path: []string{strings.TrimSuffix(key, "-")}, Value: value}
	case strings.Contains(key, "."):
		d = Directive{Op: OpNestedSet, Key: key, Path: strings.Split(key, "."), Value: value}
		delta, ok, err := parseDelta(key, value)
		if err != nil {
			return Directive{}, err
		}
		d.Delta, d.HasDelta = delta, ok
	default:
		d = Directive{Op: OpAssign, Key: key, Path: []string{key}, Value: value}
		delta, ok, err := parseDelta(key, value)
		if err != nil {
			return Directive{}, err
		}
		if ok {
			d.Op, d.Delta = OpDelta, delta
		}
	}

	for _, part := range d.Path {
		if part == "" {
			return Directive{}, gameerr.New(gameerr.KindMalformed,
				fmt.Sprintf("Invalid update key '%s'", key),
				"Field names and path segments must not be empty")
		}
	}
	if d.Field() == FieldName {
		return Directive{}, gameerr.New(gameerr.KindMalformed,
			"Character name cannot be changed",
			"Create a new session to play a different character")
	}
	return d, nil
}

// ParseUpdates classifies every update, failing on the first invalid one.
func ParseUpdates(updates Updates) ([]Directive, error) {
	directives := make([]Directive, 0, len(updates))
	for _, u := range updates {
		d, err := ParseDirective(u.Key, u.Value)
		if err != nil {
			return nil, err
		}
		directives = append(directives, d)
	}
	return directives, nil
}

// parseDelta reports whether value is a signed-integer delta string ("+N" or "-N").
func parseDelta(key string, value any) (int, bool, error) {
	s, ok := value.(string)
	if !ok || s == "" || (s[0] != '+' && s[0] != '-') {
		return 0, false, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, gameerr.New(gameerr.KindInvalidDelta,
			fmt.Sprintf("Invalid delta '%s' for '%s'", s, key),
			"Use a signed integer such as '+5' or '-3'")
	}
	if n > MaxDelta || n < -MaxDelta {
		return 0, false, gameerr.New(gameerr.KindInvalidDelta,
			fmt.Sprintf("Delta '%s' for '%s' is out of range", s, key),
			fmt.Sprintf("Deltas range from -%d to +%d", MaxDelta, MaxDelta))
	}
	return n, true, nil
}

// MaxDelta is the largest magnitude a delta directive may carry.
const MaxDelta = math.MaxInt32
