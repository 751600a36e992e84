package actor

import (
	"fmt"
	"strings"

	"github.com/kdabb05/llmud/pkg/gameerr"
)

// Update parses updates and applies them to a copy of s.
// See Apply for the batch semantics.
func (s Sheet) Update(updates Updates) (Sheet, error) {
	directives, err := ParseUpdates(updates)
	if err != nil {
		return nil, err
	}
	return s.Apply(directives)
}

// Apply runs directives in order against a deep copy of s and returns the
// result. The first failing directive aborts the batch and the copy is
// discarded, so s is never modified. After every directive succeeds, hp is
// clamped to max_hp.
func (s Sheet) Apply(directives []Directive) (Sheet, error) {
	out := s.Clone()
	if out == nil {
		out = Sheet{}
	}
	for _, d := range directives {
		if err := out.apply(d); err != nil {
			return nil, err
		}
	}
	out.ClampHP()
	return out, nil
}

func (s Sheet) apply(d Directive) error {
	switch d.Op {
	case OpAppend:
		return s.appendItem(d.Field(), d.Value)
	case OpRemove:
		return s.removeItem(d.Field(), d.Value)
	case OpNestedSet:
		return s.setNested(d)
	case OpDelta:
		return s.addToField(d.Field(), d.Delta)
	case OpAssign:
		return s.assign(d.Field(), d.Value)
	default:
		return gameerr.Newf(gameerr.KindMalformed, "Unknown update operation %s", d.Op)
	}
}

func (s Sheet) appendItem(field string, value any) error {
	current, exists := s[field]
	if !exists {
		s[field] = []any{cloneValue(value)}
		return nil
	}
	list, ok := current.([]any)
	if !ok {
		return gameerr.New(gameerr.KindTypeMismatch,
			fmt.Sprintf("Cannot append to '%s'", field),
			fmt.Sprintf("'%s' is a %s, not a list", field, typeName(current)))
	}
	s[field] = append(list, cloneValue(value))
	return nil
}

func (s Sheet) removeItem(field string, value any) error {
	current, exists := s[field]
	if !exists {
		return gameerr.New(gameerr.KindNotFound,
			fmt.Sprintf("Field '%s' not found", field),
			fmt.Sprintf("Use '%s+' to create the list first", field))
	}
	list, ok := current.([]any)
	if !ok {
		return gameerr.New(gameerr.KindTypeMismatch,
			fmt.Sprintf("Cannot remove from '%s'", field),
			fmt.Sprintf("'%s' is a %s, not a list", field, typeName(current)))
	}
	for i, item := range list {
		if valuesEqual(item, value) {
			out := make([]any, 0, len(list)-1)
			out = append(out, list[:i]...)
			s[field] = append(out, list[i+1:]...)
			return nil
		}
	}
	return gameerr.New(gameerr.KindValueNotFound,
		fmt.Sprintf("'%v' not found in %s", value, field),
		fmt.Sprintf("Current items: %s", describeItems(list)))
}

func (s Sheet) setNested(d Directive) error {
	target := map[string]any(s)
	parents, leaf := d.Path[:len(d.Path)-1], d.Path[len(d.Path)-1]
	for i, part := range parents {
		next, exists := target[part]
		if !exists {
			child := map[string]any{}
			target[part] = child
			target = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			path := strings.Join(d.Path[:i+1], ".")
			return gameerr.New(gameerr.KindTypeMismatch,
				fmt.Sprintf("Cannot set '%s'", d.Key),
				fmt.Sprintf("'%s' is a %s, not an object", path, typeName(next)))
		}
		target = child
	}

	if !d.HasDelta {
		target[leaf] = cloneValue(d.Value)
		return nil
	}
	if deltaOverflows(target[leaf], d.Delta) {
		return deltaOutOfRange(d.Key, d.Delta)
	}
	updated, ok := addDelta(target[leaf], d.Delta)
	if !ok {
		return gameerr.New(gameerr.KindTypeMismatch,
			fmt.Sprintf("Cannot apply delta to '%s'", d.Key),
			fmt.Sprintf("'%s' is a %s, not a number", d.Key, typeName(target[leaf])))
	}
	target[leaf] = updated
	return nil
}

func (s Sheet) addToField(field string, delta int) error {
	current := s[field]
	if deltaOverflows(current, delta) {
		return deltaOutOfRange(field, delta)
	}
	updated, ok := addDelta(current, delta)
	if !ok {
		return gameerr.New(gameerr.KindTypeMismatch,
			fmt.Sprintf("Cannot apply delta to '%s'", field),
			fmt.Sprintf("'%s' is a %s, not a number", field, typeName(current)))
	}
	if field == FieldGold {
		if n, _ := numberValue(updated); n < 0 {
			have, _ := numberValue(current)
			return gameerr.New(gameerr.KindInsufficientFunds,
				fmt.Sprintf("Insufficient gold: have %v, need %d", formatNumber(have), -delta),
				fmt.Sprintf("Current gold: %v", formatNumber(have)))
		}
	}
	s[field] = updated
	return nil
}

func (s Sheet) assign(field string, value any) error {
	if field == FieldGold {
		if n, ok := numberValue(value); ok && n < 0 {
			return gameerr.New(gameerr.KindInsufficientFunds,
				"Gold cannot be negative",
				fmt.Sprintf("Current gold: %d", s.Gold()))
		}
	}
	s[field] = cloneValue(value)
	return nil
}

func deltaOutOfRange(key string, delta int) error {
	return gameerr.New(gameerr.KindInvalidDelta,
		fmt.Sprintf("Delta %+d for '%s' is out of range", delta, key),
		"Use a smaller delta; the result must fit in a 64-bit integer")
}

func formatNumber(f float64) any {
	return normalizeFloat(f)
}
