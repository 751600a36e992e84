// Package dice parses and rolls standard dice notation such as "2d6+3".
package dice

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Limits on a single roll.
const (
	MinCount = 1
	MaxCount = 100
	MinSides = 2
	MaxSides = 1000
)

// ErrInvalidNotation indicates the notation could not be parsed.
var ErrInvalidNotation = errors.New("invalid dice notation")

// ErrInvalidCount indicates the number of dice is outside MinCount..MaxCount.
var ErrInvalidCount = fmt.Errorf("dice count must be between %d and %d", MinCount, MaxCount)

// ErrInvalidSides indicates the die size is outside MinSides..MaxSides.
var ErrInvalidSides = fmt.Errorf("dice sides must be between %d and %d", MinSides, MaxSides)

// Spec is a parsed roll: Count dice of Sides sides plus Modifier.
type Spec struct {
	Count    int
	Sides    int
	Modifier int
}

func (s Spec) String() string {
	switch {
	case s.Modifier > 0:
		return fmt.Sprintf("%dd%d+%d", s.Count, s.Sides, s.Modifier)
	case s.Modifier < 0:
		return fmt.Sprintf("%dd%d%d", s.Count, s.Sides, s.Modifier)
	default:
		return fmt.Sprintf("%dd%d", s.Count, s.Sides)
	}
}

// Result is the outcome of a roll.
type Result struct {
	Notation string `json:"notation"`
	Rolls    []int  `json:"rolls"`
	Modifier int    `json:"modifier"`
	Total    int    `json:"total"`
}

var notationPattern = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)

// Parse reads notation like "d20", "3d6" or "1d8-1". Case and spaces are ignored.
func Parse(notation string) (Spec, error) {
	cleaned := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(notation), " ", ""))
	m := notationPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return Spec{}, fmt.Errorf("%w: %q", ErrInvalidNotation, notation)
	}

	spec := Spec{Count: 1}
	var err error
	if m[1] != "" {
		if spec.Count, err = strconv.Atoi(m[1]); err != nil {
			return Spec{}, fmt.Errorf("%w: %q", ErrInvalidNotation, notation)
		}
	}
	if spec.Sides, err = strconv.Atoi(m[2]); err != nil {
		return Spec{}, fmt.Errorf("%w: %q", ErrInvalidNotation, notation)
	}
	if m[3] != "" {
		if spec.Modifier, err = strconv.Atoi(m[3]); err != nil {
			return Spec{}, fmt.Errorf("%w: %q", ErrInvalidNotation, notation)
		}
	}

	if spec.Count < MinCount || spec.Count > MaxCount {
		return Spec{}, ErrInvalidCount
	}
	if spec.Sides < MinSides || spec.Sides > MaxSides {
		return Spec{}, ErrInvalidSides
	}
	return spec, nil
}

// Roller rolls dice from its own random source. It is safe for concurrent use.
type Roller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRoller returns a Roller seeded from the runtime's random source.
func NewRoller() *Roller {
	return &Roller{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededRoller returns a Roller with a fixed seed, for reproducible rolls.
func NewSeededRoller(seed uint64) *Roller {
	return &Roller{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Roll rolls spec.
func (r *Roller) Roll(spec Spec) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	rolls := make([]int, spec.Count)
	total := spec.Modifier
	for i := range rolls {
		rolls[i] = r.rng.IntN(spec.Sides) + 1
		total += rolls[i]
	}
	return Result{
		Notation: spec.String(),
		Rolls:    rolls,
		Modifier: spec.Modifier,
		Total:    total,
	}
}

// RollNotation parses and rolls notation.
func (r *Roller) RollNotation(notation string) (Result, error) {
	spec, err := Parse(notation)
	if err != nil {
		return Result{}, err
	}
	res := r.Roll(spec)
	res.Notation = strings.TrimSpace(notation)
	return res, nil
}
