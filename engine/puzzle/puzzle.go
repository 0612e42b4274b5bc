// Package puzzle implements clock locks: the player sets a time and the
// lock opens when it matches.
package puzzle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/types"
)

var (
	ErrUnknownPuzzle = errors.New("unknown puzzle")
	ErrSolved        = errors.New("puzzle already solved")
	ErrBadInput      = errors.New("time must look like HH:MM")
)

// ParseTime accepts "HH:MM", "HH MM" or "HH.MM" on a 24 hour dial.
func ParseTime(input string) (hour, minute int, err error) {
	f := strings.FieldsFunc(strings.TrimSpace(input), func(r rune) bool {
		return r == ':' || r == '.' || r == ' '
	})
	if len(f) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadInput, input)
	}
	hour, err = strconv.Atoi(f[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadInput, input)
	}
	minute, err = strconv.Atoi(f[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadInput, input)
	}
	return hour, minute, nil
}

// Matches compares the full 24 hour time: 3:45 does not open a lock set
// for 15:45.
func Matches(def types.PuzzleDef, hour, minute int) bool {
	return hour == def.Hour && minute == def.Minute
}

// Attempt tries input against the puzzle. A correct time marks it solved
// and returns the reward effects for the caller to apply.
func Attempt(s *types.State, defs *state.Defs, id, input string) (bool, []types.Effect, error) {
	def, ok := defs.Puzzles[id]
	if !ok {
		return false, nil, fmt.Errorf("%w: %s", ErrUnknownPuzzle, id)
	}
	if s.Puzzles[id] {
		return false, nil, ErrSolved
	}
	hour, minute, err := ParseTime(input)
	if err != nil {
		return false, nil, err
	}
	if !Matches(def, hour, minute) {
		return false, nil, nil
	}
	s.Puzzles[id] = true
	return true, def.Reward, nil
}

// IsSolved reports whether the puzzle has been solved.
func IsSolved(s *types.State, id string) bool {
	return s.Puzzles[id]
}
