// Package harvest handles world objects that yield items when taken:
// regrowing plants and one-shot pickups.
package harvest

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nathoo/witchlight/engine/inventory"
	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/types"
)

var (
	ErrUnknownSource = errors.New("unknown source")
	ErrDepleted      = errors.New("source already harvested")
	ErrInventoryFull = errors.New("backpack is full")
)

// Harvest takes the source's drop into the backpack. A full backpack leaves
// the source untouched so the player can come back for it.
func Harvest(s *types.State, defs *state.Defs, sourceID string, turn int) (string, error) {
	def, ok := defs.Sources[sourceID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSource, sourceID)
	}
	st := s.Sources[sourceID]
	if st.Collected {
		return "", ErrDepleted
	}

	if _, err := inventory.AddItem(s.Player.Backpack, defs.Items, def.Drop); err != nil {
		if errors.Is(err, inventory.ErrFull) {
			return "", ErrInventoryFull
		}
		return "", fmt.Errorf("harvest %s: %w", sourceID, err)
	}

	st.Collected = true
	st.TakenAt = turn
	if def.Regenerate > 0 {
		st.RegenAt = turn + def.Regenerate
	}
	s.Sources[sourceID] = st

	if def.Vanish {
		state.SetEntityLocation(s, sourceID, state.Nowhere)
	}
	return def.Drop, nil
}

// Regenerate restores every collected source whose timer has run out and
// returns their IDs in sorted order.
func Regenerate(s *types.State, defs *state.Defs, turn int) []string {
	var restored []string
	for id, st := range s.Sources {
		if !st.Collected {
			continue
		}
		def, ok := defs.Sources[id]
		if !ok || def.Regenerate <= 0 || turn < st.RegenAt {
			continue
		}
		Reset(s, id)
		restored = append(restored, id)
	}
	sort.Strings(restored)
	return restored
}

// Progress reports how far a source is through regrowing, from 0 to 1.
// Available sources report 1; sources that never regrow report 0 once taken.
func Progress(s *types.State, defs *state.Defs, sourceID string, turn int) float64 {
	st := s.Sources[sourceID]
	if !st.Collected {
		return 1
	}
	def := defs.Sources[sourceID]
	if def.Regenerate <= 0 {
		return 0
	}
	p := float64(turn-st.TakenAt) / float64(def.Regenerate)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Reset makes a source available again immediately.
func Reset(s *types.State, sourceID string) {
	delete(s.Sources, sourceID)
	if es, ok := s.Entities[sourceID]; ok && es.Location == state.Nowhere {
		es.Location = ""
		s.Entities[sourceID] = es
	}
}
