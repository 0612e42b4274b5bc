// Package crafting implements recipe matching and the cauldron session the
// player places materials into before brewing.
package crafting

import (
	"errors"
	"fmt"
	"slices"

	"github.com/nathoo/witchlight/engine/inventory"
	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/types"
)

var (
	ErrNotOpen     = errors.New("no cauldron is open")
	ErrNotCarried  = errors.New("item not carried")
	ErrSlotsFull   = errors.New("cauldron slots are full")
	ErrBadSlot     = errors.New("no such cauldron slot")
	ErrNoMaterials = errors.New("no materials in the cauldron")
	ErrNoRecipe    = errors.New("no recipe matches")
)

// Match reports whether materials satisfy the recipe. A recipe with no
// requirements never matches. Exact recipes also need the material count to
// equal the requirement count; otherwise extra materials are ignored.
func Match(recipe types.RecipeDef, materials []string) bool {
	if len(recipe.Requires) == 0 {
		return false
	}
	if recipe.Exact && len(materials) != len(recipe.Requires) {
		return false
	}
	for _, req := range recipe.Requires {
		if !slices.Contains(materials, req) {
			return false
		}
	}
	return true
}

// Find returns the first recipe in declaration order that matches.
func Find(recipes []types.RecipeDef, materials []string) (types.RecipeDef, bool) {
	for _, r := range recipes {
		if Match(r, materials) {
			return r, true
		}
	}
	return types.RecipeDef{}, false
}

// Open starts a crafting session at the given cauldron with size empty
// material slots. Any previous session is discarded.
func Open(s *types.State, cauldronID string, size int) {
	s.Cauldron = types.CauldronState{
		Open:       true,
		CauldronID: cauldronID,
		Slots:      inventory.New(size),
	}
}

// Close ends the session. Placed materials are cleared.
func Close(s *types.State) {
	s.Cauldron = types.CauldronState{}
}

// IsOpen reports whether a crafting session is active.
func IsOpen(s *types.State) bool {
	return s.Cauldron.Open
}

// Place copies a carried item into the first empty material slot. The item
// stays in the backpack; an item can be placed as many times as it is carried.
func Place(s *types.State, itemID string) (int, error) {
	if !s.Cauldron.Open {
		return -1, ErrNotOpen
	}
	carried := inventory.Count(s.Player.Backpack, itemID)
	if carried == 0 || inventory.Count(s.Cauldron.Slots, itemID) >= carried {
		return -1, fmt.Errorf("%w: %s", ErrNotCarried, itemID)
	}
	i, err := inventory.Add(s.Cauldron.Slots, itemID)
	if errors.Is(err, inventory.ErrFull) {
		return -1, ErrSlotsFull
	}
	return i, err
}

// ClearSlot empties one material slot.
func ClearSlot(s *types.State, slot int) error {
	if !s.Cauldron.Open {
		return ErrNotOpen
	}
	if slot < 0 || slot >= len(s.Cauldron.Slots) {
		return fmt.Errorf("%w: %d", ErrBadSlot, slot)
	}
	s.Cauldron.Slots[slot] = ""
	return nil
}

// ClearAll empties every material slot.
func ClearAll(s *types.State) {
	inventory.Clear(s.Cauldron.Slots)
}

// Materials returns the placed materials in slot order.
func Materials(s *types.State) []string {
	return inventory.Items(s.Cauldron.Slots)
}

// Brew resolves the placed materials against the recipe list.
//
// With no materials nothing changes. When no recipe matches the slots are
// cleared and the cauldron stays open. On success the session closes and,
// for consuming recipes, one of each material leaves the backpack. Placing
// the result is left to the caller.
func Brew(s *types.State, defs *state.Defs) (types.RecipeDef, error) {
	if !s.Cauldron.Open {
		return types.RecipeDef{}, ErrNotOpen
	}
	materials := Materials(s)
	if len(materials) == 0 {
		return types.RecipeDef{}, ErrNoMaterials
	}
	recipe, ok := Find(defs.Recipes, materials)
	if !ok {
		ClearAll(s)
		return types.RecipeDef{}, ErrNoRecipe
	}
	if recipe.Consume {
		for _, id := range materials {
			inventory.Remove(s.Player.Backpack, id)
		}
	}
	Close(s)
	return recipe, nil
}
