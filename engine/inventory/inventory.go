// Package inventory implements fixed-size slot lists. The backpack, the clue
// board and cauldron material slots all use it. An empty string marks an
// empty slot, and the length of a slot list never changes after New.
package inventory

import (
	"errors"
	"fmt"

	"github.com/nathoo/witchlight/types"
)

var (
	// ErrInvalidItem is returned when adding an empty item reference or an
	// item the backpack cannot show.
	ErrInvalidItem = errors.New("invalid item")
	// ErrFull is returned when no slot is empty.
	ErrFull = errors.New("no empty slot")
)

// New returns size empty slots.
func New(size int) []string {
	if size < 0 {
		size = 0
	}
	return make([]string, size)
}

// FirstEmpty returns the index of the first empty slot, or -1.
func FirstEmpty(slots []string) int {
	for i, id := range slots {
		if id == "" {
			return i
		}
	}
	return -1
}

// Add stores itemID in the first empty slot and returns its index.
func Add(slots []string, itemID string) (int, error) {
	if itemID == "" {
		return -1, ErrInvalidItem
	}
	i := FirstEmpty(slots)
	if i < 0 {
		return -1, ErrFull
	}
	slots[i] = itemID
	return i, nil
}

// Carryable checks that id names a defined item with an icon.
func Carryable(items map[string]types.ItemDef, id string) error {
	def, ok := items[id]
	switch {
	case !ok:
		return fmt.Errorf("%w: %q is not an item", ErrInvalidItem, id)
	case def.Icon == "":
		return fmt.Errorf("%w: %q has no icon", ErrInvalidItem, id)
	}
	return nil
}

// AddItem is Add for backpack items: the item must pass Carryable.
func AddItem(slots []string, items map[string]types.ItemDef, id string) (int, error) {
	if err := Carryable(items, id); err != nil {
		return -1, err
	}
	return Add(slots, id)
}

// Remove clears the first slot holding itemID.
func Remove(slots []string, itemID string) (int, bool) {
	if itemID == "" {
		return -1, false
	}
	for i, id := range slots {
		if id == itemID {
			slots[i] = ""
			return i, true
		}
	}
	return -1, false
}

// Contains reports whether any slot holds itemID.
func Contains(slots []string, itemID string) bool {
	if itemID == "" {
		return false
	}
	for _, id := range slots {
		if id == itemID {
			return true
		}
	}
	return false
}

// Count returns how many slots hold itemID.
func Count(slots []string, itemID string) int {
	n := 0
	for _, id := range slots {
		if id != "" && id == itemID {
			n++
		}
	}
	return n
}

// Free returns the number of empty slots.
func Free(slots []string) int {
	n := 0
	for _, id := range slots {
		if id == "" {
			n++
		}
	}
	return n
}

// Items returns the occupied slots in slot order.
func Items(slots []string) []string {
	items := make([]string, 0, len(slots))
	for _, id := range slots {
		if id != "" {
			items = append(items, id)
		}
	}
	return items
}

// Clear empties every slot.
func Clear(slots []string) {
	for i := range slots {
		slots[i] = ""
	}
}

// Resize returns a copy of slots with exactly size entries. Occupied slots
// beyond size are dropped.
func Resize(slots []string, size int) []string {
	out := New(size)
	copy(out, slots)
	return out
}

// Fit moves slots into a list of size entries without losing anything:
// items keep their places when they fit, otherwise they are packed into
// the first slots in order. ErrFull means there are more items than slots.
func Fit(slots []string, size int) ([]string, error) {
	items := Items(slots)
	if len(items) > size {
		return nil, fmt.Errorf("%w: %d items for %d slots", ErrFull, len(items), size)
	}
	if len(slots) <= size {
		return Resize(slots, size), nil
	}
	out := New(size)
	copy(out, items)
	return out, nil
}
