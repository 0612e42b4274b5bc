// Package clue manages narrative collectibles: the detail view shown when a
// clue is first found, the clue board it is stored on, and paging through
// its images.
package clue

import (
	"errors"
	"fmt"

	"github.com/nathoo/witchlight/engine/inventory"
	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/types"
)

var (
	ErrUnknownClue      = errors.New("unknown clue")
	ErrAlreadyCollected = errors.New("clue already collected")
	ErrBoardFull        = errors.New("clue board is full")
)

// Lookup returns the clue definition for id.
func Lookup(defs *state.Defs, id string) (types.ClueDef, bool) {
	def, ok := defs.Clues[id]
	return def, ok
}

// IsCollected reports whether the clue was collected this session.
func IsCollected(s *types.State, id string) bool {
	return s.Clues[id]
}

// ResetAll starts a new session's clue state: nothing collected, an empty
// board, and every scene clue back at its authored location.
func ResetAll(s *types.State, defs *state.Defs) {
	clear(s.Clues)
	inventory.Clear(s.Player.ClueBoard)
	for id := range defs.Clues {
		if es, ok := s.Entities[id]; ok && es.Location != "" {
			es.Location = ""
			s.Entities[id] = es
		}
	}
}

// Inspect returns the clue for its detail view. Collected clues are not
// shown again.
func Inspect(s *types.State, defs *state.Defs, id string) (types.ClueDef, error) {
	def, ok := defs.Clues[id]
	if !ok {
		return types.ClueDef{}, fmt.Errorf("%w: %s", ErrUnknownClue, id)
	}
	if s.Clues[id] {
		return types.ClueDef{}, ErrAlreadyCollected
	}
	return def, nil
}

// Collect stores the clue in the first empty board slot, marks it collected
// and takes its scene object out of the world.
func Collect(s *types.State, defs *state.Defs, id string) (int, error) {
	if _, err := Inspect(s, defs, id); err != nil {
		return -1, err
	}
	slot, err := inventory.Add(s.Player.ClueBoard, id)
	if err != nil {
		if errors.Is(err, inventory.ErrFull) {
			return -1, ErrBoardFull
		}
		return -1, err
	}
	s.Clues[id] = true
	if _, ok := defs.Entities[id]; ok {
		state.SetEntityLocation(s, id, state.Nowhere)
	}
	return slot, nil
}

// Stored returns the clues on the board in slot order.
func Stored(s *types.State, defs *state.Defs) []types.ClueDef {
	var out []types.ClueDef
	for _, id := range inventory.Items(s.Player.ClueBoard) {
		if def, ok := defs.Clues[id]; ok {
			out = append(out, def)
		}
	}
	return out
}

// Pager steps through a clue's images. Next wraps back to the first page.
type Pager struct {
	pages []string
	index int
}

// NewPager builds a pager over the clue's main image followed by its pages.
func NewPager(def types.ClueDef) *Pager {
	var pages []string
	if def.Image != "" {
		pages = append(pages, def.Image)
	}
	for _, p := range def.Pages {
		if p != "" {
			pages = append(pages, p)
		}
	}
	return &Pager{pages: pages}
}

// Current returns the image for the current page, or "" with no pages.
func (p *Pager) Current() string {
	if len(p.pages) == 0 {
		return ""
	}
	return p.pages[p.index]
}

// Next moves to the following page, wrapping at the end.
func (p *Pager) Next() string {
	if len(p.pages) == 0 {
		return ""
	}
	p.index = (p.index + 1) % len(p.pages)
	return p.pages[p.index]
}

// Label is the "n/m" page indicator.
func (p *Pager) Label() string {
	if len(p.pages) == 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d", p.index+1, len(p.pages))
}

// IsLast reports whether the current page is the final one.
func (p *Pager) IsLast() bool {
	return p.index == len(p.pages)-1
}

// Len is the number of pages.
func (p *Pager) Len() int { return len(p.pages) }

// Reset returns to the first page.
func (p *Pager) Reset() {
	p.index = 0
}
