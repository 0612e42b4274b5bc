package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/witchlight/engine/inventory"
	"github.com/nathoo/witchlight/engine/state"
)

// roomDisplayName derives a human-readable name from a room ID.
// "herb_garden" -> "Herb Garden".
func roomDisplayName(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// renderStatusBar shows the room and its exits on the left and the
// backpack, clue board and turn on the right. Backpack contents are
// listed by name when they fit.
func (m Model) renderStatusBar() string {
	s := m.engine.State
	defs := m.engine.Defs

	dirs := make([]string, 0)
	for dir := range state.RoomExits(s, defs, s.Player.Location) {
		dirs = append(dirs, dir)
	}
	slices.Sort(dirs)

	left := fmt.Sprintf(" %s | Exits: %s", roomDisplayName(s.Player.Location), strings.Join(dirs, ","))
	if s.Cauldron.Open {
		left += " | Cauldron: " + strings.Join(inventory.Items(s.Cauldron.Slots), ",")
	}

	packed := inventory.Items(s.Player.Backpack)
	pack := fmt.Sprintf("Pack %d/%d", len(packed), len(s.Player.Backpack))
	clues := fmt.Sprintf("Clues %d/%d", len(inventory.Items(s.Player.ClueBoard)), len(s.Player.ClueBoard))
	right := fmt.Sprintf("%s | %s | T:%d ", pack, clues, s.TurnCount)

	if len(packed) > 0 {
		names := make([]string, len(packed))
		for i, id := range packed {
			names[i] = state.EntityName(s, defs, id)
		}
		candidate := fmt.Sprintf("%s: %s | %s | T:%d ", pack, strings.Join(names, ", "), clues, s.TurnCount)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		}
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return styleStatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
