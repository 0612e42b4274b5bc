// Package resolve maps entity names from parsed intents to entity IDs.
package resolve

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nathoo/witchlight/engine/inventory"
	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/types"
)

// Result holds the resolved entity IDs for an intent.
type Result struct {
	ObjectID string
	TargetID string
}

// AmbiguityError indicates multiple entities matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("which %s? (%s)", e.Name, strings.Join(e.Candidates, ", "))
}

// NotFoundError indicates no entity matched a name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("you don't see %q here", e.Name)
}

// Resolve maps object/target name strings from an intent to entity IDs.
func Resolve(s *types.State, defs *state.Defs, intent types.Intent) (Result, error) {
	var res Result
	var err error

	if intent.Object != "" {
		if res.ObjectID, err = Name(s, defs, intent.Object); err != nil {
			return res, err
		}
	}
	if intent.Target != "" {
		if res.TargetID, err = Name(s, defs, intent.Target); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Name resolves one name. An exact ID always wins. Otherwise the name is
// matched against what the player can reach: entities in the room, the
// backpack and the clue board. Candidates are returned sorted.
func Name(s *types.State, defs *state.Defs, name string) (string, error) {
	if _, ok := defs.Entities[name]; ok {
		return name, nil
	}
	if _, ok := defs.Items[name]; ok && inventory.Contains(s.Player.Backpack, name) {
		return name, nil
	}

	query := strings.ToLower(name)
	var matches []string
	consider := func(id string) {
		if !slices.Contains(matches, id) && matchesName(s, defs, id, query) {
			matches = append(matches, id)
		}
	}

	for _, id := range state.EntitiesInRoom(s, defs, s.Player.Location) {
		consider(id)
	}
	for _, id := range inventory.Items(s.Player.Backpack) {
		consider(id)
	}
	for _, id := range inventory.Items(s.Player.ClueBoard) {
		consider(id)
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		slices.Sort(matches)
		return "", &AmbiguityError{Name: name, Candidates: matches}
	}
}

// matchesName compares case-insensitively against the display name (whole
// name or any single word of it) and the ID, with spaces read as underscores.
func matchesName(s *types.State, defs *state.Defs, id, query string) bool {
	display := strings.ToLower(state.EntityName(s, defs, id))
	if display == query || slices.Contains(strings.Fields(display), query) {
		return true
	}
	idLower := strings.ToLower(id)
	return idLower == query || idLower == strings.ReplaceAll(query, " ", "_")
}
