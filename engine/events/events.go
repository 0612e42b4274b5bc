// Package events implements single-pass event handler dispatch.
// Event handlers produce additional effects but do not recurse.
package events

import (
	"github.com/nathoo/witchlight/engine/rules"
	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/types"
)

// Event types emitted by the effects layer.
const (
	ItemTaken       = "item_taken"
	ItemDropped     = "item_dropped"
	InventoryFull   = "inventory_full"
	ItemSpawned     = "item_spawned"
	FlagChanged     = "flag_changed"
	EntityMoved     = "entity_moved"
	RoomEntered     = "room_entered"
	ClueCollected   = "clue_collected"
	DialogueStarted = "dialogue_started"
	DialogueEnded   = "dialogue_ended"
	PotionBrewed    = "potion_brewed"
	BrewFailed      = "brew_failed"
	SourceHarvested = "source_harvested"
	SourceRestored  = "source_restored"
	PuzzleSolved    = "puzzle_solved"
	SceneLoaded     = "scene_loaded"
	GameEnded       = "game_ended"
)

var known = map[string]bool{
	ItemTaken: true, ItemDropped: true, InventoryFull: true, ItemSpawned: true,
	FlagChanged: true, EntityMoved: true, RoomEntered: true, ClueCollected: true,
	DialogueStarted: true, DialogueEnded: true, PotionBrewed: true, BrewFailed: true,
	SourceHarvested: true, SourceRestored: true, PuzzleSolved: true,
	SceneLoaded: true, GameEnded: true,
}

// Known reports whether the engine emits events of type t. Content may
// also emit its own through emit_event, so an unknown type is not an error.
func Known(t string) bool { return known[t] }

// Dispatch runs handlers against the emitted events in event order, then
// handler declaration order. Effects they return are applied by the caller
// and their events are not dispatched again.
func Dispatch(evts []types.Event, s *types.State, defs *state.Defs) []types.Effect {
	var result []types.Effect
	for _, ev := range evts {
		for _, h := range defs.Handlers {
			if h.EventType != ev.Type || !dataMatches(h.Data, ev.Data) {
				continue
			}
			if !rules.EvalAllConditions(h.Conditions, s, defs) {
				continue
			}
			result = append(result, h.Effects...)
		}
	}
	return result
}

func dataMatches(want, got map[string]any) bool {
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}
