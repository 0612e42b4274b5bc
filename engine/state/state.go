// Package state manages the mutable game state and property lookups
// with override layering (runtime state overrides base definitions).
package state

import (
	"strings"

	"github.com/google/uuid"

	"github.com/nathoo/witchlight/engine/inventory"
	"github.com/nathoo/witchlight/types"
)

// Slot counts used when the game definition leaves them unset.
const (
	DefaultBackpackSlots = 12
	DefaultClueSlots     = 9
	DefaultCauldronSlots = 3
)

// Nowhere is the location override for entities removed from the world.
// It is non-empty so it takes precedence over the base location.
const Nowhere = " "

// Defs holds the immutable game definitions loaded from Lua.
type Defs struct {
	Game        types.GameDef
	Rooms       map[string]types.RoomDef
	Entities    map[string]types.EntityDef
	Items       map[string]types.ItemDef
	Recipes     []types.RecipeDef // declaration order; first match wins
	Clues       map[string]types.ClueDef
	ClueOrder   []string
	Dialogues   map[string]types.DialogueDef
	Sources     map[string]types.SourceDef
	Puzzles     map[string]types.PuzzleDef
	GlobalRules []types.RuleDef
	Handlers    []types.EventHandler
}

// BackpackSlots returns the backpack size for the game.
func (d *Defs) BackpackSlots() int {
	if d.Game.BackpackSlots > 0 {
		return d.Game.BackpackSlots
	}
	return DefaultBackpackSlots
}

// ClueSlots returns the clue board size for the game.
func (d *Defs) ClueSlots() int {
	if d.Game.ClueSlots > 0 {
		return d.Game.ClueSlots
	}
	return DefaultClueSlots
}

// CauldronSlots returns the number of material slots in a cauldron.
func (d *Defs) CauldronSlots() int {
	if d.Game.CauldronSlots > 0 {
		return d.Game.CauldronSlots
	}
	return DefaultCauldronSlots
}

// NewState creates a fresh game state from definitions.
func NewState(defs *Defs) *types.State {
	return &types.State{
		SessionID: uuid.NewString(),
		Player: types.Player{
			Location:  defs.Game.Start,
			Backpack:  inventory.New(defs.BackpackSlots()),
			ClueBoard: inventory.New(defs.ClueSlots()),
		},
		Entities:   map[string]types.EntityState{},
		Flags:      map[string]bool{},
		Counters:   map[string]int{},
		Sources:    map[string]types.SourceState{},
		Clues:      map[string]bool{},
		Puzzles:    map[string]bool{},
		CommandLog: []string{},
	}
}

// GetFlag returns the value of a flag. Unset flags return false.
func GetFlag(s *types.State, name string) bool {
	return s.Flags[name]
}

// GetCounter returns the value of a counter. Unset counters return 0.
func GetCounter(s *types.State, name string) int {
	return s.Counters[name]
}

// HasItem returns true if the player carries the given item in the backpack.
func HasItem(s *types.State, itemID string) bool {
	return inventory.Contains(s.Player.Backpack, itemID)
}

// HasClue returns true if the clue is stored on the clue board.
func HasClue(s *types.State, clueID string) bool {
	return inventory.Contains(s.Player.ClueBoard, clueID)
}

// PlayerLocation returns the player's current room ID.
func PlayerLocation(s *types.State) string {
	return s.Player.Location
}

// SourceReady reports whether a source can be harvested right now.
func SourceReady(s *types.State, sourceID string) bool {
	return !s.Sources[sourceID].Collected
}

// GetEntityProp returns a property value for an entity, checking
// runtime state overrides first, then falling back to the base definition.
func GetEntityProp(s *types.State, defs *Defs, entityID string, prop string) (any, bool) {
	if es, ok := s.Entities[entityID]; ok {
		if v, ok := es.Props[prop]; ok {
			return v, true
		}
	}
	if def, ok := defs.Entities[entityID]; ok {
		if v, ok := def.Props[prop]; ok {
			return v, true
		}
	}
	return nil, false
}

// StringProp is GetEntityProp narrowed to string values.
func StringProp(s *types.State, defs *Defs, entityID, prop string) string {
	v, _ := GetEntityProp(s, defs, entityID, prop)
	str, _ := v.(string)
	return str
}

// EntityName returns the display name of an entity, or its ID.
func EntityName(s *types.State, defs *Defs, entityID string) string {
	if name := StringProp(s, defs, entityID, "name"); name != "" {
		return name
	}
	if item, ok := defs.Items[entityID]; ok && item.Name != "" {
		return item.Name
	}
	return entityID
}

// EntityLocation returns the effective location of an entity, checking
// the runtime state override first, then the base definition.
func EntityLocation(s *types.State, defs *Defs, entityID string) string {
	if es, ok := s.Entities[entityID]; ok && es.Location != "" {
		return es.Location
	}
	if def, ok := defs.Entities[entityID]; ok {
		if loc, ok := def.Props["location"].(string); ok {
			return loc
		}
	}
	return ""
}

// SetEntityLocation records a runtime location override.
func SetEntityLocation(s *types.State, entityID, room string) {
	es := s.Entities[entityID]
	es.Location = room
	s.Entities[entityID] = es
}

// SetEntityProp records a runtime property override.
func SetEntityProp(s *types.State, entityID, prop string, value any) {
	es := s.Entities[entityID]
	if es.Props == nil {
		es.Props = map[string]any{}
	}
	es.Props[prop] = value
	s.Entities[entityID] = es
}

// EntitiesInRoom returns the IDs of all entities whose effective location
// matches the given room ID.
func EntitiesInRoom(s *types.State, defs *Defs, roomID string) []string {
	var result []string
	for id := range defs.Entities {
		if EntityLocation(s, defs, id) == roomID {
			result = append(result, id)
		}
	}
	return result
}

// RoomExits returns the effective exits for a room. Runtime exit overrides
// (from open_exit/close_exit effects) are layered on top of base exits.
func RoomExits(s *types.State, defs *Defs, roomID string) map[string]string {
	room, ok := defs.Rooms[roomID]
	if !ok {
		return nil
	}
	exits := make(map[string]string, len(room.Exits))
	for dir, target := range room.Exits {
		exits[dir] = target
	}
	// Overrides live as "exit:<direction>" props on the "room:<id>" entity.
	if es, ok := s.Entities["room:"+roomID]; ok {
		for key, val := range es.Props {
			dir, found := strings.CutPrefix(key, "exit:")
			if !found || dir == "" {
				continue
			}
			if target, ok := val.(string); ok {
				if target == "" {
					delete(exits, dir)
				} else {
					exits[dir] = target
				}
			}
		}
	}
	return exits
}
