// Package effects implements centralized state mutation via the Apply function.
// Every effect type is one atomic operation. No logic in effects.
package effects

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nathoo/witchlight/engine/clue"
	"github.com/nathoo/witchlight/engine/events"
	"github.com/nathoo/witchlight/engine/inventory"
	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/types"
)

// Player-facing messages for refused effects.
const (
	MsgBackpackFull = "Your backpack is full."
	MsgBoardFull    = "There is no room left on your clue board."
	MsgCannotCarry  = "You can't carry that."
)

// Context carries the resolved intent for template interpolation.
type Context struct {
	Verb     string
	ObjectID string
	TargetID string
	Log      *slog.Logger
}

func (c Context) logger() *slog.Logger {
	if c.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Log
}

// Apply applies effects in order, mutating the state. It returns the
// events emitted and the output text collected. A "stop" effect ends the
// list early.
func Apply(s *types.State, defs *state.Defs, effs []types.Effect, ctx Context) ([]types.Event, []string) {
	var evts []types.Event
	var output []string
	emit := func(typ string, data map[string]any) {
		evts = append(evts, types.Event{Type: typ, Data: data})
	}
	log := ctx.logger()

	for _, eff := range effs {
		p := eff.Params
		switch eff.Type {
		case "say":
			output = append(output, interpolate(str(p, "text"), s, defs, ctx))

		case "give_item":
			item := resolveTemplate(str(p, "item"), ctx)
			slot, err := inventory.AddItem(s.Player.Backpack, defs.Items, item)
			if err != nil {
				log.Warn("give_item refused", "item", item, "error", err)
				switch {
				case errors.Is(err, inventory.ErrFull):
					output = append(output, MsgBackpackFull)
					emit(events.InventoryFull, map[string]any{"item": item})
				case errors.Is(err, inventory.ErrInvalidItem):
					output = append(output, MsgCannotCarry)
				}
				continue
			}
			state.SetEntityLocation(s, item, state.Nowhere)
			emit(events.ItemTaken, map[string]any{"item": item, "slot": slot})

		case "remove_item":
			item := resolveTemplate(str(p, "item"), ctx)
			if _, ok := inventory.Remove(s.Player.Backpack, item); ok {
				emit(events.ItemDropped, map[string]any{"item": item})
			}

		case "spawn_item":
			item := resolveTemplate(str(p, "item"), ctx)
			room := str(p, "room")
			if room == "" {
				room = s.Player.Location
			}
			state.SetEntityLocation(s, item, room)
			emit(events.ItemSpawned, map[string]any{"item": item, "room": room})

		case "collect_clue":
			id := resolveTemplate(str(p, "clue"), ctx)
			slot, err := clue.Collect(s, defs, id)
			switch {
			case errors.Is(err, clue.ErrBoardFull):
				output = append(output, MsgBoardFull)
			case err != nil:
				log.Debug("collect_clue skipped", "clue", id, "error", err)
			default:
				emit(events.ClueCollected, map[string]any{"clue": id, "slot": slot})
			}

		case "set_flag":
			flag := str(p, "flag")
			value, _ := p["value"].(bool)
			s.Flags[flag] = value
			emit(events.FlagChanged, map[string]any{"flag": flag, "value": value})

		case "inc_counter":
			s.Counters[str(p, "counter")] += toInt(p["amount"])

		case "set_counter":
			s.Counters[str(p, "counter")] = toInt(p["value"])

		case "set_prop":
			state.SetEntityProp(s, resolveTemplate(str(p, "entity"), ctx), str(p, "prop"), p["value"])

		case "move_entity":
			entity := resolveTemplate(str(p, "entity"), ctx)
			room := str(p, "room")
			state.SetEntityLocation(s, entity, room)
			emit(events.EntityMoved, map[string]any{"entity": entity, "room": room})

		case "move_player":
			evts = append(evts, enterRoom(s, defs, str(p, "room"))...)

		case "load_scene":
			room := str(p, "room")
			emit(events.SceneLoaded, map[string]any{"room": room})
			evts = append(evts, enterRoom(s, defs, room)...)

		case "open_exit":
			state.SetEntityProp(s, "room:"+str(p, "room"), "exit:"+str(p, "direction"), str(p, "target"))

		case "close_exit":
			state.SetEntityProp(s, "room:"+str(p, "room"), "exit:"+str(p, "direction"), "")

		case "emit_event":
			data := map[string]any{}
			if d, ok := p["data"].(map[string]any); ok {
				data = d
			}
			emit(str(p, "event"), data)

		case "start_dialogue":
			id := str(p, "dialogue")
			if _, ok := defs.Dialogues[id]; !ok {
				log.Warn("start_dialogue: unknown dialogue", "dialogue", id)
				continue
			}
			s.Dialogue = id
			s.DialogLine = 0
			emit(events.DialogueStarted, map[string]any{"dialogue": id})

		case "end_game":
			if text := str(p, "text"); text != "" {
				output = append(output, interpolate(text, s, defs, ctx))
			}
			s.Flags["game_over"] = true
			emit(events.GameEnded, map[string]any{"room": s.Player.Location})

		case "stop":
			return evts, output

		default:
			log.Debug("unknown effect ignored", "type", eff.Type)
		}
	}

	return evts, output
}

// enterRoom moves the player. Ending rooms finish the game.
func enterRoom(s *types.State, defs *state.Defs, room string) []types.Event {
	s.Player.Location = room
	evts := []types.Event{{Type: events.RoomEntered, Data: map[string]any{"room": room}}}
	if defs.Rooms[room].Ending {
		s.Flags["game_over"] = true
		evts = append(evts, types.Event{Type: events.GameEnded, Data: map[string]any{"room": room}})
	}
	return evts
}

// interpolate replaces template variables in text.
func interpolate(text string, s *types.State, defs *state.Defs, ctx Context) string {
	if !strings.Contains(text, "{") {
		return text
	}
	r := strings.NewReplacer(
		"{verb}", ctx.Verb,
		"{object}", ctx.ObjectID,
		"{target}", ctx.TargetID,
		"{player.location}", s.Player.Location,
	)
	text = r.Replace(text)

	if strings.Contains(text, "{player.inventory}") {
		text = strings.ReplaceAll(text, "{player.inventory}", FormatNames(s, defs, inventory.Items(s.Player.Backpack), "nothing"))
	}
	if strings.Contains(text, "{room.description}") {
		text = strings.ReplaceAll(text, "{room.description}", defs.Rooms[s.Player.Location].Description)
	}

	text = replaceEntityProp(text, "{object.name}", ctx.ObjectID, "name", s, defs)
	text = replaceEntityProp(text, "{object.description}", ctx.ObjectID, "description", s, defs)
	text = replaceEntityProp(text, "{target.name}", ctx.TargetID, "name", s, defs)
	return text
}

func replaceEntityProp(text, placeholder, entityID, prop string, s *types.State, defs *state.Defs) string {
	if !strings.Contains(text, placeholder) {
		return text
	}
	val := ""
	if entityID != "" {
		if prop == "name" {
			val = state.EntityName(s, defs, entityID)
		} else if v, ok := state.GetEntityProp(s, defs, entityID, prop); ok {
			val = fmt.Sprintf("%v", v)
		}
	}
	return strings.ReplaceAll(text, placeholder, val)
}

// resolveTemplate handles {object} and {target} in effect params like GiveItem("{object}").
func resolveTemplate(v string, ctx Context) string {
	v = strings.ReplaceAll(v, "{object}", ctx.ObjectID)
	return strings.ReplaceAll(v, "{target}", ctx.TargetID)
}

// FormatNames joins display names with commas, or returns empty when
// there are no IDs.
func FormatNames(s *types.State, defs *state.Defs, ids []string, empty string) string {
	if len(ids) == 0 {
		return empty
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = state.EntityName(s, defs, id)
	}
	return strings.Join(names, ", ")
}

func str(p map[string]any, key string) string {
	v, _ := p[key].(string)
	return v
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}
