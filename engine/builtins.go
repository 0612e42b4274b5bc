package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nathoo/witchlight/engine/clue"
	"github.com/nathoo/witchlight/engine/effects"
	"github.com/nathoo/witchlight/engine/events"
	"github.com/nathoo/witchlight/engine/harvest"
	"github.com/nathoo/witchlight/engine/inventory"
	"github.com/nathoo/witchlight/engine/puzzle"
	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/types"
)

// builtinResult is what a built-in verb produces when no rule matched.
type builtinResult struct {
	effects []types.Effect
	output  []string
	events  []types.Event // emitted directly, dispatched with the effects' events
}

func say(lines ...string) (builtinResult, bool) {
	return builtinResult{output: lines}, true
}

// builtin provides default verb handling when no rule matched. It reports
// false if the verb is not a recognized built-in.
func (e *Engine) builtin(intent types.Intent, objectID, targetID string) (builtinResult, bool) {
	switch intent.Verb {
	case "go":
		return e.builtinGo(objectID)
	case "look":
		if objectID == "" {
			return say(e.describeRoom(e.State.Player.Location)...)
		}
		return e.builtinExamine(objectID)
	case "examine":
		return e.builtinExamine(objectID)
	case "inventory":
		return e.builtinInventory()
	case "take":
		return e.builtinTake(objectID)
	case "drop":
		return e.builtinDrop(objectID)
	case "talk":
		return e.builtinTalk(objectID)
	case "use", "open", "add":
		return e.builtinUse(intent.Verb, objectID, targetID)
	case "brew", "remove", "clear":
		return say("You need to be standing at a cauldron.")
	case "clues":
		return e.builtinClues()
	case "read":
		return e.builtinRead(objectID)
	case "next":
		return say("There is nothing to page through.")
	case "set":
		return e.builtinSet(objectID, intent.Target)
	case "wait":
		return say("Time passes.")
	default:
		return builtinResult{}, false
	}
}

func (e *Engine) builtinGo(direction string) (builtinResult, bool) {
	if direction == "" {
		return say("Go where?")
	}
	exits := state.RoomExits(e.State, e.Defs, e.State.Player.Location)
	target, ok := exits[direction]
	if !ok {
		return say("You can't go that way.")
	}
	return builtinResult{
		effects: []types.Effect{{Type: "move_player", Params: map[string]any{"room": target}}},
		output:  e.describeRoom(target),
	}, true
}

// builtinExamine is the tooltip: the name on one line, the description on
// the next.
func (e *Engine) builtinExamine(objectID string) (builtinResult, bool) {
	if objectID == "" {
		return builtinResult{}, false
	}
	name := state.EntityName(e.State, e.Defs, objectID)
	desc := state.StringProp(e.State, e.Defs, objectID, "description")
	if desc == "" {
		desc = e.Defs.Items[objectID].Description
	}
	if desc == "" {
		if def, ok := clue.Lookup(e.Defs, objectID); ok {
			desc = def.Description
		}
	}
	if desc == "" {
		desc = "You see nothing special about it."
	}
	out := []string{name, desc}
	if line := e.regrowthLine(objectID); line != "" {
		out = append(out, line)
	}
	return say(out...)
}

// regrowthLine describes how far a picked source has grown back.
func (e *Engine) regrowthLine(id string) string {
	def, ok := e.Defs.Sources[id]
	if !ok || state.SourceReady(e.State, id) {
		return ""
	}
	if def.Regenerate <= 0 {
		return "It has been picked clean."
	}
	p := harvest.Progress(e.State, e.Defs, id, e.State.TurnCount)
	return fmt.Sprintf("It is growing back (%d%%).", int(p*100))
}

func (e *Engine) builtinInventory() (builtinResult, bool) {
	bp := e.State.Player.Backpack
	items := inventory.Items(bp)
	if len(items) == 0 {
		return say("Your backpack is empty.")
	}
	return say(fmt.Sprintf("You are carrying: %s. (%d/%d slots)",
		effects.FormatNames(e.State, e.Defs, items, ""), len(items), len(bp)))
}

// builtinTake covers the three kinds of pickup: harvesting a source,
// collecting a clue and taking a loose item.
func (e *Engine) builtinTake(objectID string) (builtinResult, bool) {
	if objectID == "" {
		return say("Take what?")
	}
	if state.HasItem(e.State, objectID) && state.EntityLocation(e.State, e.Defs, objectID) != e.State.Player.Location {
		return say("You already have that.")
	}
	if state.EntityLocation(e.State, e.Defs, objectID) != e.State.Player.Location {
		if state.HasClue(e.State, objectID) {
			return say("That is already pinned to your clue board.")
		}
		return say("You don't see that here.")
	}

	if _, ok := e.Defs.Sources[objectID]; ok {
		return e.harvestSource(objectID)
	}
	if _, ok := e.Defs.Clues[objectID]; ok {
		return e.collectClue(objectID)
	}

	takeable, _ := state.GetEntityProp(e.State, e.Defs, objectID, "takeable")
	_, isItem := e.Defs.Items[objectID]
	if takeable == false || (!isItem && takeable != true) {
		return say("You can't take that.")
	}
	if err := inventory.Carryable(e.Defs.Items, objectID); err != nil {
		e.log.Warn("take refused", "item", objectID, "error", err)
		return say(effects.MsgCannotCarry)
	}
	give := []types.Effect{{Type: "give_item", Params: map[string]any{"item": objectID}}}
	if inventory.Free(e.State.Player.Backpack) == 0 {
		// give_item reports the full backpack.
		return builtinResult{effects: give}, true
	}
	return builtinResult{
		effects: give,
		output:  []string{fmt.Sprintf("You take the %s.", state.EntityName(e.State, e.Defs, objectID))},
	}, true
}

func (e *Engine) harvestSource(id string) (builtinResult, bool) {
	item, err := harvest.Harvest(e.State, e.Defs, id, e.State.TurnCount)
	switch {
	case errors.Is(err, harvest.ErrDepleted):
		return say("There is nothing left to gather. Come back later.")
	case errors.Is(err, harvest.ErrInventoryFull):
		e.log.Info("harvest refused", "source", id, "reason", "backpack full")
		return builtinResult{
			output: []string{effects.MsgBackpackFull},
			events: []types.Event{{Type: events.InventoryFull, Data: map[string]any{"item": e.Defs.Sources[id].Drop}}},
		}, true
	case err != nil:
		e.log.Warn("harvest failed", "source", id, "error", err)
		return say("You can't take that.")
	}
	e.log.Debug("harvested", "source", id, "item", item)
	return builtinResult{
		output: []string{fmt.Sprintf("You gather some %s.", state.EntityName(e.State, e.Defs, item))},
		events: []types.Event{
			{Type: events.SourceHarvested, Data: map[string]any{"source": id, "item": item}},
			{Type: events.ItemTaken, Data: map[string]any{"item": item}},
		},
	}, true
}

// collectClue shows the clue's detail view and pins it to the board.
func (e *Engine) collectClue(id string) (builtinResult, bool) {
	def, err := clue.Inspect(e.State, e.Defs, id)
	if err != nil {
		return say("That is already pinned to your clue board.")
	}
	if inventory.Free(e.State.Player.ClueBoard) == 0 {
		return say(effects.MsgBoardFull)
	}
	out := []string{fmt.Sprintf("You found a clue: %s.", def.Name)}
	if def.Description != "" {
		out = append(out, def.Description)
	}
	out = append(out, "You pin it to your clue board.")
	return builtinResult{
		effects: []types.Effect{{Type: "collect_clue", Params: map[string]any{"clue": id}}},
		output:  out,
	}, true
}

func (e *Engine) builtinDrop(objectID string) (builtinResult, bool) {
	if objectID == "" {
		return say("Drop what?")
	}
	if !state.HasItem(e.State, objectID) {
		return say("You don't have that.")
	}
	return builtinResult{
		effects: []types.Effect{
			{Type: "remove_item", Params: map[string]any{"item": objectID}},
			{Type: "move_entity", Params: map[string]any{"entity": objectID, "room": e.State.Player.Location}},
		},
		output: []string{fmt.Sprintf("You drop the %s.", state.EntityName(e.State, e.Defs, objectID))},
	}, true
}

// builtinTalk starts the dialogue named by the NPC's "dialogue" property.
func (e *Engine) builtinTalk(npcID string) (builtinResult, bool) {
	if npcID == "" {
		return say("Talk to whom?")
	}
	if e.Defs.Entities[npcID].Kind != "npc" {
		return say("You can't talk to that.")
	}
	id := state.StringProp(e.State, e.Defs, npcID, "dialogue")
	if _, ok := e.Defs.Dialogues[id]; !ok {
		return say(fmt.Sprintf("%s has nothing to say right now.", state.EntityName(e.State, e.Defs, npcID)))
	}
	return builtinResult{
		effects: []types.Effect{{Type: "start_dialogue", Params: map[string]any{"dialogue": id}}},
	}, true
}

// builtinUse opens a cauldron. "use herb on cauldron" and "add herb to
// cauldron" open it and place the herb in one go.
func (e *Engine) builtinUse(verb, objectID, targetID string) (builtinResult, bool) {
	cauldron, material := "", ""
	switch {
	case targetID != "" && e.isCauldron(targetID):
		cauldron, material = targetID, objectID
	case objectID != "" && e.isCauldron(objectID):
		cauldron = objectID
	case verb == "add" && objectID != "":
		return say("Add it to what?")
	default:
		return builtinResult{}, false
	}
	if state.EntityLocation(e.State, e.Defs, cauldron) != e.State.Player.Location {
		return say("You don't see that here.")
	}
	out := e.openCauldron(cauldron)
	if material != "" {
		out = append(out, e.placeMaterial(material))
	}
	return say(out...)
}

func (e *Engine) builtinClues() (builtinResult, bool) {
	board := e.State.Player.ClueBoard
	stored := clue.Stored(e.State, e.Defs)
	if len(stored) == 0 {
		return say("Your clue board is empty.")
	}
	names := make([]string, 0, len(stored))
	for _, c := range stored {
		name := c.Name
		if c.Important {
			name += " (!)"
		}
		names = append(names, name)
	}
	return say(fmt.Sprintf("Clue board: %s. (%d/%d)", strings.Join(names, ", "), len(stored), len(board)))
}

// builtinRead opens the detail view of a clue on the board.
func (e *Engine) builtinRead(objectID string) (builtinResult, bool) {
	if objectID == "" {
		return say("Read what?")
	}
	def, ok := clue.Lookup(e.Defs, objectID)
	if !ok || !state.HasClue(e.State, objectID) {
		e.closePager()
		return e.builtinExamine(objectID)
	}
	if e.pager != nil && e.pagerClue == objectID {
		// Reading the open clue again turns back to its first page.
		e.pager.Reset()
	} else {
		e.pager = clue.NewPager(def)
		e.pagerClue = objectID
	}
	out := []string{def.Name}
	if def.Description != "" {
		out = append(out, def.Description)
	}
	if e.pager.Len() > 0 {
		out = append(out, e.pageLine(e.pager.Current()))
	}
	return say(out...)
}

func (e *Engine) pageLine(image string) string {
	switch {
	case e.pager.Len() > 1 && e.pager.IsLast():
		return fmt.Sprintf("[%s] page %s (last page, next to start over)", image, e.pager.Label())
	case e.pager.Len() > 1:
		return fmt.Sprintf("[%s] page %s (next to turn)", image, e.pager.Label())
	}
	return fmt.Sprintf("[%s]", image)
}

// builtinSet turns a clock puzzle to the given time.
func (e *Engine) builtinSet(objectID, input string) (builtinResult, bool) {
	if _, ok := e.Defs.Puzzles[objectID]; !ok {
		return builtinResult{}, false
	}
	if input == "" {
		return say("Set it to what time?")
	}
	ok, reward, err := puzzle.Attempt(e.State, e.Defs, objectID, input)
	switch {
	case errors.Is(err, puzzle.ErrSolved):
		return say("It has already clicked open.")
	case errors.Is(err, puzzle.ErrBadInput):
		return say("Set it to what time? Try something like 3:45.")
	case err != nil:
		e.log.Warn("puzzle attempt", "puzzle", objectID, "error", err)
		return say("Nothing happens.")
	case !ok:
		return say("The hands click into place, but nothing happens.")
	}
	e.log.Info("puzzle solved", "puzzle", objectID)
	return builtinResult{
		effects: reward,
		output:  []string{"Something inside gives a satisfying click."},
		events:  []types.Event{{Type: events.PuzzleSolved, Data: map[string]any{"puzzle": objectID}}},
	}, true
}

// sceneryFallback checks if the object noun appears in descriptions the player
// can see: the room, visible entities and carried items. If so, it returns a
// generic response instead of "you don't see that here".
func (e *Engine) sceneryFallback(intent types.Intent) string {
	if intent.Object == "" {
		return ""
	}
	objLower := strings.ToLower(intent.Object)

	var descriptions []string
	if room, ok := e.Defs.Rooms[e.State.Player.Location]; ok {
		descriptions = append(descriptions, room.Description)
	}
	ids := state.EntitiesInRoom(e.State, e.Defs, e.State.Player.Location)
	ids = append(ids, inventory.Items(e.State.Player.Backpack)...)
	for _, id := range ids {
		if desc := state.StringProp(e.State, e.Defs, id, "description"); desc != "" {
			descriptions = append(descriptions, desc)
		}
	}

	for _, desc := range descriptions {
		descLower := strings.ToLower(desc)
		if strings.Contains(descLower, objLower) {
			return sceneryMessage(intent.Verb, intent.Object)
		}
		// Significant words (4+ chars) count too.
		for _, word := range strings.Fields(objLower) {
			if len(word) >= 4 && strings.Contains(descLower, word) {
				return sceneryMessage(intent.Verb, intent.Object)
			}
		}
	}
	return ""
}

func sceneryMessage(verb, object string) string {
	switch verb {
	case "examine", "look":
		return fmt.Sprintf("You see nothing special about the %s.", object)
	case "take":
		return fmt.Sprintf("You can't take the %s.", object)
	default:
		return fmt.Sprintf("You can't do anything useful with the %s.", object)
	}
}

// describeRoom produces the standard room description output.
func (e *Engine) describeRoom(roomID string) []string {
	room, ok := e.Defs.Rooms[roomID]
	if !ok {
		return []string{"You are somewhere unknown."}
	}

	output := []string{room.Description}

	entities := state.EntitiesInRoom(e.State, e.Defs, roomID)
	if len(entities) > 0 {
		sort.Strings(entities)
		var names []string
		for _, id := range entities {
			name := state.EntityName(e.State, e.Defs, id)
			if _, ok := e.Defs.Sources[id]; ok && e.State.Sources[id].Collected {
				name += " (picked clean)"
			}
			names = append(names, name)
		}
		output = append(output, "You see: "+strings.Join(names, ", ")+".")
	}

	exits := state.RoomExits(e.State, e.Defs, roomID)
	if len(exits) > 0 {
		dirs := make([]string, 0, len(exits))
		for dir := range exits {
			dirs = append(dirs, dir)
		}
		sort.Strings(dirs)
		output = append(output, "Exits: "+strings.Join(dirs, ", ")+".")
	}

	return output
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
