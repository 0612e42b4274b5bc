package engine

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/nathoo/witchlight/engine/crafting"
	"github.com/nathoo/witchlight/engine/effects"
	"github.com/nathoo/witchlight/engine/events"
	"github.com/nathoo/witchlight/engine/inventory"
	"github.com/nathoo/witchlight/engine/resolve"
	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/types"
)

// stepCauldron handles crafting verbs while a cauldron is open. Any other
// verb steps away from the cauldron and is handled normally; it reports
// false in that case.
func (e *Engine) stepCauldron(intent types.Intent, result *types.Result) bool {
	switch intent.Verb {
	case "add", "use":
		if intent.Object == "" {
			result.Output = append(result.Output, "Add what?")
			return true
		}
		id, err := resolve.Name(e.State, e.Defs, intent.Object)
		if err != nil {
			result.Output = append(result.Output, capitalize(err.Error())+".")
			return true
		}
		if e.isCauldron(id) {
			result.Output = append(result.Output, e.cauldronContents())
			return true
		}
		result.Output = append(result.Output, e.placeMaterial(id))
	case "remove":
		result.Output = append(result.Output, e.removeMaterial(intent.Object))
	case "clear":
		crafting.ClearAll(e.State)
		result.Output = append(result.Output, "You tip the cauldron out. It is empty again.")
	case "brew":
		e.brew(result)
	case "look", "examine":
		if intent.Object != "" && intent.Verb == "examine" {
			if id, err := resolve.Name(e.State, e.Defs, intent.Object); err != nil || !e.isCauldron(id) {
				return false
			}
		}
		result.Output = append(result.Output, e.cauldronContents())
	case "close":
		crafting.Close(e.State)
		result.Output = append(result.Output, "You step back from the cauldron.")
	default:
		e.log.Debug("leaving cauldron", "verb", intent.Verb)
		crafting.Close(e.State)
		result.Output = append(result.Output, "You step back from the cauldron.")
		return false
	}
	return true
}

// openCauldron starts a crafting session at the cauldron entity.
func (e *Engine) openCauldron(id string) []string {
	crafting.Open(e.State, id, e.Defs.CauldronSlots())
	e.log.Debug("cauldron opened", "cauldron", id, "slots", e.Defs.CauldronSlots())
	return []string{
		fmt.Sprintf("You stand over the %s.", state.EntityName(e.State, e.Defs, id)),
		"(add <item>, remove <item>, clear, brew, close)",
	}
}

func (e *Engine) isCauldron(id string) bool {
	return e.Defs.Entities[id].Kind == "cauldron"
}

func (e *Engine) placeMaterial(id string) string {
	name := state.EntityName(e.State, e.Defs, id)
	_, err := crafting.Place(e.State, id)
	switch {
	case errors.Is(err, crafting.ErrNotCarried):
		return "You don't have that."
	case errors.Is(err, crafting.ErrSlotsFull):
		return "The cauldron can't hold any more."
	case err != nil:
		e.log.Warn("place material", "item", id, "error", err)
		return "Nothing happens."
	}
	return fmt.Sprintf("You add the %s to the cauldron.", name)
}

// removeMaterial takes a material back out, by name or by slot number.
func (e *Engine) removeMaterial(name string) string {
	if name == "" {
		return "Remove what?"
	}
	slot := -1
	if n, err := strconv.Atoi(name); err == nil {
		slot = n - 1
	} else if id, err := resolve.Name(e.State, e.Defs, name); err == nil {
		slot = slices.Index(e.State.Cauldron.Slots, id)
	}
	if slot < 0 || slot >= len(e.State.Cauldron.Slots) || e.State.Cauldron.Slots[slot] == "" {
		return "That isn't in the cauldron."
	}
	id := e.State.Cauldron.Slots[slot]
	if err := crafting.ClearSlot(e.State, slot); err != nil {
		return "That isn't in the cauldron."
	}
	return fmt.Sprintf("You fish the %s back out.", state.EntityName(e.State, e.Defs, id))
}

// brew resolves the cauldron and hands over the result. Results with a
// model are set down in the room; the rest go to the backpack, or the room
// when it is full.
func (e *Engine) brew(result *types.Result) {
	recipe, err := crafting.Brew(e.State, e.Defs)
	switch {
	case errors.Is(err, crafting.ErrNoMaterials):
		result.Output = append(result.Output, "The cauldron is empty.")
		return
	case errors.Is(err, crafting.ErrNoRecipe):
		e.log.Info("brew failed", "cauldron", e.State.Cauldron.CauldronID)
		result.Output = append(result.Output, "The mixture hisses and turns to grey sludge. You tip it out.")
		evts := []types.Event{{Type: events.BrewFailed, Data: map[string]any{}}}
		result.Events = append(result.Events, evts...)
		e.apply(result, nil, evts, effects.Context{Verb: "brew", Log: e.log})
		return
	case err != nil:
		result.Output = append(result.Output, "There is no cauldron here.")
		return
	}

	item := recipe.Result
	name := state.EntityName(e.State, e.Defs, item)
	var effs []types.Effect
	if e.Defs.Items[item].Model != "" || inventory.Free(e.State.Player.Backpack) == 0 ||
		inventory.Carryable(e.Defs.Items, item) != nil {
		effs = append(effs, types.Effect{Type: "spawn_item", Params: map[string]any{"item": item}})
		result.Output = append(result.Output, fmt.Sprintf("The cauldron bubbles over. A %s sits beside it.", name))
	} else {
		effs = append(effs, types.Effect{Type: "give_item", Params: map[string]any{"item": item}})
		result.Output = append(result.Output, fmt.Sprintf("The cauldron bubbles over. You bottle the %s.", name))
	}
	e.log.Info("potion brewed", "recipe", recipe.ID, "result", item)

	evts := []types.Event{{Type: events.PotionBrewed, Data: map[string]any{"recipe": recipe.ID, "item": item}}}
	result.Events = append(result.Events, evts...)
	e.apply(result, effs, evts, effects.Context{Verb: "brew", ObjectID: item, Log: e.log})
}

func (e *Engine) cauldronContents() string {
	mats := crafting.Materials(e.State)
	if len(mats) == 0 {
		return fmt.Sprintf("The cauldron is empty. (%d slots)", len(e.State.Cauldron.Slots))
	}
	return fmt.Sprintf("In the cauldron: %s. (%d/%d slots)",
		effects.FormatNames(e.State, e.Defs, mats, ""), len(mats), len(e.State.Cauldron.Slots))
}
