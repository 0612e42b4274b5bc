package loader

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/nathoo/witchlight/engine/events"
	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

var validEffectTypes = map[string]bool{
	"say": true, "give_item": true, "remove_item": true, "spawn_item": true,
	"collect_clue": true, "set_flag": true, "inc_counter": true, "set_counter": true,
	"set_prop": true, "move_entity": true, "move_player": true, "load_scene": true,
	"open_exit": true, "close_exit": true, "emit_event": true,
	"start_dialogue": true, "end_game": true, "stop": true,
}

var validConditionTypes = map[string]bool{
	"has_item": true, "flag_set": true, "flag_not": true, "flag_is": true,
	"in_room": true, "prop_is": true, "counter_gt": true, "counter_lt": true,
	"has_clue": true, "clue_collected": true, "puzzle_solved": true,
	"source_ready": true, "not": true,
}

// ref names a params key and the table it must resolve in.
type ref struct {
	key  string
	kind string // "room", "entity", "item", "clue", "puzzle", "source", "dialogue"
}

var conditionRefs = map[string][]ref{
	"has_item":       {{"item", "item"}},
	"in_room":        {{"room", "room"}},
	"prop_is":        {{"entity", "entity"}},
	"has_clue":       {{"clue", "clue"}},
	"clue_collected": {{"clue", "clue"}},
	"puzzle_solved":  {{"puzzle", "puzzle"}},
	"source_ready":   {{"source", "source"}},
}

var effectRefs = map[string][]ref{
	"give_item":      {{"item", "item"}},
	"remove_item":    {{"item", "item"}},
	"spawn_item":     {{"item", "item"}, {"room", "room"}},
	"collect_clue":   {{"clue", "clue"}},
	"set_prop":       {{"entity", "entity"}},
	"move_entity":    {{"entity", "entity"}, {"room", "room"}},
	"move_player":    {{"room", "room"}},
	"load_scene":     {{"room", "room"}},
	"open_exit":      {{"room", "room"}, {"target", "room"}},
	"close_exit":     {{"room", "room"}},
	"start_dialogue": {{"dialogue", "dialogue"}},
}

// validate checks the compiled defs for referential integrity. It returns
// the warnings it found and a *ValidationError when there are errors.
func validate(defs *state.Defs) ([]string, error) {
	ve := &ValidationError{}

	if defs.Game.Title == "" {
		ve.errorf("Game.Title is required")
	}
	if defs.Game.Start == "" {
		ve.errorf("Game.Start is required")
	} else if _, ok := defs.Rooms[defs.Game.Start]; !ok {
		ve.errorf("start room %q not found in defined rooms", defs.Game.Start)
	}
	for name, n := range map[string]int{
		"backpack_slots": defs.Game.BackpackSlots,
		"clue_slots":     defs.Game.ClueSlots,
		"cauldron_slots": defs.Game.CauldronSlots,
	} {
		if n < 0 {
			ve.errorf("Game.%s must not be negative", name)
		}
	}

	for _, roomID := range sortedKeys(defs.Rooms) {
		room := defs.Rooms[roomID]
		for _, dir := range sortedKeys(room.Exits) {
			if target := room.Exits[dir]; !hasRoom(defs, target) {
				ve.errorf("room %q exit %q points to undefined room %q", roomID, dir, target)
			}
		}
		validateRules(room.Rules, defs, ve)
	}

	seen := map[string]bool{}
	for _, rule := range collectAllRules(defs) {
		if seen[rule.ID] {
			ve.errorf("duplicate rule ID %q", rule.ID)
		}
		seen[rule.ID] = true
	}

	validateRules(defs.GlobalRules, defs, ve)
	validateEntities(defs, ve)
	validateRecipes(defs, ve)
	validateDialogues(defs, ve)

	for _, h := range defs.Handlers {
		if !events.Known(h.EventType) {
			ve.warnf("handler for unrecognized event %q", h.EventType)
		}
		validateConditions(h.Conditions, defs, ve)
		validateEffects(h.Effects, defs, ve)
	}

	if len(ve.Errors) > 0 {
		return ve.Warnings, ve
	}
	return ve.Warnings, nil
}

func validateEntities(defs *state.Defs, ve *ValidationError) {
	for _, id := range sortedKeys(defs.Entities) {
		entity := defs.Entities[id]
		validateRules(entity.Rules, defs, ve)

		if loc, ok := entity.Props["location"].(string); ok && loc != "" && !hasRoom(defs, loc) {
			ve.warnf("entity %q location %q does not match any defined room", id, loc)
		}

		switch entity.Kind {
		case "item":
			if defs.Items[id].Icon == "" {
				ve.warnf("item %q has no icon", id)
			}
		case "npc":
			if d, ok := entity.Props["dialogue"].(string); ok {
				if _, ok := defs.Dialogues[d]; !ok {
					ve.errorf("npc %q references undefined dialogue %q", id, d)
				}
			}
		case "source":
			src := defs.Sources[id]
			if src.Drop == "" {
				ve.errorf("source %q has no drop item", id)
			} else if _, ok := defs.Items[src.Drop]; !ok {
				ve.errorf("source %q drops undefined item %q", id, src.Drop)
			}
			if src.Regenerate < 0 {
				ve.errorf("source %q regenerate must not be negative", id)
			}
		case "puzzle":
			p := defs.Puzzles[id]
			if p.Hour < 0 || p.Hour > 23 || p.Minute < 0 || p.Minute > 59 {
				ve.errorf("puzzle %q time %d:%02d is not a clock time", id, p.Hour, p.Minute)
			}
			validateEffects(p.Reward, defs, ve)
		}
	}
}

func validateRecipes(defs *state.Defs, ve *ValidationError) {
	ids := map[string]bool{}
	for i, r := range defs.Recipes {
		if ids[r.ID] {
			ve.errorf("duplicate recipe ID %q", r.ID)
		}
		ids[r.ID] = true

		if len(r.Requires) == 0 {
			ve.errorf("recipe %q requires no materials", r.ID)
		}
		for _, item := range r.Requires {
			if _, ok := defs.Items[item]; !ok {
				ve.errorf("recipe %q requires undefined item %q", r.ID, item)
			}
		}
		if _, ok := defs.Items[r.Result]; !ok {
			ve.errorf("recipe %q produces undefined item %q", r.ID, r.Result)
		}
		if r.Exact && len(r.Requires) > defs.CauldronSlots() {
			ve.warnf("recipe %q needs %d materials but the cauldron holds %d",
				r.ID, len(r.Requires), defs.CauldronSlots())
		}

		// An earlier subset recipe whose materials are all among this one's
		// always matches first.
		for _, prev := range defs.Recipes[:i] {
			if !prev.Exact && len(prev.Requires) > 0 && isSubset(prev.Requires, r.Requires) {
				ve.warnf("recipe %q is unreachable: %q matches the same materials first", r.ID, prev.ID)
				break
			}
		}
	}
}

func validateDialogues(defs *state.Defs, ve *ValidationError) {
	for _, id := range sortedKeys(defs.Dialogues) {
		d := defs.Dialogues[id]
		if len(d.Lines) == 0 && len(d.Choices) == 0 {
			ve.warnf("dialogue %q has no lines", id)
		}
		for i, c := range d.Choices {
			if c.Text == "" {
				ve.errorf("dialogue %q choice %d has no text", id, i+1)
			}
			validateEffects(c.Effects, defs, ve)
		}
		validateEffects(d.OnEnd, defs, ve)
	}
}

func validateRules(rules []types.RuleDef, defs *state.Defs, ve *ValidationError) {
	for _, rule := range rules {
		validateConditions(rule.Conditions, defs, ve)
		validateEffects(rule.Effects, defs, ve)
		if rule.When.Verb != "" && !knownVerbs[rule.When.Verb] {
			ve.warnf("rule %q uses unrecognized verb %q", rule.ID, rule.When.Verb)
		}
	}
}

func validateConditions(conditions []types.Condition, defs *state.Defs, ve *ValidationError) {
	for _, cond := range conditions {
		if !validConditionTypes[cond.Type] {
			ve.errorf("unknown condition type %q", cond.Type)
			continue
		}
		if cond.Type == "not" && cond.Inner != nil {
			validateConditions([]types.Condition{*cond.Inner}, defs, ve)
			continue
		}
		checkRefs("condition", cond.Type, cond.Params, conditionRefs[cond.Type], defs, ve)
	}
}

func validateEffects(effs []types.Effect, defs *state.Defs, ve *ValidationError) {
	for _, eff := range effs {
		if !validEffectTypes[eff.Type] {
			ve.errorf("unknown effect type %q", eff.Type)
			continue
		}
		checkRefs("effect", eff.Type, eff.Params, effectRefs[eff.Type], defs, ve)
	}
}

func checkRefs(what, typ string, params map[string]any, refs []ref, defs *state.Defs, ve *ValidationError) {
	for _, r := range refs {
		id, ok := params[r.key].(string)
		if !ok || id == "" || isTemplate(id) {
			continue
		}
		if !defined(defs, r.kind, id) {
			ve.errorf("%s %s references undefined %s %q", what, typ, r.kind, id)
		}
	}
}

func defined(defs *state.Defs, kind, id string) bool {
	var ok bool
	switch kind {
	case "room":
		ok = hasRoom(defs, id)
	case "entity":
		_, ok = defs.Entities[id]
	case "item":
		_, ok = defs.Items[id]
	case "clue":
		_, ok = defs.Clues[id]
	case "puzzle":
		_, ok = defs.Puzzles[id]
	case "source":
		_, ok = defs.Sources[id]
	case "dialogue":
		_, ok = defs.Dialogues[id]
	}
	return ok
}

func hasRoom(defs *state.Defs, id string) bool {
	_, ok := defs.Rooms[id]
	return ok
}

// collectAllRules gathers all rules from all scopes.
func collectAllRules(defs *state.Defs) []types.RuleDef {
	all := append([]types.RuleDef{}, defs.GlobalRules...)
	for _, id := range sortedKeys(defs.Rooms) {
		all = append(all, defs.Rooms[id].Rules...)
	}
	for _, id := range sortedKeys(defs.Entities) {
		all = append(all, defs.Entities[id].Rules...)
	}
	return all
}

func isSubset(sub, set []string) bool {
	for _, s := range sub {
		if !slices.Contains(set, s) {
			return false
		}
	}
	return true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// isTemplate reports whether s contains a {placeholder}.
func isTemplate(s string) bool {
	return strings.Contains(s, "{") && strings.Contains(s, "}")
}

// knownVerbs are the canonical verbs the parser produces.
var knownVerbs = map[string]bool{
	"look": true, "examine": true, "take": true, "drop": true, "go": true,
	"use": true, "open": true, "close": true, "talk": true, "give": true,
	"push": true, "pull": true, "inventory": true, "wait": true, "read": true,
	"eat": true, "drink": true, "climb": true, "smell": true, "touch": true,
	"listen": true, "taste": true, "throw": true, "put": true, "show": true,
	"add": true, "remove": true, "clear": true, "brew": true, "clues": true,
	"next": true, "choose": true, "skip": true, "set": true, "unlock": true,
}
