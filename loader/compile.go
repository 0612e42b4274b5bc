// Package loader loads Lua game content into Go structs at startup.
// The Lua VM is discarded after loading; nothing runs Lua during play.
package loader

import (
	"fmt"
	"sort"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/types"
)

type rawRoom struct {
	id    string
	table *lua.LTable
}

type rawEntity struct {
	id    string
	kind  string
	table *lua.LTable
}

// rawDef is a recipe or dialogue table keyed by its ID.
type rawDef struct {
	id    string
	table *lua.LTable
}

type rawRule struct {
	id         string
	when       *lua.LTable
	conditions *lua.LTable // may be nil
	then       *lua.LTable
	scope      string
	order      int
}

type rawHandler struct {
	eventType string
	table     *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or def if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	if b, ok := tbl.RawGetString(key).(lua.LBool); ok {
		return bool(b)
	}
	return def
}

func getInt(tbl *lua.LTable, key string) int {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

// getMillis reads a millisecond count as a duration.
func getMillis(tbl *lua.LTable, key string) time.Duration {
	return time.Duration(getInt(tbl, key)) * time.Millisecond
}

func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings reads an array of strings. A bare string is a one-element list.
func getStrings(tbl *lua.LTable, key string) []string {
	switch v := tbl.RawGetString(key).(type) {
	case lua.LString:
		return []string{string(v)}
	case *lua.LTable:
		var out []string
		for i := 1; i <= v.MaxN(); i++ {
			if s, ok := v.RawGetInt(i).(lua.LString); ok {
				out = append(out, string(s))
			}
		}
		return out
	}
	return nil
}

// arrayTables returns the table elements of an array in order.
func arrayTables(tbl *lua.LTable) []*lua.LTable {
	if tbl == nil {
		return nil
	}
	var out []*lua.LTable
	for i := 1; i <= tbl.MaxN(); i++ {
		if t, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			out = append(out, t)
		}
	}
	return out
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case lua.LString:
		return string(val)
	case *lua.LTable:
		if n := val.MaxN(); n > 0 {
			arr := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		return tableToAnyMap(val)
	default:
		return nil
	}
}

func tableToStringMap(tbl *lua.LTable) map[string]string {
	if tbl == nil {
		return nil
	}
	m := map[string]string{}
	tbl.ForEach(func(k, v lua.LValue) {
		ks, ok1 := k.(lua.LString)
		vs, ok2 := v.(lua.LString)
		if ok1 && ok2 {
			m[string(ks)] = string(vs)
		}
	})
	return m
}

func tableToAnyMap(tbl *lua.LTable) map[string]any {
	if tbl == nil {
		return nil
	}
	m := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			m[string(ks)] = toGoValue(v)
		}
	})
	return m
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	defs := &state.Defs{
		Rooms:     map[string]types.RoomDef{},
		Entities:  map[string]types.EntityDef{},
		Items:     map[string]types.ItemDef{},
		Clues:     map[string]types.ClueDef{},
		Dialogues: map[string]types.DialogueDef{},
		Sources:   map[string]types.SourceDef{},
		Puzzles:   map[string]types.PuzzleDef{},
	}

	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs.Game = compileGame(coll.game)

	for _, raw := range coll.rooms {
		if _, dup := defs.Rooms[raw.id]; dup {
			return nil, fmt.Errorf("room %q defined twice", raw.id)
		}
		room := compileRoom(raw)
		defs.Rooms[room.ID] = room
		markScopedRules(coll, scopedRuleIDs(raw.table), "room:"+raw.id)
	}

	for _, raw := range coll.entities {
		if _, dup := defs.Entities[raw.id]; dup {
			return nil, fmt.Errorf("entity %q defined twice", raw.id)
		}
		defs.Entities[raw.id] = compileEntity(raw)
		markScopedRules(coll, scopedRuleIDs(raw.table), "entity:"+raw.id)
		compileKindDef(defs, raw)
	}

	for _, raw := range coll.recipes {
		defs.Recipes = append(defs.Recipes, compileRecipe(raw))
	}

	for _, raw := range coll.dialogues {
		if _, dup := defs.Dialogues[raw.id]; dup {
			return nil, fmt.Errorf("dialogue %q defined twice", raw.id)
		}
		defs.Dialogues[raw.id] = compileDialogue(raw)
	}

	for i := range coll.rules {
		rule := compileRule(coll.rules[i])
		switch {
		case rule.Scope == "global":
			defs.GlobalRules = append(defs.GlobalRules, rule)
		case strings.HasPrefix(rule.Scope, "room:"):
			id := strings.TrimPrefix(rule.Scope, "room:")
			r := defs.Rooms[id]
			r.Rules = append(r.Rules, rule)
			defs.Rooms[id] = r
		case strings.HasPrefix(rule.Scope, "entity:"):
			id := strings.TrimPrefix(rule.Scope, "entity:")
			e := defs.Entities[id]
			e.Rules = append(e.Rules, rule)
			defs.Entities[id] = e
		}
	}

	for _, raw := range coll.handlers {
		defs.Handlers = append(defs.Handlers, compileHandler(raw))
	}

	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:         getString(tbl, "title"),
		Author:        getString(tbl, "author"),
		Version:       getString(tbl, "version"),
		Start:         getString(tbl, "start"),
		Intro:         getString(tbl, "intro"),
		BackpackSlots: getInt(tbl, "backpack_slots"),
		ClueSlots:     getInt(tbl, "clue_slots"),
		CauldronSlots: getInt(tbl, "cauldron_slots"),
	}
}

func compileRoom(raw rawRoom) types.RoomDef {
	tbl := raw.table
	return types.RoomDef{
		ID:          raw.id,
		Description: getString(tbl, "description"),
		Exits:       tableToStringMap(getTable(tbl, "exits")),
		Fallbacks:   tableToStringMap(getTable(tbl, "fallbacks")),
		Ending:      getBool(tbl, "ending", false),
	}
}

// defOnlyFields are compiled into the kind-specific definition rather than
// entity props.
var defOnlyFields = map[string]bool{
	"rules": true, "reward": true, "pages": true,
}

func compileEntity(raw rawEntity) types.EntityDef {
	entity := types.EntityDef{
		ID:    raw.id,
		Kind:  raw.kind,
		Props: map[string]any{},
	}
	raw.table.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok && !defOnlyFields[string(ks)] {
			entity.Props[string(ks)] = toGoValue(v)
		}
	})

	// Items are takeable unless they say otherwise.
	if raw.kind == "item" {
		if _, ok := entity.Props["takeable"]; !ok {
			entity.Props["takeable"] = true
		}
	}
	return entity
}

// compileKindDef records the reference data that goes with an entity kind.
func compileKindDef(defs *state.Defs, raw rawEntity) {
	tbl := raw.table
	switch raw.kind {
	case "item":
		defs.Items[raw.id] = types.ItemDef{
			ID:          raw.id,
			Name:        getString(tbl, "name"),
			Description: getString(tbl, "description"),
			Icon:        getString(tbl, "icon"),
			Model:       getString(tbl, "model"),
		}
	case "source":
		defs.Sources[raw.id] = types.SourceDef{
			ID:         raw.id,
			Drop:       getString(tbl, "drop"),
			Regenerate: getInt(tbl, "regenerate"),
			Vanish:     getBool(tbl, "vanish", false),
		}
	case "clue":
		defs.Clues[raw.id] = types.ClueDef{
			ID:          raw.id,
			Name:        getString(tbl, "name"),
			Image:       getString(tbl, "image"),
			Pages:       getStrings(tbl, "pages"),
			Description: getString(tbl, "description"),
			Important:   getBool(tbl, "important", false),
			Value:       getInt(tbl, "value"),
		}
		defs.ClueOrder = append(defs.ClueOrder, raw.id)
	case "puzzle":
		defs.Puzzles[raw.id] = types.PuzzleDef{
			ID:     raw.id,
			Hour:   getInt(tbl, "hour"),
			Minute: getInt(tbl, "minute"),
			Reward: compileEffects(getTable(tbl, "reward")),
		}
	}
}

func compileRecipe(raw rawDef) types.RecipeDef {
	tbl := raw.table
	return types.RecipeDef{
		ID:       raw.id,
		Name:     getString(tbl, "name"),
		Requires: getStrings(tbl, "requires"),
		Result:   getString(tbl, "result"),
		Exact:    getBool(tbl, "exact", true),
		Consume:  getBool(tbl, "consume", false),
	}
}

func compileDialogue(raw rawDef) types.DialogueDef {
	tbl := raw.table
	d := types.DialogueDef{
		ID:          raw.id,
		Speaker:     getString(tbl, "speaker"),
		Lines:       getStrings(tbl, "lines"),
		OnEnd:       compileEffects(getTable(tbl, "on_end")),
		TypingSpeed: getMillis(tbl, "typing_speed"),
		AutoAdvance: getMillis(tbl, "auto_advance"),
	}
	for _, c := range arrayTables(getTable(tbl, "choices")) {
		d.Choices = append(d.Choices, types.ChoiceDef{
			Text:    getString(c, "text"),
			Effects: compileEffects(getTable(c, "effects")),
		})
	}
	return d
}

func compileRule(raw rawRule) types.RuleDef {
	return types.RuleDef{
		ID:          raw.id,
		Scope:       raw.scope,
		When:        compileMatchCriteria(raw.when),
		Conditions:  compileConditions(raw.conditions),
		Effects:     compileEffects(raw.then),
		Priority:    getInt(raw.when, "priority"),
		SourceOrder: raw.order,
	}
}

func compileMatchCriteria(tbl *lua.LTable) types.MatchCriteria {
	return types.MatchCriteria{
		Verb:       getString(tbl, "verb"),
		Object:     getString(tbl, "object"),
		Target:     getString(tbl, "target"),
		ObjectKind: getString(tbl, "object_kind"),
		TargetProp: tableToAnyMap(getTable(tbl, "target_prop")),
		ObjectProp: tableToAnyMap(getTable(tbl, "object_prop")),
	}
}

func compileConditions(tbl *lua.LTable) []types.Condition {
	var conditions []types.Condition
	for _, t := range arrayTables(tbl) {
		conditions = append(conditions, compileCondition(t))
	}
	return conditions
}

func compileCondition(tbl *lua.LTable) types.Condition {
	condType := getString(tbl, "type")
	if condType == "not" {
		if innerTbl := getTable(tbl, "inner"); innerTbl != nil {
			inner := compileCondition(innerTbl)
			return types.Condition{Type: "not", Negate: true, Inner: &inner}
		}
	}
	return types.Condition{Type: condType, Params: typedParams(tbl)}
}

func compileEffects(tbl *lua.LTable) []types.Effect {
	var effects []types.Effect
	for _, t := range arrayTables(tbl) {
		effects = append(effects, types.Effect{Type: getString(t, "type"), Params: typedParams(t)})
	}
	return effects
}

// typedParams is every field of a helper table except its type tag.
func typedParams(tbl *lua.LTable) map[string]any {
	params := tableToAnyMap(tbl)
	delete(params, "type")
	return params
}

func compileHandler(raw rawHandler) types.EventHandler {
	return types.EventHandler{
		EventType:  raw.eventType,
		Data:       tableToAnyMap(getTable(raw.table, "data")),
		Conditions: compileConditions(getTable(raw.table, "conditions")),
		Effects:    compileEffects(getTable(raw.table, "effects")),
	}
}

// scopedRuleIDs reads the rule markers listed in a room or entity table.
func scopedRuleIDs(tbl *lua.LTable) []string {
	var ids []string
	for _, marker := range arrayTables(getTable(tbl, "rules")) {
		if id := getString(marker, "__rule_id"); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// markScopedRules moves the named rules out of the global scope.
func markScopedRules(coll *collector, ruleIDs []string, scope string) {
	idSet := map[string]bool{}
	for _, id := range ruleIDs {
		idSet[id] = true
	}
	for i := range coll.rules {
		if idSet[coll.rules[i].id] {
			coll.rules[i].scope = scope
		}
	}
}

// sortedLuaFiles puts game.lua first and the rest in alphabetical order.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
