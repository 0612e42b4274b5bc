package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerHelpers(L, conditionHelpers)
	registerHelpers(L, effectHelpers)

	// Not(cond) wraps a condition.
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		inner := L.CheckTable(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("not"))
		tbl.RawSetString("inner", inner)
		L.Push(tbl)
		return 1
	}))
}

// entityKinds maps a constructor name to the kind of entity it declares.
var entityKinds = map[string]string{
	"Item":     "item",
	"NPC":      "npc",
	"Entity":   "entity",
	"Cauldron": "cauldron",
	"Source":   "source",
	"Clue":     "clue",
	"Puzzle":   "puzzle",
}

// curried returns a Lua function for the Name "id" { ... } form.
func curried(L *lua.LState, add func(id string, tbl *lua.LTable)) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			add(id, L.CheckTable(1))
			return 0
		}))
		return 1
	})
}

func registerConstructors(L *lua.LState, coll *collector) {
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	L.SetGlobal("Room", curried(L, func(id string, tbl *lua.LTable) {
		coll.rooms = append(coll.rooms, rawRoom{id: id, table: tbl})
	}))

	for name, kind := range entityKinds {
		L.SetGlobal(name, curried(L, func(id string, tbl *lua.LTable) {
			coll.entities = append(coll.entities, rawEntity{id: id, kind: kind, table: tbl})
		}))
	}

	L.SetGlobal("Recipe", curried(L, func(id string, tbl *lua.LTable) {
		coll.recipes = append(coll.recipes, rawDef{id: id, table: tbl})
	}))
	L.SetGlobal("Dialogue", curried(L, func(id string, tbl *lua.LTable) {
		coll.dialogues = append(coll.dialogues, rawDef{id: id, table: tbl})
	}))

	// Rule("id", when, [conditions,] then) returns a marker table so rooms
	// and entities can scope it.
	L.SetGlobal("Rule", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		when := L.CheckTable(2)

		var conditions, then *lua.LTable
		if L.Get(4) != lua.LNil {
			conditions, _ = L.Get(3).(*lua.LTable)
			then = L.CheckTable(4)
		} else {
			then = L.CheckTable(3)
		}

		coll.rules = append(coll.rules, rawRule{
			id:         id,
			when:       when,
			conditions: conditions,
			then:       then,
			scope:      "global",
			order:      coll.nextSourceOrder(),
		})

		marker := L.NewTable()
		marker.RawSetString("__rule_id", lua.LString(id))
		L.Push(marker)
		return 1
	}))

	// On("event_type", { data = {...}, conditions = {...}, effects = {...} })
	L.SetGlobal("On", L.NewFunction(func(L *lua.LState) int {
		eventType := L.CheckString(1)
		coll.handlers = append(coll.handlers, rawHandler{eventType: eventType, table: L.CheckTable(2)})
		return 0
	}))

	passThrough := L.NewFunction(func(L *lua.LState) int {
		L.Push(L.CheckTable(1))
		return 1
	})
	L.SetGlobal("When", passThrough)
	L.SetGlobal("Then", passThrough)
}

type argKind int

const (
	argString argKind = iota
	argBool
	argNumber
	argAny
	argOptString // may be omitted
	argOptTable  // may be omitted
)

type param struct {
	key  string
	kind argKind
}

// helper describes a Lua function that builds a typed condition or effect
// table from positional arguments.
type helper struct {
	name   string
	typ    string
	params []param
}

var conditionHelpers = []helper{
	{"HasItem", "has_item", []param{{"item", argString}}},
	{"FlagSet", "flag_set", []param{{"flag", argString}}},
	{"FlagNot", "flag_not", []param{{"flag", argString}}},
	{"FlagIs", "flag_is", []param{{"flag", argString}, {"value", argBool}}},
	{"InRoom", "in_room", []param{{"room", argString}}},
	{"PropIs", "prop_is", []param{{"entity", argString}, {"prop", argString}, {"value", argAny}}},
	{"CounterGt", "counter_gt", []param{{"counter", argString}, {"value", argNumber}}},
	{"CounterLt", "counter_lt", []param{{"counter", argString}, {"value", argNumber}}},
	{"HasClue", "has_clue", []param{{"clue", argString}}},
	{"ClueCollected", "clue_collected", []param{{"clue", argString}}},
	{"PuzzleSolved", "puzzle_solved", []param{{"puzzle", argString}}},
	{"SourceReady", "source_ready", []param{{"source", argString}}},
}

var effectHelpers = []helper{
	{"Say", "say", []param{{"text", argString}}},
	{"GiveItem", "give_item", []param{{"item", argString}}},
	{"RemoveItem", "remove_item", []param{{"item", argString}}},
	{"SpawnItem", "spawn_item", []param{{"item", argString}, {"room", argOptString}}},
	{"CollectClue", "collect_clue", []param{{"clue", argString}}},
	{"SetFlag", "set_flag", []param{{"flag", argString}, {"value", argBool}}},
	{"IncCounter", "inc_counter", []param{{"counter", argString}, {"amount", argNumber}}},
	{"SetCounter", "set_counter", []param{{"counter", argString}, {"value", argNumber}}},
	{"SetProp", "set_prop", []param{{"entity", argString}, {"prop", argString}, {"value", argAny}}},
	{"MoveEntity", "move_entity", []param{{"entity", argString}, {"room", argString}}},
	{"MovePlayer", "move_player", []param{{"room", argString}}},
	{"LoadScene", "load_scene", []param{{"room", argString}}},
	{"OpenExit", "open_exit", []param{{"room", argString}, {"direction", argString}, {"target", argString}}},
	{"CloseExit", "close_exit", []param{{"room", argString}, {"direction", argString}}},
	{"EmitEvent", "emit_event", []param{{"event", argString}, {"data", argOptTable}}},
	{"StartDialogue", "start_dialogue", []param{{"dialogue", argString}}},
	{"EndGame", "end_game", []param{{"text", argOptString}}},
	{"Stop", "stop", nil},
}

func registerHelpers(L *lua.LState, helpers []helper) {
	for _, h := range helpers {
		L.SetGlobal(h.name, L.NewFunction(func(L *lua.LState) int {
			tbl := L.NewTable()
			tbl.RawSetString("type", lua.LString(h.typ))
			for i, p := range h.params {
				n := i + 1
				var v lua.LValue
				switch p.kind {
				case argString:
					v = lua.LString(L.CheckString(n))
				case argBool:
					v = lua.LBool(L.CheckBool(n))
				case argNumber:
					v = L.CheckNumber(n)
				case argAny:
					v = L.Get(n)
				case argOptString:
					s := L.OptString(n, "")
					if s == "" {
						continue
					}
					v = lua.LString(s)
				case argOptTable:
					t := L.OptTable(n, nil)
					if t == nil {
						continue
					}
					v = t
				}
				tbl.RawSetString(p.key, v)
			}
			L.Push(tbl)
			return 1
		}))
	}
}
