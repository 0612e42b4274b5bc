package state

import (
	"sort"
	"testing"

	"github.com/nathoo/witchlight/types"
)

func testDefs() *Defs {
	return &Defs{
		Game: types.GameDef{
			Title:         "Test Game",
			Author:        "Test",
			Version:       "0.1.0",
			Start:         "cottage",
			BackpackSlots: 4,
		},
		Rooms: map[string]types.RoomDef{
			"cottage": {
				ID:          "cottage",
				Description: "A crooked cottage.",
				Exits:       map[string]string{"out": "garden"},
			},
			"garden": {
				ID:          "garden",
				Description: "An overgrown garden.",
				Exits:       map[string]string{"in": "cottage"},
			},
		},
		Entities: map[string]types.EntityDef{
			"mortar": {
				ID:   "mortar",
				Kind: "item",
				Props: map[string]any{
					"name":        "Stone Mortar",
					"description": "Worn smooth by years of grinding.",
					"location":    "cottage",
				},
			},
			"herb_patch": {
				ID:   "herb_patch",
				Kind: "source",
				Props: map[string]any{
					"name":     "Herb Patch",
					"location": "garden",
				},
			},
			"granny": {
				ID:   "granny",
				Kind: "npc",
				Props: map[string]any{
					"name":     "Granny Wick",
					"location": "cottage",
				},
			},
		},
		Items: map[string]types.ItemDef{
			"mortar": {ID: "mortar", Name: "Stone Mortar"},
			"herb":   {ID: "herb", Name: "Silverleaf"},
		},
	}
}

func TestNewState_StartsAtStartRoom(t *testing.T) {
	s := NewState(testDefs())

	if s.Player.Location != "cottage" {
		t.Errorf("expected player at cottage, got %q", s.Player.Location)
	}
}

func TestNewState_SlotCounts(t *testing.T) {
	s := NewState(testDefs())

	if len(s.Player.Backpack) != 4 {
		t.Errorf("expected 4 backpack slots, got %d", len(s.Player.Backpack))
	}
	if len(s.Player.ClueBoard) != DefaultClueSlots {
		t.Errorf("expected %d clue slots, got %d", DefaultClueSlots, len(s.Player.ClueBoard))
	}
	for i, id := range s.Player.Backpack {
		if id != "" {
			t.Errorf("slot %d: expected empty, got %q", i, id)
		}
	}
}

func TestNewState_SessionIDUnique(t *testing.T) {
	defs := testDefs()
	a, b := NewState(defs), NewState(defs)

	if a.SessionID == "" {
		t.Fatal("expected session ID")
	}
	if a.SessionID == b.SessionID {
		t.Errorf("expected distinct session IDs, both %q", a.SessionID)
	}
}

func TestNewState_ZeroTurnCount(t *testing.T) {
	s := NewState(testDefs())

	if s.TurnCount != 0 {
		t.Errorf("expected turn count 0, got %d", s.TurnCount)
	}
	if s.Cauldron.Open || s.Dialogue != "" {
		t.Error("expected no open cauldron or dialogue")
	}
}

func TestSlotDefaults(t *testing.T) {
	defs := &Defs{}
	if defs.BackpackSlots() != DefaultBackpackSlots {
		t.Errorf("backpack: got %d", defs.BackpackSlots())
	}
	if defs.CauldronSlots() != DefaultCauldronSlots {
		t.Errorf("cauldron: got %d", defs.CauldronSlots())
	}
	defs.Game.CauldronSlots = 5
	if defs.CauldronSlots() != 5 {
		t.Errorf("cauldron override: got %d", defs.CauldronSlots())
	}
}

func TestGetFlag_UnsetReturnsFalse(t *testing.T) {
	s := NewState(testDefs())
	if GetFlag(s, "nonexistent") {
		t.Error("expected unset flag to return false")
	}
}

func TestGetCounter(t *testing.T) {
	s := NewState(testDefs())
	if GetCounter(s, "brews") != 0 {
		t.Error("expected unset counter to return 0")
	}
	s.Counters["brews"] = 3
	if GetCounter(s, "brews") != 3 {
		t.Errorf("expected 3, got %d", GetCounter(s, "brews"))
	}
}

func TestHasItem(t *testing.T) {
	s := NewState(testDefs())
	if HasItem(s, "herb") {
		t.Error("expected empty backpack")
	}
	s.Player.Backpack[2] = "herb"
	if !HasItem(s, "herb") {
		t.Error("expected herb in backpack")
	}
	if HasItem(s, "") {
		t.Error("empty ID must never be carried")
	}
}

func TestHasClue(t *testing.T) {
	s := NewState(testDefs())
	s.Player.ClueBoard[0] = "torn_letter"
	if !HasClue(s, "torn_letter") {
		t.Error("expected clue on board")
	}
	if HasClue(s, "ledger") {
		t.Error("unexpected clue")
	}
}

func TestSourceReady(t *testing.T) {
	s := NewState(testDefs())
	if !SourceReady(s, "herb_patch") {
		t.Error("fresh source should be ready")
	}
	s.Sources["herb_patch"] = types.SourceState{Collected: true}
	if SourceReady(s, "herb_patch") {
		t.Error("collected source should not be ready")
	}
}

func TestGetEntityProp_RuntimeOverride(t *testing.T) {
	defs := testDefs()
	s := NewState(defs)

	v, ok := GetEntityProp(s, defs, "mortar", "name")
	if !ok || v != "Stone Mortar" {
		t.Errorf("base: got %v, %v", v, ok)
	}

	SetEntityProp(s, "mortar", "name", "Cracked Mortar")
	if got := StringProp(s, defs, "mortar", "name"); got != "Cracked Mortar" {
		t.Errorf("override: got %q", got)
	}
	// Props without an override still come from the base.
	if got := StringProp(s, defs, "mortar", "description"); got != "Worn smooth by years of grinding." {
		t.Errorf("fallback: got %q", got)
	}
	if _, ok := GetEntityProp(s, defs, "ghost", "name"); ok {
		t.Error("unknown entity should not be found")
	}
}

func TestEntityName(t *testing.T) {
	defs := testDefs()
	s := NewState(defs)

	tests := []struct {
		id   string
		want string
	}{
		{"granny", "Granny Wick"},
		{"herb", "Silverleaf"},
		{"unknown", "unknown"},
	}
	for _, tt := range tests {
		if got := EntityName(s, defs, tt.id); got != tt.want {
			t.Errorf("EntityName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestEntityLocation(t *testing.T) {
	defs := testDefs()
	s := NewState(defs)

	if loc := EntityLocation(s, defs, "mortar"); loc != "cottage" {
		t.Errorf("expected cottage, got %q", loc)
	}
	SetEntityLocation(s, "mortar", "garden")
	if loc := EntityLocation(s, defs, "mortar"); loc != "garden" {
		t.Errorf("expected garden, got %q", loc)
	}
	if loc := EntityLocation(s, defs, "ghost"); loc != "" {
		t.Errorf("expected empty, got %q", loc)
	}
}

func TestEntitiesInRoom_ReflectsOverrides(t *testing.T) {
	defs := testDefs()
	s := NewState(defs)

	got := EntitiesInRoom(s, defs, "cottage")
	sort.Strings(got)
	if len(got) != 2 || got[0] != "granny" || got[1] != "mortar" {
		t.Errorf("expected [granny mortar], got %v", got)
	}

	SetEntityLocation(s, "mortar", Nowhere)
	got = EntitiesInRoom(s, defs, "cottage")
	if len(got) != 1 || got[0] != "granny" {
		t.Errorf("expected [granny], got %v", got)
	}
}

func TestRoomExits_Overrides(t *testing.T) {
	defs := testDefs()
	s := NewState(defs)

	SetEntityProp(s, "room:cottage", "exit:down", "cellar")
	SetEntityProp(s, "room:cottage", "exit:out", "")

	exits := RoomExits(s, defs, "cottage")
	if exits["down"] != "cellar" {
		t.Errorf("expected open exit down, got %v", exits)
	}
	if _, ok := exits["out"]; ok {
		t.Errorf("expected closed exit out, got %v", exits)
	}
	// Base definition untouched.
	if defs.Rooms["cottage"].Exits["out"] != "garden" {
		t.Error("base exits mutated")
	}
	if RoomExits(s, defs, "nowhere") != nil {
		t.Error("unknown room should have nil exits")
	}
}
