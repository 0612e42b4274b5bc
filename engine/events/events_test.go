package events

import (
	"testing"

	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/types"
)

func testDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{Start: "cottage"},
		Rooms: map[string]types.RoomDef{
			"cottage": {ID: "cottage", Description: "A cottage."},
		},
		Handlers: []types.EventHandler{
			{
				EventType: ItemTaken,
				Effects:   []types.Effect{{Type: "say", Params: map[string]any{"text": "Into the pack it goes."}}},
			},
			{
				EventType:  RoomEntered,
				Conditions: []types.Condition{{Type: "flag_set", Params: map[string]any{"flag": "visited"}}},
				Effects:    []types.Effect{{Type: "say", Params: map[string]any{"text": "Welcome back."}}},
			},
			{
				EventType: ItemTaken,
				Effects:   []types.Effect{{Type: "inc_counter", Params: map[string]any{"counter": "taken", "amount": 1}}},
			},
			{
				EventType: PotionBrewed,
				Data:      map[string]any{"item": "sleep_draught"},
				Effects:   []types.Effect{{Type: "set_flag", Params: map[string]any{"flag": "brewed_sleep", "value": true}}},
			},
		},
	}
}

func TestDispatch_MatchesEventType(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)

	effs := Dispatch([]types.Event{{Type: ItemTaken, Data: map[string]any{"item": "herb"}}}, s, defs)
	if len(effs) != 2 {
		t.Fatalf("expected 2 effects, got %d", len(effs))
	}
	if effs[0].Type != "say" || effs[1].Type != "inc_counter" {
		t.Errorf("handlers out of declaration order: %v", effs)
	}
}

func TestDispatch_ConditionGates(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)
	entered := []types.Event{{Type: RoomEntered, Data: map[string]any{"room": "cottage"}}}

	if effs := Dispatch(entered, s, defs); len(effs) != 0 {
		t.Errorf("expected no effects before flag, got %v", effs)
	}
	s.Flags["visited"] = true
	if effs := Dispatch(entered, s, defs); len(effs) != 1 {
		t.Errorf("expected 1 effect, got %v", effs)
	}
}

func TestDispatch_DataFilter(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)

	other := []types.Event{{Type: PotionBrewed, Data: map[string]any{"item": "glow_tonic"}}}
	if effs := Dispatch(other, s, defs); len(effs) != 0 {
		t.Errorf("expected data filter to reject, got %v", effs)
	}
	match := []types.Event{{Type: PotionBrewed, Data: map[string]any{"item": "sleep_draught", "recipe": "sleep"}}}
	if effs := Dispatch(match, s, defs); len(effs) != 1 {
		t.Errorf("expected 1 effect, got %v", effs)
	}
}

func TestDispatch_NoEventsOrHandlers(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)

	if effs := Dispatch(nil, s, defs); effs != nil {
		t.Errorf("expected nil, got %v", effs)
	}
	defs.Handlers = nil
	if effs := Dispatch([]types.Event{{Type: ItemTaken}}, s, defs); effs != nil {
		t.Errorf("expected nil, got %v", effs)
	}
}

func TestDispatch_MultipleEventsInOrder(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)
	s.Flags["visited"] = true

	effs := Dispatch([]types.Event{
		{Type: RoomEntered},
		{Type: ItemTaken},
	}, s, defs)
	if len(effs) != 3 {
		t.Fatalf("expected 3 effects, got %d", len(effs))
	}
	if text, _ := effs[0].Params["text"].(string); text != "Welcome back." {
		t.Errorf("expected room handler first, got %q", text)
	}
}

func TestKnown(t *testing.T) {
	if !Known(PotionBrewed) {
		t.Error("potion_brewed should be known")
	}
	if Known("dragon_slain") {
		t.Error("dragon_slain should not be known")
	}
}
