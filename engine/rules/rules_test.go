package rules

import (
	"testing"

	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/types"
)

func say(text string) []types.Effect {
	return []types.Effect{{Type: "say", Params: map[string]any{"text": text}}}
}

func pipelineDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{Start: "study", BackpackSlots: 4},
		Rooms: map[string]types.RoomDef{
			"study": {
				ID:          "study",
				Description: "A dusty study.",
				Rules: []types.RuleDef{
					{ID: "room_take_quill", When: types.MatchCriteria{Verb: "take", Object: "quill"}, Effects: say("The quill is light as air.")},
				},
				Fallbacks: map[string]string{
					"push":    "Nothing here moves.",
					"default": "Dust settles around you.",
				},
			},
		},
		Entities: map[string]types.EntityDef{
			"quill": {
				ID:    "quill",
				Kind:  "item",
				Props: map[string]any{"name": "Quill", "location": "study"},
				Rules: []types.RuleDef{
					{ID: "entity_examine_quill", When: types.MatchCriteria{Verb: "examine", Object: "quill"}, Effects: say("A raven feather.")},
				},
			},
			"desk": {
				ID:   "desk",
				Kind: "entity",
				Props: map[string]any{
					"name":      "Desk",
					"location":  "study",
					"fallbacks": map[string]any{"push": "The desk is bolted down."},
				},
				Rules: []types.RuleDef{
					{
						ID:         "use_key_on_desk",
						When:       types.MatchCriteria{Verb: "use", Object: "drawer_key", Target: "desk"},
						Conditions: []types.Condition{{Type: "has_item", Params: map[string]any{"item": "drawer_key"}}},
						Effects:    say("The drawer clicks open."),
					},
				},
			},
		},
		GlobalRules: []types.RuleDef{
			{ID: "global_take", When: types.MatchCriteria{Verb: "take", ObjectKind: "item"}, Effects: say("Taken.")},
			{ID: "global_sing", When: types.MatchCriteria{Verb: "sing"}, Effects: say("You hum a witching tune.")},
		},
	}
}

func firstText(t *testing.T, effs []types.Effect) string {
	t.Helper()
	if len(effs) == 0 {
		t.Fatal("expected effects")
	}
	text, _ := effs[0].Params["text"].(string)
	return text
}

func TestEvaluate_RoomRuleBeatsGlobal(t *testing.T) {
	defs := pipelineDefs()
	s := state.NewState(defs)

	m := Evaluate(s, defs, types.Intent{Verb: "take", Object: "quill"}, "quill", "")
	if !m.Matched || m.RuleID != "room_take_quill" || m.Scope != "room:study" {
		t.Errorf("unexpected match %+v", m)
	}
}

func TestEvaluate_TargetEntityRule(t *testing.T) {
	defs := pipelineDefs()
	s := state.NewState(defs)
	s.Player.Backpack[0] = "drawer_key"

	m := Evaluate(s, defs, types.Intent{Verb: "use"}, "drawer_key", "desk")
	if !m.Matched || firstText(t, m.Effects) != "The drawer clicks open." {
		t.Errorf("unexpected match %+v", m)
	}
	if m.Scope != "entity:desk" {
		t.Errorf("expected entity:desk scope, got %q", m.Scope)
	}
}

func TestEvaluate_ConditionFails_FallsBack(t *testing.T) {
	defs := pipelineDefs()
	s := state.NewState(defs)

	m := Evaluate(s, defs, types.Intent{Verb: "use"}, "drawer_key", "desk")
	if m.Matched {
		t.Fatalf("expected no match without the key, got %q", m.RuleID)
	}
	if got := firstText(t, m.Effects); got != "Dust settles around you." {
		t.Errorf("expected room default fallback, got %q", got)
	}
}

func TestEvaluate_ObjectEntityRule(t *testing.T) {
	defs := pipelineDefs()
	s := state.NewState(defs)

	m := Evaluate(s, defs, types.Intent{Verb: "examine"}, "quill", "")
	if !m.Matched || m.RuleID != "entity_examine_quill" {
		t.Errorf("unexpected match %+v", m)
	}
}

func TestEvaluate_GlobalRule(t *testing.T) {
	defs := pipelineDefs()
	s := state.NewState(defs)

	m := Evaluate(s, defs, types.Intent{Verb: "sing"}, "", "")
	if !m.Matched || m.Scope != "global" {
		t.Errorf("unexpected match %+v", m)
	}
}

func TestEvaluate_GlobalKindRuleForDefinitionOnlyItem(t *testing.T) {
	defs := pipelineDefs()
	defs.Items = map[string]types.ItemDef{"sleep_draught": {ID: "sleep_draught"}}
	s := state.NewState(defs)

	m := Evaluate(s, defs, types.Intent{Verb: "take"}, "sleep_draught", "")
	if !m.Matched || m.RuleID != "global_take" {
		t.Errorf("expected global_take, got %+v", m)
	}
}

func TestEvaluate_FallbackChain(t *testing.T) {
	defs := pipelineDefs()
	s := state.NewState(defs)

	tests := []struct {
		name   string
		verb   string
		object string
		want   string
	}{
		{"entity verb fallback", "push", "desk", "The desk is bolted down."},
		{"room verb fallback", "push", "", "Nothing here moves."},
		{"room default", "dance", "", "Dust settles around you."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Evaluate(s, defs, types.Intent{Verb: tt.verb}, tt.object, "")
			if m.Matched {
				t.Fatalf("unexpected match %q", m.RuleID)
			}
			if got := firstText(t, m.Effects); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	s.Player.Location = "nowhere"
	m := Evaluate(s, defs, types.Intent{Verb: "dance"}, "", "")
	if got := firstText(t, m.Effects); got != DefaultFallback {
		t.Errorf("expected global default, got %q", got)
	}
}

func TestEvaluate_RankingWithinBucket(t *testing.T) {
	defs := &state.Defs{
		Game: types.GameDef{Start: "r"},
		Rooms: map[string]types.RoomDef{"r": {
			ID: "r",
			Rules: []types.RuleDef{
				{ID: "generic", When: types.MatchCriteria{Verb: "look"}, Priority: 1, SourceOrder: 0, Effects: say("generic")},
				{ID: "low", When: types.MatchCriteria{Verb: "look"}, SourceOrder: 1, Effects: say("low")},
				{ID: "gem", When: types.MatchCriteria{Verb: "take", Object: "gem"}, SourceOrder: 2, Effects: say("gem")},
				{ID: "any_take", When: types.MatchCriteria{Verb: "take"}, Priority: 99, SourceOrder: 3, Effects: say("any")},
				{ID: "first", When: types.MatchCriteria{Verb: "wait"}, SourceOrder: 4, Effects: say("first")},
				{ID: "second", When: types.MatchCriteria{Verb: "wait"}, SourceOrder: 5, Effects: say("second")},
			},
		}},
	}
	s := state.NewState(defs)

	tests := []struct {
		verb, object, want string
	}{
		{"take", "gem", "gem"},  // specificity beats priority
		{"look", "", "generic"}, // priority breaks specificity tie
		{"wait", "", "first"},   // source order breaks full tie
	}
	for _, tt := range tests {
		m := Evaluate(s, defs, types.Intent{Verb: tt.verb}, tt.object, "")
		if m.RuleID != tt.want {
			t.Errorf("%s %s: got %q, want %q", tt.verb, tt.object, m.RuleID, tt.want)
		}
	}
}
