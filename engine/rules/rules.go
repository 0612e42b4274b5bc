package rules

import (
	"sort"

	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/types"
)

// Match is the outcome of evaluating an intent against the rule set.
type Match struct {
	Effects []types.Effect
	Matched bool   // false when Effects came from fallback text
	RuleID  string // winning rule, "" on fallback
	Scope   string // bucket the winner came from
}

type bucket struct {
	scope string
	rules []types.RuleDef
}

// Evaluate collects, filters, ranks and selects rules for an already
// resolved intent. The first bucket with a surviving rule wins; when none
// survives the fallback text chain is used and Matched is false so Step
// can try built-in behavior.
func Evaluate(s *types.State, defs *state.Defs,
	intent types.Intent, objectID, targetID string) Match {

	for _, b := range collect(s, defs, objectID, targetID) {
		if winner := selectRule(b.rules, s, defs, intent.Verb, objectID, targetID); winner != nil {
			return Match{Effects: winner.Effects, Matched: true, RuleID: winner.ID, Scope: b.scope}
		}
	}
	return Match{Effects: fallback(s, defs, intent.Verb, objectID)}
}

// collect orders candidate rules: current room, target entity, object
// entity, then global.
func collect(s *types.State, defs *state.Defs, objectID, targetID string) []bucket {
	var buckets []bucket
	add := func(scope string, rules []types.RuleDef) {
		if len(rules) > 0 {
			buckets = append(buckets, bucket{scope: scope, rules: rules})
		}
	}

	if room, ok := defs.Rooms[s.Player.Location]; ok {
		add("room:"+room.ID, room.Rules)
	}
	if targetID != "" {
		add("entity:"+targetID, defs.Entities[targetID].Rules)
	}
	if objectID != "" && objectID != targetID {
		add("entity:"+objectID, defs.Entities[objectID].Rules)
	}
	add("global", defs.GlobalRules)
	return buckets
}

// selectRule returns the best rule in the bucket whose When and conditions
// hold, or nil. Ranking: specificity desc, priority desc, source order asc.
func selectRule(rules []types.RuleDef, s *types.State, defs *state.Defs,
	verb, objectID, targetID string) *types.RuleDef {

	var candidates []types.RuleDef
	for _, rule := range rules {
		if MatchesIntent(rule.When, verb, objectID, targetID, s, defs) &&
			EvalAllConditions(rule.Conditions, s, defs) {
			candidates = append(candidates, rule)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if sa, sb := Specificity(a), Specificity(b); sa != sb {
			return sa > sb
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.SourceOrder < b.SourceOrder
	})
	return &candidates[0]
}

// DefaultFallback is said when nothing more specific applies.
const DefaultFallback = "You can't do that."

// fallback picks failure text: entity verb, entity default, room verb,
// room default, then DefaultFallback.
func fallback(s *types.State, defs *state.Defs, verb, objectID string) []types.Effect {
	if objectID != "" {
		if fbMap, ok := defs.Entities[objectID].Props["fallbacks"].(map[string]any); ok {
			for _, key := range []string{verb, "default"} {
				if text, ok := fbMap[key].(string); ok {
					return []types.Effect{sayEffect(text)}
				}
			}
		}
	}

	if room, ok := defs.Rooms[s.Player.Location]; ok {
		for _, key := range []string{verb, "default"} {
			if text, ok := room.Fallbacks[key]; ok {
				return []types.Effect{sayEffect(text)}
			}
		}
	}

	return []types.Effect{sayEffect(DefaultFallback)}
}

func sayEffect(text string) types.Effect {
	return types.Effect{
		Type:   "say",
		Params: map[string]any{"text": text},
	}
}
