package rules

import (
	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/types"
)

// MatchesIntent checks a rule's When against the resolved intent. Verb is
// mandatory; every other criterion only applies when set.
func MatchesIntent(when types.MatchCriteria, verb, objectID, targetID string,
	s *types.State, defs *state.Defs) bool {
	switch {
	case when.Verb != verb:
		return false
	case when.Object != "" && when.Object != objectID:
		return false
	case when.Target != "" && when.Target != targetID:
		return false
	}

	if when.ObjectKind != "" && objectID != "" && kindOf(defs, objectID) != when.ObjectKind {
		return false
	}
	if objectID != "" && !propsMatch(when.ObjectProp, objectID, s, defs) {
		return false
	}
	if targetID != "" && !propsMatch(when.TargetProp, targetID, s, defs) {
		return false
	}
	return true
}

// kindOf returns the entity kind. Items that exist only as definitions
// (brewed results, harvest drops) report "item".
func kindOf(defs *state.Defs, id string) string {
	if def, ok := defs.Entities[id]; ok {
		return def.Kind
	}
	if _, ok := defs.Items[id]; ok {
		return "item"
	}
	return ""
}

func propsMatch(want map[string]any, entityID string, s *types.State, defs *state.Defs) bool {
	for prop, expected := range want {
		actual, ok := state.GetEntityProp(s, defs, entityID, prop)
		if !ok || actual != expected {
			return false
		}
	}
	return true
}

// Specificity scores a rule for ranking; higher is more specific.
// Target 4, object 2, any property filter 1.
func Specificity(rule types.RuleDef) int {
	score := 0
	if rule.When.Target != "" {
		score += 4
	}
	if rule.When.Object != "" {
		score += 2
	}
	if len(rule.When.ObjectProp) > 0 || len(rule.When.TargetProp) > 0 {
		score++
	}
	return score
}
