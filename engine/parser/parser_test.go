package parser

import (
	"testing"

	"github.com/nathoo/witchlight/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.Intent
	}{
		// Empty / whitespace
		{"empty string", "", types.Intent{}},
		{"whitespace only", "   ", types.Intent{}},

		// Basic verbs
		{"look", "look", types.Intent{Verb: "look"}},
		{"l → look", "l", types.Intent{Verb: "look"}},
		{"i → inventory", "i", types.Intent{Verb: "inventory"}},
		{"bag → inventory", "bag", types.Intent{Verb: "inventory"}},
		{"clues", "clues", types.Intent{Verb: "clues"}},
		{"clue board → clues", "clue board", types.Intent{Verb: "clues"}},
		{"z → wait", "z", types.Intent{Verb: "wait"}},

		// Directions
		{"n → go north", "n", types.Intent{Verb: "go", Object: "north"}},
		{"bare direction", "west", types.Intent{Verb: "go", Object: "west"}},
		{"out", "out", types.Intent{Verb: "go", Object: "out"}},
		{"walk east", "walk east", types.Intent{Verb: "go", Object: "east"}},

		// Examine / tooltip
		{"x mortar", "x mortar", types.Intent{Verb: "examine", Object: "mortar"}},
		{"look at the mortar", "look at the mortar", types.Intent{Verb: "examine", Object: "mortar"}},
		{"hover", "hover herb", types.Intent{Verb: "examine", Object: "herb"}},

		// Taking and harvesting
		{"pick up", "pick up the silverleaf", types.Intent{Verb: "take", Object: "silverleaf"}},
		{"harvest", "harvest herb patch", types.Intent{Verb: "take", Object: "herb patch"}},
		{"collect clue", "collect letter", types.Intent{Verb: "take", Object: "letter"}},
		{"put down", "put down herb", types.Intent{Verb: "drop", Object: "herb"}},
		{"put without container", "put herb", types.Intent{Verb: "drop", Object: "herb"}},

		// Cauldron
		{"put in cauldron", "put the herb in the cauldron", types.Intent{Verb: "add", Object: "herb", Target: "cauldron"}},
		{"drop into", "drop moonwater into cauldron", types.Intent{Verb: "add", Object: "moonwater", Target: "cauldron"}},
		{"add", "add herb", types.Intent{Verb: "add", Object: "herb"}},
		{"take out", "take out herb", types.Intent{Verb: "remove", Object: "herb"}},
		{"mix → brew", "mix", types.Intent{Verb: "brew"}},
		{"empty → clear", "empty cauldron", types.Intent{Verb: "clear", Object: "cauldron"}},
		{"use on", "use mortar on cauldron", types.Intent{Verb: "use", Object: "mortar", Target: "cauldron"}},

		// Talk
		{"talk to", "talk to granny", types.Intent{Verb: "talk", Object: "granny"}},
		{"ask about", "ask granny about potion", types.Intent{Verb: "talk", Object: "granny", Target: "potion"}},

		// Dialogue
		{"bare number", "2", types.Intent{Verb: "choose", Object: "2"}},
		{"pick choice", "pick 1", types.Intent{Verb: "choose", Object: "1"}},
		{"continue", "continue", types.Intent{Verb: "next"}},
		{"next page", "next page", types.Intent{Verb: "next"}},

		// Clock puzzle
		{"set to", "set clock to 3:45", types.Intent{Verb: "set", Object: "clock", Target: "3:45"}},
		{"set without prep", "set the clock 15 45", types.Intent{Verb: "set", Object: "clock", Target: "15 45"}},
		{"turn alias", "turn clock hands to 15.45", types.Intent{Verb: "set", Object: "clock hands", Target: "15.45"}},

		// Case and spacing
		{"mixed case", "  TAKE   The  Herb ", types.Intent{Verb: "take", Object: "herb"}},
		{"unknown verb", "dance wildly", types.Intent{Verb: "dance", Object: "wildly"}},
		{"decomposed accent", "take cre\u0300me", types.Intent{Verb: "take", Object: "cr\u00e8me"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
