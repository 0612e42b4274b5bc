// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/nathoo/witchlight/types"
)

var directionExpansions = map[string]string{
	"n":  "north",
	"s":  "south",
	"e":  "east",
	"w":  "west",
	"ne": "northeast",
	"nw": "northwest",
	"se": "southeast",
	"sw": "southwest",
	"u":  "up",
	"d":  "down",
}

// Full direction names that are standalone shortcuts for "go <dir>".
var directionNames = map[string]bool{
	"north": true, "south": true, "east": true, "west": true,
	"northeast": true, "northwest": true, "southeast": true, "southwest": true,
	"up": true, "down": true, "in": true, "out": true,
}

var verbAliases = map[string]string{
	// Look / Examine
	"l":       "look",
	"x":       "examine",
	"inspect": "examine",
	"check":   "examine",
	"study":   "examine",
	"hover":   "examine",
	"search":  "examine",

	// Movement
	"walk":   "go",
	"run":    "go",
	"move":   "go",
	"head":   "go",
	"enter":  "go",
	"travel": "go",

	// Take / harvest
	"get":     "take",
	"grab":    "take",
	"harvest": "take",
	"gather":  "take",
	"pluck":   "take",
	"collect": "take",
	"forage":  "take",

	// Drop
	"discard": "drop",

	// Talk
	"ask":      "talk",
	"speak":    "talk",
	"chat":     "talk",
	"converse": "talk",
	"greet":    "talk",

	// Cauldron
	"mix":     "brew",
	"stir":    "brew",
	"craft":   "brew",
	"cook":    "brew",
	"place":   "add",
	"combine": "add",
	"empty":   "clear",
	"shut":    "close",
	"leave":   "close",

	// Clues
	"evidence": "clues",
	"journal":  "clues",
	"board":    "clues",
	"view":     "read",
	"page":     "next",

	// Dialogue
	"continue": "next",
	"c":        "next",
	"pick":     "choose",
	"answer":   "choose",

	// Puzzle
	"turn":   "set",
	"adjust": "set",

	// Miscellaneous
	"inv":      "inventory",
	"i":        "inventory",
	"bag":      "inventory",
	"backpack": "inventory",
	"z":        "wait",
	"rest":     "wait",
	"press":    "push",
	"shove":    "push",
	"drag":     "pull",
	"tug":      "pull",
	"offer":    "give",
	"hand":     "give",
	"sip":      "drink",
	"quaff":    "drink",
	"sniff":    "smell",
	"feel":     "touch",
	"rub":      "touch",
}

var prepositions = map[string]bool{
	"on": true, "at": true, "to": true,
	"with": true, "in": true, "into": true,
	"from": true, "about": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true, "some": true,
}

// Parse converts a raw command string into an Intent.
// Input is NFC-normalized first so composed and decomposed accents match
// the same entity names.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(norm.NFC.String(input))
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	if len(words) == 1 {
		w := words[0]
		// Direction shortcut: bare "n", "south", etc. → go <direction>
		if dir, ok := directionExpansions[w]; ok {
			return types.Intent{Verb: "go", Object: dir}
		}
		if directionNames[w] {
			return types.Intent{Verb: "go", Object: w}
		}
		// A bare number answers a dialogue choice.
		if isNumber(w) {
			return types.Intent{Verb: "choose", Object: w}
		}
	}

	words = expandMultiWordVerbs(words)

	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := stripArticles(words[1:])
	object, target := splitOnPreposition(rest)

	// "set clock 3 45" has no preposition; the time starts at the first digit.
	if verb == "set" && target == "" {
		object, target = splitAtTime(rest)
	}

	return types.Intent{
		Verb:   verb,
		Object: object,
		Target: target,
	}
}

// expandMultiWordVerbs handles "look at", "pick up", "talk to" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	replace := func(verb string) []string {
		return append([]string{verb}, words[2:]...)
	}

	switch words[0] {
	case "look":
		switch words[1] {
		case "at", "in", "into", "under":
			return replace("examine")
		}
	case "pick":
		if words[1] == "up" {
			return replace("take")
		}
	case "talk", "speak", "chat":
		if words[1] == "to" || words[1] == "with" {
			return replace("talk")
		}
	case "put", "drop", "throw", "toss":
		// "put herb in cauldron" adds a material; "put down herb" drops it.
		if words[1] == "down" {
			return replace("drop")
		}
		if containsAny(words[2:], "in", "into") {
			return append([]string{"add"}, words[1:]...)
		}
		if words[0] == "put" {
			return append([]string{"drop"}, words[1:]...)
		}
	case "take":
		if words[1] == "out" {
			return replace("remove")
		}
	case "clue":
		if words[1] == "board" {
			return replace("clues")
		}
	case "next":
		if words[1] == "page" {
			return replace("next")
		}
	}

	return words
}

func containsAny(words []string, targets ...string) bool {
	for _, w := range words {
		for _, t := range targets {
			if w == t {
				return true
			}
		}
	}
	return false
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition.
// Words before the preposition become the object, words after become the target.
// If no preposition is found, all words become the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			return strings.Join(words[:i], " "), strings.Join(words[i+1:], " ")
		}
	}
	return strings.Join(words, " "), ""
}

func splitAtTime(words []string) (object, target string) {
	for i, w := range words {
		if w != "" && unicode.IsDigit(rune(w[0])) {
			return strings.Join(words[:i], " "), strings.Join(words[i:], " ")
		}
	}
	return strings.Join(words, " "), ""
}

func isNumber(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return w != ""
}
