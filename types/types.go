// Package types defines the shared data structures for the witchlight engine.
// This package contains only type definitions: no logic, no methods.
package types

import "time"

// Intent is the parsed representation of a player command.
type Intent struct {
	Verb   string
	Object string // optional
	Target string // optional
}

// Effect is a single atomic state mutation instruction.
type Effect struct {
	Type   string
	Params map[string]any
}

// Event is emitted after effects are applied.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of a single game step.
type Result struct {
	Effects []Effect
	Events  []Event
	Output  []string
	Rule    string // ID of the rule that fired, "" for built-ins and fallbacks
}

// MatchCriteria defines what intent a rule matches against.
type MatchCriteria struct {
	Verb       string
	Object     string         // specific entity ID
	Target     string         // specific entity ID
	ObjectKind string         // match by entity kind (e.g. "item")
	TargetProp map[string]any // target must have these props
	ObjectProp map[string]any // object must have these props
}

// Condition is a predicate that must be true for a rule to fire.
type Condition struct {
	Type   string         // "has_item", "flag_set", "has_clue", etc.
	Params map[string]any // condition-specific parameters
	Negate bool           // true if wrapped in Not()
	Inner  *Condition     // for Not(): the negated inner condition
}

// RuleDef is a single rule that maps an intent to effects.
type RuleDef struct {
	ID          string
	Scope       string // "room:<id>", "entity:<id>", "global"
	When        MatchCriteria
	Conditions  []Condition
	Effects     []Effect
	Priority    int
	SourceOrder int
}

// EntityDef is the base definition of a world entity. Items, clues,
// harvest sources, puzzles and cauldrons all have an entity so they can
// be placed in rooms and named by the player.
type EntityDef struct {
	ID    string
	Kind  string         // "item", "npc", "entity", "clue", "source", "puzzle", "cauldron"
	Props map[string]any // base properties from Lua
	Rules []RuleDef      // rules scoped to this entity
}

// RoomDef is the base definition of a room (a scene).
type RoomDef struct {
	ID          string
	Description string
	Exits       map[string]string // direction → room_id
	Rules       []RuleDef
	Fallbacks   map[string]string // verb → custom failure text
	Ending      bool              // entering this room ends the game
}

// GameDef holds game metadata from Lua.
type GameDef struct {
	Title         string
	Author        string
	Version       string
	Start         string // starting room ID
	Intro         string
	BackpackSlots int
	ClueSlots     int
	CauldronSlots int
}

// ItemDef is immutable reference data for a collectible or usable item.
type ItemDef struct {
	ID          string
	Name        string
	Description string
	Icon        string // image reference; may be unset
	Model       string // optional 3D representation; results with a model appear in the room
}

// RecipeDef maps a set of item identifiers to a resulting item.
type RecipeDef struct {
	ID       string
	Name     string
	Requires []string
	Result   string
	Exact    bool // material count must equal len(Requires)
	Consume  bool // remove materials from the backpack on success
}

// ClueDef is a narrative collectible.
type ClueDef struct {
	ID          string
	Name        string
	Image       string
	Pages       []string // additional images shown in the detail view
	Description string
	Important   bool
	Value       int
}

// ChoiceDef is one option at a dialogue branch point.
type ChoiceDef struct {
	Text    string
	Effects []Effect
}

// DialogueDef is an ordered set of lines played back with a cursor.
type DialogueDef struct {
	ID          string
	Speaker     string
	Lines       []string
	Choices     []ChoiceDef
	OnEnd       []Effect      // applied when the lines finish and there are no choices
	TypingSpeed time.Duration // per rune; zero uses the engine default
	AutoAdvance time.Duration // advance without confirmation after this delay
}

// SourceDef is a world object that yields an item when taken.
type SourceDef struct {
	ID         string
	Drop       string // item ID
	Regenerate int    // turns until available again; 0 = never
	Vanish     bool   // entity leaves the world once taken
}

// PuzzleDef is a clock lock: setting the right time yields the reward.
type PuzzleDef struct {
	ID     string
	Hour   int
	Minute int
	Reward []Effect
}

// Player holds the player's runtime state.
type Player struct {
	Location  string   `json:"location"`
	Backpack  []string `json:"backpack"`   // fixed-length; "" is an empty slot
	ClueBoard []string `json:"clue_board"` // fixed-length; "" is an empty slot
}

// EntityState holds runtime overrides for an entity.
type EntityState struct {
	Location string         `json:"location,omitempty"` // overrides base location if non-empty
	Props    map[string]any `json:"props,omitempty"`    // overrides base props
}

// SourceState tracks whether a source has been taken and when it returns.
type SourceState struct {
	Collected bool `json:"collected"`
	RegenAt   int  `json:"regen_at,omitempty"`
	TakenAt   int  `json:"taken_at,omitempty"`
}

// CauldronState is the open crafting session, if any.
type CauldronState struct {
	Open       bool     `json:"open"`
	CauldronID string   `json:"cauldron_id,omitempty"`
	Slots      []string `json:"slots,omitempty"`
}

// State is the complete mutable game state.
type State struct {
	SessionID  string
	Player     Player
	Entities   map[string]EntityState // runtime property overrides
	Flags      map[string]bool
	Counters   map[string]int
	Sources    map[string]SourceState
	Clues      map[string]bool // collected this session
	Puzzles    map[string]bool // solved
	Cauldron   CauldronState
	Dialogue   string // active dialogue ID, "" when none
	DialogLine int    // line cursor of the active dialogue
	TurnCount  int
	CommandLog []string
}

// EventHandler is a rule triggered by an event rather than a player command.
type EventHandler struct {
	EventType  string
	Data       map[string]any // event data must contain these values
	Conditions []Condition
	Effects    []Effect
}
