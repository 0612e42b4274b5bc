// Package save implements JSON serialization of game state and the stores
// that keep save slots between sessions.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nathoo/witchlight/engine/inventory"
	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/types"
)

// FormatVersion is bumped when SaveData changes incompatibly.
const FormatVersion = 1

var (
	ErrUnsupportedFormat = errors.New("unsupported save format")
	ErrWrongGame         = errors.New("save belongs to a different game")
	ErrCorrupt           = errors.New("corrupt save data")
	ErrTooManyItems      = errors.New("save holds more than the current slots can carry")
)

// SaveData is the JSON-serializable save format.
type SaveData struct {
	FormatVersion int                          `json:"format_version"`
	Version       string                       `json:"version"`
	Game          string                       `json:"game"`
	Session       string                       `json:"session"`
	SavedAt       time.Time                    `json:"saved_at"`
	Turn          int                          `json:"turn"`
	Player        types.Player                 `json:"player"`
	Flags         map[string]bool              `json:"flags"`
	Counters      map[string]int               `json:"counters"`
	EntityState   map[string]types.EntityState `json:"entity_state"`
	Sources       map[string]types.SourceState `json:"sources"`
	Clues         map[string]bool              `json:"clues"`
	Puzzles       map[string]bool              `json:"puzzles"`
	Cauldron      types.CauldronState          `json:"cauldron"`
	Dialogue      string                       `json:"dialogue,omitempty"`
	DialogLine    int                          `json:"dialog_line,omitempty"`
	CommandLog    []string                     `json:"command_log"`
}

// Snapshot captures the state into a SaveData value.
func Snapshot(s *types.State, defs *state.Defs) *SaveData {
	return &SaveData{
		FormatVersion: FormatVersion,
		Version:       defs.Game.Version,
		Game:          defs.Game.Title,
		Session:       s.SessionID,
		SavedAt:       time.Now().UTC(),
		Turn:          s.TurnCount,
		Player:        s.Player,
		Flags:         s.Flags,
		Counters:      s.Counters,
		EntityState:   s.Entities,
		Sources:       s.Sources,
		Clues:         s.Clues,
		Puzzles:       s.Puzzles,
		Cauldron:      s.Cauldron,
		Dialogue:      s.Dialogue,
		DialogLine:    s.DialogLine,
		CommandLog:    s.CommandLog,
	}
}

// Save serializes game state to JSON bytes.
func Save(s *types.State, defs *state.Defs) ([]byte, error) {
	return json.MarshalIndent(Snapshot(s, defs), "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if sd.FormatVersion > FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, sd.FormatVersion)
	}
	// Ensure maps are never nil after load.
	if sd.Flags == nil {
		sd.Flags = map[string]bool{}
	}
	if sd.Counters == nil {
		sd.Counters = map[string]int{}
	}
	if sd.EntityState == nil {
		sd.EntityState = map[string]types.EntityState{}
	}
	if sd.Sources == nil {
		sd.Sources = map[string]types.SourceState{}
	}
	if sd.Clues == nil {
		sd.Clues = map[string]bool{}
	}
	if sd.Puzzles == nil {
		sd.Puzzles = map[string]bool{}
	}
	if sd.CommandLog == nil {
		sd.CommandLog = []string{}
	}
	return &sd, nil
}

// ApplySave applies loaded save data onto a state. Slot lists are fitted to
// the current definitions; a save carrying more than they hold is refused
// and the state is left untouched.
func ApplySave(s *types.State, defs *state.Defs, sd *SaveData) error {
	if sd.Game != "" && defs.Game.Title != "" && sd.Game != defs.Game.Title {
		return fmt.Errorf("%w: %q", ErrWrongGame, sd.Game)
	}
	backpack, err := inventory.Fit(sd.Player.Backpack, defs.BackpackSlots())
	if err != nil {
		return fmt.Errorf("%w: backpack: %w", ErrTooManyItems, err)
	}
	board, err := inventory.Fit(sd.Player.ClueBoard, defs.ClueSlots())
	if err != nil {
		return fmt.Errorf("%w: clue board: %w", ErrTooManyItems, err)
	}
	cauldron := sd.Cauldron.Slots
	if sd.Cauldron.Open {
		if cauldron, err = inventory.Fit(sd.Cauldron.Slots, defs.CauldronSlots()); err != nil {
			return fmt.Errorf("%w: cauldron: %w", ErrTooManyItems, err)
		}
	}

	s.Player = sd.Player
	s.Player.Backpack = backpack
	s.Player.ClueBoard = board
	s.Flags = sd.Flags
	s.Counters = sd.Counters
	s.Entities = sd.EntityState
	s.Sources = sd.Sources
	s.Clues = sd.Clues
	s.Puzzles = sd.Puzzles
	s.Cauldron = sd.Cauldron
	s.Cauldron.Slots = cauldron
	s.Dialogue = sd.Dialogue
	s.DialogLine = sd.DialogLine
	if _, ok := defs.Dialogues[s.Dialogue]; !ok {
		s.Dialogue, s.DialogLine = "", 0
	}
	s.TurnCount = sd.Turn
	s.CommandLog = sd.CommandLog
	if sd.Session != "" {
		s.SessionID = sd.Session
	}
	return nil
}
