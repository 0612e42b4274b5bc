package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted walkthrough of a game.
type Scenario struct {
	// Name identifies the walkthrough and names its golden transcript.
	Name string `yaml:"name"`

	Description string `yaml:"description,omitempty"`

	// Game is the game directory, relative to the scenario file.
	Game string `yaml:"game"`

	Steps []Step `yaml:"steps"`

	// Final holds assertions on the state after the last step.
	Final *Final `yaml:"final,omitempty"`
}

// Step is one player command and what its output must (not) contain.
// An empty input presses enter, which advances dialogue.
type Step struct {
	Input  string   `yaml:"input"`
	Expect []string `yaml:"expect,omitempty"`
	Reject []string `yaml:"reject,omitempty"`
}

// Final lists state the walkthrough must end in. Unset fields are not
// checked; lists must be contained, not equal.
type Final struct {
	Location string          `yaml:"location,omitempty"`
	Backpack []string        `yaml:"backpack,omitempty"`
	Clues    []string        `yaml:"clues,omitempty"`
	Flags    map[string]bool `yaml:"flags,omitempty"`
	Puzzles  []string        `yaml:"puzzles,omitempty"`
	GameOver *bool           `yaml:"game_over,omitempty"`
}

// ParseScenario decodes a walkthrough, rejecting unknown fields so typos
// in a key fail loudly instead of skipping a check.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

// LoadScenario reads a walkthrough file and resolves its game directory
// against the file's location.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !filepath.IsAbs(sc.Game) {
		sc.Game = filepath.Join(filepath.Dir(path), sc.Game)
	}
	return sc, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Game == "" {
		return fmt.Errorf("game is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, st := range s.Steps {
		for _, e := range st.Expect {
			if e == "" {
				return fmt.Errorf("steps[%d]: empty expect entry", i)
			}
		}
		for _, r := range st.Reject {
			if r == "" {
				return fmt.Errorf("steps[%d]: empty reject entry", i)
			}
		}
	}
	return nil
}
