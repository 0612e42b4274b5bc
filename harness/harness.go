// Package harness plays scripted walkthroughs through the engine and checks
// the output and final state. Transcripts are plain text so they can be
// kept as golden files.
package harness

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/nathoo/witchlight/engine"
	"github.com/nathoo/witchlight/engine/puzzle"
	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/loader"
)

// Failure is one unmet expectation. Step is 1-based; 0 means the final
// state check.
type Failure struct {
	Step    int
	Input   string
	Message string
}

func (f Failure) String() string {
	if f.Step == 0 {
		return "final: " + f.Message
	}
	return fmt.Sprintf("step %d (%q): %s", f.Step, f.Input, f.Message)
}

// Report is the outcome of a walkthrough.
type Report struct {
	Scenario   string
	Failures   []Failure
	Transcript string
}

// Passed reports whether every expectation held.
func (r *Report) Passed() bool { return len(r.Failures) == 0 }

// Run plays sc through eng, which should be a fresh game.
func Run(eng *engine.Engine, sc *Scenario) *Report {
	rep := &Report{Scenario: sc.Name}
	var tr strings.Builder

	fmt.Fprintf(&tr, "# %s\n", sc.Name)
	for _, line := range eng.Intro() {
		tr.WriteString(line + "\n")
	}

	for i, st := range sc.Steps {
		res := eng.Step(st.Input)
		out := strings.Join(res.Output, "\n")

		tr.WriteString("\n" + strings.TrimRight("> "+st.Input, " ") + "\n")
		if out != "" {
			tr.WriteString(out + "\n")
		}

		for _, want := range st.Expect {
			if !strings.Contains(out, want) {
				rep.fail(i+1, st.Input, "expected output to contain %q", want)
			}
		}
		for _, bad := range st.Reject {
			if strings.Contains(out, bad) {
				rep.fail(i+1, st.Input, "output must not contain %q", bad)
			}
		}
	}

	if sc.Final != nil {
		checkFinal(rep, eng, sc.Final)
	}
	rep.Transcript = tr.String()
	return rep
}

// RunFile loads a walkthrough and its game, then plays it.
func RunFile(path string, log *slog.Logger) (*Report, error) {
	sc, err := LoadScenario(path)
	if err != nil {
		return nil, err
	}
	defs, _, err := loader.Load(sc.Game, loader.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("load game for %s: %w", sc.Name, err)
	}
	return Run(engine.New(defs, engine.WithLogger(log)), sc), nil
}

func (r *Report) fail(step int, input, format string, args ...any) {
	r.Failures = append(r.Failures, Failure{Step: step, Input: input, Message: fmt.Sprintf(format, args...)})
}

func checkFinal(rep *Report, eng *engine.Engine, f *Final) {
	s := eng.State
	if f.Location != "" && s.Player.Location != f.Location {
		rep.fail(0, "", "location is %q, want %q", s.Player.Location, f.Location)
	}
	for _, item := range f.Backpack {
		if !state.HasItem(s, item) {
			rep.fail(0, "", "backpack is missing %q", item)
		}
	}
	for _, id := range f.Clues {
		if !state.HasClue(s, id) {
			rep.fail(0, "", "clue board is missing %q", id)
		}
	}
	for _, name := range sortedFlags(f.Flags) {
		if got := state.GetFlag(s, name); got != f.Flags[name] {
			rep.fail(0, "", "flag %q is %v, want %v", name, got, f.Flags[name])
		}
	}
	for _, id := range f.Puzzles {
		if !puzzle.IsSolved(s, id) {
			rep.fail(0, "", "puzzle %q is not solved", id)
		}
	}
	if f.GameOver != nil {
		if got := state.GetFlag(s, "game_over"); got != *f.GameOver {
			rep.fail(0, "", "game_over is %v, want %v", got, *f.GameOver)
		}
	}
}

func sortedFlags(m map[string]bool) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
