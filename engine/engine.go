// Package engine provides the Step() orchestrator that wires together
// parsing, resolution, rules, effects, and events into a single turn.
package engine

import (
	"log/slog"
	"time"

	"github.com/nathoo/witchlight/engine/clue"
	"github.com/nathoo/witchlight/engine/dialogue"
	"github.com/nathoo/witchlight/engine/effects"
	"github.com/nathoo/witchlight/engine/events"
	"github.com/nathoo/witchlight/engine/harvest"
	"github.com/nathoo/witchlight/engine/parser"
	"github.com/nathoo/witchlight/engine/resolve"
	"github.com/nathoo/witchlight/engine/rules"
	"github.com/nathoo/witchlight/engine/save"
	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/types"
)

// Engine holds the game definitions and mutable state.
type Engine struct {
	Defs  *state.Defs
	State *types.State

	log         *slog.Logger
	typingSpeed time.Duration
	dialog      *dialogue.Player // active dialogue, nil when none
	pager       *clue.Pager      // open clue detail view, nil when closed
	pagerClue   string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for gameplay diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithTypingSpeed sets the per-rune delay for dialogues that don't set
// their own.
func WithTypingSpeed(d time.Duration) Option {
	return func(e *Engine) { e.typingSpeed = d }
}

// New creates a new engine from definitions.
func New(defs *state.Defs, opts ...Option) *Engine {
	e := &Engine{
		Defs:        defs,
		State:       state.NewState(defs),
		log:         slog.New(slog.DiscardHandler),
		typingSpeed: dialogue.DefaultTypingSpeed,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewGame discards the session and starts over from the definitions.
func (e *Engine) NewGame() {
	e.State = state.NewState(e.Defs)
	clue.ResetAll(e.State, e.Defs)
	e.dialog = nil
	e.closePager()
	e.log.Info("new game", "session", e.State.SessionID)
}

// Restore applies a loaded save and rebuilds the transient views that
// depend on it.
func (e *Engine) Restore(sd *save.SaveData) error {
	if err := save.ApplySave(e.State, e.Defs, sd); err != nil {
		return err
	}
	e.closePager()
	e.dialog = nil
	if def, ok := e.Defs.Dialogues[e.State.Dialogue]; ok {
		e.dialog = dialogue.NewPlayer(def, e.typingSpeed)
		e.dialog.Resume(e.State.DialogLine)
	}
	e.log.Info("game restored", "session", e.State.SessionID, "turn", e.State.TurnCount)
	return nil
}

// Intro returns the opening text: the game intro followed by the first room.
func (e *Engine) Intro() []string {
	var out []string
	if e.Defs.Game.Intro != "" {
		out = append(out, e.Defs.Game.Intro)
	}
	return append(out, e.Look()...)
}

// Look describes the player's room without spending a turn.
func (e *Engine) Look() []string {
	return e.describeRoom(e.State.Player.Location)
}

// Dialogue returns the active dialogue player, or nil.
func (e *Engine) Dialogue() *dialogue.Player { return e.dialog }

// Reading returns the clue open in the detail view and its pager.
func (e *Engine) Reading() (string, *clue.Pager) { return e.pagerClue, e.pager }

// Step processes one player command and returns the result.
func (e *Engine) Step(input string) types.Result {
	var result types.Result

	// Game over blocks all gameplay commands.
	if state.GetFlag(e.State, "game_over") {
		result.Output = append(result.Output, "The story is over. Use /load to restore a save, /new to start again or /quit to exit.")
		return result
	}

	intent := parser.Parse(input)
	e.State.CommandLog = append(e.State.CommandLog, input)
	e.log.Debug("step", "turn", e.State.TurnCount, "input", input, "verb", intent.Verb)

	// An active dialogue consumes input and does not advance the clock.
	if e.dialog != nil {
		return e.stepDialogue(intent)
	}

	switch intent.Verb {
	case "":
		result.Output = append(result.Output, "What do you want to do?")
		return result
	case "choose":
		// Answers only mean something inside a dialogue; no turn passes.
		result.Output = append(result.Output, "There is nothing to answer right now.")
		return result
	}

	if e.pager != nil {
		if intent.Verb == "next" {
			result.Output = append(result.Output, e.pageLine(e.pager.Next()))
			return result
		}
		if intent.Verb != "read" {
			e.closePager()
		}
	}

	if e.State.Cauldron.Open {
		if handled := e.stepCauldron(intent, &result); handled {
			e.endTurn(&result)
			return result
		}
	}

	objectID, targetID, resolveErr := e.resolveIntent(intent)

	// If resolution failed, try rules with the raw name before giving up.
	// This allows rules for scenery nouns that aren't entities.
	if resolveErr != nil {
		if objectID == "" && intent.Object != "" {
			objectID = intent.Object
		}
		if targetID == "" && intent.Target != "" {
			targetID = intent.Target
		}
	}

	m := rules.Evaluate(e.State, e.Defs, intent, objectID, targetID)
	effs := m.Effects
	if m.Matched {
		resolveErr = nil
		result.Rule = m.RuleID
		e.log.Debug("rule matched", "rule", m.RuleID, "scope", m.Scope)
	}

	if !m.Matched && resolveErr != nil {
		if msg := e.sceneryFallback(intent); msg != "" {
			result.Output = append(result.Output, msg)
		} else {
			result.Output = append(result.Output, capitalize(resolveErr.Error())+".")
		}
		e.endTurn(&result)
		return result
	}

	if !m.Matched {
		if b, ok := e.builtin(intent, objectID, targetID); ok {
			effs = b.effects
			result.Output = append(result.Output, b.output...)
			result.Events = append(result.Events, b.events...)
		}
	}

	ctx := effects.Context{Verb: intent.Verb, ObjectID: objectID, TargetID: targetID, Log: e.log}
	e.apply(&result, effs, result.Events, ctx)
	e.endTurn(&result)
	return result
}

// Tick advances the dialogue typewriter by elapsed. It reports whether the
// visible text changed; a dialogue finished by auto-advance yields the
// output of its ending.
func (e *Engine) Tick(elapsed time.Duration) (types.Result, bool) {
	var result types.Result
	if e.dialog == nil {
		return result, false
	}
	changed := e.dialog.Tick(elapsed)
	e.State.DialogLine = e.dialog.Index()
	if e.dialog.Done() {
		e.finishDialogue(&result, nil)
		return result, true
	}
	return result, changed
}

// Continue is the confirm input of a front end that animates dialogue
// text: it completes a typing line, otherwise it advances.
func (e *Engine) Continue() types.Result {
	var result types.Result
	if e.dialog == nil {
		return result
	}
	if e.dialog.Phase() == dialogue.Typing {
		e.dialog.Skip()
		return result
	}
	e.advanceDialogue(&result)
	return result
}

// apply runs effects, dispatches the events they and the pre-existing
// events emit once, then applies handler effects without re-dispatching.
func (e *Engine) apply(result *types.Result, effs []types.Effect, pending []types.Event, ctx effects.Context) {
	evts, output := effects.Apply(e.State, e.Defs, effs, ctx)
	result.Effects = append(result.Effects, effs...)
	result.Events = append(result.Events, evts...)
	result.Output = append(result.Output, output...)

	all := append(append([]types.Event{}, pending...), evts...)
	handlerEffs := events.Dispatch(all, e.State, e.Defs)
	if len(handlerEffs) > 0 {
		evts2, output2 := effects.Apply(e.State, e.Defs, handlerEffs, ctx)
		result.Effects = append(result.Effects, handlerEffs...)
		result.Events = append(result.Events, evts2...)
		result.Output = append(result.Output, output2...)
		all = append(all, evts2...)
	}
	e.syncDialogue(result, all)
}

// endTurn regrows sources whose timers ran out and advances the clock.
func (e *Engine) endTurn(result *types.Result) {
	e.State.TurnCount++
	restored := harvest.Regenerate(e.State, e.Defs, e.State.TurnCount)
	if len(restored) == 0 {
		return
	}
	var evts []types.Event
	for _, id := range restored {
		e.log.Debug("source restored", "source", id, "turn", e.State.TurnCount)
		evts = append(evts, types.Event{Type: events.SourceRestored, Data: map[string]any{"source": id}})
	}
	result.Events = append(result.Events, evts...)
	e.apply(result, nil, evts, effects.Context{Log: e.log})
}

// resolveIntent resolves the names the verb needs as entities.
func (e *Engine) resolveIntent(intent types.Intent) (objectID, targetID string, err error) {
	switch intent.Verb {
	case "go":
		// Direction is the object, no entity resolution needed.
		return intent.Object, "", nil
	case "inventory", "wait", "clues", "brew", "next", "choose":
		return "", "", nil
	case "talk", "set":
		// Only the object is an entity; the target is a topic or a time.
		if intent.Object == "" {
			return "", "", nil
		}
		id, err := resolve.Name(e.State, e.Defs, intent.Object)
		return id, "", err
	case "look":
		if intent.Object == "" {
			return "", "", nil
		}
	}
	res, err := resolve.Resolve(e.State, e.Defs, intent)
	if err != nil {
		return "", "", err
	}
	return res.ObjectID, res.TargetID, nil
}

func (e *Engine) closePager() {
	e.pager = nil
	e.pagerClue = ""
}
