package engine

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/nathoo/witchlight/engine/dialogue"
	"github.com/nathoo/witchlight/engine/effects"
	"github.com/nathoo/witchlight/engine/events"
	"github.com/nathoo/witchlight/types"
)

// stepDialogue handles input while a dialogue is playing. Line-based front
// ends show each line in full, so "next" always advances.
func (e *Engine) stepDialogue(intent types.Intent) types.Result {
	var result types.Result
	d := e.dialog

	switch intent.Verb {
	case "", "next", "wait", "look":
		if d.Phase() == dialogue.Choosing {
			result.Output = append(result.Output, e.choicePrompt())
			return result
		}
		d.Skip()
		e.advanceDialogue(&result)

	case "skip":
		d.Skip()
		result.Output = append(result.Output, e.lineText())

	case "choose":
		n, err := strconv.Atoi(intent.Object)
		if err != nil || d.Phase() != dialogue.Choosing {
			result.Output = append(result.Output, e.choicePrompt())
			return result
		}
		choices := d.Choices()
		effs, err := d.Choose(n - 1)
		if errors.Is(err, dialogue.ErrBadChoice) {
			result.Output = append(result.Output, e.choicePrompt())
			return result
		}
		result.Output = append(result.Output, fmt.Sprintf("> %s", choices[n-1]))
		e.finishDialogue(&result, effs)

	default:
		result.Output = append(result.Output, e.choicePrompt())
	}
	return result
}

// advanceDialogue moves past the current line and reports what follows.
func (e *Engine) advanceDialogue(result *types.Result) {
	d := e.dialog
	d.Confirm()
	e.State.DialogLine = d.Index()
	switch d.Phase() {
	case dialogue.Typing, dialogue.Waiting:
		result.Output = append(result.Output, e.lineText())
	case dialogue.Choosing:
		result.Output = append(result.Output, e.choiceLines()...)
	case dialogue.Finished:
		e.finishDialogue(result, nil)
	}
}

// finishDialogue closes the active dialogue and applies the chosen branch,
// or the dialogue's ending effects when no choice was made.
func (e *Engine) finishDialogue(result *types.Result, chosen []types.Effect) {
	d := e.dialog
	effs := chosen
	data := map[string]any{"dialogue": d.ID()}
	if d.Chosen() >= 0 {
		data["choice"] = d.Chosen() + 1
	} else {
		effs = d.Outcome()
	}

	e.dialog = nil
	e.State.Dialogue = ""
	e.State.DialogLine = 0
	e.log.Debug("dialogue ended", "dialogue", d.ID(), "choice", d.Chosen()+1)

	ended := []types.Event{{Type: events.DialogueEnded, Data: data}}
	result.Events = append(result.Events, ended...)
	e.apply(result, effs, ended, effects.Context{Verb: "talk", Log: e.log})
}

// syncDialogue starts the player for a dialogue an effect just opened.
func (e *Engine) syncDialogue(result *types.Result, evts []types.Event) {
	started := false
	for _, ev := range evts {
		if ev.Type == events.DialogueStarted {
			started = true
		}
	}
	if !started {
		if e.State.Dialogue == "" {
			e.dialog = nil
		}
		return
	}
	def, ok := e.Defs.Dialogues[e.State.Dialogue]
	if !ok {
		return
	}
	e.dialog = dialogue.NewPlayer(def, e.typingSpeed)
	e.dialog.Start()
	e.log.Debug("dialogue started", "dialogue", def.ID, "lines", len(def.Lines))

	switch e.dialog.Phase() {
	case dialogue.Choosing:
		result.Output = append(result.Output, e.choiceLines()...)
	case dialogue.Finished:
		// Nothing to say: apply the ending straight away.
		e.finishDialogue(result, nil)
	default:
		result.Output = append(result.Output, e.lineText())
	}
}

// Speech returns the current dialogue line as line-based front ends print
// it, or "" when nobody is talking.
func (e *Engine) Speech() string {
	if e.dialog == nil || e.dialog.Line() == "" {
		return ""
	}
	return e.lineText()
}

// lineText is the full current line with its speaker.
func (e *Engine) lineText() string {
	d := e.dialog
	if d.Speaker() == "" {
		return d.Line()
	}
	return fmt.Sprintf("%s: %s", d.Speaker(), d.Line())
}

// choiceLines numbers the branch options from 1.
func (e *Engine) choiceLines() []string {
	choices := e.dialog.Choices()
	out := make([]string, 0, len(choices))
	for i, c := range choices {
		out = append(out, fmt.Sprintf("  %d) %s", i+1, c))
	}
	return out
}

func (e *Engine) choicePrompt() string {
	d := e.dialog
	if d.Phase() == dialogue.Choosing {
		return fmt.Sprintf("Choose an answer (1-%d).", len(d.Choices()))
	}
	return "(Press enter or type \"next\" to continue.)"
}
