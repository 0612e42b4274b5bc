// Package dialogue plays back a dialogue line set: typewriter reveal, line
// advance on confirmation, and an optional branch point after the last line.
//
// A Player holds no clock of its own. Front ends call Tick with the time
// that has passed; the engine only calls Confirm and Choose, so a session
// played without ticks behaves as if every line were fully typed.
package dialogue

import (
	"errors"
	"fmt"
	"time"

	"github.com/nathoo/witchlight/types"
)

// DefaultTypingSpeed is the delay between revealed runes.
const DefaultTypingSpeed = 50 * time.Millisecond

// ErrBadChoice is returned for a choice outside the offered range or when
// no choice is being offered.
var ErrBadChoice = errors.New("invalid choice")

// Phase is the playback state.
type Phase int

const (
	Idle Phase = iota
	Typing
	Waiting
	Choosing
	Finished
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Typing:
		return "typing"
	case Waiting:
		return "waiting"
	case Choosing:
		return "choosing"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Player steps through one DialogueDef.
type Player struct {
	def    types.DialogueDef
	speed  time.Duration
	phase  Phase
	index  int
	runes  []rune
	shown  int
	carry  time.Duration
	chosen int
}

// NewPlayer returns an idle player. fallback is used when the definition
// has no typing speed of its own.
func NewPlayer(def types.DialogueDef, fallback time.Duration) *Player {
	speed := def.TypingSpeed
	if speed == 0 {
		speed = fallback
	}
	return &Player{def: def, speed: speed, chosen: -1}
}

// Start begins playback at the first line with nothing revealed.
func (p *Player) Start() {
	p.chosen = -1
	p.seek(0)
}

// Resume continues at line index with the line fully shown, as after a
// restore. An index past the last line goes to the branch point or end.
func (p *Player) Resume(index int) {
	p.chosen = -1
	p.seek(index)
	if p.phase == Typing {
		p.reveal()
	}
}

func (p *Player) seek(index int) {
	p.index = index
	p.carry = 0
	p.shown = 0
	if index < 0 {
		p.index = 0
	}
	if p.index < len(p.def.Lines) {
		p.runes = []rune(p.def.Lines[p.index])
		p.phase = Typing
		return
	}
	p.runes = nil
	if len(p.def.Choices) > 0 {
		p.phase = Choosing
	} else {
		p.phase = Finished
	}
}

func (p *Player) reveal() {
	p.shown = len(p.runes)
	p.carry = 0
	p.phase = Waiting
}

// Tick advances the typewriter (and auto-advance) by elapsed. It reports
// whether the visible text changed.
func (p *Player) Tick(elapsed time.Duration) bool {
	switch p.phase {
	case Typing:
		if p.speed <= 0 {
			p.reveal()
			return true
		}
		p.carry += elapsed
		n := int(p.carry / p.speed)
		p.carry -= time.Duration(n) * p.speed
		before := p.shown
		p.shown = min(p.shown+n, len(p.runes))
		if p.shown >= len(p.runes) {
			p.reveal()
			return true
		}
		return p.shown != before
	case Waiting:
		if p.def.AutoAdvance <= 0 {
			return false
		}
		p.carry += elapsed
		if p.carry >= p.def.AutoAdvance {
			p.seek(p.index + 1)
			return true
		}
	}
	return false
}

// Confirm is the "continue" input. While typing it reveals the whole line;
// while waiting it moves to the next line or past the last one.
func (p *Player) Confirm() {
	switch p.phase {
	case Typing:
		p.reveal()
	case Waiting:
		p.seek(p.index + 1)
	}
}

// Skip reveals the current line without advancing.
func (p *Player) Skip() {
	if p.phase == Typing {
		p.reveal()
	}
}

// Choose picks a branch (zero-based) and returns its effects.
func (p *Player) Choose(i int) ([]types.Effect, error) {
	if p.phase != Choosing {
		return nil, ErrBadChoice
	}
	if i < 0 || i >= len(p.def.Choices) {
		return nil, fmt.Errorf("%w: %d", ErrBadChoice, i+1)
	}
	p.chosen = i
	p.phase = Finished
	return p.def.Choices[i].Effects, nil
}

// Phase returns the current playback phase.
func (p *Player) Phase() Phase { return p.phase }

// Done reports whether playback has finished.
func (p *Player) Done() bool { return p.phase == Finished }

// ID returns the dialogue ID.
func (p *Player) ID() string { return p.def.ID }

// AutoAdvances reports whether waiting lines move on by themselves.
func (p *Player) AutoAdvances() bool { return p.def.AutoAdvance > 0 }

// Speaker returns the speaker's name.
func (p *Player) Speaker() string { return p.def.Speaker }

// Index returns the current line index.
func (p *Player) Index() int { return p.index }

// Len returns the number of lines.
func (p *Player) Len() int { return len(p.def.Lines) }

// Line returns the full current line, or "" past the last line.
func (p *Player) Line() string {
	if p.index < len(p.def.Lines) {
		return p.def.Lines[p.index]
	}
	return ""
}

// Text returns the revealed portion of the current line.
func (p *Player) Text() string {
	return string(p.runes[:p.shown])
}

// Choices returns the choice texts when a choice is being offered.
func (p *Player) Choices() []string {
	if p.phase != Choosing {
		return nil
	}
	out := make([]string, len(p.def.Choices))
	for i, c := range p.def.Choices {
		out[i] = c.Text
	}
	return out
}

// Chosen returns the picked choice index, or -1.
func (p *Player) Chosen() int { return p.chosen }

// Outcome returns the end effects once playback finished without a branch.
func (p *Player) Outcome() []types.Effect {
	if p.phase != Finished || p.chosen >= 0 {
		return nil
	}
	return p.def.OnEnd
}
