package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/witchlight/engine/dialogue"
	"github.com/nathoo/witchlight/types"
)

// frameInterval is the typewriter refresh rate.
const frameInterval = 30 * time.Millisecond

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// animating reports whether the active dialogue needs clock ticks: a line
// is still being typed or is waiting to auto-advance.
func (m Model) animating() bool {
	d := m.engine.Dialogue()
	if d == nil {
		return false
	}
	switch d.Phase() {
	case dialogue.Typing:
		return true
	case dialogue.Waiting:
		return d.AutoAdvances()
	}
	return false
}

// scheduleTick starts the frame clock if the dialogue needs it and it is
// not already running.
func (m Model) scheduleTick() (Model, tea.Cmd) {
	if m.ticking || !m.animating() {
		return m, nil
	}
	m.ticking = true
	return m, tick()
}

func (m Model) handleTick() (Model, tea.Cmd) {
	m.ticking = false
	if m.engine.Dialogue() == nil {
		return m, nil
	}
	res, changed := m.engine.Tick(frameInterval)
	if changed || len(res.Output) > 0 {
		m = m.record("", res)
	}
	return m.scheduleTick()
}

// record appends an engine result to the narrative. The active dialogue
// line and its choices live in the dialogue panel; a line enters the
// narrative once the conversation moves past it.
func (m Model) record(input string, res types.Result) Model {
	current := m.engine.Speech()
	if m.spoken != "" && m.spoken != current {
		m.rawLines = append(m.rawLines, rawLine{text: m.spoken, kind: kindDialogue})
	}
	m.spoken = current

	lines := m.withoutPanel(res.Output, current)
	if m.trace {
		lines = append(lines, formatTrace(res)...)
	}
	return m.appendOutput(gameOutputMsg{input: input, lines: lines})
}

func (m Model) withoutPanel(lines []string, current string) []string {
	d := m.engine.Dialogue()
	if d == nil {
		return lines
	}
	panel := map[string]bool{current: true}
	for i, c := range d.Choices() {
		panel[fmt.Sprintf("  %d) %s", i+1, c)] = true
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if !panel[l] {
			out = append(out, l)
		}
	}
	return out
}

// renderDialogue draws the speaker name box above the typed text, then
// the replies and a key hint.
func (m Model) renderDialogue() string {
	d := m.engine.Dialogue()
	if d == nil {
		return ""
	}
	width := max(m.width-2, 10)

	var body []string
	switch d.Phase() {
	case dialogue.Typing:
		body = append(body, wordWrap(d.Text(), width-4)+"▌")
	case dialogue.Waiting:
		body = append(body, wordWrap(d.Text(), width-4))
	case dialogue.Choosing:
		for i, c := range d.Choices() {
			body = append(body, styleChoice.Render(wordWrap(fmt.Sprintf("%d) %s", i+1, c), width-4)))
		}
	}

	var parts []string
	if d.Speaker() != "" {
		parts = append(parts, styleSpeaker.Render(d.Speaker()))
	}
	parts = append(parts, styleSpeech.Width(width).Render(strings.Join(body, "\n")))
	parts = append(parts, styleHint.Render(dialogueHint(d.Phase())))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func dialogueHint(p dialogue.Phase) string {
	switch p {
	case dialogue.Typing:
		return " enter: show the whole line"
	case dialogue.Choosing:
		return " type a number and press enter to reply"
	default:
		return " enter: continue"
	}
}
