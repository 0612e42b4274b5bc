// Package tui provides the full-screen Bubble Tea front end: a scrolling
// narrative, a typewriter dialogue panel and a status bar.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/witchlight/engine"
	"github.com/nathoo/witchlight/engine/inventory"
	"github.com/nathoo/witchlight/engine/save"
	"github.com/nathoo/witchlight/types"
)

const defaultSlot = "quicksave"

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool
	isSystem bool
}

// Model is the Bubble Tea model.
type Model struct {
	ctx    context.Context
	engine *engine.Engine
	store  save.Store
	log    *slog.Logger

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine
	spoken   string // dialogue line shown in the panel

	width    int
	height   int
	ready    bool
	trace    bool
	ticking  bool
	quitting bool
	lastCmd  string
}

// gameOutputMsg carries output from the engine into the Update loop.
type gameOutputMsg struct {
	input    string
	lines    []string
	isSystem bool
}

// New creates a TUI model wired to the given engine and save store.
func New(eng *engine.Engine, store save.Store, log *slog.Logger) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return Model{
		ctx:     context.Background(),
		engine:  eng,
		store:   store,
		log:     log,
		input:   ti,
		history: NewHistory(100),
	}
}

// Run starts the Bubble Tea program and blocks until the player quits or
// ctx is cancelled.
func Run(ctx context.Context, eng *engine.Engine, store save.Store, log *slog.Logger) error {
	m := New(eng, store, log)
	m.ctx = ctx
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init prints the title and the opening text.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	g := m.engine.Defs.Game
	title := g.Title
	if g.Version != "" {
		title += " v" + g.Version
	}
	if g.Author != "" {
		title += " by " + g.Author
	}
	lines := append([]string{title, ""}, m.engine.Intro()...)
	return func() tea.Msg {
		return gameOutputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, frame ticks, game
// output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := max(m.height-2, 1) // status bar + input line
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()

	case tickMsg:
		return m.handleTick()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			return m.handleEnter()
		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil
		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
			}
			return m, nil
		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case gameOutputMsg:
		m = m.appendOutput(msg)
		return m.scheduleTick()
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	return m, inputCmd
}

// handleEnter processes the submitted input line. An empty line continues
// the active dialogue.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		if m.engine.Dialogue() == nil {
			return m, nil
		}
		m = m.record("", m.engine.Continue())
		return m.scheduleTick()
	}

	m.history.Push(input)

	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			return m.appendOutput(gameOutputMsg{input: input, lines: []string{"Nothing to repeat."}, isSystem: true}), nil
		}
		input = m.lastCmd
	} else if !strings.HasPrefix(input, "/") {
		m.lastCmd = input
	}

	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m.scheduleTick()
	}

	m = m.record(input, m.engine.Step(input))
	return m.scheduleTick()
}

// appendOutput adds lines to the narrative and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input == "" && len(msg.lines) == 0 {
		m.refreshViewport()
		return m
	}
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + msg.input, isInput: true})
	}
	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}
	m.rawLines = append(m.rawLines, rawLine{})
	m.refreshViewport()
	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	width := max(m.width, 10)

	styled := make([]string, 0, len(m.rawLines))
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}
		wrapped := wordWrap(rl.text, width)
		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}
	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindYouSee:
		return styledYouSee(line)
	case kindExits:
		return styleExits.Render(line)
	case kindDialogue:
		return styleDialogue.Render(line)
	case kindChoice:
		return styleChoice.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleRoomDesc.Render(line)
	}
}

// wordWrap wraps text to width at word boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}
	var b strings.Builder
	lineLen := 0
	for i, word := range strings.Fields(text) {
		w := lipgloss.Width(word)
		switch {
		case i == 0:
			lineLen = w
		case lineLen+1+w > width:
			b.WriteString("\n")
			lineLen = w
		default:
			b.WriteString(" ")
			lineLen += 1 + w
		}
		b.WriteString(word)
	}
	return b.String()
}

// View renders the narrative, the dialogue panel while someone is talking,
// the status bar and the prompt.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	panel := m.renderDialogue()
	if panel == "" {
		return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
	}
	vp := m.viewport
	vp.Height = max(vp.Height-lipgloss.Height(panel), 1)
	vp.GotoBottom()
	return vp.View() + "\n" + panel + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true
	case "/save":
		return m.cmdSave(arg), false
	case "/load":
		return m.cmdLoad(arg), false
	case "/saves":
		return m.cmdSaves(), false
	case "/new":
		m.engine.NewGame()
		m.spoken = ""
		return append([]string{"New game started."}, m.engine.Intro()...), false
	case "/help":
		return helpText, false
	case "/state":
		return m.cmdState(), false
	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false
	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdSave(name string) []string {
	if name == "" {
		name = defaultSlot
	}
	data, err := save.Save(m.engine.State, m.engine.Defs)
	if err == nil {
		err = m.store.Save(m.ctx, name, data)
	}
	if err != nil {
		m.log.Warn("save failed", "slot", name, "err", err)
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	m.log.Info("game saved", "slot", name, "turn", m.engine.State.TurnCount)
	return []string{fmt.Sprintf("Game saved to %s.", name)}
}

func (m *Model) cmdLoad(name string) []string {
	if name == "" {
		name = defaultSlot
	}
	data, err := m.store.Load(m.ctx, name)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	sd, err := save.Load(data)
	if err == nil {
		err = m.engine.Restore(sd)
	}
	if err != nil {
		m.log.Warn("load failed", "slot", name, "err", err)
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	m.spoken = m.engine.Speech()
	return append([]string{fmt.Sprintf("Game loaded from %s (turn %d).", name, sd.Turn)}, m.engine.Look()...)
}

func (m *Model) cmdSaves() []string {
	slots, err := m.store.List(m.ctx)
	if err != nil {
		return []string{fmt.Sprintf("Listing saves failed: %v", err)}
	}
	if len(slots) == 0 {
		return []string{"No saved games."}
	}
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, fmt.Sprintf("%s  %s  turn %d  %s", s.Name, s.Game, s.Turn, s.SavedAt.Format("2006-01-02 15:04")))
	}
	return out
}

var helpText = []string{
	"System:",
	"  /save [name]  Save game (default: quicksave)",
	"  /load [name]  Load game (default: quicksave)",
	"  /saves        List saved games",
	"  /new          Start over",
	"  /quit         Exit game",
	"  /help         Show this help",
	"  /state        Debug: dump current state",
	"  /trace        Toggle debug trace output",
	"",
	"Game commands:",
	"  look (l), examine <thing> (x), go <dir>",
	"  take <thing>: pick up, harvest or collect",
	"  drop <item>, inventory (i), wait (z), again (g)",
	"  use <cauldron>, then add/remove <item>, clear, brew, close",
	"  talk <npc>, then enter to continue and a number to reply",
	"  clues, read <clue>, next",
	"  set <clock> to HH:MM",
	"",
	"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
}

func (m *Model) cmdState() []string {
	s := m.engine.State
	out := []string{
		fmt.Sprintf("Turn: %d", s.TurnCount),
		fmt.Sprintf("Location: %s", s.Player.Location),
		fmt.Sprintf("Backpack: %v", inventory.Items(s.Player.Backpack)),
		fmt.Sprintf("Clue board: %v", inventory.Items(s.Player.ClueBoard)),
	}
	if len(s.Flags) > 0 {
		out = append(out, fmt.Sprintf("Flags: %v", s.Flags))
	}
	if len(s.Counters) > 0 {
		out = append(out, fmt.Sprintf("Counters: %v", s.Counters))
	}
	if s.Dialogue != "" {
		out = append(out, fmt.Sprintf("Dialogue: %s (line %d)", s.Dialogue, s.DialogLine+1))
	}
	return out
}

func formatTrace(result types.Result) []string {
	var lines []string
	if result.Rule != "" {
		lines = append(lines, "[trace] Rule: "+result.Rule)
	}
	if len(result.Effects) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Effects: %d", len(result.Effects)))
		for _, e := range result.Effects {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Params))
		}
	}
	if len(result.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s", e.Type))
		}
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
