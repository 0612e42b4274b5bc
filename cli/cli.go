// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for line-based play and script playback.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/nathoo/witchlight/engine"
	"github.com/nathoo/witchlight/engine/inventory"
	"github.com/nathoo/witchlight/engine/save"
	"github.com/nathoo/witchlight/types"
)

const defaultSlot = "quicksave"

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	Store     save.Store
	In        io.Reader
	Out       io.Writer
	Log       *slog.Logger
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine and save store.
func New(eng *engine.Engine, store save.Store) *CLI {
	return &CLI{
		Engine: eng,
		Store:  store,
		In:     os.Stdin,
		Out:    os.Stdout,
		Log:    slog.New(slog.DiscardHandler),
	}
}

// Run shows the intro, then loops: prompt, input, dispatch, output. It
// returns when the input ends, /quit is entered or ctx is cancelled.
func (c *CLI) Run(ctx context.Context) error {
	c.printLines(c.Engine.Intro())

	scanner := bufio.NewScanner(c.In)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		// Enter only matters while someone is talking.
		if input == "" && c.Engine.Dialogue() == nil {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(ctx, input) {
				return nil
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else if input != "" {
			c.lastCmd = input
		}

		result := c.Engine.Step(input)
		c.printLines(result.Output)
		if c.Trace {
			c.printTrace(result)
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true
	case "/save":
		c.cmdSave(ctx, arg)
	case "/load":
		c.cmdLoad(ctx, arg)
	case "/saves":
		c.cmdSaves(ctx)
	case "/new":
		c.Engine.NewGame()
		c.printSystem("New game started.")
		c.printLines(c.Engine.Intro())
	case "/help":
		c.cmdHelp()
	case "/state":
		c.cmdState()
	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}
	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
	return false
}

func (c *CLI) cmdSave(ctx context.Context, name string) {
	if name == "" {
		name = defaultSlot
	}
	data, err := save.Save(c.Engine.State, c.Engine.Defs)
	if err == nil {
		err = c.Store.Save(ctx, name, data)
	}
	if err != nil {
		c.Log.Warn("save failed", "slot", name, "err", err)
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.Log.Info("game saved", "slot", name, "turn", c.Engine.State.TurnCount)
	c.printSystem(fmt.Sprintf("Game saved to %s.", name))
}

func (c *CLI) cmdLoad(ctx context.Context, name string) {
	if name == "" {
		name = defaultSlot
	}
	data, err := c.Store.Load(ctx, name)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	sd, err := save.Load(data)
	if err == nil {
		err = c.Engine.Restore(sd)
	}
	if err != nil {
		c.Log.Warn("load failed", "slot", name, "err", err)
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game loaded from %s (turn %d).", name, sd.Turn))
	c.printLines(c.Engine.Look())
	if line := c.Engine.Speech(); line != "" {
		c.printLine(line)
	}
}

func (c *CLI) cmdSaves(ctx context.Context) {
	slots, err := c.Store.List(ctx)
	if err != nil {
		c.printSystem(fmt.Sprintf("Listing saves failed: %v", err))
		return
	}
	if len(slots) == 0 {
		c.printSystem("No saved games.")
		return
	}
	for _, s := range slots {
		c.printSystem(fmt.Sprintf("%s  %s  turn %d  %s", s.Name, s.Game, s.Turn, s.SavedAt.Format("2006-01-02 15:04")))
	}
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
	"  look (l)                Describe the room",
	"  examine <thing> (x)     Look closely at something",
	"  go <dir>                Move (or just type n/s/e/w/u/d)",
	"  take <thing>            Pick up, harvest or collect",
	"  drop <item>             Put something down",
	"  use <cauldron>          Stand over a cauldron",
	"    add/remove <item>, clear, brew, close",
	"  talk <npc>              Talk to someone",
	"    enter continues, 1-9 picks a reply, skip finishes a line",
	"  clues / read <clue>     Review the clue board",
	"  next                    Turn the page of a clue",
	"  set <clock> to HH:MM    Set a clock",
	"  inventory (i)           Check your backpack",
	"  wait (z)                Let time pass",
	"  again (g)               Repeat your last command",
}

func (c *CLI) cmdHelp() {
	c.printLines(helpText)
}

func (c *CLI) cmdState() {
	s := c.Engine.State
	c.printSystem(fmt.Sprintf("Turn: %d", s.TurnCount))
	c.printSystem(fmt.Sprintf("Location: %s", s.Player.Location))
	c.printSystem(fmt.Sprintf("Backpack: %v (%d free)", inventory.Items(s.Player.Backpack), inventory.Free(s.Player.Backpack)))
	c.printSystem(fmt.Sprintf("Clue board: %v", inventory.Items(s.Player.ClueBoard)))
	if len(s.Flags) > 0 {
		c.printSystem(fmt.Sprintf("Flags: %v", s.Flags))
	}
	if len(s.Counters) > 0 {
		c.printSystem(fmt.Sprintf("Counters: %v", s.Counters))
	}
	if solved := trueKeys(s.Puzzles); len(solved) > 0 {
		c.printSystem(fmt.Sprintf("Solved: %v", solved))
	}
	if s.Dialogue != "" {
		c.printSystem(fmt.Sprintf("Dialogue: %s (line %d)", s.Dialogue, s.DialogLine+1))
	}
}

func (c *CLI) printTrace(result types.Result) {
	if result.Rule != "" {
		c.printSystem(fmt.Sprintf("[trace] Rule: %s", result.Rule))
	}
	if len(result.Effects) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Effects: %d", len(result.Effects)))
		for _, e := range result.Effects {
			c.printSystem(fmt.Sprintf("[trace]   %s %v", e.Type, e.Params))
		}
	}
	if len(result.Events) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			c.printSystem(fmt.Sprintf("[trace]   %s", e.Type))
		}
	}
}

func trueKeys(m map[string]bool) []string {
	var keys []string
	for k, v := range m {
		if v {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

func (c *CLI) printLines(lines []string) {
	for _, line := range lines {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
