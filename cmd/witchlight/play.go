package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nathoo/witchlight/cli"
	"github.com/nathoo/witchlight/engine"
	"github.com/nathoo/witchlight/tui"
	"github.com/nathoo/witchlight/types"
)

type playOptions struct {
	*rootOptions
	plain  bool
	script string
	echo   bool
	trace  bool
}

func (o *playOptions) bindFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&o.plain, "cli", false, "play line by line instead of the full-screen UI")
	f.StringVar(&o.script, "script", "", "read commands from a file (implies --cli and --echo)")
	f.BoolVar(&o.echo, "echo", false, "echo each command after the prompt")
	f.BoolVar(&o.trace, "trace", false, "print matched rules, effects and events after each command")
}

func newPlayCommand(opts *playOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <game_dir>",
		Short: "Play a game",
		Long: `Play a game directory.

The full-screen UI is used when stdout is a terminal. Pipes, --cli and
--script get the line-based interface.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, opts, args[0])
		},
	}
	opts.bindFlags(cmd)
	return cmd
}

func runPlay(cmd *cobra.Command, opts *playOptions, dir string) error {
	log, closeLog, err := opts.openLogger(filepath.Base(dir))
	if err != nil {
		return failWith(exitCommandError, "opening log", err)
	}
	defer closeLog()

	defs, _, err := loadGame(dir, log)
	if err != nil {
		return err
	}
	store, err := opts.openStore()
	if err != nil {
		return failWith(exitCommandError, "opening saves", err)
	}
	defer store.Close()

	eng := engine.New(defs, engine.WithLogger(log), engine.WithTypingSpeed(opts.cfg.TypingSpeed))
	out := cmd.OutOrStdout()

	if opts.script == "" && !opts.plain && isTerminal(out) {
		return tui.Run(cmd.Context(), eng, store, log)
	}

	c := cli.New(eng, store)
	c.Out = out
	c.Log = log
	c.Trace = opts.trace
	c.EchoInput = opts.echo
	if opts.script != "" {
		f, err := os.Open(opts.script)
		if err != nil {
			return failWith(exitCommandError, "opening script", err)
		}
		defer f.Close()
		c.In = f
		c.EchoInput = true
	} else {
		c.In = cmd.InOrStdin()
	}

	fmt.Fprintf(out, "%s\n\n", titleLine(defs.Game))
	return c.Run(cmd.Context())
}

func titleLine(g types.GameDef) string {
	s := g.Title
	if g.Version != "" {
		s += " v" + g.Version
	}
	if g.Author != "" {
		s += " by " + g.Author
	}
	return s
}

// isTerminal reports whether w is a character device.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
