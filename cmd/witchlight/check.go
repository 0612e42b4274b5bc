package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nathoo/witchlight/loader"
)

func newCheckCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <game_dir>",
		Short: "Load a game and report problems",
		Long: `Load a game directory without playing it.

Errors (missing rooms, unknown items in recipes, bad helper arguments)
fail the check. Warnings (items without an icon, unreachable recipes,
dangling locations) are listed but do not.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args[0])
		},
	}
}

func runCheck(cmd *cobra.Command, opts *rootOptions, dir string) error {
	out := cmd.OutOrStdout()
	log, closeLog, err := opts.openLogger(dir)
	if err != nil {
		return failWith(exitCommandError, "opening log", err)
	}
	defer closeLog()

	defs, warnings, err := loader.Load(dir, loader.WithLogger(log))
	var ve *loader.ValidationError
	if errors.As(err, &ve) {
		for _, e := range ve.Errors {
			fmt.Fprintf(out, "error: %s\n", e)
		}
		for _, w := range ve.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		return failWith(exitFailure, fmt.Sprintf("%s has %d error(s)", dir, len(ve.Errors)), nil)
	}
	if err != nil {
		return failWith(exitCommandError, "loading game", err)
	}

	for _, w := range warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	fmt.Fprintf(out, "ok: %s (%d rooms, %d entities, %d recipes, %d dialogues, %d warning(s))\n",
		titleLine(defs.Game), len(defs.Rooms), len(defs.Entities), len(defs.Recipes), len(defs.Dialogues), len(warnings))
	return nil
}
