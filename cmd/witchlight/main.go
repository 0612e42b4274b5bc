// Witchlight plays cozy witch adventures written as Lua game directories.
//
// Usage:
//
//	witchlight [game_dir]            play (full-screen UI on a terminal)
//	witchlight play --cli game_dir   play line by line
//	witchlight check game_dir        load and report validation warnings
//	witchlight test walkthrough.yaml run scripted walkthroughs
//	witchlight saves                 list saved games
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(exitCode(err))
	}
}
