package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nathoo/witchlight/config"
	"github.com/nathoo/witchlight/engine/save"
	"github.com/nathoo/witchlight/engine/save/sqlite"
	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/loader"
	"github.com/nathoo/witchlight/logger"
)

// rootOptions holds the persistent flags and the resolved config.
type rootOptions struct {
	envFile     string
	saveDir     string
	saveBackend string
	saveDB      string
	logLevel    string
	logFormat   string
	logFile     string
	typingSpeed time.Duration

	cfg *config.Config
}

func newRootCommand() *cobra.Command {
	return buildRoot(&rootOptions{})
}

func buildRoot(opts *rootOptions) *cobra.Command {
	play := &playOptions{rootOptions: opts}

	cmd := &cobra.Command{
		Use:     "witchlight [game_dir]",
		Short:   "Play witchy adventure games written in Lua",
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:    cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runPlay(cmd, play, args[0])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.envFile, "env-file", ".env", "dotenv file to read settings from")
	pf.StringVar(&opts.saveDir, "save-dir", "", "directory for JSON save files (WITCHLIGHT_SAVE_DIR)")
	pf.StringVar(&opts.saveBackend, "save-backend", "", "save backend: file or sqlite (WITCHLIGHT_SAVE_BACKEND)")
	pf.StringVar(&opts.saveDB, "save-db", "", "SQLite database for saves (WITCHLIGHT_SAVE_DB)")
	pf.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (WITCHLIGHT_LOG_LEVEL)")
	pf.StringVar(&opts.logFormat, "log-format", "", "text or json (WITCHLIGHT_LOG_FORMAT)")
	pf.StringVar(&opts.logFile, "log-file", "", "log file; logging is off without one (WITCHLIGHT_LOG_FILE)")
	pf.DurationVar(&opts.typingSpeed, "typing-speed", 0, "delay per revealed letter in dialogue (WITCHLIGHT_TYPING_SPEED)")

	play.bindFlags(cmd)
	cmd.AddCommand(newPlayCommand(play))
	cmd.AddCommand(newCheckCommand(opts))
	cmd.AddCommand(newTestCommand(opts))
	cmd.AddCommand(newSavesCommand(opts))
	return cmd
}

// resolve loads the config and lets explicitly set flags override it.
func (o *rootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return failWith(exitCommandError, "configuration", err)
	}
	flags := cmd.Flags()
	override := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	override("save-dir", &cfg.SaveDir, o.saveDir)
	override("save-backend", &cfg.SaveBackend, o.saveBackend)
	override("save-db", &cfg.SaveDB, o.saveDB)
	override("log-level", &cfg.LogLevel, o.logLevel)
	override("log-format", &cfg.LogFormat, o.logFormat)
	override("log-file", &cfg.LogFile, o.logFile)
	if flags.Changed("typing-speed") {
		cfg.TypingSpeed = o.typingSpeed
	}
	if err := cfg.Validate(); err != nil {
		return failWith(exitCommandError, "configuration", err)
	}
	o.cfg = cfg
	return nil
}

func (o *rootOptions) openLogger(game string) (*slog.Logger, func() error, error) {
	return logger.Open(logger.Config{
		Level:   o.cfg.LogLevel,
		Format:  o.cfg.LogFormat,
		File:    o.cfg.LogFile,
		Game:    game,
		Version: version,
	})
}

// openStore opens the configured save backend.
func (o *rootOptions) openStore() (save.Store, error) {
	if o.cfg.SaveBackend == config.BackendSQLite {
		if err := os.MkdirAll(filepath.Dir(o.cfg.SaveDB), 0o755); err != nil {
			return nil, fmt.Errorf("create save db dir: %w", err)
		}
		return sqlite.Open(o.cfg.SaveDB)
	}
	return save.NewFileStore(o.cfg.SaveDir)
}

// loadGame loads a game directory, logging its warnings.
func loadGame(dir string, log *slog.Logger) (*state.Defs, []string, error) {
	defs, warnings, err := loader.Load(dir, loader.WithLogger(log))
	if err != nil {
		return nil, nil, failWith(exitCommandError, "loading game", err)
	}
	return defs, warnings, nil
}
