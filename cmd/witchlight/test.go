package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nathoo/witchlight/harness"
)

type testOptions struct {
	*rootOptions
	filter     string
	transcript bool
}

func newTestCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &testOptions{rootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "test <walkthrough.yaml|dir>...",
		Short: "Run scripted walkthroughs",
		Long: `Play walkthrough files through a fresh game and check what each
step prints and the state the game ends in.

Directories are searched for .yaml and .yml files.

Exit codes:
  0 - all walkthroughs passed
  1 - one or more walkthroughs failed
  2 - a walkthrough or its game could not be loaded`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWalkthroughs(cmd, opts, args)
		},
	}
	cmd.Flags().StringVar(&opts.filter, "filter", "", "only run walkthroughs whose file name matches this glob")
	cmd.Flags().BoolVar(&opts.transcript, "transcript", false, "print the transcript of each walkthrough")
	return cmd
}

func runWalkthroughs(cmd *cobra.Command, opts *testOptions, args []string) error {
	out := cmd.OutOrStdout()
	files, err := findWalkthroughs(args, opts.filter)
	if err != nil {
		return failWith(exitCommandError, "finding walkthroughs", err)
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "No walkthroughs found.")
		return nil
	}

	log, closeLog, err := opts.openLogger("")
	if err != nil {
		return failWith(exitCommandError, "opening log", err)
	}
	defer closeLog()

	failed := 0
	for _, f := range files {
		rep, err := harness.RunFile(f, log)
		if err != nil {
			return failWith(exitCommandError, f, err)
		}
		if opts.transcript {
			fmt.Fprint(out, rep.Transcript)
			fmt.Fprintln(out)
		}
		if rep.Passed() {
			fmt.Fprintf(out, "PASS %s\n", rep.Scenario)
			continue
		}
		failed++
		fmt.Fprintf(out, "FAIL %s\n", rep.Scenario)
		for _, fl := range rep.Failures {
			fmt.Fprintf(out, "  %s\n", fl)
		}
	}

	fmt.Fprintf(out, "\n%d passed, %d failed\n", len(files)-failed, failed)
	if failed > 0 {
		return failWith(exitFailure, fmt.Sprintf("%d walkthrough(s) failed", failed), nil)
	}
	return nil
}

// findWalkthroughs expands directories into their YAML files, keeping
// explicitly named files as given.
func findWalkthroughs(args []string, filter string) ([]string, error) {
	var files []string
	keep := func(path string) (bool, error) {
		if filter == "" {
			return true, nil
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		ok, err := filepath.Match(filter, name)
		if err != nil {
			return false, fmt.Errorf("invalid filter pattern: %w", err)
		}
		return ok, nil
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if ok, err := keep(arg); err != nil {
				return nil, err
			} else if ok {
				files = append(files, arg)
			}
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			if ext := filepath.Ext(path); ext != ".yaml" && ext != ".yml" {
				return nil
			}
			ok, err := keep(path)
			if ok {
				files = append(files, path)
			}
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
