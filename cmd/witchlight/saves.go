package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSavesCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "saves",
		Short:         "List saved games",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return failWith(exitCommandError, "opening saves", err)
			}
			defer store.Close()

			slots, err := store.List(cmd.Context())
			if err != nil {
				return failWith(exitCommandError, "listing saves", err)
			}
			if len(slots) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved games.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SLOT\tGAME\tTURN\tSAVED")
			for _, s := range slots {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.Name, s.Game, s.Turn, s.SavedAt.Local().Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:           "rm <slot>",
		Short:         "Delete a saved game",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return failWith(exitCommandError, "opening saves", err)
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return failWith(exitFailure, "deleting save", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", args[0])
			return nil
		},
	})
	return cmd
}
