package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBuildCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "build <dict>",
		Short: "Build an automaton from a dictionary and store it",
		Long:  "Reads a dictionary (.yaml/.yml list of {pattern, value}, otherwise one pattern per line), builds an automaton and stores it under --name.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, entry, err := buildEntry(opts, args[0])
			if err != nil {
				return err
			}
			if err := saveEntry(opts, entry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "built %s: %d patterns, %d states, %d bytes (%s, %s)\n",
				opts.name, entry.Patterns, a.NumStates(), len(entry.Blob), variant(entry.Charwise), entry.Kind)
			return nil
		},
	}
}
