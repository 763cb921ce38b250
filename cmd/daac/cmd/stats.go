package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the size of a stored automaton",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, entry, err := loadAutomaton(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name:       %s\n", opts.name)
			fmt.Fprintf(out, "variant:    %s\n", variant(entry.Charwise))
			fmt.Fprintf(out, "kind:       %s\n", a.MatchKind())
			fmt.Fprintf(out, "patterns:   %d\n", entry.Patterns)
			fmt.Fprintf(out, "states:     %d\n", a.NumStates())
			fmt.Fprintf(out, "elements:   %d\n", a.NumElements())
			fmt.Fprintf(out, "heap bytes: %d\n", a.HeapBytes())
			fmt.Fprintf(out, "blob bytes: %d\n", len(entry.Blob))
			return nil
		},
	}
}
