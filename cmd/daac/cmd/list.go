package cmd

import (
	"fmt"

	"github.com/petar-dambovaliev/daac/internal/store"
	"github.com/spf13/cobra"
)

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored automata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(opts.db)
			if err != nil {
				return err
			}
			defer s.Close()
			infos, err := s.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(infos) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no automata in %s\n", opts.db)
				return nil
			}
			for _, info := range infos {
				fmt.Fprintf(out, "%-20s %-8s %-16s %8d patterns %10d bytes\n",
					info.Name, variant(info.Charwise), info.Kind, info.Patterns, info.Size)
			}
			return nil
		},
	}
}
