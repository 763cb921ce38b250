package cmd

import (
	"errors"
	"fmt"

	"github.com/petar-dambovaliev/daac/internal/store"
	"github.com/spf13/cobra"
)

func newRemoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Remove a stored automaton",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(opts.db)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.Delete(args[0]); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("no automaton named %q in %s", args[0], opts.db)
				}
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "removed %s\n", args[0])
			return nil
		},
	}
}
