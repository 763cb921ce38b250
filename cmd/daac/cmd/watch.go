package cmd

import (
	"fmt"

	"github.com/petar-dambovaliev/daac/internal/watch"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <dict>",
		Short: "Rebuild and store an automaton whenever its dictionary changes",
		Long:  "Builds once, then rebuilds on every change to the dictionary until interrupted. Failed rebuilds keep the previous automaton.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			stderr := cmd.ErrOrStderr()
			rebuild := func() error {
				a, entry, err := buildEntry(opts, path)
				if err != nil {
					return err
				}
				if err := saveEntry(opts, entry); err != nil {
					return err
				}
				fmt.Fprintf(stderr, "built %s: %d patterns, %d states\n", opts.name, entry.Patterns, a.NumStates())
				return nil
			}
			if err := rebuild(); err != nil {
				return err
			}

			w, err := watch.New()
			if err != nil {
				return fmt.Errorf("watcher: %w", err)
			}
			defer w.Stop()

			changes := make(chan struct{}, 1)
			err = w.Watch(path, func(string) {
				select {
				case changes <- struct{}{}:
				default:
				}
			})
			if err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			fmt.Fprintf(stderr, "watching %s\n", path)

			ctx := cmd.Context()
			for {
				select {
				case <-changes:
					if err := rebuild(); err != nil {
						fmt.Fprintf(stderr, "warning: rebuild failed: %v\n", err)
					}
				case <-ctx.Done():
					return nil
				}
			}
		},
	}
}
