package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/petar-dambovaliev/daac"
	"github.com/spf13/cobra"
)

const defaultDB = "daac.db"

// options are the persistent flags shared by every command.
type options struct {
	db       string
	name     string
	kind     string
	charwise bool
}

func (o *options) matchKind() (daac.MatchKind, error) {
	k, err := daac.ParseMatchKind(o.kind)
	if err != nil {
		return 0, fmt.Errorf("--kind: %w", err)
	}
	return k, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "daac",
		Short:         "daac: double-array Aho-Corasick multi-pattern search",
		Long:          "Build automata from pattern dictionaries, keep them in a local database and search files with them.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	db := os.Getenv("DAAC_DB")
	if db == "" {
		db = defaultDB
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.db, "db", db, "automaton database (env DAAC_DB)")
	pf.StringVar(&opts.name, "name", "default", "automaton name")
	pf.StringVar(&opts.kind, "kind", daac.StandardMatch.String(), "match kind: standard, leftmost-longest or leftmost-first")
	pf.BoolVar(&opts.charwise, "charwise", false, "build a character-wise automaton")

	rootCmd.AddCommand(newBuildCmd(opts))
	rootCmd.AddCommand(newFindCmd(opts))
	rootCmd.AddCommand(newStatsCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newRemoveCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	return rootCmd
}

// ExecuteContext runs the root command. Errors are printed to stderr.
func ExecuteContext(ctx context.Context) error {
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "error: %v\n", err)
	}
	return err
}
