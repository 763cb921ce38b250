package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/petar-dambovaliev/daac"
	"github.com/spf13/cobra"
)

const stdinName = "-"

func newFindCmd(opts *options) *cobra.Command {
	var overlapping, noSuffix bool
	findCmd := &cobra.Command{
		Use:   "find [file...]",
		Short: "Search files with a stored automaton",
		Long: "Prints one line per match as file:start:end:value:text, offsets in bytes. " +
			"Reads stdin when no file is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := loadAutomaton(opts)
			if err != nil {
				return err
			}
			if (overlapping || noSuffix) && a.MatchKind() != daac.StandardMatch {
				return fmt.Errorf("--overlapping and --no-suffix need a standard automaton, %s is %s", opts.name, a.MatchKind())
			}
			find := a.FindAll
			switch {
			case noSuffix:
				find = func(h []byte) []daac.Match[uint32] { return findNoSuffix(a, h) }
			case overlapping:
				find = a.FindAllOverlapping
			}

			out := bufio.NewWriter(cmd.OutOrStdout())
			defer out.Flush()
			if len(args) == 0 {
				args = []string{stdinName}
			}
			for _, name := range args {
				haystack, err := readInput(cmd, name)
				if err != nil {
					return err
				}
				for _, m := range find(haystack) {
					fmt.Fprintf(out, "%s:%d:%d:%d:%s\n", name, m.Start(), m.End(), m.Value(), haystack[m.Start():m.End()])
				}
			}
			return nil
		},
	}
	findCmd.Flags().BoolVar(&overlapping, "overlapping", false, "report every occurrence of every pattern")
	findCmd.Flags().BoolVar(&noSuffix, "no-suffix", false, "report only the longest match ending at each position")
	findCmd.MarkFlagsMutuallyExclusive("overlapping", "no-suffix")
	return findCmd
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == stdinName {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return b, nil
}
