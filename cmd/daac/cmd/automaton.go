package cmd

import (
	"errors"
	"fmt"

	"github.com/petar-dambovaliev/daac"
	"github.com/petar-dambovaliev/daac/internal/dict"
	"github.com/petar-dambovaliev/daac/internal/store"
)

// automaton is what the commands need from either variant.
type automaton interface {
	daac.Finder[uint32]
	FindAllOverlapping(haystack []byte) []daac.Match[uint32]
	MatchKind() daac.MatchKind
	NumStates() int
	NumElements() int
	HeapBytes() int
}

var (
	_ automaton = (*daac.Automaton[uint32])(nil)
	_ automaton = (*daac.CharwiseAutomaton[uint32])(nil)
)

// findNoSuffix returns the longest match ending at each position.
func findNoSuffix(a automaton, haystack []byte) []daac.Match[uint32] {
	var matches []daac.Match[uint32]
	switch a := a.(type) {
	case *daac.Automaton[uint32]:
		it := a.IterOverlappingNoSuffix(haystack)
		for m, ok := it.Next(); ok; m, ok = it.Next() {
			matches = append(matches, m)
		}
	case *daac.CharwiseAutomaton[uint32]:
		it := a.IterOverlappingNoSuffix(haystack)
		for m, ok := it.Next(); ok; m, ok = it.Next() {
			matches = append(matches, m)
		}
	}
	return matches
}

// buildEntry loads the dictionary at path and builds the automaton opts
// describe, ready to be stored.
func buildEntry(opts *options, path string) (automaton, store.Entry, error) {
	kind, err := opts.matchKind()
	if err != nil {
		return nil, store.Entry{}, err
	}
	pairs, err := dict.Load(path)
	if err != nil {
		return nil, store.Entry{}, err
	}

	entry := store.Entry{Charwise: opts.charwise, Kind: kind, Patterns: len(pairs)}
	var a automaton
	if opts.charwise {
		c, err := daac.NewCharwiseBuilder[uint32](daac.Opts{MatchKind: kind}).BuildWithValues(pairs)
		if err != nil {
			return nil, store.Entry{}, fmt.Errorf("build %s: %w", path, err)
		}
		entry.Blob = c.Serialize()
		a = c
	} else {
		b, err := daac.NewBuilder[uint32](daac.Opts{MatchKind: kind}).BuildWithValues(pairs)
		if err != nil {
			return nil, store.Entry{}, fmt.Errorf("build %s: %w", path, err)
		}
		entry.Blob = b.Serialize()
		a = b
	}
	return a, entry, nil
}

// saveEntry writes entry under opts.name. The database is held open only for
// the write so other commands can run between rebuilds.
func saveEntry(opts *options, entry store.Entry) error {
	s, err := store.Open(opts.db)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Put(opts.name, entry)
}

// loadAutomaton reads and validates the automaton stored under opts.name.
func loadAutomaton(opts *options) (automaton, store.Entry, error) {
	s, err := store.Open(opts.db)
	if err != nil {
		return nil, store.Entry{}, err
	}
	defer s.Close()

	entry, err := s.Get(opts.name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, store.Entry{}, fmt.Errorf("no automaton named %q in %s", opts.name, opts.db)
	}
	if err != nil {
		return nil, store.Entry{}, err
	}

	var a automaton
	var rest []byte
	if entry.Charwise {
		a, rest, err = daac.DeserializeCharwise[uint32](entry.Blob)
	} else {
		a, rest, err = daac.Deserialize[uint32](entry.Blob)
	}
	if err != nil {
		return nil, store.Entry{}, fmt.Errorf("%s: %w", opts.name, err)
	}
	if len(rest) != 0 {
		return nil, store.Entry{}, fmt.Errorf("%s: %d trailing bytes", opts.name, len(rest))
	}
	return a, entry, nil
}

func variant(charwise bool) string {
	if charwise {
		return "charwise"
	}
	return "bytewise"
}
