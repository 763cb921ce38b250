// Package daac implements the Aho-Corasick algorithm on a compact
// double-array trie.
//
// An automaton is built once from a fixed set of patterns and is immutable
// afterwards; it finds every occurrence of the patterns in a haystack in time
// linear in the haystack, independent of the number of patterns. Transitions
// are O(1) array lookups using XOR addressing (child = base ^ label), and each
// state of the byte-wise automaton takes 12 bytes.
//
// Two variants share the same construction and traversal design:
//
//   - Automaton reads the haystack byte by byte.
//   - CharwiseAutomaton decodes UTF-8 and maps code points onto a dense
//     alphabet first, which gives fewer states and faster scans on multi-byte
//     text.
//
// Both report byte offsets. The match semantics are chosen at construction
// with Opts.MatchKind and decide which iterators may be used.
package daac

import "math"

// Value is the type of the value attached to each pattern.
type Value interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Pair is a pattern with a caller-supplied value.
type Pair[V Value] struct {
	Pattern string
	Value   V
}

// MatchKind selects the match semantics of an automaton.
type MatchKind uint8

const (
	// Use standard match semantics, which support overlapping matches. When
	// used with non-overlapping matches, matches are reported as they are seen.
	StandardMatch MatchKind = iota
	// Use leftmost-longest match semantics, which reports leftmost matches.
	// When there are multiple possible leftmost matches, the longest match is chosen.
	LeftMostLongestMatch
	// Use leftmost-first match semantics, which reports leftmost matches.
	// When there are multiple possible leftmost matches, the match
	// corresponding to the pattern that appeared earlier when constructing
	// the automaton is reported.
	LeftMostFirstMatch
)

func (m MatchKind) isStandard() bool {
	return m == StandardMatch
}

func (m MatchKind) isLeftmost() bool {
	return m == LeftMostFirstMatch || m == LeftMostLongestMatch
}

func (m MatchKind) isLeftmostFirst() bool {
	return m == LeftMostFirstMatch
}

func (m MatchKind) String() string {
	switch m {
	case StandardMatch:
		return "standard"
	case LeftMostLongestMatch:
		return "leftmost-longest"
	case LeftMostFirstMatch:
		return "leftmost-first"
	}
	return "unknown"
}

// ParseMatchKind parses the names produced by MatchKind.String.
func ParseMatchKind(s string) (MatchKind, error) {
	switch s {
	case "standard":
		return StandardMatch, nil
	case "leftmost-longest":
		return LeftMostLongestMatch, nil
	case "leftmost-first":
		return LeftMostFirstMatch, nil
	}
	return 0, buildErrorf(InvalidData, "unknown match kind %q", s)
}

// matchKindFromByte decodes a serialized tag. Unknown tags decode as standard.
func matchKindFromByte(b byte) MatchKind {
	switch b {
	case 1:
		return LeftMostLongestMatch
	case 2:
		return LeftMostFirstMatch
	}
	return StandardMatch
}

// A representation of a match reported by an automaton.
//
// A match has the value of the pattern that matched, along with the start and
// end byte offsets of the match in the haystack.
type Match[V Value] struct {
	length int
	end    int
	value  V
}

// Value returns the value associated with the matched pattern.
func (m Match[V]) Value() V {
	return m.value
}

// End gives the offset just past the last byte of this match inside the haystack
func (m Match[V]) End() int {
	return m.end
}

// Start gives the offset of the first byte of this match inside the haystack
func (m Match[V]) Start() int {
	return m.end - m.length
}

// Len is the length of the match in bytes.
func (m Match[V]) Len() int {
	return m.length
}

// Finder is implemented by both automaton variants.
type Finder[V Value] interface {
	FindAll(haystack []byte) []Match[V]
}

// make sure both automata implement the Finder interface
var (
	_ Finder[uint32] = (*Automaton[uint32])(nil)
	_ Finder[uint32] = (*CharwiseAutomaton[uint32])(nil)
)

// Opts defines a set of options applied before the patterns are built
type Opts struct {
	MatchKind MatchKind
}

// limits bounds the size of an automaton under construction. The defaults are
// the widths of the packed fields; tests lower them.
type limits struct {
	maxSlots   uint32
	maxOutputs uint32
}

func byteLimits() limits {
	return limits{maxSlots: math.MaxUint32, maxOutputs: u24Max}
}

func charLimits() limits {
	return limits{maxSlots: math.MaxUint32, maxOutputs: math.MaxUint32 - 1}
}

// valueFromIndex converts an automatically assigned pattern index to V.
func valueFromIndex[V Value](i int) (V, bool) {
	v := V(i)
	if v < 0 || uint64(v) != uint64(i) {
		return 0, false
	}
	return v, true
}

func indexedPairs[V Value](patterns []string) ([]Pair[V], error) {
	pairs := make([]Pair[V], len(patterns))
	for i, pat := range patterns {
		v, ok := valueFromIndex[V](i)
		if !ok {
			return nil, &BuildError{
				Kind:    ValueOutOfRange,
				Message: ErrValueOutOfRange.Message,
				Cause:   buildErrorf(ValueOutOfRange, "index %d", i),
			}
		}
		pairs[i] = Pair[V]{Pattern: pat, Value: v}
	}
	return pairs, nil
}

// output is one record of the shared output table. parent is the 1-based
// position of the next record in the chain, 0 at the end.
type output[V Value] struct {
	value  V
	length uint32
	parent uint32
}
