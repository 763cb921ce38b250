package daac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileBytes(t *testing.T, kind MatchKind, patterns ...string) *nfa[uint32] {
	t.Helper()
	pairs, err := indexedPairs[uint32](patterns)
	require.NoError(t, err)
	n, err := compileNFA(pairs, kind, byteLimits(), byteLabels)
	require.NoError(t, err)
	return n
}

func stateOf(t *testing.T, n *nfa[uint32], path string) uint32 {
	t.Helper()
	id := rootID
	for i := 0; i < len(path); i++ {
		next, ok := n.states[id].trans.nextState(uint32(path[i]))
		require.True(t, ok, "no state for %q", path[:i+1])
		id = next
	}
	return id
}

func chainOf(n *nfa[uint32], id uint32) []uint32 {
	var values []uint32
	for p := n.states[id].outputPos; p != 0; p = n.outputs[p-1].parent {
		values = append(values, n.outputs[p-1].value)
	}
	return values
}

func TestTransitionsSorted(t *testing.T) {
	var tr transitions
	for _, l := range []uint32{5, 1, 9, 3, 1} {
		tr.setNextState(l, l*10)
	}
	require.Len(t, tr, 4)
	for i := 1; i < len(tr); i++ {
		assert.Less(t, tr[i-1].label, tr[i].label)
	}
	next, ok := tr.nextState(9)
	assert.True(t, ok)
	assert.Equal(t, uint32(90), next)
	_, ok = tr.nextState(4)
	assert.False(t, ok)
}

func TestNFAFailureLinks(t *testing.T) {
	n := compileBytes(t, StandardMatch, "he", "she", "his", "hers")

	assert.Equal(t, stateOf(t, n, "he"), n.states[stateOf(t, n, "she")].fail)
	assert.Equal(t, stateOf(t, n, "h"), n.states[stateOf(t, n, "sh")].fail)
	assert.Equal(t, stateOf(t, n, "s"), n.states[stateOf(t, n, "his")].fail)
	assert.Equal(t, stateOf(t, n, "s"), n.states[stateOf(t, n, "hers")].fail)
	assert.Equal(t, rootID, n.states[stateOf(t, n, "her")].fail)
	assert.Equal(t, uint32(3), n.states[stateOf(t, n, "she")].depth)

	assert.Equal(t, []uint32{1, 0}, chainOf(n, stateOf(t, n, "she")))
	assert.Equal(t, []uint32{2}, chainOf(n, stateOf(t, n, "his")))
	assert.Empty(t, chainOf(n, stateOf(t, n, "her")))
	assert.Equal(t, uint32(len(n.states)-1), n.numStates())
	assert.Len(t, n.order, len(n.states)-2)
}

func TestNFAOutputsShared(t *testing.T) {
	n := compileBytes(t, StandardMatch, "a", "ba", "cba")
	// one record per pattern, inherited matches are linked, not copied
	assert.Len(t, n.outputs, 3)
	assert.Equal(t, []uint32{2, 1, 0}, chainOf(n, stateOf(t, n, "cba")))
}

func TestNFALeftmostDeadFailures(t *testing.T) {
	n := compileBytes(t, LeftMostLongestMatch, "abcd", "bcx", "c")

	// abc carries the inherited match "c" starting at offset 2; falling back
	// to "bc" drops one symbol and keeps it.
	abc := stateOf(t, n, "abc")
	assert.False(t, n.states[abc].deadFail)
	assert.Equal(t, stateOf(t, n, "bc"), n.failOf(abc))

	// "c" itself is a match at offset 0 of its own path.
	assert.True(t, n.states[stateOf(t, n, "c")].deadFail)
	assert.Equal(t, deadID, n.failOf(stateOf(t, n, "c")))

	// states without any match seen keep their failure links
	assert.False(t, n.states[stateOf(t, n, "ab")].deadFail)

	std := compileBytes(t, StandardMatch, "abcd", "bcx", "c")
	for id := range std.states {
		assert.False(t, std.states[id].deadFail)
	}
}

func TestNFALeftmostFirstShadowing(t *testing.T) {
	n := compileBytes(t, LeftMostFirstMatch, "ab", "abcd", "a", "b")
	_, ok := n.states[stateOf(t, n, "ab")].trans.nextState('c')
	assert.False(t, ok, "abcd has the earlier pattern ab as a prefix")
	assert.Contains(t, n.shadowed, "abcd")
	assert.NotZero(t, n.states[stateOf(t, n, "a")].terminal)

	l := compileBytes(t, LeftMostLongestMatch, "ab", "abcd")
	stateOf(t, l, "abcd")
	assert.Nil(t, l.shadowed)
}

func TestNFAStateLimit(t *testing.T) {
	pairs := []Pair[uint32]{{"abcdef", 0}}
	lim := byteLimits()
	lim.maxSlots = 8
	_, err := compileNFA(pairs, StandardMatch, lim, byteLabels)
	assert.NoError(t, err)

	lim.maxSlots = 7
	_, err = compileNFA(pairs, StandardMatch, lim, byteLabels)
	assert.ErrorIs(t, err, ErrScaleExceeded)
}

func TestSymbolEnds(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, symbolEnds("abc", 3, nil))
	assert.Equal(t, []int{1, 3, 6, 10}, symbolEnds("aé東😀", 4, nil))
	assert.Equal(t, []int{1, 2}, symbolEnds("é", 2, nil), "one symbol per byte")
}

func TestNFALeftmostWidthsInBytes(t *testing.T) {
	runeLabels := func(pattern string, buf []uint32) []uint32 {
		for _, r := range pattern {
			buf = append(buf, uint32(r))
		}
		return buf
	}
	pairs, err := indexedPairs[uint32]([]string{"é東", "東éé😀", "é"})
	require.NoError(t, err)
	n, err := compileNFA(pairs, LeftMostLongestMatch, charLimits(), runeLabels)
	require.NoError(t, err)

	id := rootID
	for _, r := range "東é" {
		next, ok := n.states[id].trans.nextState(uint32(r))
		require.True(t, ok)
		id = next
	}
	s := n.states[id]
	assert.Equal(t, uint32(2), s.depth)
	assert.Equal(t, uint32(5), s.width)
	assert.Equal(t, uint32(2), n.states[s.fail].width)
	// the "é" match starts at byte 3, which the failure link keeps
	assert.False(t, s.deadFail)
	assert.Equal(t, s.fail, n.failOf(id))
}
