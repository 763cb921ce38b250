package daac

import (
	"unicode/utf8"
	"unsafe"
)

// charState is one slot of the character-wise double array. Unused slots
// have check and fail set to the dead state.
type charState struct {
	base      uint32
	check     uint32
	fail      uint32
	outputPos uint32
}

// CharwiseAutomaton is an Aho-Corasick automaton over UTF-8 code points.
// Code points are mapped onto a dense alphabet before the transitions, which
// keeps the automaton small on multi-byte text. Matches are reported in
// byte offsets.
type CharwiseAutomaton[V Value] struct {
	states    []charState
	mapper    codeMapper
	outputs   []output[V]
	kind      MatchKind
	numStates uint32
}

// CharwiseBuilder builds character-wise automata.
type CharwiseBuilder[V Value] struct {
	kind MatchKind
	lim  limits
}

// NewCharwiseBuilder returns a builder with the given options.
func NewCharwiseBuilder[V Value](opts Opts) CharwiseBuilder[V] {
	return CharwiseBuilder[V]{kind: opts.MatchKind, lim: charLimits()}
}

// Build builds an automaton from patterns. Pattern i gets the value i.
func (b CharwiseBuilder[V]) Build(patterns []string) (*CharwiseAutomaton[V], error) {
	if len(patterns) == 0 {
		return nil, ErrEmptyPatternSet
	}
	pairs, err := indexedPairs[V](patterns)
	if err != nil {
		return nil, err
	}
	return b.BuildWithValues(pairs)
}

// BuildWithValues builds an automaton from pattern/value pairs. Every
// pattern must be valid UTF-8.
func (b CharwiseBuilder[V]) BuildWithValues(pairs []Pair[V]) (*CharwiseAutomaton[V], error) {
	if len(pairs) == 0 {
		return nil, ErrEmptyPatternSet
	}
	freqs := make(map[rune]uint32)
	for i, p := range pairs {
		if !utf8.ValidString(p.Pattern) {
			return nil, buildErrorf(InvalidPattern, "pattern %d is not valid UTF-8", i)
		}
		for _, r := range p.Pattern {
			freqs[r]++
		}
	}
	mapper := newCodeMapper(freqs)
	blockLen, ok := charBlockLen(mapper.alphabetSize())
	if !ok || blockLen > b.lim.maxSlots {
		return nil, buildErrorf(ScaleExceeded, "alphabet of %d code points", mapper.alphabetSize())
	}

	labels := func(pattern string, buf []uint32) []uint32 {
		for _, r := range pattern {
			c, _ := mapper.get(r)
			buf = append(buf, c)
		}
		return buf
	}
	n, err := compileNFA(pairs, b.kind, b.lim, labels)
	if err != nil {
		return nil, err
	}
	l, err := pack(n, blockLen)
	if err != nil {
		return nil, err
	}

	states := make([]charState, l.numSlots)
	for i := range states {
		states[i] = charState{check: deadID, fail: deadID}
	}
	for id := range n.states {
		if uint32(id) == deadID {
			continue
		}
		s := &n.states[id]
		slot := l.slotOf[id]
		st := &states[slot]
		st.base = l.baseOf[id]
		st.fail = l.slotOf[n.failOf(uint32(id))]
		st.outputPos = s.outputPos
		for _, tr := range s.trans {
			states[l.slotOf[tr.next]].check = slot
		}
	}

	return &CharwiseAutomaton[V]{
		states:    states,
		mapper:    mapper,
		outputs:   n.outputs,
		kind:      b.kind,
		numStates: n.numStates(),
	}, nil
}

// NewCharwise builds a standard character-wise automaton from patterns.
func NewCharwise[V Value](patterns []string) (*CharwiseAutomaton[V], error) {
	return NewCharwiseBuilder[V](Opts{}).Build(patterns)
}

// NewCharwiseWithValues builds a standard character-wise automaton from
// pattern/value pairs.
func NewCharwiseWithValues[V Value](pairs []Pair[V]) (*CharwiseAutomaton[V], error) {
	return NewCharwiseBuilder[V](Opts{}).BuildWithValues(pairs)
}

func (a *CharwiseAutomaton[V]) childIndex(id uint32, code uint32) (uint32, bool) {
	child := a.states[id].base ^ code
	if a.states[child].check == id {
		return child, true
	}
	return 0, false
}

// nextState maps r and follows failure links until a transition exists or
// the root is reached. Unmapped code points go straight to the root.
func (a *CharwiseAutomaton[V]) nextState(id uint32, r rune) uint32 {
	code, ok := a.mapper.get(r)
	if !ok {
		return rootID
	}
	for {
		if child, ok := a.childIndex(id, code); ok {
			return child
		}
		if id == rootID {
			return rootID
		}
		id = a.states[id].fail
	}
}

// nextStateLeftmost is nextState for leftmost kinds: reaching the dead state
// returns the root.
func (a *CharwiseAutomaton[V]) nextStateLeftmost(id uint32, r rune) uint32 {
	code, ok := a.mapper.get(r)
	if !ok {
		return rootID
	}
	for {
		if child, ok := a.childIndex(id, code); ok {
			return child
		}
		if id == rootID {
			return rootID
		}
		fail := a.states[id].fail
		if fail == deadID {
			return rootID
		}
		id = fail
	}
}

func (a *CharwiseAutomaton[V]) match(pos uint32, end int) Match[V] {
	o := &a.outputs[pos-1]
	return Match[V]{length: int(o.length), end: end, value: o.value}
}

// MatchKind returns the match semantics the automaton was built with.
func (a *CharwiseAutomaton[V]) MatchKind() MatchKind {
	return a.kind
}

// NumStates returns the number of trie states, including the root.
func (a *CharwiseAutomaton[V]) NumStates() int {
	return int(a.numStates)
}

// NumElements returns the number of slots of the double array.
func (a *CharwiseAutomaton[V]) NumElements() int {
	return len(a.states)
}

// HeapBytes returns the exact memory held by the state array, the code mapper
// and the output table.
func (a *CharwiseAutomaton[V]) HeapBytes() int {
	var o output[V]
	return len(a.states)*int(unsafe.Sizeof(charState{})) +
		a.mapper.heapBytes() +
		len(a.outputs)*int(unsafe.Sizeof(o))
}

// FindAll returns the matches of Iter for standard automata and of
// IterLeftmost for leftmost ones.
func (a *CharwiseAutomaton[V]) FindAll(haystack []byte) []Match[V] {
	var matches []Match[V]
	if a.kind.isLeftmost() {
		it := a.IterLeftmost(haystack)
		for m, ok := it.Next(); ok; m, ok = it.Next() {
			matches = append(matches, m)
		}
		return matches
	}
	it := a.Iter(haystack)
	for m, ok := it.Next(); ok; m, ok = it.Next() {
		matches = append(matches, m)
	}
	return matches
}

// FindAllOverlapping returns every occurrence of every pattern. Standard only.
func (a *CharwiseAutomaton[V]) FindAllOverlapping(haystack []byte) []Match[V] {
	var matches []Match[V]
	it := a.IterOverlapping(haystack)
	for m, ok := it.Next(); ok; m, ok = it.Next() {
		matches = append(matches, m)
	}
	return matches
}

// IsMatch reports whether any pattern occurs in haystack.
func (a *CharwiseAutomaton[V]) IsMatch(haystack []byte) bool {
	if a.kind.isLeftmost() {
		it := a.IterLeftmost(haystack)
		_, ok := it.Next()
		return ok
	}
	it := a.Iter(haystack)
	_, ok := it.Next()
	return ok
}
