package daac

import "unicode/utf8"

// decodeRune decodes the code point at the start of b. Invalid UTF-8 decodes
// as a one-byte symbol that no pattern contains.
func decodeRune(b []byte) (rune, int) {
	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError && size <= 1 {
		return -1, 1
	}
	return r, size
}

// CharwiseFindIterator reports non-overlapping standard matches.
type CharwiseFindIterator[V Value] struct {
	a        *CharwiseAutomaton[V]
	haystack []byte
	pos      int
}

// Iter returns an iterator of non-overlapping standard matches.
// It panics unless the automaton was built with StandardMatch.
func (a *CharwiseAutomaton[V]) Iter(haystack []byte) *CharwiseFindIterator[V] {
	if !a.kind.isStandard() {
		panic("daac: Iter requires StandardMatch")
	}
	return &CharwiseFindIterator[V]{a: a, haystack: haystack}
}

// Next returns the next match, or false when the haystack is exhausted.
func (it *CharwiseFindIterator[V]) Next() (Match[V], bool) {
	a := it.a
	id := rootID
	for it.pos < len(it.haystack) {
		r, size := decodeRune(it.haystack[it.pos:])
		id = a.nextState(id, r)
		it.pos += size
		if p := a.states[id].outputPos; p != 0 {
			return a.match(p, it.pos), true
		}
	}
	return Match[V]{}, false
}

// CharwiseOverlappingIterator reports every occurrence of every pattern.
type CharwiseOverlappingIterator[V Value] struct {
	a        *CharwiseAutomaton[V]
	haystack []byte
	pos      int
	id       uint32
	pending  uint32
}

// IterOverlapping returns an iterator of overlapping matches.
// It panics unless the automaton was built with StandardMatch.
func (a *CharwiseAutomaton[V]) IterOverlapping(haystack []byte) *CharwiseOverlappingIterator[V] {
	if !a.kind.isStandard() {
		panic("daac: IterOverlapping requires StandardMatch")
	}
	return &CharwiseOverlappingIterator[V]{a: a, haystack: haystack}
}

// Next returns the next match, or false when the haystack is exhausted.
func (it *CharwiseOverlappingIterator[V]) Next() (Match[V], bool) {
	a := it.a
	if it.pending != 0 {
		m := a.match(it.pending, it.pos)
		it.pending = a.outputs[it.pending-1].parent
		return m, true
	}
	for it.pos < len(it.haystack) {
		r, size := decodeRune(it.haystack[it.pos:])
		it.id = a.nextState(it.id, r)
		it.pos += size
		if p := a.states[it.id].outputPos; p != 0 {
			it.pending = a.outputs[p-1].parent
			return a.match(p, it.pos), true
		}
	}
	return Match[V]{}, false
}

// CharwiseOverlappingNoSuffixIterator reports the longest match ending at
// each position.
type CharwiseOverlappingNoSuffixIterator[V Value] struct {
	a        *CharwiseAutomaton[V]
	haystack []byte
	pos      int
	id       uint32
}

// IterOverlappingNoSuffix returns an iterator of overlapping matches that
// skips the suffix matches ending at the same position.
// It panics unless the automaton was built with StandardMatch.
func (a *CharwiseAutomaton[V]) IterOverlappingNoSuffix(haystack []byte) *CharwiseOverlappingNoSuffixIterator[V] {
	if !a.kind.isStandard() {
		panic("daac: IterOverlappingNoSuffix requires StandardMatch")
	}
	return &CharwiseOverlappingNoSuffixIterator[V]{a: a, haystack: haystack}
}

// Next returns the next match, or false when the haystack is exhausted.
func (it *CharwiseOverlappingNoSuffixIterator[V]) Next() (Match[V], bool) {
	a := it.a
	for it.pos < len(it.haystack) {
		r, size := decodeRune(it.haystack[it.pos:])
		it.id = a.nextState(it.id, r)
		it.pos += size
		if p := a.states[it.id].outputPos; p != 0 {
			return a.match(p, it.pos), true
		}
	}
	return Match[V]{}, false
}

// CharwiseLeftmostIterator reports non-overlapping leftmost matches.
type CharwiseLeftmostIterator[V Value] struct {
	a        *CharwiseAutomaton[V]
	haystack []byte
	pos      int
}

// IterLeftmost returns an iterator of leftmost matches.
// It panics unless the automaton was built with LeftMostLongestMatch or
// LeftMostFirstMatch.
func (a *CharwiseAutomaton[V]) IterLeftmost(haystack []byte) *CharwiseLeftmostIterator[V] {
	if !a.kind.isLeftmost() {
		panic("daac: IterLeftmost requires LeftMostLongestMatch or LeftMostFirstMatch")
	}
	return &CharwiseLeftmostIterator[V]{a: a, haystack: haystack}
}

// Next returns the next match, or false when the haystack is exhausted.
func (it *CharwiseLeftmostIterator[V]) Next() (Match[V], bool) {
	a := it.a
	id := rootID
	var best leftmostBest
	for i := it.pos; i < len(it.haystack); {
		r, size := decodeRune(it.haystack[i:])
		id = a.nextStateLeftmost(id, r)
		i += size
		if id == rootID {
			if best.pos != 0 {
				it.pos = best.end
				return a.match(best.pos, best.end), true
			}
			continue
		}
		if p := a.states[id].outputPos; p != 0 {
			best.offer(p, a.outputs[p-1].length, i)
		}
	}
	it.pos = len(it.haystack)
	if best.pos != 0 {
		it.pos = best.end
		return a.match(best.pos, best.end), true
	}
	return Match[V]{}, false
}
