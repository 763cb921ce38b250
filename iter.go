package daac

// FindIterator reports non-overlapping matches with standard semantics: the
// first output of the first state that has one, after which the scan starts
// over from the root.
type FindIterator[V Value] struct {
	a        *Automaton[V]
	haystack []byte
	pos      int
	skipper  skipper
}

// Iter returns an iterator of non-overlapping standard matches.
// It panics unless the automaton was built with StandardMatch.
func (a *Automaton[V]) Iter(haystack []byte) *FindIterator[V] {
	if !a.kind.isStandard() {
		panic("daac: Iter requires StandardMatch")
	}
	return &FindIterator[V]{
		a:        a,
		haystack: haystack,
		skipper:  newSkipper(a.prefil, a.maxLen),
	}
}

// Next returns the next match, or false when the haystack is exhausted.
func (it *FindIterator[V]) Next() (Match[V], bool) {
	a := it.a
	id := rootID
	for it.pos < len(it.haystack) {
		if id == rootID {
			it.pos = it.skipper.skip(it.haystack, it.pos)
			if it.pos >= len(it.haystack) {
				break
			}
		}
		id = a.nextState(id, it.haystack[it.pos])
		it.pos++
		if p := a.outputPos(id); p != 0 {
			return a.match(p, it.pos), true
		}
	}
	return Match[V]{}, false
}

// OverlappingIterator reports every occurrence of every pattern, ordered by
// end position and, at one position, longest first.
type OverlappingIterator[V Value] struct {
	a        *Automaton[V]
	haystack []byte
	pos      int
	id       uint32
	// pending is the rest of the output chain at pos, 0 when drained.
	pending  uint32
	skipper  skipper
}

// IterOverlapping returns an iterator of overlapping matches.
// It panics unless the automaton was built with StandardMatch.
func (a *Automaton[V]) IterOverlapping(haystack []byte) *OverlappingIterator[V] {
	if !a.kind.isStandard() {
		panic("daac: IterOverlapping requires StandardMatch")
	}
	return &OverlappingIterator[V]{
		a:        a,
		haystack: haystack,
		skipper:  newSkipper(a.prefil, a.maxLen),
	}
}

// Next returns the next match, or false when the haystack is exhausted.
func (it *OverlappingIterator[V]) Next() (Match[V], bool) {
	a := it.a
	if it.pending != 0 {
		m := a.match(it.pending, it.pos)
		it.pending = a.outputs[it.pending-1].parent
		return m, true
	}
	for it.pos < len(it.haystack) {
		if it.id == rootID {
			it.pos = it.skipper.skip(it.haystack, it.pos)
			if it.pos >= len(it.haystack) {
				break
			}
		}
		it.id = a.nextState(it.id, it.haystack[it.pos])
		it.pos++
		if p := a.outputPos(it.id); p != 0 {
			it.pending = a.outputs[p-1].parent
			return a.match(p, it.pos), true
		}
	}
	return Match[V]{}, false
}

// OverlappingNoSuffixIterator reports overlapping matches but only the
// longest one ending at each position.
type OverlappingNoSuffixIterator[V Value] struct {
	a        *Automaton[V]
	haystack []byte
	pos      int
	id       uint32
	skipper  skipper
}

// IterOverlappingNoSuffix returns an iterator of overlapping matches that
// skips the suffix matches ending at the same position.
// It panics unless the automaton was built with StandardMatch.
func (a *Automaton[V]) IterOverlappingNoSuffix(haystack []byte) *OverlappingNoSuffixIterator[V] {
	if !a.kind.isStandard() {
		panic("daac: IterOverlappingNoSuffix requires StandardMatch")
	}
	return &OverlappingNoSuffixIterator[V]{
		a:        a,
		haystack: haystack,
		skipper:  newSkipper(a.prefil, a.maxLen),
	}
}

// Next returns the next match, or false when the haystack is exhausted.
func (it *OverlappingNoSuffixIterator[V]) Next() (Match[V], bool) {
	a := it.a
	for it.pos < len(it.haystack) {
		if it.id == rootID {
			it.pos = it.skipper.skip(it.haystack, it.pos)
			if it.pos >= len(it.haystack) {
				break
			}
		}
		it.id = a.nextState(it.id, it.haystack[it.pos])
		it.pos++
		if p := a.outputPos(it.id); p != 0 {
			return a.match(p, it.pos), true
		}
	}
	return Match[V]{}, false
}

// LeftmostIterator reports non-overlapping leftmost matches. Among matches
// with the same start, leftmost-longest automata report the longest one and
// leftmost-first automata the one registered first.
type LeftmostIterator[V Value] struct {
	a        *Automaton[V]
	haystack []byte
	pos      int
	skipper  skipper
}

// IterLeftmost returns an iterator of leftmost matches.
// It panics unless the automaton was built with LeftMostLongestMatch or
// LeftMostFirstMatch.
func (a *Automaton[V]) IterLeftmost(haystack []byte) *LeftmostIterator[V] {
	if !a.kind.isLeftmost() {
		panic("daac: IterLeftmost requires LeftMostLongestMatch or LeftMostFirstMatch")
	}
	return &LeftmostIterator[V]{
		a:        a,
		haystack: haystack,
		skipper:  newSkipper(a.prefil, a.maxLen),
	}
}

// Next returns the next match, or false when the haystack is exhausted.
func (it *LeftmostIterator[V]) Next() (Match[V], bool) {
	a := it.a
	id := rootID
	var best leftmostBest
	for i := it.pos; i < len(it.haystack); {
		if id == rootID && best.pos == 0 {
			i = it.skipper.skip(it.haystack, i)
			if i >= len(it.haystack) {
				break
			}
		}
		id = a.nextStateLeftmost(id, it.haystack[i])
		i++
		if id == rootID {
			if best.pos != 0 {
				it.pos = best.end
				return a.match(best.pos, best.end), true
			}
			continue
		}
		if p := a.outputPos(id); p != 0 {
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

// leftmostBest is the candidate of a leftmost scan: the earliest start wins,
// then the greater length.
type leftmostBest struct {
	pos    uint32
	start  int
	length uint32
	end    int
}

func (b *leftmostBest) offer(pos, length uint32, end int) {
	start := end - int(length)
	if b.pos == 0 || start < b.start || (start == b.start && length > b.length) {
		*b = leftmostBest{pos: pos, start: start, length: length, end: end}
	}
}
