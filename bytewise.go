package daac

import "unsafe"

// byteBlockLen is the block length of the byte-wise double array: every
// byte label of a base lands inside its 256-slot block.
const byteBlockLen = 256

// state is one slot of the byte-wise double array. oposCh packs the output
// position (24 bits) with the label of the incoming edge (8 bits), which
// stands in for the parent index because bases are unique.
type state struct {
	base   uint32
	fail   uint32
	oposCh u24nu8
}

// Automaton is a byte-wise Aho-Corasick automaton. It is immutable and safe
// for concurrent use; iterators are not.
type Automaton[V Value] struct {
	states    []state
	outputs   []output[V]
	kind      MatchKind
	numStates uint32
	prefil    *startBytes
	maxLen    int
}

// Builder builds byte-wise automata.
type Builder[V Value] struct {
	kind MatchKind
	lim  limits
}

// NewBuilder returns a builder with the given options.
func NewBuilder[V Value](opts Opts) Builder[V] {
	return Builder[V]{kind: opts.MatchKind, lim: byteLimits()}
}

// Build builds an automaton from patterns. Pattern i gets the value i.
func (b Builder[V]) Build(patterns []string) (*Automaton[V], error) {
	if len(patterns) == 0 {
		return nil, ErrEmptyPatternSet
	}
	pairs, err := indexedPairs[V](patterns)
	if err != nil {
		return nil, err
	}
	return b.BuildWithValues(pairs)
}

// BuildWithValues builds an automaton from pattern/value pairs.
func (b Builder[V]) BuildWithValues(pairs []Pair[V]) (*Automaton[V], error) {
	n, err := compileNFA(pairs, b.kind, b.lim, byteLabels)
	if err != nil {
		return nil, err
	}
	l, err := pack(n, byteBlockLen)
	if err != nil {
		return nil, err
	}

	states := make([]state, l.numSlots)
	states[deadID].fail = deadID

	for id := range n.states {
		if uint32(id) == deadID {
			continue
		}
		s := &n.states[id]
		st := &states[l.slotOf[id]]
		st.base = l.baseOf[id]
		st.fail = l.slotOf[n.failOf(uint32(id))]
		st.oposCh.setA(s.outputPos)
		for _, tr := range s.trans {
			states[l.slotOf[tr.next]].oposCh.setB(byte(tr.label))
		}
	}

	// Slots that are not children get a label no base can reach them with.
	for i := range states {
		slot := uint32(i)
		if slot > deadID && l.packer.used[slot] {
			continue
		}
		states[i].oposCh.setB(byte(slot ^ l.packer.unusedBase(slot)))
	}

	a := &Automaton[V]{
		states:    states,
		outputs:   n.outputs,
		kind:      b.kind,
		numStates: n.numStates(),
	}
	a.init()
	return a, nil
}

// New builds a standard automaton from patterns.
func New[V Value](patterns []string) (*Automaton[V], error) {
	return NewBuilder[V](Opts{}).Build(patterns)
}

// NewWithValues builds a standard automaton from pattern/value pairs.
func NewWithValues[V Value](pairs []Pair[V]) (*Automaton[V], error) {
	return NewBuilder[V](Opts{}).BuildWithValues(pairs)
}

func byteLabels(pattern string, buf []uint32) []uint32 {
	for i := 0; i < len(pattern); i++ {
		buf = append(buf, uint32(pattern[i]))
	}
	return buf
}

// init derives the query-time helpers that are not serialized.
func (a *Automaton[V]) init() {
	var sb startBytesBuilder
	root := a.states[rootID]
	for c := 0; c < 256; c++ {
		if _, ok := a.childIndex(root.base, byte(c)); ok {
			sb.add(byte(c))
		}
	}
	a.prefil = sb.build()
	a.maxLen = maxOutputLen(a.outputs)
}

// childIndex returns the slot of the child on c of the state with base.
func (a *Automaton[V]) childIndex(base uint32, c byte) (uint32, bool) {
	child := base ^ uint32(c)
	if a.states[child].oposCh.b() == c {
		return child, true
	}
	return 0, false
}

// nextState follows failure links until a transition on c exists or the root
// is reached.
func (a *Automaton[V]) nextState(id uint32, c byte) uint32 {
	for {
		st := &a.states[id]
		if child, ok := a.childIndex(st.base, c); ok {
			return child
		}
		if id == rootID {
			return rootID
		}
		id = st.fail
	}
}

// nextStateLeftmost is nextState for leftmost kinds: reaching the dead state
// returns the root, meaning the scan fell off the automaton.
func (a *Automaton[V]) nextStateLeftmost(id uint32, c byte) uint32 {
	for {
		st := &a.states[id]
		if child, ok := a.childIndex(st.base, c); ok {
			return child
		}
		if id == rootID {
			return rootID
		}
		if st.fail == deadID {
			return rootID
		}
		id = st.fail
	}
}

func (a *Automaton[V]) outputPos(id uint32) uint32 {
	return a.states[id].oposCh.a()
}

func (a *Automaton[V]) match(pos uint32, end int) Match[V] {
	o := &a.outputs[pos-1]
	return Match[V]{length: int(o.length), end: end, value: o.value}
}

// MatchKind returns the match semantics the automaton was built with.
func (a *Automaton[V]) MatchKind() MatchKind {
	return a.kind
}

// NumStates returns the number of trie states, including the root.
func (a *Automaton[V]) NumStates() int {
	return int(a.numStates)
}

// NumElements returns the number of slots of the double array.
func (a *Automaton[V]) NumElements() int {
	return len(a.states)
}

// HeapBytes returns the memory held by the state array and the output table.
func (a *Automaton[V]) HeapBytes() int {
	var o output[V]
	return len(a.states)*int(unsafe.Sizeof(state{})) + len(a.outputs)*int(unsafe.Sizeof(o))
}

// FindAll returns the matches of Iter for standard automata and of
// IterLeftmost for leftmost ones.
func (a *Automaton[V]) FindAll(haystack []byte) []Match[V] {
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
func (a *Automaton[V]) FindAllOverlapping(haystack []byte) []Match[V] {
	var matches []Match[V]
	it := a.IterOverlapping(haystack)
	for m, ok := it.Next(); ok; m, ok = it.Next() {
		matches = append(matches, m)
	}
	return matches
}

// IsMatch reports whether any pattern occurs in haystack.
func (a *Automaton[V]) IsMatch(haystack []byte) bool {
	if a.kind.isLeftmost() {
		it := a.IterLeftmost(haystack)
		_, ok := it.Next()
		return ok
	}
	it := a.Iter(haystack)
	_, ok := it.Next()
	return ok
}
