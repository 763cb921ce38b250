package daac

import (
	"sort"
	"unicode/utf8"

	"github.com/petar-dambovaliev/daac/internal/conv"
)

const (
	rootID uint32 = 0
	deadID uint32 = 1
)

type transition struct {
	label uint32
	next  uint32
}

// transitions is kept sorted by label.
type transitions []transition

func (t transitions) nextState(label uint32) (uint32, bool) {
	idx := sort.Search(len(t), func(i int) bool {
		return t[i].label >= label
	})
	if idx < len(t) && t[idx].label == label {
		return t[idx].next, true
	}
	return 0, false
}

func (t *transitions) setNextState(label uint32, next uint32) {
	inner := *t
	idx := sort.Search(len(inner), func(i int) bool {
		return inner[i].label >= label
	})

	if idx < len(inner) && inner[idx].label == label {
		inner[idx].next = next
		return
	}
	tr := transition{label: label, next: next}
	if idx == len(inner) {
		*t = append(inner, tr)
		return
	}
	inner = append(inner[:idx+1], inner[idx:]...)
	inner[idx] = tr
	*t = inner
}

type nfaState struct {
	trans transitions
	fail  uint32
	depth uint32
	// width is the length of the state's path in bytes.
	width uint32
	// terminal is the 1-based index of the pair ending here, 0 if none.
	terminal uint32
	// outputPos is the 1-based head of the composed output chain, 0 if none.
	outputPos uint32
	// deadFail marks states whose leftmost failure transition is the dead state.
	deadFail bool
}

// nfa is the construction-time trie with failure links and composed outputs.
// State 0 is the root and state 1 is the dead state, which has no edges.
type nfa[V Value] struct {
	kind    MatchKind
	lim     limits
	pairs   []Pair[V]
	states  []nfaState
	outputs []output[V]
	// order lists every trie state except the root in breadth-first order.
	order []uint32
	// shadowed holds leftmost-first patterns that are never inserted because a
	// proper prefix of them is a pattern. Kept for duplicate detection.
	shadowed map[string]struct{}
}

// labeler converts a pattern into the label sequence of its trie path,
// reusing buf.
type labeler func(pattern string, buf []uint32) []uint32

func newNFA[V Value](pairs []Pair[V], kind MatchKind, lim limits) *nfa[V] {
	n := &nfa[V]{
		kind:   kind,
		lim:    lim,
		pairs:  pairs,
		states: make([]nfaState, 2, len(pairs)+2),
	}
	n.states[deadID].fail = deadID
	if kind.isLeftmostFirst() {
		n.shadowed = make(map[string]struct{})
	}
	return n
}

func compileNFA[V Value](pairs []Pair[V], kind MatchKind, lim limits, labels labeler) (*nfa[V], error) {
	if len(pairs) == 0 {
		return nil, ErrEmptyPatternSet
	}
	if _, ok := conv.IntToUint32(len(pairs)); !ok || uint64(len(pairs)) > uint64(lim.maxOutputs) {
		return nil, buildErrorf(ScaleExceeded, "too many patterns: %d", len(pairs))
	}

	n := newNFA(pairs, kind, lim)
	var buf []uint32
	var ends []int
	for i, p := range pairs {
		if len(p.Pattern) == 0 {
			return nil, buildErrorf(EmptyPattern, "pattern %d is empty", i)
		}
		buf = labels(p.Pattern, buf[:0])
		ends = symbolEnds(p.Pattern, len(buf), ends[:0])
		if err := n.insert(p.Pattern, buf, ends, i); err != nil {
			return nil, err
		}
	}
	if err := n.fillFailureTransitions(); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *nfa[V]) addState(depth, width int) (uint32, error) {
	id, ok := conv.IntToUint32(len(n.states))
	if !ok || uint64(len(n.states))+1 > uint64(n.lim.maxSlots) {
		return 0, buildErrorf(ScaleExceeded, "too many states: %d", len(n.states)+1)
	}
	n.states = append(n.states, nfaState{
		depth: conv.MustIntToUint32(depth),
		width: conv.MustIntToUint32(width),
	})
	return id, nil
}

// symbolEnds returns the byte offset in pattern just past each of its n
// symbols. A pattern with as many symbols as bytes is read byte by byte,
// otherwise symbol by code point.
func symbolEnds(pattern string, n int, buf []int) []int {
	if n == len(pattern) {
		for i := 1; i <= n; i++ {
			buf = append(buf, i)
		}
		return buf
	}
	for i, r := range pattern {
		buf = append(buf, i+utf8.RuneLen(r))
	}
	return buf
}

func (n *nfa[V]) insert(pattern string, labels []uint32, ends []int, index int) error {
	id := rootID
	depth := 0
	sawMatch := false

	for ; depth < len(labels); depth++ {
		next, ok := n.states[id].trans.nextState(labels[depth])
		if !ok {
			break
		}
		id = next
		if depth+1 < len(labels) && n.states[id].terminal != 0 {
			sawMatch = true
		}
	}

	if depth == len(labels) && n.states[id].terminal != 0 {
		return buildErrorf(DuplicatePattern, "duplicate pattern %q at %d", pattern, index)
	}

	if n.kind.isLeftmostFirst() && sawMatch {
		if _, ok := n.shadowed[pattern]; ok {
			return buildErrorf(DuplicatePattern, "duplicate pattern %q at %d", pattern, index)
		}
		n.shadowed[pattern] = struct{}{}
		return nil
	}

	for ; depth < len(labels); depth++ {
		next, err := n.addState(depth+1, ends[depth])
		if err != nil {
			return err
		}
		n.states[id].trans.setNextState(labels[depth], next)
		id = next
	}
	n.states[id].terminal = conv.MustIntToUint32(index) + 1
	return nil
}

// fillFailureTransitions computes failure links and composes the output
// chains breadth-first, so a state's failure target is always finished
// before the state itself. For leftmost kinds it also marks the states whose
// failure transition would drop the start of a match already seen.
func (n *nfa[V]) fillFailureTransitions() error {
	leftmost := n.kind.isLeftmost()
	queue := make([]uint32, 0, len(n.states))

	// candStart is the smallest start offset in bytes, relative to the
	// state's path, of any match ending on the path. -1 means none.
	var candStart []int64
	if leftmost {
		candStart = make([]int64, len(n.states))
		for i := range candStart {
			candStart[i] = -1
		}
	}

	for _, tr := range n.states[rootID].trans {
		n.states[tr.next].fail = rootID
		queue = append(queue, tr.next)
	}

	for head := 0; head < len(queue); head++ {
		id := queue[head]
		s := &n.states[id]

		failPos := n.states[s.fail].outputPos
		if s.terminal != 0 {
			p := n.pairs[s.terminal-1]
			n.outputs = append(n.outputs, output[V]{
				value:  p.Value,
				length: conv.MustIntToUint32(len(p.Pattern)),
				parent: failPos,
			})
			if uint64(len(n.outputs)) > uint64(n.lim.maxOutputs) {
				return buildErrorf(ScaleExceeded, "too many outputs: %d", len(n.outputs))
			}
			s.outputPos = uint32(len(n.outputs))
		} else {
			s.outputPos = failPos
		}

		if leftmost {
			cand := candStart[id]
			if s.outputPos != 0 {
				start := int64(s.width) - int64(n.outputs[s.outputPos-1].length)
				if cand < 0 || start < cand {
					cand = start
				}
			}
			candStart[id] = cand
			if cand >= 0 && int64(s.width)-int64(n.states[s.fail].width) > cand {
				s.deadFail = true
			}
		}

		for _, tr := range s.trans {
			fail := s.fail
			for {
				if next, ok := n.states[fail].trans.nextState(tr.label); ok {
					fail = next
					break
				}
				if fail == rootID {
					break
				}
				fail = n.states[fail].fail
			}
			n.states[tr.next].fail = fail
			if leftmost {
				candStart[tr.next] = candStart[id]
			}
			queue = append(queue, tr.next)
		}
	}
	n.order = queue
	return nil
}

// numStates counts the trie states including the root.
func (n *nfa[V]) numStates() uint32 {
	return uint32(len(n.states) - 1)
}

// failOf returns the failure target stored in the double array.
func (n *nfa[V]) failOf(id uint32) uint32 {
	s := &n.states[id]
	if s.deadFail {
		return deadID
	}
	return s.fail
}
