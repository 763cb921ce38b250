package daac

import "bytes"

// startBytes is a prefilter over the bytes that can begin a match. It is
// built from the root's children and only exists when there are at most
// three of them, all ASCII.
type startBytes struct {
	count int
	byte1 byte
	byte2 byte
	byte3 byte
}

// nextCandidate returns the first position at or after at holding a start
// byte, or len(haystack) if there is none.
func (s *startBytes) nextCandidate(haystack []byte, at int) int {
	switch s.count {
	case 1:
		if i := bytes.IndexByte(haystack[at:], s.byte1); i >= 0 {
			return at + i
		}
	case 2:
		for i, b := range haystack[at:] {
			if s.byte1 == b || s.byte2 == b {
				return at + i
			}
		}
	default:
		for i, b := range haystack[at:] {
			if s.byte1 == b || s.byte2 == b || s.byte3 == b {
				return at + i
			}
		}
	}
	return len(haystack)
}

type startBytesBuilder struct {
	byteset [256]bool
	count   int
}

func (s *startBytesBuilder) add(b byte) {
	if !s.byteset[b] {
		s.byteset[b] = true
		s.count++
	}
}

func (s *startBytesBuilder) build() *startBytes {
	if s.count == 0 || s.count > 3 {
		return nil
	}
	var found [3]byte
	n := 0
	for b := 0; b <= 255; b++ {
		if !s.byteset[b] {
			continue
		}
		if b > 0x7F {
			return nil
		}
		found[n] = byte(b)
		n++
	}
	return &startBytes{
		count: n,
		byte1: found[0],
		byte2: found[1],
		byte3: found[2],
	}
}

const (
	// warmupSkips is the number of skips before the prefilter is judged.
	warmupSkips = 40
	// minSkipFactor times the longest pattern is the average distance a
	// skip must cover for the prefilter to stay on.
	minSkipFactor = 2
)

// skipper runs the start-bytes prefilter for one iterator and switches it off
// for the rest of the haystack once candidates come too densely for the
// scan to pay off.
type skipper struct {
	pre     *startBytes
	skips   int
	skipped int
	minSkip int
}

func newSkipper(pre *startBytes, maxMatchLen int) skipper {
	return skipper{pre: pre, minSkip: minSkipFactor * maxMatchLen}
}

// skip returns the first candidate start at or after at, or at itself when
// the prefilter is off.
func (s *skipper) skip(haystack []byte, at int) int {
	if s.pre == nil {
		return at
	}
	next := s.pre.nextCandidate(haystack, at)
	s.skips++
	s.skipped += next - at
	if s.skips >= warmupSkips && s.skipped < s.minSkip*s.skips {
		s.pre = nil
	}
	return next
}

func maxOutputLen[V Value](outputs []output[V]) int {
	m := 0
	for _, o := range outputs {
		m = max(m, int(o.length))
	}
	return m
}
