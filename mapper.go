package daac

import (
	"math"
	"sort"
	"unsafe"

	"github.com/petar-dambovaliev/daac/internal/conv"
)

const (
	invalidCode uint32 = math.MaxUint32
	// directLimit bounds the direct table; rarer code points above it go
	// through the sorted overflow slice.
	directLimit = 0x10000
)

// codeMapper projects the code points of a pattern set onto the dense codes
// 0..alphabetSize-1. Frequent code points get small codes so the children of
// busy states pack into small blocks.
type codeMapper struct {
	table []uint32
	// overflow holds the code points at or above directLimit, sorted.
	overflow []overflowCode
	size     uint32
}

type overflowCode struct {
	r    rune
	code uint32
}

func newCodeMapper(freqs map[rune]uint32) codeMapper {
	runes := make([]rune, 0, len(freqs))
	maxDirect := rune(-1)
	for r := range freqs {
		runes = append(runes, r)
		if r < directLimit && r > maxDirect {
			maxDirect = r
		}
	}
	sort.Slice(runes, func(i, j int) bool {
		fi, fj := freqs[runes[i]], freqs[runes[j]]
		if fi != fj {
			return fi > fj
		}
		return runes[i] < runes[j]
	})

	m := codeMapper{
		table: make([]uint32, maxDirect+1),
		size:  conv.MustIntToUint32(len(runes)),
	}
	for i := range m.table {
		m.table[i] = invalidCode
	}
	for code, r := range runes {
		if r < directLimit {
			m.table[r] = uint32(code)
		} else {
			m.overflow = append(m.overflow, overflowCode{r: r, code: uint32(code)})
		}
	}
	sort.Slice(m.overflow, func(i, j int) bool { return m.overflow[i].r < m.overflow[j].r })
	return m
}

func (m *codeMapper) get(r rune) (uint32, bool) {
	if r >= 0 && int(r) < len(m.table) {
		c := m.table[r]
		return c, c != invalidCode
	}
	if r < directLimit {
		return 0, false
	}
	i := sort.Search(len(m.overflow), func(i int) bool { return m.overflow[i].r >= r })
	if i < len(m.overflow) && m.overflow[i].r == r {
		return m.overflow[i].code, true
	}
	return 0, false
}

// alphabetSize is the number of mapped code points.
func (m *codeMapper) alphabetSize() uint32 {
	return m.size
}

func (m *codeMapper) heapBytes() int {
	return len(m.table)*int(unsafe.Sizeof(uint32(0))) +
		len(m.overflow)*int(unsafe.Sizeof(overflowCode{}))
}

// charBlockLen is the smallest power of two, at least 2, that covers every
// code.
func charBlockLen(alphabetSize uint32) (uint32, bool) {
	n, ok := conv.NextPowerOfTwo(alphabetSize)
	return max(n, 2), ok
}
