package daac

import (
	"math"

	"github.com/petar-dambovaliev/daac/internal/conv"
)

const noSlot uint32 = math.MaxUint32

// packer assigns double-array bases. The array grows one block at a time.
// Unused slots of the open blocks are threaded on a doubly linked free list
// in ascending order; the oldest open block is closed (its free slots dropped
// from the list) when more than activeBlocks are open, which bounds the
// probing work per state.
type packer struct {
	blockLen     uint32
	maxSlots     uint32
	activeBlocks uint32
	closed       uint32

	used     []bool
	usedBase []bool
	prev     []uint32
	next     []uint32
	head     uint32
	tail     uint32
}

func newPacker(blockLen, maxSlots uint32) *packer {
	return &packer{
		blockLen:     blockLen,
		maxSlots:     maxSlots,
		activeBlocks: max(16, 4096/blockLen),
		head:         noSlot,
		tail:         noSlot,
	}
}

func (p *packer) numSlots() uint32 {
	return uint32(len(p.used))
}

// grow appends one block and threads its slots onto the free list. The root
// and dead slots are reserved in the first block. Once more than activeBlocks
// blocks are open, the oldest is closed.
func (p *packer) grow() error {
	oldLen := uint64(len(p.used))
	newLen := oldLen + uint64(p.blockLen)
	if newLen > uint64(p.maxSlots) {
		return buildErrorf(ScaleExceeded, "double array exceeds %d slots", p.maxSlots)
	}
	n, ok := conv.Uint64ToUint32(newLen)
	if !ok {
		return buildErrorf(ScaleExceeded, "double array exceeds %d slots", p.maxSlots)
	}

	p.used = append(p.used, make([]bool, p.blockLen)...)
	p.usedBase = append(p.usedBase, make([]bool, p.blockLen)...)
	p.prev = append(p.prev, make([]uint32, p.blockLen)...)
	p.next = append(p.next, make([]uint32, p.blockLen)...)

	for i := uint32(oldLen); i < n; i++ {
		p.prev[i] = p.tail
		p.next[i] = noSlot
		if p.tail == noSlot {
			p.head = i
		} else {
			p.next[p.tail] = i
		}
		p.tail = i
	}

	if oldLen == 0 {
		p.reserve(rootID)
		p.reserve(deadID)
	}

	if n/p.blockLen-p.closed > p.activeBlocks {
		p.closeBlock(p.closed)
		p.closed++
	}
	return nil
}

func (p *packer) closeBlock(block uint32) {
	start := block * p.blockLen
	for i := start; i < start+p.blockLen; i++ {
		if !p.used[i] {
			p.unlink(i)
		}
	}
}

func (p *packer) unlink(i uint32) {
	prev, next := p.prev[i], p.next[i]
	if prev == noSlot {
		p.head = next
	} else {
		p.next[prev] = next
	}
	if next == noSlot {
		p.tail = prev
	} else {
		p.prev[next] = prev
	}
	p.prev[i] = noSlot
	p.next[i] = noSlot
}

func (p *packer) reserve(i uint32) {
	p.used[i] = true
	p.unlink(i)
}

// findBase returns the smallest base reachable from the free list whose
// child slots for all labels are free. Bases are unique and never zero.
func (p *packer) findBase(labels []uint32) (uint32, error) {
	for {
		for i := p.head; i != noSlot; i = p.next[i] {
			base := i ^ labels[0]
			if base == 0 || p.usedBase[base] {
				continue
			}
			if p.fits(base, labels[1:]) {
				return base, nil
			}
		}
		if err := p.grow(); err != nil {
			return 0, err
		}
	}
}

func (p *packer) fits(base uint32, labels []uint32) bool {
	for _, l := range labels {
		if p.used[base^l] {
			return false
		}
	}
	return true
}

func (p *packer) place(base uint32, labels []uint32) {
	p.usedBase[base] = true
	for _, l := range labels {
		p.reserve(base ^ l)
	}
}

// finish sizes the array to the smallest power of two, at least one block,
// that covers every used slot. A power-of-two length keeps base^label inside
// the array for every label below blockLen.
func (p *packer) finish() (uint32, error) {
	highest := uint32(0)
	for i := len(p.used) - 1; i >= 0; i-- {
		if p.used[i] {
			highest = uint32(i)
			break
		}
	}
	n, ok := conv.NextPowerOfTwo(highest + 1)
	n = max(n, p.blockLen)
	if !ok || n > p.maxSlots {
		return 0, buildErrorf(ScaleExceeded, "double array exceeds %d slots", p.maxSlots)
	}
	if extra := int(n) - len(p.used); extra > 0 {
		p.used = append(p.used, make([]bool, extra)...)
		p.usedBase = append(p.usedBase, make([]bool, extra)...)
	}
	p.used = p.used[:n]
	p.usedBase = p.usedBase[:n]
	p.prev, p.next = nil, nil
	return n, nil
}

// unusedBase returns a non-zero base of the block holding slot i that no
// state uses. The result is only meaningful when slot i is not a child.
func (p *packer) unusedBase(i uint32) uint32 {
	start := i &^ (p.blockLen - 1)
	for b := start; b < start+p.blockLen; b++ {
		if b != 0 && !p.usedBase[b] {
			return b
		}
	}
	return 0
}

// layout is the placement of every NFA state in the double array.
type layout struct {
	numSlots uint32
	slotOf   []uint32
	baseOf   []uint32
	packer   *packer
}

// pack places the NFA breadth-first: each state with children gets a base
// and its children get the slots base^label.
func pack[V Value](n *nfa[V], blockLen uint32) (layout, error) {
	p := newPacker(blockLen, n.lim.maxSlots)
	l := layout{
		slotOf: make([]uint32, len(n.states)),
		baseOf: make([]uint32, len(n.states)),
		packer: p,
	}
	l.slotOf[rootID] = rootID
	l.slotOf[deadID] = deadID

	labels := make([]uint32, 0, blockLen)
	visit := func(id uint32) error {
		s := &n.states[id]
		if len(s.trans) == 0 {
			return nil
		}
		labels = labels[:0]
		for _, tr := range s.trans {
			labels = append(labels, tr.label)
		}
		base, err := p.findBase(labels)
		if err != nil {
			return err
		}
		p.place(base, labels)
		l.baseOf[id] = base
		for _, tr := range s.trans {
			l.slotOf[tr.next] = base ^ tr.label
		}
		return nil
	}

	if err := visit(rootID); err != nil {
		return layout{}, err
	}
	for _, id := range n.order {
		if err := visit(id); err != nil {
			return layout{}, err
		}
	}
	numSlots, err := p.finish()
	if err != nil {
		return layout{}, err
	}
	l.numSlots = numSlots
	return l, nil
}
