package daac

import (
	"encoding/binary"
	"unicode/utf8"
	"unsafe"

	"github.com/petar-dambovaliev/daac/internal/conv"
)

// Serialized layout, all integers native endian:
//
//	u32 number of slots, then per slot:
//	  byte-wise: base u32, fail u32, output position and label u32
//	  char-wise: base u32, check u32, fail u32, output position u32
//	char-wise only:
//	  u32 table length, then u32 code per table entry
//	  u32 overflow length, then (u32 code point, u32 code) ascending
//	u32 number of outputs, then per output: value, length u32, parent u32
//	u8 match kind
//	u32 number of states
//
// Values take unsafe.Sizeof(V) bytes.

func valueSize[V Value]() int {
	var v V
	return int(unsafe.Sizeof(v))
}

func appendValue[V Value](dst []byte, v V) []byte {
	x := uint64(v)
	switch valueSize[V]() {
	case 1:
		return append(dst, byte(x))
	case 2:
		return binary.NativeEndian.AppendUint16(dst, uint16(x))
	case 4:
		return binary.NativeEndian.AppendUint32(dst, uint32(x))
	default:
		return binary.NativeEndian.AppendUint64(dst, x)
	}
}

func appendOutputs[V Value](dst []byte, outputs []output[V]) []byte {
	dst = binary.NativeEndian.AppendUint32(dst, uint32(len(outputs)))
	for _, o := range outputs {
		dst = appendValue(dst, o.value)
		dst = binary.NativeEndian.AppendUint32(dst, o.length)
		dst = binary.NativeEndian.AppendUint32(dst, o.parent)
	}
	return dst
}

func appendTrailer(dst []byte, kind MatchKind, numStates uint32) []byte {
	dst = append(dst, byte(kind))
	return binary.NativeEndian.AppendUint32(dst, numStates)
}

// Serialize encodes the automaton. The result can be decoded with
// DeserializeUnchecked or Deserialize.
func (a *Automaton[V]) Serialize() []byte {
	size := 4 + len(a.states)*12 + 4 + len(a.outputs)*(valueSize[V]()+8) + 1 + 4
	dst := make([]byte, 0, size)
	dst = binary.NativeEndian.AppendUint32(dst, uint32(len(a.states)))
	for _, s := range a.states {
		dst = binary.NativeEndian.AppendUint32(dst, s.base)
		dst = binary.NativeEndian.AppendUint32(dst, s.fail)
		dst = binary.NativeEndian.AppendUint32(dst, uint32(s.oposCh))
	}
	dst = appendOutputs(dst, a.outputs)
	return appendTrailer(dst, a.kind, a.numStates)
}

// Serialize encodes the automaton. The result can be decoded with
// DeserializeCharwiseUnchecked or DeserializeCharwise.
func (a *CharwiseAutomaton[V]) Serialize() []byte {
	overflow := a.mapper.overflow
	size := 4 + len(a.states)*16 +
		4 + len(a.mapper.table)*4 + 4 + len(overflow)*8 +
		4 + len(a.outputs)*(valueSize[V]()+8) + 1 + 4
	dst := make([]byte, 0, size)
	dst = binary.NativeEndian.AppendUint32(dst, uint32(len(a.states)))
	for _, s := range a.states {
		dst = binary.NativeEndian.AppendUint32(dst, s.base)
		dst = binary.NativeEndian.AppendUint32(dst, s.check)
		dst = binary.NativeEndian.AppendUint32(dst, s.fail)
		dst = binary.NativeEndian.AppendUint32(dst, s.outputPos)
	}
	dst = binary.NativeEndian.AppendUint32(dst, uint32(len(a.mapper.table)))
	for _, c := range a.mapper.table {
		dst = binary.NativeEndian.AppendUint32(dst, c)
	}
	dst = binary.NativeEndian.AppendUint32(dst, uint32(len(overflow)))
	for _, o := range overflow {
		dst = binary.NativeEndian.AppendUint32(dst, uint32(o.r))
		dst = binary.NativeEndian.AppendUint32(dst, o.code)
	}
	dst = appendOutputs(dst, a.outputs)
	return appendTrailer(dst, a.kind, a.numStates)
}

// decoder reads the fixed-width fields. A short read sets short and yields
// zeros; the unchecked entry points never look at it.
type decoder struct {
	buf   []byte
	short bool
}

func (d *decoder) uint32() uint32 {
	if len(d.buf) < 4 {
		d.short = true
		d.buf = nil
		return 0
	}
	v := binary.NativeEndian.Uint32(d.buf)
	d.buf = d.buf[4:]
	return v
}

func (d *decoder) byte() byte {
	if len(d.buf) < 1 {
		d.short = true
		return 0
	}
	v := d.buf[0]
	d.buf = d.buf[1:]
	return v
}

// count reads a length prefix and reports whether n records of recordSize
// bytes can follow.
func (d *decoder) count(recordSize int) (int, bool) {
	n := int(d.uint32())
	if d.short || n > len(d.buf)/recordSize {
		d.short = true
		return 0, false
	}
	return n, true
}

func decodeValue[V Value](d *decoder) V {
	size := valueSize[V]()
	if len(d.buf) < size {
		d.short = true
		d.buf = nil
		return 0
	}
	var x uint64
	switch size {
	case 1:
		x = uint64(d.buf[0])
	case 2:
		x = uint64(binary.NativeEndian.Uint16(d.buf))
	case 4:
		x = uint64(binary.NativeEndian.Uint32(d.buf))
	default:
		x = binary.NativeEndian.Uint64(d.buf)
	}
	d.buf = d.buf[size:]
	return V(x)
}

func decodeOutputs[V Value](d *decoder) []output[V] {
	n, _ := d.count(valueSize[V]() + 8)
	outputs := make([]output[V], n)
	for i := range outputs {
		outputs[i].value = decodeValue[V](d)
		outputs[i].length = d.uint32()
		outputs[i].parent = d.uint32()
	}
	return outputs
}

// decodeAutomaton also returns the raw match kind tag for validation.
func decodeAutomaton[V Value](d *decoder) (*Automaton[V], byte) {
	n, _ := d.count(12)
	states := make([]state, n)
	for i := range states {
		states[i].base = d.uint32()
		states[i].fail = d.uint32()
		states[i].oposCh = u24nu8(d.uint32())
	}
	a := &Automaton[V]{states: states}
	a.outputs = decodeOutputs[V](d)
	tag := d.byte()
	a.kind = matchKindFromByte(tag)
	a.numStates = d.uint32()
	return a, tag
}

func decodeCharwise[V Value](d *decoder) (*CharwiseAutomaton[V], byte) {
	n, _ := d.count(16)
	states := make([]charState, n)
	for i := range states {
		states[i].base = d.uint32()
		states[i].check = d.uint32()
		states[i].fail = d.uint32()
		states[i].outputPos = d.uint32()
	}
	a := &CharwiseAutomaton[V]{states: states}

	n, _ = d.count(4)
	a.mapper.table = make([]uint32, n)
	for i := range a.mapper.table {
		c := d.uint32()
		a.mapper.table[i] = c
		if c != invalidCode {
			a.mapper.size++
		}
	}
	n, _ = d.count(8)
	if n > 0 {
		a.mapper.overflow = make([]overflowCode, n)
	}
	for i := range a.mapper.overflow {
		a.mapper.overflow[i].r = rune(d.uint32())
		a.mapper.overflow[i].code = d.uint32()
		a.mapper.size++
	}

	a.outputs = decodeOutputs[V](d)
	tag := d.byte()
	a.kind = matchKindFromByte(tag)
	a.numStates = d.uint32()
	return a, tag
}

// DeserializeUnchecked decodes an automaton produced by Serialize and returns
// it with the remaining bytes. The input is trusted: anything else is
// undefined behavior. Use Deserialize for untrusted input.
func DeserializeUnchecked[V Value](src []byte) (*Automaton[V], []byte) {
	d := decoder{buf: src}
	a, _ := decodeAutomaton[V](&d)
	a.init()
	return a, d.buf
}

// DeserializeCharwiseUnchecked is DeserializeUnchecked for character-wise
// automata.
func DeserializeCharwiseUnchecked[V Value](src []byte) (*CharwiseAutomaton[V], []byte) {
	d := decoder{buf: src}
	a, _ := decodeCharwise[V](&d)
	return a, d.buf
}

// Deserialize decodes and validates an automaton produced by Serialize. It
// returns an error wrapping ErrInvalidData when the input is truncated or
// structurally inconsistent.
func Deserialize[V Value](src []byte) (*Automaton[V], []byte, error) {
	d := decoder{buf: src}
	a, tag := decodeAutomaton[V](&d)
	if d.short {
		return nil, nil, invalidData("truncated input")
	}
	if err := a.validate(tag); err != nil {
		return nil, nil, err
	}
	a.init()
	return a, d.buf, nil
}

// DeserializeCharwise is Deserialize for character-wise automata.
func DeserializeCharwise[V Value](src []byte) (*CharwiseAutomaton[V], []byte, error) {
	d := decoder{buf: src}
	a, tag := decodeCharwise[V](&d)
	if d.short {
		return nil, nil, invalidData("truncated input")
	}
	if err := a.validate(tag); err != nil {
		return nil, nil, err
	}
	return a, d.buf, nil
}

func invalidData(format string, args ...interface{}) error {
	return &BuildError{
		Kind:    InvalidData,
		Message: ErrInvalidData.Message,
		Cause:   buildErrorf(InvalidData, format, args...),
	}
}

func validateOutputs[V Value](outputs []output[V]) ([]uint32, error) {
	if uint64(len(outputs)) >= 1<<32-1 {
		return nil, invalidData("%d outputs", len(outputs))
	}
	// longest[i] is the greatest length on the chain starting at i+1.
	longest := make([]uint32, len(outputs))
	for i, o := range outputs {
		if o.length == 0 {
			return nil, invalidData("output %d is empty", i)
		}
		if o.parent > uint32(i) {
			return nil, invalidData("output %d points forward to %d", i, o.parent)
		}
		longest[i] = o.length
		if o.parent != 0 {
			longest[i] = max(o.length, longest[o.parent-1])
		}
	}
	return longest, nil
}

func validateShape(numSlots int, blockLen uint32, kind byte) error {
	if kind > byte(LeftMostFirstMatch) {
		return invalidData("unknown match kind %d", kind)
	}
	n, ok := conv.IntToUint32(numSlots)
	if !ok || n < blockLen || n&(n-1) != 0 {
		return invalidData("%d slots", numSlots)
	}
	return nil
}

// walk checks the states reachable from the root through child edges. Each
// reachable state's failure target must be reachable and strictly shallower,
// or be the dead state for leftmost kinds, so every failure walk ends. Output
// chains must fit in the text a state can have consumed.
func walk(numSlots int, children func(id uint32, visit func(child uint32)), fail func(id uint32) uint32,
	outputPos func(id uint32) uint32, longest []uint32, kind MatchKind, bytesPerSymbol uint32, numStates uint32) error {
	const unseen = noSlot
	depth := make([]uint32, numSlots)
	for i := range depth {
		depth[i] = unseen
	}
	depth[rootID] = 0
	queue := []uint32{rootID}
	for head := 0; head < len(queue); head++ {
		id := queue[head]
		children(id, func(child uint32) {
			if depth[child] == unseen {
				depth[child] = depth[id] + 1
				queue = append(queue, child)
			}
		})
	}

	count := uint32(0)
	for _, id := range queue {
		if id == deadID {
			if !kind.isLeftmost() {
				return invalidData("dead state is reachable")
			}
			continue
		}
		count++
		if p := outputPos(id); p != 0 {
			if p > uint32(len(longest)) {
				return invalidData("state %d has output %d", id, p)
			}
			if uint64(longest[p-1]) > uint64(depth[id])*uint64(bytesPerSymbol) {
				return invalidData("state %d has an output longer than its depth", id)
			}
		}
		if id == rootID {
			continue
		}
		f := fail(id)
		if f == deadID && kind.isLeftmost() {
			continue
		}
		if int(f) >= numSlots || depth[f] == unseen || f == deadID || depth[f] >= depth[id] {
			return invalidData("state %d has failure target %d", id, f)
		}
	}
	if count != numStates {
		return invalidData("%d reachable states, header says %d", count, numStates)
	}
	return nil
}

func (a *Automaton[V]) validate(kind byte) error {
	if err := validateShape(len(a.states), byteBlockLen, kind); err != nil {
		return err
	}
	n := uint32(len(a.states))
	for i, s := range a.states {
		if s.base >= n || s.fail >= n || s.oposCh.a() > uint32(len(a.outputs)) {
			return invalidData("slot %d is out of bounds", i)
		}
	}
	if a.states[deadID].fail != deadID {
		return invalidData("dead state does not fail to itself")
	}
	longest, err := validateOutputs(a.outputs)
	if err != nil {
		return err
	}

	// Slot i is a child of every state whose base is i ^ label(i). Group the
	// slots by that key.
	first := make([]uint32, n)
	next := make([]uint32, n)
	for i := range first {
		first[i] = noSlot
	}
	for i := n; i > 0; i-- {
		slot := i - 1
		key := slot ^ uint32(a.states[slot].oposCh.b())
		next[slot] = first[key]
		first[key] = slot
	}
	children := func(id uint32, visit func(uint32)) {
		for c := first[a.states[id].base]; c != noSlot; c = next[c] {
			visit(c)
		}
	}
	return walk(len(a.states), children,
		func(id uint32) uint32 { return a.states[id].fail },
		func(id uint32) uint32 { return a.states[id].oposCh.a() },
		longest, a.kind, 1, a.numStates)
}

func (a *CharwiseAutomaton[V]) validate(kind byte) error {
	if err := a.validateMapper(); err != nil {
		return err
	}
	blockLen, ok := charBlockLen(a.mapper.size)
	if !ok {
		return invalidData("alphabet of %d code points", a.mapper.size)
	}
	if err := validateShape(len(a.states), blockLen, kind); err != nil {
		return err
	}
	n := uint32(len(a.states))
	for i, s := range a.states {
		if s.base >= n || s.fail >= n || s.outputPos > uint32(len(a.outputs)) {
			return invalidData("slot %d is out of bounds", i)
		}
	}
	if a.states[deadID].fail != deadID {
		return invalidData("dead state does not fail to itself")
	}
	longest, err := validateOutputs(a.outputs)
	if err != nil {
		return err
	}

	// Slot i is a child of check(i) when it sits at a mapped code from the
	// parent's base.
	first := make([]uint32, n)
	next := make([]uint32, n)
	for i := range first {
		first[i] = noSlot
	}
	for i := n; i > 0; i-- {
		slot := i - 1
		parent := a.states[slot].check
		if parent >= n || slot == rootID {
			continue
		}
		next[slot] = first[parent]
		first[parent] = slot
	}
	children := func(id uint32, visit func(uint32)) {
		base := a.states[id].base
		for c := first[id]; c != noSlot; c = next[c] {
			if base^c < a.mapper.size {
				visit(c)
			}
		}
	}
	return walk(len(a.states), children,
		func(id uint32) uint32 { return a.states[id].fail },
		func(id uint32) uint32 { return a.states[id].outputPos },
		longest, a.kind, utf8.UTFMax, a.numStates)
}

func (a *CharwiseAutomaton[V]) validateMapper() error {
	m := &a.mapper
	if len(m.table) > directLimit {
		return invalidData("code table of %d entries", len(m.table))
	}
	seen := make(map[uint32]struct{}, m.size)
	check := func(r rune, c uint32) error {
		if c >= m.size {
			return invalidData("code point %U maps to %d of %d", r, c, m.size)
		}
		if _, ok := seen[c]; ok {
			return invalidData("code %d is used twice", c)
		}
		seen[c] = struct{}{}
		return nil
	}
	for r, c := range m.table {
		if c == invalidCode {
			continue
		}
		if err := check(rune(r), c); err != nil {
			return err
		}
	}
	for i, o := range m.overflow {
		if o.r < directLimit || o.r > utf8.MaxRune {
			return invalidData("overflow code point %U", o.r)
		}
		if i > 0 && o.r <= m.overflow[i-1].r {
			return invalidData("overflow code points out of order at %d", i)
		}
		if err := check(o.r, o.code); err != nil {
			return err
		}
	}
	return nil
}
