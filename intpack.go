package daac

// u24Max is the largest value a 24-bit field can hold.
const u24Max = 1<<24 - 1

// u24nu8 packs a 24-bit field (high bits) and an 8-bit field (low bits) into
// one word. The byte-wise double array stores the output position in the
// 24-bit half and the incoming edge label in the 8-bit half.
type u24nu8 uint32

func (p u24nu8) a() uint32 {
	return uint32(p) >> 8
}

func (p u24nu8) b() byte {
	return byte(p)
}

// setA stores the low 24 bits of a. Callers check a <= u24Max beforehand.
func (p *u24nu8) setA(a uint32) {
	*p = u24nu8(a<<8 | uint32(p.b()))
}

func (p *u24nu8) setB(b byte) {
	*p = u24nu8(uint32(*p)&^0xff | uint32(b))
}
