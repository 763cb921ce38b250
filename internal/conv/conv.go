// Package conv provides checked integer conversions for automaton construction
// and decoding.
//
// Construction narrows lengths and indices into fixed-width fields. A value
// that does not fit is a scale problem the caller has to report, so the
// checked variants return ok=false instead of wrapping around. The Must
// variants panic and are reserved for values whose range is already bounded.
package conv

import "math"

// IntToUint32 converts n to uint32, reporting whether it fits.
func IntToUint32(n int) (uint32, bool) {
	// Compare as uint so 32-bit platforms never evaluate math.MaxUint32 as int.
	if n < 0 || uint(n) > math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}

// MustIntToUint32 converts n to uint32.
// Panics if n < 0 or n > math.MaxUint32.
//
//go:inline
func MustIntToUint32(n int) uint32 {
	v, ok := IntToUint32(n)
	if !ok {
		panic("integer overflow: int value out of uint32 range")
	}
	return v
}

// Uint64ToUint32 converts n to uint32, reporting whether it fits.
func Uint64ToUint32(n uint64) (uint32, bool) {
	if n > math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}

// NextPowerOfTwo returns the smallest power of two that is >= n.
// NextPowerOfTwo(0) is 1. ok is false when the result does not fit in uint32.
func NextPowerOfTwo(n uint32) (uint32, bool) {
	p := uint64(1)
	for p < uint64(n) {
		p <<= 1
	}
	return Uint64ToUint32(p)
}
