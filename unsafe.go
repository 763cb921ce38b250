package daac

import "unsafe"

// unsafeBytes returns the bytes of s without copying. The result must not be
// modified.
func unsafeBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
