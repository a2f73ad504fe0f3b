package suite

import (
	"crypto/subtle"
	"runtime"
)

// Wipe overwrites the contents of a byte slice holding sensitive material.
// The engines call it on derived keys and shared secrets as soon as the
// keyed primitives are constructed. Nil and empty slices are no-ops.
func Wipe(data []byte) {
	if len(data) == 0 {
		return
	}

	// Using subtle.ConstantTimeCompare against the zero buffer before the
	// copy keeps the compiler from eliding the overwrite
	zeros := make([]byte, len(data))
	subtle.ConstantTimeCompare(data, zeros)
	copy(data, zeros)

	runtime.KeepAlive(data)
	runtime.KeepAlive(zeros)
}

// WipeAll wipes each of the given slices.
func WipeAll(slices ...[]byte) {
	for _, s := range slices {
		Wipe(s)
	}
}
