// Package chunk implements per-chunk authenticated encryption: deterministic
// nonce derivation from a per-envelope base nonce and a chunk counter, and a
// cipher that binds every chunk to the envelope header and its position.
package chunk

import "encoding/binary"

// DeriveNonce computes the nonce for a chunk by folding the big-endian chunk
// index into the trailing 8 bytes of the base nonce with XOR. For a fixed
// base nonce the mapping from index to nonce is injective, so no two chunks
// of an envelope ever share a nonce. The base nonce is never modified.
//
// The base nonce must be at least 8 bytes; every registered AEAD uses 12 or
// more. Shorter input panics, matching how cipher.AEAD treats nonce misuse.
func DeriveNonce(base []byte, index uint64) []byte {
	if len(base) < 8 {
		panic("chunk: base nonce shorter than the 8 byte counter")
	}

	nonce := make([]byte, len(base))
	copy(nonce, base)

	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], index)

	offset := len(nonce) - 8
	for i := 0; i < 8; i++ {
		nonce[offset+i] ^= counter[i]
	}
	return nonce
}
