package sealbox

import (
	"crypto/rand"
	"io"

	"github.com/opd-ai/sealbox/limits"
	"github.com/opd-ai/sealbox/suite"
)

// Options contains configuration options for symmetric envelopes.
type Options struct {
	// AEAD selects the chunk encryption algorithm.
	AEAD suite.Tag

	// ChunkSize is the plaintext bytes per chunk.
	ChunkSize uint32

	// AAD is caller associated data authenticated with every chunk. The
	// identical bytes must be presented when decrypting.
	AAD []byte

	// Workers bounds parallelism. One processes chunks sequentially; zero
	// or negative uses all available CPUs.
	Workers int

	// Rand supplies base nonce entropy. Nil means crypto/rand.
	Rand io.Reader
}

// NewOptions creates a new default Options: ChaCha20-Poly1305 chunks of 64
// KiB, sequential processing.
func NewOptions() *Options {
	return &Options{
		AEAD:      suite.AEADChaCha20Poly1305,
		ChunkSize: limits.DefaultChunkSize,
		Workers:   1,
		Rand:      rand.Reader,
	}
}

func (o *Options) random() io.Reader {
	if o.Rand != nil {
		return o.Rand
	}
	return rand.Reader
}
