package chunk

import (
	"errors"
	"fmt"

	"github.com/opd-ai/sealbox/suite"
)

var (
	// ErrAuthentication indicates a chunk that failed authenticated
	// decryption: corrupted bytes, a reordered or renumbered chunk, a wrong
	// key, or mismatched associated data
	ErrAuthentication = errors.New("chunk authentication failed")

	// ErrNonceLength indicates a base nonce that does not match the AEAD's
	// nonce size
	ErrNonceLength = errors.New("base nonce length mismatch")
)

// Cipher seals and opens individual chunks. Every chunk is encrypted under a
// nonce derived from the base nonce and the chunk index, and authenticated
// against the envelope header context followed by the caller's associated
// data. Tampering with any of the three fails Open.
//
// A Cipher is immutable after construction and safe for concurrent use; the
// parallel engine shares one across its workers.
type Cipher struct {
	aead           suite.AEAD
	baseNonce      []byte
	additionalData []byte
}

// NewCipher builds a chunk cipher for the AEAD registered under tag. The
// header context is the canonical header encoding; it prefixes the caller's
// associated data so every chunk is bound to the envelope parameters even
// when the caller passes none.
func NewCipher(tag suite.Tag, key, baseNonce, headerContext, additionalData []byte) (*Cipher, error) {
	info, err := suite.AEADInfo(tag)
	if err != nil {
		return nil, err
	}
	if len(baseNonce) != info.NonceSize {
		return nil, fmt.Errorf("%w: got %d bytes, %s needs %d", ErrNonceLength, len(baseNonce), tag, info.NonceSize)
	}

	aead, err := suite.NewAEAD(tag, key)
	if err != nil {
		return nil, err
	}
	return newCipher(aead, baseNonce, headerContext, additionalData), nil
}

// NewCipherWithAEAD builds a chunk cipher around an already keyed AEAD. The
// engines use NewCipher; this constructor exists for callers that supply
// their own AEAD implementation.
func NewCipherWithAEAD(aead suite.AEAD, baseNonce, headerContext, additionalData []byte) (*Cipher, error) {
	if len(baseNonce) != aead.NonceSize() {
		return nil, fmt.Errorf("%w: got %d bytes, aead needs %d", ErrNonceLength, len(baseNonce), aead.NonceSize())
	}
	return newCipher(aead, baseNonce, headerContext, additionalData), nil
}

func newCipher(aead suite.AEAD, baseNonce, headerContext, additionalData []byte) *Cipher {
	nonce := make([]byte, len(baseNonce))
	copy(nonce, baseNonce)

	combined := make([]byte, 0, len(headerContext)+len(additionalData))
	combined = append(combined, headerContext...)
	combined = append(combined, additionalData...)

	return &Cipher{
		aead:           aead,
		baseNonce:      nonce,
		additionalData: combined,
	}
}

// Overhead returns the per-chunk ciphertext expansion.
func (c *Cipher) Overhead() int {
	return c.aead.Overhead()
}

// NonceSize returns the nonce size of the underlying AEAD.
func (c *Cipher) NonceSize() int {
	return len(c.baseNonce)
}

// Seal encrypts the chunk at the given index and appends the result to dst.
func (c *Cipher) Seal(dst []byte, index uint64, plaintext []byte) []byte {
	return c.aead.Seal(dst, DeriveNonce(c.baseNonce, index), plaintext, c.additionalData)
}

// Open decrypts the chunk at the given index and appends the plaintext to
// dst. All failure detail collapses into ErrAuthentication with the chunk
// index attached; the cause (corruption, reordering, wrong key, changed
// associated data) is indistinguishable by construction.
func (c *Cipher) Open(dst []byte, index uint64, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < c.aead.Overhead() {
		return nil, fmt.Errorf("%w: chunk %d shorter than its authentication tag", ErrAuthentication, index)
	}
	plaintext, err := c.aead.Open(dst, DeriveNonce(c.baseNonce, index), ciphertext, c.additionalData)
	if err != nil {
		return nil, fmt.Errorf("%w: chunk %d", ErrAuthentication, index)
	}
	return plaintext, nil
}
