package suite

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// AEAD is the authenticated encryption interface used by the chunk cipher.
// It matches crypto/cipher.AEAD so standard library and x/crypto ciphers
// satisfy it directly. Implementations are stateless after construction and
// safe for concurrent use.
type AEAD interface {
	// Seal encrypts and authenticates plaintext, authenticates the
	// additional data, and appends the result to dst.
	Seal(dst, nonce, plaintext, additionalData []byte) []byte

	// Open decrypts and authenticates ciphertext, authenticates the
	// additional data, and appends the plaintext to dst.
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)

	// NonceSize returns the size of the nonce passed to Seal and Open.
	NonceSize() int

	// Overhead returns the difference between ciphertext and plaintext length.
	Overhead() int
}

// NewAEAD constructs the AEAD registered under tag, keyed with key. The key
// length must match AEADInfo(tag).KeySize.
func NewAEAD(tag Tag, key []byte) (AEAD, error) {
	info, err := AEADInfo(tag)
	if err != nil {
		return nil, err
	}
	if len(key) != info.KeySize {
		return nil, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrKeySize, tag, info.KeySize, len(key))
	}

	switch tag {
	case AEADChaCha20Poly1305:
		return chacha20poly1305.New(key)
	case AEADXChaCha20Poly1305:
		return chacha20poly1305.NewX(key)
	case AEADAes256Gcm:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	case AEADXSalsa20Poly1305:
		return newSecretboxAEAD(key)
	case AEADAesSiv:
		return newSivAEAD(key)
	default:
		return nil, fmt.Errorf("%w: 0x%02x is not an AEAD", ErrUnknownTag, uint8(tag))
	}
}
