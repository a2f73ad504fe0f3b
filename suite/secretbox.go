package suite

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

// secretboxAEAD adapts NaCl secretbox (XSalsa20-Poly1305) to the AEAD
// interface. Secretbox has no additional data input, so the additional data
// is bound by deriving a per-message subkey from it with HKDF-SHA256. Any
// change to the additional data changes the subkey and fails the Poly1305
// check. With empty additional data the base key is used as is.
type secretboxAEAD struct {
	key [32]byte
}

func newSecretboxAEAD(key []byte) (*secretboxAEAD, error) {
	if len(key) != 32 {
		return nil, errors.New("secretbox key must be 32 bytes")
	}
	s := &secretboxAEAD{}
	copy(s.key[:], key)
	return s, nil
}

func (s *secretboxAEAD) NonceSize() int { return 24 }

func (s *secretboxAEAD) Overhead() int { return secretbox.Overhead }

func (s *secretboxAEAD) Seal(dst, nonce, plaintext, additionalData []byte) []byte {
	if len(nonce) != 24 {
		panic("suite: secretbox nonce must be 24 bytes")
	}
	key := s.subkey(additionalData)
	var n [24]byte
	copy(n[:], nonce)
	out := secretbox.Seal(dst, plaintext, &n, &key)
	Wipe(key[:])
	return out
}

func (s *secretboxAEAD) Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error) {
	if len(nonce) != 24 {
		panic("suite: secretbox nonce must be 24 bytes")
	}
	key := s.subkey(additionalData)
	var n [24]byte
	copy(n[:], nonce)
	out, ok := secretbox.Open(dst, ciphertext, &n, &key)
	Wipe(key[:])
	if !ok {
		return nil, errors.New("secretbox: message authentication failed")
	}
	return out, nil
}

func (s *secretboxAEAD) subkey(additionalData []byte) [32]byte {
	if len(additionalData) == 0 {
		return s.key
	}
	var key [32]byte
	hk := hkdf.New(sha256.New, s.key[:], nil, additionalData)
	if _, err := io.ReadFull(hk, key[:]); err != nil {
		panic("suite: hkdf subkey expansion failed: " + err.Error())
	}
	return key
}
