package suite

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KDF derives keying material from a shared secret. The context inputs bind
// the output to its use: the hybrid engine passes the envelope header bytes
// as info, so a tampered header derives a different key.
type KDF interface {
	// Derive produces length bytes of output keying material.
	Derive(secret, salt, info []byte, length int) ([]byte, error)
}

// NewDerivation constructs the key derivation function registered under tag.
// Both KDF tags and XOF tags are accepted; an XOF fills the derivation role
// by absorbing the secret and context and squeezing the requested length.
func NewDerivation(tag Tag) (KDF, error) {
	switch tag {
	case KDFHkdfSha256:
		return hkdfKDF{hash: sha256.New}, nil
	case KDFHkdfSha512:
		return hkdfKDF{hash: sha512.New}, nil
	case XOFShake128, XOFShake256:
		xof, err := NewXOF(tag)
		if err != nil {
			return nil, err
		}
		return xofKDF{xof: xof}, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x is not a key derivation function", ErrUnknownTag, uint8(tag))
	}
}

// hkdfKDF implements KDF with HKDF over the configured hash.
type hkdfKDF struct {
	hash func() hash.Hash
}

func (k hkdfKDF) Derive(secret, salt, info []byte, length int) ([]byte, error) {
	if length <= 0 {
		return nil, fmt.Errorf("derived key length must be positive, got %d", length)
	}
	out := make([]byte, length)
	hk := hkdf.New(k.hash, secret, salt, info)
	if _, err := io.ReadFull(hk, out); err != nil {
		return nil, fmt.Errorf("hkdf expansion of %d bytes: %w", length, err)
	}
	return out, nil
}

// xofKDF fills the derivation role with an extendable output function. Salt
// and info are absorbed after the secret as one context block.
type xofKDF struct {
	xof XOF
}

func (k xofKDF) Derive(secret, salt, info []byte, length int) ([]byte, error) {
	context := make([]byte, 0, len(salt)+len(info))
	context = append(context, salt...)
	context = append(context, info...)
	return k.xof.Expand(secret, context, length)
}
