package suite

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"
)

// ErrSignatureInvalid indicates a signature that does not verify against the
// given public key and message.
var ErrSignatureInvalid = errors.New("signature verification failed")

// Signer is a detached signature scheme. Private keys are passed as seeds so
// callers store the minimum secret material.
type Signer interface {
	// GenerateKeyPair creates a signing key pair using entropy from random.
	GenerateKeyPair(random io.Reader) (publicKey, privateKey []byte, err error)

	// Sign produces a detached signature over message.
	Sign(privateKey, message []byte) ([]byte, error)

	// Verify checks a detached signature. It returns ErrSignatureInvalid when
	// the signature does not match.
	Verify(publicKey, message, signature []byte) error
}

// NewSigner constructs the signature scheme registered under tag.
func NewSigner(tag Tag) (Signer, error) {
	switch tag {
	case SignEd25519:
		return ed25519Signer{}, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x is not a signature scheme", ErrUnknownTag, uint8(tag))
	}
}

// ed25519Signer implements Signer with Ed25519. The private key is the
// 32-byte seed accepted by ed25519.NewKeyFromSeed.
type ed25519Signer struct{}

func (ed25519Signer) GenerateKeyPair(random io.Reader) ([]byte, []byte, error) {
	public, private, err := ed25519.GenerateKey(random)
	if err != nil {
		return nil, nil, fmt.Errorf("generating ed25519 key pair: %w", err)
	}
	return public, private.Seed(), nil
}

func (ed25519Signer) Sign(privateKey, message []byte) ([]byte, error) {
	if len(privateKey) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: ed25519 seed must be %d bytes, got %d", ErrKeySize, ed25519.SeedSize, len(privateKey))
	}
	key := ed25519.NewKeyFromSeed(privateKey)
	return ed25519.Sign(key, message), nil
}

func (ed25519Signer) Verify(publicKey, message, signature []byte) error {
	if len(publicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: ed25519 public key must be %d bytes, got %d", ErrKeySize, ed25519.PublicKeySize, len(publicKey))
	}
	if !ed25519.Verify(ed25519.PublicKey(publicKey), message, signature) {
		return ErrSignatureInvalid
	}
	return nil
}
