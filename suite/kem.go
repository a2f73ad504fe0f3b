package suite

import (
	"crypto/ecdh"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"github.com/flynn/noise"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

const (
	// kemSharedSize is the length of the shared secret every KEM produces
	kemSharedSize = 32

	// kemConfirmSize is the length of the key confirmation value appended to
	// the encapsulated key. Decapsulation recomputes it, so a mismatched
	// private key is detected instead of silently yielding a wrong secret.
	kemConfirmSize = 16
)

// kemLabel domain-separates the KEM output from other HKDF uses of the raw
// Diffie-Hellman result.
var kemLabel = []byte("sealbox kem v1")

// ErrEncapsulation indicates a key encapsulation or decapsulation failure,
// including malformed key encodings and key confirmation mismatches.
var ErrEncapsulation = errors.New("key encapsulation failed")

// KEM is an ephemeral-static key encapsulation mechanism. Encapsulate binds
// a fresh shared secret to the recipient's public key; Decapsulate recovers
// it with the matching private key and fails for any other key.
type KEM interface {
	// GenerateKeyPair creates a recipient key pair using entropy from random.
	GenerateKeyPair(random io.Reader) (publicKey, privateKey []byte, err error)

	// Encapsulate derives a shared secret for the recipient and returns the
	// encapsulated key to embed in the envelope header alongside it.
	Encapsulate(random io.Reader, recipientPublic []byte) (encapsulated, shared []byte, err error)

	// Decapsulate recovers the shared secret from an encapsulated key.
	Decapsulate(recipientPrivate, encapsulated []byte) (shared []byte, err error)
}

// NewKEM constructs the KEM registered under tag.
func NewKEM(tag Tag) (KEM, error) {
	switch tag {
	case KEMX25519:
		return x25519KEM{}, nil
	case KEMP256:
		return p256KEM{}, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x is not a KEM", ErrUnknownTag, uint8(tag))
	}
}

// kemDerive expands a raw Diffie-Hellman result into the shared secret and
// the key confirmation value. Both public keys enter the HKDF info input so
// the output is bound to this exact exchange.
func kemDerive(raw, ephemeralPublic, recipientPublic []byte) (shared, confirm []byte, err error) {
	info := make([]byte, 0, len(kemLabel)+len(ephemeralPublic)+len(recipientPublic))
	info = append(info, kemLabel...)
	info = append(info, ephemeralPublic...)
	info = append(info, recipientPublic...)

	okm := make([]byte, kemSharedSize+kemConfirmSize)
	hk := hkdf.New(sha256.New, raw, nil, info)
	if _, err := io.ReadFull(hk, okm); err != nil {
		return nil, nil, fmt.Errorf("%w: expanding shared secret: %v", ErrEncapsulation, err)
	}
	return okm[:kemSharedSize], okm[kemSharedSize:], nil
}

// x25519KEM implements KEM over Curve25519 using the Noise DH function.
type x25519KEM struct{}

func (x25519KEM) GenerateKeyPair(random io.Reader) ([]byte, []byte, error) {
	pair, err := noise.DH25519.GenerateKeypair(random)
	if err != nil {
		return nil, nil, fmt.Errorf("generating x25519 key pair: %w", err)
	}
	return pair.Public, pair.Private, nil
}

func (x25519KEM) Encapsulate(random io.Reader, recipientPublic []byte) ([]byte, []byte, error) {
	if len(recipientPublic) != 32 {
		return nil, nil, fmt.Errorf("%w: recipient public key must be 32 bytes, got %d", ErrEncapsulation, len(recipientPublic))
	}

	ephemeral, err := noise.DH25519.GenerateKeypair(random)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: generating ephemeral key: %v", ErrEncapsulation, err)
	}

	raw, err := noise.DH25519.DH(ephemeral.Private, recipientPublic)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrEncapsulation, err)
	}
	defer Wipe(raw)

	shared, confirm, err := kemDerive(raw, ephemeral.Public, recipientPublic)
	if err != nil {
		return nil, nil, err
	}

	encapsulated := make([]byte, 0, 32+kemConfirmSize)
	encapsulated = append(encapsulated, ephemeral.Public...)
	encapsulated = append(encapsulated, confirm...)
	return encapsulated, shared, nil
}

func (x25519KEM) Decapsulate(recipientPrivate, encapsulated []byte) ([]byte, error) {
	if len(recipientPrivate) != 32 {
		return nil, fmt.Errorf("%w: private key must be 32 bytes, got %d", ErrEncapsulation, len(recipientPrivate))
	}
	if len(encapsulated) != 32+kemConfirmSize {
		return nil, fmt.Errorf("%w: encapsulated key must be %d bytes, got %d", ErrEncapsulation, 32+kemConfirmSize, len(encapsulated))
	}

	ephemeralPublic := encapsulated[:32]

	recipientPublic, err := curve25519.X25519(recipientPrivate, curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncapsulation, err)
	}

	raw, err := noise.DH25519.DH(recipientPrivate, ephemeralPublic)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncapsulation, err)
	}
	defer Wipe(raw)

	shared, confirm, err := kemDerive(raw, ephemeralPublic, recipientPublic)
	if err != nil {
		return nil, err
	}

	if !hmac.Equal(confirm, encapsulated[32:]) {
		Wipe(shared)
		return nil, fmt.Errorf("%w: key confirmation mismatch", ErrEncapsulation)
	}
	return shared, nil
}

// p256KEM implements KEM over NIST P-256 using crypto/ecdh. Public keys use
// the uncompressed point encoding.
type p256KEM struct{}

func (p256KEM) GenerateKeyPair(random io.Reader) ([]byte, []byte, error) {
	private, err := ecdh.P256().GenerateKey(random)
	if err != nil {
		return nil, nil, fmt.Errorf("generating p256 key pair: %w", err)
	}
	return private.PublicKey().Bytes(), private.Bytes(), nil
}

func (p256KEM) Encapsulate(random io.Reader, recipientPublic []byte) ([]byte, []byte, error) {
	remote, err := ecdh.P256().NewPublicKey(recipientPublic)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid recipient public key: %v", ErrEncapsulation, err)
	}

	ephemeral, err := ecdh.P256().GenerateKey(random)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: generating ephemeral key: %v", ErrEncapsulation, err)
	}

	raw, err := ephemeral.ECDH(remote)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrEncapsulation, err)
	}
	defer Wipe(raw)

	ephemeralPublic := ephemeral.PublicKey().Bytes()
	shared, confirm, err := kemDerive(raw, ephemeralPublic, recipientPublic)
	if err != nil {
		return nil, nil, err
	}

	encapsulated := make([]byte, 0, len(ephemeralPublic)+kemConfirmSize)
	encapsulated = append(encapsulated, ephemeralPublic...)
	encapsulated = append(encapsulated, confirm...)
	return encapsulated, shared, nil
}

func (p256KEM) Decapsulate(recipientPrivate, encapsulated []byte) ([]byte, error) {
	private, err := ecdh.P256().NewPrivateKey(recipientPrivate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid private key: %v", ErrEncapsulation, err)
	}
	if len(encapsulated) != 65+kemConfirmSize {
		return nil, fmt.Errorf("%w: encapsulated key must be %d bytes, got %d", ErrEncapsulation, 65+kemConfirmSize, len(encapsulated))
	}

	ephemeralPublic := encapsulated[:65]
	remote, err := ecdh.P256().NewPublicKey(ephemeralPublic)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ephemeral public key: %v", ErrEncapsulation, err)
	}

	raw, err := private.ECDH(remote)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncapsulation, err)
	}
	defer Wipe(raw)

	shared, confirm, err := kemDerive(raw, ephemeralPublic, private.PublicKey().Bytes())
	if err != nil {
		return nil, err
	}

	if !hmac.Equal(confirm, encapsulated[65:]) {
		Wipe(shared)
		return nil, fmt.Errorf("%w: key confirmation mismatch", ErrEncapsulation)
	}
	return shared, nil
}
