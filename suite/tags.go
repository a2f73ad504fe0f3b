package suite

import (
	"errors"
	"fmt"
)

// Kind classifies an algorithm tag by the role it can fill in an envelope.
type Kind uint8

const (
	// KindNone is the kind of TagNone and of unregistered tag values
	KindNone Kind = iota

	// KindAEAD marks authenticated encryption algorithms
	KindAEAD

	// KindKDF marks extract-and-expand key derivation functions
	KindKDF

	// KindXOF marks extendable output functions usable for key derivation
	KindXOF

	// KindKEM marks key encapsulation mechanisms
	KindKEM

	// KindSignature marks digital signature schemes
	KindSignature
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAEAD:
		return "aead"
	case KindKDF:
		return "kdf"
	case KindXOF:
		return "xof"
	case KindKEM:
		return "kem"
	case KindSignature:
		return "signature"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Tag identifies a concrete algorithm on the wire. Each tag occupies one byte
// in the envelope header, and the numeric values are part of the format and
// must never be reassigned.
type Tag uint8

const (
	// TagNone marks an inactive algorithm slot in the header
	TagNone Tag = 0x00

	// AEADChaCha20Poly1305 is ChaCha20-Poly1305 with a 12-byte nonce
	AEADChaCha20Poly1305 Tag = 0x01

	// AEADXChaCha20Poly1305 is XChaCha20-Poly1305 with a 24-byte nonce
	AEADXChaCha20Poly1305 Tag = 0x02

	// AEADAes256Gcm is AES-256 in Galois/Counter Mode with a 12-byte nonce
	AEADAes256Gcm Tag = 0x03

	// AEADXSalsa20Poly1305 is the NaCl secretbox construction with a 24-byte
	// nonce; associated data is bound through a derived subkey
	AEADXSalsa20Poly1305 Tag = 0x04

	// AEADAesSiv is deterministic AES-SIV with a 16-byte synthetic nonce
	// folded into the associated data
	AEADAesSiv Tag = 0x05

	// KDFHkdfSha256 is HKDF with SHA-256
	KDFHkdfSha256 Tag = 0x20

	// KDFHkdfSha512 is HKDF with SHA-512
	KDFHkdfSha512 Tag = 0x21

	// XOFShake128 is the SHAKE128 extendable output function
	XOFShake128 Tag = 0x30

	// XOFShake256 is the SHAKE256 extendable output function
	XOFShake256 Tag = 0x31

	// KEMX25519 is ephemeral-static Diffie-Hellman over Curve25519 with key
	// confirmation
	KEMX25519 Tag = 0x40

	// KEMP256 is ephemeral-static Diffie-Hellman over NIST P-256 with key
	// confirmation
	KEMP256 Tag = 0x41

	// SignEd25519 is the Ed25519 signature scheme
	SignEd25519 Tag = 0x50
)

var (
	// ErrUnknownTag indicates a tag value with no registered algorithm
	ErrUnknownTag = errors.New("unknown algorithm tag")

	// ErrKeySize indicates key material of the wrong length for the algorithm
	ErrKeySize = errors.New("invalid key size")
)

// Kind reports the role the tag can fill. Unregistered values map to KindNone,
// so callers can treat Kind() == KindNone as "not a valid active tag".
func (t Tag) Kind() Kind {
	switch t {
	case AEADChaCha20Poly1305, AEADXChaCha20Poly1305, AEADAes256Gcm, AEADXSalsa20Poly1305, AEADAesSiv:
		return KindAEAD
	case KDFHkdfSha256, KDFHkdfSha512:
		return KindKDF
	case XOFShake128, XOFShake256:
		return KindXOF
	case KEMX25519, KEMP256:
		return KindKEM
	case SignEd25519:
		return KindSignature
	default:
		return KindNone
	}
}

// String returns the registered algorithm name, or a hex rendering for
// unregistered values.
func (t Tag) String() string {
	switch t {
	case TagNone:
		return "none"
	case AEADChaCha20Poly1305:
		return "chacha20-poly1305"
	case AEADXChaCha20Poly1305:
		return "xchacha20-poly1305"
	case AEADAes256Gcm:
		return "aes-256-gcm"
	case AEADXSalsa20Poly1305:
		return "xsalsa20-poly1305"
	case AEADAesSiv:
		return "aes-siv"
	case KDFHkdfSha256:
		return "hkdf-sha256"
	case KDFHkdfSha512:
		return "hkdf-sha512"
	case XOFShake128:
		return "shake128"
	case XOFShake256:
		return "shake256"
	case KEMX25519:
		return "x25519"
	case KEMP256:
		return "p256"
	case SignEd25519:
		return "ed25519"
	default:
		return fmt.Sprintf("tag(0x%02x)", uint8(t))
	}
}

// AEADParams describes the fixed geometry of an AEAD algorithm. Codec and
// engine code reads sizes from here instead of instantiating ciphers.
type AEADParams struct {
	KeySize   int
	NonceSize int
	Overhead  int
}

// AEADInfo returns the geometry for an AEAD tag.
func AEADInfo(tag Tag) (AEADParams, error) {
	switch tag {
	case AEADChaCha20Poly1305:
		return AEADParams{KeySize: 32, NonceSize: 12, Overhead: 16}, nil
	case AEADXChaCha20Poly1305:
		return AEADParams{KeySize: 32, NonceSize: 24, Overhead: 16}, nil
	case AEADAes256Gcm:
		return AEADParams{KeySize: 32, NonceSize: 12, Overhead: 16}, nil
	case AEADXSalsa20Poly1305:
		return AEADParams{KeySize: 32, NonceSize: 24, Overhead: 16}, nil
	case AEADAesSiv:
		return AEADParams{KeySize: 64, NonceSize: 16, Overhead: 16}, nil
	default:
		return AEADParams{}, fmt.Errorf("%w: 0x%02x is not an AEAD", ErrUnknownTag, uint8(tag))
	}
}

// KEMParams describes the fixed geometry of a key encapsulation mechanism.
type KEMParams struct {
	PublicKeySize    int
	PrivateKeySize   int
	EncapsulatedSize int
	SharedSize       int
}

// KEMInfo returns the geometry for a KEM tag. The encapsulated size includes
// the ephemeral public key and the trailing key confirmation value.
func KEMInfo(tag Tag) (KEMParams, error) {
	switch tag {
	case KEMX25519:
		return KEMParams{PublicKeySize: 32, PrivateKeySize: 32, EncapsulatedSize: 32 + kemConfirmSize, SharedSize: kemSharedSize}, nil
	case KEMP256:
		return KEMParams{PublicKeySize: 65, PrivateKeySize: 32, EncapsulatedSize: 65 + kemConfirmSize, SharedSize: kemSharedSize}, nil
	default:
		return KEMParams{}, fmt.Errorf("%w: 0x%02x is not a KEM", ErrUnknownTag, uint8(tag))
	}
}

// SignatureParams describes the fixed geometry of a signature scheme.
type SignatureParams struct {
	PublicKeySize  int
	PrivateKeySize int
	SignatureSize  int
}

// SignatureInfo returns the geometry for a signature tag. Private keys are
// expressed as seeds, matching ed25519.NewKeyFromSeed.
func SignatureInfo(tag Tag) (SignatureParams, error) {
	switch tag {
	case SignEd25519:
		return SignatureParams{PublicKeySize: 32, PrivateKeySize: 32, SignatureSize: 64}, nil
	default:
		return SignatureParams{}, fmt.Errorf("%w: 0x%02x is not a signature scheme", ErrUnknownTag, uint8(tag))
	}
}
