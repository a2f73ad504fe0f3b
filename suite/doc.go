// Package suite registers the cryptographic algorithms an envelope can name.
//
// Every algorithm carries a one-byte wire tag, and each header slot (AEAD,
// key derivation, key encapsulation, signature) accepts tags of the matching
// kind. Constructors turn a tag plus key material into a ready primitive;
// static info tables expose algorithm geometry (key, nonce, and signature
// sizes) so the codec can parse headers without instantiating any crypto.
//
// # Algorithm Registry
//
// The registered algorithms and their tags:
//
//   - AEAD: ChaCha20-Poly1305 (0x01), XChaCha20-Poly1305 (0x02),
//     AES-256-GCM (0x03), XSalsa20-Poly1305 (0x04), AES-SIV (0x05)
//   - KDF: HKDF-SHA256 (0x20), HKDF-SHA512 (0x21)
//   - XOF: SHAKE128 (0x30), SHAKE256 (0x31)
//   - KEM: X25519 (0x40), P-256 (0x41)
//   - Signature: Ed25519 (0x50)
//
// Tag values are part of the envelope format and must never be reassigned.
// TagNone (0x00) marks an inactive slot.
//
// # Constructors
//
// Primitives are built from tags and raw key material:
//
//	aead, err := suite.NewAEAD(suite.AEADChaCha20Poly1305, key)
//	kem, err := suite.NewKEM(suite.KEMX25519)
//	kdf, err := suite.NewDerivation(suite.KDFHkdfSha256)
//	signer, err := suite.NewSigner(suite.SignEd25519)
//
// NewDerivation also accepts XOF tags, so SHAKE can fill the derivation slot
// of an envelope.
//
// # Key Encapsulation
//
// The KEMs perform ephemeral-static Diffie-Hellman and append a key
// confirmation value to the encapsulated key. Decapsulating with any private
// key other than the recipient's fails with ErrEncapsulation instead of
// silently producing a wrong shared secret:
//
//	public, private, _ := kem.GenerateKeyPair(rand.Reader)
//	encapsulated, shared, _ := kem.Encapsulate(rand.Reader, public)
//	recovered, err := kem.Decapsulate(private, encapsulated)
//
// # Secure Memory Handling
//
// Sensitive material should be wiped once the keyed primitives are built:
//
//	defer suite.Wipe(sharedSecret)
//
// The [Wipe] function uses a constant-time comparison before the overwrite
// so the compiler cannot elide the zeroing.
//
// # Thread Safety
//
// All primitives returned by the constructors are stateless after
// construction and safe for concurrent use.
package suite
