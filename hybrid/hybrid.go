package hybrid

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	"github.com/opd-ai/sealbox/chunk"
	"github.com/opd-ai/sealbox/frame"
	"github.com/opd-ai/sealbox/limits"
	"github.com/opd-ai/sealbox/pipeline"
	"github.com/opd-ai/sealbox/suite"
)

// SealOptions configures envelope sealing. NewSealOptions returns the
// defaults; RecipientPublicKey must always be set by the caller.
type SealOptions struct {
	// AEAD selects the chunk encryption algorithm.
	AEAD suite.Tag

	// KDF selects the key derivation algorithm. XOF tags are accepted here
	// as well.
	KDF suite.Tag

	// KEM selects the key encapsulation mechanism.
	KEM suite.Tag

	// Sig selects the signature scheme. TagNone leaves the envelope
	// unsigned; any other value requires SignerPrivateKey.
	Sig suite.Tag

	// RecipientPublicKey is the recipient's KEM public key.
	RecipientPublicKey []byte

	// SignerPrivateKey is the sender's signing key seed. Setting it
	// requires a matching Sig tag.
	SignerPrivateKey []byte

	// ChunkSize is the plaintext bytes per chunk.
	ChunkSize uint32

	// AAD is caller associated data authenticated with every chunk. The
	// recipient must supply the identical bytes to open the envelope.
	AAD []byte

	// Workers bounds bulk encryption parallelism. Zero or negative uses
	// all available CPUs; one forces sequential processing.
	Workers int

	// Rand is the entropy source for encapsulation and the base nonce.
	// Nil means crypto/rand.
	Rand io.Reader
}

// NewSealOptions returns sealing options with the default algorithm
// selection: ChaCha20-Poly1305 chunks, HKDF-SHA256 derivation, X25519
// encapsulation, no signature, sequential processing.
func NewSealOptions() *SealOptions {
	return &SealOptions{
		AEAD:      suite.AEADChaCha20Poly1305,
		KDF:       suite.KDFHkdfSha256,
		KEM:       suite.KEMX25519,
		Sig:       suite.TagNone,
		ChunkSize: limits.DefaultChunkSize,
		Workers:   1,
		Rand:      rand.Reader,
	}
}

func (o *SealOptions) random() io.Reader {
	if o.Rand != nil {
		return o.Rand
	}
	return rand.Reader
}

// OpenOptions configures envelope opening. The zero value plus
// RecipientPrivateKey opens any unsigned envelope.
type OpenOptions struct {
	// RecipientPrivateKey is the recipient's KEM private key.
	RecipientPrivateKey []byte

	// VerifyPublicKey, when set, demands a signed envelope and rejects any
	// plaintext until the signature verifies. When nil, signatures are
	// ignored.
	VerifyPublicKey []byte

	// AAD must match the associated data supplied at sealing.
	AAD []byte

	// Workers bounds bulk decryption parallelism, as in SealOptions.
	Workers int
}

// ErrStreamSigning indicates a signing key configured on a streamed seal,
// which cannot work because the header is written before the chunk digest
// exists.
var ErrStreamSigning = errors.New("cannot sign a streamed envelope")

// ErrUnseekableSource indicates a signed envelope opened from a plain
// io.Reader; digesting the chunk area before decryption needs an
// io.ReadSeeker.
var ErrUnseekableSource = errors.New("cannot verify a signed envelope from an unseekable source")

// Seal encrypts plaintext into a self-describing envelope for the recipient
// named in opts. The returned bytes are the encoded header followed by the
// sealed chunks.
func Seal(opts *SealOptions, plaintext []byte) ([]byte, error) {
	if opts == nil {
		return nil, errors.New("nil seal options")
	}

	signer, err := resolveSigner(opts)
	if err != nil {
		return nil, err
	}

	hdr, cipher, err := prepareSeal(opts, opts.Sig)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":   "Seal",
		"aead":       opts.AEAD.String(),
		"kdf":        opts.KDF.String(),
		"kem":        opts.KEM.String(),
		"chunk_size": opts.ChunkSize,
		"signed":     signer != nil,
	}).Debug("Sealing hybrid envelope")

	chunks, err := pipeline.Encrypt(cipher, opts.ChunkSize, opts.Workers, plaintext)
	if err != nil {
		return nil, err
	}

	if signer != nil {
		digest := blake2b.Sum256(chunks)
		signature, err := signer.Sign(opts.SignerPrivateKey, signedMessage(hdr.ContextBytes(), digest[:]))
		if err != nil {
			return nil, fmt.Errorf("signing envelope: %w", err)
		}
		hdr.Signature = signature
	}

	envelope := make([]byte, 0, hdr.EncodedSize()+len(chunks))
	envelope = append(envelope, hdr.Encode()...)
	envelope = append(envelope, chunks...)

	logrus.WithFields(logrus.Fields{
		"function":      "Seal",
		"envelope_size": len(envelope),
	}).Info("Hybrid envelope sealed")
	return envelope, nil
}

// Open decrypts an envelope produced by Seal. It fails closed: format
// errors, signature mismatches, decapsulation failures, and chunk
// authentication failures all abort before any plaintext is returned.
func Open(opts *OpenOptions, envelope []byte) ([]byte, error) {
	if opts == nil {
		return nil, errors.New("nil open options")
	}

	hdr, consumed, err := frame.Decode(envelope)
	if err != nil {
		return nil, err
	}
	chunks := envelope[consumed:]

	if opts.VerifyPublicKey != nil {
		if err := verifyChunkArea(hdr, opts.VerifyPublicKey, chunks); err != nil {
			return nil, err
		}
	}

	cipher, err := openCipher(opts, hdr)
	if err != nil {
		return nil, err
	}

	plaintext, err := pipeline.Decrypt(cipher, hdr.ChunkSize, opts.Workers, chunks)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":       "Open",
		"plaintext_size": len(plaintext),
	}).Info("Hybrid envelope opened")
	return plaintext, nil
}

// resolveSigner validates the Sig tag and signing key pairing and returns
// the signer, or nil for an unsigned envelope.
func resolveSigner(opts *SealOptions) (suite.Signer, error) {
	if opts.SignerPrivateKey == nil {
		if opts.Sig != suite.TagNone {
			return nil, errors.New("signature scheme set without a signing key")
		}
		return nil, nil
	}
	if opts.Sig == suite.TagNone {
		return nil, errors.New("signing key set without a signature scheme")
	}
	return suite.NewSigner(opts.Sig)
}

// prepareSeal runs the key establishment and derivation stages and returns
// the populated header plus the ready chunk cipher. The signature tag is
// passed separately because it must be final before derivation; the header
// bytes bound into the derived key include it.
func prepareSeal(opts *SealOptions, sigTag suite.Tag) (*frame.Header, *chunk.Cipher, error) {
	if err := limits.ValidateChunkSize(opts.ChunkSize); err != nil {
		return nil, nil, err
	}
	if err := limits.ValidateAAD(opts.AAD); err != nil {
		return nil, nil, err
	}
	info, err := suite.AEADInfo(opts.AEAD)
	if err != nil {
		return nil, nil, err
	}
	kem, err := suite.NewKEM(opts.KEM)
	if err != nil {
		return nil, nil, err
	}
	kdf, err := suite.NewDerivation(opts.KDF)
	if err != nil {
		return nil, nil, err
	}

	random := opts.random()
	encapsulated, shared, err := kem.Encapsulate(random, opts.RecipientPublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("establishing envelope key: %w", err)
	}
	defer suite.Wipe(shared)

	baseNonce := make([]byte, info.NonceSize)
	if _, err := io.ReadFull(random, baseNonce); err != nil {
		return nil, nil, fmt.Errorf("reading base nonce: %w", err)
	}

	hdr := &frame.Header{
		Version:         frame.Version1,
		AEAD:            opts.AEAD,
		KDF:             opts.KDF,
		KEM:             opts.KEM,
		Sig:             sigTag,
		ChunkSize:       opts.ChunkSize,
		BaseNonce:       baseNonce,
		AADLen:          uint32(len(opts.AAD)),
		EncapsulatedKey: encapsulated,
	}
	if err := hdr.Validate(); err != nil {
		return nil, nil, err
	}

	context := hdr.ContextBytes()
	key, err := kdf.Derive(shared, nil, context, info.KeySize)
	if err != nil {
		return nil, nil, fmt.Errorf("deriving envelope key: %w", err)
	}
	defer suite.Wipe(key)

	cipher, err := chunk.NewCipher(opts.AEAD, key, baseNonce, context, opts.AAD)
	if err != nil {
		return nil, nil, err
	}
	return hdr, cipher, nil
}

// openCipher runs the decapsulation and derivation stages against a parsed
// header and returns the ready chunk cipher.
func openCipher(opts *OpenOptions, hdr *frame.Header) (*chunk.Cipher, error) {
	if err := limits.ValidateAAD(opts.AAD); err != nil {
		return nil, err
	}
	if uint32(len(opts.AAD)) != hdr.AADLen {
		return nil, fmt.Errorf("%w: caller associated data is %d bytes, header says %d",
			frame.ErrInvalidLength, len(opts.AAD), hdr.AADLen)
	}
	if hdr.KEM == suite.TagNone {
		return nil, errors.New("envelope carries no encapsulated key")
	}

	info, err := suite.AEADInfo(hdr.AEAD)
	if err != nil {
		return nil, err
	}
	kem, err := suite.NewKEM(hdr.KEM)
	if err != nil {
		return nil, err
	}
	kdf, err := suite.NewDerivation(hdr.KDF)
	if err != nil {
		return nil, err
	}

	shared, err := kem.Decapsulate(opts.RecipientPrivateKey, hdr.EncapsulatedKey)
	if err != nil {
		return nil, fmt.Errorf("establishing envelope key: %w", err)
	}
	defer suite.Wipe(shared)

	context := hdr.ContextBytes()
	key, err := kdf.Derive(shared, nil, context, info.KeySize)
	if err != nil {
		return nil, fmt.Errorf("deriving envelope key: %w", err)
	}
	defer suite.Wipe(key)

	return chunk.NewCipher(hdr.AEAD, key, hdr.BaseNonce, context, opts.AAD)
}

// verifyChunkArea checks the envelope signature over the canonical header
// bytes and the chunk area digest. An unsigned envelope is rejected outright
// because a supplied verification key is a demand, not a hint.
func verifyChunkArea(hdr *frame.Header, verifyKey, chunks []byte) error {
	if hdr.Sig == suite.TagNone {
		return fmt.Errorf("%w: envelope is not signed", suite.ErrSignatureInvalid)
	}
	signer, err := suite.NewSigner(hdr.Sig)
	if err != nil {
		return err
	}
	digest := blake2b.Sum256(chunks)
	if err := signer.Verify(verifyKey, signedMessage(hdr.ContextBytes(), digest[:]), hdr.Signature); err != nil {
		return fmt.Errorf("verifying envelope signature: %w", err)
	}
	return nil
}

// signedMessage builds the byte string the envelope signature covers.
func signedMessage(context, digest []byte) []byte {
	message := make([]byte, 0, len(context)+len(digest))
	message = append(message, context...)
	message = append(message, digest...)
	return message
}
