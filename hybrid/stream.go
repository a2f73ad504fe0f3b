package hybrid

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	"github.com/opd-ai/sealbox/frame"
	"github.com/opd-ai/sealbox/stream"
	"github.com/opd-ai/sealbox/suite"
)

// NewSealWriter writes the envelope header to dst and returns a writer that
// seals everything written to it as ordered chunks. Closing the writer
// flushes the final short chunk; it does not close dst.
//
// Signing is refused with ErrStreamSigning. The signature covers a digest of
// the whole chunk area, which cannot exist before the header has already
// been written.
func NewSealWriter(ctx context.Context, dst io.Writer, opts *SealOptions) (io.WriteCloser, error) {
	if opts == nil {
		return nil, errors.New("nil seal options")
	}
	if dst == nil {
		return nil, errors.New("nil destination writer")
	}
	if opts.SignerPrivateKey != nil || opts.Sig != suite.TagNone {
		return nil, ErrStreamSigning
	}

	hdr, cipher, err := prepareSeal(opts, suite.TagNone)
	if err != nil {
		return nil, err
	}
	if _, err := dst.Write(hdr.Encode()); err != nil {
		return nil, fmt.Errorf("writing envelope header: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":   "NewSealWriter",
		"aead":       opts.AEAD.String(),
		"kem":        opts.KEM.String(),
		"chunk_size": opts.ChunkSize,
	}).Debug("Streaming hybrid envelope")

	return stream.NewWriter(ctx, dst, cipher, opts.ChunkSize)
}

// NewOpenReader parses the envelope header from src and returns a reader
// serving the decrypted plaintext chunk by chunk.
//
// When a verification key is supplied the envelope must be signed and src
// must implement io.ReadSeeker: the chunk area is digested and the
// signature verified before the first plaintext byte is served, then the
// source is rewound for decryption. A plain reader yields
// ErrUnseekableSource in that case.
func NewOpenReader(ctx context.Context, src io.Reader, opts *OpenOptions) (io.Reader, error) {
	if opts == nil {
		return nil, errors.New("nil open options")
	}
	if src == nil {
		return nil, errors.New("nil source reader")
	}

	hdr, err := frame.DecodeFrom(src)
	if err != nil {
		return nil, err
	}

	if opts.VerifyPublicKey != nil {
		if hdr.Sig == suite.TagNone {
			return nil, fmt.Errorf("%w: envelope is not signed", suite.ErrSignatureInvalid)
		}
		seeker, ok := src.(io.ReadSeeker)
		if !ok {
			return nil, ErrUnseekableSource
		}
		if err := verifyChunkStream(hdr, opts.VerifyPublicKey, seeker); err != nil {
			return nil, err
		}
	}

	cipher, err := openCipher(opts, hdr)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":   "NewOpenReader",
		"aead":       hdr.AEAD.String(),
		"kem":        hdr.KEM.String(),
		"chunk_size": hdr.ChunkSize,
	}).Debug("Streaming hybrid envelope open")

	return stream.NewReader(ctx, src, cipher, hdr.ChunkSize)
}

// verifyChunkStream digests the remainder of the source, verifies the
// envelope signature, and rewinds the source to where the chunk area began.
func verifyChunkStream(hdr *frame.Header, verifyKey []byte, src io.ReadSeeker) error {
	signer, err := suite.NewSigner(hdr.Sig)
	if err != nil {
		return err
	}

	start, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("locating chunk area: %w", err)
	}
	hasher, err := blake2b.New256(nil)
	if err != nil {
		return fmt.Errorf("initializing chunk digest: %w", err)
	}
	if _, err := io.Copy(hasher, src); err != nil {
		return fmt.Errorf("digesting chunk area: %w", err)
	}
	if _, err := src.Seek(start, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding to chunk area: %w", err)
	}

	if err := signer.Verify(verifyKey, signedMessage(hdr.ContextBytes(), hasher.Sum(nil)), hdr.Signature); err != nil {
		return fmt.Errorf("verifying envelope signature: %w", err)
	}
	return nil
}
