package sealbox

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/sealbox/chunk"
	"github.com/opd-ai/sealbox/frame"
	"github.com/opd-ai/sealbox/limits"
	"github.com/opd-ai/sealbox/pipeline"
	"github.com/opd-ai/sealbox/suite"
)

// Encrypt seals plaintext under key into a self-describing symmetric
// envelope. The key is used directly and must match the AEAD's key size.
// Workers greater than one encrypt chunks in parallel; the output bytes are
// identical either way because every chunk nonce is derived from the chunk
// index.
func Encrypt(key, plaintext []byte, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = NewOptions()
	}

	hdr, cipher, err := symmetricSealParams(key, opts)
	if err != nil {
		return nil, err
	}

	chunks, err := pipeline.Encrypt(cipher, opts.ChunkSize, opts.Workers, plaintext)
	if err != nil {
		return nil, err
	}

	envelope := make([]byte, 0, hdr.EncodedSize()+len(chunks))
	envelope = append(envelope, hdr.Encode()...)
	envelope = append(envelope, chunks...)

	logrus.WithFields(logrus.Fields{
		"function":      "Encrypt",
		"aead":          opts.AEAD.String(),
		"envelope_size": len(envelope),
	}).Info("Symmetric envelope sealed")
	return envelope, nil
}

// Decrypt opens a symmetric envelope produced by Encrypt. The algorithm,
// chunk size, and base nonce come from the envelope header; opts supplies
// only the caller associated data and the worker bound. Decryption fails
// closed on any tampering and never returns partial plaintext.
func Decrypt(key, envelope []byte, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = NewOptions()
	}

	hdr, consumed, err := frame.Decode(envelope)
	if err != nil {
		return nil, err
	}

	cipher, err := symmetricOpenCipher(key, hdr, opts.AAD)
	if err != nil {
		return nil, err
	}

	plaintext, err := pipeline.Decrypt(cipher, hdr.ChunkSize, opts.Workers, envelope[consumed:])
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":       "Decrypt",
		"aead":           hdr.AEAD.String(),
		"plaintext_size": len(plaintext),
	}).Info("Symmetric envelope opened")
	return plaintext, nil
}

// symmetricSealParams builds the envelope header and the ready chunk cipher
// for the direct-key workflows.
func symmetricSealParams(key []byte, opts *Options) (*frame.Header, *chunk.Cipher, error) {
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

	baseNonce := make([]byte, info.NonceSize)
	if _, err := io.ReadFull(opts.random(), baseNonce); err != nil {
		return nil, nil, fmt.Errorf("reading base nonce: %w", err)
	}

	hdr := &frame.Header{
		Version:   frame.Version1,
		AEAD:      opts.AEAD,
		ChunkSize: opts.ChunkSize,
		BaseNonce: baseNonce,
		AADLen:    uint32(len(opts.AAD)),
	}
	if err := hdr.Validate(); err != nil {
		return nil, nil, err
	}

	cipher, err := chunk.NewCipher(opts.AEAD, key, baseNonce, hdr.ContextBytes(), opts.AAD)
	if err != nil {
		return nil, nil, err
	}
	return hdr, cipher, nil
}

// symmetricOpenCipher validates a parsed header for direct-key opening and
// returns the ready chunk cipher.
func symmetricOpenCipher(key []byte, hdr *frame.Header, aad []byte) (*chunk.Cipher, error) {
	if hdr.KEM != suite.TagNone {
		return nil, errors.New("hybrid envelope: open it with Open")
	}
	if err := limits.ValidateAAD(aad); err != nil {
		return nil, err
	}
	if uint32(len(aad)) != hdr.AADLen {
		return nil, fmt.Errorf("%w: caller associated data is %d bytes, header says %d",
			frame.ErrInvalidLength, len(aad), hdr.AADLen)
	}
	return chunk.NewCipher(hdr.AEAD, key, hdr.BaseNonce, hdr.ContextBytes(), aad)
}
