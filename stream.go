package sealbox

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/opd-ai/sealbox/frame"
	"github.com/opd-ai/sealbox/stream"
)

// NewStreamWriter writes a symmetric envelope header to dst and returns a
// writer that seals everything written to it as ordered chunks, one chunk
// in memory at a time. Closing the writer flushes the final short chunk; it
// does not close dst. The resulting envelope is byte-compatible with
// Encrypt and can be opened by Decrypt or NewStreamReader.
func NewStreamWriter(ctx context.Context, dst io.Writer, key []byte, opts *Options) (io.WriteCloser, error) {
	if dst == nil {
		return nil, errors.New("nil destination writer")
	}
	if opts == nil {
		opts = NewOptions()
	}

	hdr, cipher, err := symmetricSealParams(key, opts)
	if err != nil {
		return nil, err
	}
	if _, err := dst.Write(hdr.Encode()); err != nil {
		return nil, fmt.Errorf("writing envelope header: %w", err)
	}
	return stream.NewWriter(ctx, dst, cipher, opts.ChunkSize)
}

// NewStreamReader parses a symmetric envelope header from src and returns a
// reader serving the decrypted plaintext chunk by chunk. The envelope
// describes its own algorithm and chunk size; opts contributes only the
// caller associated data, which must match the sealing side.
func NewStreamReader(ctx context.Context, src io.Reader, key []byte, opts *Options) (io.Reader, error) {
	if src == nil {
		return nil, errors.New("nil source reader")
	}
	if opts == nil {
		opts = NewOptions()
	}

	hdr, err := frame.DecodeFrom(src)
	if err != nil {
		return nil, err
	}
	cipher, err := symmetricOpenCipher(key, hdr, opts.AAD)
	if err != nil {
		return nil, err
	}
	return stream.NewReader(ctx, src, cipher, hdr.ChunkSize)
}
