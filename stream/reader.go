package stream

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/opd-ai/sealbox/chunk"
	"github.com/opd-ai/sealbox/limits"
)

// Reader opens a stream of sealed chunks from an underlying source. Each
// read step pulls one sealed chunk, authenticates and decrypts it, and
// serves the plaintext from an internal window. A source that ends exactly
// at a chunk boundary yields a clean EOF; one that ends mid-chunk yields a
// short final chunk, which is valid as long as it still authenticates.
//
// A Reader is not safe for concurrent use. Errors are sticky, and a chunk
// that fails authentication poisons the stream; no plaintext from it is
// ever served.
type Reader struct {
	ctx        context.Context
	src        io.Reader
	cipher     *chunk.Cipher
	sealedSize int

	sealed    []byte
	window    []byte
	windowBuf []byte
	index     uint64
	done      bool
	err       error
}

// NewReader builds an opening reader over src. The context is checked at
// every chunk boundary.
func NewReader(ctx context.Context, src io.Reader, cipher *chunk.Cipher, chunkSize uint32) (*Reader, error) {
	if src == nil {
		return nil, errors.New("nil source reader")
	}
	if cipher == nil {
		return nil, errors.New("nil chunk cipher")
	}
	if err := limits.ValidateChunkSize(chunkSize); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	sealedSize := int(chunkSize) + cipher.Overhead()
	return &Reader{
		ctx:        ctx,
		src:        src,
		cipher:     cipher,
		sealedSize: sealedSize,
		sealed:     make([]byte, sealedSize),
		windowBuf:  make([]byte, 0, chunkSize),
	}, nil
}

// Read serves decrypted plaintext, pulling and opening the next sealed chunk
// whenever the window runs dry.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for {
		if len(r.window) > 0 {
			n := copy(p, r.window)
			r.window = r.window[n:]
			return n, nil
		}
		if r.err != nil {
			return 0, r.err
		}
		if r.done {
			return 0, io.EOF
		}
		if err := r.ctx.Err(); err != nil {
			r.err = fmt.Errorf("stream cancelled before chunk %d: %w", r.index, err)
			return 0, r.err
		}

		n, err := io.ReadFull(r.src, r.sealed)
		switch {
		case errors.Is(err, io.EOF):
			// Source ended exactly at a chunk boundary
			r.done = true
			continue
		case errors.Is(err, io.ErrUnexpectedEOF):
			// Short final chunk
			r.done = true
		case err != nil:
			r.err = fmt.Errorf("reading sealed chunk %d: %w", r.index, err)
			return 0, r.err
		}

		if err := limits.ValidateChunkIndex(r.index); err != nil {
			r.err = err
			return 0, r.err
		}

		plaintext, err := r.cipher.Open(r.windowBuf[:0], r.index, r.sealed[:n])
		if err != nil {
			r.err = err
			return 0, r.err
		}
		r.index++
		r.window = plaintext
	}
}
