// Package stream adapts chunked envelope processing to io.Writer and
// io.Reader. The adapters hold one chunk in memory at a time and process
// chunks in strict index order, trading the parallel engine's throughput for
// bounded memory and ordinary stream semantics.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/opd-ai/sealbox/chunk"
	"github.com/opd-ai/sealbox/limits"
)

// ErrClosed indicates a write to a writer that has already been closed.
var ErrClosed = errors.New("write on closed stream writer")

// Writer seals a plaintext stream into sealed chunks on an underlying
// destination. Bytes accumulate in an internal buffer until a full chunk is
// ready; Close seals whatever remains as a short final chunk. A Writer that
// never receives any bytes emits no chunks at all, so the sealed output
// matches the whole-buffer engine byte for byte.
//
// A Writer is not safe for concurrent use. Errors are sticky: once a write
// or the context fails, every later call returns the same error.
type Writer struct {
	ctx       context.Context
	dst       io.Writer
	cipher    *chunk.Cipher
	chunkSize int

	buf    []byte
	sealed []byte
	index  uint64
	closed bool
	err    error
}

// NewWriter builds a sealing writer over dst. The context is checked at
// every chunk boundary, so cancelling it abandons the stream without
// flushing further chunks.
func NewWriter(ctx context.Context, dst io.Writer, cipher *chunk.Cipher, chunkSize uint32) (*Writer, error) {
	if dst == nil {
		return nil, errors.New("nil destination writer")
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

	return &Writer{
		ctx:       ctx,
		dst:       dst,
		cipher:    cipher,
		chunkSize: int(chunkSize),
		buf:       make([]byte, 0, chunkSize),
		sealed:    make([]byte, 0, int(chunkSize)+cipher.Overhead()),
	}, nil
}

// Write consumes p into the chunk buffer, sealing and flushing every full
// chunk. It reports how many bytes were consumed before any failure.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.closed {
		return 0, ErrClosed
	}

	written := 0
	for len(p) > 0 {
		// Full chunks bypass the buffer when it is empty
		if len(w.buf) == 0 && len(p) >= w.chunkSize {
			if err := w.sealChunk(p[:w.chunkSize]); err != nil {
				w.err = err
				return written, err
			}
			p = p[w.chunkSize:]
			written += w.chunkSize
			continue
		}

		n := w.chunkSize - len(w.buf)
		if n > len(p) {
			n = len(p)
		}
		w.buf = append(w.buf, p[:n]...)
		p = p[n:]
		written += n

		if len(w.buf) == w.chunkSize {
			if err := w.sealChunk(w.buf); err != nil {
				w.err = err
				return written, err
			}
			w.buf = w.buf[:0]
		}
	}
	return written, nil
}

// Close seals any buffered bytes as the final short chunk. It does not close
// the underlying destination. Close is idempotent; calls after the first
// return the writer's sticky error state.
func (w *Writer) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true

	if w.err != nil {
		return w.err
	}
	if len(w.buf) > 0 {
		if err := w.sealChunk(w.buf); err != nil {
			w.err = err
			return err
		}
		w.buf = w.buf[:0]
	}
	return nil
}

func (w *Writer) sealChunk(plaintext []byte) error {
	if err := w.ctx.Err(); err != nil {
		return fmt.Errorf("stream cancelled before chunk %d: %w", w.index, err)
	}
	if err := limits.ValidateChunkIndex(w.index); err != nil {
		return err
	}

	sealed := w.cipher.Seal(w.sealed[:0], w.index, plaintext)
	if _, err := w.dst.Write(sealed); err != nil {
		return fmt.Errorf("writing sealed chunk %d: %w", w.index, err)
	}
	w.index++
	return nil
}
