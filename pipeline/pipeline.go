// Package pipeline implements the chunk-area engines for whole-buffer
// workloads: a sequential path and a bounded-parallelism path that preserves
// chunk order in the output regardless of completion order.
package pipeline

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/sealbox/chunk"
	"github.com/opd-ai/sealbox/limits"
)

// EffectiveWorkers resolves a caller-supplied worker count: zero or negative
// means one worker per CPU, and the count is never higher than the number of
// chunks to process.
func EffectiveWorkers(workers int, chunks uint64) int {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if uint64(workers) > chunks {
		workers = int(chunks)
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// Encrypt seals plaintext into the chunk area of an envelope: every chunk of
// chunkSize bytes is sealed at its index, the final chunk keeping whatever
// remains. The output layout is position-determined, so parallel workers
// write disjoint segments and the result is byte-identical to the sequential
// path. Empty plaintext produces an empty chunk area.
func Encrypt(cipher *chunk.Cipher, chunkSize uint32, workers int, plaintext []byte) ([]byte, error) {
	count, err := limits.ChunkCount(uint64(len(plaintext)), chunkSize)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []byte{}, nil
	}

	overhead := uint64(cipher.Overhead())
	sealedSize := uint64(chunkSize) + overhead
	total := uint64(len(plaintext)) + count*overhead
	workers = EffectiveWorkers(workers, count)

	logrus.WithFields(logrus.Fields{
		"function":   "Encrypt",
		"chunks":     count,
		"chunk_size": chunkSize,
		"workers":    workers,
	}).Debug("Sealing chunk area")

	if workers == 1 {
		out := make([]byte, 0, total)
		for i := uint64(0); i < count; i++ {
			out = cipher.Seal(out, i, plaintextSegment(plaintext, i, chunkSize))
		}
		return out, nil
	}

	out := make([]byte, total)
	var group errgroup.Group
	group.SetLimit(workers)

	for i := uint64(0); i < count; i++ {
		i := i
		group.Go(func() error {
			segment := plaintextSegment(plaintext, i, chunkSize)
			start := i * sealedSize
			end := start + uint64(len(segment)) + overhead
			cipher.Seal(out[start:start:end], i, segment)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Decrypt opens the chunk area of an envelope. The chunk geometry is implied
// by the header's chunk size: every sealed chunk spans chunkSize plus the
// authentication overhead, except a possibly shorter final chunk. The first
// observed failure aborts the operation, remaining work is skipped, and when
// several chunks have failed the lowest chunk index wins. Partial plaintext
// is never returned.
func Decrypt(cipher *chunk.Cipher, chunkSize uint32, workers int, ciphertext []byte) ([]byte, error) {
	if err := limits.ValidateChunkSize(chunkSize); err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 {
		return []byte{}, nil
	}

	overhead := uint64(cipher.Overhead())
	sealedSize := uint64(chunkSize) + overhead
	total := uint64(len(ciphertext))

	count := total / sealedSize
	if total%sealedSize != 0 {
		count++
	}
	if count > limits.MaxChunkCount {
		return nil, fmt.Errorf("%w: chunk area holds %d chunks, limit %d", limits.ErrCapacityExceeded, count, limits.MaxChunkCount)
	}

	// The final chunk may be short but must still carry its tag
	lastSize := total - (count-1)*sealedSize
	if lastSize < overhead {
		return nil, fmt.Errorf("%w: chunk %d shorter than its authentication tag", chunk.ErrAuthentication, count-1)
	}

	plainTotal := total - count*overhead
	workers = EffectiveWorkers(workers, count)

	logrus.WithFields(logrus.Fields{
		"function":   "Decrypt",
		"chunks":     count,
		"chunk_size": chunkSize,
		"workers":    workers,
	}).Debug("Opening chunk area")

	if workers == 1 {
		out := make([]byte, 0, plainTotal)
		for i := uint64(0); i < count; i++ {
			var err error
			out, err = cipher.Open(out, i, ciphertextSegment(ciphertext, i, sealedSize))
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "Decrypt",
					"chunk":    i,
				}).Warn("Chunk failed authentication")
				return nil, err
			}
		}
		return out, nil
	}

	out := make([]byte, plainTotal)
	failures := make([]error, count)
	var failed atomic.Bool

	var group errgroup.Group
	group.SetLimit(workers)

	for i := uint64(0); i < count; i++ {
		i := i
		group.Go(func() error {
			if failed.Load() {
				return nil
			}
			segment := ciphertextSegment(ciphertext, i, sealedSize)
			start := i * uint64(chunkSize)
			end := start + uint64(len(segment)) - overhead
			if _, err := cipher.Open(out[start:start:end], i, segment); err != nil {
				failures[i] = err
				failed.Store(true)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if failed.Load() {
		for i, err := range failures {
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "Decrypt",
					"chunk":    i,
				}).Warn("Chunk failed authentication")
				return nil, err
			}
		}
	}
	return out, nil
}

// plaintextSegment returns the plaintext slice for chunk i.
func plaintextSegment(plaintext []byte, i uint64, chunkSize uint32) []byte {
	start := i * uint64(chunkSize)
	end := start + uint64(chunkSize)
	if end > uint64(len(plaintext)) {
		end = uint64(len(plaintext))
	}
	return plaintext[start:end]
}

// ciphertextSegment returns the sealed chunk slice for chunk i.
func ciphertextSegment(ciphertext []byte, i uint64, sealedSize uint64) []byte {
	start := i * sealedSize
	end := start + sealedSize
	if end > uint64(len(ciphertext)) {
		end = uint64(len(ciphertext))
	}
	return ciphertext[start:end]
}
