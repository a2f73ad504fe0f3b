// Package limits provides centralized size and capacity limits for envelope
// processing. This ensures consistent validation across the buffered, parallel,
// and streaming engines.
package limits

import (
	"errors"
	"fmt"
)

const (
	// DefaultChunkSize is the chunk size used when the caller does not choose one (64 KiB)
	// This balances per-chunk overhead against parallel scheduling granularity
	DefaultChunkSize = 64 * 1024

	// MinChunkSize is the smallest chunk size an envelope may declare
	MinChunkSize = 1

	// MaxChunkSize is the largest chunk size an envelope may declare (1 GiB)
	// This prevents memory exhaustion from hostile headers
	MaxChunkSize = 1 << 30

	// MaxChunkCount is the maximum number of chunks a single envelope may carry
	// The per-chunk counter occupies the trailing 8 bytes of the nonce; capping
	// the count at 2^48 keeps the counter far from wrapping under any chunk size
	MaxChunkCount = uint64(1) << 48

	// MaxAADLen is the maximum associated data length an envelope may bind (1 MiB)
	// This bounds the header size and prevents memory exhaustion attacks
	MaxAADLen = 1024 * 1024
)

var (
	// ErrChunkSizeInvalid indicates a chunk size outside [MinChunkSize, MaxChunkSize]
	ErrChunkSizeInvalid = errors.New("invalid chunk size")

	// ErrCapacityExceeded indicates an envelope would need more chunks than the
	// nonce counter space allows
	ErrCapacityExceeded = errors.New("chunk capacity exceeded")

	// ErrAADTooLarge indicates associated data exceeds MaxAADLen
	ErrAADTooLarge = errors.New("associated data too large")
)

// ValidateChunkSize validates a declared chunk size against the permitted range.
// Returns an error with context including the actual size and the violated bound.
func ValidateChunkSize(size uint32) error {
	if size < MinChunkSize {
		return fmt.Errorf("%w: size %d below minimum %d", ErrChunkSizeInvalid, size, MinChunkSize)
	}
	if size > MaxChunkSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrChunkSizeInvalid, size, MaxChunkSize)
	}
	return nil
}

// ValidateAAD validates associated data length against MaxAADLen.
// Empty associated data is valid; the limit only bounds the upper end.
func ValidateAAD(aad []byte) error {
	if len(aad) > MaxAADLen {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrAADTooLarge, len(aad), MaxAADLen)
	}
	return nil
}

// ChunkCount computes how many chunks a payload of totalLen bytes occupies at
// the given chunk size, validating the result against MaxChunkCount. A zero
// totalLen yields zero chunks. The computation allocates nothing, so callers
// can reject oversized workloads before touching any payload memory.
func ChunkCount(totalLen uint64, chunkSize uint32) (uint64, error) {
	if err := ValidateChunkSize(chunkSize); err != nil {
		return 0, err
	}
	count := totalLen / uint64(chunkSize)
	if totalLen%uint64(chunkSize) != 0 {
		count++
	}
	if count > MaxChunkCount {
		return 0, fmt.Errorf("%w: payload of %d bytes needs %d chunks, limit %d", ErrCapacityExceeded, totalLen, count, MaxChunkCount)
	}
	return count, nil
}

// ValidateChunkIndex validates that a chunk counter value is still inside the
// nonce counter space. Streaming encryptors call this before sealing each
// chunk because their total payload length is unknown up front.
func ValidateChunkIndex(index uint64) error {
	if index >= MaxChunkCount {
		return fmt.Errorf("%w: chunk index %d reached limit %d", ErrCapacityExceeded, index, MaxChunkCount)
	}
	return nil
}
