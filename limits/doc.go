// Package limits provides centralized size constants and validation functions
// for envelope processing. This package ensures consistent capacity enforcement
// across the buffered, parallel, and streaming engines.
//
// # Limit Hierarchy
//
// The package defines the bounds that keep chunked envelope processing inside
// safe memory and nonce-counter territory:
//
//   - DefaultChunkSize (64 KiB): The chunk size chosen when the caller does not
//     pick one. Large enough to amortize per-chunk authentication overhead,
//     small enough to give parallel workers useful scheduling granularity.
//
//   - MinChunkSize / MaxChunkSize (1 byte, 1 GiB): The range of chunk sizes an
//     envelope header may declare. The upper bound prevents hostile headers
//     from provoking gigantic allocations.
//
//   - MaxChunkCount (2^48): The maximum number of chunks in one envelope. The
//     chunk counter is folded into the trailing 8 bytes of the nonce, and the
//     cap keeps the counter far from wrapping for any permitted chunk size.
//
//   - MaxAADLen (1 MiB): The maximum associated data length the header may
//     bind. This bounds header size against memory exhaustion.
//
// # Validation Functions
//
// Validation happens before any payload memory is touched:
//
//	count, err := limits.ChunkCount(uint64(len(plaintext)), chunkSize)
//	if err != nil {
//	    // Handle ErrChunkSizeInvalid or ErrCapacityExceeded
//	}
//
// ChunkCount allocates nothing, so a caller can reject an absurd workload
// (for example a petabyte payload at one-byte chunks) without attempting it.
// Streaming encryptors, which cannot know their total length up front, call
// ValidateChunkIndex before sealing each chunk instead.
//
// # Error Types
//
// The package provides structured errors with context:
//
//   - ErrChunkSizeInvalid: Returned when a chunk size falls outside the range
//   - ErrCapacityExceeded: Returned when an envelope would exhaust counters
//   - ErrAADTooLarge: Returned when associated data exceeds MaxAADLen
package limits
