package sealbox

import (
	"context"
	"io"

	"github.com/opd-ai/sealbox/hybrid"
)

// SealOptions configures hybrid envelope sealing.
type SealOptions = hybrid.SealOptions

// OpenOptions configures hybrid envelope opening.
type OpenOptions = hybrid.OpenOptions

// NewSealOptions returns hybrid sealing options with the default algorithm
// selection.
func NewSealOptions() *SealOptions {
	return hybrid.NewSealOptions()
}

// Seal encrypts plaintext into a hybrid envelope for the recipient named in
// opts: a fresh shared secret is encapsulated against the recipient's
// public key and the symmetric key is derived from it and the header bytes.
func Seal(opts *SealOptions, plaintext []byte) ([]byte, error) {
	return hybrid.Seal(opts, plaintext)
}

// Open decrypts a hybrid envelope using the recipient's private key.
func Open(opts *OpenOptions, envelope []byte) ([]byte, error) {
	return hybrid.Open(opts, envelope)
}

// NewSealWriter streams a hybrid envelope to dst, one chunk in memory at a
// time. Signing is refused; see hybrid.ErrStreamSigning.
func NewSealWriter(ctx context.Context, dst io.Writer, opts *SealOptions) (io.WriteCloser, error) {
	return hybrid.NewSealWriter(ctx, dst, opts)
}

// NewOpenReader streams plaintext out of a hybrid envelope read from src.
// Verifying a signed envelope requires src to be an io.ReadSeeker.
func NewOpenReader(ctx context.Context, src io.Reader, opts *OpenOptions) (io.Reader, error) {
	return hybrid.NewOpenReader(ctx, src, opts)
}
