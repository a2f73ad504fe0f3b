// Package sealbox implements stateless chunked authenticated encryption
// workflows over interchangeable cryptographic algorithms.
//
// A sealed envelope is self-describing: a compact header names the
// algorithms and carries the base nonce, followed by independently
// authenticated chunks. Every chunk nonce is derived from the envelope's
// base nonce and the chunk index, so chunks can be encrypted in parallel or
// streamed one at a time and the bytes come out identical.
//
// Four workflows share the format:
//
//   - Buffered: Encrypt and Decrypt over byte slices.
//   - Parallel: the same calls with Options.Workers > 1.
//   - Streaming: NewStreamWriter and NewStreamReader over io.Writer and
//     io.Reader, one chunk in memory at a time.
//   - Hybrid: Seal and Open, which encapsulate a fresh shared secret
//     against a recipient's public key and derive the chunk key from it,
//     with an optional sender signature.
//
// Example:
//
//	opts := sealbox.NewOptions()
//	opts.Workers = 8
//
//	envelope, err := sealbox.Encrypt(key, data, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	plaintext, err := sealbox.Decrypt(key, envelope, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Hybrid envelopes need only the recipient's public key to seal and the
// matching private key to open:
//
//	sealOpts := sealbox.NewSealOptions()
//	sealOpts.RecipientPublicKey = recipientPublic
//
//	envelope, err := sealbox.Seal(sealOpts, data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	plaintext, err := sealbox.Open(&sealbox.OpenOptions{
//	    RecipientPrivateKey: recipientPrivate,
//	}, envelope)
//
// No state persists between calls: every workflow takes all keys, algorithm
// choices, and I/O handles explicitly and leaves nothing behind.
package sealbox
