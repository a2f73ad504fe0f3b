// Package hybrid seals and opens self-describing envelopes that combine key
// encapsulation, key derivation, chunked authenticated encryption, and an
// optional detached signature.
//
// A sealed envelope needs nothing but the recipient's private key to open:
// the header names every algorithm, carries the encapsulated key and base
// nonce, and the chunk area follows immediately after.
//
// # Sealing
//
// Seal encapsulates a fresh shared secret against the recipient's public
// key, derives the symmetric key over the canonical header bytes, and
// encrypts the plaintext chunk by chunk:
//
//	opts := hybrid.NewSealOptions()
//	opts.RecipientPublicKey = recipientPublic
//	envelope, err := hybrid.Seal(opts, plaintext)
//
// Binding the header into key derivation means any later mutation of the
// header (chunk size, base nonce, algorithm tags, encapsulated key) changes
// the derived key, so tampering is caught at open time even before the
// first authentication tag is checked.
//
// # Opening
//
// Open parses the header, decapsulates the shared secret, re-derives the
// symmetric key, and decrypts:
//
//	plaintext, err := hybrid.Open(&hybrid.OpenOptions{
//		RecipientPrivateKey: recipientPrivate,
//	}, envelope)
//
// Decryption fails closed at the first failing stage and never returns
// partial plaintext.
//
// # Signing
//
// Supplying a signing key to Seal embeds a signature over the canonical
// header bytes and a digest of the chunk area. Opening with a verification
// key refuses to release any plaintext until the signature checks out, and
// refuses unsigned envelopes outright. Opening without a verification key
// ignores the signature; chunk authentication still applies.
//
// # Streaming
//
// NewSealWriter and NewOpenReader run the same envelope format over
// io.Writer and io.Reader, one chunk in memory at a time. Streamed sealing
// cannot sign (the header is emitted before the chunk digest can exist), and
// opening a signed envelope from a stream needs an io.ReadSeeker so the
// chunk area can be digested before any plaintext flows.
package hybrid
