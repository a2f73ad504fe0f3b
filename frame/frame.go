// Package frame implements the envelope header codec. The header is the
// self-describing prefix of every envelope: format version, algorithm tags,
// chunk size, base nonce, associated data length, and the optional
// encapsulated key and signature.
package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/opd-ai/sealbox/suite"
)

// Version1 is the only envelope format version currently defined.
const Version1 = 1

// prefixSize covers the fixed leading fields: version, four algorithm tags,
// and the chunk size.
const prefixSize = 9

var (
	// ErrTruncated indicates input that ends before the structure it announces
	ErrTruncated = errors.New("truncated header")

	// ErrUnknownAlgorithm indicates an unregistered algorithm tag or an
	// unsupported format version
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrInvalidLength indicates a length field inconsistent with the rest of
	// the header
	ErrInvalidLength = errors.New("invalid length field")
)

// Header is the decoded form of an envelope header. It is built once by the
// sealing engine and treated as read-only afterwards; nothing in this package
// mutates a Header after construction.
type Header struct {
	// Version is the envelope format version.
	Version byte

	// AEAD names the bulk encryption algorithm. Always active.
	AEAD suite.Tag

	// KDF names the key derivation algorithm, or TagNone in symmetric mode.
	// XOF tags are valid here.
	KDF suite.Tag

	// KEM names the key encapsulation mechanism, or TagNone in symmetric mode.
	KEM suite.Tag

	// Sig names the signature scheme, or TagNone for unsigned envelopes.
	Sig suite.Tag

	// ChunkSize is the plaintext chunk size in bytes.
	ChunkSize uint32

	// BaseNonce is the per-envelope random nonce the chunk counter is folded
	// into. Its length equals the AEAD's nonce size.
	BaseNonce []byte

	// AADLen is the length of the caller's associated data. The data itself
	// travels out of band; only its length is committed in the header.
	AADLen uint32

	// EncapsulatedKey holds the KEM output in hybrid mode, empty otherwise.
	EncapsulatedKey []byte

	// Signature holds the detached envelope signature, empty when unsigned.
	Signature []byte
}

// Validate checks the header for internal consistency: registered tags in
// the right slots, a nonzero chunk size, a base nonce matching the AEAD
// geometry, and length-consistent key and signature fields. Sealing engines
// call this before encoding.
func (h *Header) Validate() error {
	if h.Version != Version1 {
		return fmt.Errorf("%w: unsupported version %d", ErrUnknownAlgorithm, h.Version)
	}

	info, err := suite.AEADInfo(h.AEAD)
	if err != nil {
		return fmt.Errorf("%w: aead slot holds %s", ErrUnknownAlgorithm, h.AEAD)
	}

	if k := h.KDF.Kind(); h.KDF != suite.TagNone && k != suite.KindKDF && k != suite.KindXOF {
		return fmt.Errorf("%w: kdf slot holds %s", ErrUnknownAlgorithm, h.KDF)
	}
	if h.KEM != suite.TagNone && h.KEM.Kind() != suite.KindKEM {
		return fmt.Errorf("%w: kem slot holds %s", ErrUnknownAlgorithm, h.KEM)
	}
	if h.Sig != suite.TagNone && h.Sig.Kind() != suite.KindSignature {
		return fmt.Errorf("%w: signature slot holds %s", ErrUnknownAlgorithm, h.Sig)
	}

	if h.ChunkSize == 0 {
		return fmt.Errorf("%w: zero chunk size", ErrInvalidLength)
	}
	if len(h.BaseNonce) != info.NonceSize {
		return fmt.Errorf("%w: base nonce is %d bytes, %s needs %d", ErrInvalidLength, len(h.BaseNonce), h.AEAD, info.NonceSize)
	}

	if h.KEM == suite.TagNone {
		if len(h.EncapsulatedKey) != 0 {
			return fmt.Errorf("%w: encapsulated key present without a kem tag", ErrInvalidLength)
		}
	} else {
		kemInfo, err := suite.KEMInfo(h.KEM)
		if err != nil {
			return fmt.Errorf("%w: kem slot holds %s", ErrUnknownAlgorithm, h.KEM)
		}
		if len(h.EncapsulatedKey) != kemInfo.EncapsulatedSize {
			return fmt.Errorf("%w: encapsulated key is %d bytes, %s needs %d", ErrInvalidLength, len(h.EncapsulatedKey), h.KEM, kemInfo.EncapsulatedSize)
		}
	}

	if h.Sig == suite.TagNone && len(h.Signature) != 0 {
		return fmt.Errorf("%w: signature present without a signature tag", ErrInvalidLength)
	}

	return nil
}

// EncodedSize returns the byte length of the encoded header.
func (h *Header) EncodedSize() int {
	return prefixSize + len(h.BaseNonce) + 4 + 2 + len(h.EncapsulatedKey) + 2 + len(h.Signature)
}

// Encode serializes the header in wire order. It does not validate; call
// Validate first when the header comes from local construction rather than
// a successful Decode.
func (h *Header) Encode() []byte {
	return h.encode(true)
}

// ContextBytes returns the canonical header encoding used as the key
// derivation context, the chunk authentication prefix, and the signed
// message prefix. It is the wire encoding with the signature length forced
// to zero and no signature bytes, so the value is stable whether or not the
// envelope ends up signed.
func (h *Header) ContextBytes() []byte {
	return h.encode(false)
}

func (h *Header) encode(includeSig bool) []byte {
	size := prefixSize + len(h.BaseNonce) + 4 + 2 + len(h.EncapsulatedKey) + 2
	if includeSig {
		size += len(h.Signature)
	}
	out := make([]byte, 0, size)

	out = append(out, h.Version, byte(h.AEAD), byte(h.KDF), byte(h.KEM), byte(h.Sig))
	out = binary.BigEndian.AppendUint32(out, h.ChunkSize)
	out = append(out, h.BaseNonce...)
	out = binary.BigEndian.AppendUint32(out, h.AADLen)
	out = binary.BigEndian.AppendUint16(out, uint16(len(h.EncapsulatedKey)))
	out = append(out, h.EncapsulatedKey...)
	if includeSig {
		out = binary.BigEndian.AppendUint16(out, uint16(len(h.Signature)))
		out = append(out, h.Signature...)
	} else {
		out = binary.BigEndian.AppendUint16(out, 0)
	}
	return out
}

// Decode parses a header from the front of data and returns it along with
// the number of bytes consumed. Trailing bytes are the chunk area and are
// left untouched.
func Decode(data []byte) (*Header, int, error) {
	r := bytes.NewReader(data)
	h, err := DecodeFrom(r)
	if err != nil {
		return nil, 0, err
	}
	return h, len(data) - r.Len(), nil
}

// DecodeFrom parses a header by reading exactly the header bytes from r.
// Streaming opens use this to consume the header before handing the rest of
// the source to the chunk reader. Short reads map to ErrTruncated; other
// read failures are returned wrapped so callers can distinguish transport
// errors from malformed input.
func DecodeFrom(r io.Reader) (*Header, error) {
	var prefix [prefixSize]byte
	if err := readFull(r, prefix[:]); err != nil {
		return nil, err
	}

	h := &Header{
		Version:   prefix[0],
		AEAD:      suite.Tag(prefix[1]),
		KDF:       suite.Tag(prefix[2]),
		KEM:       suite.Tag(prefix[3]),
		Sig:       suite.Tag(prefix[4]),
		ChunkSize: binary.BigEndian.Uint32(prefix[5:9]),
	}

	if h.Version != Version1 {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrUnknownAlgorithm, h.Version)
	}

	info, err := suite.AEADInfo(h.AEAD)
	if err != nil {
		return nil, fmt.Errorf("%w: aead slot holds %s", ErrUnknownAlgorithm, h.AEAD)
	}
	if k := h.KDF.Kind(); h.KDF != suite.TagNone && k != suite.KindKDF && k != suite.KindXOF {
		return nil, fmt.Errorf("%w: kdf slot holds %s", ErrUnknownAlgorithm, h.KDF)
	}
	if h.KEM != suite.TagNone && h.KEM.Kind() != suite.KindKEM {
		return nil, fmt.Errorf("%w: kem slot holds %s", ErrUnknownAlgorithm, h.KEM)
	}
	if h.Sig != suite.TagNone && h.Sig.Kind() != suite.KindSignature {
		return nil, fmt.Errorf("%w: signature slot holds %s", ErrUnknownAlgorithm, h.Sig)
	}

	if h.ChunkSize == 0 {
		return nil, fmt.Errorf("%w: zero chunk size", ErrInvalidLength)
	}

	h.BaseNonce = make([]byte, info.NonceSize)
	if err := readFull(r, h.BaseNonce); err != nil {
		return nil, err
	}

	var lenField [4]byte
	if err := readFull(r, lenField[:]); err != nil {
		return nil, err
	}
	h.AADLen = binary.BigEndian.Uint32(lenField[:])

	if err := readFull(r, lenField[:2]); err != nil {
		return nil, err
	}
	ekLen := int(binary.BigEndian.Uint16(lenField[:2]))
	if h.KEM == suite.TagNone {
		if ekLen != 0 {
			return nil, fmt.Errorf("%w: encapsulated key of %d bytes without a kem tag", ErrInvalidLength, ekLen)
		}
	} else {
		kemInfo, err := suite.KEMInfo(h.KEM)
		if err != nil {
			return nil, fmt.Errorf("%w: kem slot holds %s", ErrUnknownAlgorithm, h.KEM)
		}
		if ekLen != kemInfo.EncapsulatedSize {
			return nil, fmt.Errorf("%w: encapsulated key of %d bytes, %s needs %d", ErrInvalidLength, ekLen, h.KEM, kemInfo.EncapsulatedSize)
		}
		h.EncapsulatedKey = make([]byte, ekLen)
		if err := readFull(r, h.EncapsulatedKey); err != nil {
			return nil, err
		}
	}

	if err := readFull(r, lenField[:2]); err != nil {
		return nil, err
	}
	sigLen := int(binary.BigEndian.Uint16(lenField[:2]))
	if h.Sig == suite.TagNone {
		if sigLen != 0 {
			return nil, fmt.Errorf("%w: signature of %d bytes without a signature tag", ErrInvalidLength, sigLen)
		}
	} else {
		sigInfo, err := suite.SignatureInfo(h.Sig)
		if err != nil {
			return nil, fmt.Errorf("%w: signature slot holds %s", ErrUnknownAlgorithm, h.Sig)
		}
		if sigLen != sigInfo.SignatureSize {
			return nil, fmt.Errorf("%w: signature of %d bytes, %s needs %d", ErrInvalidLength, sigLen, h.Sig, sigInfo.SignatureSize)
		}
		h.Signature = make([]byte, sigLen)
		if err := readFull(r, h.Signature); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// readFull reads len(buf) bytes, mapping end-of-input to ErrTruncated and
// passing transport failures through wrapped.
func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: input ends inside a %d byte field", ErrTruncated, len(buf))
		}
		return fmt.Errorf("reading header: %w", err)
	}
	return nil
}
