package suite

import (
	"fmt"
	"io"

	"golang.org/x/crypto/sha3"
)

// XOF is an extendable output function. Expand absorbs a seed and a context
// string and squeezes the requested number of output bytes. Callers feeding
// variable-length seeds are responsible for delimiting them; the envelope
// engines only ever pass fixed-width secrets.
type XOF interface {
	Expand(seed, context []byte, length int) ([]byte, error)
}

// NewXOF constructs the extendable output function registered under tag.
func NewXOF(tag Tag) (XOF, error) {
	switch tag {
	case XOFShake128:
		return shakeXOF{tag: tag}, nil
	case XOFShake256:
		return shakeXOF{tag: tag}, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x is not an extendable output function", ErrUnknownTag, uint8(tag))
	}
}

// shakeXOF implements XOF with SHAKE128 or SHAKE256. A fresh sponge is built
// per call, so instances carry no state and are safe to share.
type shakeXOF struct {
	tag Tag
}

func (s shakeXOF) Expand(seed, context []byte, length int) ([]byte, error) {
	if length <= 0 {
		return nil, fmt.Errorf("xof output length must be positive, got %d", length)
	}

	var sponge sha3.ShakeHash
	if s.tag == XOFShake128 {
		sponge = sha3.NewShake128()
	} else {
		sponge = sha3.NewShake256()
	}

	sponge.Write(seed)
	sponge.Write(context)

	out := make([]byte, length)
	if _, err := io.ReadFull(sponge, out); err != nil {
		return nil, fmt.Errorf("shake expansion of %d bytes: %w", length, err)
	}
	return out, nil
}
