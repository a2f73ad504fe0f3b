package suite

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tink-crypto/tink-go/v2/daead"
	"github.com/tink-crypto/tink-go/v2/insecurecleartextkeyset"
	"github.com/tink-crypto/tink-go/v2/keyset"
	aes_sivpb "github.com/tink-crypto/tink-go/v2/proto/aes_siv_go_proto"
	tinkpb "github.com/tink-crypto/tink-go/v2/proto/tink_go_proto"
	"github.com/tink-crypto/tink-go/v2/tink"
	"google.golang.org/protobuf/proto"
)

// sivAEAD adapts Tink's deterministic AES-SIV primitive to the AEAD interface.
// AES-SIV takes no nonce of its own; the 16-byte nonce slot is appended to the
// additional data instead, so distinct chunk counters still produce distinct
// ciphertexts and a moved chunk still fails authentication.
type sivAEAD struct {
	primitive tink.DeterministicAEAD
}

func newSivAEAD(key []byte) (*sivAEAD, error) {
	if len(key) != 64 {
		return nil, errors.New("aes-siv key must be 64 bytes")
	}
	handle, err := sivKeysetHandle(key)
	if err != nil {
		return nil, err
	}
	primitive, err := daead.New(handle)
	if err != nil {
		return nil, fmt.Errorf("initializing aes-siv primitive: %w", err)
	}
	return &sivAEAD{primitive: primitive}, nil
}

func (s *sivAEAD) NonceSize() int { return 16 }

func (s *sivAEAD) Overhead() int { return 16 }

func (s *sivAEAD) Seal(dst, nonce, plaintext, additionalData []byte) []byte {
	ct, err := s.primitive.EncryptDeterministically(plaintext, sivAssociatedData(nonce, additionalData))
	if err != nil {
		// EncryptDeterministically only fails on inputs beyond AES-SIV's
		// internal size bound, which the engines' chunk limits rule out
		panic("suite: aes-siv encryption failed: " + err.Error())
	}
	return append(dst, ct...)
}

func (s *sivAEAD) Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error) {
	pt, err := s.primitive.DecryptDeterministically(ciphertext, sivAssociatedData(nonce, additionalData))
	if err != nil {
		return nil, errors.New("aes-siv: message authentication failed")
	}
	return append(dst, pt...), nil
}

func sivAssociatedData(nonce, additionalData []byte) []byte {
	ad := make([]byte, 0, len(additionalData)+len(nonce))
	ad = append(ad, additionalData...)
	ad = append(ad, nonce...)
	return ad
}

// sivKeysetHandle creates a Tink keyset handle for AES-SIV from raw key bytes.
// The handle is used to initialize the deterministic AEAD primitive.
func sivKeysetHandle(key []byte) (*keyset.Handle, error) {
	aesSivKey := &aes_sivpb.AesSivKey{
		Version:  0,
		KeyValue: key,
	}

	serializedKey, err := proto.Marshal(aesSivKey)
	if err != nil {
		return nil, fmt.Errorf("serializing AesSivKey: %w", err)
	}

	keyData := &tinkpb.KeyData{
		TypeUrl:         "type.googleapis.com/google.crypto.tink.AesSivKey",
		Value:           serializedKey,
		KeyMaterialType: tinkpb.KeyData_SYMMETRIC,
	}

	keySet := &tinkpb.Keyset{
		PrimaryKeyId: 1,
		Key: []*tinkpb.Keyset_Key{
			{
				KeyData:          keyData,
				Status:           tinkpb.KeyStatusType_ENABLED,
				KeyId:            1,
				OutputPrefixType: tinkpb.OutputPrefixType_RAW,
			},
		},
	}

	serializedKeyset, err := proto.Marshal(keySet)
	if err != nil {
		return nil, fmt.Errorf("serializing keyset: %w", err)
	}

	handle, err := insecurecleartextkeyset.Read(
		keyset.NewBinaryReader(bytes.NewReader(serializedKeyset)))
	if err != nil {
		return nil, fmt.Errorf("creating keyset handle: %w", err)
	}

	return handle, nil
}
