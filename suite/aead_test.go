package suite

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

// allAEADTags lists every registered AEAD for cross-variant tests.
var allAEADTags = []Tag{
	AEADChaCha20Poly1305,
	AEADXChaCha20Poly1305,
	AEADAes256Gcm,
	AEADXSalsa20Poly1305,
	AEADAesSiv,
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("reading random bytes: %v", err)
	}
	return b
}

func TestNewAEADRoundTrip(t *testing.T) {
	plaintext := []byte("the quick brown fox jumps over the lazy dog")
	additionalData := []byte("bound context")

	for _, tag := range allAEADTags {
		t.Run(tag.String(), func(t *testing.T) {
			info, err := AEADInfo(tag)
			if err != nil {
				t.Fatalf("AEADInfo error: %v", err)
			}

			key := randomBytes(t, info.KeySize)
			nonce := randomBytes(t, info.NonceSize)

			aead, err := NewAEAD(tag, key)
			if err != nil {
				t.Fatalf("NewAEAD error: %v", err)
			}

			if aead.NonceSize() != info.NonceSize {
				t.Errorf("NonceSize() = %d, want %d", aead.NonceSize(), info.NonceSize)
			}
			if aead.Overhead() != info.Overhead {
				t.Errorf("Overhead() = %d, want %d", aead.Overhead(), info.Overhead)
			}

			ciphertext := aead.Seal(nil, nonce, plaintext, additionalData)
			if len(ciphertext) != len(plaintext)+info.Overhead {
				t.Errorf("ciphertext length = %d, want %d", len(ciphertext), len(plaintext)+info.Overhead)
			}

			recovered, err := aead.Open(nil, nonce, ciphertext, additionalData)
			if err != nil {
				t.Fatalf("Open error: %v", err)
			}
			if !bytes.Equal(recovered, plaintext) {
				t.Errorf("Open returned %q, want %q", recovered, plaintext)
			}
		})
	}
}

func TestNewAEADRejectsTampering(t *testing.T) {
	plaintext := []byte("payload bytes under protection")
	additionalData := []byte("header context")

	for _, tag := range allAEADTags {
		t.Run(tag.String(), func(t *testing.T) {
			info, _ := AEADInfo(tag)
			key := randomBytes(t, info.KeySize)
			nonce := randomBytes(t, info.NonceSize)

			aead, err := NewAEAD(tag, key)
			if err != nil {
				t.Fatalf("NewAEAD error: %v", err)
			}
			ciphertext := aead.Seal(nil, nonce, plaintext, additionalData)

			// Flipped ciphertext bit
			corrupted := append([]byte(nil), ciphertext...)
			corrupted[0] ^= 0x01
			if _, err := aead.Open(nil, nonce, corrupted, additionalData); err == nil {
				t.Error("Open accepted corrupted ciphertext")
			}

			// Changed additional data
			if _, err := aead.Open(nil, nonce, ciphertext, []byte("other context")); err == nil {
				t.Error("Open accepted changed additional data")
			}

			// Different key
			otherKey := randomBytes(t, info.KeySize)
			other, err := NewAEAD(tag, otherKey)
			if err != nil {
				t.Fatalf("NewAEAD error: %v", err)
			}
			if _, err := other.Open(nil, nonce, ciphertext, additionalData); err == nil {
				t.Error("Open accepted ciphertext under a different key")
			}
		})
	}
}

func TestNewAEADEmptyPlaintext(t *testing.T) {
	for _, tag := range allAEADTags {
		t.Run(tag.String(), func(t *testing.T) {
			info, _ := AEADInfo(tag)
			aead, err := NewAEAD(tag, randomBytes(t, info.KeySize))
			if err != nil {
				t.Fatalf("NewAEAD error: %v", err)
			}
			nonce := randomBytes(t, info.NonceSize)

			ciphertext := aead.Seal(nil, nonce, nil, nil)
			if len(ciphertext) != info.Overhead {
				t.Errorf("empty plaintext ciphertext length = %d, want %d", len(ciphertext), info.Overhead)
			}
			recovered, err := aead.Open(nil, nonce, ciphertext, nil)
			if err != nil {
				t.Fatalf("Open error: %v", err)
			}
			if len(recovered) != 0 {
				t.Errorf("recovered %d bytes from empty plaintext", len(recovered))
			}
		})
	}
}

func TestNewAEADKeySizeValidation(t *testing.T) {
	for _, tag := range allAEADTags {
		if _, err := NewAEAD(tag, make([]byte, 7)); !errors.Is(err, ErrKeySize) {
			t.Errorf("NewAEAD(%v, short key) error = %v, want ErrKeySize", tag, err)
		}
	}
	if _, err := NewAEAD(TagNone, make([]byte, 32)); !errors.Is(err, ErrUnknownTag) {
		t.Errorf("NewAEAD(TagNone) error = %v, want ErrUnknownTag", err)
	}
}

// TestSecretboxAdditionalDataBinding exercises the subkey construction that
// gives secretbox its additional data input.
func TestSecretboxAdditionalDataBinding(t *testing.T) {
	key := randomBytes(t, 32)
	nonce := randomBytes(t, 24)
	aead, err := NewAEAD(AEADXSalsa20Poly1305, key)
	if err != nil {
		t.Fatalf("NewAEAD error: %v", err)
	}

	withAD := aead.Seal(nil, nonce, []byte("message"), []byte("ad"))
	withoutAD := aead.Seal(nil, nonce, []byte("message"), nil)
	if bytes.Equal(withAD, withoutAD) {
		t.Error("additional data did not change the secretbox ciphertext")
	}

	if _, err := aead.Open(nil, nonce, withAD, nil); err == nil {
		t.Error("Open with empty additional data accepted bound ciphertext")
	}
	if _, err := aead.Open(nil, nonce, withoutAD, []byte("ad")); err == nil {
		t.Error("Open with extra additional data accepted unbound ciphertext")
	}
}

// TestSivNonceBinding verifies that the synthetic nonce slot still separates
// ciphertexts even though AES-SIV itself is deterministic.
func TestSivNonceBinding(t *testing.T) {
	key := randomBytes(t, 64)
	aead, err := NewAEAD(AEADAesSiv, key)
	if err != nil {
		t.Fatalf("NewAEAD error: %v", err)
	}

	nonceA := make([]byte, 16)
	nonceB := make([]byte, 16)
	nonceB[15] = 1

	ctA := aead.Seal(nil, nonceA, []byte("same plaintext"), nil)
	ctB := aead.Seal(nil, nonceB, []byte("same plaintext"), nil)
	if bytes.Equal(ctA, ctB) {
		t.Error("distinct nonces produced identical aes-siv ciphertexts")
	}

	if _, err := aead.Open(nil, nonceB, ctA, nil); err == nil {
		t.Error("Open accepted ciphertext under a different nonce")
	}
}
