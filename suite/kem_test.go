package suite

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

var allKEMTags = []Tag{KEMX25519, KEMP256}

func TestKEMRoundTrip(t *testing.T) {
	for _, tag := range allKEMTags {
		t.Run(tag.String(), func(t *testing.T) {
			kem, err := NewKEM(tag)
			if err != nil {
				t.Fatalf("NewKEM error: %v", err)
			}
			info, _ := KEMInfo(tag)

			public, private, err := kem.GenerateKeyPair(rand.Reader)
			if err != nil {
				t.Fatalf("GenerateKeyPair error: %v", err)
			}
			if len(public) != info.PublicKeySize {
				t.Errorf("public key length = %d, want %d", len(public), info.PublicKeySize)
			}
			if len(private) != info.PrivateKeySize {
				t.Errorf("private key length = %d, want %d", len(private), info.PrivateKeySize)
			}

			encapsulated, shared, err := kem.Encapsulate(rand.Reader, public)
			if err != nil {
				t.Fatalf("Encapsulate error: %v", err)
			}
			if len(encapsulated) != info.EncapsulatedSize {
				t.Errorf("encapsulated length = %d, want %d", len(encapsulated), info.EncapsulatedSize)
			}
			if len(shared) != info.SharedSize {
				t.Errorf("shared length = %d, want %d", len(shared), info.SharedSize)
			}

			recovered, err := kem.Decapsulate(private, encapsulated)
			if err != nil {
				t.Fatalf("Decapsulate error: %v", err)
			}
			if !bytes.Equal(recovered, shared) {
				t.Error("decapsulated secret differs from encapsulated secret")
			}
		})
	}
}

// TestKEMWrongPrivateKey verifies the key confirmation property: decapsulating
// with an unrelated private key must fail rather than yield a wrong secret.
func TestKEMWrongPrivateKey(t *testing.T) {
	for _, tag := range allKEMTags {
		t.Run(tag.String(), func(t *testing.T) {
			kem, _ := NewKEM(tag)

			publicA, _, err := kem.GenerateKeyPair(rand.Reader)
			if err != nil {
				t.Fatalf("GenerateKeyPair error: %v", err)
			}
			_, privateB, err := kem.GenerateKeyPair(rand.Reader)
			if err != nil {
				t.Fatalf("GenerateKeyPair error: %v", err)
			}

			encapsulated, _, err := kem.Encapsulate(rand.Reader, publicA)
			if err != nil {
				t.Fatalf("Encapsulate error: %v", err)
			}

			if _, err := kem.Decapsulate(privateB, encapsulated); !errors.Is(err, ErrEncapsulation) {
				t.Errorf("Decapsulate with wrong key error = %v, want ErrEncapsulation", err)
			}
		})
	}
}

func TestKEMMalformedInputs(t *testing.T) {
	for _, tag := range allKEMTags {
		t.Run(tag.String(), func(t *testing.T) {
			kem, _ := NewKEM(tag)
			info, _ := KEMInfo(tag)

			public, private, err := kem.GenerateKeyPair(rand.Reader)
			if err != nil {
				t.Fatalf("GenerateKeyPair error: %v", err)
			}

			if _, _, err := kem.Encapsulate(rand.Reader, public[:len(public)-1]); !errors.Is(err, ErrEncapsulation) {
				t.Errorf("Encapsulate with truncated public key error = %v, want ErrEncapsulation", err)
			}

			encapsulated, _, err := kem.Encapsulate(rand.Reader, public)
			if err != nil {
				t.Fatalf("Encapsulate error: %v", err)
			}

			if _, err := kem.Decapsulate(private, encapsulated[:info.EncapsulatedSize-1]); !errors.Is(err, ErrEncapsulation) {
				t.Errorf("Decapsulate with truncated encapsulated key error = %v, want ErrEncapsulation", err)
			}

			// Flipped confirmation byte
			corrupted := append([]byte(nil), encapsulated...)
			corrupted[len(corrupted)-1] ^= 0x01
			if _, err := kem.Decapsulate(private, corrupted); !errors.Is(err, ErrEncapsulation) {
				t.Errorf("Decapsulate with corrupted confirmation error = %v, want ErrEncapsulation", err)
			}
		})
	}
}

// TestKEMEncapsulationsDiffer checks ephemeral freshness: two encapsulations
// to the same recipient must not share secrets or encapsulated keys.
func TestKEMEncapsulationsDiffer(t *testing.T) {
	for _, tag := range allKEMTags {
		t.Run(tag.String(), func(t *testing.T) {
			kem, _ := NewKEM(tag)
			public, _, err := kem.GenerateKeyPair(rand.Reader)
			if err != nil {
				t.Fatalf("GenerateKeyPair error: %v", err)
			}

			ek1, ss1, err := kem.Encapsulate(rand.Reader, public)
			if err != nil {
				t.Fatalf("Encapsulate error: %v", err)
			}
			ek2, ss2, err := kem.Encapsulate(rand.Reader, public)
			if err != nil {
				t.Fatalf("Encapsulate error: %v", err)
			}

			if bytes.Equal(ek1, ek2) {
				t.Error("two encapsulations produced identical encapsulated keys")
			}
			if bytes.Equal(ss1, ss2) {
				t.Error("two encapsulations produced identical shared secrets")
			}
		})
	}
}

func TestNewKEMUnknownTag(t *testing.T) {
	if _, err := NewKEM(AEADAes256Gcm); !errors.Is(err, ErrUnknownTag) {
		t.Errorf("NewKEM(AEADAes256Gcm) error = %v, want ErrUnknownTag", err)
	}
}
