package sealbox

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io"
	"testing"

	"github.com/opd-ai/sealbox/chunk"
	"github.com/opd-ai/sealbox/frame"
	"github.com/opd-ai/sealbox/limits"
	"github.com/opd-ai/sealbox/suite"
)

// zeroReader hands out zero bytes forever, pinning the base nonce so
// envelopes become deterministic and comparable across modes.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func testKey(t *testing.T, tag suite.Tag) []byte {
	t.Helper()
	info, err := suite.AEADInfo(tag)
	if err != nil {
		t.Fatalf("AEADInfo error: %v", err)
	}
	key := make([]byte, info.KeySize)
	rand.Read(key)
	return key
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testKey(t, suite.AEADChaCha20Poly1305)

	sizes := []int{0, 1, 255, 256, 257, 3*256 + 100}
	for _, size := range sizes {
		plaintext := make([]byte, size)
		rand.Read(plaintext)

		opts := NewOptions()
		opts.ChunkSize = 256
		opts.AAD = []byte("roundtrip")

		envelope, err := Encrypt(key, plaintext, opts)
		if err != nil {
			t.Fatalf("size %d: Encrypt error: %v", size, err)
		}
		opened, err := Decrypt(key, envelope, opts)
		if err != nil {
			t.Fatalf("size %d: Decrypt error: %v", size, err)
		}
		if !bytes.Equal(opened, plaintext) {
			t.Errorf("size %d: decrypted plaintext differs", size)
		}
	}
}

func TestEncryptDecryptDefaultOptions(t *testing.T) {
	key := testKey(t, suite.AEADChaCha20Poly1305)
	plaintext := []byte("defaults all the way down")

	envelope, err := Encrypt(key, plaintext, nil)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	opened, err := Decrypt(key, envelope, nil)
	if err != nil {
		t.Fatalf("Decrypt error: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Error("decrypted plaintext differs")
	}
}

func TestEncryptAcrossAEADs(t *testing.T) {
	aeads := []suite.Tag{
		suite.AEADChaCha20Poly1305,
		suite.AEADXChaCha20Poly1305,
		suite.AEADAes256Gcm,
		suite.AEADXSalsa20Poly1305,
		suite.AEADAesSiv,
	}

	plaintext := make([]byte, 1000)
	rand.Read(plaintext)

	for _, tag := range aeads {
		t.Run(tag.String(), func(t *testing.T) {
			key := testKey(t, tag)

			opts := NewOptions()
			opts.AEAD = tag
			opts.ChunkSize = 256

			envelope, err := Encrypt(key, plaintext, opts)
			if err != nil {
				t.Fatalf("Encrypt error: %v", err)
			}
			opened, err := Decrypt(key, envelope, opts)
			if err != nil {
				t.Fatalf("Decrypt error: %v", err)
			}
			if !bytes.Equal(opened, plaintext) {
				t.Error("decrypted plaintext differs")
			}
		})
	}
}

// TestTenMiBParallelMatchesBuffered pins the base nonce to zero and checks
// that eight workers produce the byte-identical envelope a sequential pass
// does, then round-trips it.
func TestTenMiBParallelMatchesBuffered(t *testing.T) {
	if testing.Short() {
		t.Skip("10 MiB payload")
	}

	key := testKey(t, suite.AEADChaCha20Poly1305)
	plaintext := make([]byte, 10<<20)
	rand.Read(plaintext)

	sequential := NewOptions()
	sequential.Rand = zeroReader{}

	parallel := NewOptions()
	parallel.Rand = zeroReader{}
	parallel.Workers = 8

	want, err := Encrypt(key, plaintext, sequential)
	if err != nil {
		t.Fatalf("sequential Encrypt error: %v", err)
	}
	got, err := Encrypt(key, plaintext, parallel)
	if err != nil {
		t.Fatalf("parallel Encrypt error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatal("parallel envelope differs from sequential envelope")
	}

	opened, err := Decrypt(key, want, parallel)
	if err != nil {
		t.Fatalf("Decrypt error: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Error("decrypted plaintext differs")
	}
}

func TestStreamMatchesBuffered(t *testing.T) {
	key := testKey(t, suite.AEADChaCha20Poly1305)
	plaintext := make([]byte, 3*256+77)
	rand.Read(plaintext)

	opts := NewOptions()
	opts.ChunkSize = 256
	opts.Rand = zeroReader{}

	want, err := Encrypt(key, plaintext, opts)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	var streamed bytes.Buffer
	w, err := NewStreamWriter(context.Background(), &streamed, key, opts)
	if err != nil {
		t.Fatalf("NewStreamWriter error: %v", err)
	}
	for off := 0; off < len(plaintext); off += 33 {
		end := off + 33
		if end > len(plaintext) {
			end = len(plaintext)
		}
		if _, err := w.Write(plaintext[off:end]); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	if !bytes.Equal(streamed.Bytes(), want) {
		t.Fatal("streamed envelope differs from buffered envelope")
	}

	// Stream reading the buffered envelope
	r, err := NewStreamReader(context.Background(), bytes.NewReader(want), key, nil)
	if err != nil {
		t.Fatalf("NewStreamReader error: %v", err)
	}
	opened, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Error("stream-read plaintext differs")
	}

	// Buffered decryption of the streamed envelope
	opened, err = Decrypt(key, streamed.Bytes(), nil)
	if err != nil {
		t.Fatalf("Decrypt error: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Error("decrypted plaintext differs")
	}
}

func TestDecryptTamperDetection(t *testing.T) {
	key := testKey(t, suite.AEADChaCha20Poly1305)
	plaintext := make([]byte, 600)
	rand.Read(plaintext)

	opts := NewOptions()
	opts.ChunkSize = 256

	envelope, err := Encrypt(key, plaintext, opts)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	_, consumed, err := frame.Decode(envelope)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func([]byte)
		want   error
	}{
		{"aead tag byte", func(b []byte) { b[1] = 0x7f }, frame.ErrUnknownAlgorithm},
		{"base nonce bit", func(b []byte) { b[9+4] ^= 0x01 }, chunk.ErrAuthentication},
		{"chunk size bit", func(b []byte) { b[5] ^= 0x01 }, chunk.ErrAuthentication},
		{"chunk bit", func(b []byte) { b[consumed+50] ^= 0x01 }, chunk.ErrAuthentication},
		{"tag bit", func(b []byte) { b[len(b)-1] ^= 0x01 }, chunk.ErrAuthentication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tampered := append([]byte(nil), envelope...)
			tt.mutate(tampered)
			if _, err := Decrypt(key, tampered, nil); !errors.Is(err, tt.want) {
				t.Errorf("Decrypt error = %v, want %v", err, tt.want)
			}
		})
	}

	t.Run("truncated header", func(t *testing.T) {
		if _, err := Decrypt(key, envelope[:7], nil); !errors.Is(err, frame.ErrTruncated) {
			t.Errorf("Decrypt error = %v, want ErrTruncated", err)
		}
	})
}

func TestDecryptAADMismatch(t *testing.T) {
	key := testKey(t, suite.AEADChaCha20Poly1305)

	opts := NewOptions()
	opts.AAD = []byte("tenant-7")

	envelope, err := Encrypt(key, []byte("scoped"), opts)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	wrongLen := NewOptions()
	wrongLen.AAD = []byte("tenant")
	if _, err := Decrypt(key, envelope, wrongLen); !errors.Is(err, frame.ErrInvalidLength) {
		t.Errorf("wrong length error = %v, want ErrInvalidLength", err)
	}

	wrongBytes := NewOptions()
	wrongBytes.AAD = []byte("tenant-8")
	if _, err := Decrypt(key, envelope, wrongBytes); !errors.Is(err, chunk.ErrAuthentication) {
		t.Errorf("wrong bytes error = %v, want ErrAuthentication", err)
	}

	if _, err := Decrypt(key, envelope, opts); err != nil {
		t.Errorf("matching aad error = %v, want nil", err)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	key := testKey(t, suite.AEADChaCha20Poly1305)
	other := testKey(t, suite.AEADChaCha20Poly1305)

	envelope, err := Encrypt(key, []byte("secret"), nil)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	if _, err := Decrypt(other, envelope, nil); !errors.Is(err, chunk.ErrAuthentication) {
		t.Errorf("Decrypt error = %v, want ErrAuthentication", err)
	}
}

func TestEncryptValidation(t *testing.T) {
	key := testKey(t, suite.AEADChaCha20Poly1305)

	if _, err := Encrypt(key[:16], []byte("x"), nil); !errors.Is(err, suite.ErrKeySize) {
		t.Errorf("short key error = %v, want ErrKeySize", err)
	}

	opts := NewOptions()
	opts.ChunkSize = 0
	if _, err := Encrypt(key, []byte("x"), opts); !errors.Is(err, limits.ErrChunkSizeInvalid) {
		t.Errorf("zero chunk size error = %v, want ErrChunkSizeInvalid", err)
	}

	opts = NewOptions()
	opts.AEAD = suite.KEMX25519
	if _, err := Encrypt(key, []byte("x"), opts); !errors.Is(err, suite.ErrUnknownTag) {
		t.Errorf("non-aead tag error = %v, want ErrUnknownTag", err)
	}
}

func TestDecryptRejectsHybridEnvelope(t *testing.T) {
	kem, err := suite.NewKEM(suite.KEMX25519)
	if err != nil {
		t.Fatalf("NewKEM error: %v", err)
	}
	public, _, err := kem.GenerateKeyPair(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKeyPair error: %v", err)
	}

	sealOpts := NewSealOptions()
	sealOpts.RecipientPublicKey = public
	envelope, err := Seal(sealOpts, []byte("hybrid payload"))
	if err != nil {
		t.Fatalf("Seal error: %v", err)
	}

	key := testKey(t, suite.AEADChaCha20Poly1305)
	if _, err := Decrypt(key, envelope, nil); err == nil {
		t.Error("Decrypt accepted a hybrid envelope")
	}
}

func TestHybridFacade(t *testing.T) {
	kem, err := suite.NewKEM(suite.KEMX25519)
	if err != nil {
		t.Fatalf("NewKEM error: %v", err)
	}
	public, private, err := kem.GenerateKeyPair(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKeyPair error: %v", err)
	}

	plaintext := make([]byte, 5000)
	rand.Read(plaintext)

	sealOpts := NewSealOptions()
	sealOpts.ChunkSize = 1024
	sealOpts.RecipientPublicKey = public

	envelope, err := Seal(sealOpts, plaintext)
	if err != nil {
		t.Fatalf("Seal error: %v", err)
	}
	opened, err := Open(&OpenOptions{RecipientPrivateKey: private}, envelope)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Error("opened plaintext differs")
	}

	// Streamed seal, streamed open
	var streamed bytes.Buffer
	w, err := NewSealWriter(context.Background(), &streamed, sealOpts)
	if err != nil {
		t.Fatalf("NewSealWriter error: %v", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	r, err := NewOpenReader(context.Background(), bytes.NewReader(streamed.Bytes()), &OpenOptions{
		RecipientPrivateKey: private,
	})
	if err != nil {
		t.Fatalf("NewOpenReader error: %v", err)
	}
	opened, err = io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Error("stream-opened plaintext differs")
	}
}

func TestNewOptionsDefaults(t *testing.T) {
	opts := NewOptions()
	if opts.AEAD != suite.AEADChaCha20Poly1305 {
		t.Errorf("default AEAD = %s, want chacha20-poly1305", opts.AEAD)
	}
	if opts.ChunkSize != limits.DefaultChunkSize {
		t.Errorf("default ChunkSize = %d, want %d", opts.ChunkSize, limits.DefaultChunkSize)
	}
	if opts.Workers != 1 {
		t.Errorf("default Workers = %d, want 1", opts.Workers)
	}
	if opts.Rand == nil {
		t.Error("default Rand is nil")
	}
}
