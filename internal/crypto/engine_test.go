package crypto

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"tag-encryption-service/internal/domain"
)

// newTestKey はテスト用のAES-256鍵を生成する。
func newTestKey(t *testing.T, purpose domain.KeyPurpose) *domain.SymmetricKey {
	t.Helper()
	material := make([]byte, domain.KeySize)
	if _, err := rand.Read(material); err != nil {
		t.Fatalf("failed to generate test key: %v", err)
	}
	return &domain.SymmetricKey{Purpose: purpose, Material: material}
}

func TestEngine_EncryptDecrypt_RoundTrip(t *testing.T) {
	engine := NewEngine()
	key := newTestKey(t, domain.KeyPurposeTransport)
	plaintext := []byte(`{"id":"box-001","name":"Kitchen Box"}`)

	blob, err := engine.Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if len(blob.Nonce) != domain.NonceSize {
		t.Errorf("want nonce %d bytes, got %d", domain.NonceSize, len(blob.Nonce))
	}
	if len(blob.Tag) != domain.TagSize {
		t.Errorf("want tag %d bytes, got %d", domain.TagSize, len(blob.Tag))
	}

	decrypted, err := engine.Decrypt(blob, key)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("round-trip failed: got %q, want %q", decrypted, plaintext)
	}
}

func TestEngine_Decrypt_WrongKey(t *testing.T) {
	engine := NewEngine()
	key1 := newTestKey(t, domain.KeyPurposeTransport)
	key2 := newTestKey(t, domain.KeyPurposeTransport)

	blob, err := engine.Encrypt([]byte("sensitive-record"), key1)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	_, err = engine.Decrypt(blob, key2)
	if !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Errorf("want ErrAuthenticationFailed, got %v", err)
	}
}

func TestEngine_Decrypt_TamperedCiphertext(t *testing.T) {
	engine := NewEngine()
	key := newTestKey(t, domain.KeyPurposeTransport)

	blob, err := engine.Encrypt([]byte("sensitive-record"), key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// 暗号文の各バイトで1ビット反転し、すべて検出されることを確認
	for i := range blob.Ciphertext {
		tampered := &domain.EncryptedBlob{
			Ciphertext: append([]byte(nil), blob.Ciphertext...),
			Nonce:      blob.Nonce,
			Tag:        blob.Tag,
		}
		tampered.Ciphertext[i] ^= 0x01

		if _, err := engine.Decrypt(tampered, key); !errors.Is(err, domain.ErrAuthenticationFailed) {
			t.Fatalf("tampered byte %d: want ErrAuthenticationFailed, got %v", i, err)
		}
	}
}

func TestEngine_Decrypt_TamperedTag(t *testing.T) {
	engine := NewEngine()
	key := newTestKey(t, domain.KeyPurposeTransport)

	blob, err := engine.Encrypt([]byte("sensitive-record"), key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	tampered := &domain.EncryptedBlob{
		Ciphertext: blob.Ciphertext,
		Nonce:      blob.Nonce,
		Tag:        append([]byte(nil), blob.Tag...),
	}
	tampered.Tag[0] ^= 0x01

	if _, err := engine.Decrypt(tampered, key); !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Errorf("want ErrAuthenticationFailed, got %v", err)
	}
}

func TestEngine_Decrypt_MalformedNonce(t *testing.T) {
	engine := NewEngine()
	key := newTestKey(t, domain.KeyPurposeTransport)

	blob, err := engine.Encrypt([]byte("sensitive-record"), key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	blob.Nonce = blob.Nonce[:8]
	if _, err := engine.Decrypt(blob, key); !errors.Is(err, domain.ErrMalformedNonce) {
		t.Errorf("want ErrMalformedNonce, got %v", err)
	}
}

func TestEngine_Encrypt_MalformedKey(t *testing.T) {
	engine := NewEngine()
	shortKey := &domain.SymmetricKey{
		Purpose:  domain.KeyPurposeTransport,
		Material: make([]byte, 16),
	}

	if _, err := engine.Encrypt([]byte("data"), shortKey); !errors.Is(err, domain.ErrMalformedKey) {
		t.Errorf("want ErrMalformedKey for 128-bit key, got %v", err)
	}
	if _, err := engine.Encrypt([]byte("data"), nil); !errors.Is(err, domain.ErrMalformedKey) {
		t.Errorf("want ErrMalformedKey for nil key, got %v", err)
	}
}

func TestEngine_Encrypt_NonceUniqueness(t *testing.T) {
	engine := NewEngine()
	key := newTestKey(t, domain.KeyPurposeTransport)
	plaintext := []byte("identical-plaintext")

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		blob, err := engine.Encrypt(plaintext, key)
		if err != nil {
			t.Fatalf("Encrypt #%d failed: %v", i, err)
		}
		nonce := string(blob.Nonce)
		if seen[nonce] {
			t.Fatalf("nonce reuse detected at iteration %d", i)
		}
		seen[nonce] = true
	}
}

func TestEngine_EncryptDecrypt_EmptyPlaintext(t *testing.T) {
	engine := NewEngine()
	key := newTestKey(t, domain.KeyPurposeTransport)

	blob, err := engine.Encrypt([]byte{}, key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	decrypted, err := engine.Decrypt(blob, key)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if len(decrypted) != 0 {
		t.Errorf("want empty plaintext, got %d bytes", len(decrypted))
	}
}

func TestGenerateKey(t *testing.T) {
	key, err := GenerateKey(domain.KeyPurposeStorage)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	if key.Purpose != domain.KeyPurposeStorage {
		t.Errorf("want purpose storage, got %s", key.Purpose)
	}
	if len(key.Material) != domain.KeySize {
		t.Errorf("want %d bytes of material, got %d", domain.KeySize, len(key.Material))
	}

	other, err := GenerateKey(domain.KeyPurposeStorage)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	if bytes.Equal(key.Material, other.Material) {
		t.Error("two generated keys must not be identical")
	}
}
