// Package crypto はAEAD暗号化・復号のプリミティブを提供する。
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"tag-encryption-service/internal/domain"
)

// Engine はAES-256-GCMによるステートレスな暗号エンジン。
type Engine struct{}

// NewEngine は新しいEngineを生成する。
func NewEngine() *Engine {
	return &Engine{}
}

// newGCM は鍵からGCMモードのAEADを構築する。
func newGCM(key *domain.SymmetricKey) (cipher.AEAD, error) {
	if key == nil || len(key.Material) != domain.KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes", domain.ErrMalformedKey, domain.KeySize)
	}
	block, err := aes.NewCipher(key.Material)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedKey, err)
	}
	return cipher.NewGCM(block)
}

// Encrypt は平文をAEADで暗号化する。
// ナンスは呼び出しごとに暗号学的乱数で新規生成される。
func (e *Engine) Encrypt(plaintext []byte, key *domain.SymmetricKey) (*domain.EncryptedBlob, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, domain.NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	// Sealの結果は ciphertext || tag の並びで返る
	sealed := aead.Seal(nil, nonce, plaintext, nil)
	tagStart := len(sealed) - domain.TagSize

	return &domain.EncryptedBlob{
		Ciphertext: sealed[:tagStart],
		Nonce:      nonce,
		Tag:        sealed[tagStart:],
	}, nil
}

// Decrypt は暗号化ブロブを検証付きで復号する。
// タグ検証に失敗した場合は破損した平文を返さず、必ずエラーを返す。
func (e *Engine) Decrypt(blob *domain.EncryptedBlob, key *domain.SymmetricKey) ([]byte, error) {
	if len(blob.Nonce) != domain.NonceSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", domain.ErrMalformedNonce, len(blob.Nonce), domain.NonceSize)
	}

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(blob.Ciphertext)+len(blob.Tag))
	sealed = append(sealed, blob.Ciphertext...)
	sealed = append(sealed, blob.Tag...)

	plaintext, err := aead.Open(nil, blob.Nonce, sealed, nil)
	if err != nil {
		return nil, domain.ErrAuthenticationFailed
	}
	return plaintext, nil
}

// GenerateKey は指定された用途のAES-256鍵を生成する。
func GenerateKey(purpose domain.KeyPurpose) (*domain.SymmetricKey, error) {
	material := make([]byte, domain.KeySize)
	if _, err := rand.Read(material); err != nil {
		return nil, fmt.Errorf("generating random key: %w", err)
	}
	return &domain.SymmetricKey{Purpose: purpose, Material: material}, nil
}
