// Package codec はタグペイロードのエンコード・デコードを提供する。
package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"tag-encryption-service/internal/crypto"
	"tag-encryption-service/internal/domain"
)

// Codec はレコードを暗号化エンベロープに包み、旧平文フォーマットも読み取る。
type Codec struct {
	engine *crypto.Engine
}

// New は新しいCodecを生成する。
func New(engine *crypto.Engine) *Codec {
	return &Codec{engine: engine}
}

// Encode はレコードを暗号化し、バージョン付きエンベロープのJSONバイト列を返す。
func (c *Codec) Encode(record *domain.TagRecord, key *domain.SymmetricKey) ([]byte, error) {
	plaintext, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("serializing record: %w", err)
	}

	blob, err := c.engine.Encrypt(plaintext, key)
	if err != nil {
		return nil, err
	}

	envelope := domain.Envelope{
		Encrypted: true,
		Version:   domain.EnvelopeVersion,
		IV:        base64.StdEncoding.EncodeToString(blob.Nonce),
		Data:      base64.StdEncoding.EncodeToString(blob.Ciphertext),
		Tag:       base64.StdEncoding.EncodeToString(blob.Tag),
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("serializing envelope: %w", err)
	}
	return payload, nil
}

// probeEnvelope はエンベロープ認識用の構造体。
// encryptedフィールドの有無でエンベロープかどうかを判定する。
type probeEnvelope struct {
	Encrypted *bool  `json:"encrypted"`
	Version   int    `json:"version"`
	IV        string `json:"iv"`
	Data      string `json:"data"`
	Tag       string `json:"tag"`
}

// Decode はタグペイロードをレコードにデコードする。
// エンベロープを先に試し、認識した後は旧フォーマットへフォールバックしない。
// 暗号文のバイト列を旧平文として誤読することを防ぐための順序。
func (c *Codec) Decode(payload []byte, key *domain.SymmetricKey) (*domain.TagRecord, domain.Provenance, error) {
	var probe probeEnvelope
	if err := json.Unmarshal(payload, &probe); err == nil && probe.Encrypted != nil && *probe.Encrypted {
		record, err := c.decodeEnvelope(&probe, key)
		if err != nil {
			return nil, "", err
		}
		return record, domain.ProvenanceEncrypted, nil
	}

	// 旧平文フォーマット（暗号化導入前に書き込まれたタグ）を試す。
	// 整合性検証は行わない。後方互換のための読み取り専用経路。
	var legacy domain.TagRecord
	if err := json.Unmarshal(payload, &legacy); err == nil && legacy.ID != "" {
		return &legacy, domain.ProvenanceLegacyUnencrypted, nil
	}

	return nil, "", domain.ErrUnrecognizedFormat
}

// decodeEnvelope は認識済みエンベロープを検証付きで復号する。
func (c *Codec) decodeEnvelope(env *probeEnvelope, key *domain.SymmetricKey) (*domain.TagRecord, error) {
	if env.Version != domain.EnvelopeVersion {
		return nil, fmt.Errorf("%w: version %d", domain.ErrVersionUnsupported, env.Version)
	}

	nonce, err := base64.StdEncoding.DecodeString(env.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid iv encoding", domain.ErrDecryptionFailed)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid data encoding", domain.ErrDecryptionFailed)
	}
	tag, err := base64.StdEncoding.DecodeString(env.Tag)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid tag encoding", domain.ErrDecryptionFailed)
	}
	if len(nonce) != domain.NonceSize {
		return nil, fmt.Errorf("%w: iv must be %d bytes", domain.ErrDecryptionFailed, domain.NonceSize)
	}
	if len(tag) != domain.TagSize {
		return nil, fmt.Errorf("%w: tag must be %d bytes", domain.ErrDecryptionFailed, domain.TagSize)
	}

	blob := &domain.EncryptedBlob{
		Ciphertext: ciphertext,
		Nonce:      nonce,
		Tag:        tag,
	}
	plaintext, err := c.engine.Decrypt(blob, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecryptionFailed, err)
	}

	var record domain.TagRecord
	if err := json.Unmarshal(plaintext, &record); err != nil {
		return nil, fmt.Errorf("%w: invalid record payload", domain.ErrDecryptionFailed)
	}
	return &record, nil
}
