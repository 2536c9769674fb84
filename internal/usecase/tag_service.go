package usecase

import (
	"context"
	"fmt"

	"tag-encryption-service/internal/domain"
)

// Codec はタグペイロードのエンコード・デコードのインターフェース。
type Codec interface {
	Encode(record *domain.TagRecord, key *domain.SymmetricKey) ([]byte, error)
	Decode(payload []byte, key *domain.SymmetricKey) (*domain.TagRecord, domain.Provenance, error)
}

// TagService はタグ書き込み・読み取りまわりのビジネスロジックを提供する。
type TagService struct {
	keys  KeyStore
	codec Codec
}

// NewTagService は新しいTagServiceを生成する。
func NewTagService(keys KeyStore, codec Codec) *TagService {
	return &TagService{
		keys:  keys,
		codec: codec,
	}
}

// EncodeTag はレコードをトランスポート鍵で暗号化し、タグに書き込むバイト列を返す。
// 鍵は初回利用時に遅延作成される。
func (s *TagService) EncodeTag(ctx context.Context, record *domain.TagRecord) ([]byte, error) {
	key, err := s.keys.GetOrCreate(ctx, domain.KeyPurposeTransport)
	if err != nil {
		return nil, fmt.Errorf("getting transport key: %w", err)
	}
	payload, err := s.codec.Encode(record, key)
	if err != nil {
		return nil, fmt.Errorf("encoding tag payload: %w", err)
	}
	return payload, nil
}

// DecodeTag はタグから読み取ったバイト列をレコードにデコードする。
// 旧平文フォーマットのタグは有効な鍵が無くても読み取れる。
// 鍵未作成のデバイスで暗号化タグを読んだ場合はフェイルクローズで失敗する。
func (s *TagService) DecodeTag(ctx context.Context, payload []byte) (*domain.TagRecord, domain.Provenance, error) {
	key, err := s.keys.Load(ctx, domain.KeyPurposeTransport)
	if err != nil {
		return nil, "", fmt.Errorf("loading transport key: %w", err)
	}
	return s.codec.Decode(payload, key)
}
