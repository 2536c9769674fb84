// Package repository はデータアクセス層の実装を提供する。
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tag-encryption-service/internal/domain"
)

// SecureEntryModel はgorm用のセキュアエントリのモデル定義。
type SecureEntryModel struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	Service   string    `gorm:"type:varchar(64);not null;uniqueIndex:uk_service_account"`
	Account   string    `gorm:"type:varchar(64);not null;uniqueIndex:uk_service_account"`
	Secret    []byte    `gorm:"type:blob;not null"`
	Policy    string    `gorm:"type:varchar(32);not null"`
	CreatedAt time.Time `gorm:"type:datetime(6);not null;autoCreateTime"`
}

// TableName はテーブル名を返す。
func (SecureEntryModel) TableName() string {
	return "secure_entries"
}

// BeforeCreate はレコード作成前にUUIDを生成する。
func (e *SecureEntryModel) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// EntryCipher は保存するシークレットのラップ・アンラップのインターフェース。
type EntryCipher interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// SecureStoreRepository はセキュアストレージのデータアクセスを提供する。
// cipherが設定されている場合、シークレットはKMSでラップして保存する。
type SecureStoreRepository struct {
	db     *gorm.DB
	cipher EntryCipher
}

// NewSecureStoreRepository は新しいSecureStoreRepositoryを生成する。
// cipherはnil可（ラップなしで保存）。
func NewSecureStoreRepository(db *gorm.DB, cipher EntryCipher) *SecureStoreRepository {
	return &SecureStoreRepository{db: db, cipher: cipher}
}

// GetEntry は指定されたサービス・アカウントのエントリを取得する。
// 存在しない場合はdomain.ErrKeyNotFoundを返し、ストアの失敗と区別する。
func (r *SecureStoreRepository) GetEntry(ctx context.Context, service, account string) ([]byte, domain.AccessPolicy, error) {
	var model SecureEntryModel
	err := r.db.WithContext(ctx).
		Where("service = ? AND account = ?", service, account).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", domain.ErrKeyNotFound
		}
		slog.ErrorContext(ctx, "failed to get secure entry",
			"operation", "get_entry",
			"service", service,
			"account", account,
			"error", err,
		)
		return nil, "", fmt.Errorf("%w: %v", domain.ErrBackingStore, err)
	}

	secret := model.Secret
	if r.cipher != nil {
		secret, err = r.cipher.Decrypt(ctx, model.Secret)
		if err != nil {
			slog.ErrorContext(ctx, "failed to unwrap secure entry",
				"operation", "get_entry",
				"service", service,
				"account", account,
				"error", err,
			)
			return nil, "", fmt.Errorf("%w: %v", domain.ErrBackingStore, err)
		}
	}
	return secret, domain.AccessPolicy(model.Policy), nil
}

// PutEntry はエントリを保存する。
// (service, account)の一意制約により、既存エントリがある場合は上書きせず
// domain.ErrEntryExistsを返す。呼び出し側がコミット済みエントリを読み直す。
func (r *SecureStoreRepository) PutEntry(ctx context.Context, service, account string, secret []byte, accessPolicy domain.AccessPolicy) error {
	stored := secret
	if r.cipher != nil {
		wrapped, err := r.cipher.Encrypt(ctx, secret)
		if err != nil {
			slog.ErrorContext(ctx, "failed to wrap secure entry",
				"operation", "put_entry",
				"service", service,
				"account", account,
				"error", err,
			)
			return fmt.Errorf("%w: %v", domain.ErrBackingStore, err)
		}
		stored = wrapped
	}

	model := &SecureEntryModel{
		Service: service,
		Account: account,
		Secret:  stored,
		Policy:  string(accessPolicy),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrEntryExists
		}
		slog.ErrorContext(ctx, "failed to put secure entry",
			"operation", "put_entry",
			"service", service,
			"account", account,
			"error", err,
		)
		return fmt.Errorf("%w: %v", domain.ErrBackingStore, err)
	}
	return nil
}

// DeleteEntry は指定されたサービス・アカウントのエントリを削除する。
func (r *SecureStoreRepository) DeleteEntry(ctx context.Context, service, account string) error {
	err := r.db.WithContext(ctx).
		Where("service = ? AND account = ?", service, account).
		Delete(&SecureEntryModel{}).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete secure entry",
			"operation", "delete_entry",
			"service", service,
			"account", account,
			"error", err,
		)
		return fmt.Errorf("%w: %v", domain.ErrBackingStore, err)
	}
	return nil
}
