// Package keystore はセキュアストレージ上の対称鍵のライフサイクルを管理する。
package keystore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tag-encryption-service/internal/crypto"
	"tag-encryption-service/internal/domain"
	"tag-encryption-service/internal/policy"
)

// SecureStore はセキュアストレージ境界のインターフェース。
type SecureStore interface {
	// GetEntry はエントリを取得する。存在しない場合はdomain.ErrKeyNotFoundを返す。
	GetEntry(ctx context.Context, service, account string) ([]byte, domain.AccessPolicy, error)
	// PutEntry はエントリを保存する。既存エントリは上書きせずdomain.ErrEntryExistsを返す。
	PutEntry(ctx context.Context, service, account string, secret []byte, accessPolicy domain.AccessPolicy) error
	// DeleteEntry はエントリを削除する。
	DeleteEntry(ctx context.Context, service, account string) error
}

// DeviceProbe はデバイス能力の読み取り専用プローブのインターフェース。
type DeviceProbe interface {
	HasDevicePasscode() bool
	HasBiometricHardware() bool
}

// KeyStore は用途ごとに高々一つの対称鍵を管理する。
type KeyStore struct {
	store   SecureStore
	probe   DeviceProbe
	service string
}

// New は新しいKeyStoreを生成する。
func New(store SecureStore, probe DeviceProbe, service string) *KeyStore {
	return &KeyStore{
		store:   store,
		probe:   probe,
		service: service,
	}
}

// Load は指定された用途の鍵を読み取る。
// 未作成の場合は(nil, nil)を返し、バッキングストアの失敗とは区別する。
func (k *KeyStore) Load(ctx context.Context, purpose domain.KeyPurpose) (*domain.SymmetricKey, error) {
	secret, _, err := k.store.GetEntry(ctx, k.service, string(purpose))
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading key: %w", err)
	}
	return &domain.SymmetricKey{Purpose: purpose, Material: secret}, nil
}

// GetOrCreate は指定された用途の鍵を取得し、未作成なら生成して永続化する。
// 保存が競合に負けた場合は先にコミットされた鍵を読み直して返す。
// 同一用途への並行した初回呼び出しは必ず一つの鍵に収束する。
func (k *KeyStore) GetOrCreate(ctx context.Context, purpose domain.KeyPurpose) (*domain.SymmetricKey, error) {
	key, err := k.Load(ctx, purpose)
	if err != nil {
		return nil, err
	}
	if key != nil {
		return key, nil
	}

	caps := domain.DeviceCapabilities{
		HasPasscode:          k.probe.HasDevicePasscode(),
		HasBiometricHardware: k.probe.HasBiometricHardware(),
	}
	accessPolicy, err := policy.Select(caps)
	if err != nil {
		return nil, err
	}

	key, err = crypto.GenerateKey(purpose)
	if err != nil {
		return nil, err
	}

	err = k.store.PutEntry(ctx, k.service, string(purpose), key.Material, accessPolicy)
	if err != nil {
		if errors.Is(err, domain.ErrEntryExists) {
			// 競合に負けた場合はコミット済みの鍵が長期的な真実となる
			slog.InfoContext(ctx, "key creation lost race, reloading committed key",
				"operation", "get_or_create",
				"purpose", purpose,
			)
			committed, loadErr := k.Load(ctx, purpose)
			if loadErr != nil {
				return nil, loadErr
			}
			if committed == nil {
				return nil, fmt.Errorf("%w: committed key vanished after conflict", domain.ErrBackingStore)
			}
			return committed, nil
		}
		return nil, fmt.Errorf("saving key: %w", err)
	}

	slog.InfoContext(ctx, "key created",
		"operation", "get_or_create",
		"purpose", purpose,
		"access_policy", accessPolicy,
	)
	return key, nil
}

// Delete は指定された用途の鍵をセキュアストレージから削除する。
func (k *KeyStore) Delete(ctx context.Context, purpose domain.KeyPurpose) error {
	if err := k.store.DeleteEntry(ctx, k.service, string(purpose)); err != nil {
		return fmt.Errorf("deleting key: %w", err)
	}
	return nil
}
