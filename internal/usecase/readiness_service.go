// Package usecase はアプリケーションのユースケースを実装する。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tag-encryption-service/internal/domain"
)

// KeyStore は鍵ライフサイクル管理のインターフェース。
type KeyStore interface {
	Load(ctx context.Context, purpose domain.KeyPurpose) (*domain.SymmetricKey, error)
	GetOrCreate(ctx context.Context, purpose domain.KeyPurpose) (*domain.SymmetricKey, error)
}

// MigrationRecordRepository はマイグレーション記録のインターフェース。
type MigrationRecordRepository interface {
	Save(ctx context.Context, record *domain.MigrationRecord) error
	Find(ctx context.Context) (*domain.MigrationRecord, error)
}

// DeviceProbe はデバイス能力の読み取り専用プローブのインターフェース。
type DeviceProbe interface {
	HasDevicePasscode() bool
	HasBiometricHardware() bool
}

// ReadinessService は保存時暗号化の準備状態を評価するビジネスロジックを提供する。
// 永続化層はこの評価結果を見てから保護を有効化するかを決める。
// NoPasscodeの場合は明示的な非保護モードで動作し、クラッシュさせない。
type ReadinessService struct {
	keys    KeyStore
	records MigrationRecordRepository
	probe   DeviceProbe
}

// NewReadinessService は新しいReadinessServiceを生成する。
func NewReadinessService(keys KeyStore, records MigrationRecordRepository, probe DeviceProbe) *ReadinessService {
	return &ReadinessService{
		keys:    keys,
		records: records,
		probe:   probe,
	}
}

// Evaluate はデバイス能力とストレージ鍵の有無から準備状態を評価する。
func (s *ReadinessService) Evaluate(ctx context.Context) domain.Readiness {
	if !s.probe.HasDevicePasscode() {
		return domain.Readiness{Status: domain.ReadinessNoPasscode}
	}

	key, err := s.keys.Load(ctx, domain.KeyPurposeStorage)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load storage key",
			"operation", "evaluate_readiness",
			"error", err,
		)
		return domain.Readiness{Status: domain.ReadinessError, Reason: err.Error()}
	}
	if key == nil {
		return domain.Readiness{Status: domain.ReadinessMigrationRequired}
	}
	return domain.Readiness{Status: domain.ReadinessEncrypted}
}

// PrepareMigration はストレージ鍵を作成し、保存時暗号化を有効化できる状態にする。
// MigrationRequiredの状態からのみ呼び出せる。パスコードの有無は呼び出し時点で再確認する。
// マイグレーション記録は前回の記録を置き換えて一件だけ保持する。
func (s *ReadinessService) PrepareMigration(ctx context.Context) (domain.Readiness, error) {
	if !s.probe.HasDevicePasscode() {
		return domain.Readiness{Status: domain.ReadinessNoPasscode}, domain.ErrDeviceNotSecured
	}

	key, err := s.keys.Load(ctx, domain.KeyPurposeStorage)
	if err != nil {
		return domain.Readiness{Status: domain.ReadinessError, Reason: err.Error()},
			fmt.Errorf("checking storage key: %w", err)
	}
	if key != nil {
		return domain.Readiness{Status: domain.ReadinessEncrypted}, domain.ErrMigrationNotRequired
	}

	record := &domain.MigrationRecord{
		PreparedAt:              time.Now().UTC(),
		HasDevicePasscode:       s.probe.HasDevicePasscode(),
		SecureHardwareAvailable: s.probe.HasBiometricHardware(),
	}
	if err := s.records.Save(ctx, record); err != nil {
		return domain.Readiness{Status: domain.ReadinessError, Reason: err.Error()},
			fmt.Errorf("saving migration record: %w", err)
	}

	if _, err := s.keys.GetOrCreate(ctx, domain.KeyPurposeStorage); err != nil {
		slog.ErrorContext(ctx, "failed to create storage key",
			"operation", "prepare_migration",
			"error", err,
		)
		return domain.Readiness{Status: domain.ReadinessError, Reason: err.Error()},
			fmt.Errorf("creating storage key: %w", err)
	}

	slog.InfoContext(ctx, "storage encryption prepared",
		"operation", "prepare_migration",
		"secure_hardware", record.SecureHardwareAvailable,
	)
	return domain.Readiness{Status: domain.ReadinessEncrypted}, nil
}
