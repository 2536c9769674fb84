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

// MigrationRecordModel はmigration_recordsテーブルのモデル。
type MigrationRecordModel struct {
	ID                      string    `gorm:"type:char(36);primaryKey"`
	PreparedAt              time.Time `gorm:"type:datetime(6);not null"`
	HasDevicePasscode       bool      `gorm:"not null"`
	SecureHardwareAvailable bool      `gorm:"not null"`
}

// TableName はテーブル名を返す。
func (MigrationRecordModel) TableName() string {
	return "migration_records"
}

// MigrationRecordRepository はマイグレーション記録を管理するリポジトリ。
// 記録は高々一件で、保存のたびに前回の記録を置き換える。
type MigrationRecordRepository struct {
	db *gorm.DB
}

// NewMigrationRecordRepository は新しいMigrationRecordRepositoryを生成する。
func NewMigrationRecordRepository(db *gorm.DB) *MigrationRecordRepository {
	return &MigrationRecordRepository{db: db}
}

// Save はマイグレーション記録を保存する。既存の記録は追記せず置き換える。
func (r *MigrationRecordRepository) Save(ctx context.Context, record *domain.MigrationRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	model := &MigrationRecordModel{
		ID:                      record.ID,
		PreparedAt:              record.PreparedAt,
		HasDevicePasscode:       record.HasDevicePasscode,
		SecureHardwareAvailable: record.SecureHardwareAvailable,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&MigrationRecordModel{}).Error; err != nil {
			return err
		}
		return tx.Create(model).Error
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to save migration record",
			"operation", "save_migration_record",
			"error", err,
		)
		return fmt.Errorf("%w: %v", domain.ErrBackingStore, err)
	}
	return nil
}

// Find は直近のマイグレーション記録を取得する。存在しない場合は(nil, nil)を返す。
func (r *MigrationRecordRepository) Find(ctx context.Context) (*domain.MigrationRecord, error) {
	var model MigrationRecordModel
	err := r.db.WithContext(ctx).
		Order("prepared_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.ErrorContext(ctx, "failed to find migration record",
			"operation", "find_migration_record",
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrBackingStore, err)
	}
	return &domain.MigrationRecord{
		ID:                      model.ID,
		PreparedAt:              model.PreparedAt,
		HasDevicePasscode:       model.HasDevicePasscode,
		SecureHardwareAvailable: model.SecureHardwareAvailable,
	}, nil
}
