package repository

import (
	"gorm.io/gorm"
)

// Migrate はリポジトリが使用するテーブルを作成・更新する。
// サーバー起動時に呼び出され、未適用のスキーマ変更のみを適用する。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&SecureEntryModel{},
		&MigrationRecordModel{},
	)
}
