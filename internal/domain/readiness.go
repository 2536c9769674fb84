package domain

import "time"

// ReadinessStatus は保存時暗号化の準備状態を表す。
type ReadinessStatus string

const (
	// ReadinessNotEvaluated は未評価の初期状態を表す。
	ReadinessNotEvaluated ReadinessStatus = "not_evaluated"
	// ReadinessNoPasscode はデバイスにパスコードが無く保護を有効化できない状態を表す。
	ReadinessNoPasscode ReadinessStatus = "no_passcode"
	// ReadinessMigrationRequired はストレージ鍵が未作成でマイグレーションが必要な状態を表す。
	ReadinessMigrationRequired ReadinessStatus = "migration_required"
	// ReadinessEncrypted はストレージ鍵が存在し保護を有効化できる状態を表す。
	ReadinessEncrypted ReadinessStatus = "encrypted"
	// ReadinessError はセキュアストレージの読み取りに失敗した状態を表す。
	ReadinessError ReadinessStatus = "error"
)

// Readiness は評価結果を表す。Errorの場合のみReasonが設定される。
type Readiness struct {
	Status ReadinessStatus
	Reason string
}

// MigrationRecord はマイグレーション準備時のデバイス状態の記録を表す。
// 準備呼び出しごとに一件だけ保持され、後続の呼び出しで上書きされる。
type MigrationRecord struct {
	ID                      string
	PreparedAt              time.Time
	HasDevicePasscode       bool
	SecureHardwareAvailable bool
}
