// Package domain はドメインモデルとビジネスルールを定義する。
package domain

// KeyPurpose は対称鍵の論理的な用途を表す。
type KeyPurpose string

const (
	// KeyPurposeTransport はタグ書き込みペイロードの暗号化に使う鍵を表す。
	KeyPurposeTransport KeyPurpose = "transport"
	// KeyPurposeStorage はローカルデータストアの保存時暗号化に使う鍵を表す。
	KeyPurposeStorage KeyPurpose = "storage"
)

// KeySize は対称鍵のバイト長（AES-256 = 256 bits = 32 bytes）。
const KeySize = 32

// SymmetricKey は用途タグ付きの対称鍵を表す。
// 鍵素材はKeyStoreの境界外に保持されず、暗号処理の一回の呼び出しにのみ渡される。
type SymmetricKey struct {
	Purpose  KeyPurpose
	Material []byte
}

// AccessPolicy はセキュアストレージに保存する鍵の保護クラスを表す。
// 鍵の作成時に一度だけ決定され、その後デバイス設定が変わっても再評価しない。
type AccessPolicy string

const (
	// AccessPolicyBiometryOrPasscode は生体認証またはパスコードで保護するポリシー（最強）。
	AccessPolicyBiometryOrPasscode AccessPolicy = "biometry_or_passcode"
	// AccessPolicyPasscodeOnly はパスコードのみで保護するポリシー。
	AccessPolicyPasscodeOnly AccessPolicy = "passcode_only"
)

// DeviceCapabilities はデバイスのセキュリティ能力を表す。
type DeviceCapabilities struct {
	HasPasscode          bool
	HasBiometricHardware bool
}
