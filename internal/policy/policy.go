// Package policy はセキュアストレージの保護クラス選択を提供する。
package policy

import "tag-encryption-service/internal/domain"

// Select はデバイス能力から新規鍵の保護クラスを決定する純粋関数。
// パスコードが無い場合は鍵を一切作成しない（フェイルクローズ）。
// 決定は鍵作成時に一度だけ行われ、後からデバイス設定が変わっても再評価しない。
func Select(caps domain.DeviceCapabilities) (domain.AccessPolicy, error) {
	switch {
	case caps.HasBiometricHardware && caps.HasPasscode:
		return domain.AccessPolicyBiometryOrPasscode, nil
	case caps.HasPasscode:
		return domain.AccessPolicyPasscodeOnly, nil
	default:
		return "", domain.ErrDeviceNotSecured
	}
}
