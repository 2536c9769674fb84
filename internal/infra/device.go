package infra

import "tag-encryption-service/config"

// DeviceProbe は設定値からデバイスのセキュリティ能力を返すプローブ。
// 実機ではOSの能力照会に置き換わる読み取り専用の境界で、副作用を持たない。
type DeviceProbe struct {
	hasPasscode   bool
	hasBiometrics bool
}

// NewDeviceProbe は設定からDeviceProbeを生成する。
func NewDeviceProbe(cfg *config.Config) *DeviceProbe {
	return &DeviceProbe{
		hasPasscode:   cfg.DeviceHasPasscode,
		hasBiometrics: cfg.DeviceHasBiometrics,
	}
}

// HasDevicePasscode はデバイスにパスコードが設定されているかを返す。
func (p *DeviceProbe) HasDevicePasscode() bool {
	return p.hasPasscode
}

// HasBiometricHardware は生体認証ハードウェアが利用可能かを返す。
func (p *DeviceProbe) HasBiometricHardware() bool {
	return p.hasBiometrics
}
