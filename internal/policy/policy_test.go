package policy

import (
	"errors"
	"testing"

	"tag-encryption-service/internal/domain"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name    string
		caps    domain.DeviceCapabilities
		want    domain.AccessPolicy
		wantErr error
	}{
		{
			name: "biometrics and passcode",
			caps: domain.DeviceCapabilities{HasPasscode: true, HasBiometricHardware: true},
			want: domain.AccessPolicyBiometryOrPasscode,
		},
		{
			name: "passcode only",
			caps: domain.DeviceCapabilities{HasPasscode: true},
			want: domain.AccessPolicyPasscodeOnly,
		},
		{
			name:    "no passcode",
			caps:    domain.DeviceCapabilities{},
			wantErr: domain.ErrDeviceNotSecured,
		},
		{
			// 生体認証ハードウェアがあってもパスコードが無ければ鍵は作成しない
			name:    "biometrics without passcode",
			caps:    domain.DeviceCapabilities{HasBiometricHardware: true},
			wantErr: domain.ErrDeviceNotSecured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(tt.caps)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("want %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("want policy %s, got %s", tt.want, got)
			}
		})
	}
}
