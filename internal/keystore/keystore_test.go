package keystore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"tag-encryption-service/internal/domain"
)

// mockSecureStore はテスト用のインメモリセキュアストア。
// PutEntryは実物と同様に既存エントリを上書きせず競合を返す。
type mockSecureStore struct {
	mu       sync.Mutex
	entries  map[string][]byte
	policies map[string]domain.AccessPolicy
	getErr   error
	putErr   error
}

func newMockSecureStore() *mockSecureStore {
	return &mockSecureStore{
		entries:  make(map[string][]byte),
		policies: make(map[string]domain.AccessPolicy),
	}
}

func entryKey(service, account string) string {
	return service + "/" + account
}

func (m *mockSecureStore) GetEntry(ctx context.Context, service, account string) ([]byte, domain.AccessPolicy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, "", m.getErr
	}
	secret, ok := m.entries[entryKey(service, account)]
	if !ok {
		return nil, "", domain.ErrKeyNotFound
	}
	return secret, m.policies[entryKey(service, account)], nil
}

func (m *mockSecureStore) PutEntry(ctx context.Context, service, account string, secret []byte, accessPolicy domain.AccessPolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	if _, ok := m.entries[entryKey(service, account)]; ok {
		return domain.ErrEntryExists
	}
	m.entries[entryKey(service, account)] = secret
	m.policies[entryKey(service, account)] = accessPolicy
	return nil
}

func (m *mockSecureStore) DeleteEntry(ctx context.Context, service, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, entryKey(service, account))
	delete(m.policies, entryKey(service, account))
	return nil
}

// mockDeviceProbe はテスト用のデバイス能力プローブ。
type mockDeviceProbe struct {
	passcode   bool
	biometrics bool
}

func (m *mockDeviceProbe) HasDevicePasscode() bool    { return m.passcode }
func (m *mockDeviceProbe) HasBiometricHardware() bool { return m.biometrics }

func TestKeyStore_GetOrCreate_CreatesKey(t *testing.T) {
	store := newMockSecureStore()
	probe := &mockDeviceProbe{passcode: true, biometrics: true}
	ks := New(store, probe, "test-service")

	key, err := ks.GetOrCreate(context.Background(), domain.KeyPurposeTransport)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key.Purpose != domain.KeyPurposeTransport {
		t.Errorf("want purpose transport, got %s", key.Purpose)
	}
	if len(key.Material) != domain.KeySize {
		t.Errorf("want %d bytes of material, got %d", domain.KeySize, len(key.Material))
	}
	if store.policies[entryKey("test-service", "transport")] != domain.AccessPolicyBiometryOrPasscode {
		t.Errorf("want biometry_or_passcode policy, got %s", store.policies[entryKey("test-service", "transport")])
	}
}

func TestKeyStore_GetOrCreate_PasscodeOnlyPolicy(t *testing.T) {
	store := newMockSecureStore()
	probe := &mockDeviceProbe{passcode: true}
	ks := New(store, probe, "test-service")

	if _, err := ks.GetOrCreate(context.Background(), domain.KeyPurposeStorage); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.policies[entryKey("test-service", "storage")] != domain.AccessPolicyPasscodeOnly {
		t.Errorf("want passcode_only policy, got %s", store.policies[entryKey("test-service", "storage")])
	}
}

func TestKeyStore_GetOrCreate_DeviceNotSecured(t *testing.T) {
	store := newMockSecureStore()
	probe := &mockDeviceProbe{}
	ks := New(store, probe, "test-service")

	_, err := ks.GetOrCreate(context.Background(), domain.KeyPurposeTransport)
	if !errors.Is(err, domain.ErrDeviceNotSecured) {
		t.Errorf("want ErrDeviceNotSecured, got %v", err)
	}
	if len(store.entries) != 0 {
		t.Error("no key must be persisted when the device is not secured")
	}
}

func TestKeyStore_GetOrCreate_ReturnsExistingKey(t *testing.T) {
	store := newMockSecureStore()
	probe := &mockDeviceProbe{passcode: true}
	ks := New(store, probe, "test-service")

	first, err := ks.GetOrCreate(context.Background(), domain.KeyPurposeTransport)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ks.GetOrCreate(context.Background(), domain.KeyPurposeTransport)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(first.Material, second.Material) {
		t.Error("want the same key on repeated calls")
	}
}

func TestKeyStore_GetOrCreate_LosesRaceAndReloads(t *testing.T) {
	store := newMockSecureStore()
	probe := &mockDeviceProbe{passcode: true}
	ks := New(store, probe, "test-service")

	// 別の呼び出し元が先にコミットした状態を作る
	committed := []byte("committed-key-material-32-bytes!")
	store.entries[entryKey("test-service", "transport")] = committed
	store.policies[entryKey("test-service", "transport")] = domain.AccessPolicyPasscodeOnly

	key, err := ks.GetOrCreate(context.Background(), domain.KeyPurposeTransport)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(key.Material, committed) {
		t.Error("want the committed key, not a newly generated one")
	}
}

func TestKeyStore_GetOrCreate_ConcurrentConvergence(t *testing.T) {
	store := newMockSecureStore()
	probe := &mockDeviceProbe{passcode: true, biometrics: true}
	ks := New(store, probe, "test-service")

	const callers = 16
	var wg sync.WaitGroup
	keys := make([]*domain.SymmetricKey, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			keys[i], errs[i] = ks.GetOrCreate(context.Background(), domain.KeyPurposeStorage)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d failed: %v", i, errs[i])
		}
		if !bytes.Equal(keys[i].Material, keys[0].Material) {
			t.Fatalf("caller %d got a different key than caller 0", i)
		}
	}
}

func TestKeyStore_Load_Absent(t *testing.T) {
	store := newMockSecureStore()
	ks := New(store, &mockDeviceProbe{passcode: true}, "test-service")

	key, err := ks.Load(context.Background(), domain.KeyPurposeStorage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != nil {
		t.Error("want nil key for an absent entry")
	}
}

func TestKeyStore_Load_BackingStoreFailure(t *testing.T) {
	store := newMockSecureStore()
	store.getErr = fmt.Errorf("%w: disk I/O error", domain.ErrBackingStore)
	ks := New(store, &mockDeviceProbe{passcode: true}, "test-service")

	_, err := ks.Load(context.Background(), domain.KeyPurposeStorage)
	if !errors.Is(err, domain.ErrBackingStore) {
		t.Errorf("want ErrBackingStore, got %v", err)
	}
}

func TestKeyStore_Delete(t *testing.T) {
	store := newMockSecureStore()
	probe := &mockDeviceProbe{passcode: true}
	ks := New(store, probe, "test-service")

	if _, err := ks.GetOrCreate(context.Background(), domain.KeyPurposeTransport); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ks.Delete(context.Background(), domain.KeyPurposeTransport); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key, err := ks.Load(context.Background(), domain.KeyPurposeTransport)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != nil {
		t.Error("want nil key after delete")
	}
}
