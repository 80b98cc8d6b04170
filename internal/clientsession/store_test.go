package clientsession

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubInspector returns a fixed expiry for every token.
type stubInspector struct {
	expiresAt time.Time
}

func (s *stubInspector) ExtractExpiry(string) (time.Time, error) {
	return s.expiresAt, nil
}

func issuance(token string) *IssuanceResult {
	return &IssuanceResult{
		Token: token,
		Identity: Identity{
			ID:          "b4b4cbf0-0000-4000-8000-000000000001",
			Role:        "customer",
			DisplayName: "night_owl",
		},
	}
}

func TestStore_SaveValidClear(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(DomainCustomer, dir, &stubInspector{expiresAt: time.Now().Add(time.Hour)})

	require.NoError(t, store.Save(issuance("token-123")))
	assert.True(t, store.Valid())
	assert.Equal(t, "token-123", store.Token())
	assert.Equal(t, "night_owl", store.Identity().DisplayName)

	require.NoError(t, store.Clear())
	assert.False(t, store.Valid())
	assert.Empty(t, store.Token())
	assert.NoFileExists(t, filepath.Join(dir, "session_customer.json"))
}

func TestStore_SaveRejectsEmptyToken(t *testing.T) {
	store := NewStore(DomainCustomer, t.TempDir(), &stubInspector{})

	assert.ErrorIs(t, store.Save(&IssuanceResult{}), ErrEmptyToken)
	assert.ErrorIs(t, store.Save(nil), ErrEmptyToken)
	assert.False(t, store.Valid())
}

func TestStore_ExpiredTokenIsInvalid(t *testing.T) {
	store := NewStore(DomainCustomer, t.TempDir(), &stubInspector{expiresAt: time.Now().Add(-time.Minute)})

	require.NoError(t, store.Save(issuance("stale-token")))

	assert.False(t, store.Valid())
	assert.Equal(t, "stale-token", store.Token())
}

// A token without an expiry claim never expires locally. Leniency here is
// harmless: the server still rejects anything it will not verify.
func TestStore_NoExpiryIsTreatedAsNonExpiring(t *testing.T) {
	store := NewStore(DomainCustomer, t.TempDir(), &stubInspector{})

	require.NoError(t, store.Save(issuance("no-exp-token")))

	assert.True(t, store.Valid())
}

func TestStore_RehydratesFromDisk(t *testing.T) {
	dir := t.TempDir()
	inspector := &stubInspector{expiresAt: time.Now().Add(time.Hour)}

	first := NewStore(DomainMerchant, dir, inspector)
	result := issuance("persisted-token")
	result.Identity.Role = "merchant"
	result.Identity.MerchantUID = "M1234567"
	require.NoError(t, first.Save(result))

	second := NewStore(DomainMerchant, dir, inspector)
	assert.True(t, second.Valid())
	assert.Equal(t, "persisted-token", second.Token())
	assert.Equal(t, "M1234567", second.Identity().MerchantUID)
}

func TestStore_CorruptFileLeavesStoreEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session_customer.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewStore(DomainCustomer, dir, &stubInspector{})

	assert.False(t, store.Valid())
	assert.Empty(t, store.Token())
}

func TestManager_DomainsAreIsolated(t *testing.T) {
	dir := t.TempDir()
	manager := NewManager(dir, &stubInspector{expiresAt: time.Now().Add(time.Hour)})

	require.NoError(t, manager.Customer().Save(issuance("customer-token")))

	merchantResult := issuance("merchant-token")
	merchantResult.Identity.Role = "merchant"
	merchantResult.Identity.MerchantUID = "M1234567"
	require.NoError(t, manager.Merchant().Save(merchantResult))

	assert.Equal(t, "customer-token", manager.Customer().Token())
	assert.Equal(t, "merchant-token", manager.Merchant().Token())

	// Clearing one domain must not disturb the other.
	require.NoError(t, manager.Customer().Clear())
	assert.False(t, manager.Customer().Valid())
	assert.True(t, manager.Merchant().Valid())
	assert.Equal(t, "M1234567", manager.Merchant().Identity().MerchantUID)
}
