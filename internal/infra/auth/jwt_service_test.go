package auth

import (
	"testing"
	"time"

	"github.com/statech108/backend/config"
	"github.com/statech108/backend/internal/domain/entity"
	"github.com/statech108/backend/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(t *testing.T, ttl time.Duration) service.TokenService {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Access = "test_access_secret_key_very_long_for_testing"
	cfg.Auth = &config.AuthConfig{TokenTTL: ttl}

	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	return svc
}

func TestJWTService_IssueAndVerify_RoundTrip(t *testing.T) {
	svc := newTestJWTService(t, 24*time.Hour)

	subject := uuid.New()
	token, err := svc.Issue(service.Claims{
		Subject:     subject,
		Role:        entity.RoleMerchant,
		DisplayName: "Acme Tailors",
		MerchantUID: "MAB12CD3",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, subject, claims.Subject)
	assert.Equal(t, entity.RoleMerchant, claims.Role)
	assert.Equal(t, "Acme Tailors", claims.DisplayName)
	assert.Equal(t, "MAB12CD3", claims.MerchantUID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestJWTService_Verify_CustomerHasNoMerchantUID(t *testing.T) {
	svc := newTestJWTService(t, time.Hour)

	token, err := svc.Issue(service.Claims{
		Subject:     uuid.New(),
		Role:        entity.RoleCustomer,
		DisplayName: "some_handle",
	})
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleCustomer, claims.Role)
	assert.Empty(t, claims.MerchantUID)
}

func TestJWTService_Verify_MalformedToken(t *testing.T) {
	svc := newTestJWTService(t, time.Hour)

	claims, err := svc.Verify("clearly-not-a-jwt-token-format")
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_Verify_WrongSecret(t *testing.T) {
	svc := newTestJWTService(t, time.Hour)

	otherCfg := &config.Config{}
	otherCfg.SecretKey.Access = "a_completely_different_secret_key_value"
	other, err := NewJWTService(otherCfg)
	require.NoError(t, err)

	token, err := other.Issue(service.Claims{Subject: uuid.New(), Role: entity.RoleCustomer})
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_Verify_ExpiryBoundary(t *testing.T) {
	// A token issued with a TTL in the past must be rejected; one with a TTL
	// comfortably in the future must verify.
	expired := newTestJWTService(t, -time.Second)
	token, err := expired.Issue(service.Claims{Subject: uuid.New(), Role: entity.RoleCustomer})
	require.NoError(t, err)

	_, err = expired.Verify(token)
	assert.Error(t, err)

	fresh := newTestJWTService(t, time.Second)
	token, err = fresh.Issue(service.Claims{Subject: uuid.New(), Role: entity.RoleCustomer})
	require.NoError(t, err)

	_, err = fresh.Verify(token)
	assert.NoError(t, err)
}

func TestJWTService_ExtractExpiry(t *testing.T) {
	svc := newTestJWTService(t, 24*time.Hour)

	token, err := svc.Issue(service.Claims{Subject: uuid.New(), Role: entity.RoleCustomer})
	require.NoError(t, err)

	expiry, err := svc.ExtractExpiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiry, 5*time.Second)

	// Inspection does not verify: a token from another signer still decodes.
	otherCfg := &config.Config{}
	otherCfg.SecretKey.Access = "a_completely_different_secret_key_value"
	other, err := NewJWTService(otherCfg)
	require.NoError(t, err)

	foreign, err := other.Issue(service.Claims{Subject: uuid.New(), Role: entity.RoleCustomer})
	require.NoError(t, err)

	_, err = svc.ExtractExpiry(foreign)
	assert.NoError(t, err)
}

func TestJWTService_EmptySecret(t *testing.T) {
	cfg := &config.Config{}

	svc, err := NewJWTService(cfg)
	assert.Error(t, err)
	assert.Nil(t, svc)
	assert.Contains(t, err.Error(), "jwt secret must be provided")
}
