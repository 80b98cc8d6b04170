package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/statech108/backend/config"
	"github.com/statech108/backend/internal/domain/entity"
	"github.com/statech108/backend/internal/domain/service"
)

// accessClaims is the on-wire claim set of an access credential.
type accessClaims struct {
	Role        string `json:"role"`
	DisplayName string `json:"name,omitempty"`
	MerchantUID string `json:"merchant_uid,omitempty"`
	jwt.RegisteredClaims
}

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret   string        // Secret key for signing access tokens.
	tokenTTL time.Duration // Time-to-live for every issued credential.
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	ttl := 24 * time.Hour
	if cfg.Auth != nil && cfg.Auth.TokenTTL > 0 {
		ttl = cfg.Auth.TokenTTL
	}

	return &jwtService{
		secret:   cfg.SecretKey.Access,
		tokenTTL: ttl,
	}, nil
}

// Issue creates a signed credential carrying the principal identity, role tag
// and an expiry instant of now + TTL.
func (s *jwtService) Issue(claims service.Claims) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &accessClaims{
		Role:        claims.Role.String(),
		DisplayName: claims.DisplayName,
		MerchantUID: claims.MerchantUID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})

	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// Verify checks the signature, structure and expiry of a credential.
// All failure modes collapse into a single error; callers must not be able to
// distinguish a forged token from an expired one.
func (s *jwtService) Verify(tokenString string) (*service.Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "invalid token")
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.Wrap(err, "invalid subject in token")
	}

	role := entity.Role(claims.Role)
	if !role.IsValid() {
		return nil, errors.Errorf("unknown role in token: %s", claims.Role)
	}

	out := &service.Claims{
		Subject:     subject,
		Role:        role,
		DisplayName: claims.DisplayName,
		MerchantUID: claims.MerchantUID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}

	return out, nil
}

// ExtractExpiry decodes the expiry claim without verifying the signature.
// Only safe on tokens the caller already trusts came from this system; the
// client session store uses it to cache a local expiry.
func (s *jwtService) ExtractExpiry(tokenString string) (time.Time, error) {
	claims := &accessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, errors.Wrap(err, "failed to decode token")
	}

	if claims.ExpiresAt == nil {
		// No expiry claim. The session store treats this as "does not expire".
		return time.Time{}, nil
	}

	return claims.ExpiresAt.Time, nil
}

// TokenTTL returns the configured credential lifetime.
func (s *jwtService) TokenTTL() time.Duration {
	return s.tokenTTL
}
