// Package middleware contains the HTTP middleware chain: authentication,
// request identification and central error rendering.
package middleware

import (
	"strings"

	"github.com/statech108/backend/internal/domain/entity"
	domainerrors "github.com/statech108/backend/internal/domain/errors"
	"github.com/statech108/backend/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// keyClaims is the echo context key the verified claims are bound under.
const keyClaims = "claims"

// AuthMiddleware guards protected routes with bearer credential verification.
// It never touches registry or hierarchy code; handlers read the bound claims.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the bearer credential and binds its claims to the
// request context. A missing or malformed header is 401; a credential that
// fails verification (signature, structure or expiry) is 403.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return domainerrors.ErrUnauthenticated
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			return domainerrors.ErrUnauthenticated.WithDetails("authorization header must be a Bearer token")
		}

		claims, err := m.tokenSvc.Verify(tokenString)
		if err != nil {
			return domainerrors.ErrInvalidToken
		}

		c.Set(keyClaims, claims)

		return next(c)
	}
}

// RequireMerchant rejects any credential not issued to a merchant.
// It must be used AFTER Authenticate.
func (m *AuthMiddleware) RequireMerchant(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return domainerrors.ErrUnauthenticated
		}
		if claims.Role != entity.RoleMerchant || claims.MerchantUID == "" {
			return domainerrors.ErrNotAMerchant
		}

		return next(c)
	}
}

// ClaimsFromContext returns the claims bound by Authenticate.
func ClaimsFromContext(c echo.Context) (*service.Claims, bool) {
	claims, ok := c.Get(keyClaims).(*service.Claims)

	return claims, ok
}
