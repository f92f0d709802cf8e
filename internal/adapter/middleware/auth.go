package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"lending-engine/internal/domain/access"
	"lending-engine/pkg/id"
)

const principalKey = "lending.principal"

// Claims carried by access tokens. Subject is the caller's 32-char hex id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

var errBadToken = errors.New("invalid token")

// Auth requires a valid HS256 bearer token and stores the caller's
// access.Principal on the context.
func Auth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			p, err := ParseToken(secret, strings.TrimSpace(raw))
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					msg = "token has expired"
				}
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": msg})
			}
			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// ParseToken validates the signature and the claims and returns the caller.
func ParseToken(secret []byte, token string) (access.Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return access.Principal{}, err
	}
	if !parsed.Valid || !id.Valid(claims.Subject) {
		return access.Principal{}, errBadToken
	}
	role, ok := access.ParseRole(claims.Role)
	if !ok {
		return access.Principal{}, errBadToken
	}
	return access.Principal{ID: claims.Subject, Role: role}, nil
}

// IssueToken signs an access token for p. Token issuance for end users lives
// outside this service; this is used by tooling and tests.
func IssueToken(secret []byte, p access.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}).SignedString(secret)
}

// PrincipalFrom returns the caller stored by Auth, or the zero Principal.
func PrincipalFrom(c echo.Context) access.Principal {
	p, _ := c.Get(principalKey).(access.Principal)
	return p
}
