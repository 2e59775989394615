package services

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const adminTokenTTL = time.Hour

// AuthService exchanges the shared admin PIN for a short-lived capability
// token. The PIN gate is a UX deterrent, not a security boundary; a real
// deployment fronts this with its own authorization system.
type AuthService struct {
	pin    string
	secret []byte
}

type adminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func NewAuthService(pin, secret string) *AuthService {
	return &AuthService{pin: pin, secret: []byte(secret)}
}

// AuthenticatePIN returns a capability token when the PIN matches.
func (a *AuthService) AuthenticatePIN(pin string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(pin), []byte(a.pin)) != 1 {
		return "", fmt.Errorf("%w: invalid PIN", ErrUnauthorized)
	}

	now := time.Now()
	claims := adminClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(adminTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign capability token: %v", err)
	}
	return signed, nil
}

// Verify checks a capability token. Revocation is expiry-based: dropping
// the capability client-side is enough for a single-secret gate.
func (a *AuthService) Verify(capability string) error {
	if capability == "" {
		return fmt.Errorf("%w: missing capability token", ErrUnauthorized)
	}

	var claims adminClaims
	token, err := jwt.ParseWithClaims(capability, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid || claims.Role != "admin" {
		return fmt.Errorf("%w: invalid or expired capability token", ErrUnauthorized)
	}
	return nil
}
