// Package auth issues and verifies the bearer tokens that carry a caller's
// identity, and hashes account passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails signature, expiry or
// claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload. Subject holds the user ID.
type Claims struct {
	IsSalonOwner bool `json:"is_salon_owner"`
	jwt.RegisteredClaims
}

// TokenMaker signs and parses HS256 tokens with a shared secret.
type TokenMaker struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenMaker returns a TokenMaker. The secret must not be empty and the
// TTL must be positive.
func NewTokenMaker(secret string, ttl time.Duration) (*TokenMaker, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must be provided")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt ttl must be > 0, got %s", ttl)
	}
	return &TokenMaker{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "go-salon-backend",
		now:    time.Now,
	}, nil
}

// TTL reports the lifetime of issued tokens.
func (m *TokenMaker) TTL() time.Duration { return m.ttl }

// Issue creates a signed token for userID.
func (m *TokenMaker) Issue(userID string, isSalonOwner bool) (string, error) {
	if userID == "" {
		return "", errors.New("jwt subject must be provided")
	}
	now := m.now()
	claims := Claims{
		IsSalonOwner: isSalonOwner,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse validates tokenStr and returns its claims. Every failure is reported
// as ErrInvalidToken wrapping the underlying cause.
func (m *TokenMaker) Parse(tokenStr string) (*Claims, error) {
	const op = "auth.Parse"
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims, nil
}
