// Package session issues and validates the signed cookie credential that
// carries the caller's email and verification state. Tokens are stateless:
// validity is determined entirely by the HMAC signature and the embedded
// expiry, no server-side store is consulted.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie the token travels in.
const CookieName = "session"

const defaultTTL = 7 * 24 * time.Hour

// ErrInvalid covers every validation failure: missing token, bad signature,
// malformed payload, or expiry in the past. Callers must not be able to tell
// a tampered token from an expired one.
var ErrInvalid = errors.New("session invalid or expired")

// Session is the decoded token payload.
type Session struct {
	Email      string    `json:"email"`
	IsVerified bool      `json:"is_verified"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type Manager struct {
	key []byte
	ttl time.Duration
}

func NewManager(key []byte) *Manager {
	return &Manager{key: key, ttl: defaultTTL}
}

// TTL returns the validity window applied to newly issued tokens.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a fresh token with a full validity window.
func (m *Manager) Issue(email string, verified bool) (string, error) {
	return m.sign(email, verified, time.Now().Add(m.ttl))
}

// Validate parses and verifies a raw token. Every failure collapses to
// ErrInvalid.
func (m *Manager) Validate(raw string) (*Session, error) {
	if raw == "" {
		return nil, ErrInvalid
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.key, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalid
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return nil, ErrInvalid
	}
	verified, _ := claims["is_verified"].(bool)

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalid
	}

	return &Session{Email: email, IsVerified: verified, ExpiresAt: exp.Time}, nil
}

// Update re-signs the payload of an existing token with the verification flag
// overridden. The original absolute expiry is preserved: the 7-day window is
// anchored at issue time and does not slide on update.
func (m *Manager) Update(raw string, verified bool) (string, error) {
	s, err := m.Validate(raw)
	if err != nil {
		return "", err
	}
	return m.sign(s.Email, verified, s.ExpiresAt)
}

func (m *Manager) sign(email string, verified bool, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"email":       email,
		"is_verified": verified,
		"iat":         time.Now().Unix(),
		"exp":         expiresAt.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}
