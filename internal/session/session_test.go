package session_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/financex/financex/internal/session"
	"github.com/golang-jwt/jwt/v5"
)

const testKey = "session-test-secret-at-least-32-chars!"

func newManager() *session.Manager {
	return session.NewManager([]byte(testKey))
}

func TestIssueThenValidate_RoundTrips(t *testing.T) {
	m := newManager()

	raw, err := m.Issue("alice@example.com", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	s, err := m.Validate(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if s.Email != "alice@example.com" {
		t.Errorf("email = %q, want alice@example.com", s.Email)
	}
	if s.IsVerified {
		t.Error("is_verified = true, want false")
	}
	if !s.ExpiresAt.After(time.Now().Add(6 * 24 * time.Hour)) {
		t.Errorf("expiry %v is not ~7 days out", s.ExpiresAt)
	}
}

func TestValidate_EmptyToken_Fails(t *testing.T) {
	if _, err := newManager().Validate(""); !errors.Is(err, session.ErrInvalid) {
		t.Errorf("want ErrInvalid, got %v", err)
	}
}

func TestValidate_TamperedToken_Fails(t *testing.T) {
	m := newManager()
	raw, err := m.Issue("alice@example.com", true)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Flip a character in the signature segment.
	parts := strings.Split(raw, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	parts[2] = string(sig)

	if _, err := m.Validate(strings.Join(parts, ".")); !errors.Is(err, session.ErrInvalid) {
		t.Errorf("want ErrInvalid for tampered token, got %v", err)
	}
}

func TestValidate_WrongKey_Fails(t *testing.T) {
	raw, err := session.NewManager([]byte("another-secret-that-is-32-chars-long!!")).Issue("a@b.co", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := newManager().Validate(raw); !errors.Is(err, session.ErrInvalid) {
		t.Errorf("want ErrInvalid for foreign signature, got %v", err)
	}
}

func TestValidate_ExpiredToken_Fails(t *testing.T) {
	// Hand-craft a token already past its expiry with the right key.
	claims := jwt.MapClaims{
		"email":       "alice@example.com",
		"is_verified": true,
		"iat":         time.Now().Add(-8 * 24 * time.Hour).Unix(),
		"exp":         time.Now().Add(-time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testKey))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := newManager().Validate(raw); !errors.Is(err, session.ErrInvalid) {
		t.Errorf("want ErrInvalid for expired token, got %v", err)
	}
}

func TestUpdate_FlipsFlagAndPreservesExpiry(t *testing.T) {
	m := newManager()
	raw, err := m.Issue("alice@example.com", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	before, err := m.Validate(raw)
	if err != nil {
		t.Fatalf("validate original: %v", err)
	}

	updated, err := m.Update(raw, true)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	after, err := m.Validate(updated)
	if err != nil {
		t.Fatalf("validate updated: %v", err)
	}

	if !after.IsVerified {
		t.Error("updated token is_verified = false, want true")
	}
	if after.Email != before.Email {
		t.Errorf("email changed on update: %q -> %q", before.Email, after.Email)
	}
	// Fixed absolute window: the expiry must not slide.
	if !after.ExpiresAt.Equal(before.ExpiresAt) {
		t.Errorf("expiry slid on update: %v -> %v", before.ExpiresAt, after.ExpiresAt)
	}
}

func TestUpdate_InvalidToken_Fails(t *testing.T) {
	if _, err := newManager().Update("not.a.token", true); !errors.Is(err, session.ErrInvalid) {
		t.Errorf("want ErrInvalid, got %v", err)
	}
}
