package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrAlreadyVerified    = errors.New("user is already verified")
	ErrNotVerified        = errors.New("user is not verified")
	ErrOAuthAccount       = errors.New("account was created with an OAuth provider")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordPolicy     = errors.New("password does not satisfy the composition policy")

	ErrNoCodeIssued   = errors.New("no verification code issued")
	ErrOTPExpired     = errors.New("verification code has expired")
	ErrOTPMismatch    = errors.New("verification code does not match")
	ErrDeliveryFailed = errors.New("verification email delivery failed")

	ErrUnauthenticated = errors.New("no valid session")

	ErrInvalidOAuthState = errors.New("oauth state mismatch")
	ErrInvalidOAuthCode  = errors.New("oauth code exchange failed")
)

// User is the identity record, keyed by email. Password is nil for
// OAuth-created accounts. OTP and OTPExpiresAt are both set or both nil;
// once IsVerified is true they are cleared.
type User struct {
	Email        string
	Name         string
	PasswordHash *string
	IsVerified   bool
	OTP          *string
	OTPExpiresAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
