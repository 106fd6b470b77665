package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/financex/financex/internal/domain"
	"github.com/financex/financex/internal/email"
	"github.com/financex/financex/internal/oauth"
	"github.com/financex/financex/internal/otp"
	"github.com/financex/financex/internal/repository"
	"github.com/financex/financex/internal/session"
)

const (
	otpTTL           = 15 * time.Minute
	passwordHashCost = 12
)

type AuthUsecase struct {
	users    repository.UserRepository
	sessions *session.Manager
	email    email.Sender
	google   oauth.Provider
	otpTTL   time.Duration
}

func NewAuthUsecase(users repository.UserRepository, sessions *session.Manager, emailSender email.Sender, google oauth.Provider) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		sessions: sessions,
		email:    emailSender,
		google:   google,
		otpTTL:   otpTTL,
	}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// Signup creates the account with its main wallet, the default backup wallets
// and the first verification code, emails the code, and returns an unverified
// session token. A repeat signup on an unverified account folds into a code
// resend so the user can recover from a lost email.
func (u *AuthUsecase) Signup(ctx context.Context, input SignupInput) (string, error) {
	emailAddr := normalizeEmail(input.Email)

	if err := checkPasswordPolicy(input.Password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	code, err := otp.New()
	if err != nil {
		return "", err
	}
	expiresAt := time.Now().Add(u.otpTTL)

	hashStr := string(hash)
	user := &domain.User{
		Email:        emailAddr,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: &hashStr,
		OTP:          &code,
		OTPExpiresAt: &expiresAt,
	}

	err = u.users.CreateWithWallets(ctx, user, uuid.NewString(), domain.DefaultBackupWallets())
	created := err == nil
	if err != nil {
		if !errors.Is(err, domain.ErrUserAlreadyExists) {
			return "", err
		}

		existing, ferr := u.users.FindByEmail(ctx, emailAddr)
		if ferr != nil {
			return "", ferr
		}
		if existing.IsVerified {
			return "", domain.ErrUserAlreadyExists
		}
		if err := u.users.SetOTP(ctx, emailAddr, code, expiresAt); err != nil {
			return "", err
		}
	}

	subject, body := email.VerificationEmail(code)
	if err := u.email.Send(ctx, emailAddr, subject, body); err != nil {
		if created {
			// Compensate so the user can retry signup cleanly.
			_ = u.users.Delete(ctx, emailAddr)
		}
		return "", domain.ErrDeliveryFailed
	}

	return u.sessions.Issue(emailAddr, false)
}

// Login checks credentials and returns a session token carrying the account's
// current verification state. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) (string, *domain.User, error) {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if user.PasswordHash == nil {
		return "", nil, domain.ErrOAuthAccount
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := u.sessions.Issue(user.Email, user.IsVerified)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// VerifyOTP checks the submitted code against the stored one and, on success,
// marks the account verified and re-signs the caller's token with the flag
// flipped. The token keeps its original expiry.
func (u *AuthUsecase) VerifyOTP(ctx context.Context, rawToken, code string) (string, error) {
	s, err := u.sessions.Validate(rawToken)
	if err != nil {
		return "", domain.ErrUnauthenticated
	}

	user, err := u.users.FindByEmail(ctx, s.Email)
	if err != nil {
		return "", err
	}

	if user.IsVerified {
		return "", domain.ErrAlreadyVerified
	}
	if user.OTP == nil || user.OTPExpiresAt == nil {
		return "", domain.ErrNoCodeIssued
	}
	if time.Now().After(*user.OTPExpiresAt) {
		return "", domain.ErrOTPExpired
	}
	if *user.OTP != code {
		return "", domain.ErrOTPMismatch
	}

	if err := u.users.MarkVerified(ctx, user.Email); err != nil {
		return "", err
	}

	return u.sessions.Update(rawToken, true)
}

// ResendOTP issues a fresh code for an unverified account and emails it.
// A delivery failure leaves the new code in place; the user can simply retry.
func (u *AuthUsecase) ResendOTP(ctx context.Context, rawToken string) error {
	s, err := u.sessions.Validate(rawToken)
	if err != nil {
		return domain.ErrUnauthenticated
	}

	user, err := u.users.FindByEmail(ctx, s.Email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return domain.ErrAlreadyVerified
	}

	code, err := otp.New()
	if err != nil {
		return err
	}
	if err := u.users.SetOTP(ctx, user.Email, code, time.Now().Add(u.otpTTL)); err != nil {
		return err
	}

	subject, body := email.VerificationEmail(code)
	if err := u.email.Send(ctx, user.Email, subject, body); err != nil {
		return domain.ErrDeliveryFailed
	}
	return nil
}

// CurrentUser resolves the session token to its account.
func (u *AuthUsecase) CurrentUser(ctx context.Context, rawToken string) (*domain.User, *session.Session, error) {
	s, err := u.sessions.Validate(rawToken)
	if err != nil {
		return nil, nil, domain.ErrUnauthenticated
	}
	user, err := u.users.FindByEmail(ctx, s.Email)
	if err != nil {
		return nil, nil, err
	}
	return user, s, nil
}

// GoogleAuthURL builds the Google consent URL for the given CSRF state.
func (u *AuthUsecase) GoogleAuthURL(state string) string {
	return u.google.AuthURL(state)
}

// GoogleCallback exchanges the authorization code, provisions the account on
// first sign-in, and returns a session token. Google-verified emails skip the
// OTP step entirely.
func (u *AuthUsecase) GoogleCallback(ctx context.Context, code string) (string, error) {
	profile, err := u.google.ResolveProfile(ctx, code)
	if err != nil {
		return "", err
	}

	emailAddr := normalizeEmail(profile.Email)

	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return "", err
		}
		user = &domain.User{
			Email:      emailAddr,
			Name:       profile.Name,
			IsVerified: profile.EmailVerified,
		}
		err = u.users.CreateWithWallets(ctx, user, uuid.NewString(), domain.DefaultBackupWallets())
		if err != nil && !errors.Is(err, domain.ErrUserAlreadyExists) {
			return "", err
		}
	}

	return u.sessions.Issue(emailAddr, user.IsVerified)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

const passwordSymbols = "@$!%*?&"

// checkPasswordPolicy requires at least 8 characters with one uppercase
// letter, one lowercase letter, one digit, and one of @$!%*?&. No other
// characters are allowed.
func checkPasswordPolicy(p string) error {
	if len(p) < 8 {
		return domain.ErrPasswordPolicy
	}

	var upper, lower, digit, symbol bool
	for _, c := range p {
		switch {
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= '0' && c <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, c):
			symbol = true
		default:
			return domain.ErrPasswordPolicy
		}
	}

	if !upper || !lower || !digit || !symbol {
		return domain.ErrPasswordPolicy
	}
	return nil
}
