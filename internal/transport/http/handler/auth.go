package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/financex/financex/internal/domain"
	"github.com/financex/financex/internal/metrics"
	"github.com/financex/financex/internal/otp"
	"github.com/financex/financex/internal/session"
	"github.com/financex/financex/internal/usecase"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Signup(ctx context.Context, input usecase.SignupInput) (string, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	VerifyOTP(ctx context.Context, rawToken, code string) (string, error)
	ResendOTP(ctx context.Context, rawToken string) error
	CurrentUser(ctx context.Context, rawToken string) (*domain.User, *session.Session, error)
	GoogleAuthURL(state string) string
	GoogleCallback(ctx context.Context, code string) (string, error)
}

type AuthHandler struct {
	auth    authUsecaser
	cookies *CookieWriter
	logger  *slog.Logger
}

func NewAuthHandler(auth authUsecaser, cookies *CookieWriter, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		cookies: cookies,
		logger:  logger.With("component", "auth_handler"),
	}
}

type userResponse struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	IsVerified bool   `json:"is_verified"`
}

type signupRequest struct {
	Name     string `json:"name"     binding:"required,min=2,max=100"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	token, err := h.auth.Signup(c.Request.Context(), usecase.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPasswordPolicy):
			metrics.SignupsTotal.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errPasswordPolicy})
		case errors.Is(err, domain.ErrUserAlreadyExists):
			metrics.SignupsTotal.WithLabelValues("conflict").Inc()
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": errUserExists})
		case errors.Is(err, domain.ErrDeliveryFailed):
			metrics.SignupsTotal.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errDeliveryFailed})
		default:
			metrics.SignupsTotal.WithLabelValues("error").Inc()
			h.logger.Error("signup", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		}
		return
	}

	metrics.SignupsTotal.WithLabelValues("created").Inc()
	h.cookies.SetSession(c, token)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Account created. Check your email for the verification code.",
	})
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": errInvalidCredentials})
		case errors.Is(err, domain.ErrOAuthAccount):
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errOAuthAccount})
		default:
			metrics.LoginsTotal.WithLabelValues("error").Inc()
			h.logger.Error("login", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		}
		return
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	h.cookies.SetSession(c, token)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged in",
		"user":    userResponse{Email: user.Email, Name: user.Name, IsVerified: user.IsVerified},
	})
}

// GET /api/auth/session
func (h *AuthHandler) Session(c *gin.Context) {
	raw, _ := c.Cookie(session.CookieName)

	user, s, err := h.auth.CurrentUser(c.Request.Context(), raw)
	if err != nil {
		// A missing or stale cookie is a normal state for this probe.
		if errors.Is(err, domain.ErrUnauthenticated) || errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusOK, gin.H{"success": true, "user": nil})
			return
		}
		h.logger.Error("session probe", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"user":       userResponse{Email: user.Email, Name: user.Name, IsVerified: user.IsVerified},
		"expires_at": s.ExpiresAt,
	})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookies.ClearSession(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

type verifyOTPRequest struct {
	OTP string `json:"otp" binding:"required"`
}

// POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	// validator's numeric tag admits signs and decimal points.
	if !otp.ValidShape(req.OTP) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errCodeShape})
		return
	}

	raw, _ := c.Cookie(session.CookieName)
	token, err := h.auth.VerifyOTP(c.Request.Context(), raw, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": errUnauthenticated})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errUserNotFound})
		case errors.Is(err, domain.ErrAlreadyVerified):
			metrics.VerificationsTotal.WithLabelValues("already_verified").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errAlreadyVerified})
		case errors.Is(err, domain.ErrNoCodeIssued):
			metrics.VerificationsTotal.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errNoCodeIssued})
		case errors.Is(err, domain.ErrOTPExpired):
			metrics.VerificationsTotal.WithLabelValues("expired").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errCodeExpired})
		case errors.Is(err, domain.ErrOTPMismatch):
			metrics.VerificationsTotal.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errCodeMismatch})
		default:
			metrics.VerificationsTotal.WithLabelValues("error").Inc()
			h.logger.Error("verify otp", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		}
		return
	}

	metrics.VerificationsTotal.WithLabelValues("ok").Inc()
	h.cookies.SetSession(c, token)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email verified successfully"})
}

// POST /api/auth/resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	raw, _ := c.Cookie(session.CookieName)

	if err := h.auth.ResendOTP(c.Request.Context(), raw); err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": errUnauthenticated})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errUserNotFound})
		case errors.Is(err, domain.ErrAlreadyVerified):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errAlreadyVerified})
		case errors.Is(err, domain.ErrDeliveryFailed):
			metrics.OTPEmailsTotal.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errDeliveryFailed})
		default:
			metrics.OTPEmailsTotal.WithLabelValues("error").Inc()
			h.logger.Error("resend otp", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		}
		return
	}

	metrics.OTPEmailsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Verification code sent"})
}

// GET /api/auth/google
func (h *AuthHandler) GoogleRedirect(c *gin.Context) {
	state := uuid.NewString()
	h.cookies.SetOAuthState(c, state)
	c.Redirect(http.StatusFound, h.auth.GoogleAuthURL(state))
}

// GET /api/auth/google/callback?code=...&state=...
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	wantState, err := c.Cookie(oauthStateCookie)
	if err != nil || wantState == "" || c.Query("state") != wantState {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": errInvalidOAuthState})
		return
	}
	h.cookies.ClearOAuthState(c)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errInvalidOAuthCode})
		return
	}

	token, err := h.auth.GoogleCallback(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidOAuthCode) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": errInvalidOAuthCode})
			return
		}
		h.logger.Error("google callback", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}

	h.cookies.SetSession(c, token)
	c.Redirect(http.StatusFound, "/")
}
