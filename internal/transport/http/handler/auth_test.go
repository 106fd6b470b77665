package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/financex/financex/internal/domain"
	"github.com/financex/financex/internal/session"
	"github.com/financex/financex/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeAuthUsecase struct {
	signup         func(ctx context.Context, input usecase.SignupInput) (string, error)
	login          func(ctx context.Context, email, password string) (string, *domain.User, error)
	verifyOTP      func(ctx context.Context, rawToken, code string) (string, error)
	resendOTP      func(ctx context.Context, rawToken string) error
	currentUser    func(ctx context.Context, rawToken string) (*domain.User, *session.Session, error)
	googleAuthURL  func(state string) string
	googleCallback func(ctx context.Context, code string) (string, error)
}

func (f *fakeAuthUsecase) Signup(ctx context.Context, input usecase.SignupInput) (string, error) {
	return f.signup(ctx, input)
}

func (f *fakeAuthUsecase) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAuthUsecase) VerifyOTP(ctx context.Context, rawToken, code string) (string, error) {
	return f.verifyOTP(ctx, rawToken, code)
}

func (f *fakeAuthUsecase) ResendOTP(ctx context.Context, rawToken string) error {
	return f.resendOTP(ctx, rawToken)
}

func (f *fakeAuthUsecase) CurrentUser(ctx context.Context, rawToken string) (*domain.User, *session.Session, error) {
	return f.currentUser(ctx, rawToken)
}

func (f *fakeAuthUsecase) GoogleAuthURL(state string) string {
	return f.googleAuthURL(state)
}

func (f *fakeAuthUsecase) GoogleCallback(ctx context.Context, code string) (string, error) {
	return f.googleCallback(ctx, code)
}

func newAuthRouter(fake *fakeAuthUsecase) *gin.Engine {
	h := NewAuthHandler(fake, NewCookieWriter(7*24*time.Hour, false), discardLogger())
	r := gin.New()
	r.POST("/api/auth/signup", h.Signup)
	r.POST("/api/auth/login", h.Login)
	r.GET("/api/auth/session", h.Session)
	r.POST("/api/auth/logout", h.Logout)
	r.POST("/api/auth/verify-otp", h.VerifyOTP)
	r.POST("/api/auth/resend-otp", h.ResendOTP)
	r.GET("/api/auth/google", h.GoogleRedirect)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	}
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestSignup_SetsSessionCookie(t *testing.T) {
	fake := &fakeAuthUsecase{
		signup: func(_ context.Context, input usecase.SignupInput) (string, error) {
			if input.Email != "user@example.com" {
				t.Errorf("email = %q", input.Email)
			}
			return "signed-token", nil
		},
	}

	w := doJSON(t, newAuthRouter(fake), http.MethodPost, "/api/auth/signup",
		`{"name":"Test User","email":"user@example.com","password":"Str0ng!pass"}`, "")

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", w.Code, w.Body.String())
	}
	c := sessionCookie(t, w)
	if c == nil || c.Value != "signed-token" {
		t.Fatalf("session cookie not set: %+v", c)
	}
	if !c.HttpOnly {
		t.Error("session cookie must be http-only")
	}
}

func TestSignup_DuplicateEmail_Returns409(t *testing.T) {
	fake := &fakeAuthUsecase{
		signup: func(context.Context, usecase.SignupInput) (string, error) {
			return "", domain.ErrUserAlreadyExists
		},
	}

	w := doJSON(t, newAuthRouter(fake), http.MethodPost, "/api/auth/signup",
		`{"name":"Test User","email":"user@example.com","password":"Str0ng!pass"}`, "")
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestSignup_MalformedBody_Returns400(t *testing.T) {
	fake := &fakeAuthUsecase{
		signup: func(context.Context, usecase.SignupInput) (string, error) {
			t.Fatal("usecase must not run on a malformed body")
			return "", nil
		},
	}

	w := doJSON(t, newAuthRouter(fake), http.MethodPost, "/api/auth/signup",
		`{"email":"not-an-email"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestLogin_InvalidCredentials_Returns401(t *testing.T) {
	fake := &fakeAuthUsecase{
		login: func(context.Context, string, string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}

	w := doJSON(t, newAuthRouter(fake), http.MethodPost, "/api/auth/login",
		`{"email":"user@example.com","password":"wrong"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if sessionCookie(t, w) != nil {
		t.Error("failed login must not set a cookie")
	}
}

func TestLogin_ReturnsUserAndCookie(t *testing.T) {
	fake := &fakeAuthUsecase{
		login: func(context.Context, string, string) (string, *domain.User, error) {
			return "signed-token", &domain.User{Email: "user@example.com", Name: "Test", IsVerified: true}, nil
		},
	}

	w := doJSON(t, newAuthRouter(fake), http.MethodPost, "/api/auth/login",
		`{"email":"user@example.com","password":"Str0ng!pass"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Success bool `json:"success"`
		User    struct {
			Email      string `json:"email"`
			IsVerified bool   `json:"is_verified"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success || body.User.Email != "user@example.com" || !body.User.IsVerified {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
	if sessionCookie(t, w) == nil {
		t.Error("login must set the session cookie")
	}
}

func TestVerifyOTP_ReissuesCookie(t *testing.T) {
	fake := &fakeAuthUsecase{
		verifyOTP: func(_ context.Context, rawToken, code string) (string, error) {
			if rawToken != "old-token" {
				t.Errorf("raw token = %q, want old-token", rawToken)
			}
			if code != "042137" {
				t.Errorf("code = %q", code)
			}
			return "verified-token", nil
		},
	}

	w := doJSON(t, newAuthRouter(fake), http.MethodPost, "/api/auth/verify-otp",
		`{"otp":"042137"}`, "old-token")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	c := sessionCookie(t, w)
	if c == nil || c.Value != "verified-token" {
		t.Fatalf("re-signed cookie not set: %+v", c)
	}
}

func TestVerifyOTP_MalformedCode_RejectedBeforeUsecase(t *testing.T) {
	codes := []string{"12ab56", "-12345", "+12345", "1.2345", "12345", "1234567", ""}

	for _, code := range codes {
		fake := &fakeAuthUsecase{
			verifyOTP: func(context.Context, string, string) (string, error) {
				t.Errorf("usecase ran for malformed code %q", code)
				return "", nil
			},
		}

		body, _ := json.Marshal(gin.H{"otp": code})
		w := doJSON(t, newAuthRouter(fake), http.MethodPost, "/api/auth/verify-otp",
			string(body), "old-token")
		if w.Code != http.StatusBadRequest {
			t.Errorf("code %q: status = %d, want 400", code, w.Code)
		}
	}
}

func TestVerifyOTP_ExpiredCode_Returns400(t *testing.T) {
	fake := &fakeAuthUsecase{
		verifyOTP: func(context.Context, string, string) (string, error) {
			return "", domain.ErrOTPExpired
		},
	}

	w := doJSON(t, newAuthRouter(fake), http.MethodPost, "/api/auth/verify-otp",
		`{"otp":"042137"}`, "old-token")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), errCodeExpired) {
		t.Errorf("body %s does not mention expiry", w.Body.String())
	}
}

func TestVerifyOTP_DeletedAccount_Returns404(t *testing.T) {
	fake := &fakeAuthUsecase{
		verifyOTP: func(context.Context, string, string) (string, error) {
			return "", domain.ErrUserNotFound
		},
	}

	w := doJSON(t, newAuthRouter(fake), http.MethodPost, "/api/auth/verify-otp",
		`{"otp":"042137"}`, "old-token")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestResendOTP_DeletedAccount_Returns404(t *testing.T) {
	fake := &fakeAuthUsecase{
		resendOTP: func(context.Context, string) error {
			return domain.ErrUserNotFound
		},
	}

	w := doJSON(t, newAuthRouter(fake), http.MethodPost, "/api/auth/resend-otp", "", "old-token")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestVerifyOTP_NoSession_Returns401(t *testing.T) {
	fake := &fakeAuthUsecase{
		verifyOTP: func(context.Context, string, string) (string, error) {
			return "", domain.ErrUnauthenticated
		},
	}

	w := doJSON(t, newAuthRouter(fake), http.MethodPost, "/api/auth/verify-otp",
		`{"otp":"042137"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSessionProbe_InvalidToken_ReturnsNullUser(t *testing.T) {
	fake := &fakeAuthUsecase{
		currentUser: func(context.Context, string) (*domain.User, *session.Session, error) {
			return nil, nil, domain.ErrUnauthenticated
		},
	}

	w := doJSON(t, newAuthRouter(fake), http.MethodGet, "/api/auth/session", "", "stale")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Success bool             `json:"success"`
		User    *json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success || (body.User != nil && string(*body.User) != "null") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestLogout_ExpiresCookie(t *testing.T) {
	fake := &fakeAuthUsecase{}

	w := doJSON(t, newAuthRouter(fake), http.MethodPost, "/api/auth/logout", "", "old-token")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	c := sessionCookie(t, w)
	if c == nil {
		t.Fatal("logout must rewrite the session cookie")
	}
	if c.MaxAge >= 0 || c.Value != "" {
		t.Errorf("cookie not expired: value=%q max-age=%d", c.Value, c.MaxAge)
	}
}

func TestGoogleRedirect_SetsStateCookieAndRedirects(t *testing.T) {
	fake := &fakeAuthUsecase{
		googleAuthURL: func(state string) string {
			return "https://accounts.google.com/o/oauth2/auth?state=" + state
		},
	}

	w := doJSON(t, newAuthRouter(fake), http.MethodGet, "/api/auth/google", "", "")
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}

	var state string
	for _, c := range w.Result().Cookies() {
		if c.Name == oauthStateCookie {
			state = c.Value
		}
	}
	if state == "" {
		t.Fatal("state cookie not set")
	}
	if loc := w.Header().Get("Location"); !strings.Contains(loc, state) {
		t.Errorf("redirect %q does not carry the state", loc)
	}
}
