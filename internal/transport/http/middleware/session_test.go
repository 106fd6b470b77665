package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/financex/financex/internal/session"
	"github.com/financex/financex/internal/transport/http/middleware"
)

const testKey = "middleware-test-secret-32-chars!!"

func init() {
	gin.SetMode(gin.TestMode)
}

// newEngine protects GET /protected with Session and GET /verified with
// Session+RequireVerified. Handlers echo the email from context so tests can
// assert it was set.
func newEngine(sessions *session.Manager) *gin.Engine {
	r := gin.New()
	r.GET("/protected", middleware.Session(sessions), func(c *gin.Context) {
		c.String(http.StatusOK, "%v", c.GetString(middleware.ContextEmail))
	})
	r.GET("/verified", middleware.Session(sessions), middleware.RequireVerified(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func request(t *testing.T, r *gin.Engine, path, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	}
	r.ServeHTTP(w, req)
	return w
}

func TestSession_MissingCookie_Returns401(t *testing.T) {
	sessions := session.NewManager([]byte(testKey))
	if w := request(t, newEngine(sessions), "/protected", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSession_TamperedToken_Returns401(t *testing.T) {
	sessions := session.NewManager([]byte(testKey))
	token, err := sessions.Issue("user@example.com", true)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if w := request(t, newEngine(sessions), "/protected", token+"x"); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSession_WrongKey_Returns401(t *testing.T) {
	other := session.NewManager([]byte("another-test-secret-of-32-chars!!"))
	token, err := other.Issue("user@example.com", true)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	sessions := session.NewManager([]byte(testKey))
	if w := request(t, newEngine(sessions), "/protected", token); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSession_ValidToken_SetsEmail(t *testing.T) {
	sessions := session.NewManager([]byte(testKey))
	token, err := sessions.Issue("user@example.com", false)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	w := request(t, newEngine(sessions), "/protected", token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "user@example.com" {
		t.Errorf("email in context = %q, want user@example.com", w.Body.String())
	}
}

func TestRequireVerified_UnverifiedToken_Returns401(t *testing.T) {
	sessions := session.NewManager([]byte(testKey))
	token, err := sessions.Issue("user@example.com", false)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if w := request(t, newEngine(sessions), "/verified", token); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireVerified_VerifiedToken_Passes(t *testing.T) {
	sessions := session.NewManager([]byte(testKey))
	token, err := sessions.Issue("user@example.com", true)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if w := request(t, newEngine(sessions), "/verified", token); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
