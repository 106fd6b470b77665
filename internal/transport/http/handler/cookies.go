package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/financex/financex/internal/session"
)

const oauthStateCookie = "oauth_state"

// CookieWriter centralizes session-cookie settings so every handler issues
// identical cookies. Secure is off only for local HTTP development.
type CookieWriter struct {
	ttl    time.Duration
	secure bool
}

func NewCookieWriter(ttl time.Duration, secure bool) *CookieWriter {
	return &CookieWriter{ttl: ttl, secure: secure}
}

func (w *CookieWriter) SetSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, token, int(w.ttl.Seconds()), "/", "", w.secure, true)
}

func (w *CookieWriter) ClearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", w.secure, true)
}

func (w *CookieWriter) SetOAuthState(c *gin.Context, state string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, int((10 * time.Minute).Seconds()), "/", "", w.secure, true)
}

func (w *CookieWriter) ClearOAuthState(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, "", -1, "/", "", w.secure, true)
}
