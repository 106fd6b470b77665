package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/financex/financex/internal/session"
)

// Context keys set by Session for downstream handlers.
const (
	ContextEmail    = "sessionEmail"
	ContextVerified = "sessionVerified"
)

const (
	errUnauthenticated = "Authentication required"
	errNotVerified     = "Email verification required"
)

// Session validates the session cookie and sets the caller's email and
// verification state in the gin context. Requests without a valid cookie are
// rejected; expired and tampered tokens look the same to the client.
func Session(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(session.CookieName)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"success": false, "message": errUnauthenticated})
			return
		}

		s, err := sessions.Validate(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"success": false, "message": errUnauthenticated})
			return
		}

		c.Set(ContextEmail, s.Email)
		c.Set(ContextVerified, s.IsVerified)
		c.Next()
	}
}

// RequireVerified runs after Session and rejects callers whose email is not
// verified yet. Verification endpoints themselves stay reachable without it.
func RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextVerified) {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"success": false, "message": errNotVerified})
			return
		}
		c.Next()
	}
}
