package middleware

import (
	"net/http" // HTTP status codes

	"parking_system/internal/auth"  // Session store
	"parking_system/internal/utils" // Session token and flash helpers

	"github.com/gin-gonic/gin" // Gin web framework
)

// SessionCookie is the name of the signed session cookie.
const SessionCookie = "parking_session"

// resolveSession parses the session cookie, verifies its signature and
// checks the Redis record is still live. Returns nil on any failure.
func resolveSession(c *gin.Context, sessions *auth.SessionStore, secret string) *utils.SessionClaims {
	token, err := c.Cookie(SessionCookie)
	if err != nil || token == "" {
		return nil
	}
	claims, err := utils.ParseSession(token, secret)
	if err != nil {
		return nil
	}
	live, err := sessions.Live(c.Request.Context(), claims.SessionID)
	if err != nil || !live {
		return nil // Logged out or expired
	}
	return claims
}

// deny flashes an access-denied notice and bounces the browser to /login.
func deny(c *gin.Context, message string) {
	utils.SetFlash(c, message)
	c.Redirect(http.StatusFound, "/login")
	c.Abort()
}

// RequireUser admits only authenticated non-admin sessions and stashes
// the identity in the request context.
func RequireUser(sessions *auth.SessionStore, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := resolveSession(c, sessions, secret)
		if claims == nil || claims.IsAdmin {
			deny(c, "Please login as a user to access this page.")
			return
		}
		c.Set("userID", claims.UserID)       // Authenticated user id
		c.Set("username", claims.Username)   // Display name
		c.Set("sessionID", claims.SessionID) // Redis session record id
		c.Next()
	}
}

// RequireAdmin admits only authenticated admin sessions.
func RequireAdmin(sessions *auth.SessionStore, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := resolveSession(c, sessions, secret)
		if claims == nil || !claims.IsAdmin {
			deny(c, "Access denied. Admin privileges required.")
			return
		}
		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("sessionID", claims.SessionID)
		c.Next()
	}
}
