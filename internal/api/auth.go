package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"parking_system/internal/auth"       // Identity and session services
	"parking_system/internal/middleware" // Session cookie name
	"parking_system/internal/utils"      // Session token and flash helpers

	"github.com/gin-gonic/gin" // Gin web framework
)

// IndexHandler renders the landing page
func IndexHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{"Flash": utils.PopFlash(c)})
	}
}

// LoginPageHandler renders the login form
func LoginPageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "login.html", gin.H{"Flash": utils.PopFlash(c)})
	}
}

// LoginHandler authenticates the submitted credentials and starts a session
func LoginHandler(users *auth.Service, sessions *auth.SessionStore, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")
		user, err := users.Authenticate(c.Request.Context(), username, password)
		if err != nil {
			// Unknown user and bad password look the same to the browser
			utils.SetFlash(c, "Invalid username or password")
			c.Redirect(http.StatusFound, "/login")
			return
		}
		sid, err := sessions.Create(c.Request.Context(), user.ID)
		if err != nil {
			utils.SetFlash(c, "Login failed, please try again.")
			c.Redirect(http.StatusFound, "/login")
			return
		}
		token, err := utils.SignSession(user.ID, user.Username, user.IsAdmin, sid, secret, auth.SessionTTL)
		if err != nil {
			utils.SetFlash(c, "Login failed, please try again.")
			c.Redirect(http.StatusFound, "/login")
			return
		}
		// Session cookie lives as long as the Redis record
		c.SetCookie(middleware.SessionCookie, token, int(auth.SessionTTL.Seconds()), "/", "", false, true)
		if user.IsAdmin {
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		c.Redirect(http.StatusFound, "/user/dashboard")
	}
}

// RegisterPageHandler renders the registration form
func RegisterPageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "register.html", gin.H{"Flash": utils.PopFlash(c)})
	}
}

// RegisterHandler creates a new non-admin account
func RegisterHandler(users *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.PostForm("username")
		email := c.PostForm("email")
		password := c.PostForm("password")
		_, err := users.Register(c.Request.Context(), username, email, password)
		switch {
		case errors.Is(err, auth.ErrWeakCredential):
			utils.SetFlash(c, "Password must be at least 6 characters long")
			c.Redirect(http.StatusFound, "/register")
		case errors.Is(err, auth.ErrDuplicateIdentity):
			utils.SetFlash(c, "Username or email already exists")
			c.Redirect(http.StatusFound, "/register")
		case err != nil:
			utils.SetFlash(c, "Registration failed, please try again.")
			c.Redirect(http.StatusFound, "/register")
		default:
			utils.SetFlash(c, "Registration successful! Please login.")
			c.Redirect(http.StatusFound, "/login")
		}
	}
}

// LogoutHandler revokes the session record and clears the cookie
func LogoutHandler(sessions *auth.SessionStore, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(middleware.SessionCookie); err == nil && token != "" {
			if claims, err := utils.ParseSession(token, secret); err == nil {
				_ = sessions.Delete(c.Request.Context(), claims.SessionID) // Revoke the Redis record
			}
		}
		c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true) // Clear the cookie
		c.Redirect(http.StatusFound, "/")
	}
}
