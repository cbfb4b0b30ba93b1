package utils

import (
	"net/url" // Cookie-safe encoding

	"github.com/gin-gonic/gin" // Gin web framework
)

// flashCookie carries a one-shot notice across a redirect.
const flashCookie = "flash"

// SetFlash stores a user-visible notice shown on the next rendered page.
func SetFlash(c *gin.Context, message string) {
	c.SetCookie(flashCookie, url.QueryEscape(message), 60, "/", "", false, true)
}

// PopFlash returns the pending notice, if any, and clears it.
func PopFlash(c *gin.Context) string {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return ""
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true) // Clear after read
	msg, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return msg
}
