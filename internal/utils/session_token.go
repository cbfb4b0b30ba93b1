package utils

import (
	"time" // Token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// SessionClaims is the signed payload carried in the session cookie. The
// Redis session record (looked up via SessionID) stays authoritative for
// liveness; the claims only spare a user lookup per request.
type SessionClaims struct {
	UserID               uint   `json:"user_id"`    // Authenticated user id
	Username             string `json:"username"`   // Display name
	IsAdmin              bool   `json:"is_admin"`   // Admin flag
	SessionID            string `json:"session_id"` // Redis session record id
	jwt.RegisteredClaims        // Standard JWT claims
}

// SignSession creates the signed cookie value for a session.
func SignSession(userID uint, username string, isAdmin bool, sessionID, secret string, ttl time.Duration) (string, error) {
	claims := SessionClaims{
		UserID:    userID,
		Username:  username,
		IsAdmin:   isAdmin,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)), // Matches the Redis TTL
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSession parses and validates a session cookie value.
func ParseSession(tokenStr, secret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Secret key for validation
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
