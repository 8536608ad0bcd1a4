package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// SessionChecker reports whether a session id is still the live session.
type SessionChecker interface {
	ActiveSession(id string) bool
}

// SessionAuth enforces bearer JWT tokens signed with HS256 whose session is still live.
func SessionAuth(signingKey, issuer string, sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, status, msg := authenticate(c, signingKey, issuer, sessions)
		if status != 0 {
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// OptionalSession attaches claims when a valid live token is present and
// lets the request through either way.
func OptionalSession(signingKey, issuer string, sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, status, _ := authenticate(c, signingKey, issuer, sessions); status == 0 {
			c.Set(claimsKey, claims)
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by the middleware.
func ClaimsFrom(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}

func authenticate(c *gin.Context, signingKey, issuer string, sessions SessionChecker) (Claims, int, string) {
	authz := c.GetHeader("Authorization")
	if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return Claims{}, http.StatusUnauthorized, "missing bearer token"
	}
	tokenStr := strings.TrimSpace(authz[len("bearer "):])
	claims, err := Parse(tokenStr, signingKey, issuer)
	if err != nil {
		return Claims{}, http.StatusUnauthorized, "invalid token"
	}
	if !sessions.ActiveSession(claims.SessionID) {
		return Claims{}, http.StatusUnauthorized, "session ended"
	}
	return claims, 0, ""
}
