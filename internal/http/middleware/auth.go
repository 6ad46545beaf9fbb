// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides bearer-token authentication and role gating. Token
// verification is delegated to a TokenParser (implemented by the auth
// service); middleware only extracts the header, stashes the verified
// identity in the Gin context, and aborts unauthenticated or under-privileged
// requests with the standard error envelope.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/civireport/go-civic-backend/internal/services"
)

// Context keys under which the verified identity is stored.
const (
	ctxKeyUserID   = "userID"
	ctxKeyUserRole = "userRole"
)

// TokenParser verifies a credential token and returns the identity it
// carries. Implementations must return services.ErrInvalidToken for any
// missing, malformed, or expired token.
type TokenParser interface {
	ParseToken(token string) (services.Identity, error)
}

// RequireAuth authenticates the request via the Authorization header
// ("Bearer <token>"). On success it stores userID and userRole in the
// context; otherwise it aborts with 401.
func RequireAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "unauthorized",
				"message": "missing bearer token",
			})
			return
		}

		id, err := parser.ParseToken(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "unauthorized",
				"message": "invalid or expired token",
			})
			return
		}

		c.Set(ctxKeyUserID, id.UserID)
		c.Set(ctxKeyUserRole, id.Role)
		c.Next()
	}
}

// RequireRole gates a route to the given roles. It must run after
// RequireAuth; a request whose role is not in the allowlist is aborted
// with 403.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role, _ := c.Get(ctxKeyUserRole)
		s, _ := role.(string)
		if _, ok := allowed[s]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "forbidden",
				"message": "insufficient role",
			})
			return
		}
		c.Next()
	}
}
