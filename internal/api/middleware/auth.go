package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/reelhaven/reelhaven/internal/services"
)

// Context keys populated by Auth for downstream handlers.
const (
	UserIDKey   = "userID"
	UsernameKey = "username"
	IsAdminKey  = "isAdmin"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "session_token"

// ExtractToken pulls the session token from the cookie or, failing that,
// a bearer Authorization header.
func ExtractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// Auth validates the session and loads the user's identity into the context.
// An absent or invalid session yields 401 with a login redirect hint, never
// a hard error. Registered after the access gate: network identity is
// settled before authentication is considered.
func Auth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			c.Header("X-Auth-Redirect", "/login")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			c.Header("X-Auth-Redirect", "/login")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)
		c.Set(IsAdminKey, claims.IsAdmin)
		c.Next()
	}
}

// RequireAdmin gates admin-only operations. Responds 403, distinct from the
// 401 an unauthenticated request gets from Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, exists := c.Get(IsAdminKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if admin, ok := isAdmin.(bool); !ok || !admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin privileges required"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user's ID from the context.
func UserID(c *gin.Context) uint {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
