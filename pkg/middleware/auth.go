package middleware

import (
	"crypto/subtle"
	"strings"

	"storynest/pkg/apperr"
	"storynest/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID    = "user_id"
	ContextUserRole  = "user_role"
	ContextUserEmail = "user_email"
	ContextSessionID = "session_id"

	APIKeyHeader = "apikey"
)

func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			apperr.Abort(c, apperr.KindUnauthorized, "Authorization header required")
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			apperr.Abort(c, apperr.KindUnauthorized, "Invalid or expired token")
			return
		}

		SetClaims(c, claims)
		c.Next()
	}
}

// SetClaims stores the identity carried by claims on the request context.
func SetClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUserRole, claims.Role)
	c.Set(ContextUserEmail, claims.Email)
	c.Set(ContextSessionID, claims.SessionID)
}

func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// APIKeyMiddleware rejects requests that do not present the public API key,
// either in the apikey header or, for websocket upgrades, the apikey query
// parameter.
func APIKeyMiddleware(apiKey string) gin.HandlerFunc {
	expected := []byte(apiKey)
	return func(c *gin.Context) {
		got := c.GetHeader(APIKeyHeader)
		if got == "" {
			got = c.Query(APIKeyHeader)
		}
		if got == "" || subtle.ConstantTimeCompare([]byte(got), expected) != 1 {
			apperr.Abort(c, apperr.KindUnauthorized, "Invalid API key")
			return
		}
		c.Next()
	}
}

// RequireRoles must run after AuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := allowed[c.GetString(ContextUserRole)]; !ok {
			apperr.Abort(c, apperr.KindForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}
