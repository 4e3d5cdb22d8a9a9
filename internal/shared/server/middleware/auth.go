package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"osapio-backend/internal/identity"
	"osapio-backend/internal/shared/server/respond"
)

const (
	userIDKey = "userId"
	claimsKey = "identityClaims"
)

// RequireAuth rejects requests without a valid bearer token before any
// handler runs, and stores the verified claims in context.
func RequireAuth(v identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing bearer token", nil)
			return
		}

		claims, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			respond.Err(c, err)
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches claims when a valid token is present and otherwise
// lets the request through anonymously.
func OptionalAuth(v identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := v.Verify(c.Request.Context(), token); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func setClaims(c *gin.Context, claims identity.Claims) {
	c.Set(userIDKey, claims.UID)
	c.Set(claimsKey, claims)
}

// UserIDFromContext fetches the subject id set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userIDKey)
}

// ClaimsFromContext fetches the verified claims, if any.
func ClaimsFromContext(c *gin.Context) (identity.Claims, bool) {
	if c == nil {
		return identity.Claims{}, false
	}
	val, ok := c.Get(claimsKey)
	if !ok {
		return identity.Claims{}, false
	}
	claims, ok := val.(identity.Claims)
	return claims, ok
}
