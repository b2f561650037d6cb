package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/podomarket/storefront-service/internal/auth"
)

const (
	// ContextUserID is the gin context key for the authenticated user id.
	ContextUserID = "user_id"
	// ContextUserEmail is the gin context key for the authenticated email.
	ContextUserEmail = "user_email"
	// ContextUserName is the gin context key for the authenticated name.
	ContextUserName = "user_name"
)

// RequireAuth rejects requests without a valid Bearer session token and
// puts the claims on the context.
func RequireAuth(tokens *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseToken(c, tokens)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth puts claims on the context when a valid token is present
// and lets the request through either way.
func OptionalAuth(tokens *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseToken(c, tokens); ok {
			setClaims(c, claims)
		}
		c.Next()
	}
}

// UserID returns the authenticated user id from the context, or "".
func UserID(c *gin.Context) string {
	if v, exists := c.Get(ContextUserID); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func parseToken(c *gin.Context, tokens *auth.JWTService) (*auth.Claims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, false
	}
	tokenString, found := strings.CutPrefix(header, "Bearer ")
	if !found || tokenString == "" {
		return nil, false
	}
	claims, err := tokens.Validate(tokenString)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUserEmail, claims.Email)
	c.Set(ContextUserName, claims.Name)
}
