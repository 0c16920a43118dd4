package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/K-digital-backend-bootcamp/multi-fc-chat-service/pkg/jwt"
)

const (
	UserIDKey     = "user_id"
	UsernameKey   = "username"
	NicknameKey   = "nickname"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// AuthMiddleware validates JWT tokens issued by the Multi-FC auth layer.
type AuthMiddleware struct {
	tokens *jwt.Manager
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(tokens *jwt.Manager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth returns a Gin middleware that validates JWT tokens.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing authorization header",
			})
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid authorization format",
			})
			return
		}

		claims, err := m.tokens.Validate(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
			})
			return
		}

		// Set actor info in context
		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)
		c.Set(NicknameKey, claims.Nickname)

		c.Next()
	}
}

// GetUserID extracts user ID from Gin context.
func GetUserID(c *gin.Context) string {
	if id, exists := c.Get(UserIDKey); exists {
		return id.(string)
	}
	return ""
}

// GetUsername extracts username from Gin context.
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get(UsernameKey); exists {
		return username.(string)
	}
	return ""
}

// GetNickname extracts nickname from Gin context.
func GetNickname(c *gin.Context) string {
	if nickname, exists := c.Get(NicknameKey); exists {
		return nickname.(string)
	}
	return ""
}
