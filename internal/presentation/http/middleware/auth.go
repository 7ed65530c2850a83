package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/billing-api/internal/presentation/http/dto/response"
	"github.com/sangkips/billing-api/pkg/apperror"
	"github.com/sangkips/billing-api/pkg/utils"
)

const (
	subjectKey = "token_subject"
	emailKey   = "token_email"
)

// AuthMiddleware creates a JWT authentication middleware for administrator routes
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateToken(parts[1])
		if err != nil {
			_ = c.Error(err)
			response.Error(c, apperror.ErrInvalidToken)
			c.Abort()
			return
		}

		c.Set(subjectKey, claims.Subject)
		c.Set(emailKey, claims.Email)

		c.Next()
	}
}

// GetSubject returns the authenticated token subject, or "" on public routes
func GetSubject(c *gin.Context) string {
	return c.GetString(subjectKey)
}
