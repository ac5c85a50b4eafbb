package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/storehouse-api/internal/models"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
	"github.com/noah-isme/storehouse-api/pkg/response"
)

// ContextAdminKey is the gin context key storing the admin session claims.
const ContextAdminKey = "currentAdmin"

// TokenValidator verifies admin session tokens.
type TokenValidator interface {
	ValidateToken(token string) (*models.AdminClaims, error)
}

// JWT protects routes by requiring a valid admin session token.
func JWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextAdminKey, claims)
		c.Next()
	}
}

// AdminFromContext returns the claims attached by JWT, or nil.
func AdminFromContext(c *gin.Context) *models.AdminClaims {
	value, exists := c.Get(ContextAdminKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.AdminClaims)
	if !ok {
		return nil
	}
	return claims
}
