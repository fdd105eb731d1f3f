package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/patelvedant312/team-matching/internal/http/response"
)

// ContextOrgIDKey: ключ организации в gin.Context.
const ContextOrgIDKey = "orgID"

// TokenParser проверяет access токен и возвращает организацию.
type TokenParser interface {
	Parse(token string) (uuid.UUID, error)
}

// AuthMiddleware проверяет JWT access токен.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			response.Unauthorized(c, "требуется авторизация")
			return
		}

		orgID, err := tokens.Parse(strings.TrimPrefix(auth, "Bearer "))
		if err != nil || orgID == uuid.Nil {
			response.Unauthorized(c, "токен невалиден")
			return
		}

		c.Set(ContextOrgIDKey, orgID)
		c.Next()
	}
}

// OrgID возвращает организацию, установленную AuthMiddleware.
func OrgID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(ContextOrgIDKey)
	if !exists {
		return uuid.Nil, false
	}
	orgID, ok := raw.(uuid.UUID)
	return orgID, ok && orgID != uuid.Nil
}
