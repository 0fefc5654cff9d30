package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/odontoware/clinic-api/pkg/auth"
)

const ContextOrganizationID = "organization_id"

type AuthMiddleware struct {
	tokens *auth.TokenService
}

func NewAuthMiddleware(tokens *auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate validates the bearer token and stores the organization id it
// carries. All tenant-scoped handlers read the organization from the
// context, never from the request payload.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "missing bearer token",
			})
			return
		}

		orgID, err := m.tokens.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "invalid token",
			})
			return
		}

		c.Set(ContextOrganizationID, orgID)
		c.Next()
	}
}

// OrganizationID extracts the authenticated tenant from the context.
func OrganizationID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextOrganizationID)
	if !ok {
		return uuid.Nil, false
	}
	orgID, ok := v.(uuid.UUID)
	return orgID, ok
}
