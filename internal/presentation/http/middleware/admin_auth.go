package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/security"
)

// AdminSubjectKey is the gin context key holding the authenticated subject.
const AdminSubjectKey = "adminSubject"

// AdminAuth requires a bearer token signed with secret and carrying the admin
// role.
func AdminAuth(secret string, logger *logging.ChanneledLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin bearer token required"})
			return
		}

		claims, err := security.ValidateAdminToken(strings.TrimSpace(token), secret)
		if err != nil {
			logger.HTTP().Warn("Admin token rejected", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
			return
		}

		if subject, _ := claims["sub"].(string); subject != "" {
			c.Set(AdminSubjectKey, subject)
		}
		c.Next()
	}
}
