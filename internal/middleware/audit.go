// internal/middleware/audit.go
package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MadeByJay/ai-product-search/internal/background"
	"github.com/MadeByJay/ai-product-search/internal/models"
	"github.com/MadeByJay/ai-product-search/internal/utils"
)

type AuditAppender interface {
	Append(ctx context.Context, userID *uuid.UUID, action string, details models.JSONB) error
}

// AuditMutations records successful profile writes off the request path.
func AuditMutations(audit AuditAppender, runner *background.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == "GET" {
			c.Next()
			return
		}

		body := readBody(c)
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}
		action := auditAction(c.FullPath())
		if action == "" {
			return
		}

		var userUUID *uuid.UUID
		if userID, ok := utils.GetUserIDFromContext(c); ok {
			if parsed, err := uuid.Parse(userID); err == nil {
				userUUID = &parsed
			}
		}

		details := models.JSONB{
			"method":         c.Request.Method,
			"path":           c.Request.URL.Path,
			"status":         c.Writer.Status(),
			"correlation_id": utils.GetCorrelationIDFromContext(c),
		}
		if redacted := utils.RedactBody(body); redacted != nil {
			details["request"] = redacted
		}

		runner.Submit("audit_"+action, func(ctx context.Context) error {
			return audit.Append(ctx, userUUID, action, details)
		})
	}
}

func auditAction(route string) string {
	switch {
	case strings.HasSuffix(route, "/saved"):
		return models.AuditActionSavedToggled
	case strings.HasSuffix(route, "/preferences"):
		return models.AuditActionPreferencesUpdated
	default:
		return ""
	}
}
