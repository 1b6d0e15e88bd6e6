// internal/middleware/internal_auth.go
package middleware

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/MadeByJay/ai-product-search/internal/config"
	"github.com/MadeByJay/ai-product-search/internal/utils"
)

// InternalAuth admits only requests signed by the trusted frontend proxy and
// pins the route's :userId to the signed user.
func InternalAuth(cfg *config.Config, log *logrus.Logger) gin.HandlerFunc {
	secret := cfg.Internal.SharedSecret
	configured := cfg.InternalSigningEnabled()
	if !configured && !cfg.IsProduction() {
		log.Warn("INTERNAL_SHARED_SECRET unset or too short; internal signature checks are disabled outside production")
	}

	return func(c *gin.Context) {
		if !configured {
			if cfg.IsProduction() {
				utils.UnauthorizedResponse(c, "Internal signature not configured")
				return
			}
			if routeUserID := c.Param("userId"); routeUserID != "" {
				c.Set(utils.UserIDKey, routeUserID)
			}
			c.Next()
			return
		}

		body := readBody(c)
		userID, err := utils.VerifyInternalSignature(
			secret,
			cfg.Internal.MaxSkew,
			c.Request.Method,
			c.Request.URL.RequestURI(),
			c.Request.Header,
			body,
			time.Now(),
		)
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"path":           c.Request.URL.Path,
				"correlation_id": utils.GetCorrelationIDFromContext(c),
			}).Warn("Internal signature rejected")
			utils.UnauthorizedResponse(c, signatureMessage(err))
			return
		}

		if routeUserID := c.Param("userId"); routeUserID != "" && routeUserID != userID {
			utils.ForbiddenResponse(c, "User mismatch")
			return
		}

		c.Set(utils.UserIDKey, userID)
		c.Next()
	}
}

func signatureMessage(err error) string {
	switch {
	case errors.Is(err, utils.ErrMissingSignature):
		return "Missing internal signature headers"
	case errors.Is(err, utils.ErrInvalidTimestamp):
		return "Invalid internal timestamp"
	case errors.Is(err, utils.ErrStaleTimestamp):
		return "Stale or future-dated internal request"
	default:
		return "Invalid internal signature"
	}
}
