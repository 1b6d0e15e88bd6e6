package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/MadeByJay/ai-product-search/internal/utils"
)

// Recovery turns panics into the generic 500 body. The stack goes to the log,
// never to the client.
func Recovery(log *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(log.WriterLevel(logrus.ErrorLevel), func(c *gin.Context, recovered interface{}) {
		log.WithFields(logrus.Fields{
			"panic":          recovered,
			"path":           c.Request.URL.Path,
			"correlation_id": utils.GetCorrelationIDFromContext(c),
		}).Error("Recovered from panic")
		utils.InternalErrorResponse(c, "")
	})
}
