// internal/middleware/logging.go
package middleware

import (
	"bytes"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/MadeByJay/ai-product-search/internal/utils"
)

const (
	HeaderCorrelationID = "X-Correlation-Id"

	maxLoggedBody = 64 * 1024
	rawBodyKey    = "raw_body"
)

// CorrelationID reuses the caller's x-correlation-id or mints one, echoes it
// on the response, and stores it for logs and error bodies.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderCorrelationID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(utils.CorrelationIDKey, id)
		c.Header(HeaderCorrelationID, id)
		c.Next()
	}
}

// readBody buffers the request body once per request and puts it back so
// handlers can still bind it.
func readBody(c *gin.Context) []byte {
	if cached, ok := c.Get(rawBodyKey); ok {
		return cached.([]byte)
	}

	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}
	c.Set(rawBodyKey, body)
	return body
}

// RequestLogger writes one structured line per request. Failed requests also
// carry the redacted body and headers.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var body []byte
		if c.Request.Method != "GET" && c.Request.ContentLength >= 0 && c.Request.ContentLength <= maxLoggedBody {
			body = readBody(c)
		}

		c.Next()

		status := c.Writer.Status()
		fields := logrus.Fields{
			"method":         c.Request.Method,
			"path":           c.Request.URL.Path,
			"route":          c.FullPath(),
			"status":         status,
			"duration":       time.Since(start).Milliseconds(),
			"ip":             c.ClientIP(),
			"user_agent":     c.Request.UserAgent(),
			"correlation_id": utils.GetCorrelationIDFromContext(c),
		}
		if userID, ok := utils.GetUserIDFromContext(c); ok {
			fields["user_id"] = userID
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		entry := log.WithFields(fields)
		switch {
		case status >= 500:
			entry.WithFields(logrus.Fields{
				"body":    utils.RedactBody(body),
				"headers": utils.RedactHeaders(c.Request.Header),
			}).Error("Request failed")
		case status >= 400:
			entry.WithField("body", utils.RedactBody(body)).Warn("Request rejected")
		default:
			entry.Info("Request processed")
		}
	}
}
