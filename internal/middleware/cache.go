package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/MadeByJay/ai-product-search/internal/cache"
)

const (
	HeaderCache = "X-Cache"

	cacheOpTimeout = 200 * time.Millisecond
)

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCaptureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CacheResponse serves successful JSON GET responses from store for ttl,
// keyed by method and full URL. Store errors degrade to a miss.
func CacheResponse(store cache.Store, ttl time.Duration, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || store == nil || ttl <= 0 {
			c.Next()
			return
		}

		key := c.Request.Method + " " + c.Request.URL.RequestURI()

		ctx, cancel := context.WithTimeout(c.Request.Context(), cacheOpTimeout)
		cached, ok, err := store.Get(ctx, key)
		cancel()
		if err != nil {
			log.WithError(err).WithField("key", key).Warn("Cache read failed")
		}
		if ok {
			c.Header(HeaderCache, "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			c.Abort()
			return
		}

		w := &bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w
		c.Header(HeaderCache, "MISS")
		c.Next()

		if w.Status() != http.StatusOK {
			return
		}

		ctx, cancel = context.WithTimeout(context.Background(), cacheOpTimeout)
		defer cancel()
		if err := store.Set(ctx, key, w.body.Bytes(), ttl); err != nil {
			log.WithError(err).WithField("key", key).Warn("Cache write failed")
		}
	}
}
