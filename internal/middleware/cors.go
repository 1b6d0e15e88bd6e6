// internal/middleware/cors.go
package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/MadeByJay/ai-product-search/internal/utils"
)

func CORS(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"X-Requested-With",
			HeaderCorrelationID,
			utils.HeaderInternalSignature,
			utils.HeaderInternalTimestamp,
			utils.HeaderInternalUserID,
		},
		ExposeHeaders:    []string{HeaderCorrelationID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
