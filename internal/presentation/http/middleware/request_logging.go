package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/performance"
)

// RequestLogger logs every request on the http channel and records a
// performance marker per route.
func RequestLogger(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		marker := perfTracker.StartOperation("http_request", c.Request.Method+" "+route)
		defer perfTracker.CompleteOperation(marker)

		c.Next()

		status := c.Writer.Status()
		marker.AddMetadata("status", status)
		if status >= 500 {
			marker.SetError(fmt.Errorf("status %d", status))
		} else {
			marker.SetSuccess(true)
		}

		log := logger.HTTP().Info
		if status >= 500 {
			log = logger.HTTP().Error
		} else if status >= 400 {
			log = logger.HTTP().Warn
		}
		log("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"clientIp", c.ClientIP(),
			"duration", time.Since(start),
		)
	}
}
