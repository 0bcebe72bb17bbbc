package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "finova/internal/errors"
	"finova/internal/logger"
)

// PipelineAuthMiddleware guards the scheduler endpoints (month reconcile,
// weekly advice) with the X-API-Key header. Rejections are logged with the
// job path so a misconfigured scheduler shows up in the worker logs.
func PipelineAuthMiddleware(apiKey string) gin.HandlerFunc {
	log := logger.Named("pipeline")
	return func(c *gin.Context) {
		if apiKey == "" {
			log.Warnw("pipeline job rejected", "path", c.FullPath(), "reason", "PIPELINE_API_KEY unset")
			abortWithError(c, apperrors.ErrPipelineNotConfigured)
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			reason := "wrong key"
			if key == "" {
				reason = "missing key"
			}
			log.Warnw("pipeline job rejected", "path", c.FullPath(), "reason", reason, "client_ip", c.ClientIP())
			abortWithError(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Next()
	}
}
