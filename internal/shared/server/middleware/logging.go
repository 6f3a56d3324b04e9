package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"mindmap-backend/internal/shared/telemetry"
)

// Context keys handlers set to enrich the request log line.
const (
	StageKey    = "mindmapStage"
	OutcomeKey  = "mindmapOutcome"
	FileExtKey  = "fileExt"
	uploadIDKey = "uploadId"
)

// Logging emits one structured log line per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		for _, key := range []string{StageKey, OutcomeKey, FileExtKey, uploadIDKey} {
			if val := c.GetString(key); val != "" {
				fields[logFieldName(key)] = val
			}
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		telemetry.Info("request.complete", fields)
	}
}

// SetUploadID records the staging id of the current upload for the request log.
func SetUploadID(c *gin.Context, id string) {
	c.Set(uploadIDKey, id)
}

func logFieldName(key string) string {
	switch key {
	case StageKey:
		return "stage"
	case OutcomeKey:
		return "outcome"
	case FileExtKey:
		return "file_ext"
	case uploadIDKey:
		return "upload_id"
	default:
		return key
	}
}
