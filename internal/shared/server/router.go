package server

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"mindmap-backend/internal/mindmap"
	"mindmap-backend/internal/services/health"
	"mindmap-backend/internal/shared/config"
	"mindmap-backend/internal/shared/metrics"
	"mindmap-backend/internal/shared/server/middleware"
	"mindmap-backend/internal/shared/server/respond"
	"mindmap-backend/internal/shared/telemetry"
)

// RouterDeps holds handler dependencies for routing.
type RouterDeps struct {
	Config         config.Config
	Templates      *template.Template
	Health         *health.Service
	MindmapHandler *mindmap.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
	)
	if deps.Config.OTelEnabled {
		r.Use(otelgin.Middleware(telemetry.ServiceName))
	}
	if deps.Templates != nil {
		r.SetHTMLTemplate(deps.Templates)
	}

	r.GET("/healthz", func(c *gin.Context) {
		if deps.Health == nil {
			respond.OK(c, gin.H{"ok": true})
			return
		}
		status, ok := deps.Health.Status()
		if !ok {
			respond.JSON(c, http.StatusServiceUnavailable, status)
			return
		}
		respond.OK(c, status)
	})
	r.GET("/metrics", metrics.Handler())

	if deps.MindmapHandler != nil {
		pages := r.Group("/", middleware.MaxBodySize(deps.Config.MaxUploadBytes))
		deps.MindmapHandler.RegisterRoutes(pages)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
