// Package api assembles the HTTP router: middleware, health and metrics
// endpoints, and the versioned REST groups.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/symposium-labs/engage/internal/config"
	"github.com/symposium-labs/engage/pkg/logger"
)

// RouteRegistrar mounts handlers on the /api/v1 group.
type RouteRegistrar interface {
	RegisterRoutes(api *gin.RouterGroup)
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker func(ctx context.Context) error

// Router bundles what NewRouter needs.
type Router struct {
	Config   *config.Config
	Log      *logger.Logger
	Health   map[string]HealthChecker
	Handlers []RouteRegistrar
}

// NewRouter builds the gin engine.
func NewRouter(r Router) *gin.Engine {
	if !r.Config.Server.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), RequestLogger(r.Log))

	engine.GET("/health", healthHandler(r.Health))

	if r.Config.Metrics.Prometheus.Enabled {
		engine.GET(r.Config.Metrics.Prometheus.Path, gin.WrapH(promhttp.Handler()))
	}

	v1 := engine.Group("/api/v1")
	for _, h := range r.Handlers {
		h.RegisterRoutes(v1)
	}

	return engine
}

// RequestLogger logs one structured line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func healthHandler(checks map[string]HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		components := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				components[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			components[name] = "ok"
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "unhealthy"
		}

		c.JSON(status, gin.H{
			"status":     state,
			"components": components,
			"timestamp":  time.Now().UTC(),
		})
	}
}
