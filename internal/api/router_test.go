//nolint:noctx // Test file uses http.NewRequest for simplicity
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symposium-labs/engage/internal/config"
	"github.com/symposium-labs/engage/pkg/logger"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Environment: "development"},
		Metrics: config.MetricsConfig{Prometheus: config.PrometheusConfig{
			Enabled: true,
			Path:    "/metrics",
		}},
	}
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNewRouter_HealthAndRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(Router{
		Config: testConfig(),
		Log:    logger.NewNop(),
		Health: map[string]HealthChecker{
			"database": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return nil },
		},
		Handlers: []RouteRegistrar{pingHandler{}},
	})

	w := get(router, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, map[string]any{"database": "ok", "redis": "ok"}, body["components"])

	w = get(router, "/api/v1/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	w = get(router, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "go_goroutines"))
}

func TestNewRouter_Unhealthy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(Router{
		Config: testConfig(),
		Log:    logger.NewNop(),
		Health: map[string]HealthChecker{
			"database": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		},
	})

	w := get(router, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "connection refused", body["components"].(map[string]any)["redis"])
}

func TestNewRouter_MetricsDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.Metrics.Prometheus.Enabled = false

	router := NewRouter(Router{Config: cfg, Log: logger.NewNop()})

	w := get(router, "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewRouter_GinMode(t *testing.T) {
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	tests := []struct {
		environment string
		want        string
	}{
		{"development", gin.TestMode},
		{"staging", gin.ReleaseMode},
		{"production", gin.ReleaseMode},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			cfg := testConfig()
			cfg.Server.Environment = tt.environment

			NewRouter(Router{Config: cfg, Log: logger.NewNop()})
			assert.Equal(t, tt.want, gin.Mode())
		})
	}
}
