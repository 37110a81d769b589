package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/httpx"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/metrics"
)

// Registrar is implemented by every resource handler.
type Registrar interface {
	Register(rg *gin.RouterGroup)
}

// ReadyFunc reports whether a backing store can serve traffic.
type ReadyFunc func(ctx context.Context) error

type RouterConfig struct {
	Logger       logger.ZapLogger
	Metrics      *metrics.Metrics
	TenantHeader string
	Ready        ReadyFunc
	Handlers     []Registrar
}

// NewRouter assembles the HTTP surface: probes and metrics at the root,
// tenant scoped resources under /v1.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), accessLog(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		if cfg.Ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := cfg.Ready(ctx); err != nil {
				cfg.Logger.Warn("readiness check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.NoRoute(func(c *gin.Context) {
		httpx.WriteError(c, apperr.NotFound("route %s %s", c.Request.Method, c.Request.URL.Path))
	})

	v1 := r.Group("/v1", auth.RequireOrganization(cfg.TenantHeader))
	for _, h := range cfg.Handlers {
		h.Register(v1)
	}
	return r
}

func accessLog(log logger.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if orgID := auth.GetOrganizationID(c.Request.Context()); orgID != "" {
			fields = append(fields, zap.String("organization_id", orgID))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request failed", fields...)
			return
		}
		log.Info("request served", fields...)
	}
}
