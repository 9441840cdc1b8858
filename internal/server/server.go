// Package server exposes the façade over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agenthands/playbill/internal/config"
	"github.com/agenthands/playbill/internal/core"
	"github.com/agenthands/playbill/internal/logging"
	"github.com/agenthands/playbill/internal/metrics"
)

type Server struct {
	Playbill *core.Playbill
	Logger   *slog.Logger
	Metrics  config.MetricsConfig
}

func NewServer(p *core.Playbill, logger *slog.Logger, m config.MetricsConfig) *Server {
	return &Server{Playbill: p, Logger: logger, Metrics: m}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	if s.Metrics.Enabled {
		r.Use(metrics.Middleware())
		r.GET(s.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	s.registerRoutes(api)
	return r
}

// requestLogger attaches a request-scoped logger to the request context
// and logs one line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		logger := s.Logger.With(slog.String("request_id", requestID))
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), logger))
		c.Next()

		logger.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("route", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}
