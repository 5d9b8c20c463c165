package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// WebSocket clients connect here and receive every broadcast
	s.echo.GET("/ws", s.handleWebSocket)

	// HTTP ingestion path for broadcasts
	s.echo.POST("/broadcast", s.handleBroadcast)

	// Model evaluation (only when an endpoint is configured)
	if s.config.EvaluationEnabled() {
		s.echo.POST("/evaluate", s.handleEvaluate)
	}
}
