package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/telllate/snipcast/internal/config"
	"github.com/telllate/snipcast/internal/correlation"
	"github.com/telllate/snipcast/internal/handler"
	"github.com/telllate/snipcast/internal/websocket"
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	handlers  *handler.Handlers
	hub       *websocket.Hub
	backend   redisHealthChecker
	startTime time.Time
}

func NewServer(cfg *config.Config, handlers *handler.Handlers, hub *websocket.Hub, backend redisHealthChecker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(correlationMiddleware)

	srv := &Server{
		echo:      e,
		config:    cfg,
		handlers:  handlers,
		hub:       hub,
		backend:   backend,
		startTime: time.Now(),
	}

	srv.registerRoutes()

	return srv
}

// correlationMiddleware tags the request context so every log line emitted
// while serving it carries the same correlation id.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := correlation.WithID(c.Request().Context(), correlation.NewID())
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
