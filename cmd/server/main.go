package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/telllate/snipcast/internal/config"
	"github.com/telllate/snipcast/internal/domain"
	"github.com/telllate/snipcast/internal/evaluator"
	"github.com/telllate/snipcast/internal/handler"
	"github.com/telllate/snipcast/internal/logging"
	"github.com/telllate/snipcast/internal/redis"
	"github.com/telllate/snipcast/internal/registry"
	"github.com/telllate/snipcast/internal/server"
	"github.com/telllate/snipcast/internal/websocket"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server, hub *websocket.Hub) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		hub.Stop()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	// The registry is Redis-backed when REDIS_URL is set, in-memory otherwise.
	var (
		connections domain.ConnectionRegistry
		redisClient *goredis.Client
	)
	if cfg.RedisURL != "" {
		redisClient = setupRedis(context.Background(), cfg)
		defer func() { _ = redisClient.Close() }()
		connections = redis.NewRegistry(redisClient, cfg.ConnectionsKey)
	} else {
		slog.Warn("REDIS_URL not set, using in-memory connection registry")
		connections = registry.NewMemory()
	}

	hub := websocket.NewHub(clock)

	// Local deployment delivers through the hub regardless of routing metadata.
	sinks := func(string, string) domain.DeliverySink { return hub }

	var invoker evaluator.Invoker
	if cfg.EvaluationEnabled() {
		invoker = evaluator.NewClient(cfg.ModelEndpoint, cfg.ModelID, cfg.ModelMaxTokens, cfg.ModelTemperature)
		slog.Info("Model evaluation enabled", "model_id", cfg.ModelID)
	}

	handlers := handler.NewHandlers(connections, sinks, invoker, clock)

	// Pass nil explicitly to avoid a typed-nil interface
	var srv *server.Server
	if redisClient != nil {
		srv = server.NewServer(cfg, handlers, hub, redisClient)
	} else {
		srv = server.NewServer(cfg, handlers, hub, nil)
	}

	done := runGracefulShutdown(srv, hub)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
	slog.Info("Shutdown complete")
}
