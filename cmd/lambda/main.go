package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jonboulle/clockwork"

	"github.com/telllate/snipcast/internal/config"
	"github.com/telllate/snipcast/internal/domain"
	"github.com/telllate/snipcast/internal/evaluator"
	"github.com/telllate/snipcast/internal/handler"
	"github.com/telllate/snipcast/internal/logging"
	"github.com/telllate/snipcast/internal/redis"
	"github.com/telllate/snipcast/internal/sink"
)

func requestContext(rc events.APIGatewayWebsocketProxyRequestContext) handler.RequestContext {
	return handler.RequestContext{
		ConnectionID: rc.ConnectionID,
		DomainName:   rc.DomainName,
		Stage:        rc.Stage,
	}
}

func toProxyResponse(resp handler.Response) (events.APIGatewayProxyResponse, error) {
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	if cfg.RedisURL == "" {
		slog.Error("REDIS_URL is required in lambda mode")
		os.Exit(1)
	}
	redisClient, err := redis.NewClient(context.Background(), cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	connections := redis.NewRegistry(redisClient, cfg.ConnectionsKey)

	// Each broadcast builds a sink against the gateway that carried it.
	sinks := func(domainName, stage string) domain.DeliverySink {
		return sink.NewManagement(domainName, stage)
	}

	var invoker evaluator.Invoker
	if cfg.EvaluationEnabled() {
		invoker = evaluator.NewClient(cfg.ModelEndpoint, cfg.ModelID, cfg.ModelMaxTokens, cfg.ModelTemperature)
	}

	handlers := handler.NewHandlers(connections, sinks, invoker, clockwork.NewRealClock())

	// One binary, four functions: HANDLER selects which route this
	// deployment serves.
	route := os.Getenv("HANDLER")
	switch route {
	case "connect":
		lambda.Start(func(ctx context.Context, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
			resp := handlers.Connect(ctx, handler.ConnectEvent{RequestContext: requestContext(req.RequestContext)})
			return toProxyResponse(resp)
		})
	case "disconnect":
		lambda.Start(func(ctx context.Context, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
			resp := handlers.Disconnect(ctx, handler.DisconnectEvent{RequestContext: requestContext(req.RequestContext)})
			return toProxyResponse(resp)
		})
	case "broadcast":
		lambda.Start(func(ctx context.Context, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
			resp := handlers.Broadcast(ctx, handler.MessageEvent{
				RequestContext: requestContext(req.RequestContext),
				Body:           req.Body,
			})
			return toProxyResponse(resp)
		})
	case "evaluate":
		lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
			resp := handlers.Evaluate(ctx, handler.EvaluateEvent{Body: req.Body})
			return toProxyResponse(resp)
		})
	default:
		slog.Error("HANDLER must be one of connect, disconnect, broadcast, evaluate", "handler", route)
		os.Exit(1)
	}
}
