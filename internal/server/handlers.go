package server

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/telllate/snipcast/internal/handler"
)

const selfHostedStage = "$default"

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Clients connect from arbitrary origins
	},
}

// handleWebSocket upgrades the connection, registers it with the hub and the
// connection registry, then pumps inbound frames through the broadcast
// handler until the client hangs up.
func (s *Server) handleWebSocket(c echo.Context) error {
	ctx := c.Request().Context()
	connectionID := uuid.NewString()

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upgrade WebSocket", "error", err)
		return nil
	}

	if err := s.hub.Register(connectionID, conn); err != nil {
		slog.ErrorContext(ctx, "Failed to register with hub", "connection_id", connectionID, "error", err)
		// Hub closed the connection already
		return nil
	}

	requestContext := handler.RequestContext{
		ConnectionID: connectionID,
		DomainName:   c.Request().Host,
		Stage:        selfHostedStage,
	}

	if resp := s.handlers.Connect(ctx, handler.ConnectEvent{RequestContext: requestContext}); resp.StatusCode != http.StatusOK {
		slog.ErrorContext(ctx, "Connect handler rejected connection", "connection_id", connectionID, "status", resp.StatusCode)
		s.hub.Unregister(connectionID)
		return nil
	}

	// Read pump: every inbound frame is a broadcast request
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		resp := s.handlers.Broadcast(ctx, handler.MessageEvent{
			RequestContext: requestContext,
			Body:           string(data),
		})
		if resp.StatusCode != http.StatusOK {
			slog.WarnContext(ctx, "Broadcast rejected", "connection_id", connectionID, "status", resp.StatusCode)
		}
	}

	s.hub.Unregister(connectionID)
	s.handlers.Disconnect(ctx, handler.DisconnectEvent{RequestContext: requestContext})

	return nil
}

func (s *Server) handleBroadcast(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
	}

	resp := s.handlers.Broadcast(c.Request().Context(), handler.MessageEvent{
		RequestContext: handler.RequestContext{
			ConnectionID: "http",
			DomainName:   c.Request().Host,
			Stage:        selfHostedStage,
		},
		Body: string(body),
	})
	return c.JSONBlob(resp.StatusCode, []byte(resp.Body))
}

func (s *Server) handleEvaluate(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
	}

	resp := s.handlers.Evaluate(c.Request().Context(), handler.EvaluateEvent{Body: string(body)})
	return c.JSONBlob(resp.StatusCode, []byte(resp.Body))
}
