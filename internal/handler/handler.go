package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"

	"github.com/telllate/snipcast/internal/domain"
	"github.com/telllate/snipcast/internal/errors"
	"github.com/telllate/snipcast/internal/evaluator"
)

// RequestContext carries the transport routing metadata attached to every
// gateway event.
type RequestContext struct {
	ConnectionID string `json:"connectionId"`
	DomainName   string `json:"domainName"`
	Stage        string `json:"stage"`
}

// ConnectEvent signals that a client opened a connection.
type ConnectEvent struct {
	RequestContext RequestContext `json:"requestContext"`
}

// DisconnectEvent signals that a client closed a connection.
type DisconnectEvent struct {
	RequestContext RequestContext `json:"requestContext"`
}

// MessageEvent carries an inbound message to broadcast. Body is the raw JSON
// text of a BroadcastMessage.
type MessageEvent struct {
	RequestContext RequestContext `json:"requestContext"`
	Body           string         `json:"body"`
}

// EvaluateEvent carries an evaluation request. Body is the raw JSON text of
// an evaluator.Request.
type EvaluateEvent struct {
	Body string `json:"body"`
}

// Response is the gateway-shaped handler result.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// SinkFactory builds the delivery sink bound to a message event's routing
// metadata.
type SinkFactory func(domainName, stage string) domain.DeliverySink

// Handlers holds the shared dependencies of all gateway handlers. The
// registry and model client are constructed once per process and injected,
// never reached as ambient globals, so tests can substitute fakes.
type Handlers struct {
	registry domain.ConnectionRegistry
	sinks    SinkFactory
	invoker  evaluator.Invoker
	clock    clockwork.Clock
}

// NewHandlers wires the handler set. invoker may be nil when the evaluation
// path is not configured.
func NewHandlers(registry domain.ConnectionRegistry, sinks SinkFactory, invoker evaluator.Invoker, clock clockwork.Clock) *Handlers {
	return &Handlers{
		registry: registry,
		sinks:    sinks,
		invoker:  invoker,
		clock:    clock,
	}
}

// Connect inserts a registry record for the new connection. The record's
// connectedAt is set here, once, and never mutated.
func (h *Handlers) Connect(ctx context.Context, event ConnectEvent) Response {
	connectionID := event.RequestContext.ConnectionID
	if connectionID == "" {
		return errorResponse(errors.InputParseError("missing connectionId", nil))
	}

	connectedAt := h.clock.Now().UTC()
	if err := h.registry.Put(ctx, connectionID, connectedAt); err != nil {
		slog.ErrorContext(ctx, "Failed to store connection", "connection_id", connectionID, "error", err)
		return Response{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"message":"Failed to Connect"}`,
		}
	}

	slog.InfoContext(ctx, "Connection registered", "connection_id", connectionID)
	return jsonResponse(http.StatusOK, domain.ConnectionRecord{
		ConnectionID: connectionID,
		ConnectedAt:  connectedAt,
	})
}

// Disconnect removes the connection's registry record. Best-effort: a failed
// delete leaves a stale record that a later broadcast discovers and prunes.
func (h *Handlers) Disconnect(ctx context.Context, event DisconnectEvent) Response {
	connectionID := event.RequestContext.ConnectionID
	if connectionID == "" {
		return errorResponse(errors.InputParseError("missing connectionId", nil))
	}

	if err := h.registry.Delete(ctx, connectionID); err != nil {
		slog.ErrorContext(ctx, "Failed to delete connection", "connection_id", connectionID, "error", err)
		return errorResponse(errors.AsStructuredError(err))
	}

	slog.InfoContext(ctx, "Connection removed", "connection_id", connectionID)
	return jsonResponse(http.StatusOK, map[string]string{"connectionId": connectionID})
}

func jsonResponse(status int, payload any) Response {
	body, err := json.Marshal(payload)
	if err != nil {
		// Payloads here are our own fixed types; this cannot happen in practice.
		return Response{StatusCode: http.StatusInternalServerError, Body: `{"error":"internal server error"}`}
	}
	return Response{StatusCode: status, Body: string(body)}
}

func errorResponse(err *errors.Error) Response {
	body, marshalErr := json.Marshal(err.ToResponse())
	if marshalErr != nil {
		return Response{StatusCode: http.StatusInternalServerError, Body: `{"error":"internal server error"}`}
	}
	return Response{StatusCode: err.HTTPStatus(), Body: string(body)}
}
