package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/telllate/snipcast/internal/broadcast"
	"github.com/telllate/snipcast/internal/domain"
	"github.com/telllate/snipcast/internal/errors"
)

// Broadcast fans the message out to every registered connection. Recipient
// failures are isolated: they are logged and counted, never propagated, and
// the response is 200 even under partial failure. Recipients whose
// connection is gone are pruned from the registry best-effort.
func (h *Handlers) Broadcast(ctx context.Context, event MessageEvent) Response {
	var message domain.BroadcastMessage
	if err := json.Unmarshal([]byte(event.Body), &message); err != nil {
		slog.WarnContext(ctx, "Malformed broadcast body", "error", err)
		return errorResponse(errors.InputParseError("malformed broadcast body", err))
	}

	data, err := json.Marshal(message)
	if err != nil {
		return errorResponse(errors.InternalError("failed to serialize message", err))
	}

	sink := h.sinks(event.RequestContext.DomainName, event.RequestContext.Stage)

	records, err := h.registry.ListAll(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list connections", "error", err)
		return errorResponse(errors.AsStructuredError(err))
	}

	report := broadcast.Fanout(ctx, sink, records, data)

	// A gone connection's record is stale; remove it so the next fanout
	// does not retry a dead target. Failure here just defers the cleanup.
	for _, connectionID := range report.Stale() {
		if err := h.registry.Delete(ctx, connectionID); err != nil {
			slog.WarnContext(ctx, "Failed to prune stale connection", "connection_id", connectionID, "error", err)
		} else {
			slog.InfoContext(ctx, "Pruned stale connection", "connection_id", connectionID)
		}
	}

	slog.InfoContext(ctx, "Broadcast complete",
		"recipients", len(records),
		"delivered", report.Delivered(),
		"failed", report.Failed(),
	)
	return jsonResponse(http.StatusOK, map[string]int{
		"delivered": report.Delivered(),
		"failed":    report.Failed(),
	})
}
