package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/telllate/snipcast/internal/errors"
	"github.com/telllate/snipcast/internal/evaluator"
	"github.com/telllate/snipcast/internal/metrics"
)

// Evaluate formats the evaluation prompt, invokes the model backend, and
// validates the model's output against the evaluation schema before
// returning it. On success the model's raw JSON passes through unmodified
// as the response body.
func (h *Handlers) Evaluate(ctx context.Context, event EvaluateEvent) Response {
	if h.invoker == nil {
		return errorResponse(errors.ModelError("evaluation is not configured", nil))
	}

	var request evaluator.Request
	if err := json.Unmarshal([]byte(event.Body), &request); err != nil {
		slog.WarnContext(ctx, "Malformed evaluation body", "error", err)
		return errorResponse(errors.InputParseError("malformed evaluation body", err))
	}
	if request.Text == "" {
		return errorResponse(errors.InputParseError("text is required", nil))
	}

	prompt := evaluator.BuildPrompt(request.Text, request.CharacterCount)

	raw, err := h.invoker.Converse(ctx, prompt)
	if err != nil {
		metrics.EvaluationsTotal.WithLabelValues("invoke_error").Inc()
		slog.ErrorContext(ctx, "Model invocation failed", "error", err)
		return errorResponse(errors.ModelError("model invocation failed", err))
	}

	// The model's output is untrusted input: verify it actually is the
	// evaluation schema before handing it to the caller under a 200.
	if _, err := evaluator.ParseEvaluation(raw); err != nil {
		metrics.EvaluationsTotal.WithLabelValues("schema_error").Inc()
		slog.ErrorContext(ctx, "Model output failed schema validation", "error", err)
		return errorResponse(errors.ModelError("model output failed schema validation", err))
	}

	metrics.EvaluationsTotal.WithLabelValues("ok").Inc()
	return Response{StatusCode: http.StatusOK, Body: raw}
}
