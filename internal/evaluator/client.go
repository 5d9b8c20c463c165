package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"

	"github.com/telllate/snipcast/internal/metrics"
)

const invokeTimeout = 30 * time.Second

// Invoker sends one prompt to the model backend and returns the model's raw
// text output.
type Invoker interface {
	Converse(ctx context.Context, prompt string) (string, error)
}

// Client invokes a hosted Converse-style model API over HTTP.
type Client struct {
	endpoint    string
	modelID     string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	cb          circuitbreaker.CircuitBreaker[any]
}

var _ Invoker = (*Client)(nil)

// NewClient creates a model client for the given backend endpoint and model id.
func NewClient(endpoint, modelID string, maxTokens int, temperature float64) *Client {
	cb := circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(0.6, 5, 30*time.Second).
		WithDelay(30 * time.Second).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "model",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			metrics.CircuitBreakerStateChanges.WithLabelValues("model", e.NewState.String()).Inc()
		}).
		Build()

	return &Client{
		endpoint:    endpoint,
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
		httpClient:  &http.Client{Timeout: invokeTimeout},
		cb:          cb,
	}
}

// Wire types for the Converse request/response.

type converseMessage struct {
	Role    string            `json:"role"`
	Content []converseContent `json:"content"`
}

type converseContent struct {
	Text string `json:"text"`
}

type inferenceConfig struct {
	MaxTokens   int     `json:"maxTokens"`
	Temperature float64 `json:"temperature"`
}

type converseRequest struct {
	ModelID         string            `json:"modelId"`
	Messages        []converseMessage `json:"messages"`
	InferenceConfig inferenceConfig   `json:"inferenceConfig"`
}

type converseResponse struct {
	Output struct {
		Message struct {
			Content []converseContent `json:"content"`
		} `json:"message"`
	} `json:"output"`
}

// Converse sends the prompt as a single user message and returns the text of
// the model's first content block.
func (c *Client) Converse(ctx context.Context, prompt string) (string, error) {
	if !c.cb.TryAcquirePermit() {
		return "", fmt.Errorf("model circuit breaker open: %w", circuitbreaker.ErrOpen)
	}

	start := time.Now()
	text, err := c.converse(ctx, prompt)
	metrics.EvaluationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.cb.RecordError(err)
		return "", err
	}
	c.cb.RecordSuccess()
	return text, nil
}

func (c *Client) converse(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(converseRequest{
		ModelID: c.modelID,
		Messages: []converseMessage{
			{Role: "user", Content: []converseContent{{Text: prompt}}},
		},
		InferenceConfig: inferenceConfig{
			MaxTokens:   c.maxTokens,
			Temperature: c.temperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal converse request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/model/%s/converse", c.endpoint, c.modelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create converse request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute converse request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("model backend returned status %d: %s", resp.StatusCode, payload)
	}

	var parsed converseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode converse response: %w", err)
	}

	if len(parsed.Output.Message.Content) == 0 {
		return "", fmt.Errorf("model response contains no content blocks")
	}
	return parsed.Output.Message.Content[0].Text, nil
}
