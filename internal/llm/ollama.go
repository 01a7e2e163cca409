package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single generation call
const DefaultTimeout = 60 * time.Second

// maxErrorBody limits how much of a failed response is kept for errors.
const maxErrorBody = 4096

// OllamaClient calls the Ollama /api/generate endpoint. Each call is a single
// non-streaming attempt with no retry.
type OllamaClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOllamaClient creates a client for baseURL.
func NewOllamaClient(baseURL string, timeout time.Duration) *OllamaClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Generate sends prompt to the backend and returns the generated text, the
// wall-clock latency of the call and the raw response for auditing.
// The call is detached from ctx cancellation; only the client timeout
// bounds it.
func (c *OllamaClient) Generate(ctx context.Context, prompt, model string, opts Options) (*Result, error) {
	payload := make(map[string]interface{}, len(opts.Extra)+4)
	for k, v := range opts.Extra {
		payload[k] = v
	}
	payload["model"] = model
	payload["prompt"] = prompt
	payload["stream"] = false
	if opts.Format != "" {
		payload["format"] = opts.Format
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Generation backend request failed", "model", model, "error", err)
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Error("Generation backend returned error status", "model", model, "status", resp.StatusCode)
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), maxErrorBody)}
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("malformed response body: %w", err)}
	}
	text, ok := raw["response"].(string)
	if !ok {
		return nil, &UpstreamError{Err: errors.New(`malformed response body: missing "response" text`)}
	}

	slog.Debug("Generation completed", "model", model, "latency_ms", latency)
	return &Result{
		OutputText: text,
		LatencyMs:  latency,
		Metadata: map[string]interface{}{
			"raw_response": raw,
		},
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
