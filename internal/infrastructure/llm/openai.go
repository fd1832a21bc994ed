package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ProposalReviewer/internal/config"
	"ProposalReviewer/internal/ports"
)

// Review calls are pinned to deterministic, bounded output.
const (
	reviewTemperature = 0.2
	reviewMaxTokens   = 800

	schemaName = "proposal_review"

	defaultTimeout = 120 * time.Second
)

// Client implements ports.CompletionClient backed by OpenAI-compatible
// chat completion APIs.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.CompletionClient = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.LLMConfig) *Client {
	timeout := defaultTimeout
	if cfg.RequestTimeoutSeconds > 0 {
		timeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Model reports the configured model identifier for error messages.
func (c *Client) Model() string {
	return c.model
}

type chatMessage struct {
	Content string          `json:"content"`
	Parsed  json.RawMessage `json:"parsed,omitempty"`
}

type chatChoice struct {
	FinishReason string      `json:"finish_reason"`
	Message      chatMessage `json:"message"`
}

type providerError struct {
	Message string          `json:"message"`
	Code    json.RawMessage `json:"code"`
}

type chatResponse struct {
	Choices []chatChoice   `json:"choices"`
	Error   *providerError `json:"error"`
}

// Complete posts one chat completion request. A non-nil schema is sent
// as a strict json_schema response format so the provider constrains its
// output shape. Provider-reported errors come back inside the result;
// only transport and encoding problems return a Go error.
func (c *Client) Complete(ctx context.Context, messages []ports.Message, schema json.RawMessage) (ports.CompletionResult, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return ports.CompletionResult{}, fmt.Errorf("completion client misconfigured")
	}

	payload := map[string]interface{}{
		"model":       c.model,
		"messages":    messages,
		"temperature": reviewTemperature,
		"max_tokens":  reviewMaxTokens,
	}
	if len(schema) > 0 {
		payload["response_format"] = map[string]interface{}{
			"type": "json_schema",
			"json_schema": map[string]interface{}{
				"name":   schemaName,
				"strict": true,
				"schema": schema,
			},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ports.CompletionResult{}, fmt.Errorf("marshal completion payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return ports.CompletionResult{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.CompletionResult{}, fmt.Errorf("post completion: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ports.CompletionResult{}, fmt.Errorf("read response: %w", err)
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return ports.CompletionResult{}, fmt.Errorf("provider error %s: %s", resp.Status, strings.TrimSpace(string(raw)))
		}
		return ports.CompletionResult{}, fmt.Errorf("decode response: %w", err)
	}

	if decoded.Error != nil {
		return ports.CompletionResult{Err: toProviderError(decoded.Error)}, nil
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return ports.CompletionResult{}, fmt.Errorf("provider error %s", resp.Status)
	}
	if len(decoded.Choices) == 0 {
		return ports.CompletionResult{}, nil
	}

	choice := decoded.Choices[0]
	return ports.CompletionResult{
		Content:      choice.Message.Content,
		Parsed:       choice.Message.Parsed,
		FinishReason: choice.FinishReason,
	}, nil
}

func toProviderError(perr *providerError) *ports.ProviderError {
	code := strings.Trim(string(perr.Code), `"`)
	if code == "null" {
		code = ""
	}
	return &ports.ProviderError{Code: code, Message: perr.Message}
}
