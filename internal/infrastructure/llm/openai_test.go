package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ProposalReviewer/internal/config"
	"ProposalReviewer/internal/ports"
	"ProposalReviewer/internal/review"
)

func newTestClient(endpoint string) *Client {
	return NewClient(config.LLMConfig{
		Endpoint: endpoint,
		Model:    "test-model",
		APIKey:   "secret",
	})
}

func TestCompleteSendsStructuredRequest(t *testing.T) {
	t.Parallel()

	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header: %s", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"finish_reason":"stop","message":{"content":"{\"overallVerdict\":\"pass\"}"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Complete(context.Background(), []ports.Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "usr"},
	}, review.ResultSchema)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	if captured["model"] != "test-model" {
		t.Fatalf("unexpected model: %v", captured["model"])
	}
	if captured["temperature"] != 0.2 {
		t.Fatalf("unexpected temperature: %v", captured["temperature"])
	}
	if captured["max_tokens"] != float64(800) {
		t.Fatalf("unexpected max_tokens: %v", captured["max_tokens"])
	}

	format, ok := captured["response_format"].(map[string]interface{})
	if !ok || format["type"] != "json_schema" {
		t.Fatalf("unexpected response_format: %v", captured["response_format"])
	}
	schema, ok := format["json_schema"].(map[string]interface{})
	if !ok || schema["strict"] != true || schema["name"] != "proposal_review" {
		t.Fatalf("unexpected json_schema wrapper: %v", format["json_schema"])
	}

	if result.FinishReason != "stop" {
		t.Fatalf("unexpected finish reason: %s", result.FinishReason)
	}
	if result.Content != `{"overallVerdict":"pass"}` {
		t.Fatalf("unexpected content: %s", result.Content)
	}
}

func TestCompleteOmitsSchemaForPlainText(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if _, ok := payload["response_format"]; ok {
			t.Error("response_format sent for nil schema")
		}
		_, _ = w.Write([]byte(`{"choices":[{"finish_reason":"stop","message":{"content":"plain text"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Complete(context.Background(), []ports.Message{{Role: "user", Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if result.Content != "plain text" {
		t.Fatalf("unexpected content: %s", result.Content)
	}
}

func TestCompleteSurfacesProviderError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit exceeded","code":"rate_limited"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Complete(context.Background(), []ports.Message{{Role: "user", Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("provider errors must not be transport errors, got %v", err)
	}
	if result.Err == nil {
		t.Fatal("expected provider error in result")
	}
	if result.Err.Message != "rate limit exceeded" || result.Err.Code != "rate_limited" {
		t.Fatalf("unexpected provider error: %+v", result.Err)
	}
}

func TestCompleteReturnsEmptyResultForNoChoices(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Complete(context.Background(), []ports.Message{{Role: "user", Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if result.Content != "" || result.Parsed != nil || result.FinishReason != "" {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestCompleteRejectsMisconfiguredClient(t *testing.T) {
	t.Parallel()

	client := NewClient(config.LLMConfig{})
	if _, err := client.Complete(context.Background(), nil, nil); err == nil {
		t.Fatal("expected misconfiguration error")
	}
}
