package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promptlens/promptlens/internal/ailink/content"
	"github.com/promptlens/promptlens/internal/ailink/driver"
)

func judgeRequest() *driver.Request {
	return &driver.Request{
		Model: "gpt-4-turbo",
		Messages: []content.Message{
			content.TextMessage(content.RoleSystem, "You rate prompts."),
			content.TextMessage(content.RoleUser, "Rate: hi"),
		},
		Temperature: driver.Float64(0),
		MaxTokens:   driver.Int(30),
	}
}

func TestClientRequiresAPIKey(t *testing.T) {
	client := NewClient("", "")
	_, err := client.Complete(context.Background(), judgeRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "api key")
}

func TestClientRequiresModel(t *testing.T) {
	client := NewClient("", "test-key")
	req := judgeRequest()
	req.Model = " "
	_, err := client.Complete(context.Background(), req)
	require.Error(t, err)
	require.Contains(t, err.Error(), "model")
}

func TestClientSendsRequestAndParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))
		require.Equal(t, "gpt-4-turbo", payload["model"])
		require.EqualValues(t, 0, payload["temperature"])
		require.EqualValues(t, 30, payload["max_tokens"])

		messages, ok := payload["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 2)
		require.Equal(t, "system", messages[0].(map[string]any)["role"])
		require.Equal(t, "user", messages[1].(map[string]any)["role"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","created":1,"model":"gpt-4-turbo","choices":[{"index":0,"message":{"role":"assistant","content":"0.8"},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":2,"total_tokens":12}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()

	resp, err := client.Complete(context.Background(), judgeRequest())
	require.NoError(t, err)
	require.Equal(t, "0.8", resp.Text())
	require.Equal(t, "stop", resp.FinishReason)
	require.Equal(t, 12, resp.Usage.TotalTokens)
}

func TestClientErrorsOnNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()

	_, err := client.Complete(context.Background(), judgeRequest())
	require.Error(t, err)

	var perr *driver.ProviderError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, http.StatusUnauthorized, perr.StatusCode)
	require.Contains(t, err.Error(), "status 401")
}

func TestNormalizeBaseURL(t *testing.T) {
	require.Equal(t, defaultBaseURL, normalizeBaseURL(""))
	require.Equal(t, "http://localhost:1234/v1/", normalizeBaseURL("http://localhost:1234/v1"))
	require.Equal(t, "http://localhost:1234/v1/", normalizeBaseURL("http://localhost:1234/v1/"))
}
