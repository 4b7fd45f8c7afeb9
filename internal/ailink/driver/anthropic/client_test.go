package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promptlens/promptlens/internal/ailink/content"
	"github.com/promptlens/promptlens/internal/ailink/driver"
)

func judgeRequest() *driver.Request {
	return &driver.Request{
		Model: "claude-3-5-haiku-latest",
		Messages: []content.Message{
			content.TextMessage(content.RoleSystem, "You rate prompts."),
			content.TextMessage(content.RoleUser, "Rate: hi"),
		},
		Temperature: driver.Float64(0),
		MaxTokens:   driver.Int(30),
	}
}

func TestClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient("", "").Complete(context.Background(), judgeRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "api key")
}

func TestBuildParamsRequiresUserMessage(t *testing.T) {
	req := judgeRequest()
	req.Messages = req.Messages[:1]
	_, err := buildParams(req)
	require.Error(t, err)
	require.Contains(t, err.Error(), "user message")
}

func TestClientSendsRequestAndParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "claude-3-5-haiku-latest", payload["model"])
		require.EqualValues(t, 30, payload["max_tokens"])
		require.EqualValues(t, 0, payload["temperature"])
		require.NotEmpty(t, payload["system"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest","content":[{"type":"text","text":"0.25"}],"stop_reason":"end_turn","usage":{"input_tokens":9,"output_tokens":3}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()

	resp, err := client.Complete(context.Background(), judgeRequest())
	require.NoError(t, err)
	require.Equal(t, "0.25", resp.Text())
	require.Equal(t, "end_turn", resp.FinishReason)
	require.Equal(t, 12, resp.Usage.TotalTokens)
}

func TestClientErrorsOnNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()

	_, err := client.Complete(context.Background(), judgeRequest())
	require.Error(t, err)

	var perr *driver.ProviderError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, http.StatusTooManyRequests, perr.StatusCode)
}
