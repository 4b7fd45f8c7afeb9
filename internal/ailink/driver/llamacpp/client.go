// Package llamacpp drives a locally hosted model through the llama.cpp HTTP
// server (/completion and /tokenize endpoints).
package llamacpp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/promptlens/promptlens/internal/ailink/content"
	"github.com/promptlens/promptlens/internal/ailink/driver"
)

const (
	defaultBaseURL      = "http://127.0.0.1:8080"
	defaultMaxNewTokens = 5
)

// Client implements driver.Driver and driver.Tokenizer for llama.cpp.
type Client struct {
	BaseURL      string
	HTTPClient   *http.Client
	Timeout      time.Duration
	MaxNewTokens int
}

// NewClient returns a client with defaults applied.
func NewClient(baseURL string) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}
	return &Client{BaseURL: url, MaxNewTokens: defaultMaxNewTokens}
}

// Name returns the driver identifier.
func (c *Client) Name() string {
	return "llamacpp"
}

// Capabilities describes supported features.
func (c *Client) Capabilities() driver.Capabilities {
	return driver.Capabilities{
		SupportsSystemRole: false,
		SupportsTokenize:   true,
	}
}

type completionRequest struct {
	Prompt      string   `json:"prompt"`
	NPredict    int      `json:"n_predict"`
	Temperature *float64 `json:"temperature,omitempty"`
	CachePrompt bool     `json:"cache_prompt"`
}

type completionResponse struct {
	Content         string `json:"content"`
	Stop            bool   `json:"stop"`
	StoppedEOS      bool   `json:"stopped_eos"`
	StoppedLimit    bool   `json:"stopped_limit"`
	TokensEvaluated int    `json:"tokens_evaluated"`
	TokensPredicted int    `json:"tokens_predicted"`
}

type tokenizeRequest struct {
	Content string `json:"content"`
}

type tokenizeResponse struct {
	Tokens []int `json:"tokens"`
}

// Complete runs a raw text completion. System and user messages are joined
// into a single prompt since the endpoint has no chat roles.
func (c *Client) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	if c == nil {
		return nil, fmt.Errorf("llamacpp client not configured")
	}
	if req == nil || len(req.Messages) == 0 {
		return nil, fmt.Errorf("messages are required")
	}

	prompt := flattenPrompt(req.Messages)
	nPredict := c.MaxNewTokens
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		nPredict = *req.MaxTokens
	}
	if nPredict <= 0 {
		nPredict = defaultMaxNewTokens
	}

	payload := completionRequest{Prompt: prompt, NPredict: nPredict, Temperature: req.Temperature, CachePrompt: true}
	var parsed completionResponse
	if err := c.post(ctx, "/completion", req.PromptSlug, payload, &parsed); err != nil {
		return nil, err
	}

	finish := "length"
	if parsed.StoppedEOS || (parsed.Stop && !parsed.StoppedLimit) {
		finish = "stop"
	}
	return &driver.Response{
		Content:      []content.ContentBlock{{Type: content.ContentTypeText, Text: parsed.Content}},
		FinishReason: finish,
		Usage: &driver.Usage{
			PromptTokens:     parsed.TokensEvaluated,
			CompletionTokens: parsed.TokensPredicted,
			TotalTokens:      parsed.TokensEvaluated + parsed.TokensPredicted,
		},
	}, nil
}

// Tokenize returns the model's token ids for text.
func (c *Client) Tokenize(ctx context.Context, text string) ([]int, error) {
	if c == nil {
		return nil, fmt.Errorf("llamacpp client not configured")
	}
	var parsed tokenizeResponse
	if err := c.post(ctx, "/tokenize", "", tokenizeRequest{Content: text}, &parsed); err != nil {
		return nil, err
	}
	if parsed.Tokens == nil {
		return []int{}, nil
	}
	return parsed.Tokens, nil
}

func (c *Client) post(ctx context.Context, path, slug string, payload, out any) error {
	ctx, cancel := withTimeout(ctx, c.Timeout)
	if cancel != nil {
		defer cancel()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimRight(c.BaseURL, "/") + path
	trace := driver.TraceEntry{Driver: c.Name(), Endpoint: url, Method: http.MethodPost, PromptSlug: slug}
	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		driver.TraceExchange(trace, start, body, nil, err)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	trace.StatusCode = resp.StatusCode

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		perr := driver.NewProviderError(c.Name(), resp.StatusCode, respBody)
		driver.TraceExchange(trace, start, body, respBody, perr)
		return perr
	}
	driver.TraceExchange(trace, start, body, respBody, nil)

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func flattenPrompt(messages []content.Message) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		if text := msg.Text(); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, nil
	}
	return context.WithTimeout(ctx, timeout)
}
