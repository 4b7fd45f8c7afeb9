// Package openai drives OpenAI-compatible chat completion APIs through the
// official openai-go SDK.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/promptlens/promptlens/internal/ailink/content"
	"github.com/promptlens/promptlens/internal/ailink/driver"
)

const defaultBaseURL = "https://api.openai.com/v1/"

// Client implements the OpenAI driver.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
	MaxRetries int

	sdk *openai.Client
}

// NewClient returns a client with defaults applied.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: normalizeBaseURL(baseURL),
		APIKey:  strings.TrimSpace(apiKey),
	}
}

// Name returns the driver identifier.
func (c *Client) Name() string {
	return "openai"
}

// Capabilities describes supported features.
func (c *Client) Capabilities() driver.Capabilities {
	return driver.Capabilities{SupportsSystemRole: true}
}

// Complete sends a chat completion request.
func (c *Client) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	if c == nil {
		return nil, fmt.Errorf("openai client not configured")
	}
	if c.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	params, err := buildParams(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, c.Timeout)
	if cancel != nil {
		defer cancel()
	}

	trace := driver.TraceEntry{
		Driver:     c.Name(),
		Endpoint:   c.BaseURL + "chat/completions",
		Method:     http.MethodPost,
		Model:      req.Model,
		PromptSlug: req.PromptSlug,
	}
	start := time.Now()

	resp, err := c.client().Chat.Completions.New(ctx, params)
	if err != nil {
		err = c.wrapError(err)
		driver.TraceExchange(trace, start, params, nil, err)
		return nil, err
	}
	driver.TraceExchange(trace, start, params, resp, nil)

	return toDriverResponse(resp)
}

func (c *Client) client() *openai.Client {
	if c.sdk != nil {
		return c.sdk
	}
	opts := []option.RequestOption{
		option.WithAPIKey(c.APIKey),
		option.WithBaseURL(normalizeBaseURL(c.BaseURL)),
		option.WithMaxRetries(c.MaxRetries),
	}
	if c.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(c.HTTPClient))
	}
	c.sdk = openai.NewClient(opts...)
	return c.sdk
}

func (c *Client) wrapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &driver.ProviderError{
			Provider:   c.Name(),
			StatusCode: apiErr.StatusCode,
			Message:    strings.TrimSpace(apiErr.Error()),
		}
	}
	return fmt.Errorf("request failed: %w", err)
}

func buildParams(req *driver.Request) (openai.ChatCompletionNewParams, error) {
	if req == nil {
		return openai.ChatCompletionNewParams{}, fmt.Errorf("request is required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return openai.ChatCompletionNewParams{}, fmt.Errorf("model is required")
	}
	if len(req.Messages) == 0 {
		return openai.ChatCompletionNewParams{}, fmt.Errorf("messages are required")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case content.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Text()))
		case content.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Text()))
		default:
			return openai.ChatCompletionNewParams{}, fmt.Errorf("unsupported message role: %s", msg.Role)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.F(req.Model),
		Messages: openai.F(messages),
	}
	if req.Temperature != nil {
		params.Temperature = openai.F(*req.Temperature)
	}
	if req.MaxTokens != nil {
		params.MaxTokens = openai.F(int64(*req.MaxTokens))
	}
	return params, nil
}

func toDriverResponse(resp *openai.ChatCompletion) (*driver.Response, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response choices")
	}

	choice := resp.Choices[0]
	return &driver.Response{
		Content:      []content.ContentBlock{{Type: content.ContentTypeText, Text: choice.Message.Content}},
		FinishReason: string(choice.FinishReason),
		Usage: &driver.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

func normalizeBaseURL(raw string) string {
	url := strings.TrimSpace(raw)
	if url == "" {
		return defaultBaseURL
	}
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	return url
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, nil
	}
	return context.WithTimeout(ctx, timeout)
}
