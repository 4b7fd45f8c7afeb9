// Package anthropic drives the Anthropic Messages API through the official SDK.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/promptlens/promptlens/internal/ailink/content"
	"github.com/promptlens/promptlens/internal/ailink/driver"
)

const defaultMaxTokens = 30

// Client implements the Anthropic driver.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
	MaxRetries int

	sdk *anthropic.Client
}

// NewClient returns a client with defaults applied. An empty baseURL uses the
// SDK default endpoint.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimSpace(baseURL),
		APIKey:  strings.TrimSpace(apiKey),
	}
}

// Name returns the driver identifier.
func (c *Client) Name() string {
	return "anthropic"
}

// Capabilities describes supported features.
func (c *Client) Capabilities() driver.Capabilities {
	return driver.Capabilities{SupportsSystemRole: true}
}

// Complete sends a messages request.
func (c *Client) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	if c == nil {
		return nil, fmt.Errorf("anthropic client not configured")
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
		Endpoint:   "messages",
		Method:     http.MethodPost,
		Model:      req.Model,
		PromptSlug: req.PromptSlug,
	}
	start := time.Now()

	client := c.client()
	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		err = c.wrapError(err)
		driver.TraceExchange(trace, start, params, nil, err)
		return nil, err
	}
	driver.TraceExchange(trace, start, params, resp, nil)

	return toDriverResponse(resp), nil
}

func (c *Client) client() *anthropic.Client {
	if c.sdk != nil {
		return c.sdk
	}
	opts := []option.RequestOption{
		option.WithAPIKey(c.APIKey),
		option.WithMaxRetries(c.MaxRetries),
	}
	if c.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.BaseURL))
	}
	if c.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(c.HTTPClient))
	}
	client := anthropic.NewClient(opts...)
	c.sdk = &client
	return c.sdk
}

func (c *Client) wrapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &driver.ProviderError{
			Provider:   c.Name(),
			StatusCode: apiErr.StatusCode,
			Message:    strings.TrimSpace(apiErr.Error()),
		}
	}
	return fmt.Errorf("request failed: %w", err)
}

func buildParams(req *driver.Request) (anthropic.MessageNewParams, error) {
	if req == nil {
		return anthropic.MessageNewParams{}, fmt.Errorf("request is required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return anthropic.MessageNewParams{}, fmt.Errorf("model is required")
	}
	user := req.UserText()
	if user == "" {
		return anthropic.MessageNewParams{}, fmt.Errorf("user message is required")
	}

	maxTokens := int64(defaultMaxTokens)
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		maxTokens = int64(*req.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if system := req.SystemText(); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}
	return params, nil
}

func toDriverResponse(resp *anthropic.Message) *driver.Response {
	blocks := make([]content.ContentBlock, 0, len(resp.Content))
	for _, block := range resp.Content {
		if block.Type == "text" {
			blocks = append(blocks, content.ContentBlock{Type: content.ContentTypeText, Text: block.Text})
		}
	}
	prompt := int(resp.Usage.InputTokens)
	completion := int(resp.Usage.OutputTokens)
	return &driver.Response{
		Content:      blocks,
		FinishReason: string(resp.StopReason),
		Usage: &driver.Usage{
			PromptTokens:     prompt,
			CompletionTokens: completion,
			TotalTokens:      prompt + completion,
		},
	}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, nil
	}
	return context.WithTimeout(ctx, timeout)
}
