package driver

import (
	"context"
	"strings"

	"github.com/promptlens/promptlens/internal/ailink/content"
)

// Driver defines the interface for model completion providers.
type Driver interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *Request) (*Response, error)
	// Name returns the driver identifier (e.g., "openai").
	Name() string
	// Capabilities returns what this driver supports.
	Capabilities() Capabilities
}

// Tokenizer is implemented by drivers that expose the model's tokenizer.
type Tokenizer interface {
	Tokenize(ctx context.Context, text string) ([]int, error)
}

// Capabilities describes driver features.
type Capabilities struct {
	SupportsSystemRole bool
	SupportsTokenize   bool
}

// Usage contains token usage statistics.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Request is a provider-agnostic completion request.
type Request struct {
	Model       string
	Messages    []content.Message
	Temperature *float64
	MaxTokens   *int
	PromptSlug  string
	Metadata    map[string]string
}

// Response is a provider-agnostic completion response.
type Response struct {
	Content      []content.ContentBlock
	FinishReason string
	Usage        *Usage
	Cached       bool
}

// Text returns the concatenated, whitespace-trimmed text output.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(content.JoinText(r.Content))
}

// SystemText returns the concatenated text of all system messages.
func (r *Request) SystemText() string {
	return r.roleText(content.RoleSystem)
}

// UserText returns the concatenated text of all user messages.
func (r *Request) UserText() string {
	return r.roleText(content.RoleUser)
}

func (r *Request) roleText(role string) string {
	if r == nil {
		return ""
	}
	parts := make([]string, 0, len(r.Messages))
	for _, msg := range r.Messages {
		if msg.Role == role {
			parts = append(parts, msg.Text())
		}
	}
	return strings.Join(parts, "\n")
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}
