package ailink

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/promptlens/promptlens/internal/ailink/content"
	"github.com/promptlens/promptlens/internal/ailink/driver"
	"github.com/promptlens/promptlens/internal/observability"
)

// CacheStore persists judge completions keyed by request fingerprint.
type CacheStore interface {
	GetJudgeCache(ctx context.Context, key string) ([]byte, bool, error)
	SetJudgeCache(ctx context.Context, key, driverName, model string, payload []byte, ttl time.Duration) error
}

// CachedDriver decorates a driver with a response cache. Only successful
// completions are stored; cache failures are logged and bypassed.
type CachedDriver struct {
	Next   driver.Driver
	Store  CacheStore
	TTL    time.Duration
	Logger observability.Logger
}

type cachedPayload struct {
	Content      []content.ContentBlock `json:"content"`
	FinishReason string                 `json:"finish_reason,omitempty"`
}

// NewCachedDriver wraps next. A nil store or non-positive ttl returns next
// unchanged.
func NewCachedDriver(next driver.Driver, store CacheStore, ttl time.Duration, logger observability.Logger) driver.Driver {
	if next == nil || store == nil || ttl <= 0 {
		return next
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedDriver{Next: next, Store: store, TTL: ttl, Logger: logger}
}

// Name returns the wrapped driver's identifier.
func (c *CachedDriver) Name() string {
	return c.Next.Name()
}

// Capabilities returns the wrapped driver's capabilities.
func (c *CachedDriver) Capabilities() driver.Capabilities {
	return c.Next.Capabilities()
}

// Tokenize forwards to the wrapped driver when it exposes a tokenizer.
func (c *CachedDriver) Tokenize(ctx context.Context, text string) ([]int, error) {
	tok, ok := c.Next.(driver.Tokenizer)
	if !ok {
		return nil, fmt.Errorf("%s driver does not support tokenization", c.Next.Name())
	}
	return tok.Tokenize(ctx, text)
}

// Complete serves from the cache when possible, otherwise calls the wrapped
// driver and stores a successful result.
func (c *CachedDriver) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	key := CacheKey(c.Next.Name(), req)

	if raw, ok, err := c.Store.GetJudgeCache(ctx, key); err != nil {
		c.Logger.Warn("Judge cache lookup failed", zap.String("driver", c.Next.Name()), zap.Error(err))
	} else if ok {
		var payload cachedPayload
		if err := json.Unmarshal(raw, &payload); err == nil {
			c.Logger.Debug("Judge cache hit", zap.String("driver", c.Next.Name()), zap.String("prompt_slug", req.PromptSlug))
			return &driver.Response{Content: payload.Content, FinishReason: payload.FinishReason, Cached: true}, nil
		}
	}

	resp, err := c.Next.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(cachedPayload{Content: resp.Content, FinishReason: resp.FinishReason})
	if err == nil {
		model := ""
		if req != nil {
			model = req.Model
		}
		if err := c.Store.SetJudgeCache(ctx, key, c.Next.Name(), model, data, c.TTL); err != nil {
			c.Logger.Warn("Judge cache write failed", zap.String("driver", c.Next.Name()), zap.Error(err))
		}
	}
	return resp, nil
}

// CacheKey fingerprints a request by driver, model, message text and sampling
// parameters.
func CacheKey(driverName string, req *driver.Request) string {
	if req == nil {
		req = &driver.Request{}
	}
	temperature := "-"
	if req.Temperature != nil {
		temperature = fmt.Sprintf("%g", *req.Temperature)
	}
	maxTokens := "-"
	if req.MaxTokens != nil {
		maxTokens = fmt.Sprintf("%d", *req.MaxTokens)
	}
	parts := []string{
		strings.ToLower(driverName),
		req.Model,
		digest(req.SystemText()),
		digest(req.UserText()),
		temperature,
		maxTokens,
	}
	return digest(strings.Join(parts, "|"))
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
