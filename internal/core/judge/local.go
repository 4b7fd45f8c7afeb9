package judge

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/promptlens/promptlens/internal/ailink"
	"github.com/promptlens/promptlens/internal/ailink/content"
	"github.com/promptlens/promptlens/internal/ailink/driver"
	"github.com/promptlens/promptlens/internal/observability"
)

// DefaultMaxNewTokens bounds the local model continuation.
const DefaultMaxNewTokens = 5

// LocalJudge asks a locally hosted model a Yes/No question.
type LocalJudge struct {
	driver       driver.Driver
	maxNewTokens int
	previewBytes int
	logger       observability.Logger
}

// LocalOptions configures a LocalJudge.
type LocalOptions struct {
	MaxNewTokens int
	PreviewBytes int
	Logger       observability.Logger
}

// NewLocal returns a LocalJudge backed by drv.
func NewLocal(drv driver.Driver, opts LocalOptions) (*LocalJudge, error) {
	if drv == nil {
		return nil, fmt.Errorf("local judge requires a driver")
	}
	if opts.MaxNewTokens <= 0 {
		opts.MaxNewTokens = DefaultMaxNewTokens
	}
	if opts.PreviewBytes <= 0 {
		opts.PreviewBytes = ailink.DefaultPreviewBytes
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &LocalJudge{
		driver:       drv,
		maxNewTokens: opts.MaxNewTokens,
		previewBytes: opts.PreviewBytes,
		logger:       opts.Logger,
	}, nil
}

// Mode reports ModeLocal.
func (j *LocalJudge) Mode() Mode {
	return ModeLocal
}

// RenderYesNo builds the full text sent to the local model.
func RenderYesNo(instruction, prompt string) string {
	return instruction + "\nPrompt: " + prompt + "\nAnswer with Yes or No."
}

// Judge returns 1 for a "yes" continuation, 0 for "no" and nil otherwise.
func (j *LocalJudge) Judge(ctx context.Context, prompt, instruction string) *float64 {
	req := &driver.Request{
		Messages:    []content.Message{content.TextMessage(content.RoleUser, RenderYesNo(instruction, prompt))},
		Temperature: driver.Float64(0),
		MaxTokens:   driver.Int(j.maxNewTokens),
	}

	resp, err := j.driver.Complete(ctx, req)
	if err != nil {
		jerr := ailink.MapProviderError(err)
		j.logger.Warn("Local judge call failed, score undefined",
			zap.String("code", jerr.Code),
			zap.String("details", jerr.Details),
		)
		return nil
	}

	raw := resp.Text()
	j.logger.Debug("Local judge raw output",
		zap.String("output", ailink.Preview(raw, j.previewBytes)),
		zap.Bool("cached", resp.Cached),
	)

	score := ParseYesNo(raw)
	if score == nil {
		j.logger.Warn("Local judge answer not recognised, score undefined",
			zap.String("output", ailink.Preview(raw, j.previewBytes)),
		)
	}
	return score
}

// ParseYesNo maps a continuation to 1 ("yes" present), 0 ("no" present) or
// nil. "yes" is checked first.
func ParseYesNo(output string) *float64 {
	lower := strings.ToLower(output)
	switch {
	case strings.Contains(lower, "yes"):
		return float(1)
	case strings.Contains(lower, "no"):
		return float(0)
	default:
		return nil
	}
}

// CountTokens measures text with the local model's tokenizer. The driver
// must both advertise and implement tokenization.
func (j *LocalJudge) CountTokens(ctx context.Context, text string) (int, error) {
	tok, ok := j.driver.(driver.Tokenizer)
	if !ok || !j.driver.Capabilities().SupportsTokenize {
		return 0, fmt.Errorf("%s driver does not expose a tokenizer", j.driver.Name())
	}
	tokens, err := tok.Tokenize(ctx, text)
	if err != nil {
		return 0, err
	}
	return len(tokens), nil
}
