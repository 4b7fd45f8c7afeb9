package judge

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/promptlens/promptlens/internal/ailink"
	"github.com/promptlens/promptlens/internal/ailink/content"
	"github.com/promptlens/promptlens/internal/ailink/driver"
	"github.com/promptlens/promptlens/internal/observability"
)

// Fallback is the neutral score returned when a remote rating is unavailable.
const Fallback = 0.5

var numberPattern = regexp.MustCompile(`[-+]?(\d+(\.\d*)?|\.\d+)`)

// RemoteJudge asks a chat-completion API for a rating between 0 and 1.
type RemoteJudge struct {
	driver       driver.Driver
	model        string
	temperature  float64
	maxTokens    int
	previewBytes int
	logger       observability.Logger
}

// RemoteOptions configures a RemoteJudge.
type RemoteOptions struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	PreviewBytes int
	Logger       observability.Logger
}

// NewRemote returns a RemoteJudge backed by drv.
func NewRemote(drv driver.Driver, opts RemoteOptions) (*RemoteJudge, error) {
	if drv == nil {
		return nil, fmt.Errorf("remote judge requires a driver")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("remote judge requires a model")
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = ailink.DefaultMaxTokens
	}
	if opts.PreviewBytes <= 0 {
		opts.PreviewBytes = ailink.DefaultPreviewBytes
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &RemoteJudge{
		driver:       drv,
		model:        opts.Model,
		temperature:  opts.Temperature,
		maxTokens:    opts.MaxTokens,
		previewBytes: opts.PreviewBytes,
		logger:       opts.Logger,
	}, nil
}

// Mode reports ModeRemote.
func (j *RemoteJudge) Mode() Mode {
	return ModeRemote
}

// Judge returns the first number in the reply clamped to [0, 1], or Fallback
// when the call fails or the reply holds no number. It is never nil.
func (j *RemoteJudge) Judge(ctx context.Context, prompt, instruction string) *float64 {
	req := &driver.Request{
		Model:       j.model,
		Messages:    j.messages(prompt, instruction),
		Temperature: driver.Float64(j.temperature),
		MaxTokens:   driver.Int(j.maxTokens),
	}

	resp, err := j.driver.Complete(ctx, req)
	if err != nil {
		jerr := ailink.MapProviderError(err)
		j.logger.Warn("Remote judge call failed, using fallback score",
			zap.String("driver", j.driver.Name()),
			zap.String("code", jerr.Code),
			zap.String("details", jerr.Details),
			zap.Float64("fallback", Fallback),
		)
		return float(Fallback)
	}

	raw := resp.Text()
	j.logger.Debug("Remote judge raw output",
		zap.String("driver", j.driver.Name()),
		zap.String("output", ailink.Preview(raw, j.previewBytes)),
		zap.Bool("cached", resp.Cached),
	)

	value, ok := ParseRating(raw)
	if !ok {
		j.logger.Warn("Remote judge reply has no number, using fallback score",
			zap.String("output", ailink.Preview(raw, j.previewBytes)),
			zap.Float64("fallback", Fallback),
		)
		return float(Fallback)
	}
	return float(value)
}

// messages sends the instruction as a system message, or prepends it to the
// user turn when the driver has no system role.
func (j *RemoteJudge) messages(prompt, instruction string) []content.Message {
	if j.driver.Capabilities().SupportsSystemRole {
		return []content.Message{
			content.TextMessage(content.RoleSystem, instruction),
			content.TextMessage(content.RoleUser, prompt),
		}
	}
	return []content.Message{content.TextMessage(content.RoleUser, instruction+"\n\n"+prompt)}
}

// ParseRating extracts the first decimal number in output and clamps it to
// [0, 1].
func ParseRating(output string) (float64, bool) {
	match := numberPattern.FindString(output)
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsNaN(value) {
		return 0, false
	}
	return math.Min(1, math.Max(0, value)), true
}
