// Package judge asks a language model to score a prompt along one dimension.
//
// Two backends share the Judge interface: LocalJudge interprets a Yes/No
// continuation from a locally hosted model, RemoteJudge parses a numeric
// rating from a chat-completion API.
package judge

import (
	"context"
	"fmt"
)

// Mode identifies the judge backend family.
type Mode string

// Supported modes.
const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// ParseMode converts a config value to a Mode.
func ParseMode(value string) (Mode, error) {
	switch Mode(value) {
	case ModeLocal, "":
		return ModeLocal, nil
	case ModeRemote:
		return ModeRemote, nil
	default:
		return "", fmt.Errorf("unsupported judge mode %q", value)
	}
}

// Judge scores prompt against instruction. A nil result means the score is
// undefined. Implementations never return errors: failures map to the
// backend's fallback value.
type Judge interface {
	Judge(ctx context.Context, prompt, instruction string) *float64
	Mode() Mode
}

// Tokenizer counts tokens with the judge model's own tokenizer.
type Tokenizer interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

func float(v float64) *float64 {
	return &v
}
