// Package grammar provides grammar and style checkers used by the lexical
// metrics.
package grammar

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Match is a single issue flagged by a checker.
type Match struct {
	Message string `json:"message"`
	RuleID  string `json:"rule_id,omitempty"`
	Offset  int    `json:"offset"`
	Length  int    `json:"length"`
}

// Checker flags grammar and style issues in English text.
type Checker interface {
	Check(ctx context.Context, text string) ([]Match, error)
	Name() string
}

// Noop reports no issues. It is used when no grammar service is configured.
type Noop struct{}

// Check always returns zero matches.
func (Noop) Check(context.Context, string) ([]Match, error) {
	return nil, nil
}

// Name returns the checker identifier.
func (Noop) Name() string {
	return "none"
}

// Options configures checker construction.
type Options struct {
	Checker  string
	BaseURL  string
	Language string
	Timeout  time.Duration
}

// New builds the checker named by opts.Checker.
func New(opts Options) (Checker, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Checker)) {
	case "", "languagetool":
		client := NewLanguageTool(opts.BaseURL, opts.Language)
		client.Timeout = opts.Timeout
		return client, nil
	case "none", "off":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unsupported grammar checker %q", opts.Checker)
	}
}
