// Package lexical computes deterministic text-quality metrics: grammar,
// formatting, readability and length/complexity.
package lexical

import (
	"context"
	"math"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/promptlens/promptlens/internal/core/grammar"
	"github.com/promptlens/promptlens/internal/observability"
)

const (
	// DefaultWCMax is the word count at which the length penalty saturates.
	DefaultWCMax = 60

	fogCeiling = 20.0
)

// Quality is the Prompt Quality Score with its components.
type Quality struct {
	PQS float64
	G   float64
	F   float64
	C   float64
	// GrammarFailed is set when the checker errored and G assumed no issues.
	GrammarFailed bool
}

// Metrics computes lexical scores. The grammar checker is the only
// collaborator that performs I/O.
type Metrics struct {
	checker grammar.Checker
	wcMax   float64
	logger  observability.Logger
}

// New returns Metrics using checker for grammar issues. A nil checker reports
// no issues; a non-positive wcMax falls back to DefaultWCMax.
func New(checker grammar.Checker, wcMax int, logger observability.Logger) *Metrics {
	if checker == nil {
		checker = grammar.Noop{}
	}
	if wcMax <= 0 {
		wcMax = DefaultWCMax
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Metrics{checker: checker, wcMax: float64(wcMax), logger: logger}
}

// WordCount returns the number of whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Grammar scores issue density: 1 - issues/words, floored at 0.
//
// A checker failure is logged and counted as zero issues.
func (m *Metrics) Grammar(ctx context.Context, text string) float64 {
	score, _ := m.grammar(ctx, text)
	return score
}

func (m *Metrics) grammar(ctx context.Context, text string) (float64, bool) {
	matches, err := m.checker.Check(ctx, text)
	if err != nil {
		m.logger.Warn("Grammar check failed, counting zero issues",
			zap.String("checker", m.checker.Name()),
			zap.Error(err),
		)
		return GrammarFromIssues(0, WordCount(text)), true
	}
	return GrammarFromIssues(len(matches), WordCount(text)), false
}

// GrammarFromIssues applies the grammar formula to a known issue count.
func GrammarFromIssues(issues, words int) float64 {
	if words < 1 {
		words = 1
	}
	return math.Max(0, 1-float64(issues)/float64(words))
}

// Formatting returns 1, 0.5 or 0. Half a point is lost for uniformly lower-
// or upper-case text and half for missing sentence punctuation.
func Formatting(text string) float64 {
	score := 1.0
	if uniformCase(text) {
		score -= 0.5
	}
	if !strings.ContainsAny(text, ".?!") {
		score -= 0.5
	}
	return math.Max(0, score)
}

// uniformCase reports whether text has cased letters that are all lower or
// all upper case.
func uniformCase(text string) bool {
	var lower, upper bool
	for _, r := range text {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		}
	}
	return lower != upper
}

// Clarity maps Flesch reading ease onto [0, 1].
func Clarity(text string) float64 {
	return ClarityFromReadingEase(FleschReadingEase(text))
}

// ClarityFromReadingEase divides by 100 and clamps to [0, 1].
func ClarityFromReadingEase(fre float64) float64 {
	return clamp01(fre / 100)
}

// ComplexityLength rewards short, simple prompts. The penalty averages the
// word count ratio against WC_MAX with the fog index over 20.
func (m *Metrics) ComplexityLength(text string) float64 {
	penalty := (float64(WordCount(text))/m.wcMax + GunningFog(text)/fogCeiling) / 2
	return math.Max(0, 1-math.Min(penalty, 1))
}

// PQS computes the Prompt Quality Score as the mean of grammar, formatting and
// clarity.
func (m *Metrics) PQS(ctx context.Context, text string) Quality {
	q := Quality{
		F: Formatting(text),
		C: Clarity(text),
	}
	q.G, q.GrammarFailed = m.grammar(ctx, text)
	q.PQS = (q.G + q.F + q.C) / 3
	return q
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
