// Package scorer combines lexical metrics with judged probes into the full set
// of per-prompt scores.
package scorer

import (
	"context"
	"fmt"
	"math"

	"github.com/promptlens/promptlens/internal/ailink/prompt"
	"github.com/promptlens/promptlens/internal/core/judge"
	"github.com/promptlens/promptlens/internal/core/lexical"
)

// DefaultFormalityTarget is the neutral formality level.
const DefaultFormalityTarget = 0.5

// Lexical holds the always-defined scores.
type Lexical struct {
	lexical.Quality
	CLS float64
}

// Judged holds the model-judged scores; nil means undefined.
type Judged struct {
	RCS *float64
	FMS *float64
	BDS *float64
}

// Scorer computes lexical and judged scores for a prompt.
type Scorer struct {
	judge           judge.Judge
	lexical         *lexical.Metrics
	instructions    map[prompt.Probe]string
	formalityTarget float64
}

// New resolves the probe instructions for the judge's mode from reg.
func New(j judge.Judge, lex *lexical.Metrics, reg prompt.Registry, formalityTarget float64) (*Scorer, error) {
	if j == nil {
		return nil, fmt.Errorf("scorer requires a judge")
	}
	if lex == nil {
		lex = lexical.New(nil, 0, nil)
	}
	if formalityTarget < 0 || formalityTarget > 1 {
		return nil, fmt.Errorf("formality target %v outside [0, 1]", formalityTarget)
	}

	prompts, err := prompt.Instructions(reg, string(j.Mode()))
	if err != nil {
		return nil, fmt.Errorf("resolve %s instructions: %w", j.Mode(), err)
	}
	instructions := make(map[prompt.Probe]string, len(prompts))
	for probe, p := range prompts {
		instructions[probe] = p.Instruction()
	}

	return &Scorer{
		judge:           j,
		lexical:         lex,
		instructions:    instructions,
		formalityTarget: formalityTarget,
	}, nil
}

// Mode reports the judge mode in use.
func (s *Scorer) Mode() judge.Mode {
	return s.judge.Mode()
}

// Instruction returns the instruction text used for probe.
func (s *Scorer) Instruction(probe prompt.Probe) string {
	return s.instructions[probe]
}

// Relevance scores whether the prompt carries enough context.
func (s *Scorer) Relevance(ctx context.Context, text string) *float64 {
	return s.judge.Judge(ctx, text, s.instructions[prompt.ProbeRelevance])
}

// FormalityMismatch scores distance from a neutral register. Local judges
// answer the mismatch question directly; remote judges rate formality and the
// mismatch is |rating - target|.
func (s *Scorer) FormalityMismatch(ctx context.Context, text string) *float64 {
	score := s.judge.Judge(ctx, text, s.instructions[prompt.ProbeFormality])
	if score == nil || s.judge.Mode() == judge.ModeLocal {
		return score
	}
	mismatch := math.Abs(*score - s.formalityTarget)
	return &mismatch
}

// Bias scores implicit or explicit bias; higher is more biased.
func (s *Scorer) Bias(ctx context.Context, text string) *float64 {
	return s.judge.Judge(ctx, text, s.instructions[prompt.ProbeBias])
}

// Lexical computes the deterministic scores.
func (s *Scorer) Lexical(ctx context.Context, text string) Lexical {
	return Lexical{
		Quality: s.lexical.PQS(ctx, text),
		CLS:     s.lexical.ComplexityLength(text),
	}
}

// Judged runs the three probes in order: relevance, formality, bias.
func (s *Scorer) Judged(ctx context.Context, text string) Judged {
	return Judged{
		RCS: s.Relevance(ctx, text),
		FMS: s.FormalityMismatch(ctx, text),
		BDS: s.Bias(ctx, text),
	}
}
