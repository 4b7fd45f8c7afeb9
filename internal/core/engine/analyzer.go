// Package engine runs the per-prompt scoring pipeline over a batch.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promptlens/promptlens/internal/core"
	"github.com/promptlens/promptlens/internal/core/judge"
	"github.com/promptlens/promptlens/internal/core/scorer"
	errwrap "github.com/promptlens/promptlens/internal/errors"
	"github.com/promptlens/promptlens/internal/observability"
)

// DefaultMaxTokens is the judge model context window used for the length guard.
const DefaultMaxTokens = 2048

// Progress receives batch progress notifications.
type Progress interface {
	Start(total int)
	Advance()
	Done()
}

// Scorer is the scoring surface the analyzer depends on.
type Scorer interface {
	Mode() judge.Mode
	Lexical(ctx context.Context, text string) scorer.Lexical
	Judged(ctx context.Context, text string) scorer.Judged
}

// Analyzer scores prompts sequentially, preserving input order.
type Analyzer struct {
	Scorer Scorer
	// Tokenizer is optional; without it prompts are never measured and
	// token_count/too_long are omitted.
	Tokenizer     judge.Tokenizer
	MaxTokens     int
	Logger        observability.Logger
	Progress      Progress
	ReportSkipped bool
	Clock         func() time.Time
}

// Run extracts prompts from raw and scores each one. Only a malformed
// top-level document is an error, returned before any scoring happens.
func (a *Analyzer) Run(ctx context.Context, raw []byte) (*core.Report, error) {
	if a == nil || a.Scorer == nil {
		return nil, fmt.Errorf("analyzer not configured")
	}

	extraction, err := core.ExtractPrompts(raw)
	if err != nil {
		return nil, err
	}

	runID := errwrap.RunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = errwrap.WithRunID(ctx, runID)
	}

	report := &core.Report{
		RunID:     runID,
		Backend:   string(a.Scorer.Mode()),
		Records:   make([]core.ScoreRecord, 0, len(extraction.Prompts)),
		Skipped:   extraction.Skipped,
		StartedAt: a.now(),
	}

	logger := a.logger()
	if extraction.Skipped > 0 {
		fields := []zap.Field{zap.String("run_id", report.RunID), zap.Int("skipped", extraction.Skipped)}
		if a.ReportSkipped {
			logger.Info("Skipped input elements without a usable prompt", fields...)
		} else {
			logger.Debug("Skipped input elements without a usable prompt", fields...)
		}
	}
	logger.Info("Analyzing prompts",
		zap.String("run_id", report.RunID),
		zap.String("backend", report.Backend),
		zap.Int("prompts", len(extraction.Prompts)),
	)

	if a.Progress != nil {
		a.Progress.Start(len(extraction.Prompts))
		defer a.Progress.Done()
	}

	for i, text := range extraction.Prompts {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis interrupted after %d of %d prompts: %w", i, len(extraction.Prompts), err)
		}
		record, grammarFailed := a.analyze(ctx, i, text)
		report.Records = append(report.Records, record)
		if grammarFailed {
			report.GrammarFailures++
		}
		if a.Progress != nil {
			a.Progress.Advance()
		}
	}

	report.FinishedAt = a.now()
	if report.GrammarFailures > 0 {
		logger.Warn("Grammar checker unavailable for some prompts, their G assumes zero issues",
			zap.String("run_id", report.RunID),
			zap.Int("grammar_failures", report.GrammarFailures),
		)
	}
	logger.Info("Analysis complete",
		zap.String("run_id", report.RunID),
		zap.Int("records", len(report.Records)),
		zap.Int("too_long", report.TooLong()),
		zap.Int("undefined", report.Undefined()),
		zap.Int("grammar_failures", report.GrammarFailures),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

// Analyze runs the pipeline for a single prompt.
func (a *Analyzer) Analyze(ctx context.Context, text string) core.ScoreRecord {
	record, _ := a.analyze(ctx, 0, text)
	return record
}

// analyze scores one prompt and reports whether its grammar check failed.
func (a *Analyzer) analyze(ctx context.Context, index int, text string) (core.ScoreRecord, bool) {
	logger := a.logger()
	record := core.ScoreRecord{Prompt: text}

	measured, skipJudge := a.measure(ctx, index, text, &record)

	lex := a.Scorer.Lexical(ctx, text)
	record.PQS = core.Round3(lex.PQS)
	record.G = core.Round3(lex.G)
	record.F = core.Round3(lex.F)
	record.C = core.Round3(lex.C)
	record.CLS = core.Round3(lex.CLS)

	if skipJudge {
		return record, lex.GrammarFailed
	}
	if measured && record.TooLong != nil && *record.TooLong {
		logger.Warn("Prompt exceeds judge context window, judged scores undefined",
			zap.Int("index", index),
			zap.Int("token_count", *record.TokenCount),
			zap.Int("max_tokens", a.maxTokens()),
		)
		return record, lex.GrammarFailed
	}

	judged := a.Scorer.Judged(ctx, text)
	record.RCS = core.Round3Ptr(judged.RCS)
	record.FMS = core.Round3Ptr(judged.FMS)
	record.BDS = core.Round3Ptr(judged.BDS)
	return record, lex.GrammarFailed
}

// measure fills TokenCount/TooLong when a tokenizer is configured. skipJudge
// is true when measurement failed and judged scores must stay undefined.
func (a *Analyzer) measure(ctx context.Context, index int, text string, record *core.ScoreRecord) (measured, skipJudge bool) {
	if a.Tokenizer == nil {
		return false, false
	}
	count, err := a.Tokenizer.CountTokens(ctx, text)
	if err != nil {
		a.logger().Warn("Token count failed, judged scores undefined",
			zap.Int("index", index),
			zap.Error(err),
		)
		return false, true
	}
	tooLong := count > a.maxTokens()
	record.TokenCount = &count
	record.TooLong = &tooLong
	return true, false
}

func (a *Analyzer) maxTokens() int {
	if a.MaxTokens > 0 {
		return a.MaxTokens
	}
	return DefaultMaxTokens
}

func (a *Analyzer) logger() observability.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return zap.NewNop()
}

func (a *Analyzer) now() time.Time {
	if a.Clock != nil {
		return a.Clock()
	}
	return time.Now().UTC()
}
