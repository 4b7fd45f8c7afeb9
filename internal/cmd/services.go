package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/promptlens/promptlens/internal/ailink"
	"github.com/promptlens/promptlens/internal/ailink/prompt"
	"github.com/promptlens/promptlens/internal/config"
	"github.com/promptlens/promptlens/internal/core/engine"
	"github.com/promptlens/promptlens/internal/core/grammar"
	"github.com/promptlens/promptlens/internal/core/judge"
	"github.com/promptlens/promptlens/internal/core/lexical"
	"github.com/promptlens/promptlens/internal/core/scorer"
	"github.com/promptlens/promptlens/internal/core/store"
	"github.com/promptlens/promptlens/internal/observability"
)

// services holds the collaborators of one analysis run. They are built once
// from config and released by Close.
type services struct {
	cfg      *config.Config
	logger   observability.Logger
	resolved *ailink.ResolvedProvider
	checker  grammar.Checker
	prompts  prompt.Registry
	judge    judge.Judge
	scorer   *scorer.Scorer
	store    *store.Store
}

// buildServices wires the grammar checker, judge backend and scorer. backend
// overrides judge.backend when non-empty.
func buildServices(ctx context.Context, cfg *config.Config, backend string, logger observability.Logger) (*services, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config not loaded")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	svc := &services{cfg: cfg, logger: logger}

	checker, err := grammar.New(grammar.Options{
		Checker:  cfg.Grammar.Checker,
		BaseURL:  cfg.Grammar.BaseURL,
		Language: cfg.Grammar.Language,
		Timeout:  cfg.Grammar.Timeout,
	})
	if err != nil {
		return nil, err
	}
	svc.checker = checker

	svc.prompts, err = buildPromptRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("load judge instructions: %w", err)
	}

	svc.resolved, err = ailink.NewRegistry(cfg.Judge).Resolve(backend)
	if err != nil {
		return nil, err
	}

	drv := svc.resolved.Driver
	if cfg.Cache.Enabled() {
		db, err := openStore(ctx, cfg)
		if err != nil {
			logger.Warn("Judge cache unavailable, continuing uncached", zap.Error(err))
		} else {
			svc.store = db
			drv = ailink.NewCachedDriver(drv, db, cfg.Cache.JudgeTTL, logger)
		}
	}

	switch svc.resolved.Backend {
	case ailink.BackendLocal:
		svc.judge, err = judge.NewLocal(drv, judge.LocalOptions{
			MaxNewTokens: cfg.Judge.Local.MaxNewTokens,
			PreviewBytes: cfg.Judge.Debug.RawPreviewBytes,
			Logger:       logger,
		})
	case ailink.BackendRemote:
		svc.judge, err = judge.NewRemote(drv, judge.RemoteOptions{
			Model:        svc.resolved.Model,
			Temperature:  cfg.Judge.Remote.Temperature,
			MaxTokens:    cfg.Judge.Remote.MaxTokens,
			PreviewBytes: cfg.Judge.Debug.RawPreviewBytes,
			Logger:       logger,
		})
	default:
		err = fmt.Errorf("unsupported judge backend %q", svc.resolved.Backend)
	}
	if err != nil {
		_ = svc.Close()
		return nil, err
	}

	lex := lexical.New(checker, cfg.Analysis.WCMax, logger)
	svc.scorer, err = scorer.New(svc.judge, lex, svc.prompts, cfg.Analysis.FormalityTarget)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}

	logger.Debug("Judge backend ready",
		zap.String("backend", svc.resolved.Backend),
		zap.String("provider", svc.resolved.ProviderID),
		zap.String("model", svc.resolved.Model),
		zap.String("grammar", checker.Name()),
		zap.Bool("cache", svc.store != nil),
	)
	return svc, nil
}

// analyzer returns a batch analyzer over the wired scorer. Prompts are only
// measured against the context window when the judge exposes a tokenizer.
func (s *services) analyzer(progress engine.Progress) *engine.Analyzer {
	a := &engine.Analyzer{
		Scorer:        s.scorer,
		MaxTokens:     s.cfg.Analysis.ModelMaxTokens,
		Logger:        s.logger,
		ReportSkipped: s.cfg.Analysis.ReportSkipped,
	}
	if tok, ok := s.judge.(judge.Tokenizer); ok {
		a.Tokenizer = tok
	}
	if progress != nil {
		a.Progress = progress
	}
	return a
}

// Close releases the judge cache store, if open.
func (s *services) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Close()
}

func buildPromptRegistry(cfg *config.Config) (prompt.Registry, error) {
	dir := ""
	if cfg != nil {
		dir = strings.TrimSpace(cfg.Judge.PromptsDir)
	}
	return prompt.RegistryFor(dir)
}

// cliLogger returns the CLI logger, or a no-op logger before initialization.
func cliLogger() observability.Logger {
	if observability.CLILogger == nil {
		return zap.NewNop()
	}
	return observability.CLILogger
}
