package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/promptlens/promptlens/internal/config"
	"github.com/promptlens/promptlens/internal/core"
	"github.com/promptlens/promptlens/internal/core/engine"
	errwrap "github.com/promptlens/promptlens/internal/errors"
	"github.com/promptlens/promptlens/internal/output"
	"github.com/promptlens/promptlens/internal/ui"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <input.json>",
	Short: "Score a batch of prompts",
	Long: `Read a JSON array of prompts and write one score record per prompt.

Each element may be a string or an object with a "prompt" field; anything else
is skipped. Records carry the lexical metrics (PQS, G, F, C, CLS) and the
judged metrics (RCS, FMS, BDS), which are null when the judge gave no answer.

Examples:
  # Score with the local model server
  promptlens analyze prompts.json

  # Score with the remote chat API and write to a custom path
  promptlens analyze prompts.json --backend remote --output scores.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("output", "o", "output.json", "Output JSON file")
	analyzeCmd.Flags().String("summary", "table", "Run summary format: table, markdown, json, none")
	analyzeCmd.Flags().String("backend", "", "Judge backend: local or remote (default from config)")
	analyzeCmd.Flags().Bool("no-progress", false, "Disable the progress bar")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := withRunID(cmd.Context())

	outPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	outPath = strings.TrimSpace(outPath)
	if outPath == "" {
		return errors.New("output path is required")
	}

	summaryValue, err := cmd.Flags().GetString("summary")
	if err != nil {
		return err
	}
	summaryFormat, err := output.ParseFormat(summaryValue)
	if err != nil {
		return err
	}

	backend, err := cmd.Flags().GetString("backend")
	if err != nil {
		return err
	}
	noProgress, err := cmd.Flags().GetBool("no-progress")
	if err != nil {
		return err
	}

	cfg := config.GetConfig()
	if cfg == nil {
		return errors.New("config not loaded")
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errwrap.WrapNotFound(ctx, err, fmt.Sprintf("input file not found: %s", args[0]))
		}
		return fmt.Errorf("read input: %w", err)
	}

	logger := cliLogger()
	svc, err := buildServices(ctx, cfg, backend, logger)
	if err != nil {
		return errwrap.WrapConfigInvalid(ctx, err, "cannot build judge backend")
	}
	defer svc.Close() // nolint:errcheck // best-effort cleanup

	term := ui.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), noProgress)
	var progress engine.Progress
	if ctrl := term.StartProgress("Scoring prompts"); ctrl != nil {
		defer ctrl.Done()
		progress = ctrl
	}

	report, err := svc.analyzer(progress).Run(ctx, raw)
	if err != nil {
		var inputErr *core.InputError
		if errors.As(err, &inputErr) {
			return errwrap.WrapInvalidInput(ctx, err, "input is not a JSON array of prompts")
		}
		if errors.Is(err, context.Canceled) {
			return errwrap.WrapInterrupted(ctx, err, "analysis interrupted, no results written")
		}
		return err
	}

	if err := output.WriteRecordsFile(outPath, report.Records); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	logger.Info("Results written",
		zap.String("run_id", report.RunID),
		zap.String("path", outPath),
		zap.Int("records", len(report.Records)),
	)

	out := cmd.OutOrStdout()
	status := out
	if summaryFormat == output.FormatJSON {
		// Keep stdout parseable.
		status = cmd.ErrOrStderr()
	}
	if n := report.TooLong(); n > 0 {
		fmt.Fprintln(status, term.Warning(fmt.Sprintf("%d prompt(s) exceeded %d tokens; judged metrics left null", n, cfg.Analysis.ModelMaxTokens)))
	}

	rendered, err := output.FormatSummary(summaryFormat, output.Summarize(report, outPath))
	if err != nil {
		return err
	}
	if strings.TrimSpace(rendered) != "" {
		fmt.Fprintln(out, rendered)
	}

	fmt.Fprintln(status, term.Success("Analysis complete! Results saved in "+term.Path(outPath)))
	return nil
}

// withRunID tags ctx with a fresh run identifier unless one is present.
func withRunID(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if errwrap.RunID(ctx) != "" {
		return ctx
	}
	return errwrap.WithRunID(ctx, uuid.NewString())
}
