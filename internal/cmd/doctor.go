package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/promptlens/promptlens/internal/ailink"
	"github.com/promptlens/promptlens/internal/ailink/content"
	"github.com/promptlens/promptlens/internal/ailink/driver"
	"github.com/promptlens/promptlens/internal/appid"
	"github.com/promptlens/promptlens/internal/config"
	"github.com/promptlens/promptlens/internal/core/grammar"
	errwrap "github.com/promptlens/promptlens/internal/errors"
	"github.com/promptlens/promptlens/internal/observability"
)

var (
	doctorTimeout   time.Duration
	doctorBackend   string
	doctorInitForce bool
	doctorInitKey   string
)

// probeResult is the outcome of one reachability check.
type probeResult struct {
	OK      bool
	Latency time.Duration
	Detail  string
	Code    string
}

// probeJudge sends a one-token completion through the resolved driver.
func probeJudge(ctx context.Context, resolved *ailink.ResolvedProvider, timeout time.Duration) probeResult {
	if resolved == nil || resolved.Driver == nil {
		return probeResult{Detail: "no judge driver resolved"}
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req := &driver.Request{
		Model:       resolved.Model,
		Messages:    []content.Message{content.TextMessage(content.RoleUser, "Reply with Yes.")},
		Temperature: driver.Float64(0),
		MaxTokens:   driver.Int(1),
		PromptSlug:  "doctor",
	}

	start := time.Now()
	resp, err := resolved.Driver.Complete(ctx, req)
	latency := time.Since(start)
	if err != nil {
		mapped := ailink.MapProviderError(err)
		return probeResult{Latency: latency, Code: mapped.Code, Detail: mapped.Error()}
	}
	return probeResult{OK: true, Latency: latency, Detail: fmt.Sprintf("replied %q", ailink.Preview(resp.Text(), 40))}
}

// probeGrammar runs one check against the grammar service.
func probeGrammar(ctx context.Context, checker grammar.Checker, timeout time.Duration) probeResult {
	if checker == nil {
		return probeResult{Detail: "no grammar checker configured"}
	}
	if _, ok := checker.(grammar.Noop); ok {
		return probeResult{OK: true, Detail: "disabled (every prompt scores G=1)"}
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	matches, err := checker.Check(ctx, "This are a test.")
	latency := time.Since(start)
	if err != nil {
		return probeResult{Latency: latency, Detail: err.Error()}
	}
	return probeResult{OK: true, Latency: latency, Detail: fmt.Sprintf("%d issue(s) on sample", len(matches))}
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long: `Run diagnostic checks: toolchain, config paths, judge backend reachability,
grammar service reachability and the judge cache store.

A degraded backend is reported but does not fail the command; it exits with
a non-zero code only when neither the judge nor the grammar service answers.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := observability.CLILogger
		log.Info("=== " + appid.BinaryName + " doctor ===")
		log.Info("")
		log.Info("Running diagnostic checks...")
		log.Info("")

		allChecks := true
		totalChecks := 6

		// Check 1: Go version and Crucible
		version := crucible.GetVersion()
		log.Info(fmt.Sprintf("[1/%d] Checking runtime... ✅ %s, gofulmen v%s", totalChecks, runtime.Version(), version.Gofulmen),
			zap.String("go_version", runtime.Version()),
			zap.String("crucible_version", version.Crucible))

		// Check 2: Config file
		configPath := config.DefaultConfigPath()
		if configPath == "" {
			log.Warn(fmt.Sprintf("[2/%d] Checking config directory... ⚠️  cannot resolve config directory", totalChecks))
			allChecks = false
		} else {
			log.Info(fmt.Sprintf("[2/%d] Checking config file... ✅ %s (%s)", totalChecks, configPath, existenceStatus(fileExists(configPath))),
				zap.String("config_path", configPath))
		}

		cfg := config.GetConfig()
		if cfg == nil {
			ExitWithCode(log, foundry.ExitConfigInvalid, "Config not loaded", errwrap.NewConfigInvalidError("config not loaded"))
			return
		}

		// Check 3: Judge backend
		judgeOK := false
		resolved, err := ailink.NewRegistry(cfg.Judge).Resolve(doctorBackend)
		if err != nil {
			log.Error(fmt.Sprintf("[3/%d] Checking judge backend... ❌ %v", totalChecks, err))
			allChecks = false
		} else {
			target := fmt.Sprintf("%s via %s", resolved.Backend, resolved.ProviderID)
			if resolved.Model != "" {
				target += " (" + resolved.Model + ")"
			}
			res := probeJudge(ctx, resolved, doctorTimeout)
			if res.OK {
				judgeOK = true
				log.Info(fmt.Sprintf("[3/%d] Checking judge backend... ✅ %s, %s in %s", totalChecks, target, res.Detail, res.Latency.Round(time.Millisecond)),
					zap.String("backend", resolved.Backend),
					zap.Duration("latency", res.Latency))
			} else {
				log.Warn(fmt.Sprintf("[3/%d] Checking judge backend... ⚠️  %s unreachable: %s", totalChecks, target, res.Detail),
					zap.String("backend", resolved.Backend),
					zap.String("code", res.Code))
				allChecks = false
			}
		}

		// Check 4: Grammar service
		grammarOK := false
		checker, err := grammar.New(grammar.Options{
			Checker:  cfg.Grammar.Checker,
			BaseURL:  cfg.Grammar.BaseURL,
			Language: cfg.Grammar.Language,
			Timeout:  cfg.Grammar.Timeout,
		})
		if err != nil {
			log.Error(fmt.Sprintf("[4/%d] Checking grammar service... ❌ %v", totalChecks, err))
			allChecks = false
		} else {
			res := probeGrammar(ctx, checker, doctorTimeout)
			if res.OK {
				grammarOK = true
				log.Info(fmt.Sprintf("[4/%d] Checking grammar service... ✅ %s: %s", totalChecks, checker.Name(), res.Detail),
					zap.Duration("latency", res.Latency))
			} else {
				log.Warn(fmt.Sprintf("[4/%d] Checking grammar service... ⚠️  %s unreachable at %s (prompts will score G=1)", totalChecks, checker.Name(), cfg.Grammar.BaseURL),
					zap.String("error", res.Detail))
				allChecks = false
			}
		}

		// Check 5: Judge instructions
		reg, err := buildPromptRegistry(cfg)
		if err != nil {
			log.Error(fmt.Sprintf("[5/%d] Checking judge instructions... ❌ %v", totalChecks, err))
			allChecks = false
		} else {
			log.Info(fmt.Sprintf("[5/%d] Checking judge instructions... ✅ %d loaded", totalChecks, len(reg.List())))
		}

		// Check 6: Judge cache store
		if !cfg.Cache.Enabled() {
			log.Info(fmt.Sprintf("[6/%d] Checking judge cache... ✅ disabled (cache.judge_ttl=0)", totalChecks))
		} else if db, err := openStore(ctx, cfg); err != nil {
			log.Warn(fmt.Sprintf("[6/%d] Checking judge cache... ⚠️  cannot open store", totalChecks), zap.Error(err))
			allChecks = false
		} else {
			stats, statsErr := db.JudgeCacheStats(ctx)
			_ = db.Close()
			if statsErr != nil {
				log.Warn(fmt.Sprintf("[6/%d] Checking judge cache... ⚠️  cannot read stats", totalChecks), zap.Error(statsErr))
				allChecks = false
			} else {
				log.Info(fmt.Sprintf("[6/%d] Checking judge cache... ✅ %d entries (%s)", totalChecks, stats.Entries, describeStore(cfg)))
			}
		}

		log.Info("")
		if allChecks {
			log.Info(fmt.Sprintf("✅ All checks passed! Your %s installation is healthy.", appid.BinaryName))
		} else {
			log.Warn("⚠️  Some checks failed. Review the output above for details.")
		}
		log.Info("")
		log.Info("=== End Diagnostics ===")

		if !judgeOK && !grammarOK {
			ExitWithCode(log, foundry.ExitExternalServiceUnavailable, "Judge backend and grammar service are unreachable",
				errwrap.WrapExternalService(ctx, errors.New("no scoring collaborator answered"), "doctor checks failed"))
		}
	},
}

func describeStore(cfg *config.Config) string {
	if cfg.Store.URL != "" {
		return cfg.Store.URL + " (remote)"
	}
	absPath, err := filepath.Abs(cfg.Store.Path)
	if err != nil {
		absPath = cfg.Store.Path
	}
	if info, err := os.Stat(absPath); err == nil {
		return fmt.Sprintf("%s, %s", absPath, formatFileSize(info.Size()))
	}
	return absPath
}

var doctorInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.DefaultConfigPath()
		if configPath == "" {
			return fmt.Errorf("config path not resolved")
		}

		if _, err := os.Stat(configPath); err == nil && !doctorInitForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
		}

		apiKey := strings.TrimSpace(doctorInitKey)
		if strings.EqualFold(apiKey, "prompt") {
			key, err := promptForValue(cmd.OutOrStdout(), cmd.InOrStdin(), "Enter remote judge API key (leave blank to skip): ")
			if err != nil {
				return err
			}
			apiKey = key
		}

		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}

		mode := os.FileMode(0644)
		if apiKey != "" {
			mode = 0600
		}

		if err := os.WriteFile(configPath, []byte(buildInitConfig(apiKey)), mode); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}

		observability.CLILogger.Info("Config initialized", zap.String("path", configPath))
		return nil
	},
}

var doctorConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration status and paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := observability.CLILogger
		configPath := config.DefaultConfigPath()
		dataDir := config.DefaultDataDir()

		log.Info("Configuration:")
		log.Info(fmt.Sprintf("  Config file:    %s (%s)", configPath, existenceStatus(fileExists(configPath))))
		if dataDir != "" {
			log.Info(fmt.Sprintf("  Data directory: %s (%s)", dataDir, existenceStatus(fileExists(dataDir))))
		} else {
			log.Info("  Data directory: (not resolved)")
		}

		cfg := config.GetConfig()
		if cfg == nil {
			return errors.New("config not loaded")
		}
		log.Info(fmt.Sprintf("  Judge backend:  %s", cfg.Judge.Backend))
		log.Info(fmt.Sprintf("  Local server:   %s", cfg.Judge.Local.BaseURL))
		log.Info(fmt.Sprintf("  Remote:         %s %s", cfg.Judge.Remote.Provider, cfg.Judge.Remote.Model))
		log.Info(fmt.Sprintf("  Grammar:        %s %s", cfg.Grammar.Checker, cfg.Grammar.BaseURL))
		log.Info(fmt.Sprintf("  Judge cache:    %s", cfg.Cache.JudgeTTL))
		log.Info(fmt.Sprintf("  Database:       %s", describeStore(cfg)))

		log.Info("Environment:")
		prefix := appid.EnvPrefix + "_"
		for _, name := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", prefix + "JUDGE_BACKEND", prefix + "JUDGE_REMOTE_API_KEY"} {
			log.Info(fmt.Sprintf("  %-30s %s", name, envStatus(name)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.AddCommand(doctorInitCmd)
	doctorCmd.AddCommand(doctorConfigCmd)

	doctorCmd.Flags().DurationVar(&doctorTimeout, "timeout", 15*time.Second, "per-check timeout")
	doctorCmd.Flags().StringVar(&doctorBackend, "backend", "", "judge backend to probe: local or remote (default from config)")

	doctorInitCmd.Flags().BoolVar(&doctorInitForce, "force", false, "overwrite existing config file")
	doctorInitCmd.Flags().StringVar(&doctorInitKey, "api-key", "", "set remote judge api key or use 'prompt' to enter")
}

// formatFileSize returns a human-readable file size
func formatFileSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}

func buildInitConfig(apiKey string) string {
	lines := []string{
		fmt.Sprintf("# %s config - created by '%s doctor init'", appid.BinaryName, appid.BinaryName),
		"analysis:",
		"  wc_max: 60",
		"  formality_target: 0.5",
		"  model_max_tokens: 2048",
		"judge:",
		"  backend: local",
		"  local:",
		"    base_url: http://127.0.0.1:8080",
		"  remote:",
		"    provider: openai",
		"    model: gpt-4-turbo",
	}

	if strings.TrimSpace(apiKey) != "" {
		lines = append(lines, fmt.Sprintf("    api_key: %q", apiKey))
	} else {
		lines = append(lines, fmt.Sprintf("    # api_key: \"\"  # Set via %s_JUDGE_REMOTE_API_KEY or OPENAI_API_KEY", appid.EnvPrefix))
	}

	lines = append(lines,
		"grammar:",
		"  checker: languagetool",
		"  base_url: http://localhost:8081",
		"cache:",
		"  judge_ttl: 0s",
	)

	return strings.Join(lines, "\n") + "\n"
}

func promptForValue(w io.Writer, r io.Reader, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return "", err
	}
	reader := bufio.NewReader(r)
	value, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func existenceStatus(exists bool) string {
	if exists {
		return "exists"
	}
	return "missing"
}

func envStatus(name string) string {
	if strings.TrimSpace(os.Getenv(name)) != "" {
		return "(set)"
	}
	return "(not set)"
}
