// Package config provides centralized configuration management for
// PromptLens. Settings are collected by viper and decoded into a typed Config
// with mapstructure.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/promptlens/promptlens/internal/ailink"
	"github.com/promptlens/promptlens/internal/appid"
)

var (
	// appConfig holds the current application configuration
	appConfig *Config
	configMu  sync.RWMutex
)

// SetDefaults registers every known key with its default value. Keys must be
// registered for viper to resolve environment overrides on AllSettings.
func SetDefaults(v *viper.Viper) {
	// Analysis defaults
	v.SetDefault("analysis.wc_max", 60)
	v.SetDefault("analysis.formality_target", 0.5)
	v.SetDefault("analysis.model_max_tokens", 2048)
	v.SetDefault("analysis.report_skipped", true)

	// Judge defaults
	v.SetDefault("judge.backend", ailink.BackendLocal)
	v.SetDefault("judge.timeout", ailink.DefaultTimeout.String())
	v.SetDefault("judge.prompts_dir", "")
	v.SetDefault("judge.local.base_url", "http://127.0.0.1:8080")
	v.SetDefault("judge.local.max_new_tokens", ailink.DefaultMaxNewTokens)
	v.SetDefault("judge.remote.provider", ailink.ProviderOpenAI)
	v.SetDefault("judge.remote.model", ailink.DefaultRemoteModel)
	v.SetDefault("judge.remote.base_url", "")
	v.SetDefault("judge.remote.api_key", "")
	v.SetDefault("judge.remote.temperature", 0.0)
	v.SetDefault("judge.remote.max_tokens", ailink.DefaultMaxTokens)
	v.SetDefault("judge.debug.raw_preview_bytes", ailink.DefaultPreviewBytes)

	// Grammar defaults
	v.SetDefault("grammar.checker", "languagetool")
	v.SetDefault("grammar.base_url", "http://localhost:8081")
	v.SetDefault("grammar.language", "en-US")
	v.SetDefault("grammar.timeout", "30s")

	// Store defaults
	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")

	// Cache defaults
	v.SetDefault("cache.judge_ttl", "0s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
}

// ConfigureEnv binds PROMPTLENS_* environment variables to nested keys, so
// PROMPTLENS_JUDGE_REMOTE_MODEL overrides judge.remote.model.
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(appid.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes the settings held by v into a Config, validates it and makes
// it available through GetConfig.
//
// This function is safe to call multiple times (e.g., for config reload)
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		return nil, fmt.Errorf("viper instance is required")
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToFloat64HookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalize(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	// Store the loaded config
	setConfig(cfg)

	return cfg, nil
}

func normalize(cfg *Config) {
	cfg.Judge.Backend = strings.ToLower(strings.TrimSpace(cfg.Judge.Backend))
	cfg.Judge.Remote.Provider = strings.ToLower(strings.TrimSpace(cfg.Judge.Remote.Provider))
	cfg.Grammar.Checker = strings.ToLower(strings.TrimSpace(cfg.Grammar.Checker))
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))

	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}
}

// Validate checks value ranges and enumerations.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	a := cfg.Analysis
	if a.WCMax <= 0 {
		return fmt.Errorf("analysis.wc_max must be positive, got %d", a.WCMax)
	}
	if a.FormalityTarget < 0 || a.FormalityTarget > 1 {
		return fmt.Errorf("analysis.formality_target must be within [0, 1], got %g", a.FormalityTarget)
	}
	if a.ModelMaxTokens <= 0 {
		return fmt.Errorf("analysis.model_max_tokens must be positive, got %d", a.ModelMaxTokens)
	}

	j := cfg.Judge
	switch j.Backend {
	case ailink.BackendLocal, ailink.BackendRemote:
	default:
		return fmt.Errorf("judge.backend must be %q or %q, got %q", ailink.BackendLocal, ailink.BackendRemote, j.Backend)
	}
	switch j.Remote.Provider {
	case "", ailink.ProviderOpenAI, ailink.ProviderAnthropic:
	default:
		return fmt.Errorf("unsupported judge.remote.provider %q", j.Remote.Provider)
	}
	if j.Timeout < 0 {
		return fmt.Errorf("judge.timeout must not be negative")
	}
	if j.Remote.Temperature < 0 || j.Remote.Temperature > 2 {
		return fmt.Errorf("judge.remote.temperature must be within [0, 2], got %g", j.Remote.Temperature)
	}
	if j.Local.MaxNewTokens < 0 || j.Remote.MaxTokens < 0 {
		return fmt.Errorf("judge token limits must not be negative")
	}

	switch cfg.Grammar.Checker {
	case "", "languagetool", "none", "off":
	default:
		return fmt.Errorf("unsupported grammar.checker %q", cfg.Grammar.Checker)
	}

	if cfg.Cache.JudgeTTL < 0 {
		return fmt.Errorf("cache.judge_ttl must not be negative")
	}

	switch cfg.Logging.Level {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported logging.level %q", cfg.Logging.Level)
	}

	return nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	configDir := gfconfig.GetAppConfigDir(appid.ConfigName)
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}

// DefaultDataDir returns the XDG-compliant data directory for the app.
func DefaultDataDir() string {
	return gfconfig.GetAppDataDir(appid.ConfigName)
}

// DefaultStorePath returns the XDG-compliant path to the database file.
func DefaultStorePath() string {
	dataDir := DefaultDataDir()
	if strings.TrimSpace(dataDir) == "" {
		return "./" + appid.BinaryName + ".db"
	}
	return filepath.Join(dataDir, appid.BinaryName+".db")
}
