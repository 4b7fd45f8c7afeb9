package config

import (
	"time"

	"github.com/promptlens/promptlens/internal/ailink"
)

// Config represents the complete application configuration.
//
// Values are layered by viper: built-in defaults, then the user config file
// (XDG config dir, ./config or --config), then PROMPTLENS_* environment
// variables.
type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Judge    ailink.Config  `mapstructure:"judge"`
	Grammar  GrammarConfig  `mapstructure:"grammar"`
	Store    StoreConfig    `mapstructure:"store"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AnalysisConfig contains scoring parameters.
type AnalysisConfig struct {
	// WCMax is the word count at which the length penalty saturates.
	WCMax int `mapstructure:"wc_max"`

	// FormalityTarget is the neutral register the remote judge's formality
	// rating is compared against.
	FormalityTarget float64 `mapstructure:"formality_target"`

	// ModelMaxTokens is the context window used by the too-long guard.
	ModelMaxTokens int `mapstructure:"model_max_tokens"`

	// ReportSkipped logs the count of skipped input elements at INFO.
	ReportSkipped bool `mapstructure:"report_skipped"`
}

// GrammarConfig configures the grammar checking service.
type GrammarConfig struct {
	// Checker selects the implementation: "languagetool" or "none".
	Checker  string        `mapstructure:"checker"`
	BaseURL  string        `mapstructure:"base_url"`
	Language string        `mapstructure:"language"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// StoreConfig contains database configuration for libsql/Turso
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// CacheConfig contains judge response cache configuration.
type CacheConfig struct {
	// JudgeTTL is how long successful judge completions are reused. Zero
	// disables the cache and the store is never opened.
	JudgeTTL time.Duration `mapstructure:"judge_ttl"`
}

// Enabled reports whether the judge cache is active.
func (c CacheConfig) Enabled() bool {
	return c.JudgeTTL > 0
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`
}
