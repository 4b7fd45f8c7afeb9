package ailink

import "time"

// Config defines judge backend configuration.
//
// It is a self-contained subtree of the application config so drivers can be
// constructed without depending on the rest of the settings.
type Config struct {
	// Backend selects the judge implementation: "local" or "remote".
	Backend string        `mapstructure:"backend"`
	Timeout time.Duration `mapstructure:"timeout"`

	// PromptsDir overrides the embedded judge instruction set.
	PromptsDir string `mapstructure:"prompts_dir"`

	Local  LocalConfig  `mapstructure:"local"`
	Remote RemoteConfig `mapstructure:"remote"`

	Debug DebugConfig `mapstructure:"debug"`
}

// LocalConfig configures the locally hosted model server.
type LocalConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	MaxNewTokens int    `mapstructure:"max_new_tokens"`
}

// RemoteConfig configures the hosted chat-completion provider.
type RemoteConfig struct {
	// Provider is the driver identifier: "openai" or "anthropic".
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// DebugConfig controls diagnostics for raw model output.
type DebugConfig struct {
	RawPreviewBytes int `mapstructure:"raw_preview_bytes"`
}

// Backend identifiers.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Provider identifiers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderLlamaCpp  = "llamacpp"
)

// Defaults applied when a field is unset.
const (
	DefaultTimeout      = 60 * time.Second
	DefaultMaxNewTokens = 5
	DefaultRemoteModel  = "gpt-4-turbo"
	DefaultMaxTokens    = 30
	DefaultPreviewBytes = 200
)
