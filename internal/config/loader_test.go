package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlens/promptlens/internal/ailink"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	ConfigureEnv(v)
	return v
}

func TestLoad(t *testing.T) {
	t.Run("LoadDefaults", func(t *testing.T) {
		t.Setenv("XDG_DATA_HOME", t.TempDir())

		cfg, err := Load(newViper(t))
		require.NoError(t, err)
		require.NotNil(t, cfg)

		// Verify analysis defaults
		assert.Equal(t, 60, cfg.Analysis.WCMax)
		assert.Equal(t, 0.5, cfg.Analysis.FormalityTarget)
		assert.Equal(t, 2048, cfg.Analysis.ModelMaxTokens)
		assert.True(t, cfg.Analysis.ReportSkipped)

		// Verify judge defaults
		assert.Equal(t, ailink.BackendLocal, cfg.Judge.Backend)
		assert.Equal(t, 60*time.Second, cfg.Judge.Timeout)
		assert.Equal(t, "http://127.0.0.1:8080", cfg.Judge.Local.BaseURL)
		assert.Equal(t, 5, cfg.Judge.Local.MaxNewTokens)
		assert.Equal(t, ailink.ProviderOpenAI, cfg.Judge.Remote.Provider)
		assert.Equal(t, "gpt-4-turbo", cfg.Judge.Remote.Model)
		assert.Equal(t, 0.0, cfg.Judge.Remote.Temperature)
		assert.Equal(t, 30, cfg.Judge.Remote.MaxTokens)

		// Verify grammar defaults
		assert.Equal(t, "languagetool", cfg.Grammar.Checker)
		assert.Equal(t, "en-US", cfg.Grammar.Language)
		assert.Equal(t, 30*time.Second, cfg.Grammar.Timeout)

		// Verify store defaults
		assert.Equal(t, "libsql", cfg.Store.Driver)
		assert.Equal(t, "promptlens.db", filepath.Base(cfg.Store.Path))
		assert.Equal(t, "", cfg.Store.URL)

		// Verify cache defaults
		assert.Equal(t, time.Duration(0), cfg.Cache.JudgeTTL)
		assert.False(t, cfg.Cache.Enabled())

		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Same(t, cfg, GetConfig())
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		t.Setenv("PROMPTLENS_JUDGE_BACKEND", "REMOTE")
		t.Setenv("PROMPTLENS_JUDGE_REMOTE_PROVIDER", "anthropic")
		t.Setenv("PROMPTLENS_JUDGE_REMOTE_MODEL", "claude-3-5-haiku-latest")
		t.Setenv("PROMPTLENS_JUDGE_TIMEOUT", "15s")
		t.Setenv("PROMPTLENS_ANALYSIS_FORMALITY_TARGET", "0.25")
		t.Setenv("PROMPTLENS_ANALYSIS_WC_MAX", "80")
		t.Setenv("PROMPTLENS_CACHE_JUDGE_TTL", "24h")

		cfg, err := Load(newViper(t))
		require.NoError(t, err)

		assert.Equal(t, ailink.BackendRemote, cfg.Judge.Backend)
		assert.Equal(t, ailink.ProviderAnthropic, cfg.Judge.Remote.Provider)
		assert.Equal(t, "claude-3-5-haiku-latest", cfg.Judge.Remote.Model)
		assert.Equal(t, 15*time.Second, cfg.Judge.Timeout)
		assert.Equal(t, 0.25, cfg.Analysis.FormalityTarget)
		assert.Equal(t, 80, cfg.Analysis.WCMax)
		assert.Equal(t, 24*time.Hour, cfg.Cache.JudgeTTL)
		assert.True(t, cfg.Cache.Enabled())
	})

	t.Run("ConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := []byte(`analysis:
  model_max_tokens: 4096
  report_skipped: false
judge:
  local:
    base_url: http://gpu-box:8080
grammar:
  checker: none
`)
		require.NoError(t, os.WriteFile(path, content, 0o600))

		v := newViper(t)
		v.SetConfigFile(path)
		require.NoError(t, v.ReadInConfig())

		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, 4096, cfg.Analysis.ModelMaxTokens)
		assert.False(t, cfg.Analysis.ReportSkipped)
		assert.Equal(t, "http://gpu-box:8080", cfg.Judge.Local.BaseURL)
		assert.Equal(t, "none", cfg.Grammar.Checker)
		// Unset keys keep their defaults.
		assert.Equal(t, 60, cfg.Analysis.WCMax)
	})

	t.Run("RejectsInvalidValues", func(t *testing.T) {
		cases := map[string][2]string{
			"UnknownBackend":       {"judge.backend", "cloud"},
			"UnknownProvider":      {"judge.remote.provider", "xai"},
			"FormalityTargetRange": {"analysis.formality_target", "1.5"},
			"NonPositiveWCMax":     {"analysis.wc_max", "0"},
			"NonPositiveMaxTokens": {"analysis.model_max_tokens", "-1"},
			"UnknownGrammar":       {"grammar.checker", "grammarly"},
			"UnknownLogLevel":      {"logging.level", "loud"},
			"NegativeCacheTTL":     {"cache.judge_ttl", "-1h"},
		}
		for name, tc := range cases {
			t.Run(name, func(t *testing.T) {
				v := newViper(t)
				v.Set(tc[0], tc[1])
				_, err := Load(v)
				require.Error(t, err)
			})
		}
	})

	t.Run("BadDuration", func(t *testing.T) {
		v := newViper(t)
		v.Set("judge.timeout", "soon")
		_, err := Load(v)
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to unmarshal config")
	})

	t.Run("NilViper", func(t *testing.T) {
		_, err := Load(nil)
		require.Error(t, err)
	})
}

func TestDefaultStorePath(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	path := DefaultStorePath()
	require.Equal(t, "promptlens.db", filepath.Base(path))
	require.Equal(t, filepath.Join(filepath.Dir(path), "promptlens.db"), path)
}
