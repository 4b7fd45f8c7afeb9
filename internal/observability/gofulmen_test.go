package observability

import (
	"testing"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCLILogger(t *testing.T) {
	t.Run("DefaultLevel", func(t *testing.T) {
		InitCLILogger("promptlens-test", "info", false)
		require.NotNil(t, CLILogger)
		CLILogger.Info("Test CLI log message", zap.String("test", "value"))
	})

	t.Run("Verbose", func(t *testing.T) {
		logger, err := NewCLILogger("promptlens-test", "warn", true)
		require.NoError(t, err)
		logger.Debug("Debug message", zap.String("mode", "verbose"))
	})

	t.Run("ConfiguredLevel", func(t *testing.T) {
		for _, level := range []string{"trace", "debug", "warn", "error"} {
			logger, err := NewCLILogger("promptlens-test", level, false)
			require.NoError(t, err, level)
			require.NotNil(t, logger)
		}
	})

	t.Run("SatisfiesLoggerInterface", func(t *testing.T) {
		logger, err := NewCLILogger("promptlens-test", "info", false)
		require.NoError(t, err)
		var _ Logger = logger
		var _ Logger = zap.NewNop()
	})
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]string{
		"trace":   "TRACE",
		"DEBUG":   "DEBUG",
		"info":    "INFO",
		"warning": "WARN",
		"error":   "ERROR",
		"":        "INFO",
		"bogus":   "INFO",
	}
	for in, want := range cases {
		require.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestEmbeddedCrucible(t *testing.T) {
	version := crucible.GetVersion()
	require.NotEmpty(t, version.Gofulmen)
	require.NotEmpty(t, version.Crucible)
}
