package cmd

import (
	"context"
	"errors"

	"github.com/fulmenhq/gofulmen/signals"
	"go.uber.org/zap"
)

// withInterrupt returns a context cancelled by the first SIGINT or SIGTERM
// seen by m. After that signal the default handlers are restored, so a
// second Ctrl-C terminates the process. stop releases the listener.
func withInterrupt(parent context.Context, m *signals.Manager) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	m.OnShutdown(func(context.Context) error {
		cliLogger().Warn("Interrupt received, cancelling")
		cancel()
		return nil
	})

	go func() {
		if err := m.Listen(ctx); err != nil && !errors.Is(err, context.Canceled) {
			cliLogger().Warn("Signal listener stopped", zap.Error(err))
		}
		m.Stop()
	}()

	return ctx, func() {
		cancel()
		m.Stop()
	}
}
