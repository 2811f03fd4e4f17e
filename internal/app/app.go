// Package app assembles the dependency graph for CLI commands.
package app

import (
	"github.com/vowhq/vowctl/internal/api"
	"github.com/vowhq/vowctl/internal/config"
	"github.com/vowhq/vowctl/internal/session"
	"go.uber.org/fx"
)

// Run builds the application graph for one command invocation and executes
// the invoke functions. Commands are one-shot, so no lifecycle is started.
func Run(cfg *config.Config, invokes ...any) error {
	options := []fx.Option{
		fx.NopLogger,
		fx.Supply(cfg),
		fx.Provide(
			func(c *config.Config) *config.APIConfig { return &c.API },
			func(c *config.Config) *config.StorageConfig { return &c.Storage },
			func(c *config.Config) *config.CaptureConfig { return &c.Capture },
		),
		session.Module,
		api.Module,
	}
	for _, invoke := range invokes {
		options = append(options, fx.Invoke(invoke))
	}
	return fx.New(options...).Err()
}
