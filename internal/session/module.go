package session

import (
	"github.com/vowhq/vowctl/internal/config"
	"go.uber.org/fx"
)

// Module provides the session store dependencies
var Module = fx.Module("session",
	fx.Provide(
		fx.Annotate(
			func(cfg *config.StorageConfig) (*FileStore, error) {
				return NewFileStore(cfg.Path)
			},
			fx.As(new(Store)),
		),
	),
)
