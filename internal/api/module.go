package api

import (
	"go.uber.org/fx"
)

// Module provides the API client and typed services
var Module = fx.Module("api",
	fx.Provide(
		NewClient,
		NewAuthService,
		NewMarketplace,
		NewProviderService,
	),
)
