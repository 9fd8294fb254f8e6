package mlmodel

import "go.uber.org/fx"

var Module = fx.Module("mlmodel",
	fx.Provide(NewService),
)
