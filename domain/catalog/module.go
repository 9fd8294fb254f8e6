package catalog

import "go.uber.org/fx"

var Module = fx.Module("catalog",
	fx.Provide(NewRepository),
	fx.Provide(func(r *Repository) TxRunner { return r }),
	fx.Provide(NewResolver),
	fx.Provide(func(r *Resolver) ReferenceResolver { return r }),
)
