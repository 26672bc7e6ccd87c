package storage

import (
	"context"

	"go.uber.org/fx"
)

// FXModule wires the object store into Fx and ensures the bucket exists
// before the application starts serving.
var FXModule = fx.Module("storage",
	fx.Provide(
		NewStore,
		func(s *Store) FileStore { return s },
	),
	fx.Invoke(RegisterStoreLifecycle),
)

// RegisterStoreLifecycle provisions the bucket on startup.
func RegisterStoreLifecycle(lc fx.Lifecycle, store *Store) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return store.EnsureBucket(ctx)
		},
	})
}
