package registry

import (
	"context"

	"go.uber.org/fx"
)

// FXModule wires the document registry into Fx. Migration runs on start,
// connection supervision runs for the lifetime of the application.
var FXModule = fx.Module("registry",
	fx.Provide(
		NewStore,
		func(s *Store) Registrar { return s },
	),
	fx.Invoke(RegisterStoreLifecycle),
)

// RegisterStoreLifecycle migrates the schema, starts connection monitoring
// and closes the pool on shutdown.
func RegisterStoreLifecycle(lc fx.Lifecycle, store *Store) {
	monitorCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := store.Migrate(); err != nil {
				return err
			}
			go store.MonitorConnection(monitorCtx)
			go store.RetryConnection(monitorCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return store.GracefulShutdown()
		},
	})
}
