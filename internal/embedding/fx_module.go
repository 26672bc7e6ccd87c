package embedding

import (
	"context"

	"go.uber.org/fx"
)

// FXModule wires the embedding system into Fx.
//
// It provides:
//   - *Config (NewConfig)
//   - *Engine (NewEngine)
//   - Lifecycle hook (RegisterEmbeddingLifecycle)
var FXModule = fx.Module(
	"embedding",

	fx.Provide(
		NewConfig, // -> *Config
		NewEngine, // -> *Engine
	),

	fx.Invoke(RegisterEmbeddingLifecycle),
)

// RegisterEmbeddingLifecycle probes the backing models on startup so the
// process never accepts jobs in a half-initialized state.
func RegisterEmbeddingLifecycle(lc fx.Lifecycle, engine *Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return engine.Warmup(ctx)
		},
	})
}
