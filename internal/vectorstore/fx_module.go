package vectorstore

import (
	"context"

	"go.uber.org/fx"
)

// FXModule wires the vector store gateway into Fx. The collection is
// provisioned on startup so the process never serves queries against a
// missing collection, and the gRPC connection is released on shutdown.
var FXModule = fx.Module("vectorstore",
	fx.Provide(
		NewGateway,
		func(g *Gateway) Uploader { return g },
		func(g *Gateway) Querier { return g },
	),
	fx.Invoke(RegisterGatewayLifecycle),
)

// RegisterGatewayLifecycle provisions the collection on start and closes
// the client on stop.
func RegisterGatewayLifecycle(lc fx.Lifecycle, gateway *Gateway) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return gateway.EnsureCollection(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return gateway.Close()
		},
	})
}
