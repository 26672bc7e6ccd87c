package rabbit

import (
	"context"

	"go.uber.org/fx"
)

// FXModule wires the RabbitMQ client into Fx. The connection retry loop is
// started on application start and stopped on shutdown.
var FXModule = fx.Module("rabbit",
	fx.Provide(
		NewClient,
		func(c *Client) Publisher { return c },
		func(c *Client) Consumer { return c },
	),
	fx.Invoke(RegisterRabbitLifecycle),
)

// RegisterRabbitLifecycle starts connection supervision and shuts the
// client down cleanly when the application stops.
func RegisterRabbitLifecycle(lc fx.Lifecycle, client *Client, cfg Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go client.RetryConnection(cfg)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			client.GracefulShutdown()
			return nil
		},
	})
}
