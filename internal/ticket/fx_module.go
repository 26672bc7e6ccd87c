package ticket

import (
	"context"

	"go.uber.org/fx"
)

// FXModule wires the ticket ledger into Fx.
var FXModule = fx.Module("ticket",
	fx.Provide(
		NewLedger,
	),
	fx.Invoke(RegisterLedgerLifecycle),
)

// RegisterLedgerLifecycle closes the Redis connection pool on shutdown.
func RegisterLedgerLifecycle(lc fx.Lifecycle, ledger *Ledger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return ledger.Close()
		},
	})
}
