package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/docsearch/internal/jobs"
	"github.com/Aleph-Alpha/docsearch/internal/logger"
	"github.com/Aleph-Alpha/docsearch/internal/ticket"
	"github.com/Aleph-Alpha/docsearch/internal/token"
)

// FXModule wires the HTTP edge into Fx and runs the API server.
var FXModule = fx.Module("server",
	fx.Provide(
		NewConfig,
		func(d *jobs.Dispatcher) Dispatcher { return d },
		func(l *ticket.Ledger) TicketConsumer { return l },
		func(s *token.Signer) TokenDecoder { return s },
		NewHandlers,
		NewRouter,
	),
	fx.Invoke(RegisterServerLifecycle),
)

// RegisterServerLifecycle starts the API server in the background and shuts
// it down with the application.
func RegisterServerLifecycle(lc fx.Lifecycle, cfg Config, router *gin.Engine, log *logger.Logger) {
	srv := &http.Server{
		Addr:    cfg.Address,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("api server listening", nil, map[string]interface{}{"address": cfg.Address})
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("api server stopped unexpectedly", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
