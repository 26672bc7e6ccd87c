package main

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/docsearch/internal/embedding"
	"github.com/Aleph-Alpha/docsearch/internal/jobs"
	"github.com/Aleph-Alpha/docsearch/internal/logger"
	"github.com/Aleph-Alpha/docsearch/internal/metrics"
	"github.com/Aleph-Alpha/docsearch/internal/notify"
	"github.com/Aleph-Alpha/docsearch/internal/rabbit"
	"github.com/Aleph-Alpha/docsearch/internal/registry"
	"github.com/Aleph-Alpha/docsearch/internal/server"
	"github.com/Aleph-Alpha/docsearch/internal/storage"
	"github.com/Aleph-Alpha/docsearch/internal/ticket"
	"github.com/Aleph-Alpha/docsearch/internal/token"
	"github.com/Aleph-Alpha/docsearch/internal/vectorstore"
)

// The API process: accepts document submissions, redeems worker callbacks
// and serves hybrid search. Ingestion itself runs in cmd/worker.
func main() {
	app := fx.New(
		fx.Provide(
			logger.NewConfig,
			ticket.NewConfig,
			registry.NewConfig,
			storage.NewConfig,
			vectorstore.NewConfig,
			token.NewConfig,
			token.NewSigner,
			newPublisherRabbitConfig,
			func(e *embedding.Engine) vectorstore.QueryEmbedder { return e },
		),
		logger.FXModule,
		metrics.FXModule,
		embedding.FXModule,
		vectorstore.FXModule,
		ticket.FXModule,
		registry.FXModule,
		storage.FXModule,
		rabbit.FXModule,
		notify.FXModule,
		jobs.DispatcherFXModule,
		server.FXModule,
	)

	app.Run()
}

// newPublisherRabbitConfig keeps the API side from declaring the queue
// topology; the worker owns it.
func newPublisherRabbitConfig() rabbit.Config {
	cfg := rabbit.NewConfig()
	cfg.Channel.IsConsumer = false
	return cfg
}
