package main

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/docsearch/internal/chunk"
	"github.com/Aleph-Alpha/docsearch/internal/embedding"
	"github.com/Aleph-Alpha/docsearch/internal/extract"
	"github.com/Aleph-Alpha/docsearch/internal/jobs"
	"github.com/Aleph-Alpha/docsearch/internal/logger"
	"github.com/Aleph-Alpha/docsearch/internal/metrics"
	"github.com/Aleph-Alpha/docsearch/internal/rabbit"
	"github.com/Aleph-Alpha/docsearch/internal/storage"
	"github.com/Aleph-Alpha/docsearch/internal/vectorstore"
)

// The worker process: consumes ingestion jobs and runs extract, chunk,
// embed and upload. All pipeline resources are built once at startup.
func main() {
	app := fx.New(
		fx.Provide(
			logger.NewConfig,
			storage.NewConfig,
			vectorstore.NewConfig,
			newConsumerRabbitConfig,
			newChunker,
			newExtractorRegistry,
			func(e *embedding.Engine) vectorstore.QueryEmbedder { return e },
		),
		logger.FXModule,
		metrics.FXModule,
		embedding.FXModule,
		vectorstore.FXModule,
		storage.FXModule,
		rabbit.FXModule,
		jobs.WorkerFXModule,
	)

	app.Run()
}

func newConsumerRabbitConfig() rabbit.Config {
	cfg := rabbit.NewConfig()
	cfg.Channel.IsConsumer = true
	return cfg
}

func newChunker() *chunk.Chunker {
	return chunk.NewChunker(chunk.NewConfig().MinContextLength)
}

func newExtractorRegistry() *extract.Registry {
	return extract.NewRegistry(extract.NewExecRunner())
}
