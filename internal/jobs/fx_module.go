package jobs

import (
	"context"
	"sync"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/docsearch/internal/chunk"
	"github.com/Aleph-Alpha/docsearch/internal/embedding"
	"github.com/Aleph-Alpha/docsearch/internal/extract"
	"github.com/Aleph-Alpha/docsearch/internal/storage"
	"github.com/Aleph-Alpha/docsearch/internal/ticket"
	"github.com/Aleph-Alpha/docsearch/internal/token"
	"github.com/Aleph-Alpha/docsearch/internal/vectorstore"
)

// DispatcherFXModule wires the API-side dispatch path.
var DispatcherFXModule = fx.Module("jobs-dispatcher",
	fx.Provide(
		NewConfig,
		func(l *ticket.Ledger) TicketCreator { return l },
		func(s *token.Signer) TokenSigner { return s },
		NewDispatcher,
	),
)

// WorkerFXModule wires the worker-side pipeline and runs it for the
// lifetime of the process.
var WorkerFXModule = fx.Module("jobs-worker",
	fx.Provide(
		NewConfig,
		NewNotifier,
		NewResources,
		NewWorker,
	),
	fx.Invoke(RegisterWorkerLifecycle),
)

// NewResources assembles the per-process pipeline dependencies.
func NewResources(files storage.FileStore, reg *extract.Registry, chunker *chunk.Chunker, engine *embedding.Engine, uploader vectorstore.Uploader) Resources {
	return Resources{
		Files:     files,
		Extractor: reg,
		Chunker:   chunker,
		Embedder:  engine,
		Uploader:  uploader,
	}
}

// RegisterWorkerLifecycle starts the consume loop on application start and
// waits for it to drain on shutdown.
func RegisterWorkerLifecycle(lc fx.Lifecycle, worker *Worker) {
	runCtx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				worker.Run(runCtx, &wg)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			wg.Wait()
			return nil
		},
	})
}
