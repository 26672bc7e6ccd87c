package jobs

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Aleph-Alpha/docsearch/internal/embedding"
	"github.com/Aleph-Alpha/docsearch/internal/logger"
	"github.com/Aleph-Alpha/docsearch/internal/metrics"
	"github.com/Aleph-Alpha/docsearch/internal/rabbit"
	"github.com/Aleph-Alpha/docsearch/internal/storage"
	"github.com/Aleph-Alpha/docsearch/internal/vectorstore"
)

// Extractor turns raw file bytes into ordered text segments.
type Extractor interface {
	Extract(ctx context.Context, format string, data []byte) ([]string, error)
}

// SegmentChunker accumulates segments into index-sized chunks.
type SegmentChunker interface {
	Chunk(segments []string) []string
}

// ChunkEmbedder produces aligned embedding sets for a batch of chunks.
type ChunkEmbedder interface {
	EmbedChunks(ctx context.Context, texts []string) ([]embedding.Set, error)
}

// Resources bundles everything a worker needs to run one job. It is built
// once per process; jobs must never pay for re-initialization.
type Resources struct {
	Files     storage.FileStore
	Extractor Extractor
	Chunker   SegmentChunker
	Embedder  ChunkEmbedder
	Uploader  vectorstore.Uploader
}

// Worker consumes ingestion jobs and runs the extract, chunk, embed and
// upload pipeline for each.
type Worker struct {
	res      Resources
	consumer rabbit.Consumer
	notifier *Notifier
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewWorker wires the worker side of the orchestrator.
func NewWorker(res Resources, consumer rabbit.Consumer, notifier *Notifier, log *logger.Logger, m *metrics.Metrics) *Worker {
	return &Worker{
		res:      res,
		consumer: consumer,
		notifier: notifier,
		log:      log,
		metrics:  m,
	}
}

// Run consumes jobs until the context is cancelled. Jobs are processed
// sequentially; parallelism comes from running more worker processes.
func (w *Worker) Run(ctx context.Context, wg *sync.WaitGroup) {
	msgs := w.consumer.Consume(ctx, wg)

	for msg := range msgs {
		w.metrics.SetInflightJobs("ingest", 1)
		w.handleMessage(ctx, msg)
		w.metrics.SetInflightJobs("ingest", 0)
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg rabbit.Message) {
	var job IngestJob
	if err := json.Unmarshal(msg.Body(), &job); err != nil {
		w.log.Error("discarding malformed job message", err)
		w.metrics.IncrementJobs("malformed")
		if nackErr := msg.NackMsg(false); nackErr != nil {
			w.log.Warn("failed to nack malformed message", nackErr)
		}
		return
	}

	start := time.Now()
	report, err := w.processJob(ctx, job)
	if err != nil {
		w.log.Error("job failed", err, map[string]interface{}{"job_id": job.JobID})
		w.metrics.IncrementJobs("failed")
		if nackErr := msg.NackMsg(false); nackErr != nil {
			w.log.Warn("failed to nack message", nackErr, map[string]interface{}{"job_id": job.JobID})
		}
		return
	}

	w.metrics.IncrementJobs("success")
	w.metrics.AddDocumentsIndexed(report.Processed)
	for _, n := range report.ChunkCounts {
		w.metrics.AddChunksIndexed(n)
	}

	w.log.Info("job processed", nil, map[string]interface{}{
		"job_id":      job.JobID,
		"processed":   report.Processed,
		"failed":      len(report.FailedTitles),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if err := w.notifier.Deliver(ctx, job.CallbackURL, report); err != nil {
		// The index write already happened; losing the report must not
		// send the job to the DLQ for reprocessing.
		w.log.Error("completion report permanently lost", err, map[string]interface{}{"job_id": job.JobID})
	}

	if err := msg.AckMsg(); err != nil {
		w.log.Warn("failed to ack message", err, map[string]interface{}{"job_id": job.JobID})
	}
}

// processJob runs the pipeline with per-file failure isolation: one bad
// document surfaces in the report, it never aborts its siblings.
func (w *Worker) processJob(ctx context.Context, job IngestJob) (Report, error) {
	docs := make([]vectorstore.Document, 0, len(job.Documents))
	now := time.Now().UTC()

	for _, jd := range job.Documents {
		doc := vectorstore.Document{
			Meta: vectorstore.Metadata{
				DocUID:      jd.DocUID,
				GroupUID:    job.GroupUID,
				UserUID:     job.UserUID,
				Title:       jd.Title,
				CategoryID:  jd.CategoryID,
				CreatedAt:   now,
				StoragePath: jd.StorageKey,
			},
		}

		data, err := w.res.Files.Fetch(ctx, jd.StorageKey)
		if err != nil {
			doc.Err = err
			docs = append(docs, doc)
			continue
		}

		segments, err := w.res.Extractor.Extract(ctx, jd.Format, data)
		if err != nil {
			doc.Err = err
			docs = append(docs, doc)
			continue
		}

		chunks := w.res.Chunker.Chunk(segments)
		if len(chunks) > 0 {
			sets, err := w.res.Embedder.EmbedChunks(ctx, chunks)
			if err != nil {
				doc.Err = err
				docs = append(docs, doc)
				continue
			}
			doc.Chunks = chunks
			doc.Embeddings = sets
		}

		docs = append(docs, doc)
	}

	uploadReport, err := w.res.Uploader.Upload(ctx, docs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		JobID:        job.JobID,
		Processed:    uploadReport.Processed,
		ChunkCounts:  uploadReport.ChunkCounts,
		FailedTitles: uploadReport.FailedTitles,
	}, nil
}
