package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
)

// uploadBatchSize is the chunk size for batched upserts.
const uploadBatchSize = 200

// Upload indexes every chunk of every healthy document. Documents whose
// extraction or chunking failed upstream (Err set or zero chunks) are
// skipped and their titles recorded in the report; a single bad document
// never aborts its siblings. Point identifiers are UUIDv7, so insertion
// order is recoverable from the id alone.
func (g *Gateway) Upload(ctx context.Context, docs []Document) (UploadReport, error) {
	report := UploadReport{ChunkCounts: make(map[string]int)}

	var points []*qdrant.PointStruct
	for _, doc := range docs {
		if doc.Err != nil || len(doc.Chunks) == 0 {
			report.FailedTitles = append(report.FailedTitles, doc.Meta.Title)
			continue
		}
		if len(doc.Chunks) != len(doc.Embeddings) {
			return UploadReport{}, fmt.Errorf("vectorstore: document %q has %d chunks but %d embedding sets",
				doc.Meta.Title, len(doc.Chunks), len(doc.Embeddings))
		}

		docPoints, err := buildPoints(doc)
		if err != nil {
			return UploadReport{}, err
		}
		points = append(points, docPoints...)

		report.Processed++
		report.ChunkCounts[doc.Meta.Title] = len(doc.Chunks)
	}

	for start := 0; start < len(points); start += uploadBatchSize {
		end := start + uploadBatchSize
		if end > len(points) {
			end = len(points)
		}
		if err := g.upsertBatch(ctx, points[start:end]); err != nil {
			return UploadReport{}, fmt.Errorf("vectorstore: batch upsert failed at [%d:%d]: %w", start, end, err)
		}
	}

	return report, nil
}

// upsertBatch sends a single blocking Upsert (Wait=true) so data is
// persisted before the call returns.
func (g *Gateway) upsertBatch(ctx context.Context, points []*qdrant.PointStruct) error {
	wait := true
	_, err := g.api.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: g.cfg.Collection,
		Points:         points,
		Wait:           &wait,
	})
	return err
}

// buildPoints creates one point per chunk, each carrying the document's
// shared metadata and all three vector representations.
func buildPoints(doc Document) ([]*qdrant.PointStruct, error) {
	points := make([]*qdrant.PointStruct, 0, len(doc.Chunks))
	for i, chunk := range doc.Chunks {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("vectorstore: generating point id: %w", err)
		}

		set := doc.Embeddings[i]
		points = append(points, &qdrant.PointStruct{
			Id: qdrant.NewID(id.String()),
			Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
				DenseSpace:  qdrant.NewVectorDense(set.Dense),
				SparseSpace: qdrant.NewVectorSparse(set.Sparse.Indices, set.Sparse.Values),
				MultiSpace:  qdrant.NewVectorMulti(set.Multi),
			}),
			Payload: qdrant.NewValueMap(buildPayload(doc.Meta, chunk)),
		})
	}
	return points, nil
}

// buildPayload assembles the per-point payload from the document metadata
// and the chunk text. group_uid is never omitted; every stored point must
// carry its tenant key.
func buildPayload(meta Metadata, chunk string) map[string]any {
	payload := map[string]any{
		fieldDocUID:    meta.DocUID,
		fieldGroupUID:  meta.GroupUID,
		fieldUserUID:   meta.UserUID,
		fieldCreatedAt: meta.CreatedAt.UTC().Format(time.RFC3339),
		fieldChunkText: chunk,
	}
	if meta.CategoryID != nil {
		payload[fieldCategoryID] = *meta.CategoryID
	}
	return payload
}
