package vectorstore

import (
	"context"
	"time"

	"github.com/Aleph-Alpha/docsearch/internal/embedding"
)

// Named vector spaces of the collection. Every point carries all three.
const (
	DenseSpace  = "dense"
	SparseSpace = "sparse"
	MultiSpace  = "multi"
)

// Retrieval constants for the staged hybrid query.
const (
	// candidateLimit is the per-pass top-K for dense and sparse retrieval,
	// and the truncation limit after fusion.
	candidateLimit = 100

	// finalLimit is the number of results returned after the
	// late-interaction re-rank.
	finalLimit = 10
)

// Payload field keys stored on every point.
const (
	fieldDocUID     = "doc_uid"
	fieldGroupUID   = "group_uid"
	fieldUserUID    = "user_uid"
	fieldCreatedAt  = "created_at"
	fieldCategoryID = "category_id"
	fieldChunkText  = "chunk_text"
)

// Metadata is the document-level identity attached to every chunk's payload.
// It is owned by the document registry; the gateway only reads it.
type Metadata struct {
	DocUID      string
	GroupUID    string
	UserUID     string
	Title       string
	CategoryID  *int64
	CreatedAt   time.Time
	StoragePath string
}

// Document is one upload unit: the metadata, the ordered chunks, and the
// aligned embedding sets. Err marks a document whose extraction or chunking
// failed upstream; such documents are skipped and reported, never uploaded.
type Document struct {
	Meta       Metadata
	Chunks     []string
	Embeddings []embedding.Set
	Err        error
}

// UploadReport summarizes one Upload call.
type UploadReport struct {
	// Processed counts documents whose chunks were uploaded.
	Processed int

	// ChunkCounts maps each processed document's title to the number of
	// chunks indexed for it.
	ChunkCounts map[string]int

	// FailedTitles lists the titles of documents skipped because their
	// extraction or chunking failed.
	FailedTitles []string
}

// QueryFilters scope a hybrid query. GroupUID is the mandatory tenant key;
// a query without it is rejected before any vector store call.
type QueryFilters struct {
	GroupUID    string
	UserUID     string
	From        *time.Time
	To          *time.Time
	CategoryIDs []int64

	// OnlyMine restricts results to points owned by UserUID.
	OnlyMine bool
}

// SearchResult is one entry of the final ranked result list. Document-level
// enrichment (title, storage path) is delegated to the document registry,
// keyed by DocUID.
type SearchResult struct {
	Rank       int
	DocUID     string
	ChunkText  string
	CreatedAt  time.Time
	CategoryID *int64
	OwnerUID   string
	Score      float32
}

// QueryEmbedder computes the embedding set for a query string. Satisfied by
// *embedding.Engine.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, query string) (embedding.Set, error)
}

// Uploader is the ingestion-side capability of the gateway.
type Uploader interface {
	EnsureCollection(ctx context.Context) error
	Upload(ctx context.Context, docs []Document) (UploadReport, error)
}

// Querier is the retrieval-side capability of the gateway.
type Querier interface {
	HybridSearch(ctx context.Context, query string, filters QueryFilters) ([]SearchResult, error)
}
