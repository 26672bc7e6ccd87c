package embedding

import "context"

// SparseVector is a mostly-zero weighted term vector. Indices are token
// indices into the model vocabulary, Values the corresponding BM25 weights.
// Both slices are co-indexed and of equal length.
type SparseVector struct {
	Indices []uint32  `json:"indices"`
	Values  []float32 `json:"values"`
}

// Set holds the three co-indexed representations of one chunk: a pooled
// dense vector, a sparse lexical vector, and one vector per token for
// late-interaction scoring.
type Set struct {
	Dense  []float32
	Sparse SparseVector
	Multi  [][]float32
}

// DenseProvider computes pooled dense embeddings.
type DenseProvider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// SparseProvider computes BM25 sparse embeddings.
type SparseProvider interface {
	Embed(ctx context.Context, texts []string) ([]SparseVector, error)
}

// MultiProvider computes per-token multi-vector embeddings.
type MultiProvider interface {
	Embed(ctx context.Context, texts []string) ([][][]float32, error)
}
