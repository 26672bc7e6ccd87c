package embedding

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Engine computes the three embedding representations over one shared chunk
// ordering, so the i-th dense, sparse and multi vectors always describe the
// same chunk. The three models are frozen inference services addressed as
// black boxes; the Engine never trains or adapts them.
//
// Construct once per worker process and keep resident: probing and warming
// the backing models is expensive relative to a single embed call.
type Engine struct {
	dense  DenseProvider
	sparse SparseProvider
	multi  MultiProvider
}

// NewEngine constructs an Engine from Config. It validates the config and
// internally constructs the three inference providers. Application code
// should depend on *Engine, not on the provider interfaces.
func NewEngine(cfg *Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("embedding: invalid config: %w", err)
	}

	return &Engine{
		dense:  newDenseProvider(cfg),
		sparse: newSparseProvider(cfg),
		multi:  newMultiProvider(cfg),
	}, nil
}

// NewEngineWithProviders wires explicit providers, used by tests and by
// callers that bring their own transport.
func NewEngineWithProviders(dense DenseProvider, sparse SparseProvider, multi MultiProvider) *Engine {
	return &Engine{dense: dense, sparse: sparse, multi: multi}
}

// EmbedChunks maps a sequence of chunk strings to aligned embedding sets.
// The three representations are computed concurrently but over the same
// input ordering; a length mismatch from any provider is an error, never
// silently truncated.
func (e *Engine) EmbedChunks(ctx context.Context, chunks []string) ([]Set, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	var (
		dense  [][]float32
		sparse []SparseVector
		multi  [][][]float32
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dense, err = e.dense.Embed(gctx, chunks)
		return err
	})
	g.Go(func() error {
		var err error
		sparse, err = e.sparse.Embed(gctx, chunks)
		return err
	})
	g.Go(func() error {
		var err error
		multi, err = e.multi.Embed(gctx, chunks)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(dense) != len(chunks) || len(sparse) != len(chunks) || len(multi) != len(chunks) {
		return nil, fmt.Errorf("embedding: misaligned provider output: dense=%d sparse=%d multi=%d chunks=%d",
			len(dense), len(sparse), len(multi), len(chunks))
	}

	sets := make([]Set, len(chunks))
	for i := range chunks {
		sets[i] = Set{Dense: dense[i], Sparse: sparse[i], Multi: multi[i]}
	}
	return sets, nil
}

// EmbedQuery computes the embedding set for a single query string.
func (e *Engine) EmbedQuery(ctx context.Context, query string) (Set, error) {
	sets, err := e.EmbedChunks(ctx, []string{query})
	if err != nil {
		return Set{}, err
	}
	return sets[0], nil
}

// Warmup probes all three models with a fixed input. A failure means the
// process must not accept jobs; callers treat it as fatal at startup.
func (e *Engine) Warmup(ctx context.Context) error {
	if _, err := e.EmbedChunks(ctx, []string{"warmup"}); err != nil {
		return fmt.Errorf("embedding: model warmup failed: %w", err)
	}
	return nil
}
