package vectorstore

import (
	"context"
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"
	"golang.org/x/sync/errgroup"

	"github.com/Aleph-Alpha/docsearch/internal/apperr"
)

// HybridSearch runs the staged retrieve-then-rerank query:
//
//  1. Embed the query text into all three representations.
//  2. Run the dense and sparse candidate passes concurrently, each top-K and
//     restricted by the tenant filter.
//  3. Fuse both candidate lists with reciprocal rank fusion.
//  4. Re-rank the fused candidates with the late-interaction multi-vector
//     comparison and return the final top results.
//
// The expensive multi-vector comparison only ever touches the small fused
// candidate set, never the whole collection.
func (g *Gateway) HybridSearch(ctx context.Context, query string, filters QueryFilters) ([]SearchResult, error) {
	filterSet, err := buildQueryFilter(filters)
	if err != nil {
		return nil, err
	}
	baseFilter := buildFilter(filterSet)

	if query == "" {
		return nil, apperr.New(apperr.KindInvalid, "query text cannot be empty")
	}

	set, err := g.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: embedding query: %w", err)
	}

	var denseIDs, sparseIDs []string

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		denseIDs, err = g.candidatePass(egCtx, qdrant.NewQueryDense(set.Dense), DenseSpace, baseFilter)
		return err
	})
	eg.Go(func() error {
		var err error
		sparseIDs, err = g.candidatePass(egCtx, qdrant.NewQuerySparse(set.Sparse.Indices, set.Sparse.Values), SparseSpace, baseFilter)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	fused := reciprocalRankFusion([][]string{denseIDs, sparseIDs}, candidateLimit)
	if len(fused) == 0 {
		return nil, nil
	}

	reranked, err := g.rerankPass(ctx, set.Multi, fused, baseFilter)
	if err != nil {
		return nil, err
	}
	return toSearchResults(reranked), nil
}

// candidatePass runs one filtered top-K retrieval against a single vector
// space and returns the candidate point ids in rank order.
func (g *Gateway) candidatePass(ctx context.Context, query *qdrant.Query, space string, filter *qdrant.Filter) ([]string, error) {
	points, err := g.api.Query(ctx, &qdrant.QueryPoints{
		CollectionName: g.cfg.Collection,
		Query:          query,
		Using:          qdrant.PtrOf(space),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(candidateLimit)),
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: %s candidate pass failed: %w", space, err)
	}

	ids := make([]string, 0, len(points))
	for _, p := range points {
		ids = append(ids, pointIDString(p.GetId()))
	}
	return ids, nil
}

// rerankPass scores the fused candidates with the multi-vector comparator.
// The candidate set is pinned with a HasId condition on top of the tenant
// filter, so the pass can never widen the result set.
func (g *Gateway) rerankPass(ctx context.Context, queryMulti [][]float32, candidateIDs []string, baseFilter *qdrant.Filter) ([]*qdrant.ScoredPoint, error) {
	ids := make([]*qdrant.PointId, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		ids = append(ids, qdrant.NewID(id))
	}

	must := make([]*qdrant.Condition, 0, len(baseFilter.GetMust())+1)
	must = append(must, baseFilter.GetMust()...)
	must = append(must, qdrant.NewHasID(ids...))

	points, err := g.api.Query(ctx, &qdrant.QueryPoints{
		CollectionName: g.cfg.Collection,
		Query:          qdrant.NewQueryMulti(queryMulti),
		Using:          qdrant.PtrOf(MultiSpace),
		Filter:         &qdrant.Filter{Must: must},
		Limit:          qdrant.PtrOf(uint64(finalLimit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: rerank pass failed: %w", err)
	}
	return points, nil
}
