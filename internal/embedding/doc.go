// Package embedding computes the three vector representations used across
// the index: pooled dense vectors for semantic similarity, BM25 sparse
// vectors for lexical overlap, and per-token multi-vectors for
// late-interaction re-ranking.
//
// The Engine is the public entrypoint. It hides all provider details
// (inference endpoints, HTTP, auth) from the application layer and
// guarantees that the three representations of a chunk sequence stay
// co-indexed:
//
//	engine, err := embedding.NewEngine(embedding.NewConfig())
//	if err != nil {
//		log.Fatal("Failed to create embedding engine", err, nil)
//	}
//	sets, err := engine.EmbedChunks(ctx, chunks)
//
// Each worker process constructs the Engine exactly once at startup and
// calls Warmup to fail fast when a model cannot be reached.
package embedding
