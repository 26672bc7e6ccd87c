// Package chunk turns document text into retrieval-sized chunks.
//
// Two strategies are provided. Chunker is the ingestion-path strategy: it
// greedily accumulates extracted segments until a minimum context length is
// reached, preserving segment order and never re-balancing across chunk
// boundaries. Splitter is the retrieval-time strategy for arbitrary plain
// text: fixed-size character windows with a separator hierarchy and an
// overlap between consecutive chunks.
package chunk
