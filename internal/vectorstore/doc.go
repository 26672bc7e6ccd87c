// Package vectorstore owns the wire contract with the Qdrant vector index.
//
// The Gateway covers the three operations the rest of the system needs:
//
//   - Provisioning: create the collection if absent, with three named vector
//     spaces (dense cosine with scalar quantization, sparse inverted lists,
//     multi-vector with a max-similarity comparator) and payload indexes on
//     the tenant key, creation time, owner and category.
//   - Upload: batched, blocking bulk writes of one point per chunk, skipping
//     and reporting documents whose extraction failed upstream.
//   - Hybrid query: dense and sparse candidate passes fused with reciprocal
//     rank fusion, then re-ranked by the late-interaction multi-vector
//     comparison.
//
// Every stored point carries a non-null group_uid and every query pass is
// restricted by the caller's group_uid. Call sites depend on the Uploader or
// Querier capability interface rather than on *Gateway.
package vectorstore
