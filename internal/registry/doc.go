// Package registry keeps the relational record of uploaded documents.
//
// A row is written per file before its ingestion job is dispatched, so the
// registry reflects what was accepted rather than what was indexed. Search
// results are enriched with titles and file names from these rows.
package registry
