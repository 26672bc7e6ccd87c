// Package jobs orchestrates document ingestion.
//
// The API-side Dispatcher persists uploads, registers documents, issues the
// idempotency ticket and publishes one job message per submission. The
// worker-side Worker consumes those messages and runs extract, chunk, embed
// and upload with per-file failure isolation, then posts the completion
// report to the signed callback URL.
package jobs
