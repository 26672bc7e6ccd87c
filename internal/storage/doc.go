// Package storage persists uploaded document files in an S3-compatible
// object store. The request path saves bytes here so ingestion jobs can
// fetch them later by key; keys are tenant-namespaced and time-ordered.
package storage
