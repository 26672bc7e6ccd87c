package jobs

// JobDocument identifies one uploaded file inside an ingestion job. The raw
// bytes live in object storage under StorageKey; the message only carries
// the pointers the worker needs.
type JobDocument struct {
	DocUID     string `json:"doc_uid"`
	Title      string `json:"title"`
	StorageKey string `json:"storage_key"`
	Format     string `json:"format"`
	CategoryID *int64 `json:"category_id,omitempty"`
}

// IngestJob is the message published to the broker per submission.
type IngestJob struct {
	JobID       string        `json:"job_id"`
	GroupUID    string        `json:"group_uid"`
	UserUID     string        `json:"user_uid"`
	Ticket      string        `json:"ticket"`
	CallbackURL string        `json:"callback_url"`
	Documents   []JobDocument `json:"documents"`
}

// Report is the completion summary the worker posts back to the API.
type Report struct {
	JobID string `json:"job_id"`

	// Processed is the number of documents indexed successfully.
	Processed int `json:"processed"`

	// ChunkCounts maps document title to the number of chunks indexed.
	ChunkCounts map[string]int `json:"chunk_counts"`

	// FailedTitles lists documents that could not be ingested.
	FailedTitles []string `json:"failed_titles"`
}
