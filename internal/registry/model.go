package registry

import "time"

// Document is a registered document. One row is written per uploaded file
// before the ingestion job is dispatched; search results are enriched from
// these rows afterwards.
type Document struct {
	// UID is the document identifier shared with the vector store payloads.
	UID string `gorm:"primaryKey;type:uuid"`

	// GroupUID scopes the document to its tenant.
	GroupUID string `gorm:"index;not null"`

	// UserUID is the uploader.
	UserUID string `gorm:"type:uuid"`

	Title    string
	FileName string

	// StorageKey locates the raw bytes in object storage.
	StorageKey string

	// Format is the normalized file extension the extractor dispatches on.
	Format string

	CategoryID *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}
