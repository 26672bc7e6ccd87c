package registry

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Aleph-Alpha/docsearch/internal/apperr"
)

// Registrar is the document registry boundary used by the dispatcher and
// the search handler.
type Registrar interface {
	// AddDocuments records the uploaded documents before their ingestion
	// job is dispatched.
	AddDocuments(ctx context.Context, docs []Document) error

	// ExtendMetadata returns the registered documents for the given UIDs,
	// keyed by UID. Unknown UIDs are simply absent from the result.
	ExtendMetadata(ctx context.Context, docUIDs []string) (map[string]Document, error)
}

var _ Registrar = (*Store)(nil)

// AddDocuments inserts one row per uploaded document.
func (s *Store) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	for _, d := range docs {
		if d.UID == "" || d.GroupUID == "" {
			return apperr.New(apperr.KindInvalid, "document registration requires uid and group_uid")
		}
	}

	err := s.DB().WithContext(ctx).Create(&docs).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Wrap(apperr.KindConflict, "document already registered", err)
		}
		return apperr.Wrap(apperr.KindUnavailable, "failed to register documents", err)
	}
	return nil
}

// ExtendMetadata loads registry rows for search result enrichment.
func (s *Store) ExtendMetadata(ctx context.Context, docUIDs []string) (map[string]Document, error) {
	if len(docUIDs) == 0 {
		return map[string]Document{}, nil
	}

	var rows []Document
	err := s.DB().WithContext(ctx).Where("uid IN ?", docUIDs).Find(&rows).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "failed to load document metadata", err)
	}

	out := make(map[string]Document, len(rows))
	for _, row := range rows {
		out[row.UID] = row
	}
	return out, nil
}
