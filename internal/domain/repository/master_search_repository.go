package repository

import (
	"context"

	"masters-marketplace/internal/domain/entity"
)

// MasterSearchRepository is the search engine holding one document per indexable master.
type MasterSearchRepository interface {
	EnsureIndex(ctx context.Context) error
	Upsert(ctx context.Context, doc *entity.MasterDocument) error
	// Delete removes a document; a missing document is not an error.
	Delete(ctx context.Context, id uint) error
	// DeleteStale removes documents with fromID <= id (<= toID when set) whose id is not in keep.
	DeleteStale(ctx context.Context, fromID uint, toID *uint, keep []uint) error
	Search(ctx context.Context, filter entity.MasterSearchFilter) (*entity.MasterSearchResult, error)
}

// IndexRetryRepository holds master ids whose index update failed.
type IndexRetryRepository interface {
	Push(ctx context.Context, ids ...uint) error
	Pop(ctx context.Context, n int) ([]uint, error)
}
