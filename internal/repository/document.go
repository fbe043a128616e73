package repository

import (
	"context"
	"errors"
	"math"

	"docvault/internal/model"
	"docvault/internal/query"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// DocumentRepository defines data access for document aggregates (document + tags).
// No business logic here — strictly persistence operations.
type DocumentRepository interface {
	// Save inserts the document and its tags atomically. It assigns the ID when empty
	// and sets CreatedAt/UpdatedAt. The returned document reflects the stored state.
	Save(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document with its tags, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// FindPage returns the documents matching the predicate, newest first.
	FindPage(ctx context.Context, pred query.Predicate, pr PageRequest) (*Page[model.Document], error)

	// DeleteByID removes a document; its tags go with it. Missing rows are not an error.
	DeleteByID(ctx context.Context, id string) error

	// ExistsByStoragePath reports whether any document references the object path.
	ExistsByStoragePath(ctx context.Context, path string) (bool, error)
}

// PageRequest is a zero-based page number and a page size.
type PageRequest struct {
	Page int
	Size int
}

// Offset is the number of rows skipped before this page. ok is false when Page*Size
// does not fit in an int64; such a page lies past any result set.
func (p PageRequest) Offset() (offset int64, ok bool) {
	if p.Size > 0 && int64(p.Page) > math.MaxInt64/int64(p.Size) {
		return 0, false
	}
	return int64(p.Page) * int64(p.Size), true
}

// Page is a generic pagination result wrapper.
type Page[T any] struct {
	Items      []T
	Page       int
	Size       int
	TotalItems int64
}

// TotalPages is ceil(TotalItems/Size).
func (p *Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalItems + int64(p.Size) - 1) / int64(p.Size))
}

// CurrentItems is the number of items in this page.
func (p *Page[T]) CurrentItems() int {
	return len(p.Items)
}
