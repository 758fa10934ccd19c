// Package store defines the persistence interface for the Inkwell server.
package store

import (
	"context"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

// SearchIndexer is the interface for updating the search index.
// Store uses this to keep search in sync without depending on search
// implementation details.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, bookID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexBook is a no-op.
func (NoopSearchIndexer) IndexBook(context.Context, *domain.Book) error { return nil }

// DeleteBook is a no-op.
func (NoopSearchIndexer) DeleteBook(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	SetSearchIndexer(indexer SearchIndexer)

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error)
	GetBookByOtherCode(ctx context.Context, code string) (*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, id string) error
	ListBooks(ctx context.Context, params PaginationParams) (*PaginatedResult[*domain.Book], error)
	ListAllBooks(ctx context.Context) ([]*domain.Book, error)
	CountBooks(ctx context.Context) (int, error)

	// Pricings
	CreatePricing(ctx context.Context, p *domain.Pricing) error
	GetPricing(ctx context.Context, id string) (*domain.Pricing, error)
	GetPricingBySource(ctx context.Context, bookID, source string) (*domain.Pricing, error)
	UpdatePricing(ctx context.Context, p *domain.Pricing) error
	ListPricingsForBook(ctx context.Context, bookID string) ([]*domain.Pricing, error)
	DeletePricing(ctx context.Context, id string) error

	// Publishers
	GetPublisher(ctx context.Context, id string) (*domain.Publisher, error)
	FindOrCreatePublisherByName(ctx context.Context, name string) (*domain.Publisher, bool, error)
	ListPublishers(ctx context.Context) ([]*domain.Publisher, error)

	// Import templates
	CreateTemplate(ctx context.Context, tpl *domain.ImportTemplate) error
	GetTemplate(ctx context.Context, id string) (*domain.ImportTemplate, error)
	ListTemplates(ctx context.Context) ([]*domain.ImportTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error
	IncrementTemplateUsage(ctx context.Context, id string) error

	// Import results (kept for the downloadable row log)
	SaveImportResult(ctx context.Context, result *domain.ImportResult) error
	GetImportResult(ctx context.Context, importID string) (*domain.ImportResult, error)
}
