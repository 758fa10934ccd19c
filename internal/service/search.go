package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inkwellapp/inkwell-server/internal/search"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// SearchService bridges the search index with the data store.
type SearchService struct {
	index  *search.SearchIndex
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search runs a full-text query over the catalog.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return s.index.Search(ctx, params)
}

// Suggest returns distinct field values starting with the given prefix.
func (s *SearchService) Suggest(ctx context.Context, field search.SuggestField, prefix string, limit int) ([]string, error) {
	return s.index.Suggest(ctx, field, prefix, limit)
}

// DocumentCount returns the number of indexed books.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// RebuildIndex drops the index and re-indexes every book in the store.
func (s *SearchService) RebuildIndex(ctx context.Context) (int, error) {
	books, err := s.store.ListAllBooks(ctx)
	if err != nil {
		return 0, fmt.Errorf("list books: %w", err)
	}
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}
	if err := s.index.IndexBooks(books); err != nil {
		return 0, fmt.Errorf("reindex books: %w", err)
	}
	s.logger.Info("rebuilt search index", "books", len(books))
	return len(books), nil
}
