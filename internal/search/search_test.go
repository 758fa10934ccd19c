package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) (*SearchIndex, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewSearchIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return index, cleanup
}

func testBook(id, title, author, publisher string) *domain.Book {
	now := time.Now()
	return &domain.Book{
		ID:        id,
		Title:     title,
		Author:    author,
		Publisher: publisher,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestNewSearchIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndexBook(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexBook(context.Background(), testBook("book-1", "The Hobbit", "Tolkien", "Allen & Unwin"))
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearch_TitleMatch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, index.IndexBook(ctx, testBook("book-1", "The Hobbit", "Tolkien", "Allen & Unwin")))
	require.NoError(t, index.IndexBook(ctx, testBook("book-2", "Dune", "Herbert", "Chilton")))

	result, err := index.Search(ctx, SearchParams{Query: "hobbit", Limit: 10})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(result.Hits), 1)
	assert.Equal(t, "book-1", result.Hits[0].ID)
	assert.Equal(t, "The Hobbit", result.Hits[0].Title)
}

func TestSearch_AuthorMatch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, index.IndexBook(ctx, testBook("book-1", "The Hobbit", "Tolkien", "")))
	require.NoError(t, index.IndexBook(ctx, testBook("book-2", "Dune", "Herbert", "")))

	result, err := index.Search(ctx, SearchParams{Query: "herbert", Limit: 10})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(result.Hits), 1)
	assert.Equal(t, "book-2", result.Hits[0].ID)
}

func TestSearch_EmptyQueryMatchesAll(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, index.IndexBook(ctx, testBook("book-1", "The Hobbit", "Tolkien", "")))
	require.NoError(t, index.IndexBook(ctx, testBook("book-2", "Dune", "Herbert", "")))

	result, err := index.Search(ctx, SearchParams{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
}

func TestDeleteBook(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, index.IndexBook(ctx, testBook("book-1", "The Hobbit", "Tolkien", "")))
	require.NoError(t, index.DeleteBook(ctx, "book-1"))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndexBooks_Batch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	books := []*domain.Book{
		testBook("book-1", "The Hobbit", "Tolkien", ""),
		testBook("book-2", "Dune", "Herbert", ""),
		testBook("book-3", "Pale Fire", "Nabokov", ""),
	}
	require.NoError(t, index.IndexBooks(books))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestSuggest(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, index.IndexBook(ctx, testBook("book-1", "Pale Fire", "Nabokov", "Putnam")))
	require.NoError(t, index.IndexBook(ctx, testBook("book-2", "Pnin", "Nabokov", "Doubleday")))
	require.NoError(t, index.IndexBook(ctx, testBook("book-3", "Dune", "Herbert", "Chilton")))

	// Author suggestions deduplicate across books.
	authors, err := index.Suggest(ctx, SuggestAuthor, "nab", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nabokov"}, authors)

	titles, err := index.Suggest(ctx, SuggestTitle, "p", 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Pale Fire", "Pnin"}, titles)

	// Unknown field is rejected.
	_, err = index.Suggest(ctx, SuggestField("isbn"), "97", 10)
	assert.Error(t, err)

	// Empty prefix yields nothing rather than everything.
	none, err := index.Suggest(ctx, SuggestPublisher, "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRebuild(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, index.IndexBook(ctx, testBook("book-1", "The Hobbit", "Tolkien", "")))

	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}
