package match

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/store/sqlite"
)

func newTestClassifier(t *testing.T) (*Classifier, *sqlite.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewClassifier(s, logger, DefaultOptions()), s
}

func seedBook(t *testing.T, s *sqlite.Store, book *domain.Book) {
	t.Helper()
	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now
	require.NoError(t, s.CreateBook(context.Background(), book))
}

func seedPricing(t *testing.T, s *sqlite.Store, p *domain.Pricing) {
	t.Helper()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	require.NoError(t, s.CreatePricing(context.Background(), p))
}

func TestClassify_New(t *testing.T) {
	c, _ := newTestClassifier(t)

	result, err := c.Classify(context.Background(),
		&domain.BookDraft{Title: "Pale Fire", Author: "Nabokov", ISBN: "9780679723424"},
		&domain.PricingDraft{Source: "ingram", Rate: 24.99},
		nil)
	require.NoError(t, err)

	assert.Equal(t, domain.BookStatusNew, result.BookStatus)
	assert.Empty(t, result.PricingStatus)
	assert.Empty(t, result.Details.BookID)
}

func TestClassify_DuplicateByISBN_AddPrice(t *testing.T) {
	c, s := newTestClassifier(t)
	seedBook(t, s, &domain.Book{ID: "book-1", Title: "Pale Fire", Author: "Nabokov", ISBN: "9780679723424"})

	// Hyphenated input still hits: the ISBN is normalized before lookup.
	result, err := c.Classify(context.Background(),
		&domain.BookDraft{Title: "Pale Fire", Author: "Nabokov", ISBN: "978-0-679-72342-4"},
		&domain.PricingDraft{Source: "ingram", Rate: 24.99},
		nil)
	require.NoError(t, err)

	assert.Equal(t, domain.BookStatusDuplicate, result.BookStatus)
	assert.Equal(t, domain.PricingStatusAddPrice, result.PricingStatus)
	assert.Equal(t, "book-1", result.Details.BookID)
	assert.Empty(t, result.Details.PricingID)
}

func TestClassify_DuplicateByOtherCode(t *testing.T) {
	c, s := newTestClassifier(t)
	seedBook(t, s, &domain.Book{ID: "book-1", Title: "Stock Item", Author: "Anon", OtherCode: "STK-0042"})

	result, err := c.Classify(context.Background(),
		&domain.BookDraft{Title: "Stock Item", Author: "Anon", OtherCode: "STK-0042"},
		&domain.PricingDraft{Source: "ingram", Rate: 5},
		nil)
	require.NoError(t, err)

	assert.Equal(t, domain.BookStatusDuplicate, result.BookStatus)
	assert.Equal(t, "book-1", result.Details.BookID)
}

func TestClassify_DuplicateNoChange(t *testing.T) {
	c, s := newTestClassifier(t)
	seedBook(t, s, &domain.Book{ID: "book-1", Title: "Pale Fire", Author: "Nabokov", ISBN: "9780679723424"})
	seedPricing(t, s, &domain.Pricing{ID: "price-1", BookID: "book-1", Source: "ingram", Rate: 24.99, Discount: 10})

	result, err := c.Classify(context.Background(),
		&domain.BookDraft{Title: "Pale Fire", Author: "Nabokov", ISBN: "9780679723424"},
		&domain.PricingDraft{Source: "ingram", Rate: 24.99, Discount: 10},
		nil)
	require.NoError(t, err)

	assert.Equal(t, domain.BookStatusDuplicate, result.BookStatus)
	assert.Equal(t, domain.PricingStatusNoChange, result.PricingStatus)
	assert.Equal(t, "price-1", result.Details.PricingID)
	assert.Empty(t, result.Details.Differences)
}

func TestClassify_DuplicateUpdatePrice(t *testing.T) {
	c, s := newTestClassifier(t)
	seedBook(t, s, &domain.Book{ID: "book-1", Title: "Pale Fire", Author: "Nabokov", ISBN: "9780679723424"})
	seedPricing(t, s, &domain.Pricing{ID: "price-1", BookID: "book-1", Source: "ingram", Rate: 24.99, Discount: 10})

	result, err := c.Classify(context.Background(),
		&domain.BookDraft{Title: "Pale Fire", Author: "Nabokov", ISBN: "9780679723424"},
		&domain.PricingDraft{Source: "ingram", Rate: 19.99, Discount: 10},
		nil)
	require.NoError(t, err)

	assert.Equal(t, domain.BookStatusDuplicate, result.BookStatus)
	assert.Equal(t, domain.PricingStatusUpdatePrice, result.PricingStatus)
	assert.Equal(t, "price-1", result.Details.PricingID)
	require.Contains(t, result.Details.Differences, "rate")
	assert.Equal(t, "24.99", result.Details.Differences["rate"].Old)
	assert.Equal(t, "19.99", result.Details.Differences["rate"].New)
	assert.NotContains(t, result.Details.Differences, "discount")
}

func TestClassify_Conflict(t *testing.T) {
	c, s := newTestClassifier(t)
	year := 1962
	seedBook(t, s, &domain.Book{
		ID: "book-1", Title: "Pale Fire", Author: "Nabokov",
		ISBN: "9780679723424", Year: &year, Edition: "First",
	})

	result, err := c.Classify(context.Background(),
		&domain.BookDraft{
			Title: "Pale Fire", Author: "Nabokov",
			ISBN: "9780679723424", Year: 1989, Edition: "Vintage",
		},
		&domain.PricingDraft{Source: "ingram", Rate: 24.99},
		nil)
	require.NoError(t, err)

	assert.Equal(t, domain.BookStatusConflict, result.BookStatus)
	assert.Empty(t, result.PricingStatus)
	require.Contains(t, result.Details.ConflictFields, "year")
	assert.Equal(t, "1962", result.Details.ConflictFields["year"].Old)
	assert.Equal(t, "1989", result.Details.ConflictFields["year"].New)
	require.Contains(t, result.Details.ConflictFields, "edition")
}

func TestClassify_EmptyDraftFieldsNeverConflict(t *testing.T) {
	c, s := newTestClassifier(t)
	year := 1962
	seedBook(t, s, &domain.Book{
		ID: "book-1", Title: "Pale Fire", Author: "Nabokov",
		ISBN: "9780679723424", Year: &year, Edition: "First", Imprint: "Putnam",
	})

	// Draft omits year, edition and imprint entirely: no claim, no conflict.
	result, err := c.Classify(context.Background(),
		&domain.BookDraft{Title: "Pale Fire", Author: "Nabokov", ISBN: "9780679723424"},
		&domain.PricingDraft{Source: "ingram", Rate: 24.99},
		nil)
	require.NoError(t, err)

	assert.Equal(t, domain.BookStatusDuplicate, result.BookStatus)
}

func TestClassify_FuzzyTitleMatch(t *testing.T) {
	c, s := newTestClassifier(t)
	seedBook(t, s, &domain.Book{ID: "book-1", Title: "The Master and Margarita", Author: "Bulgakov", OtherCode: "STK-1"})

	// No identifier; leading article and punctuation differences are
	// normalized away.
	result, err := c.Classify(context.Background(),
		&domain.BookDraft{Title: "Master and Margarita", Author: "Bulgakov", OtherCode: "STK-999"},
		&domain.PricingDraft{Source: "ingram", Rate: 12},
		nil)
	require.NoError(t, err)

	assert.Equal(t, domain.BookStatusDuplicate, result.BookStatus)
	assert.Equal(t, "book-1", result.Details.BookID)
}

func TestClassify_FuzzyRequiresAuthorAgreement(t *testing.T) {
	c, s := newTestClassifier(t)
	seedBook(t, s, &domain.Book{ID: "book-1", Title: "Collected Poems", Author: "Auden", OtherCode: "STK-1"})

	result, err := c.Classify(context.Background(),
		&domain.BookDraft{Title: "Collected Poems", Author: "Larkin", OtherCode: "STK-2"},
		&domain.PricingDraft{Source: "ingram", Rate: 12},
		nil)
	require.NoError(t, err)

	assert.Equal(t, domain.BookStatusNew, result.BookStatus)
}

func TestClassify_AmbiguousFuzzyIsNew(t *testing.T) {
	c, s := newTestClassifier(t)
	seedBook(t, s, &domain.Book{ID: "book-1", Title: "Collected Poems", Author: "Auden", OtherCode: "STK-1"})
	seedBook(t, s, &domain.Book{ID: "book-2", Title: "Collected Poems", Author: "Auden", OtherCode: "STK-2"})

	result, err := c.Classify(context.Background(),
		&domain.BookDraft{Title: "Collected Poems", Author: "Auden", OtherCode: "STK-3"},
		&domain.PricingDraft{Source: "ingram", Rate: 12},
		nil)
	require.NoError(t, err)

	// Two equally plausible candidates: never guess.
	assert.Equal(t, domain.BookStatusNew, result.BookStatus)
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Master and Margarita", "master and margarita"},
		{"A  Wrinkle   in Time!", "wrinkle in time"},
		{"Dune", "dune"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeTitle(tt.in), tt.in)
	}
}

func TestNormalizeStringFoldsAccents(t *testing.T) {
	assert.Equal(t, "gabriel garcia marquez", normalizeString("Gabriel García Márquez"))
	assert.Equal(t, "bronte", normalizeString("Brontë"))
}

func TestStringSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, stringSimilarity("dune", "dune"))
	assert.Equal(t, 0.0, stringSimilarity("", "dune"))
	assert.InDelta(t, 0.75, stringSimilarity("dune", "dane"), 0.01)
}
