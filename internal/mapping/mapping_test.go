package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

func TestSuggest_KnownAliases(t *testing.T) {
	headers := []string{"Book Title", "Writer", "Pub Year", "ISBN-13", "List Price", "Disc"}

	m, unmapped := Suggest(headers)

	assert.Empty(t, unmapped)
	assert.Equal(t, domain.FieldTitle, m["Book Title"])
	assert.Equal(t, domain.FieldAuthor, m["Writer"])
	assert.Equal(t, domain.FieldYear, m["Pub Year"])
	assert.Equal(t, domain.FieldISBN, m["ISBN-13"])
	assert.Equal(t, domain.FieldRate, m["List Price"])
	assert.Equal(t, domain.FieldDiscount, m["Disc"])
}

func TestSuggest_TokenContainment(t *testing.T) {
	m, unmapped := Suggest([]string{"Retail Price USD", "Publisher Name (resolved)"})

	assert.Empty(t, unmapped)
	assert.Equal(t, domain.FieldRate, m["Retail Price USD"])
	assert.Equal(t, domain.FieldPublisherName, m["Publisher Name (resolved)"])
}

func TestSuggest_UnknownHeadersReported(t *testing.T) {
	m, unmapped := Suggest([]string{"Title", "Warehouse Bin", "Palette"})

	assert.Equal(t, domain.FieldTitle, m["Title"])
	assert.ElementsMatch(t, []string{"Warehouse Bin", "Palette"}, unmapped)
}

func TestSuggest_FirstHeaderClaimsField(t *testing.T) {
	// Two headers both look like a title; only the first gets it.
	m, unmapped := Suggest([]string{"Title", "Book Title"})

	assert.Equal(t, domain.FieldTitle, m["Title"])
	assert.NotContains(t, m, "Book Title")
	assert.Equal(t, []string{"Book Title"}, unmapped)
}

func TestMatchTemplate_Perfect(t *testing.T) {
	tpl := &domain.ImportTemplate{
		ExpectedHeaders: []string{"Title", "Writer", "Price"},
	}

	result := MatchTemplate([]string{"Title", "Writer", "Price"}, tpl)

	assert.True(t, result.IsMatch)
	assert.Empty(t, result.MissingHeaders)
	assert.Empty(t, result.ExtraHeaders)
}

func TestMatchTemplate_MissingHeaderRejectsWholesale(t *testing.T) {
	tpl := &domain.ImportTemplate{
		ExpectedHeaders: []string{"Title", "Writer", "Price"},
	}

	result := MatchTemplate([]string{"Title", "Price", "Bin"}, tpl)

	assert.False(t, result.IsMatch)
	assert.Equal(t, []string{"Writer"}, result.MissingHeaders)
	assert.Equal(t, []string{"Bin"}, result.ExtraHeaders)
}

func TestMatchTemplate_ExtraHeadersAloneStillMatch(t *testing.T) {
	tpl := &domain.ImportTemplate{
		ExpectedHeaders: []string{"Title", "Price"},
	}

	result := MatchTemplate([]string{"Title", "Price", "Warehouse Bin"}, tpl)

	assert.True(t, result.IsMatch)
	assert.Equal(t, []string{"Warehouse Bin"}, result.ExtraHeaders)
}

func TestSetTarget(t *testing.T) {
	m := domain.ImportMapping{"Title": domain.FieldTitle}

	SetTarget(m, "Price", domain.FieldRate)
	assert.Equal(t, domain.FieldRate, m["Price"])

	// Overwrite wins.
	SetTarget(m, "Price", domain.FieldDiscount)
	assert.Equal(t, domain.FieldDiscount, m["Price"])

	// Skip removes.
	SetTarget(m, "Price", domain.FieldSkip)
	assert.NotContains(t, m, "Price")

	// Empty target behaves like skip.
	SetTarget(m, "Title", "")
	assert.Empty(t, m)
}

func TestCoverage_Complete(t *testing.T) {
	m := domain.ImportMapping{
		"Title":  domain.FieldTitle,
		"Writer": domain.FieldAuthor,
		"Price":  domain.FieldRate,
	}

	report := Coverage(m)

	assert.True(t, report.BookComplete)
	assert.True(t, report.PricingComplete)
	assert.True(t, report.Complete())
	assert.True(t, report.Importable())
	assert.Empty(t, report.DuplicateFields)
}

func TestCoverage_MissingFields(t *testing.T) {
	m := domain.ImportMapping{"Title": domain.FieldTitle}

	report := Coverage(m)

	assert.False(t, report.BookComplete)
	assert.Equal(t, []domain.CatalogField{domain.FieldAuthor}, report.MissingBook)
	assert.False(t, report.PricingComplete)
	assert.Equal(t, []domain.CatalogField{domain.FieldRate}, report.MissingPricing)
	assert.False(t, report.Complete())
}

func TestCoverage_ReportsFanIn(t *testing.T) {
	m := domain.ImportMapping{
		"Title":      domain.FieldTitle,
		"Full Title": domain.FieldTitle,
		"Writer":     domain.FieldAuthor,
		"Price":      domain.FieldRate,
	}

	report := Coverage(m)

	// Fan-in does not break coverage, but it blocks import.
	assert.True(t, report.Complete())
	assert.False(t, report.Importable())
	require.Contains(t, report.DuplicateFields, domain.FieldTitle)
	assert.ElementsMatch(t, []string{"Title", "Full Title"}, report.DuplicateFields[domain.FieldTitle])
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "isbn 13", normalizeHeader(" ISBN-13 "))
	assert.Equal(t, "list price", normalizeHeader("List  Price"))
	assert.Equal(t, "", normalizeHeader("  "))
}
