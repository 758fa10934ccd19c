package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportMapping_Clone_Independent(t *testing.T) {
	m := ImportMapping{"Title": FieldTitle, "Writer": FieldAuthor}
	c := m.Clone()
	c["Writer"] = FieldRemarks

	assert.Equal(t, FieldAuthor, m["Writer"])
	assert.Equal(t, FieldRemarks, c["Writer"])
}

func TestImportMapping_MappedFields(t *testing.T) {
	m := ImportMapping{
		"Title":  FieldTitle,
		"Author": FieldAuthor,
		"Price":  FieldRate,
	}
	fields := m.MappedFields()
	assert.True(t, fields[FieldTitle])
	assert.True(t, fields[FieldRate])
	assert.False(t, fields[FieldISBN])
}

func TestImportResult_Record(t *testing.T) {
	var r ImportResult
	r.Record(1, RowInserted, "")
	r.Record(2, RowPriceAdded, "")
	r.Record(3, RowSkippedConflict, "title differs")
	r.Record(4, RowErrored, "bad year")
	r.Record(5, RowInserted, "")

	assert.Equal(t, 2, r.BooksInserted)
	assert.Equal(t, 1, r.PricesAdded)
	assert.Equal(t, 0, r.PricesUpdated)
	assert.Equal(t, 1, r.SkippedConflict)
	assert.Equal(t, 1, r.RowsErrored)
	assert.Len(t, r.RowLog, 5)
	assert.Equal(t, "title differs", r.RowLog[2].Detail)
}

func TestIsCatalogField(t *testing.T) {
	assert.True(t, IsCatalogField(FieldTitle))
	assert.True(t, IsCatalogField(FieldRate))
	assert.False(t, IsCatalogField(FieldSkip))
	assert.False(t, IsCatalogField(CatalogField("bogus")))
}
