// Package search provides full-text catalog search and autocomplete using
// Bleve.
package search

import (
	"github.com/inkwellapp/inkwell-server/internal/domain"
)

// SearchDocument is the document structure for the Bleve index: one per
// catalogued book, with the publisher name denormalized for search.
type SearchDocument struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher,omitempty"`
	ISBN      string `json:"isbn,omitempty"`
	OtherCode string `json:"other_code,omitempty"`
	Year      int    `json:"year,omitempty"`

	// Timestamps for sorting by recency. Unix millis.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// FromBook builds a search document from a catalog book.
func FromBook(b *domain.Book) *SearchDocument {
	doc := &SearchDocument{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Publisher: b.Publisher,
		ISBN:      b.ISBN,
		OtherCode: b.OtherCode,
		CreatedAt: b.CreatedAt.UnixMilli(),
		UpdatedAt: b.UpdatedAt.UnixMilli(),
	}
	if b.Year != nil {
		doc.Year = *b.Year
	}
	return doc
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"title":      d.Title,
		"author":     d.Author,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Publisher != "" {
		m["publisher"] = d.Publisher
	}
	if d.ISBN != "" {
		m["isbn"] = d.ISBN
	}
	if d.OtherCode != "" {
		m["other_code"] = d.OtherCode
	}
	if d.Year != 0 {
		m["year"] = d.Year
	}

	return m
}
