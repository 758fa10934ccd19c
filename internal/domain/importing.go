package domain

import "time"

// CatalogField names a destination a spreadsheet column can map to.
type CatalogField string

const (
	FieldTitle              CatalogField = "title"
	FieldAuthor             CatalogField = "author"
	FieldYear               CatalogField = "year"
	FieldISBN               CatalogField = "isbn"
	FieldOtherCode          CatalogField = "other_code"
	FieldEdition            CatalogField = "edition"
	FieldBindingType        CatalogField = "binding_type"
	FieldClassification     CatalogField = "classification"
	FieldRemarks            CatalogField = "remarks"
	FieldImprint            CatalogField = "imprint"
	FieldPublisherName      CatalogField = "publisher_name"
	FieldPublisherExclusive CatalogField = "publisher_exclusive"
	FieldSource             CatalogField = "source"
	FieldRate               CatalogField = "rate"
	FieldDiscount           CatalogField = "discount"
	FieldCurrency           CatalogField = "currency"

	// FieldSkip is the sentinel a user picks to drop a column; a header set
	// to it is removed from the mapping rather than stored.
	FieldSkip CatalogField = "skip"
)

// CatalogFields lists every mappable destination, in display order.
func CatalogFields() []CatalogField {
	return []CatalogField{
		FieldTitle, FieldAuthor, FieldYear, FieldISBN, FieldOtherCode,
		FieldEdition, FieldBindingType, FieldClassification, FieldRemarks,
		FieldImprint, FieldPublisherName, FieldPublisherExclusive,
		FieldSource, FieldRate, FieldDiscount, FieldCurrency,
	}
}

// IsCatalogField reports whether name is a known destination field
// (FieldSkip excluded).
func IsCatalogField(name CatalogField) bool {
	for _, f := range CatalogFields() {
		if f == name {
			return true
		}
	}
	return false
}

// ImportMapping maps spreadsheet headers to catalog fields. Keys are
// exactly the headers found in the uploaded file; a header maps to at most
// one field.
type ImportMapping map[string]CatalogField

// Clone returns an independent copy of the mapping.
func (m ImportMapping) Clone() ImportMapping {
	out := make(ImportMapping, len(m))
	for h, f := range m {
		out[h] = f
	}
	return out
}

// MappedFields returns the set of fields the mapping targets.
func (m ImportMapping) MappedFields() map[CatalogField]bool {
	out := make(map[CatalogField]bool, len(m))
	for _, f := range m {
		out[f] = true
	}
	return out
}

// ImportTemplate is a saved header mapping for replay against future files.
// Immutable once saved: a changed mapping is a new template, not an edit.
type ImportTemplate struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description,omitempty"`
	Mapping         ImportMapping `json:"mapping"`
	ExpectedHeaders []string      `json:"expected_headers"`
	UsageCount      int           `json:"usage_count"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// TemplateMatchResult reports whether a file's headers satisfy a template.
// Derived per-validation, never stored.
type TemplateMatchResult struct {
	IsMatch        bool     `json:"is_match"`
	MissingHeaders []string `json:"missing_headers,omitempty"` // template headers absent from the file
	ExtraHeaders   []string `json:"extra_headers,omitempty"`   // file headers the template does not name
}

// ImportValidation is the server's answer to an uploaded spreadsheet:
// its headers plus either a template verdict or a heuristic mapping.
type ImportValidation struct {
	Headers    []string `json:"headers"`
	RowCount   int      `json:"row_count"`
	SampleRows [][]string `json:"sample_rows,omitempty"`

	// Template replay path.
	TemplateMatch        bool                 `json:"template_match,omitempty"`
	TemplateMatchDetails *TemplateMatchResult `json:"template_match_details,omitempty"`

	// Heuristic path.
	SuggestedMapping ImportMapping `json:"suggested_mapping,omitempty"`
	UnmappedHeaders  []string      `json:"unmapped_headers,omitempty"`
}

// ImportRowOutcome is what happened to one spreadsheet row.
type ImportRowOutcome string

const (
	RowInserted         ImportRowOutcome = "inserted"
	RowPriceAdded       ImportRowOutcome = "price_added"
	RowPriceUpdated     ImportRowOutcome = "price_updated"
	RowSkippedDuplicate ImportRowOutcome = "skipped_duplicate"
	RowSkippedConflict  ImportRowOutcome = "skipped_conflict"
	RowErrored          ImportRowOutcome = "errored"
)

// ImportRowLog records the outcome of one row for the downloadable log.
type ImportRowLog struct {
	Row     int              `json:"row"` // 1-based data row number, header excluded
	Outcome ImportRowOutcome `json:"outcome"`
	Detail  string           `json:"detail,omitempty"`
}

// ImportResult aggregates the outcome of one bulk import.
type ImportResult struct {
	ImportID         string         `json:"import_id"`
	RowsRead         int            `json:"rows_read"`
	BooksInserted    int            `json:"books_inserted"`
	PricesAdded      int            `json:"prices_added"`
	PricesUpdated    int            `json:"prices_updated"`
	SkippedDuplicate int            `json:"skipped_duplicate"`
	SkippedConflict  int            `json:"skipped_conflict"`
	RowsErrored      int            `json:"rows_errored"`
	RowLog           []ImportRowLog `json:"row_log,omitempty"`
}

// Record tallies one row outcome into the aggregate counts and the log.
func (r *ImportResult) Record(row int, outcome ImportRowOutcome, detail string) {
	switch outcome {
	case RowInserted:
		r.BooksInserted++
	case RowPriceAdded:
		r.PricesAdded++
	case RowPriceUpdated:
		r.PricesUpdated++
	case RowSkippedDuplicate:
		r.SkippedDuplicate++
	case RowSkippedConflict:
		r.SkippedConflict++
	case RowErrored:
		r.RowsErrored++
	}
	r.RowLog = append(r.RowLog, ImportRowLog{Row: row, Outcome: outcome, Detail: detail})
}
