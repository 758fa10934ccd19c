package domain

// BookStatus is the duplicate-classification verdict for a submitted draft.
type BookStatus string

const (
	BookStatusNew       BookStatus = "NEW"       // No existing record matches
	BookStatusDuplicate BookStatus = "DUPLICATE" // Same book, non-pricing fields agree
	BookStatusConflict  BookStatus = "CONFLICT"  // Same book, non-pricing fields disagree
)

// PricingStatus refines a DUPLICATE verdict with what the pricing side needs.
type PricingStatus string

const (
	PricingStatusAddPrice    PricingStatus = "ADD_PRICE"    // Source not yet priced on the existing book
	PricingStatusUpdatePrice PricingStatus = "UPDATE_PRICE" // Source priced, rate or discount differs
	PricingStatusNoChange    PricingStatus = "NO_CHANGE"    // Identical price already on record
)

// FieldChange records an old/new pair for one field.
type FieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// ClassificationDetails carries the evidence behind a classification.
type ClassificationDetails struct {
	ExistingBook *Book `json:"existing_book,omitempty"`
	BookID       string `json:"book_id,omitempty"`
	PricingID    string `json:"pricing_id,omitempty"`

	// ConflictFields is populated for CONFLICT: non-pricing fields whose
	// values disagree between the draft and the existing record.
	ConflictFields map[string]FieldChange `json:"conflict_fields,omitempty"`

	// Differences is populated for UPDATE_PRICE: pricing fields that would
	// change if the user commits.
	Differences map[string]FieldChange `json:"differences,omitempty"`
}

// ClassificationResult is the outcome of checking a draft against the
// catalog. It lives only for the duration of one submit attempt and is
// never persisted.
type ClassificationResult struct {
	BookStatus    BookStatus            `json:"book_status"`
	PricingStatus PricingStatus         `json:"pricing_status,omitempty"`
	Message       string                `json:"message"`
	Details       ClassificationDetails `json:"details"`
}

// IsConflict reports whether the classification blocks automatic writes.
func (r *ClassificationResult) IsConflict() bool {
	return r.BookStatus == BookStatusConflict
}
