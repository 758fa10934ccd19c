// Package domain contains the core business entities and domain logic for the Inkwell book catalog.
package domain

import (
	"strings"
	"time"
)

// Book represents a catalogued book.
type Book struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title  string `json:"title"`
	Author string `json:"author"`
	Year   *int   `json:"year,omitempty"` // nil when the publication year is unknown

	// Identity tracks. Exactly one is populated: ISBN for books with a
	// checksum-valid identifier, OtherCode for everything else (internal
	// codes, pre-ISBN stock numbers).
	ISBN      string `json:"isbn,omitempty"`
	OtherCode string `json:"other_code,omitempty"`

	Edition            string `json:"edition,omitempty"`
	BindingType        string `json:"binding_type,omitempty"`
	Classification     string `json:"classification,omitempty"`
	Remarks            string `json:"remarks,omitempty"`
	Imprint            string `json:"imprint,omitempty"`
	PublisherExclusive bool   `json:"publisher_exclusive,omitempty"`

	PublisherID string `json:"publisher_id,omitempty"`
	Publisher   string `json:"publisher,omitempty"` // resolved display name

	Pricings []Pricing `json:"pricings,omitempty"`
}

// Identifier returns whichever identity-track value is populated.
func (b *Book) Identifier() string {
	if b.ISBN != "" {
		return b.ISBN
	}
	return b.OtherCode
}

// Pricing represents one price source attached to a book.
type Pricing struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	Source    string    `json:"source"`
	Rate      float64   `json:"rate"`
	Discount  float64   `json:"discount"` // percent, 0-100
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Publisher represents a canonical publisher record. Drafts carry only a
// free-text name; resolution to one of these happens at commit time.
type Publisher struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// BookDraft is the editable, not-yet-committed form of a book.
type BookDraft struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	// Year uses 0 as the "unset" sentinel while the draft is being edited;
	// SanitizedYear converts it to nil for the wire.
	Year               int    `json:"year,omitempty"`
	ISBN               string `json:"isbn,omitempty"`
	OtherCode          string `json:"other_code,omitempty"`
	Edition            string `json:"edition,omitempty"`
	BindingType        string `json:"binding_type,omitempty"`
	Classification     string `json:"classification,omitempty"`
	Remarks            string `json:"remarks,omitempty"`
	Imprint            string `json:"imprint,omitempty"`
	PublisherExclusive bool   `json:"publisher_exclusive,omitempty"`
}

// SanitizedYear maps the 0 sentinel to nil so an unset year serializes as
// null rather than 0.
func (d *BookDraft) SanitizedYear() *int {
	if d.Year <= 0 {
		return nil
	}
	y := d.Year
	return &y
}

// HasISBNTrack reports whether the draft identifies the book by ISBN.
func (d *BookDraft) HasISBNTrack() bool {
	return strings.TrimSpace(d.ISBN) != ""
}

// HasOtherCodeTrack reports whether the draft identifies the book by an
// opaque code.
func (d *BookDraft) HasOtherCodeTrack() bool {
	return strings.TrimSpace(d.OtherCode) != ""
}

// PricingDraft is the editable price entry submitted alongside a BookDraft.
type PricingDraft struct {
	Source   string  `json:"source" validate:"required"`
	Rate     float64 `json:"rate" validate:"gte=0"`
	Discount float64 `json:"discount" validate:"gte=0,lte=100"`
	Currency string  `json:"currency,omitempty"`
}

// PublisherDraft carries the free-text publisher name entered by the user.
type PublisherDraft struct {
	PublisherName string `json:"publisher_name,omitempty"`
}
