package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

func validBook() domain.BookDraft {
	return domain.BookDraft{Title: "Pale Fire", Author: "Nabokov", ISBN: "9780679723424"}
}

func validPricing() domain.PricingDraft {
	return domain.PricingDraft{Source: "ingram", Rate: 24.99, Discount: 10}
}

func TestValidateDraft(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.BookDraft, *domain.PricingDraft)
		wantErr bool
	}{
		{"valid isbn track", func(b *domain.BookDraft, p *domain.PricingDraft) {}, false},
		{"valid code track", func(b *domain.BookDraft, p *domain.PricingDraft) {
			b.ISBN = ""
			b.OtherCode = "STK-0042"
		}, false},
		{"missing title", func(b *domain.BookDraft, p *domain.PricingDraft) { b.Title = " " }, true},
		{"missing author", func(b *domain.BookDraft, p *domain.PricingDraft) { b.Author = "" }, true},
		{"both identity tracks", func(b *domain.BookDraft, p *domain.PricingDraft) { b.OtherCode = "STK-1" }, true},
		{"neither identity track", func(b *domain.BookDraft, p *domain.PricingDraft) { b.ISBN = "" }, true},
		{"invalid isbn checksum", func(b *domain.BookDraft, p *domain.PricingDraft) { b.ISBN = "9780679723425" }, true},
		{"missing pricing source", func(b *domain.BookDraft, p *domain.PricingDraft) { p.Source = "" }, true},
		{"negative rate", func(b *domain.BookDraft, p *domain.PricingDraft) { p.Rate = -1 }, true},
		{"discount over 100", func(b *domain.BookDraft, p *domain.PricingDraft) { p.Discount = 101 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := validBook()
			pricing := validPricing()
			tt.mutate(&book, &pricing)

			err := ValidateDraft(&book, &pricing)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestActions_Table(t *testing.T) {
	tests := []struct {
		name          string
		bookStatus    domain.BookStatus
		pricingStatus domain.PricingStatus
		want          []domain.PricingAction
	}{
		{"new", domain.BookStatusNew, "", []domain.PricingAction{domain.ActionInsert, domain.ActionDiscard}},
		{"duplicate add", domain.BookStatusDuplicate, domain.PricingStatusAddPrice, []domain.PricingAction{domain.ActionAddPrice, domain.ActionDiscard}},
		{"duplicate update", domain.BookStatusDuplicate, domain.PricingStatusUpdatePrice, []domain.PricingAction{domain.ActionUpdatePrice, domain.ActionDiscard}},
		{"duplicate no change", domain.BookStatusDuplicate, domain.PricingStatusNoChange, []domain.PricingAction{domain.ActionAcknowledge}},
		{"conflict", domain.BookStatusConflict, "", []domain.PricingAction{domain.ActionDiscard}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(validBook(), validPricing(), domain.PublisherDraft{}, domain.ClassificationResult{
				BookStatus:    tt.bookStatus,
				PricingStatus: tt.pricingStatus,
			})
			assert.Equal(t, tt.want, m.Actions())
		})
	}
}

func TestConflict_OnlyDiscardReachable(t *testing.T) {
	m := New(validBook(), validPricing(), domain.PublisherDraft{}, domain.ClassificationResult{
		BookStatus: domain.BookStatusConflict,
	})

	for _, action := range []domain.PricingAction{
		domain.ActionInsert,
		domain.ActionAddPrice,
		domain.ActionUpdatePrice,
		domain.ActionAcknowledge,
	} {
		assert.False(t, m.Allows(action), "conflict must not allow %s", action)
		_, err := m.Payload(action)
		assert.Error(t, err, "conflict must reject payload for %s", action)
	}
	assert.True(t, m.Allows(domain.ActionDiscard))
}

func TestNoChange_NeverBuildsPayload(t *testing.T) {
	m := New(validBook(), validPricing(), domain.PublisherDraft{}, domain.ClassificationResult{
		BookStatus:    domain.BookStatusDuplicate,
		PricingStatus: domain.PricingStatusNoChange,
	})

	payload, err := m.Payload(domain.ActionAcknowledge)
	require.NoError(t, err)
	assert.Nil(t, payload)

	_, err = m.Payload(domain.ActionAddPrice)
	assert.Error(t, err)
}

func TestPayload_Insert(t *testing.T) {
	book := validBook()
	book.Year = 0 // unset sentinel
	m := New(book, validPricing(), domain.PublisherDraft{PublisherName: "Putnam"}, domain.ClassificationResult{
		BookStatus: domain.BookStatusNew,
	})

	payload, err := m.Payload(domain.ActionInsert)
	require.NoError(t, err)
	require.NotNil(t, payload)

	assert.Equal(t, domain.BookStatusNew, payload.Status)
	assert.Equal(t, domain.ActionInsert, payload.PricingAction)
	assert.Nil(t, payload.Book.Year, "unset year must serialize as null")
	assert.Equal(t, "Putnam", payload.Publisher.PublisherName)
	assert.Empty(t, payload.BookID, "no existing record for INSERT")
	assert.Empty(t, payload.PricingID)
}

func TestPayload_UpdatePriceCarriesIDs(t *testing.T) {
	m := New(validBook(), validPricing(), domain.PublisherDraft{}, domain.ClassificationResult{
		BookStatus:    domain.BookStatusDuplicate,
		PricingStatus: domain.PricingStatusUpdatePrice,
		Details: domain.ClassificationDetails{
			BookID:    "book-1",
			PricingID: "price-1",
		},
	})

	payload, err := m.Payload(domain.ActionUpdatePrice)
	require.NoError(t, err)
	assert.Equal(t, "book-1", payload.BookID)
	assert.Equal(t, "price-1", payload.PricingID)
}

func TestPayload_DiscardIsNil(t *testing.T) {
	m := New(validBook(), validPricing(), domain.PublisherDraft{}, domain.ClassificationResult{
		BookStatus: domain.BookStatusNew,
	})

	payload, err := m.Payload(domain.ActionDiscard)
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestPayload_YearSanitized(t *testing.T) {
	book := validBook()
	book.Year = 1962
	m := New(book, validPricing(), domain.PublisherDraft{}, domain.ClassificationResult{
		BookStatus: domain.BookStatusNew,
	})

	payload, err := m.Payload(domain.ActionInsert)
	require.NoError(t, err)
	require.NotNil(t, payload.Book.Year)
	assert.Equal(t, 1962, *payload.Book.Year)
}
