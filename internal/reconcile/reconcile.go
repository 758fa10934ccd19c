// Package reconcile turns a classification verdict into the bounded set of
// actions a user may take next, and builds the commit payload for whichever
// one they pick.
package reconcile

import (
	"strings"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/isbn"
)

// ValidateDraft runs the pre-submit checks on a draft pair: required
// fields, the exactly-one-identity-track invariant, and ISBN checksum
// validity when the ISBN track is used.
func ValidateDraft(book *domain.BookDraft, pricing *domain.PricingDraft) error {
	if strings.TrimSpace(book.Title) == "" {
		return errors.Validationf("title is required")
	}
	if strings.TrimSpace(book.Author) == "" {
		return errors.Validationf("author is required")
	}

	hasISBN := book.HasISBNTrack()
	hasCode := book.HasOtherCodeTrack()
	switch {
	case hasISBN && hasCode:
		return errors.Validationf("provide either an ISBN or an other code, not both")
	case !hasISBN && !hasCode:
		return errors.Validationf("provide an ISBN or an other code")
	case hasISBN && !isbn.Validate(book.ISBN):
		return errors.Validationf("Please enter a valid ISBN (10 or 13 characters)")
	}

	if pricing != nil {
		if strings.TrimSpace(pricing.Source) == "" {
			return errors.Validationf("pricing source is required")
		}
		if pricing.Rate < 0 {
			return errors.Validationf("rate cannot be negative")
		}
		if pricing.Discount < 0 || pricing.Discount > 100 {
			return errors.Validationf("discount must be between 0 and 100")
		}
	}

	return nil
}

// Machine holds one classified submit attempt. It is created only after a
// successful classification call and discarded once the user picks a
// terminal action; nothing here is persisted.
type Machine struct {
	book      domain.BookDraft
	pricing   domain.PricingDraft
	publisher domain.PublisherDraft
	result    domain.ClassificationResult
}

// New creates a machine for a classified draft.
func New(book domain.BookDraft, pricing domain.PricingDraft, publisher domain.PublisherDraft, result domain.ClassificationResult) *Machine {
	return &Machine{
		book:      book,
		pricing:   pricing,
		publisher: publisher,
		result:    result,
	}
}

// Result returns the classification the machine was built from.
func (m *Machine) Result() domain.ClassificationResult {
	return m.result
}

// Actions returns the legal actions for the current classification:
//
//	NEW                      INSERT, DISCARD
//	DUPLICATE + ADD_PRICE    ADD_PRICE, DISCARD
//	DUPLICATE + UPDATE_PRICE UPDATE_PRICE, DISCARD
//	DUPLICATE + NO_CHANGE    ACKNOWLEDGE
//	CONFLICT                 DISCARD
//
// CONFLICT deliberately has no write action: the only way forward is to
// edit the draft and resubmit for a fresh classification.
func (m *Machine) Actions() []domain.PricingAction {
	switch m.result.BookStatus {
	case domain.BookStatusNew:
		return []domain.PricingAction{domain.ActionInsert, domain.ActionDiscard}
	case domain.BookStatusDuplicate:
		switch m.result.PricingStatus {
		case domain.PricingStatusAddPrice:
			return []domain.PricingAction{domain.ActionAddPrice, domain.ActionDiscard}
		case domain.PricingStatusUpdatePrice:
			return []domain.PricingAction{domain.ActionUpdatePrice, domain.ActionDiscard}
		case domain.PricingStatusNoChange:
			return []domain.PricingAction{domain.ActionAcknowledge}
		}
	case domain.BookStatusConflict:
		return []domain.PricingAction{domain.ActionDiscard}
	}
	return []domain.PricingAction{domain.ActionDiscard}
}

// Allows reports whether the action is legal in the current state.
func (m *Machine) Allows(action domain.PricingAction) bool {
	for _, a := range m.Actions() {
		if a == action {
			return true
		}
	}
	return false
}

// Payload builds the commit request for a write action. DISCARD and
// ACKNOWLEDGE produce no payload (no server call is made for them), and an
// action outside the legal set is rejected.
func (m *Machine) Payload(action domain.PricingAction) (*domain.CommitRequest, error) {
	if !m.Allows(action) {
		return nil, errors.Validationf("action %s is not available for status %s", action, m.result.BookStatus)
	}
	if action == domain.ActionDiscard || action == domain.ActionAcknowledge {
		return nil, nil
	}

	return &domain.CommitRequest{
		Book:          m.book.Payload(),
		Pricing:       m.pricing,
		Publisher:     m.publisher,
		Status:        m.result.BookStatus,
		PricingAction: action,
		BookID:        m.result.Details.BookID,
		PricingID:     m.result.Details.PricingID,
	}, nil
}
