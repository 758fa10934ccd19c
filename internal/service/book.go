// Package service contains the business logic between the HTTP layer and
// the store.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/isbn"
	"github.com/inkwellapp/inkwell-server/internal/match"
	"github.com/inkwellapp/inkwell-server/internal/reconcile"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// BookService manages catalog books: classification, commits and reads.
type BookService struct {
	store      store.Store
	classifier *match.Classifier
	logger     *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(s store.Store, classifier *match.Classifier, logger *slog.Logger) *BookService {
	return &BookService{
		store:      s,
		classifier: classifier,
		logger:     logger,
	}
}

// Classify validates a draft pair and runs the duplicate cascade against
// the catalog. The result is returned to the caller and never persisted.
func (s *BookService) Classify(ctx context.Context, book *domain.BookDraft, pricing *domain.PricingDraft, publisher *domain.PublisherDraft) (*domain.ClassificationResult, error) {
	if err := reconcile.ValidateDraft(book, pricing); err != nil {
		return nil, err
	}
	return s.classifier.Classify(ctx, book, pricing, publisher)
}

// Commit executes the write a user picked after classification.
func (s *BookService) Commit(ctx context.Context, req *domain.CommitRequest) (*domain.CommitResult, error) {
	switch req.PricingAction {
	case domain.ActionInsert:
		return s.insertBook(ctx, req)
	case domain.ActionAddPrice:
		return s.addPrice(ctx, req)
	case domain.ActionUpdatePrice:
		return s.updatePrice(ctx, req)
	default:
		return nil, errors.Validationf("pricing action %q is not a commit action", req.PricingAction)
	}
}

// insertBook creates a new book with its first price record.
func (s *BookService) insertBook(ctx context.Context, req *domain.CommitRequest) (*domain.CommitResult, error) {
	now := time.Now()
	book := &domain.Book{
		ID:                 id.MustGenerate(id.PrefixBook),
		Title:              req.Book.Title,
		Author:             req.Book.Author,
		Year:               req.Book.Year,
		ISBN:               req.Book.ISBN,
		OtherCode:          req.Book.OtherCode,
		Edition:            req.Book.Edition,
		BindingType:        req.Book.BindingType,
		Classification:     req.Book.Classification,
		Remarks:            req.Book.Remarks,
		Imprint:            req.Book.Imprint,
		PublisherExclusive: req.Book.PublisherExclusive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	// Identifiers are stored in canonical form.
	if book.ISBN != "" {
		book.ISBN = isbn.Normalize(book.ISBN)
	}

	if req.Publisher.PublisherName != "" {
		pub, created, err := s.store.FindOrCreatePublisherByName(ctx, req.Publisher.PublisherName)
		if err != nil {
			return nil, fmt.Errorf("resolve publisher: %w", err)
		}
		book.PublisherID = pub.ID
		book.Publisher = pub.Name
		if created {
			s.logger.Info("created publisher", "publisher_id", pub.ID, "name", pub.Name)
		}
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, err
	}

	pricing := &domain.Pricing{
		ID:        id.MustGenerate(id.PrefixPricing),
		BookID:    book.ID,
		Source:    req.Pricing.Source,
		Rate:      req.Pricing.Rate,
		Discount:  req.Pricing.Discount,
		Currency:  req.Pricing.Currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreatePricing(ctx, pricing); err != nil {
		return nil, fmt.Errorf("create pricing: %w", err)
	}

	s.logger.Info("inserted book", "book_id", book.ID, "title", book.Title)

	return &domain.CommitResult{BookID: book.ID, PricingID: pricing.ID}, nil
}

// addPrice attaches a new price source to an existing book.
func (s *BookService) addPrice(ctx context.Context, req *domain.CommitRequest) (*domain.CommitResult, error) {
	if req.BookID == "" {
		return nil, errors.Validationf("book id is required for ADD_PRICE")
	}
	book, err := s.store.GetBook(ctx, req.BookID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	pricing := &domain.Pricing{
		ID:        id.MustGenerate(id.PrefixPricing),
		BookID:    book.ID,
		Source:    req.Pricing.Source,
		Rate:      req.Pricing.Rate,
		Discount:  req.Pricing.Discount,
		Currency:  req.Pricing.Currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreatePricing(ctx, pricing); err != nil {
		return nil, err
	}

	s.logger.Info("added price", "book_id", book.ID, "source", pricing.Source)

	return &domain.CommitResult{BookID: book.ID, PricingID: pricing.ID}, nil
}

// updatePrice revises rate/discount on an existing price record.
func (s *BookService) updatePrice(ctx context.Context, req *domain.CommitRequest) (*domain.CommitResult, error) {
	if req.PricingID == "" {
		return nil, errors.Validationf("pricing id is required for UPDATE_PRICE")
	}
	pricing, err := s.store.GetPricing(ctx, req.PricingID)
	if err != nil {
		return nil, err
	}

	pricing.Rate = req.Pricing.Rate
	pricing.Discount = req.Pricing.Discount
	if req.Pricing.Currency != "" {
		pricing.Currency = req.Pricing.Currency
	}
	pricing.UpdatedAt = time.Now()

	if err := s.store.UpdatePricing(ctx, pricing); err != nil {
		return nil, err
	}

	s.logger.Info("updated price", "pricing_id", pricing.ID, "book_id", pricing.BookID)

	return &domain.CommitResult{BookID: pricing.BookID, PricingID: pricing.ID}, nil
}

// Update overwrites an existing book's fields from a fresh draft and, when
// a pricing draft is supplied, revises the price record for that draft's
// source (or attaches it as a new source). CONFLICT resolution goes through
// here: the user edits the draft and saves over the existing record.
func (s *BookService) Update(ctx context.Context, bookID string, book *domain.BookDraft, pricing *domain.PricingDraft) (*domain.Book, error) {
	if err := reconcile.ValidateDraft(book, pricing); err != nil {
		return nil, err
	}

	existing, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	existing.Title = book.Title
	existing.Author = book.Author
	existing.Year = book.SanitizedYear()
	existing.ISBN = ""
	if book.ISBN != "" {
		existing.ISBN = isbn.Normalize(book.ISBN)
	}
	existing.OtherCode = book.OtherCode
	existing.Edition = book.Edition
	existing.BindingType = book.BindingType
	existing.Classification = book.Classification
	existing.Remarks = book.Remarks
	existing.Imprint = book.Imprint
	existing.PublisherExclusive = book.PublisherExclusive
	existing.UpdatedAt = now

	if err := s.store.UpdateBook(ctx, existing); err != nil {
		return nil, err
	}

	if pricing != nil && pricing.Source != "" {
		if err := s.revisePricing(ctx, bookID, pricing, now); err != nil {
			return nil, err
		}
	}

	s.logger.Info("updated book", "book_id", bookID, "title", existing.Title)

	return s.Get(ctx, bookID)
}

// revisePricing updates the price record matching the draft's source, or
// attaches the draft as a new source.
func (s *BookService) revisePricing(ctx context.Context, bookID string, draft *domain.PricingDraft, now time.Time) error {
	pricings, err := s.store.ListPricingsForBook(ctx, bookID)
	if err != nil {
		return err
	}
	for _, p := range pricings {
		if strings.EqualFold(p.Source, draft.Source) {
			p.Rate = draft.Rate
			p.Discount = draft.Discount
			if draft.Currency != "" {
				p.Currency = draft.Currency
			}
			p.UpdatedAt = now
			return s.store.UpdatePricing(ctx, p)
		}
	}

	return s.store.CreatePricing(ctx, &domain.Pricing{
		ID:        id.MustGenerate(id.PrefixPricing),
		BookID:    bookID,
		Source:    draft.Source,
		Rate:      draft.Rate,
		Discount:  draft.Discount,
		Currency:  draft.Currency,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Get returns a book with its price records attached.
func (s *BookService) Get(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	pricings, err := s.store.ListPricingsForBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	book.Pricings = make([]domain.Pricing, 0, len(pricings))
	for _, p := range pricings {
		book.Pricings = append(book.Pricings, *p)
	}
	return book, nil
}

// List returns a page of books.
func (s *BookService) List(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Book], error) {
	return s.store.ListBooks(ctx, params)
}

// Delete removes a book and its pricings.
func (s *BookService) Delete(ctx context.Context, bookID string) error {
	return s.store.DeleteBook(ctx, bookID)
}
