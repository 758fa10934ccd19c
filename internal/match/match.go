// Package match classifies submitted book drafts against the existing
// catalog: is this a new book, a duplicate, or a conflicting record?
package match

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/isbn"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// Options tunes the classification cascade.
type Options struct {
	// FuzzyThreshold is the minimum normalized-title similarity for a
	// fuzzy duplicate candidate.
	FuzzyThreshold float64
	// AuthorThreshold is the minimum author similarity required alongside
	// a fuzzy title hit.
	AuthorThreshold float64
}

// DefaultOptions returns the thresholds used in production.
func DefaultOptions() Options {
	return Options{
		FuzzyThreshold:  0.9,
		AuthorThreshold: 0.85,
	}
}

// Classifier decides what a submitted draft means relative to the catalog.
type Classifier struct {
	store  store.Store
	logger *slog.Logger
	opts   Options
}

// NewClassifier creates a classifier with the given options.
func NewClassifier(s store.Store, logger *slog.Logger, opts Options) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.FuzzyThreshold <= 0 {
		opts.FuzzyThreshold = DefaultOptions().FuzzyThreshold
	}
	if opts.AuthorThreshold <= 0 {
		opts.AuthorThreshold = DefaultOptions().AuthorThreshold
	}
	return &Classifier{
		store:  s,
		logger: logger,
		opts:   opts,
	}
}

// Classify runs the duplicate cascade for a draft:
//
//  1. ISBN match (definitive)
//  2. Other-code match (definitive)
//  3. Fuzzy match by title + author (weak, still treated as the same book)
//
// A hit proceeds to field comparison: disagreeing non-pricing fields make
// it CONFLICT, otherwise DUPLICATE with a pricing sub-status. No hit is NEW.
func (c *Classifier) Classify(ctx context.Context, book *domain.BookDraft, pricing *domain.PricingDraft, publisher *domain.PublisherDraft) (*domain.ClassificationResult, error) {
	existing, reason, err := c.findExisting(ctx, book)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return &domain.ClassificationResult{
			BookStatus: domain.BookStatusNew,
			Message:    "no existing record matches this book",
		}, nil
	}

	c.logger.Debug("classification hit",
		"book_id", existing.ID,
		"reason", reason,
	)

	conflicts := compareDraftFields(book, publisher, existing)
	if len(conflicts) > 0 {
		return &domain.ClassificationResult{
			BookStatus: domain.BookStatusConflict,
			Message:    fmt.Sprintf("existing record %q disagrees on %d field(s)", existing.Title, len(conflicts)),
			Details: domain.ClassificationDetails{
				ExistingBook:   existing,
				BookID:         existing.ID,
				ConflictFields: conflicts,
			},
		}, nil
	}

	return c.classifyPricing(ctx, existing, pricing)
}

// findExisting runs the identity cascade and returns the matched book, if any.
func (c *Classifier) findExisting(ctx context.Context, book *domain.BookDraft) (*domain.Book, string, error) {
	// 1. ISBN match (definitive)
	if book.HasISBNTrack() {
		normalized := isbn.Normalize(book.ISBN)
		existing, err := c.store.GetBookByISBN(ctx, normalized)
		if err == nil {
			return existing, "isbn match: " + normalized, nil
		}
		if err != store.ErrNotFound {
			return nil, "", err
		}
	}

	// 2. Other-code match (definitive)
	if book.HasOtherCodeTrack() {
		existing, err := c.store.GetBookByOtherCode(ctx, book.OtherCode)
		if err == nil {
			return existing, "code match: " + book.OtherCode, nil
		}
		if err != store.ErrNotFound {
			return nil, "", err
		}
	}

	// 3. Fuzzy match by title + author
	return c.fuzzyMatch(ctx, book)
}

// fuzzyMatch scans the catalog for a book whose normalized title and author
// are both close to the draft's. Requires exactly one candidate above the
// thresholds; ambiguity yields no match rather than a guess.
func (c *Classifier) fuzzyMatch(ctx context.Context, book *domain.BookDraft) (*domain.Book, string, error) {
	books, err := c.store.ListAllBooks(ctx)
	if err != nil {
		return nil, "", err
	}

	draftTitle := normalizeTitle(book.Title)
	draftAuthor := normalizeString(book.Author)

	var (
		best     *domain.Book
		bestSim  float64
		hitCount int
	)

	for _, candidate := range books {
		titleSim := stringSimilarity(normalizeTitle(candidate.Title), draftTitle)
		if titleSim < c.opts.FuzzyThreshold {
			continue
		}
		if stringSimilarity(normalizeString(candidate.Author), draftAuthor) < c.opts.AuthorThreshold {
			continue
		}

		hitCount++
		if best == nil || titleSim > bestSim {
			best = candidate
			bestSim = titleSim
		}
	}

	if hitCount != 1 || best == nil {
		if hitCount > 1 {
			c.logger.Debug("ambiguous fuzzy match, treating as new",
				"title", book.Title,
				"hit_count", hitCount,
			)
		}
		return nil, "", nil
	}

	return best, fmt.Sprintf("fuzzy match: title=%.0f%%", bestSim*100), nil
}

// classifyPricing refines a DUPLICATE verdict by what the pricing side needs.
func (c *Classifier) classifyPricing(ctx context.Context, existing *domain.Book, pricing *domain.PricingDraft) (*domain.ClassificationResult, error) {
	current, err := c.store.GetPricingBySource(ctx, existing.ID, pricing.Source)
	if err == store.ErrNotFound {
		return &domain.ClassificationResult{
			BookStatus:    domain.BookStatusDuplicate,
			PricingStatus: domain.PricingStatusAddPrice,
			Message:       fmt.Sprintf("book already catalogued; no price from %q on record", pricing.Source),
			Details: domain.ClassificationDetails{
				ExistingBook: existing,
				BookID:       existing.ID,
			},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	differences := make(map[string]domain.FieldChange)
	if current.Rate != pricing.Rate {
		differences["rate"] = domain.FieldChange{
			Old: formatFloat(current.Rate),
			New: formatFloat(pricing.Rate),
		}
	}
	if current.Discount != pricing.Discount {
		differences["discount"] = domain.FieldChange{
			Old: formatFloat(current.Discount),
			New: formatFloat(pricing.Discount),
		}
	}

	if len(differences) == 0 {
		return &domain.ClassificationResult{
			BookStatus:    domain.BookStatusDuplicate,
			PricingStatus: domain.PricingStatusNoChange,
			Message:       "identical book and price already on record",
			Details: domain.ClassificationDetails{
				ExistingBook: existing,
				BookID:       existing.ID,
				PricingID:    current.ID,
			},
		}, nil
	}

	return &domain.ClassificationResult{
		BookStatus:    domain.BookStatusDuplicate,
		PricingStatus: domain.PricingStatusUpdatePrice,
		Message:       fmt.Sprintf("price from %q differs from the record", pricing.Source),
		Details: domain.ClassificationDetails{
			ExistingBook: existing,
			BookID:       existing.ID,
			PricingID:    current.ID,
			Differences:  differences,
		},
	}, nil
}

// compareDraftFields returns the non-pricing fields where the draft and the
// existing record disagree. A field the draft leaves empty makes no claim
// and never conflicts.
func compareDraftFields(book *domain.BookDraft, publisher *domain.PublisherDraft, existing *domain.Book) map[string]domain.FieldChange {
	conflicts := make(map[string]domain.FieldChange)

	check := func(field, existingVal, draftVal string) {
		if draftVal == "" || existingVal == "" {
			return
		}
		if normalizeString(existingVal) != normalizeString(draftVal) {
			conflicts[field] = domain.FieldChange{Old: existingVal, New: draftVal}
		}
	}

	check("title", existing.Title, book.Title)
	check("author", existing.Author, book.Author)
	check("edition", existing.Edition, book.Edition)
	check("binding_type", existing.BindingType, book.BindingType)
	check("classification", existing.Classification, book.Classification)
	check("imprint", existing.Imprint, book.Imprint)
	if publisher != nil {
		check("publisher_name", existing.Publisher, publisher.PublisherName)
	}

	if book.Year > 0 && existing.Year != nil && *existing.Year != book.Year {
		conflicts["year"] = domain.FieldChange{
			Old: strconv.Itoa(*existing.Year),
			New: strconv.Itoa(book.Year),
		}
	}

	if len(conflicts) == 0 {
		return nil
	}
	return conflicts
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
