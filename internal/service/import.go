package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/mapping"
	"github.com/inkwellapp/inkwell-server/internal/reconcile"
	"github.com/inkwellapp/inkwell-server/internal/spreadsheet"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// sampleRowCount is how many data rows Validate returns for preview.
const sampleRowCount = 5

// ImportService runs the bulk import pipeline: file validation, header
// mapping, row-by-row classification and the final commit sweep. Each row
// is indexed by the store as it lands, so a single-book commit arriving
// mid-import is never skipped.
type ImportService struct {
	store  store.Store
	books  *BookService
	logger *slog.Logger
}

// NewImportService creates a new import service.
func NewImportService(s store.Store, books *BookService, logger *slog.Logger) *ImportService {
	return &ImportService{
		store:  s,
		books:  books,
		logger: logger,
	}
}

// Validate inspects an uploaded sheet and answers how it can be imported.
//
// With a template ID the template's headers are checked wholesale: either
// every expected header is present and its mapping is adopted verbatim, or
// the mismatch is reported and the caller falls back to manual mapping.
// Without a template the headers are mapped heuristically.
func (s *ImportService) Validate(ctx context.Context, sheet *spreadsheet.Sheet, templateID string) (*domain.ImportValidation, error) {
	v := &domain.ImportValidation{
		Headers:  sheet.Headers,
		RowCount: len(sheet.Rows),
	}
	for i := 0; i < len(sheet.Rows) && i < sampleRowCount; i++ {
		v.SampleRows = append(v.SampleRows, sheet.Rows[i])
	}

	if templateID != "" {
		tpl, err := s.store.GetTemplate(ctx, templateID)
		if err != nil {
			return nil, fmt.Errorf("get template: %w", err)
		}
		match := mapping.MatchTemplate(sheet.Headers, tpl)
		v.TemplateMatch = match.IsMatch
		v.TemplateMatchDetails = &match
		if match.IsMatch {
			v.SuggestedMapping = tpl.Mapping.Clone()
			return v, nil
		}
		// Fall through to the heuristic so the user is not left empty-handed.
	}

	suggested, unmapped := mapping.Suggest(sheet.Headers)
	v.SuggestedMapping = suggested
	v.UnmappedHeaders = unmapped
	return v, nil
}

// Import runs the whole sheet through classification and commits every row
// that resolves cleanly. Duplicates with nothing to add and conflicts are
// skipped, never written. Returns the per-row result, which is also
// persisted for later retrieval.
func (s *ImportService) Import(ctx context.Context, sheet *spreadsheet.Sheet, m domain.ImportMapping, templateID string) (*domain.ImportResult, error) {
	report := mapping.Coverage(m)
	if !report.Importable() {
		if !report.Complete() {
			missing := append(report.MissingBook, report.MissingPricing...)
			return nil, errors.Validationf("mapping is incomplete: missing %s", joinFields(missing))
		}
		return nil, errors.Validationf("mapping targets a field with more than one column")
	}

	result := &domain.ImportResult{
		ImportID: uuid.New().String(),
		RowsRead: len(sheet.Rows),
	}

	for i := range sheet.Rows {
		rowNum := i + 1
		book, pricing, publisher, err := draftsFromRow(sheet.RowMap(i), m)
		if err != nil {
			result.Record(rowNum, domain.RowErrored, err.Error())
			continue
		}
		if err := reconcile.ValidateDraft(book, pricing); err != nil {
			result.Record(rowNum, domain.RowErrored, err.Error())
			continue
		}

		cls, err := s.books.Classify(ctx, book, pricing, publisher)
		if err != nil {
			result.Record(rowNum, domain.RowErrored, err.Error())
			continue
		}

		outcome, detail := s.commitRow(ctx, book, pricing, publisher, cls)
		result.Record(rowNum, outcome, detail)
	}

	if templateID != "" {
		if err := s.store.IncrementTemplateUsage(ctx, templateID); err != nil {
			s.logger.Warn("increment template usage", "template_id", templateID, "error", err)
		}
	}

	if err := s.store.SaveImportResult(ctx, result); err != nil {
		return nil, fmt.Errorf("save import result: %w", err)
	}

	s.logger.Info("import finished",
		"import_id", result.ImportID,
		"rows", result.RowsRead,
		"inserted", result.BooksInserted,
		"prices_added", result.PricesAdded,
		"prices_updated", result.PricesUpdated,
		"skipped", result.SkippedDuplicate+result.SkippedConflict,
		"errored", result.RowsErrored)

	return result, nil
}

// GetResult returns a previously saved import result.
func (s *ImportService) GetResult(ctx context.Context, importID string) (*domain.ImportResult, error) {
	return s.store.GetImportResult(ctx, importID)
}

// commitRow turns one classification into the obvious write. Rows needing
// human judgement (conflicts, no-ops) are skipped with a reason.
func (s *ImportService) commitRow(ctx context.Context, book *domain.BookDraft, pricing *domain.PricingDraft, publisher *domain.PublisherDraft, cls *domain.ClassificationResult) (domain.ImportRowOutcome, string) {
	switch {
	case cls.BookStatus == domain.BookStatusConflict:
		return domain.RowSkippedConflict, conflictDetail(cls)

	case cls.BookStatus == domain.BookStatusNew:
		res, err := s.books.Commit(ctx, &domain.CommitRequest{
			Book:          book.Payload(),
			Pricing:       *pricing,
			Publisher:     *publisher,
			PricingAction: domain.ActionInsert,
		})
		if err != nil {
			return domain.RowErrored, err.Error()
		}
		return domain.RowInserted, res.BookID

	case cls.PricingStatus == domain.PricingStatusAddPrice:
		res, err := s.books.Commit(ctx, &domain.CommitRequest{
			Book:          book.Payload(),
			Pricing:       *pricing,
			Publisher:     *publisher,
			PricingAction: domain.ActionAddPrice,
			BookID:        cls.Details.BookID,
		})
		if err != nil {
			return domain.RowErrored, err.Error()
		}
		return domain.RowPriceAdded, res.PricingID

	case cls.PricingStatus == domain.PricingStatusUpdatePrice:
		res, err := s.books.Commit(ctx, &domain.CommitRequest{
			Book:          book.Payload(),
			Pricing:       *pricing,
			Publisher:     *publisher,
			PricingAction: domain.ActionUpdatePrice,
			BookID:        cls.Details.BookID,
			PricingID:     cls.Details.PricingID,
		})
		if err != nil {
			return domain.RowErrored, err.Error()
		}
		return domain.RowPriceUpdated, res.PricingID

	default:
		return domain.RowSkippedDuplicate, "identical record already in catalog"
	}
}

// draftsFromRow builds the draft triple for one spreadsheet row by pulling
// each mapped header's cell through its catalog field.
func draftsFromRow(row map[string]string, m domain.ImportMapping) (*domain.BookDraft, *domain.PricingDraft, *domain.PublisherDraft, error) {
	book := &domain.BookDraft{}
	pricing := &domain.PricingDraft{}
	publisher := &domain.PublisherDraft{}

	for header, field := range m {
		value := strings.TrimSpace(row[header])
		if value == "" {
			continue
		}
		switch field {
		case domain.FieldTitle:
			book.Title = value
		case domain.FieldAuthor:
			book.Author = value
		case domain.FieldYear:
			year, err := strconv.Atoi(value)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("column %q: %q is not a year", header, value)
			}
			book.Year = year
		case domain.FieldISBN:
			book.ISBN = value
		case domain.FieldOtherCode:
			book.OtherCode = value
		case domain.FieldEdition:
			book.Edition = value
		case domain.FieldBindingType:
			book.BindingType = value
		case domain.FieldClassification:
			book.Classification = value
		case domain.FieldRemarks:
			book.Remarks = value
		case domain.FieldImprint:
			book.Imprint = value
		case domain.FieldPublisherExclusive:
			book.PublisherExclusive = parseBool(value)
		case domain.FieldPublisherName:
			publisher.PublisherName = value
		case domain.FieldSource:
			pricing.Source = value
		case domain.FieldRate:
			rate, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("column %q: %q is not a number", header, value)
			}
			pricing.Rate = rate
		case domain.FieldDiscount:
			discount, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("column %q: %q is not a discount", header, value)
			}
			pricing.Discount = discount
		case domain.FieldCurrency:
			pricing.Currency = value
		}
	}

	return book, pricing, publisher, nil
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

func conflictDetail(cls *domain.ClassificationResult) string {
	fields := make([]string, 0, len(cls.Details.ConflictFields))
	for name := range cls.Details.ConflictFields {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return "conflicting fields: " + strings.Join(fields, ", ")
}

func joinFields(fields []domain.CatalogField) string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
