// Package mapping decides how spreadsheet columns correspond to catalog
// fields: by exact template replay or by heuristic suggestion, with a
// coverage check gating import.
package mapping

import (
	"strings"
	"unicode"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

// headerAliases maps normalized header tokens to the canonical field token.
// Spreadsheets from distributors rarely agree on column names.
var headerAliases = map[string]domain.CatalogField{
	"title":       domain.FieldTitle,
	"book":        domain.FieldTitle,
	"book title":  domain.FieldTitle,
	"name":        domain.FieldTitle,
	"author":      domain.FieldAuthor,
	"authors":     domain.FieldAuthor,
	"writer":      domain.FieldAuthor,
	"by":          domain.FieldAuthor,
	"year":        domain.FieldYear,
	"pub year":    domain.FieldYear,
	"publication year": domain.FieldYear,
	"published":        domain.FieldYear,
	"isbn":             domain.FieldISBN,
	"isbn 13":          domain.FieldISBN,
	"isbn 10":          domain.FieldISBN,
	"ean":              domain.FieldISBN,
	"code":             domain.FieldOtherCode,
	"other code":       domain.FieldOtherCode,
	"stock code":       domain.FieldOtherCode,
	"sku":              domain.FieldOtherCode,
	"edition":          domain.FieldEdition,
	"ed":               domain.FieldEdition,
	"binding":          domain.FieldBindingType,
	"binding type":     domain.FieldBindingType,
	"format":           domain.FieldBindingType,
	"classification":   domain.FieldClassification,
	"category":         domain.FieldClassification,
	"genre":            domain.FieldClassification,
	"remarks":          domain.FieldRemarks,
	"notes":            domain.FieldRemarks,
	"comments":         domain.FieldRemarks,
	"imprint":          domain.FieldImprint,
	"publisher":        domain.FieldPublisherName,
	"publisher name":   domain.FieldPublisherName,
	"press":            domain.FieldPublisherName,
	"exclusive":        domain.FieldPublisherExclusive,
	"publisher exclusive": domain.FieldPublisherExclusive,
	"source":              domain.FieldSource,
	"vendor":              domain.FieldSource,
	"supplier":            domain.FieldSource,
	"rate":                domain.FieldRate,
	"price":               domain.FieldRate,
	"list price":          domain.FieldRate,
	"discount":            domain.FieldDiscount,
	"disc":                domain.FieldDiscount,
	"discount percent":    domain.FieldDiscount,
	"currency":            domain.FieldCurrency,
	"curr":                domain.FieldCurrency,
}

// Suggest produces a heuristic header→field mapping plus the headers it
// could not place. Each field is claimed by at most one header; later
// headers lose to earlier ones on the same field.
func Suggest(headers []string) (domain.ImportMapping, []string) {
	m := make(domain.ImportMapping, len(headers))
	claimed := make(map[domain.CatalogField]bool)
	var unmapped []string

	for _, h := range headers {
		field, ok := lookupField(h)
		if !ok || claimed[field] {
			unmapped = append(unmapped, h)
			continue
		}
		m[h] = field
		claimed[field] = true
	}

	return m, unmapped
}

// lookupField resolves one header, first by alias table, then by token
// containment (a header like "Retail Price USD" still hits "price").
func lookupField(header string) (domain.CatalogField, bool) {
	norm := normalizeHeader(header)
	if norm == "" {
		return "", false
	}

	if field, ok := headerAliases[norm]; ok {
		return field, true
	}

	// Try each alias as a whole-token phrase inside the header. Longer
	// aliases win so "publisher name" beats "name".
	var (
		best    domain.CatalogField
		bestLen int
		found   bool
	)
	padded := " " + norm + " "
	for alias, field := range headerAliases {
		if len(alias) <= bestLen {
			continue
		}
		if strings.Contains(padded, " "+alias+" ") {
			best = field
			bestLen = len(alias)
			found = true
		}
	}
	return best, found
}

// normalizeHeader lowercases and reduces a header to space-separated
// alphanumeric tokens.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	var b strings.Builder
	for _, r := range h {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// MatchTemplate checks a file's headers against a template's expectations.
// The verdict is all-or-nothing: one missing header rejects the template
// wholesale, because a partially-applied template silently drops fields the
// user believes are mapped.
func MatchTemplate(headers []string, tpl *domain.ImportTemplate) domain.TemplateMatchResult {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, want := range tpl.ExpectedHeaders {
		if !present[want] {
			missing = append(missing, want)
		}
	}

	expected := make(map[string]bool, len(tpl.ExpectedHeaders))
	for _, h := range tpl.ExpectedHeaders {
		expected[h] = true
	}
	var extra []string
	for _, h := range headers {
		if !expected[h] {
			extra = append(extra, h)
		}
	}

	return domain.TemplateMatchResult{
		IsMatch:        len(missing) == 0,
		MissingHeaders: missing,
		ExtraHeaders:   extra,
	}
}

// SetTarget applies one mapping edit: FieldSkip removes the header, any
// other field overwrites the header's previous target. Field fan-in is not
// resolved here; Coverage reports it for the user to fix.
func SetTarget(m domain.ImportMapping, header string, field domain.CatalogField) {
	if field == domain.FieldSkip || field == "" {
		delete(m, header)
		return
	}
	m[header] = field
}

// bookRequired and pricingRequired are the fields a mapping must cover
// before import is enabled.
var (
	bookRequired    = []domain.CatalogField{domain.FieldTitle, domain.FieldAuthor}
	pricingRequired = []domain.CatalogField{domain.FieldRate}
)

// CoverageReport is the result of checking a mapping against the required
// field sets. Import is enabled only when Importable() holds.
type CoverageReport struct {
	BookComplete    bool                            `json:"book_complete"`
	PricingComplete bool                            `json:"pricing_complete"`
	MissingBook     []domain.CatalogField           `json:"missing_book,omitempty"`
	MissingPricing  []domain.CatalogField           `json:"missing_pricing,omitempty"`
	DuplicateFields map[domain.CatalogField][]string `json:"duplicate_fields,omitempty"` // field -> headers targeting it
}

// Complete reports whether both required field sets are covered.
func (r CoverageReport) Complete() bool {
	return r.BookComplete && r.PricingComplete
}

// Importable reports whether the mapping can drive an import: both required
// field sets covered and no field fed by more than one header.
func (r CoverageReport) Importable() bool {
	return r.Complete() && len(r.DuplicateFields) == 0
}

// Coverage recomputes the coverage report for the current mapping. Pure
// function of the mapping; called on every edit.
func Coverage(m domain.ImportMapping) CoverageReport {
	targeted := m.MappedFields()

	report := CoverageReport{BookComplete: true, PricingComplete: true}
	for _, f := range bookRequired {
		if !targeted[f] {
			report.BookComplete = false
			report.MissingBook = append(report.MissingBook, f)
		}
	}
	for _, f := range pricingRequired {
		if !targeted[f] {
			report.PricingComplete = false
			report.MissingPricing = append(report.MissingPricing, f)
		}
	}

	// Fan-in report: fields targeted by more than one header. Which column
	// would win is arbitrary, so Importable() refuses until it is resolved.
	byField := make(map[domain.CatalogField][]string)
	for header, field := range m {
		byField[field] = append(byField[field], header)
	}
	for field, headers := range byField {
		if len(headers) > 1 {
			if report.DuplicateFields == nil {
				report.DuplicateFields = make(map[domain.CatalogField][]string)
			}
			report.DuplicateFields[field] = headers
		}
	}

	return report
}
