package wizard

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/client"
	"github.com/inkwellapp/inkwell-server/internal/domain"
)

const wizardCSV = "Title,Author,Source,Rate\nPnin,Vladimir Nabokov,harvest,12.00\n"

// fakeCatalog serves just enough of the API for wizard tests. A supplied
// template either matches perfectly (its complete mapping is adopted) or
// misses a header, in which case the heuristic fallback is returned.
type fakeCatalog struct {
	templateMatch    bool
	importTemplateID string // template_id form value seen on import
	importMapping    domain.ImportMapping
	importCalls      int
}

func templateMapping() domain.ImportMapping {
	return domain.ImportMapping{
		"Title":  domain.FieldTitle,
		"Author": domain.FieldAuthor,
		"Source": domain.FieldSource,
		"Rate":   domain.FieldRate,
	}
}

func (f *fakeCatalog) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/imports/validate", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		v := domain.ImportValidation{
			Headers:  []string{"Title", "Author", "Source", "Rate"},
			RowCount: 1,
		}

		if r.FormValue("template_id") != "" {
			v.TemplateMatch = f.templateMatch
			if f.templateMatch {
				v.SuggestedMapping = templateMapping()
				writeData(t, w, v)
				return
			}
			// The template expects a header the file does not have.
			v.TemplateMatchDetails = &domain.TemplateMatchResult{
				MissingHeaders: []string{"Discount"},
			}
		}

		v.SuggestedMapping = domain.ImportMapping{
			"Title":  domain.FieldTitle,
			"Author": domain.FieldAuthor,
			"Source": domain.FieldSource,
			// Rate intentionally left unmapped so coverage gating
			// can be exercised.
		}
		v.UnmappedHeaders = []string{"Rate"}
		writeData(t, w, v)
	})

	mux.HandleFunc("POST /api/v1/imports", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f.importCalls++
		f.importTemplateID = r.FormValue("template_id")
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("mapping")), &f.importMapping))
		writeData(t, w, domain.ImportResult{ImportID: "imp_1", RowsRead: 1, BooksInserted: 1})
	})

	mux.HandleFunc("POST /api/v1/templates", func(w http.ResponseWriter, r *http.Request) {
		writeData(t, w, domain.ImportTemplate{ID: "tpl_1", Name: "Saved"})
	})

	return mux
}

func writeData(t *testing.T, w http.ResponseWriter, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	raw, err := json.Marshal(map[string]any{"v": 1, "success": true, "data": data})
	require.NoError(t, err)
	w.Write(raw)
}

func newTestWizard(t *testing.T, f *fakeCatalog, onComplete func(*domain.ImportResult)) *Controller {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(client.New(srv.URL, logger), logger, onComplete)
}

func TestSelectFile_MovesToMapping(t *testing.T) {
	w := newTestWizard(t, &fakeCatalog{}, nil)

	require.Equal(t, StateInitial, w.State())
	err := w.SelectFile(context.Background(), "books.csv", strings.NewReader(wizardCSV), "")
	require.NoError(t, err)

	assert.Equal(t, StateMapping, w.State())
	assert.Equal(t, domain.FieldTitle, w.Mapping()["Title"])
	assert.Equal(t, 1, w.Validation().RowCount)
}

func TestSelectFile_RejectsUnknownExtension(t *testing.T) {
	w := newTestWizard(t, &fakeCatalog{}, nil)

	err := w.SelectFile(context.Background(), "books.txt", strings.NewReader("data"), "")
	require.Error(t, err)
	assert.Equal(t, StateInitial, w.State())
}

func TestSelectFile_TemplateMatchLandsInReview(t *testing.T) {
	w := newTestWizard(t, &fakeCatalog{templateMatch: true}, nil)

	require.NoError(t, w.SelectFile(context.Background(), "books.csv", strings.NewReader(wizardCSV), "tpl_9"))

	assert.Equal(t, StateReview, w.State())
	assert.Equal(t, templateMapping(), w.Mapping())

	// Editing requires leaving review first.
	require.Error(t, w.SetTarget("Rate", domain.FieldDiscount))
}

func TestSelectFile_TemplateMismatchLandsInNoMatch(t *testing.T) {
	f := &fakeCatalog{templateMatch: false}
	w := newTestWizard(t, f, nil)
	ctx := context.Background()

	require.NoError(t, w.SelectFile(ctx, "books.csv", strings.NewReader(wizardCSV), "tpl_9"))

	// A template expecting headers the file lacks must never reach review.
	assert.Equal(t, StateNoMatch, w.State())
	assert.False(t, w.Validation().TemplateMatch)
	assert.NotEmpty(t, w.Validation().TemplateMatchDetails.MissingHeaders)

	// Nothing moves until the user acknowledges the mismatch.
	require.Error(t, w.StartImport(ctx))
	require.Error(t, w.SetTarget("Rate", domain.FieldRate))
	assert.Equal(t, 0, f.importCalls)

	// Acknowledging seeds the heuristic suggestion, not the template.
	require.NoError(t, w.Acknowledge())
	assert.Equal(t, StateMapping, w.State())
	m := w.Mapping()
	assert.Equal(t, domain.FieldTitle, m["Title"])
	_, rateMapped := m["Rate"]
	assert.False(t, rateMapped)
}

func TestConfirm_RunsImportFromReview(t *testing.T) {
	f := &fakeCatalog{templateMatch: true}
	w := newTestWizard(t, f, nil)
	ctx := context.Background()

	require.NoError(t, w.SelectFile(ctx, "books.csv", strings.NewReader(wizardCSV), "tpl_9"))
	require.NoError(t, w.Confirm(ctx))

	assert.Equal(t, StateComplete, w.State())
	assert.Equal(t, 1, f.importCalls)
	assert.Equal(t, "tpl_9", f.importTemplateID)
	assert.Equal(t, domain.FieldRate, f.importMapping["Rate"])
}

func TestRequestEdit_KeepsTemplateMapping(t *testing.T) {
	f := &fakeCatalog{templateMatch: true}
	w := newTestWizard(t, f, nil)
	ctx := context.Background()

	require.NoError(t, w.SelectFile(ctx, "books.csv", strings.NewReader(wizardCSV), "tpl_9"))
	require.NoError(t, w.RequestEdit())

	assert.Equal(t, StateMapping, w.State())
	assert.Equal(t, templateMapping(), w.Mapping(), "editing starts from the template's mapping")

	require.NoError(t, w.StartImport(ctx))
	assert.Equal(t, StateComplete, w.State())
	assert.Equal(t, "tpl_9", f.importTemplateID)

	// Editing is a review-step action; the flow has moved on.
	require.Error(t, w.RequestEdit())
}

func TestStartImport_GatedOnCoverage(t *testing.T) {
	f := &fakeCatalog{}
	w := newTestWizard(t, f, nil)
	ctx := context.Background()

	require.NoError(t, w.SelectFile(ctx, "books.csv", strings.NewReader(wizardCSV), ""))

	// Rate is unmapped, so the import must be refused.
	err := w.StartImport(ctx)
	require.Error(t, err)
	assert.Equal(t, StateMapping, w.State())
	assert.Equal(t, 0, f.importCalls)

	require.NoError(t, w.SetTarget("Rate", domain.FieldRate))
	require.True(t, w.Coverage().Complete())

	require.NoError(t, w.StartImport(ctx))
	assert.Equal(t, StateComplete, w.State())
	assert.Equal(t, 1, f.importCalls)
	assert.Equal(t, domain.FieldRate, f.importMapping["Rate"])
	require.NotNil(t, w.Result())
	assert.Equal(t, "imp_1", w.Result().ImportID)
}

func TestStartImport_RefusesFanIn(t *testing.T) {
	f := &fakeCatalog{}
	w := newTestWizard(t, f, nil)
	ctx := context.Background()

	require.NoError(t, w.SelectFile(ctx, "books.csv", strings.NewReader(wizardCSV), ""))
	require.NoError(t, w.SetTarget("Rate", domain.FieldRate))
	// Two columns feeding title: coverage is complete, but the import must
	// still be refused until the fan-in is resolved.
	require.NoError(t, w.SetTarget("Source", domain.FieldTitle))
	require.True(t, w.Coverage().Complete())

	err := w.StartImport(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
	assert.Equal(t, StateMapping, w.State())
	assert.Equal(t, 0, f.importCalls)

	require.NoError(t, w.SetTarget("Source", domain.FieldSource))
	require.NoError(t, w.StartImport(ctx))
	assert.Equal(t, 1, f.importCalls)
}

func TestFinish_FiresCallbackAndResets(t *testing.T) {
	f := &fakeCatalog{}
	var completed []*domain.ImportResult
	w := newTestWizard(t, f, func(r *domain.ImportResult) {
		completed = append(completed, r)
	})
	ctx := context.Background()

	require.NoError(t, w.SelectFile(ctx, "books.csv", strings.NewReader(wizardCSV), ""))
	require.NoError(t, w.SetTarget("Rate", domain.FieldRate))
	require.NoError(t, w.StartImport(ctx))

	// The callback waits for the user to dismiss the result.
	assert.Empty(t, completed)

	w.Finish()
	require.Len(t, completed, 1)
	assert.Equal(t, "imp_1", completed[0].ImportID)
	assert.Equal(t, StateInitial, w.State())
	assert.Nil(t, w.Result())

	// Finishing again is a no-op.
	w.Finish()
	assert.Len(t, completed, 1)
}

func TestTemplateIDOnlyKeptOnMatch(t *testing.T) {
	f := &fakeCatalog{templateMatch: false}
	w := newTestWizard(t, f, nil)
	ctx := context.Background()

	require.NoError(t, w.SelectFile(ctx, "books.csv", strings.NewReader(wizardCSV), "tpl_9"))
	require.NoError(t, w.Acknowledge())
	require.NoError(t, w.SetTarget("Rate", domain.FieldRate))
	require.NoError(t, w.StartImport(ctx))

	// The template did not match, so its usage must not be counted.
	assert.Empty(t, f.importTemplateID)
}

func TestSaveTemplate_OnlyInMappingStep(t *testing.T) {
	w := newTestWizard(t, &fakeCatalog{}, nil)
	ctx := context.Background()

	_, err := w.SaveTemplate(ctx, "Too early", "")
	require.Error(t, err)

	require.NoError(t, w.SelectFile(ctx, "books.csv", strings.NewReader(wizardCSV), ""))
	tpl, err := w.SaveTemplate(ctx, "Harvest export", "")
	require.NoError(t, err)
	assert.Equal(t, "tpl_1", tpl.ID)
	assert.Equal(t, StateMapping, w.State(), "saving a template must not advance the wizard")
}

func TestReset_AbandonsFlow(t *testing.T) {
	w := newTestWizard(t, &fakeCatalog{}, nil)

	require.NoError(t, w.SelectFile(context.Background(), "books.csv", strings.NewReader(wizardCSV), ""))
	w.Reset()
	assert.Equal(t, StateInitial, w.State())
	assert.Nil(t, w.Validation())
}
