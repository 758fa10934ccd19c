package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestCheckDuplicate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/books/check-duplicate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"Pale Fire"`)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"v":1,"success":true,"data":{"book_status":"DUPLICATE","pricing_status":"NO_CHANGE","message":"already in catalog","details":{"book_id":"book_1"}}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	result, err := c.CheckDuplicate(context.Background(),
		&domain.BookDraft{Title: "Pale Fire", Author: "Vladimir Nabokov", ISBN: "9780679723424"},
		&domain.PricingDraft{Source: "harvest", Rate: 12},
		&domain.PublisherDraft{})
	require.NoError(t, err)
	assert.Equal(t, domain.BookStatusDuplicate, result.BookStatus)
	assert.Equal(t, "book_1", result.Details.BookID)
}

func TestCheckDuplicate_ConflictStatusStillDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Conflicts arrive as 409 with the same success envelope as 200.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"v":1,"success":true,"data":{"book_status":"CONFLICT","pricing_status":"NO_CHANGE","details":{"book_id":"book_1","conflict_fields":{"year":{"old":"1958","new":"2001"}}}}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	result, err := c.CheckDuplicate(context.Background(),
		&domain.BookDraft{Title: "Pale Fire", Author: "Vladimir Nabokov", ISBN: "9780679723424"},
		&domain.PricingDraft{Source: "harvest", Rate: 12},
		&domain.PublisherDraft{})
	require.NoError(t, err)
	assert.Equal(t, domain.BookStatusConflict, result.BookStatus)
	assert.Contains(t, result.Details.ConflictFields, "year")
}

func TestUpdateBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/books/book_1", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"Pale Fire"`)
		assert.Contains(t, string(body), `"pricing"`)

		w.Write([]byte(`{"v":1,"success":true,"data":{"id":"book_1","title":"Pale Fire","year":1962}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	book, err := c.UpdateBook(context.Background(), "book_1",
		&domain.BookDraft{Title: "Pale Fire", Author: "Vladimir Nabokov", Year: 1962},
		&domain.PricingDraft{Source: "harvest", Rate: 14})
	require.NoError(t, err)
	require.NotNil(t, book.Year)
	assert.Equal(t, 1962, *book.Year)
}

func TestCommit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/books/commit", r.URL.Path)
		w.Write([]byte(`{"v":1,"success":true,"data":{"book_id":"book_1","pricing_id":"price_1"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	result, err := c.Commit(context.Background(), &domain.CommitRequest{PricingAction: domain.ActionInsert})
	require.NoError(t, err)
	assert.Equal(t, "book_1", result.BookID)
	assert.Equal(t, "price_1", result.PricingID)
}

func TestGetBook_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"v":1,"success":false,"error":{"code":"NOT_FOUND","message":"book not found"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	_, err := c.GetBook(context.Background(), "book_missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "book not found")
}

func TestValidationErrorSurfacesCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"v":1,"success":false,"error":{"code":"VALIDATION","message":"Title is required"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	_, err := c.Commit(context.Background(), &domain.CommitRequest{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "VALIDATION", apiErr.Code)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestRateLimitedSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"v":1,"success":false,"error":"Too many requests"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	_, err := c.GetImportResult(context.Background(), "imp_1")
	assert.True(t, errors.Is(err, ErrRateLimited))
}

func TestRunImport_Multipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "books.csv", header.Filename)

		data, _ := io.ReadAll(file)
		assert.Contains(t, string(data), "Pale Fire")
		assert.Contains(t, r.FormValue("mapping"), `"title"`)
		assert.Equal(t, "tpl_1", r.FormValue("template_id"))

		w.Write([]byte(`{"v":1,"success":true,"data":{"import_id":"imp_1","rows_read":1,"books_inserted":1}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	csv := "Title,Author,Source,Rate\nPale Fire,Vladimir Nabokov,harvest,12\n"
	result, err := c.RunImport(context.Background(), "books.csv", strings.NewReader(csv),
		domain.ImportMapping{"Title": domain.FieldTitle}, "tpl_1")
	require.NoError(t, err)
	assert.Equal(t, "imp_1", result.ImportID)
	assert.Equal(t, 1, result.BooksInserted)
}

func TestSuggester_LatestWins(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "na" {
			// First query answers slowly, after the second already returned.
			<-release
			w.Write([]byte(`{"v":1,"success":true,"data":{"suggestions":["Stale"]}}`))
			return
		}
		w.Write([]byte(`{"v":1,"success":true,"data":{"suggestions":["Nabokov"]}}`))
	}))
	defer srv.Close()

	s := NewSuggester(New(srv.URL, testLogger()))

	var mu sync.Mutex
	var delivered [][]string
	deliver := func(values []string) {
		mu.Lock()
		delivered = append(delivered, values)
		mu.Unlock()
	}

	ctx := context.Background()
	s.Fetch(ctx, "author", "na", 10, deliver)
	s.Fetch(ctx, "author", "nab", 10, deliver)

	// Wait for the fresh answer, then let the stale one through.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(delivered) == 1
	}, 2*time.Second, 10*time.Millisecond)
	close(release)
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, delivered, 1, "stale answer must be dropped")
	assert.Equal(t, []string{"Nabokov"}, delivered[0])
}
