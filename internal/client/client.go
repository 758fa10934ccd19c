// Package client provides a Go client for the Inkwell catalog API.
package client

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

const defaultTimeout = 60 * time.Second

// Sentinel errors returned for well-known response statuses.
var (
	ErrNotFound    = errors.New("not found")
	ErrRateLimited = errors.New("rate limited")
	ErrServer      = errors.New("server error")
)

// APIError carries the error object from a failed response envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Client talks to an Inkwell server.
type Client struct {
	http    *http.Client
	baseURL string
	logger  *slog.Logger
}

// New creates a new catalog client.
func New(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// envelope mirrors the server's versioned response wrapper. Error payloads
// never reach it; they are decoded separately from the raw body.
type envelope[T any] struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// doJSON executes a request with a JSON body and decodes the enveloped
// response into out. Statuses in allow are decoded like successes.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any, allow ...int) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, out, allow...)
}

// do executes the request and decodes the envelope. Statuses in allow are
// decoded like successes even though they are >= 400.
func (c *Client) do(req *http.Request, out any, allow ...int) error {
	c.logger.Debug("catalog request", "method", req.Method, "path", req.URL.Path)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 && !slices.Contains(allow, resp.StatusCode) {
		return decodeError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError maps a failed response to a sentinel or APIError.
func decodeError(status int, raw []byte) error {
	switch status {
	case http.StatusNotFound:
		// Fall through to extract the message, default to the sentinel.
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		if status >= 500 {
			return ErrServer
		}
	}

	// The OpenAPI layer nests the error object; multipart handlers use a
	// plain string. Try both.
	var structured struct {
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &structured); err == nil && structured.Error != nil {
		if status == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, structured.Error.Message)
		}
		return &APIError{Status: status, Code: structured.Error.Code, Message: structured.Error.Message}
	}

	var plain struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &plain); err == nil && plain.Error != "" {
		if status == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, plain.Error)
		}
		return &APIError{Status: status, Message: plain.Error}
	}

	if status == http.StatusNotFound {
		return ErrNotFound
	}
	return &APIError{Status: status, Message: strings.TrimSpace(string(raw))}
}

// CheckDuplicate classifies a draft against the catalog without writing.
// A CONFLICT classification arrives as a 409 carrying the same body shape;
// the status code is a transport hint, so both are decoded identically.
func (c *Client) CheckDuplicate(ctx context.Context, book *domain.BookDraft, pricing *domain.PricingDraft, publisher *domain.PublisherDraft) (*domain.ClassificationResult, error) {
	body := map[string]any{
		"book":      book,
		"pricing":   pricing,
		"publisher": publisher,
	}
	var resp envelope[domain.ClassificationResult]
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/books/check-duplicate", body, &resp, http.StatusConflict); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Commit executes the write chosen after classification.
func (c *Client) Commit(ctx context.Context, req *domain.CommitRequest) (*domain.CommitResult, error) {
	var resp envelope[domain.CommitResult]
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/books/commit", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// UpdateBook overwrites a book's fields from a fresh draft, optionally
// revising one price record.
func (c *Client) UpdateBook(ctx context.Context, bookID string, book *domain.BookDraft, pricing *domain.PricingDraft) (*domain.Book, error) {
	body := map[string]any{"book": book}
	if pricing != nil {
		body["pricing"] = pricing
	}
	var resp envelope[domain.Book]
	if err := c.doJSON(ctx, http.MethodPut, "/api/v1/books/"+url.PathEscape(bookID), body, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// BookPage is one page of catalog books.
type BookPage struct {
	Books      []*domain.Book `json:"books"`
	NextCursor string         `json:"next_cursor"`
	HasMore    bool           `json:"has_more"`
}

// ListBooks fetches a page of catalog books.
func (c *Client) ListBooks(ctx context.Context, cursor string, limit int) (*BookPage, error) {
	query := url.Values{}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/v1/books"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var resp envelope[BookPage]
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// GetBook fetches a book with its price records.
func (c *Client) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	var resp envelope[domain.Book]
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/books/"+url.PathEscape(bookID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Suggest returns autocomplete values for a form field.
func (c *Client) Suggest(ctx context.Context, field, prefix string, limit int) ([]string, error) {
	query := url.Values{}
	query.Set("field", field)
	query.Set("prefix", prefix)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp envelope[struct {
		Suggestions []string `json:"suggestions"`
	}]
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/suggest?"+query.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Suggestions, nil
}

// ListTemplates returns all saved import templates.
func (c *Client) ListTemplates(ctx context.Context) ([]*domain.ImportTemplate, error) {
	var resp envelope[struct {
		Templates []*domain.ImportTemplate `json:"templates"`
	}]
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/templates", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Templates, nil
}

// CreateTemplate saves a mapping for replay on future imports.
func (c *Client) CreateTemplate(ctx context.Context, name, description string, m domain.ImportMapping, headers []string) (*domain.ImportTemplate, error) {
	body := map[string]any{
		"name":             name,
		"description":      description,
		"mapping":          m,
		"expected_headers": headers,
	}
	var resp envelope[domain.ImportTemplate]
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/templates", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// DeleteTemplate removes a saved template.
func (c *Client) DeleteTemplate(ctx context.Context, templateID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/templates/"+url.PathEscape(templateID), nil, nil)
}

// ValidateImport uploads a spreadsheet for inspection.
func (c *Client) ValidateImport(ctx context.Context, filename string, file io.Reader, templateID string) (*domain.ImportValidation, error) {
	fields := map[string]string{}
	if templateID != "" {
		fields["template_id"] = templateID
	}

	var resp envelope[domain.ImportValidation]
	if err := c.upload(ctx, "/api/v1/imports/validate", filename, file, fields, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// RunImport uploads a spreadsheet and sweeps it into the catalog.
func (c *Client) RunImport(ctx context.Context, filename string, file io.Reader, m domain.ImportMapping, templateID string) (*domain.ImportResult, error) {
	rawMapping, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode mapping: %w", err)
	}

	fields := map[string]string{"mapping": string(rawMapping)}
	if templateID != "" {
		fields["template_id"] = templateID
	}

	var resp envelope[domain.ImportResult]
	if err := c.upload(ctx, "/api/v1/imports", filename, file, fields, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// GetImportResult fetches the per-row result of a finished import.
func (c *Client) GetImportResult(ctx context.Context, importID string) (*domain.ImportResult, error) {
	var resp envelope[domain.ImportResult]
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/imports/"+url.PathEscape(importID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// upload sends a multipart request with the file under the "file" field.
func (c *Client) upload(ctx context.Context, path, filename string, file io.Reader, fields map[string]string, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	return c.do(req, out)
}
