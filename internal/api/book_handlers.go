package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a page of catalog books ordered by ID",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book with its price records",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Overwrites a book's fields from a fresh draft, optionally revising a price record",
		Tags:        []string{"Books"},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Deletes a book and its price records",
		Tags:        []string{"Books"},
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "checkDuplicate",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/check-duplicate",
		Summary:     "Check for duplicates",
		Description: "Classifies a draft entry against the catalog without writing anything",
		Tags:        []string{"Books"},
	}, s.handleCheckDuplicate)

	huma.Register(s.api, huma.Operation{
		OperationID: "commitBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/commit",
		Summary:     "Commit entry",
		Description: "Executes the write chosen after classification",
		Tags:        []string{"Books"},
	}, s.handleCommitBook)
}

// === DTOs ===

// ListBooksInput contains parameters for listing books.
type ListBooksInput struct {
	Cursor string `query:"cursor" doc:"Opaque pagination cursor from a previous page"`
	Limit  int    `query:"limit" doc:"Maximum books per page (default 100)"`
}

// ListBooksResponse contains a page of books.
type ListBooksResponse struct {
	Books      []*domain.Book `json:"books" doc:"Page of books"`
	NextCursor string         `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool           `json:"has_more" doc:"Whether more pages exist"`
}

// ListBooksOutput wraps the list books response for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body domain.Book
}

// UpdateBookRequest is the request body for updating a book.
type UpdateBookRequest struct {
	Book    domain.BookDraft     `json:"book" doc:"Replacement book fields"`
	Pricing *domain.PricingDraft `json:"pricing,omitempty" doc:"Optional price revision for one source"`
}

// UpdateBookInput wraps the update request for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body UpdateBookRequest
}

// DeleteBookInput contains parameters for deleting a book.
type DeleteBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// MessageResponse contains a human-readable success message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// DraftRequest is the draft triple sent for classification.
type DraftRequest struct {
	Book      domain.BookDraft      `json:"book" doc:"Book fields as entered"`
	Pricing   domain.PricingDraft   `json:"pricing" doc:"Price fields as entered"`
	Publisher domain.PublisherDraft `json:"publisher" doc:"Publisher as entered"`
}

// CheckDuplicateInput wraps the classification request for Huma.
type CheckDuplicateInput struct {
	Body DraftRequest
}

// CheckDuplicateOutput wraps the classification result for Huma. Status is
// 409 for CONFLICT and 200 otherwise; the body shape is the same either
// way, the status code is only a transport hint.
type CheckDuplicateOutput struct {
	Status int
	Body   domain.ClassificationResult
}

// CommitBookInput wraps the commit request for Huma.
type CommitBookInput struct {
	Body domain.CommitRequest
}

// CommitBookOutput wraps the commit result for Huma.
type CommitBookOutput struct {
	Body domain.CommitResult
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	page, err := s.services.Book.List(ctx, store.PaginationParams{
		Cursor: input.Cursor,
		Limit:  input.Limit,
	})
	if err != nil {
		return nil, err
	}

	return &ListBooksOutput{Body: ListBooksResponse{
		Books:      page.Items,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	book, err := s.services.Book.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: *book}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	book, err := s.services.Book.Update(ctx, input.ID, &input.Body.Book, input.Body.Pricing)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: *book}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *DeleteBookInput) (*MessageOutput, error) {
	if err := s.services.Book.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

func (s *Server) handleCheckDuplicate(ctx context.Context, input *CheckDuplicateInput) (*CheckDuplicateOutput, error) {
	result, err := s.services.Book.Classify(ctx, &input.Body.Book, &input.Body.Pricing, &input.Body.Publisher)
	if err != nil {
		return nil, err
	}
	status := http.StatusOK
	if result.IsConflict() {
		status = http.StatusConflict
	}
	return &CheckDuplicateOutput{Status: status, Body: *result}, nil
}

func (s *Server) handleCommitBook(ctx context.Context, input *CommitBookInput) (*CommitBookOutput, error) {
	result, err := s.services.Book.Commit(ctx, &input.Body)
	if err != nil {
		return nil, err
	}
	return &CommitBookOutput{Body: *result}, nil
}
