package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkwellapp/inkwell-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search books",
		Description: "Full-text search across titles, authors and publishers",
		Tags:        []string{"Search"},
	}, s.handleSearchBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "suggestField",
		Method:      http.MethodGet,
		Path:        "/api/v1/suggest",
		Summary:     "Suggest field values",
		Description: "Returns distinct field values starting with the given prefix, for autocomplete",
		Tags:        []string{"Search"},
	}, s.handleSuggestField)
}

// SearchBooksInput contains search parameters.
type SearchBooksInput struct {
	Query   string `query:"q" doc:"Search query"`
	MinYear int    `query:"min_year" doc:"Earliest publication year"`
	MaxYear int    `query:"max_year" doc:"Latest publication year"`
	Limit   int    `query:"limit" doc:"Maximum hits (default 20)"`
	Offset  int    `query:"offset" doc:"Hits to skip"`
}

// SearchBooksOutput wraps search results for Huma.
type SearchBooksOutput struct {
	Body search.SearchResult
}

// SuggestFieldInput contains autocomplete parameters.
type SuggestFieldInput struct {
	Field  string `query:"field" doc:"Field to complete: title, author or publisher"`
	Prefix string `query:"prefix" doc:"Prefix typed so far"`
	Limit  int    `query:"limit" doc:"Maximum suggestions (default 10)"`
}

// SuggestFieldResponse contains autocomplete suggestions.
type SuggestFieldResponse struct {
	Suggestions []string `json:"suggestions" doc:"Distinct values matching the prefix"`
}

// SuggestFieldOutput wraps suggestions for Huma.
type SuggestFieldOutput struct {
	Body SuggestFieldResponse
}

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*SearchBooksOutput, error) {
	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.MinYear = input.MinYear
	params.MaxYear = input.MaxYear
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	params.Offset = input.Offset

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return &SearchBooksOutput{Body: *result}, nil
}

func (s *Server) handleSuggestField(ctx context.Context, input *SuggestFieldInput) (*SuggestFieldOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	suggestions, err := s.services.Search.Suggest(ctx, search.SuggestField(input.Field), input.Prefix, limit)
	if err != nil {
		return nil, err
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	return &SuggestFieldOutput{Body: SuggestFieldResponse{Suggestions: suggestions}}, nil
}
