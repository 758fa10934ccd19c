package api

import (
	"context"
	"encoding/json/v2"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/http/response"
	"github.com/inkwellapp/inkwell-server/internal/spreadsheet"
)

func (s *Server) registerImportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getImportResult",
		Method:      http.MethodGet,
		Path:        "/api/v1/imports/{id}",
		Summary:     "Get import result",
		Description: "Returns the per-row result of a finished import",
		Tags:        []string{"Imports"},
	}, s.handleGetImportResult)

	// Upload endpoints use chi directly for multipart form handling, rate
	// limited by client IP.
	limited := s.router.With(RateLimitMiddleware(s.importLimiter, s.logger))
	limited.Post("/api/v1/imports/validate", s.handleValidateImport)
	limited.Post("/api/v1/imports", s.handleRunImport)
}

// GetImportResultInput contains parameters for fetching an import result.
type GetImportResultInput struct {
	ID string `path:"id" doc:"Import ID"`
}

// ImportResultOutput wraps an import result for Huma.
type ImportResultOutput struct {
	Body domain.ImportResult
}

func (s *Server) handleGetImportResult(ctx context.Context, input *GetImportResultInput) (*ImportResultOutput, error) {
	result, err := s.services.Import.GetResult(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ImportResultOutput{Body: *result}, nil
}

// readUpload extracts and parses the spreadsheet from a multipart request.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*spreadsheet.Sheet, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Import.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "No file uploaded. Use 'file' field in multipart form", s.logger)
		return nil, false
	}
	defer file.Close()

	if err := spreadsheet.CheckFile(header.Filename, header.Size, s.config.Import.MaxUploadBytes); err != nil {
		response.HandleError(w, err, s.logger)
		return nil, false
	}

	sheet, err := spreadsheet.Parse(file, header.Filename)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return nil, false
	}

	return sheet, true
}

// handleValidateImport inspects an uploaded spreadsheet and returns its
// headers with either a template verdict or a suggested mapping.
// Chi handler (not Huma) because Huma doesn't easily support multipart forms.
func (s *Server) handleValidateImport(w http.ResponseWriter, r *http.Request) {
	sheet, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	validation, err := s.services.Import.Validate(r.Context(), sheet, r.FormValue("template_id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, validation, s.logger)
}

// handleRunImport runs a full import: the uploaded spreadsheet plus a
// mapping (JSON form field) are swept row by row into the catalog.
func (s *Server) handleRunImport(w http.ResponseWriter, r *http.Request) {
	sheet, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	rawMapping := r.FormValue("mapping")
	if rawMapping == "" {
		response.BadRequest(w, "No mapping provided. Use 'mapping' field with a JSON object", s.logger)
		return
	}

	var m domain.ImportMapping
	if err := json.Unmarshal([]byte(rawMapping), &m); err != nil {
		response.BadRequest(w, "Invalid mapping JSON: "+err.Error(), s.logger)
		return
	}

	result, err := s.services.Import.Import(r.Context(), sheet, m, r.FormValue("template_id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}
