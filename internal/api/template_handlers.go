package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

func (s *Server) registerTemplateRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTemplates",
		Method:      http.MethodGet,
		Path:        "/api/v1/templates",
		Summary:     "List templates",
		Description: "Returns all saved import templates ordered by name",
		Tags:        []string{"Templates"},
	}, s.handleListTemplates)

	huma.Register(s.api, huma.Operation{
		OperationID: "createTemplate",
		Method:      http.MethodPost,
		Path:        "/api/v1/templates",
		Summary:     "Create template",
		Description: "Saves a header mapping for replay on future imports",
		Tags:        []string{"Templates"},
	}, s.handleCreateTemplate)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTemplate",
		Method:      http.MethodGet,
		Path:        "/api/v1/templates/{id}",
		Summary:     "Get template",
		Description: "Returns a template by ID",
		Tags:        []string{"Templates"},
	}, s.handleGetTemplate)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTemplate",
		Method:      http.MethodDelete,
		Path:        "/api/v1/templates/{id}",
		Summary:     "Delete template",
		Description: "Deletes a template; past import results are kept",
		Tags:        []string{"Templates"},
	}, s.handleDeleteTemplate)
}

// === DTOs ===

// ListTemplatesResponse contains all saved templates.
type ListTemplatesResponse struct {
	Templates []*domain.ImportTemplate `json:"templates" doc:"Saved templates"`
}

// ListTemplatesOutput wraps the template list for Huma.
type ListTemplatesOutput struct {
	Body ListTemplatesResponse
}

// CreateTemplateRequest is the request body for saving a template.
type CreateTemplateRequest struct {
	Name            string               `json:"name" validate:"required,min=1,max=100" doc:"Template name"`
	Description     string               `json:"description,omitempty" validate:"omitempty,max=500" doc:"Optional description"`
	Mapping         domain.ImportMapping `json:"mapping" doc:"Header to catalog field mapping"`
	ExpectedHeaders []string             `json:"expected_headers" doc:"Headers the template expects"`
}

// CreateTemplateInput wraps the create template request for Huma.
type CreateTemplateInput struct {
	Body CreateTemplateRequest
}

// TemplateOutput wraps a single template for Huma.
type TemplateOutput struct {
	Body domain.ImportTemplate
}

// GetTemplateInput contains parameters for getting a template.
type GetTemplateInput struct {
	ID string `path:"id" doc:"Template ID"`
}

// DeleteTemplateInput contains parameters for deleting a template.
type DeleteTemplateInput struct {
	ID string `path:"id" doc:"Template ID"`
}

// === Handlers ===

func (s *Server) handleListTemplates(ctx context.Context, _ *struct{}) (*ListTemplatesOutput, error) {
	templates, err := s.services.Template.List(ctx)
	if err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []*domain.ImportTemplate{}
	}
	return &ListTemplatesOutput{Body: ListTemplatesResponse{Templates: templates}}, nil
}

func (s *Server) handleCreateTemplate(ctx context.Context, input *CreateTemplateInput) (*TemplateOutput, error) {
	tpl, err := s.services.Template.Create(ctx, service.CreateTemplateRequest{
		Name:            input.Body.Name,
		Description:     input.Body.Description,
		Mapping:         input.Body.Mapping,
		ExpectedHeaders: input.Body.ExpectedHeaders,
	})
	if err != nil {
		return nil, err
	}
	return &TemplateOutput{Body: *tpl}, nil
}

func (s *Server) handleGetTemplate(ctx context.Context, input *GetTemplateInput) (*TemplateOutput, error) {
	tpl, err := s.services.Template.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &TemplateOutput{Body: *tpl}, nil
}

func (s *Server) handleDeleteTemplate(ctx context.Context, input *DeleteTemplateInput) (*MessageOutput, error) {
	if err := s.services.Template.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Template deleted"}}, nil
}
