package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/mapping"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// TemplateService manages saved import mappings.
type TemplateService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewTemplateService creates a new template service.
func NewTemplateService(s store.Store, logger *slog.Logger) *TemplateService {
	return &TemplateService{
		store:     s,
		validator: validation.New(),
		logger:    logger,
	}
}

// CreateTemplateRequest contains fields for saving a template.
type CreateTemplateRequest struct {
	Name            string               `json:"name" validate:"required,min=1,max=100"`
	Description     string               `json:"description" validate:"omitempty,max=500"`
	Mapping         domain.ImportMapping `json:"mapping" validate:"required"`
	ExpectedHeaders []string             `json:"expected_headers"`
}

// Create saves a named mapping for replay. The mapping must cover the
// required fields; a template that cannot drive an import is useless.
func (s *TemplateService) Create(ctx context.Context, req CreateTemplateRequest) (*domain.ImportTemplate, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	report := mapping.Coverage(req.Mapping)
	if !report.Complete() {
		missing := append(report.MissingBook, report.MissingPricing...)
		return nil, errors.Validationf("template mapping is incomplete: missing %s", joinFields(missing))
	}

	now := time.Now()
	tpl := &domain.ImportTemplate{
		ID:              id.MustGenerate(id.PrefixTemplate),
		Name:            req.Name,
		Description:     strings.TrimSpace(req.Description),
		Mapping:         req.Mapping.Clone(),
		ExpectedHeaders: append([]string(nil), req.ExpectedHeaders...),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.CreateTemplate(ctx, tpl); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}

	s.logger.Info("created template", "template_id", tpl.ID, "name", tpl.Name)

	return tpl, nil
}

// Get returns one template.
func (s *TemplateService) Get(ctx context.Context, templateID string) (*domain.ImportTemplate, error) {
	return s.store.GetTemplate(ctx, templateID)
}

// List returns all templates ordered by name.
func (s *TemplateService) List(ctx context.Context) ([]*domain.ImportTemplate, error) {
	return s.store.ListTemplates(ctx)
}

// Delete removes a template. Past imports keep their results.
func (s *TemplateService) Delete(ctx context.Context, templateID string) error {
	if err := s.store.DeleteTemplate(ctx, templateID); err != nil {
		return err
	}
	s.logger.Info("deleted template", "template_id", templateID)
	return nil
}
