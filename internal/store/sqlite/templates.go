package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"strings"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

const templateColumns = `id, name, description, mapping, expected_headers, usage_count, created_at, updated_at`

func scanTemplate(scanner interface{ Scan(dest ...any) error }) (*domain.ImportTemplate, error) {
	var t domain.ImportTemplate

	var (
		description sql.NullString
		mappingJSON string
		headersJSON string
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&t.ID,
		&t.Name,
		&description,
		&mappingJSON,
		&headersJSON,
		&t.UsageCount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Description = description.String
	if err := json.Unmarshal([]byte(mappingJSON), &t.Mapping); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(headersJSON), &t.ExpectedHeaders); err != nil {
		return nil, err
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// CreateTemplate inserts a new import template.
// Returns store.ErrAlreadyExists on duplicate name.
func (s *Store) CreateTemplate(ctx context.Context, tpl *domain.ImportTemplate) error {
	mappingJSON, err := json.Marshal(tpl.Mapping)
	if err != nil {
		return err
	}
	headersJSON, err := json.Marshal(tpl.ExpectedHeaders)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO import_templates (id, name, description, mapping, expected_headers, usage_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tpl.ID,
		tpl.Name,
		nullString(tpl.Description),
		string(mappingJSON),
		string(headersJSON),
		tpl.UsageCount,
		formatTime(tpl.CreatedAt),
		formatTime(tpl.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetTemplate retrieves a template by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetTemplate(ctx context.Context, tplID string) (*domain.ImportTemplate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM import_templates WHERE id = ?`, tplID)

	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTemplates returns all templates ordered by name.
func (s *Store) ListTemplates(ctx context.Context) ([]*domain.ImportTemplate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM import_templates ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*domain.ImportTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if templates == nil {
		templates = []*domain.ImportTemplate{}
	}
	return templates, nil
}

// DeleteTemplate removes a template.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) DeleteTemplate(ctx context.Context, tplID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM import_templates WHERE id = ?`, tplID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// IncrementTemplateUsage bumps the usage counter after a successful replay.
// Returns store.ErrNotFound if the template does not exist.
func (s *Store) IncrementTemplateUsage(ctx context.Context, tplID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE import_templates SET usage_count = usage_count + 1, updated_at = ?
		WHERE id = ?`,
		formatTime(nowUTC()), tplID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
