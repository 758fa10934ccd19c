package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

func scanPublisher(scanner interface{ Scan(dest ...any) error }) (*domain.Publisher, error) {
	var p domain.Publisher
	var createdAt string

	if err := scanner.Scan(&p.ID, &p.Name, &createdAt); err != nil {
		return nil, err
	}

	var err error
	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPublisher retrieves a publisher by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetPublisher(ctx context.Context, pubID string) (*domain.Publisher, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM publishers WHERE id = ?`, pubID)

	p, err := scanPublisher(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FindOrCreatePublisherByName resolves a free-text publisher name to a
// canonical record, creating one if needed. Matching is case-insensitive on
// the trimmed name. Returns (publisher, created, error).
func (s *Store) FindOrCreatePublisherByName(ctx context.Context, name string) (*domain.Publisher, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, store.ErrInvalidInput.WithMessage("publisher name cannot be empty")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM publishers WHERE name = ? COLLATE NOCASE`, name)
	existing, err := scanPublisher(row)
	if err == nil {
		return existing, false, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, err
	}

	p := &domain.Publisher{
		ID:        id.MustGenerate(id.PrefixPublisher),
		Name:      name,
		CreatedAt: time.Now(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO publishers (id, name, created_at) VALUES (?, ?, ?)`,
		p.ID, p.Name, formatTime(p.CreatedAt))
	if err != nil {
		// Lost a race with a concurrent insert; fall back to the winner.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			row := s.db.QueryRowContext(ctx,
				`SELECT id, name, created_at FROM publishers WHERE name = ? COLLATE NOCASE`, name)
			winner, scanErr := scanPublisher(row)
			if scanErr != nil {
				return nil, false, scanErr
			}
			return winner, false, nil
		}
		return nil, false, err
	}

	return p, true, nil
}

// ListPublishers returns all publishers ordered by name.
func (s *Store) ListPublishers(ctx context.Context) ([]*domain.Publisher, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM publishers ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pubs []*domain.Publisher
	for rows.Next() {
		p, err := scanPublisher(rows)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if pubs == nil {
		pubs = []*domain.Publisher{}
	}
	return pubs, nil
}
