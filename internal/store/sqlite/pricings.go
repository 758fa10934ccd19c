package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

const pricingColumns = `id, book_id, source, rate, discount, currency, created_at, updated_at`

func scanPricing(scanner interface{ Scan(dest ...any) error }) (*domain.Pricing, error) {
	var p domain.Pricing

	var (
		currency  sql.NullString
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&p.ID,
		&p.BookID,
		&p.Source,
		&p.Rate,
		&p.Discount,
		&currency,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Currency = currency.String
	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// CreatePricing inserts a price record.
// Returns store.ErrAlreadyExists if the book already has a price from the
// same source.
func (s *Store) CreatePricing(ctx context.Context, p *domain.Pricing) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pricings (id, book_id, source, rate, discount, currency, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.BookID,
		p.Source,
		p.Rate,
		p.Discount,
		nullString(p.Currency),
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetPricing retrieves a price record by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetPricing(ctx context.Context, id string) (*domain.Pricing, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+pricingColumns+` FROM pricings WHERE id = ?`, id)

	p, err := scanPricing(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPricingBySource retrieves the price a given source quotes for a book.
// Returns store.ErrNotFound if the source has no price on record.
func (s *Store) GetPricingBySource(ctx context.Context, bookID, source string) (*domain.Pricing, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+pricingColumns+` FROM pricings WHERE book_id = ? AND source = ?`,
		bookID, source)

	p, err := scanPricing(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePricing persists changes to a price record.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) UpdatePricing(ctx context.Context, p *domain.Pricing) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pricings SET rate = ?, discount = ?, currency = ?, updated_at = ?
		WHERE id = ?`,
		p.Rate,
		p.Discount,
		nullString(p.Currency),
		formatTime(p.UpdatedAt),
		p.ID,
	)
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

// ListPricingsForBook returns all price records for a book, ordered by source.
func (s *Store) ListPricingsForBook(ctx context.Context, bookID string) ([]*domain.Pricing, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+pricingColumns+` FROM pricings WHERE book_id = ? ORDER BY source ASC`,
		bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pricings []*domain.Pricing
	for rows.Next() {
		p, err := scanPricing(rows)
		if err != nil {
			return nil, err
		}
		pricings = append(pricings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if pricings == nil {
		pricings = []*domain.Pricing{}
	}
	return pricings, nil
}

// DeletePricing removes a price record.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) DeletePricing(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pricings WHERE id = ?`, id)
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
