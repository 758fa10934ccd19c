package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// SaveImportResult persists the outcome of a bulk import so its row log
// stays downloadable after the wizard closes.
func (s *Store) SaveImportResult(ctx context.Context, result *domain.ImportResult) error {
	logJSON, err := json.Marshal(result.RowLog)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO import_results (id, rows_read, books_inserted, prices_added,
			prices_updated, skipped_duplicate, skipped_conflict, rows_errored,
			row_log, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ImportID,
		result.RowsRead,
		result.BooksInserted,
		result.PricesAdded,
		result.PricesUpdated,
		result.SkippedDuplicate,
		result.SkippedConflict,
		result.RowsErrored,
		string(logJSON),
		formatTime(nowUTC()),
	)
	return err
}

// GetImportResult retrieves a persisted import outcome by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetImportResult(ctx context.Context, importID string) (*domain.ImportResult, error) {
	var (
		r       domain.ImportResult
		logJSON string
		created string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, rows_read, books_inserted, prices_added, prices_updated,
			skipped_duplicate, skipped_conflict, rows_errored, row_log, created_at
		FROM import_results WHERE id = ?`, importID).Scan(
		&r.ImportID,
		&r.RowsRead,
		&r.BooksInserted,
		&r.PricesAdded,
		&r.PricesUpdated,
		&r.SkippedDuplicate,
		&r.SkippedConflict,
		&r.RowsErrored,
		&logJSON,
		&created,
	)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(logJSON), &r.RowLog); err != nil {
		return nil, err
	}
	return &r, nil
}
