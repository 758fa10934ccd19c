package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `b.id, b.title, b.author, b.year, b.isbn, b.other_code,
	b.edition, b.binding_type, b.classification, b.remarks, b.imprint,
	b.publisher_exclusive, b.publisher_id, p.name, b.created_at, b.updated_at`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
// Pricings are left empty; callers attach them separately when needed.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		year          sql.NullInt64
		isbn          sql.NullString
		otherCode     sql.NullString
		edition       sql.NullString
		bindingType   sql.NullString
		classif       sql.NullString
		remarks       sql.NullString
		imprint       sql.NullString
		exclusive     int
		publisherID   sql.NullString
		publisherName sql.NullString
		createdAt     string
		updatedAt     string
	)

	err := scanner.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&year,
		&isbn,
		&otherCode,
		&edition,
		&bindingType,
		&classif,
		&remarks,
		&imprint,
		&exclusive,
		&publisherID,
		&publisherName,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if year.Valid {
		y := int(year.Int64)
		b.Year = &y
	}
	b.ISBN = isbn.String
	b.OtherCode = otherCode.String
	b.Edition = edition.String
	b.BindingType = bindingType.String
	b.Classification = classif.String
	b.Remarks = remarks.String
	b.Imprint = imprint.String
	b.PublisherExclusive = exclusive != 0
	b.PublisherID = publisherID.String
	b.Publisher = publisherName.String

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

const bookSelect = `SELECT ` + bookColumns + `
	FROM books b LEFT JOIN publishers p ON p.id = b.publisher_id`

// CreateBook inserts a new book.
// Returns store.ErrAlreadyExists on a duplicate ISBN or other code.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (id, title, author, year, isbn, other_code,
			edition, binding_type, classification, remarks, imprint,
			publisher_exclusive, publisher_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		book.Title,
		book.Author,
		nullInt(book.Year),
		nullString(book.ISBN),
		nullString(book.OtherCode),
		nullString(book.Edition),
		nullString(book.BindingType),
		nullString(book.Classification),
		nullString(book.Remarks),
		nullString(book.Imprint),
		boolToInt(book.PublisherExclusive),
		nullString(book.PublisherID),
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	if err := s.searchIndexer.IndexBook(ctx, book); err != nil {
		s.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
	}
	return nil
}

// GetBook retrieves a book by its ID.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx, bookSelect+` WHERE b.id = ?`, id)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBookByISBN retrieves a book by its normalized ISBN.
// Returns store.ErrNotFound if no book carries that ISBN.
func (s *Store) GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx, bookSelect+` WHERE b.isbn = ?`, isbn)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBookByOtherCode retrieves a book by its opaque identity code.
// Returns store.ErrNotFound if no book carries that code.
func (s *Store) GetBookByOtherCode(ctx context.Context, code string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx, bookSelect+` WHERE b.other_code = ?`, code)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBook persists changes to an existing book.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE books SET title = ?, author = ?, year = ?, isbn = ?,
			other_code = ?, edition = ?, binding_type = ?, classification = ?,
			remarks = ?, imprint = ?, publisher_exclusive = ?, publisher_id = ?,
			updated_at = ?
		WHERE id = ?`,
		book.Title,
		book.Author,
		nullInt(book.Year),
		nullString(book.ISBN),
		nullString(book.OtherCode),
		nullString(book.Edition),
		nullString(book.BindingType),
		nullString(book.Classification),
		nullString(book.Remarks),
		nullString(book.Imprint),
		boolToInt(book.PublisherExclusive),
		nullString(book.PublisherID),
		formatTime(book.UpdatedAt),
		book.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	if err := s.searchIndexer.IndexBook(ctx, book); err != nil {
		s.logger.Warn("failed to reindex book", "book_id", book.ID, "error", err)
	}
	return nil
}

// DeleteBook removes a book and, via cascade, its pricings.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
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

	if err := s.searchIndexer.DeleteBook(ctx, id); err != nil {
		s.logger.Warn("failed to remove book from index", "book_id", id, "error", err)
	}
	return nil
}

// ListBooks returns a page of books ordered by id for a stable cursor.
func (s *Store) ListBooks(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Book], error) {
	params.Validate()

	afterID, err := store.DecodeCursor(params.Cursor)
	if err != nil {
		return nil, store.ErrInvalidInput.WithCause(err)
	}

	// Fetch one extra row to detect whether more pages exist.
	rows, err := s.db.QueryContext(ctx,
		bookSelect+` WHERE b.id > ? ORDER BY b.id ASC LIMIT ?`,
		afterID, params.Limit+1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &store.PaginatedResult[*domain.Book]{Items: books}
	if len(books) > params.Limit {
		result.Items = books[:params.Limit]
		result.HasMore = true
		result.NextCursor = store.EncodeCursor(result.Items[len(result.Items)-1].ID)
	}
	if result.Items == nil {
		result.Items = []*domain.Book{}
	}

	return result, nil
}

// ListAllBooks returns every book, ordered by title. Used by the duplicate
// matcher and the index rebuild.
func (s *Store) ListAllBooks(ctx context.Context) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, bookSelect+` ORDER BY b.title ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

// CountBooks returns the total number of books.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&count)
	return count, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
