package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/bookendsapp/bookends-server/internal/domain"
	"github.com/bookendsapp/bookends-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, account_id, created_at, updated_at, title, author, url,
	excited, reading, finished`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		createdAt string
		updatedAt string
		author    sql.NullString
		url       sql.NullString
		excited   int
		reading   int
		finished  int
	)

	err := scanner.Scan(
		&b.ID,
		&b.AccountID,
		&createdAt,
		&updatedAt,
		&b.Title,
		&author,
		&url,
		&excited,
		&reading,
		&finished,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if author.Valid {
		b.Author = author.String
	}
	if url.Valid {
		b.URL = url.String
	}

	b.Excited = excited != 0
	b.Reading = reading != 0
	b.Finished = finished != 0

	return &b, nil
}

// loadBookSetIDs loads the IDs of the sets a book belongs to.
func (s *Store) loadBookSetIDs(ctx context.Context, bookID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sb.set_id FROM set_books sb
		JOIN sets ON sets.id = sb.set_id
		WHERE sb.book_id = ?
		ORDER BY sets.title`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var setIDs []string
	for rows.Next() {
		var setID string
		if err := rows.Scan(&setID); err != nil {
			return nil, err
		}
		setIDs = append(setIDs, setID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return setIDs, nil
}

// CreateBook inserts a new book.
// Returns store.ErrAlreadyExists on duplicate ID.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (
			id, account_id, created_at, updated_at, title, author, url,
			excited, reading, finished
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		book.AccountID,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
		book.Title,
		nullString(book.Author),
		nullString(book.URL),
		boolToInt(book.Excited),
		boolToInt(book.Reading),
		boolToInt(book.Finished),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetBook retrieves a book by ID scoped to the account, including the IDs of
// the sets it belongs to. A book owned by another account reads as not found.
func (s *Store) GetBook(ctx context.Context, accountID, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ? AND account_id = ?`, id, accountID)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	b.SetIDs, err = s.loadBookSetIDs(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBooks returns the account's books, optionally narrowed to one raised
// flag, newest first.
func (s *Store) ListBooks(ctx context.Context, accountID string, filter store.BookFilter) ([]*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE account_id = ?`
	switch filter {
	case store.FilterExcited:
		query += ` AND excited = 1`
	case store.FilterReading:
		query += ` AND reading = 1`
	case store.FilterFinished:
		query += ` AND finished = 1`
	case store.FilterAll:
	default:
		return nil, store.ErrInvalidInput.WithMessage("unknown book filter: " + string(filter))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, accountID)
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

	for _, b := range books {
		b.SetIDs, err = s.loadBookSetIDs(ctx, b.ID)
		if err != nil {
			return nil, err
		}
	}
	return books, nil
}

// UpdateBook performs a full row update on an existing book, scoped to its
// account. Returns store.ErrNotFound if the book does not exist or belongs
// to another account.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE books SET
			updated_at = ?, title = ?, author = ?, url = ?,
			excited = ?, reading = ?, finished = ?
		WHERE id = ? AND account_id = ?`,
		formatTime(book.UpdatedAt),
		book.Title,
		nullString(book.Author),
		nullString(book.URL),
		boolToInt(book.Excited),
		boolToInt(book.Reading),
		boolToInt(book.Finished),
		book.ID,
		book.AccountID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteBook removes a book scoped to the account. Set memberships cascade.
// Returns store.ErrNotFound if the book does not exist or belongs to another
// account.
func (s *Store) DeleteBook(ctx context.Context, accountID, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM books WHERE id = ? AND account_id = ?`, id, accountID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}
