package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bookendsapp/bookends-server/internal/domain"
	"github.com/bookendsapp/bookends-server/internal/id"
	"github.com/bookendsapp/bookends-server/internal/store"
)

// setColumns is the ordered list of columns selected in set queries.
// Must match the scan order in scanSet.
const setColumns = `id, account_id, created_at, updated_at, title`

// scanSet scans a sql.Row (or sql.Rows via its Scan method) into a domain.Set.
func scanSet(scanner interface{ Scan(dest ...any) error }) (*domain.Set, error) {
	var set domain.Set

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&set.ID,
		&set.AccountID,
		&createdAt,
		&updatedAt,
		&set.Title,
	)
	if err != nil {
		return nil, err
	}

	set.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	set.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &set, nil
}

// loadSetBookIDs loads the IDs of the books in a set, newest first.
func (s *Store) loadSetBookIDs(ctx context.Context, setID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sb.book_id FROM set_books sb
		JOIN books ON books.id = sb.book_id
		WHERE sb.set_id = ?
		ORDER BY books.created_at DESC, books.id DESC`, setID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookIDs []string
	for rows.Next() {
		var bookID string
		if err := rows.Scan(&bookID); err != nil {
			return nil, err
		}
		bookIDs = append(bookIDs, bookID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookIDs, nil
}

// GetSet retrieves a set by ID scoped to the account, including its book IDs.
// A set owned by another account reads as not found.
func (s *Store) GetSet(ctx context.Context, accountID, setID string) (*domain.Set, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+setColumns+` FROM sets WHERE id = ? AND account_id = ?`, setID, accountID)

	set, err := scanSet(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	set.BookIDs, err = s.loadSetBookIDs(ctx, set.ID)
	if err != nil {
		return nil, err
	}
	set.BookCount = len(set.BookIDs)
	return set, nil
}

// ListSets returns the account's sets with member counts, sorted by title.
func (s *Store) ListSets(ctx context.Context, accountID string) ([]*domain.Set, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+setColumns+`, (SELECT COUNT(*) FROM set_books WHERE set_id = sets.id)
		FROM sets WHERE account_id = ? ORDER BY title`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []*domain.Set
	for rows.Next() {
		var set domain.Set
		var createdAt, updatedAt string
		if err := rows.Scan(&set.ID, &set.AccountID, &createdAt, &updatedAt, &set.Title, &set.BookCount); err != nil {
			return nil, err
		}
		if set.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if set.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		sets = append(sets, &set)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sets, nil
}

// ReconcileBookSets replaces a book's set memberships in one transaction.
// All existing memberships for the book are removed first, then the book is
// attached to one set per title, creating sets that don't exist yet. Titles
// are matched verbatim. Duplicate titles collapse to a single membership.
func (s *Store) ReconcileBookSets(ctx context.Context, book *domain.Book, titles []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM set_books WHERE book_id = ?`, book.ID); err != nil {
		return fmt.Errorf("clear set memberships: %w", err)
	}

	now := formatTime(time.Now())
	for _, title := range titles {
		var setID string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM sets WHERE account_id = ? AND title = ?`,
			book.AccountID, title).Scan(&setID)
		if err == sql.ErrNoRows {
			setID, err = id.Generate("set")
			if err != nil {
				return fmt.Errorf("generate set ID: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO sets (id, account_id, created_at, updated_at, title)
				VALUES (?, ?, ?, ?, ?)`,
				setID, book.AccountID, now, now, title); err != nil {
				return fmt.Errorf("create set %q: %w", title, err)
			}
		} else if err != nil {
			return fmt.Errorf("look up set %q: %w", title, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO set_books (set_id, book_id) VALUES (?, ?)`,
			setID, book.ID); err != nil {
			return fmt.Errorf("attach book to set %q: %w", title, err)
		}
	}

	return tx.Commit()
}

// DeleteEmptySets removes the account's sets that contain no books.
// Returns how many were removed.
func (s *Store) DeleteEmptySets(ctx context.Context, accountID string) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM sets WHERE account_id = ?
		AND NOT EXISTS (SELECT 1 FROM set_books WHERE set_id = sets.id)`, accountID)
	if err != nil {
		return 0, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}
