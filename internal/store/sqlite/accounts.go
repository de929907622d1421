package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/bookendsapp/bookends-server/internal/domain"
	"github.com/bookendsapp/bookends-server/internal/store"
)

// accountColumns is the ordered list of columns selected in account queries.
// Must match the scan order in scanAccount.
const accountColumns = `id, created_at, updated_at, email, email_lower,
	password_hash, email_confirmed, active, expires_at, card_last4, customer_id`

// scanAccount scans a sql.Row (or sql.Rows via its Scan method) into a domain.Account.
func scanAccount(scanner interface{ Scan(dest ...any) error }) (*domain.Account, error) {
	var a domain.Account

	var (
		createdAt      string
		updatedAt      string
		emailLower     string
		emailConfirmed int
		active         int
		expiresAt      sql.NullString
		cardLast4      sql.NullString
		customerID     sql.NullString
	)

	err := scanner.Scan(
		&a.ID,
		&createdAt,
		&updatedAt,
		&a.Email,
		&emailLower,
		&a.PasswordHash,
		&emailConfirmed,
		&active,
		&expiresAt,
		&cardLast4,
		&customerID,
	)
	if err != nil {
		return nil, err
	}

	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	a.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	a.EmailConfirmed = emailConfirmed != 0
	a.Active = active != 0

	if expiresAt.Valid && expiresAt.String != "" {
		a.ExpiresAt, err = parseTime(expiresAt.String)
		if err != nil {
			return nil, err
		}
	}
	if cardLast4.Valid {
		a.CardLast4 = cardLast4.String
	}
	if customerID.Valid {
		a.CustomerID = customerID.String
	}

	return &a, nil
}

// CreateAccount inserts a new account.
// Returns store.ErrAlreadyExists if the ID or email is already taken.
func (s *Store) CreateAccount(ctx context.Context, account *domain.Account) error {
	emailLower := strings.ToLower(strings.TrimSpace(account.Email))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (
			id, created_at, updated_at, email, email_lower,
			password_hash, email_confirmed, active, expires_at, card_last4, customer_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		formatTime(account.CreatedAt),
		formatTime(account.UpdatedAt),
		account.Email,
		emailLower,
		account.PasswordHash,
		boolToInt(account.EmailConfirmed),
		boolToInt(account.Active),
		nullTime(account.ExpiresAt),
		nullString(account.CardLast4),
		nullString(account.CustomerID),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetAccount retrieves an account by ID.
// Returns store.ErrNotFound if the account does not exist.
func (s *Store) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)

	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetAccountByEmail retrieves an account by case-insensitive email match.
// Returns store.ErrNotFound if the account does not exist.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	lower := strings.ToLower(strings.TrimSpace(email))
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email_lower = ?`, lower)

	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetAccountByCustomerID retrieves the account attached to a payment
// processor customer. Returns store.ErrNotFound if no account matches.
func (s *Store) GetAccountByCustomerID(ctx context.Context, customerID string) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE customer_id = ?`, customerID)

	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAccount performs a full row update on an existing account.
// Returns store.ErrNotFound if the account does not exist.
func (s *Store) UpdateAccount(ctx context.Context, account *domain.Account) error {
	emailLower := strings.ToLower(strings.TrimSpace(account.Email))

	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET
			updated_at = ?, email = ?, email_lower = ?, password_hash = ?,
			email_confirmed = ?, active = ?, expires_at = ?, card_last4 = ?, customer_id = ?
		WHERE id = ?`,
		formatTime(account.UpdatedAt),
		account.Email,
		emailLower,
		account.PasswordHash,
		boolToInt(account.EmailConfirmed),
		boolToInt(account.Active),
		nullTime(account.ExpiresAt),
		nullString(account.CardLast4),
		nullString(account.CustomerID),
		account.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
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

// DeleteAccount removes an account. Books, sets and sessions cascade.
// Returns store.ErrNotFound if the account does not exist.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
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
