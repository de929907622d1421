// Package store defines the persistence interface for the Bookends server.
package store

import (
	"context"

	"github.com/bookendsapp/bookends-server/internal/domain"
)

// BookFilter narrows ListBooks to books with a flag raised. Empty means all.
type BookFilter string

const (
	FilterAll      BookFilter = ""
	FilterExcited  BookFilter = "excited"
	FilterReading  BookFilter = "reading"
	FilterFinished BookFilter = "finished"
)

// Store defines the interface for all persistence operations.
// Every book and set lookup is scoped to an account; asking for another
// account's row behaves exactly like the row not existing.
type Store interface {
	// Lifecycle
	Close() error

	// Accounts
	CreateAccount(ctx context.Context, account *domain.Account) error
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetAccountByCustomerID(ctx context.Context, customerID string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, account *domain.Account) error
	DeleteAccount(ctx context.Context, id string) error

	// Auth sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteAccountSessions(ctx context.Context, accountID string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, accountID, id string) (*domain.Book, error)
	ListBooks(ctx context.Context, accountID string, filter BookFilter) ([]*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, accountID, id string) error

	// Sets
	GetSet(ctx context.Context, accountID, id string) (*domain.Set, error)
	ListSets(ctx context.Context, accountID string) ([]*domain.Set, error)
	// ReconcileBookSets replaces the book's set memberships in one
	// transaction: every membership for the book is removed, then the book
	// is attached to a set per title, creating sets that don't exist yet.
	ReconcileBookSets(ctx context.Context, book *domain.Book, titles []string) error
	// DeleteEmptySets removes the account's sets that no longer contain
	// any book. Returns how many were removed.
	DeleteEmptySets(ctx context.Context, accountID string) (int, error)
}
