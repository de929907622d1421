package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bookendsapp/bookends-server/internal/domain"
	domainerrors "github.com/bookendsapp/bookends-server/internal/errors"
	"github.com/bookendsapp/bookends-server/internal/id"
	"github.com/bookendsapp/bookends-server/internal/logger"
	"github.com/bookendsapp/bookends-server/internal/store"
)

// BookService handles the library: book CRUD and the set-membership
// reconciliation driven by the tagged title syntax.
type BookService struct {
	store  store.Store
	logger *logger.Logger
}

// NewBookService creates a new book service.
func NewBookService(store store.Store, logger *logger.Logger) *BookService {
	return &BookService{store: store, logger: logger}
}

// BookRequest carries the editable fields of a book. Sets is the raw
// tagged string, e.g. "{Fiction} {Sci-Fi}"; its tokens become the book's
// complete set membership.
type BookRequest struct {
	Title    string `json:"title" validate:"required,max=512"`
	Author   string `json:"author" validate:"max=512"`
	URL      string `json:"url" validate:"omitempty,url,max=2048"`
	Excited  bool   `json:"excited"`
	Reading  bool   `json:"reading"`
	Finished bool   `json:"finished"`
	Sets     string `json:"sets"`
}

// Create adds a book to the account's library and reconciles its set
// memberships from the tagged string.
func (s *BookService) Create(ctx context.Context, accountID string, req BookRequest) (*domain.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	now := time.Now()
	book := &domain.Book{
		ID:        bookID,
		AccountID: accountID,
		Title:     req.Title,
		Author:    req.Author,
		URL:       req.URL,
		Excited:   req.Excited,
		Reading:   req.Reading,
		Finished:  req.Finished,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	if err := s.reconcileSets(ctx, book, req.Sets); err != nil {
		// The insert already committed; take the book back out so a
		// failed request doesn't leave a half-created one behind.
		if delErr := s.store.DeleteBook(ctx, accountID, bookID); delErr != nil {
			s.logger.WithError(delErr).Warn("failed to remove book after set reconciliation error",
				"account_id", accountID, "book_id", bookID)
		}
		return nil, err
	}

	s.logger.Info("book added", "account_id", accountID, "book_id", bookID)
	return s.Get(ctx, accountID, bookID)
}

// Get retrieves one of the account's books. Books owned by other accounts
// read as not found.
func (s *BookService) Get(ctx context.Context, accountID, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, accountID, bookID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// List returns the account's books, optionally filtered by one of the
// reading-status flags.
func (s *BookService) List(ctx context.Context, accountID string, filter store.BookFilter) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx, accountID, filter)
	if err != nil {
		if domainerrors.Is(err, store.ErrInvalidInput) {
			return nil, domainerrors.Validationf("unknown filter %q", filter)
		}
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Update replaces a book's fields and reconciles its set memberships from
// the tagged string.
func (s *BookService) Update(ctx context.Context, accountID, bookID string, req BookRequest) (*domain.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	book, err := s.Get(ctx, accountID, bookID)
	if err != nil {
		return nil, err
	}

	book.Title = req.Title
	book.Author = req.Author
	book.URL = req.URL
	book.Excited = req.Excited
	book.Reading = req.Reading
	book.Finished = req.Finished
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("update book: %w", err)
	}

	if err := s.reconcileSets(ctx, book, req.Sets); err != nil {
		return nil, err
	}

	s.logger.Info("book updated", "account_id", accountID, "book_id", bookID)
	return s.Get(ctx, accountID, bookID)
}

// Delete removes one of the account's books. Its set memberships go with
// it; the sets themselves stay, even if now empty.
func (s *BookService) Delete(ctx context.Context, accountID, bookID string) error {
	if err := s.store.DeleteBook(ctx, accountID, bookID); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("book not found")
		}
		return fmt.Errorf("delete book: %w", err)
	}
	s.logger.Info("book deleted", "account_id", accountID, "book_id", bookID)
	return nil
}

// reconcileSets parses the tagged string and makes its tokens the book's
// entire set membership. An empty string clears every membership.
func (s *BookService) reconcileSets(ctx context.Context, book *domain.Book, raw string) error {
	titles := domain.ParseSetTitles(raw)
	if err := s.store.ReconcileBookSets(ctx, book, titles); err != nil {
		return fmt.Errorf("reconcile sets: %w", err)
	}
	return nil
}
