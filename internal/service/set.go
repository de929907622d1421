package service

import (
	"context"
	"fmt"

	"github.com/bookendsapp/bookends-server/internal/domain"
	domainerrors "github.com/bookendsapp/bookends-server/internal/errors"
	"github.com/bookendsapp/bookends-server/internal/logger"
	"github.com/bookendsapp/bookends-server/internal/store"
)

// SetService reads the account's sets. Sets are created and torn down only
// through book reconciliation, so this service is read-mostly: its one
// mutation is sweeping up sets that reconciliation left empty.
type SetService struct {
	store  store.Store
	logger *logger.Logger
}

// NewSetService creates a new set service.
func NewSetService(store store.Store, logger *logger.Logger) *SetService {
	return &SetService{store: store, logger: logger}
}

// SetWithBooks is a set together with its member books.
type SetWithBooks struct {
	*domain.Set
	Books []*domain.Book `json:"books"`
}

// List returns the account's sets with member counts. Sets that no longer
// contain any book are removed first, so the listing never shows leftovers
// from books that moved on.
func (s *SetService) List(ctx context.Context, accountID string) ([]*domain.Set, error) {
	removed, err := s.store.DeleteEmptySets(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("clean up empty sets: %w", err)
	}
	if removed > 0 {
		s.logger.Debug("removed empty sets", "account_id", accountID, "count", removed)
	}

	sets, err := s.store.ListSets(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	return sets, nil
}

// Get returns one of the account's sets with its member books. Sets owned
// by other accounts read as not found.
func (s *SetService) Get(ctx context.Context, accountID, setID string) (*SetWithBooks, error) {
	set, err := s.store.GetSet(ctx, accountID, setID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("set not found")
		}
		return nil, fmt.Errorf("get set: %w", err)
	}

	books := make([]*domain.Book, 0, len(set.BookIDs))
	for _, bookID := range set.BookIDs {
		book, err := s.store.GetBook(ctx, accountID, bookID)
		if err != nil {
			return nil, fmt.Errorf("load set member %s: %w", bookID, err)
		}
		books = append(books, book)
	}

	return &SetWithBooks{Set: set, Books: books}, nil
}
