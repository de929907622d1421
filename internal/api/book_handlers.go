package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookendsapp/bookends-server/internal/domain"
	"github.com/bookendsapp/bookends-server/internal/service"
	"github.com/bookendsapp/bookends-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns the account's books, optionally filtered by reading-status flag",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "createBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Add book",
		Description: "Adds a book to the library. Brace-delimited tags in the sets field become its set memberships.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book by ID",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Replaces a book's fields and reconciles its set memberships",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Removes a book from the library",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)
}

// === DTOs ===

// ListBooksInput contains parameters for listing books.
type ListBooksInput struct {
	Authorization string `header:"Authorization"`
	Filter        string `query:"filter" doc:"Only books with this flag raised: excited, reading or finished"`
}

// BookRequest is the request body for creating or updating a book.
type BookRequest struct {
	Title    string `json:"title" validate:"required,max=512" doc:"Book title"`
	Author   string `json:"author,omitempty" validate:"max=512" doc:"Author"`
	URL      string `json:"url,omitempty" validate:"omitempty,url,max=2048" doc:"Link to the book"`
	Excited  bool   `json:"excited,omitempty" doc:"Wants to read it soon"`
	Reading  bool   `json:"reading,omitempty" doc:"Currently reading"`
	Finished bool   `json:"finished,omitempty" doc:"Done with it"`
	Sets     string `json:"sets,omitempty" doc:"Brace-delimited set tags, e.g. {Fiction} {Sci-Fi}"`
}

// CreateBookInput wraps the book creation request for Huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization"`
	Body          BookRequest
}

// GetBookInput contains parameters for fetching one book.
type GetBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// UpdateBookInput wraps the book update request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          BookRequest
}

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID        string    `json:"id" doc:"Book ID"`
	Title     string    `json:"title" doc:"Book title"`
	Author    string    `json:"author,omitempty" doc:"Author"`
	URL       string    `json:"url,omitempty" doc:"Link to the book"`
	Excited   bool      `json:"excited" doc:"Wants to read it soon"`
	Reading   bool      `json:"reading" doc:"Currently reading"`
	Finished  bool      `json:"finished" doc:"Done with it"`
	SetIDs    []string  `json:"set_ids,omitempty" doc:"Sets this book belongs to"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// BookOutput wraps a single book response for Huma.
type BookOutput struct {
	Body BookResponse
}

// ListBooksResponse contains the book listing.
type ListBooksResponse struct {
	Books []BookResponse `json:"books" doc:"The account's books, newest first"`
}

// ListBooksOutput wraps the book listing for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	accountID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Books.List(ctx, accountID, store.BookFilter(input.Filter))
	if err != nil {
		return nil, err
	}

	resp := make([]BookResponse, len(books))
	for i, b := range books {
		resp[i] = mapBookResponse(b)
	}

	return &ListBooksOutput{Body: ListBooksResponse{Books: resp}}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	accountID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Books.Create(ctx, accountID, bookServiceRequest(input.Body))
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	accountID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Books.Get(ctx, accountID, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	accountID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Books.Update(ctx, accountID, input.ID, bookServiceRequest(input.Body))
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *GetBookInput) (*MessageOutput, error) {
	accountID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Books.Delete(ctx, accountID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

// === Helpers ===

func bookServiceRequest(body BookRequest) service.BookRequest {
	return service.BookRequest{
		Title:    body.Title,
		Author:   body.Author,
		URL:      body.URL,
		Excited:  body.Excited,
		Reading:  body.Reading,
		Finished: body.Finished,
		Sets:     body.Sets,
	}
}

func mapBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		URL:       b.URL,
		Excited:   b.Excited,
		Reading:   b.Reading,
		Finished:  b.Finished,
		SetIDs:    b.SetIDs,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
