package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookendsapp/bookends-server/internal/domain"
)

func (s *Server) registerSetRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listSets",
		Method:      http.MethodGet,
		Path:        "/api/v1/sets",
		Summary:     "List sets",
		Description: "Returns the account's sets with member counts. Sets left empty by book edits are swept first.",
		Tags:        []string{"Sets"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListSets)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSet",
		Method:      http.MethodGet,
		Path:        "/api/v1/sets/{id}",
		Summary:     "Get set",
		Description: "Returns a set with its member books",
		Tags:        []string{"Sets"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetSet)
}

// === DTOs ===

// ListSetsInput contains parameters for listing sets.
type ListSetsInput struct {
	Authorization string `header:"Authorization"`
}

// GetSetInput contains parameters for fetching one set.
type GetSetInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Set ID"`
}

// SetResponse contains set data in API responses.
type SetResponse struct {
	ID        string    `json:"id" doc:"Set ID"`
	Title     string    `json:"title" doc:"Set title, verbatim as tagged"`
	BookCount int       `json:"book_count" doc:"Number of member books"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// ListSetsResponse contains the set listing.
type ListSetsResponse struct {
	Sets []SetResponse `json:"sets" doc:"The account's sets, by title"`
}

// ListSetsOutput wraps the set listing for Huma.
type ListSetsOutput struct {
	Body ListSetsResponse
}

// SetDetailResponse is a set together with its member books.
type SetDetailResponse struct {
	SetResponse
	Books []BookResponse `json:"books" doc:"Member books, newest first"`
}

// SetDetailOutput wraps a set detail response for Huma.
type SetDetailOutput struct {
	Body SetDetailResponse
}

// === Handlers ===

func (s *Server) handleListSets(ctx context.Context, input *ListSetsInput) (*ListSetsOutput, error) {
	accountID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	sets, err := s.services.Sets.List(ctx, accountID)
	if err != nil {
		return nil, err
	}

	resp := make([]SetResponse, len(sets))
	for i, set := range sets {
		resp[i] = mapSetResponse(set)
	}

	return &ListSetsOutput{Body: ListSetsResponse{Sets: resp}}, nil
}

func (s *Server) handleGetSet(ctx context.Context, input *GetSetInput) (*SetDetailOutput, error) {
	accountID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	detail, err := s.services.Sets.Get(ctx, accountID, input.ID)
	if err != nil {
		return nil, err
	}

	books := make([]BookResponse, len(detail.Books))
	for i, b := range detail.Books {
		books[i] = mapBookResponse(b)
	}

	resp := mapSetResponse(detail.Set)
	resp.BookCount = len(detail.Books)

	return &SetDetailOutput{
		Body: SetDetailResponse{
			SetResponse: resp,
			Books:       books,
		},
	}, nil
}

// === Helpers ===

func mapSetResponse(set *domain.Set) SetResponse {
	return SetResponse{
		ID:        set.ID,
		Title:     set.Title,
		BookCount: set.BookCount,
		CreatedAt: set.CreatedAt,
		UpdatedAt: set.UpdatedAt,
	}
}
