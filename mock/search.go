package mock

import (
	"context"

	"github.com/govseek/govseek"
)

var _ govseek.SearchService = (*SearchService)(nil)

// SearchService is a mock implementation of govseek.SearchService.
type SearchService struct {
	SearchFn func(ctx context.Context, query string, k int) ([]govseek.RetrievedDocument, error)
}

func (s *SearchService) Search(ctx context.Context, query string, k int) ([]govseek.RetrievedDocument, error) {
	return s.SearchFn(ctx, query, k)
}
