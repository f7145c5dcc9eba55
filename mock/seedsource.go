package mock

import (
	"context"

	"github.com/govseek/govseek"
)

var _ govseek.SeedSource = (*SeedSource)(nil)

// SeedSource is a mock implementation of govseek.SeedSource.
type SeedSource struct {
	DiscoverFn func(ctx context.Context, indexURL string) ([]string, error)
}

func (s *SeedSource) Discover(ctx context.Context, indexURL string) ([]string, error) {
	return s.DiscoverFn(ctx, indexURL)
}
