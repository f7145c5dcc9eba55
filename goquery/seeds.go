package goquery

import (
	"context"
	"log/slog"

	"github.com/govseek/govseek"
)

// Ensure SeedSource implements govseek.SeedSource at compile time.
var _ govseek.SeedSource = (*SeedSource)(nil)

// SeedSource discovers seed URLs from a trusted-sites index page by
// collecting every anchor inside the page's table bodies.
type SeedSource struct {
	fetcher govseek.Fetcher
	logger  *slog.Logger
}

// NewSeedSource creates a SeedSource that fetches the index page with the
// given fetcher. If logger is nil, slog.Default() is used.
func NewSeedSource(fetcher govseek.Fetcher, logger *slog.Logger) *SeedSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeedSource{fetcher: fetcher, logger: logger}
}

// Discover fetches the index page and returns the seed URLs in document
// order. A failed fetch is a soft failure: it is logged and an empty slice
// is returned, leaving the caller to decide whether "no seeds" is fatal.
func (s *SeedSource) Discover(ctx context.Context, indexURL string) ([]string, error) {
	html, err := s.fetcher.Fetch(ctx, indexURL)
	if err != nil {
		s.logger.Warn("seed index fetch failed",
			"url", indexURL,
			"err", err,
		)
		return []string{}, nil
	}

	links, err := ExtractTableLinks(html)
	if err != nil {
		return nil, err
	}

	s.logger.Info("seed discovery",
		"url", indexURL,
		"count", len(links),
	)
	return links, nil
}
