package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/govseek/govseek"
)

// Ensure LoggingSearchService implements govseek.SearchService.
var _ govseek.SearchService = (*LoggingSearchService)(nil)

// LoggingSearchService wraps a SearchService with debug logging.
type LoggingSearchService struct {
	next   govseek.SearchService
	logger *slog.Logger
}

// NewLoggingSearchService creates a new LoggingSearchService.
func NewLoggingSearchService(next govseek.SearchService, logger *slog.Logger) *LoggingSearchService {
	return &LoggingSearchService{next: next, logger: logger}
}

// Search delegates to the wrapped service and logs the operation.
func (s *LoggingSearchService) Search(ctx context.Context, query string, k int) (docs []govseek.RetrievedDocument, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("search",
			"query", query,
			"k", k,
			"hits", len(docs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, query, k)
}
