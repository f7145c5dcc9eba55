package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/govseek/govseek"
	"golang.org/x/sync/errgroup"
)

// Runner crawls many seeds concurrently, one session per seed. Sessions
// share nothing mutable: each owns its visited set, frontier, and content
// store, so a bounded worker pool over the seed list is safe.
type Runner struct {
	Crawler *Crawler
	Logger  *slog.Logger

	MaxDepth    int
	MaxPages    int
	Concurrency int
}

// CrawlAll runs one session per seed URL and returns the aggregated result.
// A failing session is logged and counted, never fatal to its siblings; the
// only error returned is context cancellation.
func (r *Runner) CrawlAll(ctx context.Context, seeds []string, progress ProgressFunc) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	var mu sync.Mutex
	var total Result

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, seed := range seeds {
		g.Go(func() error {
			session, err := r.sessionFor(seed)
			if err != nil {
				logger.Warn("skipping seed", "seed", seed, "err", err)
				mu.Lock()
				total.Failed++
				mu.Unlock()
				return nil
			}

			result, err := r.Crawler.CrawlSite(gctx, session, progress)
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				logger.Warn("crawl session failed", "seed", seed, "err", err)
				mu.Lock()
				total.Failed++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			total.Visited += result.Visited
			total.Chunks += result.Chunks
			total.Skipped += result.Skipped
			total.Failed += result.Failed
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return &total, err
	}
	return &total, nil
}

// sessionFor builds a session for a seed, deriving the allowed domain from
// the seed's host.
func (r *Runner) sessionFor(seed string) (govseek.CrawlSession, error) {
	u, err := url.Parse(seed)
	if err != nil || u.Host == "" {
		return govseek.CrawlSession{}, govseek.Errorf(govseek.EINVALID, "seed %q has no host", seed)
	}

	maxDepth := r.MaxDepth
	if maxDepth <= 0 {
		maxDepth = govseek.DefaultMaxDepth
	}
	maxPages := r.MaxPages
	if maxPages <= 0 {
		maxPages = govseek.DefaultMaxPages
	}

	return govseek.CrawlSession{
		SeedURL:       seed,
		AllowedDomain: u.Host,
		StartedAt:     time.Now(),
		MaxDepth:      maxDepth,
		MaxPages:      maxPages,
	}, nil
}
