// Package crawl provides crawl orchestration: frontier management, rate
// limiting, the per-session traversal state machine, and the multi-seed
// runner.
package crawl

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/govseek/govseek"
	"github.com/govseek/govseek/goquery"
)

// Frontier sizing for dedup filters.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate for deduplication.
	frontierFalsePositiveRate = 0.01
)

// Crawler traverses one domain per session: frontier discovery, visited-set
// dedup, depth and page-count bounds, non-text filtering, chunking, and
// durable persistence. A single Crawler may run many sessions; all mutable
// traversal state is local to CrawlSite.
type Crawler struct {
	Fetcher govseek.Fetcher
	Stores  govseek.ChunkStoreOpener

	// Domains, if set, spaces requests per host across concurrent sessions.
	Domains *DomainLimiter

	Logger *slog.Logger

	ChunkSize    int
	ChunkOverlap int
}

// Result holds the outcome of one crawl session.
type Result struct {
	Visited int
	Chunks  int
	Skipped int
	Failed  int
}

// ProgressType indicates the type of progress event.
type ProgressType int

// Progress event types.
const (
	ProgressStarted ProgressType = iota
	ProgressVisited
	ProgressSkipped
	ProgressFailed
	ProgressFinished
)

// ProgressEvent reports progress during a crawl session.
type ProgressEvent struct {
	Type  ProgressType
	URL   string
	Depth int
	Error error
}

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// CrawlSite runs one crawl session to completion. Fetch and store failures
// are contained per URL; the only errors returned are an invalid session,
// a store that cannot be opened, and context cancellation.
func (c *Crawler) CrawlSite(ctx context.Context, session govseek.CrawlSession, progress ProgressFunc) (*Result, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("domain", session.AllowedDomain)

	chunkSize := c.ChunkSize
	if chunkSize <= 0 {
		chunkSize = govseek.DefaultChunkSize
	}
	chunkOverlap := c.ChunkOverlap
	if chunkOverlap < 0 {
		chunkOverlap = govseek.DefaultChunkOverlap
	}

	store, err := c.Stores.OpenStore(session.AllowedDomain, session.StartedAt)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Best-effort persistence: a failed finalize loses at most the
		// closing bracket, never completed records.
		if err := store.Finalize(); err != nil {
			logger.Error("content store finalize failed", "err", err)
		}
	}()

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, URL: session.SeedURL})
	}

	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	frontier.Push(govseek.FrontierEntry{URL: session.SeedURL, Depth: 0})

	visited := make(map[string]struct{})
	contentHashes := make(map[uint64]struct{})

	var result Result
	loggedDepth := false

	for {
		entry, ok := frontier.Pop()
		if !ok {
			break
		}

		if err := ctx.Err(); err != nil {
			return &result, err
		}

		// Termination guards, in order: non-text suffix, already visited,
		// page cap, depth bound. Non-text skips never count against bounds.
		if govseek.IsNonTextURL(entry.URL) {
			result.Skipped++
			if progress != nil {
				progress(ProgressEvent{Type: ProgressSkipped, URL: entry.URL, Depth: entry.Depth})
			}
			continue
		}
		if _, ok := visited[entry.URL]; ok {
			continue
		}
		if len(visited) >= session.MaxPages {
			logger.Info("page cap reached, stopping session", "maxPages", session.MaxPages)
			break
		}
		if entry.Depth > session.MaxDepth {
			if !loggedDepth {
				logger.Info("depth bound reached, pruning deeper links", "maxDepth", session.MaxDepth)
				loggedDepth = true
			}
			continue
		}

		if c.Domains != nil {
			if host := urlHost(entry.URL); host != "" {
				if err := c.Domains.Wait(ctx, host); err != nil {
					return &result, err
				}
			}
		}

		html, err := c.Fetcher.Fetch(ctx, entry.URL)
		if err != nil {
			// Abandon this URL, no retry; the rest of the frontier proceeds.
			result.Failed++
			logger.Warn("fetch failed", "url", entry.URL, "err", err)
			if progress != nil {
				progress(ProgressEvent{Type: ProgressFailed, URL: entry.URL, Depth: entry.Depth, Error: err})
			}
			continue
		}

		written := c.processPage(ctx, logger, store, contentHashes, entry.URL, html, chunkSize, chunkOverlap, &result)
		if written {
			visited[entry.URL] = struct{}{}
			result.Visited = len(visited)
			if progress != nil {
				progress(ProgressEvent{Type: ProgressVisited, URL: entry.URL, Depth: entry.Depth})
			}
		}

		c.discoverLinks(logger, frontier, session, entry, html)
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished})
	}

	logger.Info("crawl session finished",
		"visited", result.Visited,
		"chunks", result.Chunks,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return &result, nil
}

// processPage extracts, normalizes, chunks, and persists one page's text.
// Returns true if at least one chunk was written, which is what marks the
// URL visited. Pages whose normalized text was already stored under another
// URL are treated as duplicates and still count as visited.
func (c *Crawler) processPage(ctx context.Context, logger *slog.Logger, store govseek.ChunkWriter, contentHashes map[uint64]struct{}, pageURL, html string, chunkSize, chunkOverlap int, result *Result) bool {
	text, err := goquery.ExtractText(html)
	if err != nil {
		result.Failed++
		logger.Warn("text extraction failed", "url", pageURL, "err", err)
		return false
	}

	normalized := govseek.NormalizeText(text)
	if normalized == "" {
		return false
	}

	hash := xxhash.Sum64String(normalized)
	if _, ok := contentHashes[hash]; ok {
		logger.Debug("duplicate content, chunks already stored", "url", pageURL)
		return true
	}

	wrote := false
	for _, chunkText := range govseek.SplitText(normalized, chunkSize, chunkOverlap) {
		if chunkText == "" {
			continue
		}
		chunk := &govseek.Chunk{
			ID:   uuid.NewString(),
			Link: pageURL,
			Text: chunkText,
		}
		if err := store.Append(ctx, chunk); err != nil {
			// A dropped chunk is acceptable; a crashed crawl is not.
			logger.Error("content store append failed", "url", pageURL, "err", err)
			continue
		}
		result.Chunks++
		wrote = true
	}

	if wrote {
		contentHashes[hash] = struct{}{}
	}
	return wrote
}

// discoverLinks pushes the page's in-scope links onto the frontier. Links
// are pushed in reverse document order so the LIFO frontier visits them in
// the order they appear on the page.
func (c *Crawler) discoverLinks(logger *slog.Logger, frontier *Frontier, session govseek.CrawlSession, entry govseek.FrontierEntry, html string) {
	links, err := goquery.ExtractLinks(html)
	if err != nil {
		logger.Warn("link extraction failed", "url", entry.URL, "err", err)
		return
	}

	for i := len(links) - 1; i >= 0; i-- {
		href := links[i]
		if !session.AllowsURL(href) {
			continue
		}
		if frontier.Push(govseek.FrontierEntry{URL: href, Depth: entry.Depth + 1}) {
			logger.Debug("discovered link", "url", href, "depth", entry.Depth+1)
		}
	}
}

func urlHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
