package govseek

import (
	"context"
	"strings"
	"time"
)

// Default crawl bounds. These are policy defaults, not algorithmic
// constants; the CLI exposes them as flags.
const (
	DefaultMaxPages = 10
	DefaultMaxDepth = 2
)

// CrawlSession describes one crawl of a single seed URL. Sessions are
// immutable after creation; all mutable traversal state (visited set,
// frontier, store handle) is owned by the crawler running the session.
type CrawlSession struct {
	SeedURL       string
	AllowedDomain string
	StartedAt     time.Time
	MaxDepth      int
	MaxPages      int
}

// Validate returns an error if the session contains invalid fields.
func (s *CrawlSession) Validate() error {
	if s.SeedURL == "" {
		return Errorf(EINVALID, "session seed URL required")
	}
	if s.AllowedDomain == "" {
		return Errorf(EINVALID, "session allowed domain required")
	}
	if s.MaxDepth < 0 {
		return Errorf(EINVALID, "session max depth must be non-negative")
	}
	if s.MaxPages <= 0 {
		return Errorf(EINVALID, "session max pages must be positive")
	}
	return nil
}

// AllowsURL reports whether a discovered href is in scope for the session.
// Matching is substring containment, not host parsing. This mirrors the
// behavior the corpus was built with and can admit other hosts that happen
// to contain the substring.
func (s *CrawlSession) AllowsURL(href string) bool {
	return strings.Contains(href, s.AllowedDomain)
}

// FrontierEntry is a discovered-but-not-yet-visited URL together with the
// depth at which it was found. The seed has depth 0; an entry produced from
// a page has the page's depth plus one.
type FrontierEntry struct {
	URL   string
	Depth int
}

// Frontier manages the crawl work stack with deduplication.
type Frontier interface {
	// Push adds an entry to the frontier.
	// Returns false if the URL has already been seen.
	Push(entry FrontierEntry) bool

	// Pop returns the next entry to visit.
	// Returns false if the frontier is empty.
	Pop() (FrontierEntry, bool)

	// Len returns the number of entries awaiting traversal.
	Len() int

	// Seen returns true if the URL has been queued or visited.
	Seen(url string) bool
}

// Limiter blocks between outbound fetches.
type Limiter interface {
	// Wait blocks for the limiter's delay window. It returns an error only
	// if the context is canceled before the wait completes.
	Wait(ctx context.Context) error
}

// nonTextExtensions lists resource suffixes the crawler never fetches.
var nonTextExtensions = []string{
	".pdf", ".doc", ".docx", ".xls", ".xlsx", ".zip", ".rar", ".mp3", ".mp4",
}

// IsNonTextURL reports whether the URL points at a known non-text resource.
func IsNonTextURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, ext := range nonTextExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
