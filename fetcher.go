package govseek

import "context"

// Fetcher retrieves HTML from URLs.
type Fetcher interface {
	// Fetch issues a single GET for the URL and returns the response body.
	// The context controls timeout and cancellation. Failures are reported
	// with ETIMEOUT or EUNAVAILABLE codes and are never fatal to a crawl.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases client resources.
	Close() error
}

// SeedSource discovers the list of seed URLs to crawl.
type SeedSource interface {
	// Discover returns seed URLs in the order they appear in the source.
	// A failed fetch of the index is a soft failure: implementations log
	// and return an empty slice rather than an error the caller must
	// abort on.
	Discover(ctx context.Context, indexURL string) ([]string, error)
}
