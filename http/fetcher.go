// Package http provides HTTP-based implementations of govseek.Fetcher and
// a sitemap-backed govseek.SeedSource.
package http

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/govseek/govseek"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 20 * time.Second

// userAgent is a browser-like identification header. Several of the target
// sites reject unidentified clients.
const userAgent = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:52.0) Gecko/20100101 Firefox/52.0"

// Ensure Fetcher implements govseek.Fetcher at compile time.
var _ govseek.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs with a single GET per fetch.
// If a limiter is configured, every fetch waits on it before issuing the
// request.
type Fetcher struct {
	client  *http.Client
	limiter govseek.Limiter
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (20s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithLimiter sets a rate limiter the fetcher waits on before every request.
func WithLimiter(l govseek.Limiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the HTML content from the given URL. Failures are
// reported with ETIMEOUT (deadline exceeded) or EUNAVAILABLE (transport
// error or non-2xx status) so callers can contain them per URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", govseek.Errorf(govseek.EINVALID, "invalid URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", govseek.Errorf(govseek.ETIMEOUT, "fetch %s timed out: %v", url, err)
		}
		return "", govseek.Errorf(govseek.EUNAVAILABLE, "fetch %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", govseek.Errorf(govseek.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", govseek.Errorf(govseek.EUNAVAILABLE, "read %s failed: %v", url, err)
	}

	return string(body), nil
}

// Close releases resources. For the HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
