package crawl

import (
	"strings"
	"sync"

	"github.com/govseek/govseek"
	"github.com/govseek/govseek/bloom"
)

// Compile-time interface verification.
var _ govseek.Frontier = (*Frontier)(nil)

// Frontier is an in-memory work stack with Bloom filter deduplication.
// Entries pop in LIFO order, which together with pushing a page's links in
// reverse document order yields the link-order depth-first traversal the
// crawler wants. It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	stack []govseek.FrontierEntry
}

// NewFrontier creates a Frontier sized for n expected URLs with the given
// false positive rate for deduplication.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{
		seen: bloom.New(n, fpRate),
	}
}

// Push adds an entry to the frontier.
// Returns false if the URL has already been seen. URL fragments are
// stripped before deduplication, so URLs differing only by fragment are
// considered duplicates.
func (f *Frontier) Push(entry govseek.FrontierEntry) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	url := stripFragment(entry.URL)
	if f.seen.Test(url) {
		return false
	}
	f.seen.Add(url)

	entry.URL = url
	f.stack = append(f.stack, entry)
	return true
}

// Pop returns the most recently pushed entry.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (govseek.FrontierEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.stack) == 0 {
		return govseek.FrontierEntry{}, false
	}
	entry := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return entry, true
}

// Len returns the number of entries awaiting traversal.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stack)
}

// Seen returns true if the URL has been queued or visited.
// URL fragments are stripped before checking.
func (f *Frontier) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Test(stripFragment(rawURL))
}

func stripFragment(url string) string {
	if idx := strings.Index(url, "#"); idx != -1 {
		return url[:idx]
	}
	return url
}
