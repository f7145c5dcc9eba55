package crawl_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/govseek/govseek"
	"github.com/govseek/govseek/crawl"
	"github.com/govseek/govseek/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageGraph is a deterministic mock site: URL -> HTML.
type pageGraph struct {
	mu      sync.Mutex
	pages   map[string]string
	fetched []string
}

func (g *pageGraph) fetcher() *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			g.mu.Lock()
			g.fetched = append(g.fetched, url)
			g.mu.Unlock()

			html, ok := g.pages[url]
			if !ok {
				return "", govseek.Errorf(govseek.EUNAVAILABLE, "HTTP 404 for %s", url)
			}
			return html, nil
		},
	}
}

func (g *pageGraph) fetchedURLs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.fetched...)
}

func page(text string, hrefs ...string) string {
	html := "<html><body><p>" + text + "</p>"
	for _, href := range hrefs {
		html += fmt.Sprintf(`<a href="%s">link</a>`, href)
	}
	return html + "</body></html>"
}

func newCrawler(g *pageGraph, store *mock.ChunkWriter) *crawl.Crawler {
	return &crawl.Crawler{
		Fetcher: g.fetcher(),
		Stores: &mock.ChunkStoreOpener{
			OpenStoreFn: func(domain string, start time.Time) (govseek.ChunkWriter, error) {
				return store, nil
			},
		},
	}
}

func session(seed string, maxDepth, maxPages int) govseek.CrawlSession {
	return govseek.CrawlSession{
		SeedURL:       seed,
		AllowedDomain: "example.gov.sg",
		StartedAt:     time.Now(),
		MaxDepth:      maxDepth,
		MaxPages:      maxPages,
	}
}

func TestCrawler_visits_seed_and_same_domain_links(t *testing.T) {
	t.Parallel()

	seed := "https://www.example.gov.sg/"
	g := &pageGraph{pages: map[string]string{
		seed: page("seed page content",
			"https://www.example.gov.sg/a",
			"https://www.example.gov.sg/b",
			"https://www.example.gov.sg/c",
			"https://www.other-domain.com/x",
			"https://www.example.gov.sg/report.pdf",
		),
		"https://www.example.gov.sg/a": page("page a content"),
		"https://www.example.gov.sg/b": page("page b content"),
		"https://www.example.gov.sg/c": page("page c content"),
	}}

	store := &mock.ChunkWriter{}
	c := newCrawler(g, store)

	result, err := c.CrawlSite(context.Background(), session(seed, 1, 10), nil)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Visited, "seed plus three same-domain links")
	assert.Equal(t, 1, result.Skipped, "the PDF is skipped without a fetch")
	assert.Equal(t, 0, result.Failed)
	assert.GreaterOrEqual(t, len(store.Chunks), 4)
	for _, chunk := range store.Chunks {
		assert.NotEmpty(t, chunk.ID)
		assert.NotEmpty(t, chunk.Link)
		assert.NotEmpty(t, chunk.Text)
	}
	assert.True(t, store.Finalized, "store must be finalized on completion")

	for _, url := range g.fetchedURLs() {
		assert.NotContains(t, url, "other-domain.com", "out-of-scope hosts must not be fetched")
		assert.NotContains(t, url, ".pdf", "non-text resources must not be fetched")
	}
}

func TestCrawler_traversal_is_link_order_depth_first(t *testing.T) {
	t.Parallel()

	seed := "https://www.example.gov.sg/"
	g := &pageGraph{pages: map[string]string{
		seed: page("root",
			"https://www.example.gov.sg/a",
			"https://www.example.gov.sg/b",
		),
		"https://www.example.gov.sg/a": page("a", "https://www.example.gov.sg/a1"),
		"https://www.example.gov.sg/a1": page("a1"),
		"https://www.example.gov.sg/b":  page("b"),
	}}

	store := &mock.ChunkWriter{}
	c := newCrawler(g, store)

	_, err := c.CrawlSite(context.Background(), session(seed, 3, 10), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		seed,
		"https://www.example.gov.sg/a",
		"https://www.example.gov.sg/a1",
		"https://www.example.gov.sg/b",
	}, g.fetchedURLs())
}

func TestCrawler_never_fetches_a_URL_twice(t *testing.T) {
	t.Parallel()

	seed := "https://www.example.gov.sg/"
	// Every page links back to every other page.
	g := &pageGraph{pages: map[string]string{
		seed: page("root",
			"https://www.example.gov.sg/a",
			"https://www.example.gov.sg/b",
		),
		"https://www.example.gov.sg/a": page("a", seed, "https://www.example.gov.sg/b"),
		"https://www.example.gov.sg/b": page("b", seed, "https://www.example.gov.sg/a"),
	}}

	store := &mock.ChunkWriter{}
	c := newCrawler(g, store)

	_, err := c.CrawlSite(context.Background(), session(seed, 5, 10), nil)
	require.NoError(t, err)

	fetched := g.fetchedURLs()
	seen := make(map[string]int)
	for _, url := range fetched {
		seen[url]++
	}
	for url, count := range seen {
		assert.Equal(t, 1, count, "URL fetched more than once: %s", url)
	}
}

func TestCrawler_visited_set_is_deterministic(t *testing.T) {
	t.Parallel()

	seed := "https://www.example.gov.sg/"
	pages := map[string]string{
		seed: page("root",
			"https://www.example.gov.sg/a",
			"https://www.example.gov.sg/b",
		),
		"https://www.example.gov.sg/a": page("a", "https://www.example.gov.sg/c"),
		"https://www.example.gov.sg/b": page("b"),
		"https://www.example.gov.sg/c": page("c"),
	}

	run := func() []string {
		g := &pageGraph{pages: pages}
		store := &mock.ChunkWriter{}
		c := newCrawler(g, store)
		_, err := c.CrawlSite(context.Background(), session(seed, 3, 10), nil)
		require.NoError(t, err)
		urls := g.fetchedURLs()
		sort.Strings(urls)
		return urls
	}

	assert.Equal(t, run(), run())
}

func TestCrawler_enforces_page_cap_before_fetch(t *testing.T) {
	t.Parallel()

	seed := "https://www.example.gov.sg/"
	g := &pageGraph{pages: map[string]string{
		seed: page("root",
			"https://www.example.gov.sg/a",
			"https://www.example.gov.sg/b",
			"https://www.example.gov.sg/c",
			"https://www.example.gov.sg/d",
		),
		"https://www.example.gov.sg/a": page("a"),
		"https://www.example.gov.sg/b": page("b"),
		"https://www.example.gov.sg/c": page("c"),
		"https://www.example.gov.sg/d": page("d"),
	}}

	store := &mock.ChunkWriter{}
	c := newCrawler(g, store)

	result, err := c.CrawlSite(context.Background(), session(seed, 2, 2), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Visited)
	assert.Len(t, g.fetchedURLs(), 2, "the cap is checked before any fetch is issued")
}

func TestCrawler_prunes_beyond_max_depth(t *testing.T) {
	t.Parallel()

	seed := "https://www.example.gov.sg/"
	g := &pageGraph{pages: map[string]string{
		seed:                           page("root", "https://www.example.gov.sg/a"),
		"https://www.example.gov.sg/a": page("a", "https://www.example.gov.sg/deep"),
		"https://www.example.gov.sg/deep": page("too deep"),
	}}

	store := &mock.ChunkWriter{}
	c := newCrawler(g, store)

	result, err := c.CrawlSite(context.Background(), session(seed, 1, 10), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Visited)
	assert.NotContains(t, g.fetchedURLs(), "https://www.example.gov.sg/deep")
}

func TestCrawler_contains_fetch_failures(t *testing.T) {
	t.Parallel()

	seed := "https://www.example.gov.sg/"
	g := &pageGraph{pages: map[string]string{
		seed: page("root",
			"https://www.example.gov.sg/broken",
			"https://www.example.gov.sg/ok",
		),
		// /broken is absent: the fetch returns an error.
		"https://www.example.gov.sg/ok": page("fine"),
	}}

	store := &mock.ChunkWriter{}
	c := newCrawler(g, store)

	result, err := c.CrawlSite(context.Background(), session(seed, 1, 10), nil)
	require.NoError(t, err, "a per-URL failure must not abort the session")

	assert.Equal(t, 2, result.Visited)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, g.fetchedURLs(), "https://www.example.gov.sg/ok")
}

func TestCrawler_skips_chunks_for_duplicate_content(t *testing.T) {
	t.Parallel()

	seed := "https://www.example.gov.sg/"
	g := &pageGraph{pages: map[string]string{
		seed: page("root",
			"https://www.example.gov.sg/a",
			"https://www.example.gov.sg/a-alias",
		),
		"https://www.example.gov.sg/a":       page("identical body"),
		"https://www.example.gov.sg/a-alias": page("identical body"),
	}}

	store := &mock.ChunkWriter{}
	c := newCrawler(g, store)

	result, err := c.CrawlSite(context.Background(), session(seed, 1, 10), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Visited, "the alias still counts as visited")

	var duplicates int
	for _, chunk := range store.Chunks {
		if chunk.Text == "identical body" {
			duplicates++
		}
	}
	assert.Equal(t, 1, duplicates, "identical text is stored once")
}

func TestCrawler_store_failure_does_not_abort_crawl(t *testing.T) {
	t.Parallel()

	seed := "https://www.example.gov.sg/"
	g := &pageGraph{pages: map[string]string{
		seed:                           page("root", "https://www.example.gov.sg/a"),
		"https://www.example.gov.sg/a": page("a"),
	}}

	store := &mock.ChunkWriter{
		AppendFn: func(ctx context.Context, chunk *govseek.Chunk) error {
			return govseek.Errorf(govseek.EINTERNAL, "disk full")
		},
		FinalizeFn: func() error { return nil },
	}
	c := newCrawler(g, store)

	result, err := c.CrawlSite(context.Background(), session(seed, 1, 10), nil)
	require.NoError(t, err, "store failures are best-effort, the crawl continues")
	assert.Equal(t, 0, result.Chunks)
	assert.Len(t, g.fetchedURLs(), 2)
}

func TestCrawler_rejects_invalid_session(t *testing.T) {
	t.Parallel()

	c := newCrawler(&pageGraph{pages: map[string]string{}}, &mock.ChunkWriter{})

	_, err := c.CrawlSite(context.Background(), govseek.CrawlSession{}, nil)
	assert.Equal(t, govseek.EINVALID, govseek.ErrorCode(err))
}

func TestCrawler_reports_progress_events(t *testing.T) {
	t.Parallel()

	seed := "https://www.example.gov.sg/"
	g := &pageGraph{pages: map[string]string{
		seed: page("root", "https://www.example.gov.sg/report.pdf"),
	}}

	store := &mock.ChunkWriter{}
	c := newCrawler(g, store)

	var types []crawl.ProgressType
	_, err := c.CrawlSite(context.Background(), session(seed, 1, 10), func(event crawl.ProgressEvent) {
		types = append(types, event.Type)
	})
	require.NoError(t, err)

	assert.Equal(t, crawl.ProgressStarted, types[0])
	assert.Contains(t, types, crawl.ProgressVisited)
	assert.Contains(t, types, crawl.ProgressSkipped)
	assert.Equal(t, crawl.ProgressFinished, types[len(types)-1])
}
