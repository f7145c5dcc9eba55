package http

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/govseek/govseek"
)

// Ensure SitemapSeedSource implements govseek.SeedSource at compile time.
var _ govseek.SeedSource = (*SitemapSeedSource)(nil)

// SitemapSeedSource discovers seed URLs from a site's sitemap.xml as an
// alternative to scraping a trusted-sites index page. Sitemap indexes are
// resolved one level deep.
type SitemapSeedSource struct {
	fetcher govseek.Fetcher
	logger  *slog.Logger
}

// NewSitemapSeedSource creates a SitemapSeedSource.
// If logger is nil, slog.Default() is used.
func NewSitemapSeedSource(fetcher govseek.Fetcher, logger *slog.Logger) *SitemapSeedSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &SitemapSeedSource{fetcher: fetcher, logger: logger}
}

// Discover fetches the sitemap for the given base URL and returns the URLs
// it lists, in document order. A failed fetch is a soft failure: it is
// logged and an empty slice is returned.
func (s *SitemapSeedSource) Discover(ctx context.Context, baseURL string) ([]string, error) {
	sitemapURL, err := resolveSitemapURL(baseURL)
	if err != nil {
		return nil, err
	}

	body, err := s.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		s.logger.Warn("sitemap fetch failed",
			"url", sitemapURL,
			"err", err,
		)
		return []string{}, nil
	}

	urls, nested, err := parseSitemap(body)
	if err != nil {
		return nil, err
	}

	// Resolve nested sitemaps from a sitemap index. Failures of individual
	// nested sitemaps are soft, like the top-level fetch.
	for _, nestedURL := range nested {
		nestedBody, err := s.fetcher.Fetch(ctx, nestedURL)
		if err != nil {
			s.logger.Warn("nested sitemap fetch failed",
				"url", nestedURL,
				"err", err,
			)
			continue
		}
		nestedURLs, _, err := parseSitemap(nestedBody)
		if err != nil {
			return nil, err
		}
		urls = append(urls, nestedURLs...)
	}

	s.logger.Info("sitemap discovery",
		"url", sitemapURL,
		"count", len(urls),
	)
	return urls, nil
}

// resolveSitemapURL returns the sitemap.xml URL for a base URL, or the URL
// unchanged if it already points at an XML document.
func resolveSitemapURL(baseURL string) (string, error) {
	if strings.HasSuffix(baseURL, ".xml") {
		return baseURL, nil
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", govseek.Errorf(govseek.EINVALID, "invalid base URL %q: %v", baseURL, err)
	}
	u.Path = "/sitemap.xml"
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// parseSitemap parses sitemap XML and returns page URLs and nested sitemap
// URLs. A urlset yields page URLs; a sitemapindex yields nested sitemaps.
func parseSitemap(body string) (urls []string, nested []string, err error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil {
		return nil, nil, govseek.Errorf(govseek.EINVALID, "failed to parse sitemap XML: %v", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, nil, govseek.Errorf(govseek.EINVALID, "sitemap has no root element")
	}

	for _, entry := range root.ChildElements() {
		loc := entry.FindElement("loc")
		if loc == nil {
			continue
		}
		value := strings.TrimSpace(loc.Text())
		if value == "" {
			continue
		}
		switch root.Tag {
		case "sitemapindex":
			nested = append(nested, value)
		default:
			urls = append(urls, value)
		}
	}
	return urls, nested, nil
}
