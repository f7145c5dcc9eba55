// Package goquery provides HTML extraction built on PuerkitoBio/goquery:
// whole-page text, anchor hrefs in document order, and the table-body
// scraping used for seed discovery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/govseek/govseek"
)

// ExtractText parses HTML and returns the page's visible text with script
// and style contents removed. The result is raw; callers normalize it with
// govseek.NormalizeText before chunking.
func ExtractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", govseek.Errorf(govseek.EINVALID, "failed to parse HTML: %v", err)
	}

	doc.Find("script, style, noscript").Remove()
	return doc.Text(), nil
}

// ExtractLinks parses HTML and returns every anchor's href attribute in
// document order. Anchors without an href are skipped. Hrefs are returned
// as written; scope filtering is the caller's concern.
func ExtractLinks(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, govseek.Errorf(govseek.EINVALID, "failed to parse HTML: %v", err)
	}

	var links []string
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || href == "" {
			return
		}
		links = append(links, href)
	})
	return links, nil
}

// ExtractTableLinks parses HTML and returns the hrefs of anchors found
// inside tbody elements, preserving document order. This is the shape of
// the trusted-sites index page: one table row per whitelisted site.
func ExtractTableLinks(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, govseek.Errorf(govseek.EINVALID, "failed to parse HTML: %v", err)
	}

	var links []string
	doc.Find("tbody").Each(func(_ int, tbody *goquery.Selection) {
		tbody.Find("a").Each(func(_ int, anchor *goquery.Selection) {
			href, exists := anchor.Attr("href")
			if !exists || href == "" {
				return
			}
			links = append(links, href)
		})
	})
	return links, nil
}
