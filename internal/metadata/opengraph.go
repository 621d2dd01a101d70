package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// OpenGraphScraper scrapes article metadata from any web page's Open Graph tags.
type OpenGraphScraper struct {
	client *http.Client
}

// Matches returns true for any http(s) URL.
func (s *OpenGraphScraper) Matches(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Collect fetches a page and reads its og:* tags, falling back to plain HTML metadata.
func (s *OpenGraphScraper) Collect(ctx context.Context, url string) (*Article, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; newsdesk/1.0)")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	article := &Article{URL: url, Source: "opengraph"}
	article.Title = firstNonEmpty(
		metaContent(doc, `meta[property="og:title"]`),
		metaContent(doc, `meta[name="twitter:title"]`),
		strings.TrimSpace(doc.Find("title").First().Text()),
		strings.TrimSpace(doc.Find("h1").First().Text()),
	)
	article.Description = firstNonEmpty(
		metaContent(doc, `meta[property="og:description"]`),
		metaContent(doc, `meta[name="description"]`),
		strings.TrimSpace(doc.Find("article p").First().Text()),
	)
	article.Author = firstNonEmpty(
		metaContent(doc, `meta[property="article:author"]`),
		metaContent(doc, `meta[name="author"]`),
	)
	article.ImageURL = firstNonEmpty(
		metaContent(doc, `meta[property="og:image"]`),
		metaContent(doc, `meta[name="twitter:image"]`),
	)
	article.SiteName = metaContent(doc, `meta[property="og:site_name"]`)
	if canonical := metaContent(doc, `meta[property="og:url"]`); canonical != "" {
		article.URL = canonical
	}

	if article.Title == "" {
		return nil, fmt.Errorf("no title found at %s", url)
	}
	return article, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
