package preview

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Summary describes a rendered email at a glance.
type Summary struct {
	Title      string
	Links      int
	EmptyLinks int
	Images     int
	// MissingAlt counts images without alt text.
	MissingAlt int
	Headlines  []string
}

// String is the one-line form used in status messages.
func (s Summary) String() string {
	out := fmt.Sprintf("%d links, %d images", s.Links, s.Images)
	if s.EmptyLinks > 0 {
		out += fmt.Sprintf(", %d empty links", s.EmptyLinks)
	}
	if s.MissingAlt > 0 {
		out += fmt.Sprintf(", %d images without alt text", s.MissingAlt)
	}
	return out
}

// Inspect parses rendered email markup and counts its links and images.
func Inspect(markup string) (Summary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Summary{}, fmt.Errorf("parse preview: %w", err)
	}
	var s Summary
	s.Title = strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		s.Links++
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || href == "#" {
			s.EmptyLinks++
		}
	})
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		s.Images++
		if alt, ok := img.Attr("alt"); !ok || strings.TrimSpace(alt) == "" {
			s.MissingAlt++
		}
	})
	doc.Find("h1, h2, h3").Each(func(_ int, h *goquery.Selection) {
		if text := strings.Join(strings.Fields(h.Text()), " "); text != "" {
			s.Headlines = append(s.Headlines, text)
		}
	})
	return s, nil
}
