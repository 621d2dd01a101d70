package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Its-donkey/newsdesk/logging"
)

const articlePage = `<!DOCTYPE html><html><head>
<title>Fallback title</title>
<meta property="og:title" content=" Harbour wall repairs begin ">
<meta property="og:description" content="Work starts on Monday.">
<meta property="og:image" content="https://cdn.example.com/harbour.jpg">
<meta property="og:site_name" content="Example News">
<meta name="author" content="A. Reporter">
</head><body><article><p>Body text</p></article></body></html>`

func TestOpenGraphScraperReadsTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	svc := NewServiceWith(logging.Discard(), &OpenGraphScraper{client: srv.Client()})
	article, err := svc.Fetch(context.Background(), srv.URL+"/story/1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if article.Title != "Harbour wall repairs begin" {
		t.Errorf("title = %q", article.Title)
	}
	if article.Description != "Work starts on Monday." {
		t.Errorf("description = %q", article.Description)
	}
	if article.Author != "A. Reporter" {
		t.Errorf("author = %q", article.Author)
	}
	if article.ImageURL != "https://cdn.example.com/harbour.jpg" {
		t.Errorf("image = %q", article.ImageURL)
	}
	if article.URL != srv.URL+"/story/1" {
		t.Errorf("url = %q", article.URL)
	}
}

func TestOpenGraphScraperFallsBackToTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Plain page</title><meta name="description" content="desc"></head></html>`))
	}))
	defer srv.Close()

	article, err := (&OpenGraphScraper{client: srv.Client()}).Collect(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if article.Title != "Plain page" || article.Description != "desc" {
		t.Fatalf("unexpected article %+v", article)
	}
}

func TestOpenGraphScraperRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := (&OpenGraphScraper{client: srv.Client()}).Collect(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestOEmbedCollector(t *testing.T) {
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.Query().Get("url")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"Episode 12","author_name":"Island Podcast","provider_name":"YouTube","thumbnail_url":"https://i.ytimg.com/x.jpg"}`))
	}))
	defer srv.Close()

	c := NewOEmbedCollector(srv.Client(), srv.URL)
	link := "https://www.youtube.com/watch?v=abc123"
	if !c.Matches(link) {
		t.Fatal("expected youtube link to match")
	}
	if c.Matches("https://example.com/story") {
		t.Fatal("did not expect article link to match")
	}
	article, err := c.Collect(context.Background(), link)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if gotURL != link {
		t.Errorf("oembed url param = %q", gotURL)
	}
	if article.Title != "Episode 12" || article.Author != "Island Podcast" || article.ImageURL == "" {
		t.Fatalf("unexpected article %+v", article)
	}
}

type stubCollector struct {
	match   string
	article *Article
	err     error
	calls   int
}

func (s *stubCollector) Matches(url string) bool { return strings.Contains(url, s.match) }

func (s *stubCollector) Collect(context.Context, string) (*Article, error) {
	s.calls++
	return s.article, s.err
}

func TestServiceTriesCollectorsInOrder(t *testing.T) {
	failing := &stubCollector{match: "example", err: errors.New("boom")}
	working := &stubCollector{match: "example", article: &Article{Title: "ok"}}
	svc := NewServiceWith(nil, failing, working)

	article, err := svc.Fetch(context.Background(), "example.com/a")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if article.URL != "https://example.com/a" {
		t.Errorf("expected scheme-less URL to default to https, got %q", article.URL)
	}
	if failing.calls != 1 || working.calls != 1 {
		t.Fatalf("calls = %d, %d", failing.calls, working.calls)
	}
}

func TestServiceErrors(t *testing.T) {
	svc := NewServiceWith(nil, &stubCollector{match: "nothing"})
	if _, err := svc.Fetch(context.Background(), "https://example.com"); !errors.Is(err, ErrNoCollector) {
		t.Fatalf("expected ErrNoCollector, got %v", err)
	}
	if _, err := svc.Fetch(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank URL")
	}
	if _, err := svc.Fetch(context.Background(), "ftp://example.com/file"); err == nil {
		t.Fatal("expected error for ftp scheme")
	}
}

func TestFetchAllSkipsFailures(t *testing.T) {
	svc := NewServiceWith(nil, &stubCollector{match: "good", article: &Article{Title: "ok"}})
	articles, err := svc.FetchAll(context.Background(), []string{"https://good.example/1", "https://bad.example/2"})
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}

	if _, err := svc.FetchAll(context.Background(), []string{"https://bad.example/2"}); err == nil {
		t.Fatal("expected error when every URL fails")
	}
}
