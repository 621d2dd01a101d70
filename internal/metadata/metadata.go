package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Its-donkey/newsdesk/logging"
)

// ErrNoCollector is returned when no collector accepts a URL.
var ErrNoCollector = errors.New("no metadata collector matched url")

// Article represents collected information about a story page.
type Article struct {
	URL         string
	Title       string
	Description string
	Author      string
	ImageURL    string
	SiteName    string
	Source      string
}

// Collector extracts article metadata for the URLs it matches.
type Collector interface {
	Matches(url string) bool
	Collect(ctx context.Context, url string) (*Article, error)
}

// Service orchestrates metadata collection across collectors, most specific first.
type Service struct {
	collectors []Collector
	logger     *logging.Logger
}

// NewService creates a metadata service with the default collectors.
func NewService(httpClient *http.Client, logger *logging.Logger) *Service {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return NewServiceWith(logger,
		&OEmbedCollector{client: httpClient, endpoint: YouTubeOEmbedEndpoint},
		&OpenGraphScraper{client: httpClient},
	)
}

// NewServiceWith creates a service that tries collectors in order.
func NewServiceWith(logger *logging.Logger, collectors ...Collector) *Service {
	return &Service{collectors: collectors, logger: logger}
}

// Fetch retrieves metadata for the given URL. A URL without a scheme is fetched over https.
func (s *Service) Fetch(ctx context.Context, rawURL string) (*Article, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("invalid URL: empty")
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL scheme %q", u.Scheme)
	}
	normalised := u.String()

	var lastErr error
	for _, c := range s.collectors {
		if !c.Matches(normalised) {
			continue
		}
		article, err := c.Collect(ctx, normalised)
		if err == nil && article != nil {
			if article.URL == "" {
				article.URL = normalised
			}
			return article, nil
		}
		if err != nil {
			s.logger.Debug("metadata", "collector failed", map[string]any{
				"url":   normalised,
				"error": err.Error(),
			})
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoCollector
}

// FetchAll collects every URL in order, skipping the ones that fail.
func (s *Service) FetchAll(ctx context.Context, urls []string) ([]Article, error) {
	var (
		out  []Article
		errs []error
	)
	for _, raw := range urls {
		article, err := s.Fetch(ctx, raw)
		if err != nil {
			s.logger.Warn("metadata", "skipping url", map[string]any{"url": raw, "error": err.Error()})
			errs = append(errs, fmt.Errorf("%s: %w", raw, err))
			continue
		}
		out = append(out, *article)
	}
	if len(out) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
