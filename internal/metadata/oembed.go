package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// YouTubeOEmbedEndpoint resolves podcast episodes published as YouTube videos.
const YouTubeOEmbedEndpoint = "https://www.youtube.com/oembed"

// OEmbedCollector collects metadata for video links through an oEmbed endpoint.
type OEmbedCollector struct {
	client   *http.Client
	endpoint string
}

// NewOEmbedCollector creates a collector against a custom oEmbed endpoint.
func NewOEmbedCollector(client *http.Client, endpoint string) *OEmbedCollector {
	if client == nil {
		client = http.DefaultClient
	}
	return &OEmbedCollector{client: client, endpoint: endpoint}
}

// Matches returns true if the URL is a YouTube video URL.
func (c *OEmbedCollector) Matches(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	return strings.Contains(lower, "youtube.com/watch") || strings.Contains(lower, "youtu.be/")
}

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ProviderName string `json:"provider_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Collect asks the oEmbed endpoint to describe the video.
func (c *OEmbedCollector) Collect(ctx context.Context, rawURL string) (*Article, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := url.Values{"url": {rawURL}, "format": {"json"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oembed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oembed status code: %d", resp.StatusCode)
	}

	var payload oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode oembed: %w", err)
	}
	if strings.TrimSpace(payload.Title) == "" {
		return nil, fmt.Errorf("oembed returned no title for %s", rawURL)
	}
	return &Article{
		URL:      rawURL,
		Title:    strings.TrimSpace(payload.Title),
		Author:   payload.AuthorName,
		ImageURL: payload.ThumbnailURL,
		SiteName: payload.ProviderName,
		Source:   "oembed",
	}, nil
}
