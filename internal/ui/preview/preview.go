// Package preview requests rendered email previews from the backend and keeps only
// the newest response.
package preview

import (
	"context"
	"html"
	"sync"
	"time"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
)

// NoStoriesMessage is shown instead of a preview while news_stories is empty.
const NoStoriesMessage = "No news stories available. Please fetch data first."

// Generator renders a generate request into email HTML.
type Generator interface {
	GenerateEmail(ctx context.Context, req model.GenerateRequest) (string, error)
}

// Result is the outcome of one preview request.
type Result struct {
	// HTML is the rendered email, the placeholder, or inline error markup.
	HTML       string
	Generation uint64
	// Placeholder is set when no request was made because news_stories was empty.
	Placeholder bool
	// Stale is set when a newer request already applied; the caller must ignore HTML.
	Stale bool
}

// Client issues preview requests. Each request is tagged with a generation; a response
// older than the newest applied one is reported stale, so the last-issued request wins.
type Client struct {
	gen Generator
	now func() time.Time

	mu      sync.Mutex
	issued  uint64
	applied uint64
}

// NewClient wraps a Generator.
func NewClient(gen Generator) *Client {
	return &Client{gen: gen, now: time.Now}
}

// Request serializes doc with the ephemeral fields and asks the backend for a preview.
// On failure the returned Result carries inline error markup alongside the error.
func (c *Client) Request(ctx context.Context, doc model.Document, cfg model.EmailTypeConfig, eph model.EphemeralFields) (Result, error) {
	gen := c.next()
	if len(doc.NewsStories) == 0 {
		if !c.apply(gen) {
			return Result{Generation: gen, Stale: true}, nil
		}
		return Result{HTML: PlaceholderHTML(NoStoriesMessage), Generation: gen, Placeholder: true}, nil
	}

	req := model.BuildGenerateRequest(doc, cfg, eph, c.now())
	markup, err := c.gen.GenerateEmail(ctx, req)
	if !c.apply(gen) {
		return Result{Generation: gen, Stale: true}, nil
	}
	if err != nil {
		return Result{HTML: ErrorHTML(err.Error()), Generation: gen}, err
	}
	return Result{HTML: markup, Generation: gen}, nil
}

// Latest returns the generation of the most recently issued request.
func (c *Client) Latest() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.issued
}

func (c *Client) next() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	return c.issued
}

func (c *Client) apply(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen < c.applied {
		return false
	}
	c.applied = gen
	return true
}

// PlaceholderHTML is the muted notice shown in place of a preview.
func PlaceholderHTML(message string) string {
	return `<p style="padding: 20px; text-align: center; color: #666;">` + html.EscapeString(message) + `</p>`
}

// ErrorHTML is the inline failure notice shown in place of a preview.
func ErrorHTML(message string) string {
	return `<p style="padding: 20px; text-align: center; color: #f00;">Error: ` + html.EscapeString(message) + `</p>`
}
