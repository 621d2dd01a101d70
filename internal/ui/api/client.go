// Package api is the typed REST client for the newsletter backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
	"github.com/Its-donkey/newsdesk/logging"
)

var (
	// ErrUnauthorized is returned when the backend rejects the credential.
	ErrUnauthorized = errors.New("authentication failed")
	// ErrNoCredentials is returned by authenticated calls made before login.
	ErrNoCredentials = errors.New("not logged in")
)

// StatusError reports a non-2xx response. Message is the backend's detail text when it
// sends one, otherwise the HTTP status line.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d, message: %s", e.Code, e.Message)
}

// Is lets errors.Is match ErrUnauthorized for 401 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.Code == http.StatusUnauthorized
}

// Credentials is the basic-auth pair established at login.
type Credentials struct {
	Username string
	Password string
}

// Empty reports whether either half is missing.
func (c Credentials) Empty() bool {
	return strings.TrimSpace(c.Username) == "" || c.Password == ""
}

// Client talks to the backend's /api endpoints.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *logging.Logger

	// OnUnauthorized runs after any 401 so the owner can reset its session.
	OnUnauthorized func()

	mu    sync.RWMutex
	creds Credentials
}

// New builds a client for baseURL. An empty baseURL issues same-origin requests,
// which is what the browser console does.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// SetCredentials stores the credential used by authenticated calls.
func (c *Client) SetCredentials(creds Credentials) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creds = creds
}

// ClearCredentials forgets the stored credential.
func (c *Client) ClearCredentials() {
	c.SetCredentials(Credentials{})
}

// Credentials returns the stored credential.
func (c *Client) Credentials() Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds
}

func (c *Client) do(ctx context.Context, method, path string, payload any, requireAuth bool, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.New().String()
	req.Header.Set(logging.RequestIDHeader, requestID)

	creds := c.Credentials()
	if requireAuth && creds.Empty() {
		return ErrNoCredentials
	}
	if !creds.Empty() {
		req.SetBasicAuth(creds.Username, creds.Password)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		c.Logger.Error("api", "request failed", err, map[string]any{"method": method, "path": path, "request_id": requestID})
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	responseBody, readErr := io.ReadAll(resp.Body)
	c.Logger.Debug("api", "response", map[string]any{
		"method":      method,
		"path":        path,
		"status":      resp.StatusCode,
		"request_id":  requestID,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if resp.StatusCode == http.StatusUnauthorized {
		if c.OnUnauthorized != nil {
			c.OnUnauthorized()
		}
		return &StatusError{Code: resp.StatusCode, Message: errorMessage(responseBody, resp.Status)}
	}
	if readErr != nil {
		return fmt.Errorf("read %s: %w", path, readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode, Message: errorMessage(responseBody, resp.Status)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(responseBody, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// errorMessage prefers a JSON detail or error field, then the raw body, then the status line.
func errorMessage(body []byte, status string) string {
	var envelope struct {
		Detail any    `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if s, ok := envelope.Detail.(string); ok && s != "" {
			return s
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	if message := strings.TrimSpace(string(body)); message != "" {
		return message
	}
	return status
}

// EmailConfigs fetches the per-email-type registry.
func (c *Client) EmailConfigs(ctx context.Context) ([]model.EmailTypeConfig, error) {
	var resp model.EmailConfigsResponse
	if err := c.do(ctx, http.MethodGet, "/api/email-configs", nil, false, &resp); err != nil {
		return nil, err
	}
	if len(resp.EmailTypes) == 0 {
		return nil, errors.New("email-configs: no email types returned")
	}
	return resp.EmailTypes, nil
}

// FetchData asks the backend to assemble a fresh document.
func (c *Client) FetchData(ctx context.Context, req model.FetchRequest) (model.Document, error) {
	var doc model.Document
	if err := c.do(ctx, http.MethodPost, "/api/fetch-data", req, true, &doc); err != nil {
		return model.Document{}, err
	}
	if doc.EmailType == "" {
		doc.EmailType = req.EmailType
	}
	return doc, nil
}

// ScrapeURLs scrapes operator-supplied article URLs into story items.
func (c *Client) ScrapeURLs(ctx context.Context, urls []string) ([]model.Item, error) {
	var items []model.Item
	if err := c.do(ctx, http.MethodPost, "/api/scrape-urls", model.ScrapeRequest{URLs: urls}, true, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GenerateEmail renders the document server-side and returns the HTML.
func (c *Client) GenerateEmail(ctx context.Context, req model.GenerateRequest) (string, error) {
	var resp model.GenerateResponse
	if err := c.do(ctx, http.MethodPost, "/api/generate-email", req, true, &resp); err != nil {
		return "", err
	}
	if resp.HTML == "" {
		return "", errors.New("generate-email: no HTML in response")
	}
	return resp.HTML, nil
}

// SaveAdverts persists the advert collections for an email type.
func (c *Client) SaveAdverts(ctx context.Context, set model.AdvertSet) error {
	if set.VerticalAdverts == nil {
		set.VerticalAdverts = []model.Item{}
	}
	if set.HorizontalAdverts == nil {
		set.HorizontalAdverts = []model.Item{}
	}
	return c.do(ctx, http.MethodPost, "/api/save-adverts", set, true, nil)
}

// LoadAdverts returns the saved advert collections for an email type.
func (c *Client) LoadAdverts(ctx context.Context, emailType string) (model.AdvertSet, error) {
	var set model.AdvertSet
	path := "/api/load-adverts/" + url.PathEscape(emailType)
	if err := c.do(ctx, http.MethodGet, path, nil, true, &set); err != nil {
		return model.AdvertSet{}, err
	}
	set.EmailType = emailType
	return set, nil
}
