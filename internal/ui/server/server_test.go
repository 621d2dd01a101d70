package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Its-donkey/newsdesk/logging"
)

func newTestHandler(t *testing.T, apiURL string) http.Handler {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.wasm"), []byte("\x00asm"), 0o644); err != nil {
		t.Fatalf("write wasm: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "wasm_exec.js"), []byte("// go runtime"), 0o644); err != nil {
		t.Fatalf("write wasm_exec: %v", err)
	}
	h, err := NewHandler(Options{AssetsDir: dir, APIURL: apiURL, Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h
}

func TestNewHandlerRejectsBadTarget(t *testing.T) {
	for _, target := range []string{"", "localhost:8000", "://bad"} {
		if _, err := NewHandler(Options{AssetsDir: t.TempDir(), APIURL: target}); err == nil {
			t.Errorf("expected error for API target %q", target)
		}
	}
}

func TestNewHandlerRejectsMissingAssets(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	if _, err := NewHandler(Options{AssetsDir: missing, APIURL: "http://127.0.0.1:8000"}); err == nil {
		t.Fatal("expected error for missing assets dir")
	}
}

func TestConsoleShellCarriesEveryBinding(t *testing.T) {
	h := newTestHandler(t, "http://127.0.0.1:8000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`id="loginForm"`,
		`id="emailTypeSelect"`,
		`id="fetchButton"`,
		`id="container-news_stories"`,
		`id="container-podcast_stories"`,
		`id="container-family_notices"`,
		`data-add-advert="horizontal_adverts"`,
		`data-section="deaths-range"`,
		`data-section="publication-cover"`,
		`id="livePreview"`,
		`id="editDialog"`,
		`<option value="sports_stories">Sport</option>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("console shell missing %s", want)
		}
	}
	if got := rec.Header().Get(logging.RequestIDHeader); got == "" {
		t.Error("expected request id on response")
	}
}

func TestStaticAssetsServeWasmType(t *testing.T) {
	h := newTestHandler(t, "http://127.0.0.1:8000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/main.wasm", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/wasm" {
		t.Fatalf("content type = %q", ct)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/console.css", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Header().Get("Content-Type"), "text/css") {
		t.Fatalf("styles: status %d type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestAPIProxyForwardsWithRequestID(t *testing.T) {
	var gotPath, gotAuth, gotID string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotID = r.Header.Get(logging.RequestIDHeader)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"be":{"name":"BE"}}`)
	}))
	defer backend.Close()

	h := newTestHandler(t, backend.URL)
	req := httptest.NewRequest(http.MethodGet, "/api/email-configs", nil)
	req.SetBasicAuth("editor", "secret")
	req.Header.Set(logging.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotPath != "/api/email-configs" {
		t.Errorf("backend path = %q", gotPath)
	}
	if gotAuth == "" {
		t.Error("authorization header not forwarded")
	}
	if gotID != "req-42" {
		t.Errorf("request id = %q", gotID)
	}
}

func TestAPIProxyReportsUnreachableBackend(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	target := backend.URL
	backend.Close()

	h := newTestHandler(t, target)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/fetch-data", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["detail"] == "" {
		t.Fatalf("expected detail, got %v", body)
	}
}
