package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Its-donkey/newsdesk/internal/mockapi"
	"github.com/Its-donkey/newsdesk/internal/ui/model"
	"github.com/Its-donkey/newsdesk/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newBackend(t *testing.T) string {
	t.Helper()
	fixtures, err := mockapi.LoadFixtures("")
	if err != nil {
		t.Fatalf("LoadFixtures: %v", err)
	}
	store, err := mockapi.OpenAdvertStore(context.Background(), filepath.Join(t.TempDir(), "adverts.db"))
	if err != nil {
		t.Fatalf("OpenAdvertStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	srv, err := mockapi.New(mockapi.Options{Fixtures: fixtures, Adverts: store, Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("mockapi.New: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func decodeConfigs(t *testing.T, out string) []model.EmailTypeConfig {
	t.Helper()
	var resp model.EmailConfigsResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode configs output %q: %v", out, err)
	}
	return resp.EmailTypes
}

func TestConfigsJSONFromBackend(t *testing.T) {
	url := newBackend(t)
	out, _, err := execute(t, "--api-url", url, "configs", "--json")
	if err != nil {
		t.Fatalf("configs: %v", err)
	}
	configs := decodeConfigs(t, out)
	if len(configs) != 3 || configs[0].ID != "be" {
		t.Fatalf("configs = %+v", configs)
	}
}

func TestConfigsTableFallsBackWhenBackendDown(t *testing.T) {
	ts := httptest.NewServer(nil)
	url := ts.URL
	ts.Close()

	out, stderr, err := execute(t, "--api-url", url, "configs")
	if err != nil {
		t.Fatalf("configs: %v", err)
	}
	if !strings.Contains(out, "built-in registry") || !strings.Contains(out, "be") {
		t.Fatalf("table output = %q", out)
	}
	if !strings.Contains(stderr, "fallback") {
		t.Fatalf("expected a fallback warning in the log, got %q", stderr)
	}
}

func TestEnvironmentSetsBackendURL(t *testing.T) {
	t.Setenv("NEWSDESK_API_URL", newBackend(t))
	out, _, err := execute(t, "configs", "--json")
	if err != nil {
		t.Fatalf("configs: %v", err)
	}
	if got := len(decodeConfigs(t, out)); got != 3 {
		t.Fatalf("configs = %d, want 3", got)
	}
}

func TestConfigFileAndFlagPrecedence(t *testing.T) {
	url := newBackend(t)
	path := filepath.Join(t.TempDir(), "newsdesk.yaml")
	if err := os.WriteFile(path, []byte("api:\n  url: "+url+"\nlog:\n  level: warn\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, _, err := execute(t, "--config", path, "configs", "--json")
	if err != nil {
		t.Fatalf("configs: %v", err)
	}
	if got := len(decodeConfigs(t, out)); got != 3 {
		t.Fatalf("configs from file = %d, want 3", got)
	}

	dead := httptest.NewServer(nil)
	deadURL := dead.URL
	dead.Close()
	out, _, err = execute(t, "--config", path, "--api-url", deadURL, "configs")
	if err != nil {
		t.Fatalf("configs: %v", err)
	}
	if !strings.Contains(out, "built-in registry") {
		t.Fatalf("flag did not override the config file: %q", out)
	}
}

func TestMissingConfigFileFails(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "configs")
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestComposeWritesEmail(t *testing.T) {
	url := newBackend(t)
	outPath := filepath.Join(t.TempDir(), "out", "email.html")
	stdout, _, err := execute(t,
		"--api-url", url, "--user", "admin", "--password", "password", "--type", "be",
		"compose",
		"--news", "3",
		"--deaths-start", "2025-03-01", "--deaths-end", "2025-03-03",
		"--top-image-title", "Sunset", "--top-image-url", "https://img.example.com/sunset.jpg",
		"--out", outPath,
	)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read email: %v", err)
	}
	if !strings.Contains(string(data), "Harbour wall repairs") {
		t.Fatal("email misses the first story")
	}
	if !strings.Contains(stdout, "wrote "+outPath) || !strings.Contains(stdout, "links") {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestComposeRequiresCredentials(t *testing.T) {
	url := newBackend(t)
	_, _, err := execute(t, "--api-url", url, "compose", "--out", filepath.Join(t.TempDir(), "x.html"))
	if err == nil || !strings.Contains(err.Error(), "credential") {
		t.Fatalf("err = %v", err)
	}
}

func TestComposeRejectsWrongPassword(t *testing.T) {
	url := newBackend(t)
	_, _, err := execute(t,
		"--api-url", url, "--user", "admin", "--password", "nope", "--type", "ge",
		"compose", "--out", filepath.Join(t.TempDir(), "x.html"),
	)
	if err == nil {
		t.Fatal("expected an authentication error")
	}
}

func TestLogsShowsNewestEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "newsdesk.log")
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	now := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	for _, e := range []logging.Entry{
		{Timestamp: now, Level: "DEBUG", Category: "session", Message: "first"},
		{Timestamp: now, Level: "INFO", Category: "session", Message: "second"},
		{Timestamp: now, Level: "ERROR", Category: "http", Message: "third", RequestID: "req-1", Error: "boom"},
	} {
		if err := enc.Encode(e); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err := execute(t, "--log-file", path, "logs", "-n", "2")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.Contains(out, "first") || !strings.Contains(out, "second") || !strings.Contains(out, "third") {
		t.Fatalf("logs output = %q", out)
	}
	if !strings.Contains(out, "req=req-1") || !strings.Contains(out, "error=boom") {
		t.Fatalf("logs output misses request id or error: %q", out)
	}

	out, _, err = execute(t, "--log-file", path, "logs", "--min-level", "error")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.Contains(out, "second") || !strings.Contains(out, "third") {
		t.Fatalf("filtered output = %q", out)
	}
}

func TestLogsWithoutFileFails(t *testing.T) {
	if _, _, err := execute(t, "logs"); err == nil {
		t.Fatal("expected an error without a log file")
	}
}
