package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
	"github.com/Its-donkey/newsdesk/logging"
)

//go:embed templates/console.html.tmpl templates/console.css
var templateFS embed.FS

// Options configures the console HTTP server.
type Options struct {
	Listen    string
	AssetsDir string
	APIURL    string
	Title     string
	Logger    *logging.Logger
}

type server struct {
	assetsDir string
	apiURL    *url.URL
	title     string
	console   *template.Template
	logger    *logging.Logger
}

type collectionCard struct {
	Name    string
	Label   string
	Section string
	Advert  string
}

type consolePageData struct {
	PageTitle   string
	APIURL      string
	Stories     []collectionCard
	Notices     collectionCard
	Adverts     []collectionCard
	CurrentYear int
}

// Run serves the console until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	handler, err := NewHandler(opts)
	if err != nil {
		return err
	}
	listen := opts.Listen
	if listen == "" {
		listen = "127.0.0.1:4173"
	}
	srv := &http.Server{
		Addr:              listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		opts.Logger.Info("server", "console listening", map[string]any{
			"listen": "http://" + listen,
			"api":    opts.APIURL,
			"assets": opts.AssetsDir,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve console: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown console: %w", err)
		}
		return nil
	}
}

// NewHandler builds the console router: the shell page, the built wasm assets and a
// reverse proxy that forwards /api/ to the newsletter backend.
func NewHandler(opts Options) (http.Handler, error) {
	target, err := url.Parse(strings.TrimSpace(opts.APIURL))
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid API target %q", opts.APIURL)
	}

	assets := opts.AssetsDir
	if assets == "" {
		assets = "web"
	}
	root, err := filepath.Abs(assets)
	if err != nil {
		return nil, fmt.Errorf("resolve assets dir: %w", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("assets directory %s is invalid: %v", root, err)
	}

	tmpl, err := template.ParseFS(templateFS, "templates/console.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse console template: %w", err)
	}

	title := opts.Title
	if title == "" {
		title = "Newsletter Console"
	}
	s := &server{
		assetsDir: root,
		apiURL:    target,
		title:     title,
		console:   tmpl,
		logger:    opts.Logger,
	}

	mime.AddExtensionType(".wasm", "application/wasm")

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(logging.NewHTTPLogger(opts.Logger).Middleware)

	r.Get("/", s.handleConsole)
	r.Get("/console.css", s.handleStyles)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/api/*", s.apiProxy())
	r.Get("/*", s.handleStatic)
	return r, nil
}

func (s *server) handleConsole(w http.ResponseWriter, r *http.Request) {
	data := consolePageData{
		PageTitle:   s.title,
		APIURL:      s.apiURL.String(),
		Notices:     card(model.FamilyNotices, "family-notices", ""),
		CurrentYear: time.Now().Year(),
	}
	for _, name := range model.StoryCollections {
		data.Stories = append(data.Stories, card(name, "", ""))
	}
	data.Adverts = []collectionCard{
		card(model.VerticalAdverts, "vertical-adverts", model.VerticalAdverts),
		card(model.HorizontalAdverts, "horizontal-adverts", model.HorizontalAdverts),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.console.Execute(w, data); err != nil {
		s.logger.Error("server", "render console", err, nil)
		http.Error(w, "failed to render console", http.StatusInternalServerError)
	}
}

func card(name, section, advert string) collectionCard {
	return collectionCard{
		Name:    name,
		Label:   model.CollectionLabels[name],
		Section: section,
		Advert:  advert,
	}
}

func (s *server) handleStyles(w http.ResponseWriter, r *http.Request) {
	css, err := templateFS.ReadFile("templates/console.css")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write(css)
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, ".wasm") {
		w.Header().Set("Content-Type", "application/wasm")
	}
	http.FileServer(http.Dir(s.assetsDir)).ServeHTTP(w, r)
}

// apiProxy forwards console API calls to the backend. Failures to reach it come back
// in the backend's own {"detail": ...} error shape.
func (s *server) apiProxy() http.Handler {
	proxy := httputil.NewSingleHostReverseProxy(s.apiURL)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		s.logger.WithRequestID(r.Header.Get(logging.RequestIDHeader)).
			WithCategory("proxy").
			WithField("path", r.URL.Path).
			Error("backend unreachable", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "backend unavailable"})
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Host = s.apiURL.Host
		proxy.ServeHTTP(w, r)
	})
}
