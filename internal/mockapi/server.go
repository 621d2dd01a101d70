// Package mockapi is a development stand-in for the newsletter backend. It serves
// canned documents from YAML fixtures, keeps adverts in SQLite and renders a plain
// preview so the console can be exercised without the real service.
package mockapi

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Its-donkey/newsdesk/internal/metadata"
	"github.com/Its-donkey/newsdesk/internal/ui/model"
	"github.com/Its-donkey/newsdesk/logging"
)

const dateLayout = "2006-01-02"

// Fetch limits mirrored from the production backend.
const (
	minCount = 1
	maxCount = 20
)

// Scraper turns article URLs into page metadata.
type Scraper interface {
	FetchAll(ctx context.Context, urls []string) ([]metadata.Article, error)
}

// Options configures the stub backend.
type Options struct {
	Username string
	Password string
	Fixtures *Fixtures
	Adverts  Adverts
	Scraper  Scraper
	Logger   *logging.Logger
}

// Server is the stub backend.
type Server struct {
	fixtures *Fixtures
	adverts  Adverts
	scraper  Scraper
	username string
	password string
	logger   *logging.Logger
	handler  http.Handler
}

// New wires the stub routes.
func New(opts Options) (*Server, error) {
	if opts.Fixtures == nil {
		return nil, errors.New("mockapi: fixtures are required")
	}
	if opts.Adverts == nil {
		return nil, errors.New("mockapi: advert store is required")
	}
	if opts.Username == "" {
		opts.Username = "admin"
	}
	if opts.Password == "" {
		opts.Password = "password"
	}
	if opts.Scraper == nil {
		opts.Scraper = metadata.NewService(nil, opts.Logger)
	}

	s := &Server{
		fixtures: opts.Fixtures,
		adverts:  opts.Adverts,
		scraper:  opts.Scraper,
		username: opts.Username,
		password: opts.Password,
		logger:   opts.Logger,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/email-configs", s.handleEmailConfigs)

	authed := api.Group("", s.requireBasicAuth)
	{
		authed.POST("/fetch-data", s.handleFetchData)
		authed.POST("/scrape-urls", s.handleScrapeURLs)
		authed.POST("/generate-email", s.handleGenerateEmail)
		authed.POST("/save-adverts", s.handleSaveAdverts)
		authed.GET("/load-adverts/:emailType", s.handleLoadAdverts)
	}

	s.handler = logging.NewHTTPLogger(opts.Logger).Middleware(r)
	return s, nil
}

// Handler exposes the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, listen string) error {
	if listen == "" {
		listen = "127.0.0.1:8000"
	}
	srv := &http.Server{Addr: listen, Handler: s.handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("mockapi", "stub backend listening", map[string]any{"listen": "http://" + listen})
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve stub backend: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requireBasicAuth(c *gin.Context) {
	user, pass, ok := c.Request.BasicAuth()
	if !ok ||
		subtle.ConstantTimeCompare([]byte(user), []byte(s.username)) != 1 ||
		subtle.ConstantTimeCompare([]byte(pass), []byte(s.password)) != 1 {
		c.Header("WWW-Authenticate", `Basic realm="newsdesk"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid credentials"})
		return
	}
	c.Next()
}

func detail(c *gin.Context, status int, format string, args ...any) {
	c.JSON(status, gin.H{"detail": fmt.Sprintf(format, args...)})
}

func (s *Server) handleEmailConfigs(c *gin.Context) {
	c.JSON(http.StatusOK, model.EmailConfigsResponse{EmailTypes: s.fixtures.Configs()})
}

func (s *Server) handleFetchData(c *gin.Context) {
	var req model.FetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid request body: %v", err)
		return
	}
	if req.EmailType == "" {
		req.EmailType = "be"
	}
	cfg, ok := s.fixtures.Config(req.EmailType)
	if !ok {
		detail(c, http.StatusUnprocessableEntity, "Unknown email type: %s", req.EmailType)
		return
	}
	for _, n := range []int{req.NumNews, req.NumBusiness, req.NumSports, req.NumCommunity, req.NumPodcast} {
		if n < minCount || n > maxCount {
			detail(c, http.StatusUnprocessableEntity, "Story counts must be between %d and %d", minCount, maxCount)
			return
		}
	}
	if !cfg.Supports(model.FeatureFamilyNotices) {
		req.DeathsStart, req.DeathsEnd = "", ""
	}
	doc := s.fixtures.Document(req)
	s.logger.Info("mockapi", "served document", map[string]any{
		"email_type": req.EmailType,
		"news":       len(doc.NewsStories),
		"notices":    len(doc.FamilyNotices),
	})
	c.JSON(http.StatusOK, doc)
}

func (s *Server) handleScrapeURLs(c *gin.Context) {
	var req model.ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid request body: %v", err)
		return
	}
	if len(req.URLs) == 0 {
		detail(c, http.StatusBadRequest, "No URLs provided")
		return
	}
	articles, err := s.scraper.FetchAll(c.Request.Context(), req.URLs)
	if err != nil {
		s.logger.Error("mockapi", "scrape failed", err, map[string]any{"urls": len(req.URLs)})
		detail(c, http.StatusInternalServerError, "Failed to scrape URLs: %v", err)
		return
	}
	items := make([]model.Item, 0, len(articles))
	for i, a := range articles {
		items = append(items, model.NewItem(i+1,
			model.FieldHeadline, a.Title,
			model.FieldText, a.Description,
			model.FieldAuthor, a.Author,
			model.FieldDate, time.Now().Format(dateLayout),
			model.FieldURL, a.URL,
			model.FieldImageURL, a.ImageURL,
		))
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) handleGenerateEmail(c *gin.Context) {
	var req model.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid request body: %v", err)
		return
	}
	if req.EmailType == "" {
		req.EmailType = "be"
	}
	cfg, ok := s.fixtures.Config(req.EmailType)
	if !ok {
		detail(c, http.StatusBadRequest, "Invalid email type: %s", req.EmailType)
		return
	}
	if len(req.NewsStories) == 0 {
		detail(c, http.StatusBadRequest, "No news stories provided")
		return
	}
	markup, err := renderEmail(req, cfg)
	if err != nil {
		s.logger.Error("mockapi", "render failed", err, nil)
		detail(c, http.StatusInternalServerError, "%v", err)
		return
	}
	c.JSON(http.StatusOK, model.GenerateResponse{HTML: markup})
}

func (s *Server) handleSaveAdverts(c *gin.Context) {
	var set model.AdvertSet
	if err := c.ShouldBindJSON(&set); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid request body: %v", err)
		return
	}
	if _, ok := s.fixtures.Config(set.EmailType); !ok {
		detail(c, http.StatusBadRequest, "Invalid email type: %s", set.EmailType)
		return
	}
	if err := s.adverts.Save(c.Request.Context(), set); err != nil {
		s.logger.Error("mockapi", "save adverts", err, map[string]any{"email_type": set.EmailType})
		detail(c, http.StatusInternalServerError, "Failed to save adverts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (s *Server) handleLoadAdverts(c *gin.Context) {
	emailType := c.Param("emailType")
	if _, ok := s.fixtures.Config(emailType); !ok {
		detail(c, http.StatusBadRequest, "Invalid email type: %s", emailType)
		return
	}
	set, err := s.adverts.Load(c.Request.Context(), emailType)
	if err != nil {
		s.logger.Error("mockapi", "load adverts", err, map[string]any{"email_type": emailType})
		detail(c, http.StatusInternalServerError, "Failed to load adverts")
		return
	}
	c.JSON(http.StatusOK, set)
}
