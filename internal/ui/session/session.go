// Package session owns one composition session: the document store, the email type
// registry, the backend credential and the preview pipeline. Every operator action in
// the browser and terminal consoles is a method here.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Its-donkey/newsdesk/internal/ui/api"
	"github.com/Its-donkey/newsdesk/internal/ui/model"
	"github.com/Its-donkey/newsdesk/internal/ui/preview"
	"github.com/Its-donkey/newsdesk/internal/ui/state"
	"github.com/Its-donkey/newsdesk/logging"
)

// ErrInvalidInput marks operator input rejected before any state change.
var ErrInvalidInput = errors.New("invalid input")

// InputError carries the prompt shown to the operator for rejected input.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// Is lets errors.Is match ErrInvalidInput.
func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(format string, args ...any) error {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

// Backend is the subset of the REST client a session needs.
type Backend interface {
	EmailConfigs(ctx context.Context) ([]model.EmailTypeConfig, error)
	FetchData(ctx context.Context, req model.FetchRequest) (model.Document, error)
	ScrapeURLs(ctx context.Context, urls []string) ([]model.Item, error)
	GenerateEmail(ctx context.Context, req model.GenerateRequest) (string, error)
	SaveAdverts(ctx context.Context, set model.AdvertSet) error
	LoadAdverts(ctx context.Context, emailType string) (model.AdvertSet, error)
	SetCredentials(creds api.Credentials)
	ClearCredentials()
}

// Hooks let a frontend react to session changes. Any hook may be nil.
type Hooks struct {
	// Render receives the views invalidated by a mutation.
	Render func(views []string)
	// Preview receives every applied preview result.
	Preview func(res preview.Result)
	// Status receives notice changes.
	Status func(status model.Status)
	// Reset runs after the backend rejected the credential and the session was cleared.
	Reset func()
}

// Options configure a Session.
type Options struct {
	Backend  Backend
	Logger   *logging.Logger
	Hooks    Hooks
	Debounce time.Duration
	// DefaultType is the email type selected before configs load. Defaults to "be".
	DefaultType string
}

// Session is the explicitly owned state of one console.
type Session struct {
	backend  Backend
	store    *state.Store
	preview  *preview.Client
	debounce *preview.Debouncer
	notifier *Notifier
	logger   *logging.Logger
	hooks    Hooks
	now      func() time.Time

	// publishMu orders preview publication; it is never taken while holding mu.
	publishMu sync.Mutex

	mu          sync.RWMutex
	configs     []model.EmailTypeConfig
	fallback    bool
	emailType   string
	ephemeral   model.EphemeralFields
	loggedIn    bool
	previewHTML string
	previewGen  uint64
	finalHTML   string
}

// New constructs a session holding an empty document.
func New(opts Options) *Session {
	emailType := opts.DefaultType
	if emailType == "" {
		emailType = "be"
	}
	s := &Session{
		backend:   opts.Backend,
		store:     state.NewStore(emailType),
		preview:   preview.NewClient(opts.Backend),
		logger:    opts.Logger,
		hooks:     opts.Hooks,
		now:       time.Now,
		emailType: emailType,
		configs:   model.FallbackEmailConfigs(),
		fallback:  true,
	}
	s.notifier = NewNotifier(opts.Hooks.Status)
	s.debounce = preview.NewDebouncer(opts.Debounce, func() {
		s.RefreshPreview(context.Background())
	})
	return s
}

// Store exposes the document store for read access by views.
func (s *Session) Store() *state.Store { return s.store }

// Notifier exposes the status notifier.
func (s *Session) Notifier() *Notifier { return s.notifier }

// Login stores the basic credential used by every authenticated call.
func (s *Session) Login(username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return invalid("Please enter both username and password")
	}
	s.backend.SetCredentials(api.Credentials{Username: username, Password: password})
	s.mu.Lock()
	s.loggedIn = true
	s.mu.Unlock()
	s.logger.Info("session", "logged in", map[string]any{"user": username})
	return nil
}

// LoggedIn reports whether a credential is held.
func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

// LoadConfigs fetches the email type registry. When the backend is unreachable the
// built-in fallback registry is used so the console stays usable; the returned error
// is informational only.
func (s *Session) LoadConfigs(ctx context.Context) ([]model.EmailTypeConfig, error) {
	configs, err := s.backend.EmailConfigs(ctx)
	if err == nil && len(configs) == 0 {
		err = errors.New("no email types returned")
	}
	fallback := false
	if err != nil {
		s.logger.Warn("session", "email configs unavailable, using fallback", map[string]any{"error": err.Error()})
		configs = model.FallbackEmailConfigs()
		fallback = true
	}
	s.mu.Lock()
	s.configs = configs
	s.fallback = fallback
	current := s.emailType
	s.mu.Unlock()

	if _, ok := s.lookupConfig(current); !ok {
		if serr := s.SwitchEmailType(configs[0].ID); serr != nil {
			s.logger.Warn("session", "select default email type", map[string]any{"error": serr.Error(), "email_type": configs[0].ID})
		}
	}
	if err != nil {
		return configs, fmt.Errorf("load email configs: %w", err)
	}
	return configs, nil
}

// Configs returns the loaded registry.
func (s *Session) Configs() []model.EmailTypeConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.EmailTypeConfig(nil), s.configs...)
}

// UsingFallback reports whether the registry came from the built-in defaults.
func (s *Session) UsingFallback() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fallback
}

// Config returns the configuration of the selected email type. Unknown types get an
// empty vertical/horizontal configuration.
func (s *Session) Config() model.EmailTypeConfig {
	s.mu.RLock()
	emailType := s.emailType
	s.mu.RUnlock()
	if cfg, ok := s.lookupConfig(emailType); ok {
		return cfg
	}
	return model.EmailTypeConfig{ID: emailType, AdvertType: model.AdvertsVerticalHorizontal}
}

func (s *Session) lookupConfig(id string) (model.EmailTypeConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cfg := range s.configs {
		if cfg.ID == id {
			return cfg, true
		}
	}
	return model.EmailTypeConfig{}, false
}

// EmailType returns the selected email type.
func (s *Session) EmailType() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.emailType
}

// SwitchEmailType selects another email type and clears the document. No preview is
// requested until data is fetched.
func (s *Session) SwitchEmailType(id string) error {
	if _, ok := s.lookupConfig(id); !ok {
		return invalid("Unknown email type %q", id)
	}
	s.debounce.Stop()
	s.mu.Lock()
	s.emailType = id
	s.previewHTML = ""
	s.previewGen = s.preview.Latest()
	s.finalHTML = ""
	s.mu.Unlock()
	s.store.Reset(id)
	s.render()
	s.logger.Debug("session", "switched email type", map[string]any{"email_type": id})
	return nil
}

// Close stops background timers.
func (s *Session) Close() {
	s.debounce.Stop()
	s.notifier.Stop()
}

// render hands the invalidated views to the frontend.
func (s *Session) render() {
	views := s.store.TakeDirty()
	if len(views) > 0 && s.hooks.Render != nil {
		s.hooks.Render(views)
	}
}

// fail reports a backend failure. A rejected credential resets the whole session.
func (s *Session) fail(op string, err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		s.resetAuth()
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, api.ErrNoCredentials) {
		s.notifier.Notify("Not logged in. Please refresh the page and log in again.", model.ToneWarning)
		return fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Error("session", op+" failed", err, map[string]any{"email_type": s.EmailType()})
	s.notifier.Notify("API call failed: "+err.Error(), model.ToneError)
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Session) resetAuth() {
	s.logger.Warn("session", "credential rejected, resetting session", nil)
	s.debounce.Stop()
	s.backend.ClearCredentials()
	s.mu.Lock()
	s.loggedIn = false
	s.ephemeral = model.EphemeralFields{}
	s.previewHTML = ""
	s.previewGen = s.preview.Latest()
	s.finalHTML = ""
	emailType := s.emailType
	s.mu.Unlock()
	s.store.Reset(emailType)
	s.render()
	s.notifier.Notify("Authentication failed. Please log in again.", model.ToneError)
	if s.hooks.Reset != nil {
		s.hooks.Reset()
	}
}
