// Package cli implements the newsdesk command line: the console server, the terminal
// console, the headless composer and the development backend.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Its-donkey/newsdesk/internal/ui/api"
	"github.com/Its-donkey/newsdesk/internal/ui/preview"
	"github.com/Its-donkey/newsdesk/internal/ui/session"
	"github.com/Its-donkey/newsdesk/logging"
)

// Config keys.
const (
	keyAPIURL      = "api.url"
	keyAPIUser     = "api.user"
	keyAPIPassword = "api.password"
	keyEmailType   = "api.email_type"
	keyServeListen = "serve.listen"
	keyServeAssets = "serve.assets"
	keyMockListen  = "mock.listen"
	keyMockDB      = "mock.db"
	keyMockFixture = "mock.fixtures"
	keyLogLevel    = "log.level"
	keyLogFile     = "log.file"
)

// App carries state shared by every command.
type App struct {
	ConfigPath string

	v       *viper.Viper
	logger  *logging.Logger
	level   logging.Level
	logFile io.Writer
	closers []io.Closer
}

// NewRootCmd builds the newsdesk command tree.
func NewRootCmd() *cobra.Command {
	app := &App{v: viper.New()}

	cmd := &cobra.Command{
		Use:          "newsdesk",
		Short:        "Newsletter composition console",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Serve the browser console against a backend
  newsdesk serve --api-url http://127.0.0.1:8000

  # Run the development backend
  newsdesk mock

  # Compose an email without a browser
  newsdesk compose --type be --user admin --password password --out email.html
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := app.loadConfig(); err != nil {
			return err
		}
		return app.setupLogging(cmd.ErrOrStderr())
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.close()
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&app.ConfigPath, "config", "", "Config file (default: ./newsdesk.yaml or ~/.config/newsdesk/newsdesk.yaml)")
	flags.String("api-url", "http://127.0.0.1:8000", "Backend base URL")
	flags.String("user", "", "Backend username")
	flags.String("password", "", "Backend password")
	flags.String("type", "", "Email type to compose (default: the first one the backend lists)")
	flags.String("log-level", "info", "Log level (debug|info|warn|error)")
	flags.String("log-file", "", "Also write JSON logs to this file (rotated)")
	_ = app.v.BindPFlag(keyAPIURL, flags.Lookup("api-url"))
	_ = app.v.BindPFlag(keyAPIUser, flags.Lookup("user"))
	_ = app.v.BindPFlag(keyAPIPassword, flags.Lookup("password"))
	_ = app.v.BindPFlag(keyEmailType, flags.Lookup("type"))
	_ = app.v.BindPFlag(keyLogLevel, flags.Lookup("log-level"))
	_ = app.v.BindPFlag(keyLogFile, flags.Lookup("log-file"))

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newMockCmd(app))
	cmd.AddCommand(newConfigsCmd(app))
	cmd.AddCommand(newComposeCmd(app))
	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newLogsCmd(app))

	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func (a *App) loadConfig() error {
	a.v.SetEnvPrefix("NEWSDESK")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if a.ConfigPath != "" {
		a.v.SetConfigFile(a.ConfigPath)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", a.ConfigPath, err)
		}
		return nil
	}
	a.v.SetConfigName("newsdesk")
	a.v.SetConfigType("yaml")
	a.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		a.v.AddConfigPath(filepath.Join(home, ".config", "newsdesk"))
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func (a *App) setupLogging(stderr io.Writer) error {
	level, err := logging.ParseLevel(a.v.GetString(keyLogLevel))
	if err != nil {
		return err
	}
	writers := []io.Writer{stderr}
	if path := strings.TrimSpace(a.v.GetString(keyLogFile)); path != "" {
		fw, err := logging.NewFileWriter(path, 10, 5)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, fw)
		a.logFile = fw
		a.closers = append(a.closers, fw)
	}
	a.level = level
	a.logger = logging.New("newsdesk", level, writers...)
	return nil
}

// fileOnlyLogging stops writing logs to stderr. Full-screen commands use it so log
// lines do not tear the terminal.
func (a *App) fileOnlyLogging() {
	if a.logFile == nil {
		a.logger = logging.Discard()
		return
	}
	a.logger = logging.New("newsdesk", a.level, a.logFile)
}

func (a *App) close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// newSession builds a session against the configured backend and logs in when a
// credential is configured.
func (a *App) newSession(hooks session.Hooks) (*session.Session, error) {
	client := api.New(a.v.GetString(keyAPIURL))
	client.Logger = a.logger
	sess := session.New(session.Options{
		Backend:     client,
		Logger:      a.logger,
		Hooks:       hooks,
		Debounce:    preview.DefaultDebounce,
		DefaultType: a.v.GetString(keyEmailType),
	})
	user, password := a.v.GetString(keyAPIUser), a.v.GetString(keyAPIPassword)
	if user != "" || password != "" {
		if err := sess.Login(user, password); err != nil {
			sess.Close()
			return nil, err
		}
	}
	return sess, nil
}
