package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
	"github.com/Its-donkey/newsdesk/internal/ui/preview"
	"github.com/Its-donkey/newsdesk/internal/ui/session"
)

type composeOptions struct {
	fetch     model.FetchRequest
	urls      []string
	storyType string
	topImage  model.TopImage
	jepCover  string
	pubLink   string
	out       string
}

func newComposeCmd(app *App) *cobra.Command {
	opts := composeOptions{}
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Fetch, optionally add stories from URLs, and write the generated email",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompose(cmd, app, opts)
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.fetch.NumNews, "news", 5, "Number of news stories")
	f.IntVar(&opts.fetch.NumBusiness, "business", 1, "Number of business stories")
	f.IntVar(&opts.fetch.NumSports, "sports", 1, "Number of sport stories")
	f.IntVar(&opts.fetch.NumCommunity, "community", 1, "Number of community stories")
	f.IntVar(&opts.fetch.NumPodcast, "podcast", 1, "Number of podcast stories")
	f.StringVar(&opts.fetch.DeathsStart, "deaths-start", "", "Family notices from (YYYY-MM-DD, default today)")
	f.StringVar(&opts.fetch.DeathsEnd, "deaths-end", "", "Family notices to (YYYY-MM-DD, default today)")
	f.StringSliceVar(&opts.urls, "url", nil, "Article URL to scrape and append (repeatable)")
	f.StringVar(&opts.storyType, "story-type", model.NewsStories, "Collection the scraped URLs are added to")
	f.StringVar(&opts.topImage.Title, "top-image-title", "", "Top image title")
	f.StringVar(&opts.topImage.URL, "top-image-url", "", "Top image URL")
	f.StringVar(&opts.topImage.Author, "top-image-author", "", "Top image author")
	f.StringVar(&opts.topImage.Link, "top-image-link", "", "Top image link")
	f.StringVar(&opts.jepCover, "cover", "", "Publication cover image URL")
	f.StringVar(&opts.pubLink, "publication", "", "Publication link")
	f.StringVarP(&opts.out, "out", "o", "", "Output file (default: <type>-email-<date>.html)")
	return cmd
}

func runCompose(cmd *cobra.Command, app *App, opts composeOptions) error {
	ctx := cmd.Context()
	sess, err := app.newSession(session.Hooks{})
	if err != nil {
		return err
	}
	defer sess.Close()
	if !sess.LoggedIn() {
		return fmt.Errorf("compose needs a backend credential: pass --user and --password or set NEWSDESK_API_USER and NEWSDESK_API_PASSWORD")
	}

	if _, err := sess.LoadConfigs(ctx); err != nil {
		app.logger.Warn("cli", "using fallback email configs", map[string]any{"error": err.Error()})
	}
	if want := app.v.GetString(keyEmailType); want != "" {
		if err := sess.SwitchEmailType(want); err != nil {
			return err
		}
	}

	if opts.fetch.DeathsStart == "" && opts.fetch.DeathsEnd == "" {
		today := time.Now().Format(session.DeathsDateLayout)
		opts.fetch.DeathsStart, opts.fetch.DeathsEnd = today, today
	}
	if err := sess.Fetch(ctx, opts.fetch); err != nil {
		return err
	}
	if len(opts.urls) > 0 {
		n, err := sess.AddFromURLs(ctx, strings.Join(opts.urls, "\n"), opts.storyType)
		if err != nil {
			return err
		}
		app.logger.Info("cli", "added scraped stories", map[string]any{"count": n, "collection": opts.storyType})
	}

	eph := sess.Ephemeral()
	eph.TopImage = opts.topImage
	if opts.jepCover != "" {
		eph.JEPCover = opts.jepCover
	}
	if opts.pubLink != "" {
		eph.Publication = opts.pubLink
	}
	sess.SetEphemeral(eph)

	if _, err := sess.GenerateFinal(ctx); err != nil {
		return err
	}

	path := opts.out
	if path == "" {
		path = sess.DownloadName()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := sess.Download(file); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	summary, err := preview.Inspect(sess.FinalHTML())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "wrote %s\n", path)
	fmt.Fprintln(out, summary.String())
	return nil
}
