package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/Its-donkey/newsdesk/internal/tui"
	"github.com/Its-donkey/newsdesk/internal/ui/session"
)

func newTUICmd(app *App) *cobra.Command {
	opts := tui.Options{}
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Compose in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Fetch.DeathsStart == "" && opts.Fetch.DeathsEnd == "" {
				today := time.Now().Format(session.DeathsDateLayout)
				opts.Fetch.DeathsStart, opts.Fetch.DeathsEnd = today, today
			}
			app.fileOnlyLogging()
			return tui.Run(cmd.Context(), func(hooks session.Hooks) (*session.Session, error) {
				sess, err := app.newSession(hooks)
				if err != nil {
					return nil, err
				}
				if !sess.LoggedIn() {
					sess.Close()
					return nil, errors.New("tui needs a backend credential: pass --user and --password or set NEWSDESK_API_USER and NEWSDESK_API_PASSWORD")
				}
				return sess, nil
			}, opts)
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.Fetch.NumNews, "news", 5, "Number of news stories")
	f.IntVar(&opts.Fetch.NumBusiness, "business", 1, "Number of business stories")
	f.IntVar(&opts.Fetch.NumSports, "sports", 1, "Number of sport stories")
	f.IntVar(&opts.Fetch.NumCommunity, "community", 1, "Number of community stories")
	f.IntVar(&opts.Fetch.NumPodcast, "podcast", 1, "Number of podcast stories")
	f.StringVar(&opts.Fetch.DeathsStart, "deaths-start", "", "Family notices from (YYYY-MM-DD, default today)")
	f.StringVar(&opts.Fetch.DeathsEnd, "deaths-end", "", "Family notices to (YYYY-MM-DD, default today)")
	f.StringVar(&opts.OutDir, "out-dir", "", "Directory generated emails are written to")
	return cmd
}
