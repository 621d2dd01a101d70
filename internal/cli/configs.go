package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
	"github.com/Its-donkey/newsdesk/internal/ui/session"
)

func newConfigsCmd(app *App) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "configs",
		Short: "List the email types the backend publishes",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.newSession(session.Hooks{})
			if err != nil {
				return err
			}
			defer sess.Close()

			configs, loadErr := sess.LoadConfigs(cmd.Context())
			if loadErr != nil {
				app.logger.Warn("cli", "using fallback email configs", map[string]any{"error": loadErr.Error()})
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(model.EmailConfigsResponse{EmailTypes: configs})
			}
			fmt.Fprintln(out, configsTable(configs, sess.UsingFallback()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the registry as JSON")
	return cmd
}

func configsTable(configs []model.EmailTypeConfig, fallback bool) string {
	rows := make([][]string, 0, len(configs))
	for _, cfg := range configs {
		rows = append(rows, []string{cfg.ID, cfg.Name, string(cfg.AdvertType), featureList(cfg)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "ADVERTS", "FEATURES").
		Rows(rows...)
	rendered := t.String()
	if fallback {
		rendered += "\n(backend unreachable: showing the built-in registry)"
	}
	return rendered
}

func featureList(cfg model.EmailTypeConfig) string {
	var on []string
	for name, enabled := range cfg.UIFeatures {
		if enabled {
			on = append(on, name)
		}
	}
	sort.Strings(on)
	if len(on) == 0 {
		return "-"
	}
	return strings.Join(on, ", ")
}
