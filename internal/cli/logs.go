package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Its-donkey/newsdesk/logging"
)

var (
	levelStyles = map[string]lipgloss.Style{
		"DEBUG": lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		"INFO":  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"WARN":  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"ERROR": lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func newLogsCmd(app *App) *cobra.Command {
	var lines int
	var level string
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the newest entries of the log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(app.v.GetString(keyLogFile))
			if path == "" {
				return errors.New("no log file configured: pass --log-file or set log.file")
			}
			minLevel, err := logging.ParseLevel(level)
			if err != nil {
				return err
			}
			entries, err := logging.ReadRecent(path, lines)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			printEntries(cmd.OutOrStdout(), entries, minLevel)
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of entries to show")
	cmd.Flags().StringVar(&level, "min-level", "debug", "Hide entries below this level")
	return cmd
}

func printEntries(w io.Writer, entries []logging.Entry, minLevel logging.Level) {
	for _, e := range entries {
		lvl, err := logging.ParseLevel(e.Level)
		if err == nil && lvl < minLevel {
			continue
		}
		style, ok := levelStyles[e.Level]
		if !ok {
			style = lipgloss.NewStyle()
		}
		line := fmt.Sprintf("%s %s [%s] %s",
			dimStyle.Render(e.Timestamp.Format("15:04:05")),
			style.Render(fmt.Sprintf("%-5s", e.Level)),
			e.Category,
			e.Message,
		)
		if e.RequestID != "" {
			line += dimStyle.Render(" req=" + e.RequestID)
		}
		if e.Error != "" {
			line += " error=" + e.Error
		}
		if len(e.Fields) > 0 {
			keys := make([]string, 0, len(e.Fields))
			for k := range e.Fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				line += fmt.Sprintf(" %s=%v", k, e.Fields[k])
			}
		}
		fmt.Fprintln(w, line)
	}
}
