package tui

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/Its-donkey/newsdesk/internal/ui/preview"
)

var (
	mdRendererMu sync.Mutex
	// Keyed by style and wrap width. WithAutoStyle queries the terminal and can block.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// applyColorProfile honours NO_COLOR and otherwise trusts the terminal.
func applyColorProfile() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.ColorProfile())
}

func markdownStyle() string {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return "notty"
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}
	style := markdownStyle()
	key := style + ":" + strconv.Itoa(width)

	mdRendererMu.Lock()
	defer mdRendererMu.Unlock()
	r := mdRenderers[key]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRenderers[key] = rr
		r = rr
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// previewMarkdown outlines a rendered email: its title, counts and headings.
func previewMarkdown(s preview.Summary) string {
	var b strings.Builder
	title := s.Title
	if title == "" {
		title = "Preview"
	}
	fmt.Fprintf(&b, "# %s\n\n%s\n", title, s.String())
	if len(s.Headlines) > 0 {
		b.WriteString("\n")
		for _, h := range s.Headlines {
			fmt.Fprintf(&b, "- %s\n", h)
		}
	}
	return b.String()
}

// fitWidth cuts each line of s to width cells.
func fitWidth(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if xansi.StringWidth(line) > width {
			lines[i] = xansi.Truncate(line, width, "…")
		}
	}
	return strings.Join(lines, "\n")
}
