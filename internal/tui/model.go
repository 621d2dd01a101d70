package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
	"github.com/Its-donkey/newsdesk/internal/ui/preview"
	"github.com/Its-donkey/newsdesk/internal/ui/session"
	"github.com/Its-donkey/newsdesk/internal/ui/view"
)

type pane int

const (
	paneCollections pane = iota
	paneItems
)

type prompt int

const (
	promptNone prompt = iota
	promptURLs
	promptEdit
	promptOrder
	promptConfirmRemove
)

const collectionsWidth = 28

type (
	renderMsg  struct{ views []string }
	previewMsg struct{ res preview.Result }
	statusMsg  model.Status
	resetMsg   struct{}
	opDoneMsg  struct {
		info string
		err  error
	}
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("24")).Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	paneStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	focusedStyle = paneStyle.BorderForeground(lipgloss.Color("6"))
	toneStyles   = map[string]lipgloss.Style{
		model.ToneInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		model.ToneSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		model.ToneWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		model.ToneError:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

type appModel struct {
	ctx    context.Context
	sess   *session.Session
	events <-chan tea.Msg
	opts   Options
	keys   keyMap
	help   help.Model

	collections list.Model
	items       list.Model
	input       textinput.Model

	pane     pane
	prompt   prompt
	target   int
	selected string
	page     view.Page
	status   model.Status
	preview  string
	outline  string
	detail   bool
	busy     string

	width  int
	height int
}

func newAppModel(ctx context.Context, sess *session.Session, events <-chan tea.Msg, opts Options) appModel {
	m := appModel{
		ctx:      ctx,
		sess:     sess,
		events:   events,
		opts:     opts,
		keys:     defaultKeyMap(),
		help:     help.New(),
		selected: model.NewsStories,
		preview:  preview.NoStoriesMessage,
	}
	m.collections = newList("Collections")
	m.items = newList("Items")
	m.input = textinput.New()
	m.input.CharLimit = 4000
	m.refresh()
	return m
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}

func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg { return <-events }
}

func (m appModel) Init() tea.Cmd { return waitForEvent(m.events) }

// refresh rebuilds both lists from a fresh document snapshot.
func (m *appModel) refresh() {
	m.page = view.RenderPage(m.sess.Store().Document(), m.sess.Config())
	items := collectionItems(m.page)
	m.collections.SetItems(items)
	found := false
	for i, it := range items {
		if it.(collectionItem).name == m.selected {
			m.collections.Select(i)
			found = true
			break
		}
	}
	if !found && len(items) > 0 {
		m.collections.Select(0)
		m.selected = items[0].(collectionItem).name
	}
	m.refreshItems()
}

func (m *appModel) refreshItems() {
	t, _ := tableFor(m.page, m.selected)
	m.items.Title = t.Title
	if t.Empty() && t.EmptyText != "" {
		m.items.Title = t.Title + " (" + t.EmptyText + ")"
	}
	m.items.SetItems(rowItems(t))
}

func (m *appModel) resize() {
	h := m.height - 8
	if h < 5 {
		h = 5
	}
	w := m.width - collectionsWidth - 6
	if w < 20 {
		w = 20
	}
	m.collections.SetSize(collectionsWidth, h)
	m.items.SetSize(w, h)
	m.input.Width = m.width - 20
	m.help.Width = m.width
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case renderMsg:
		m.refresh()
		return m, waitForEvent(m.events)
	case previewMsg:
		m.preview, m.outline = previewSummary(msg.res)
		return m, waitForEvent(m.events)
	case statusMsg:
		m.status = model.Status(msg)
		return m, waitForEvent(m.events)
	case resetMsg:
		m.status = model.Status{Message: "Session expired: restart with valid credentials", Tone: model.ToneError}
		return m, waitForEvent(m.events)
	case opDoneMsg:
		m.busy = ""
		switch {
		case msg.err != nil:
			m.status = model.Status{Message: msg.err.Error(), Tone: model.ToneError}
		case msg.info != "":
			m.status = model.Status{Message: msg.info, Tone: model.ToneSuccess}
		}
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.updatePrompt(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m appModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.SwitchPane):
		if m.pane == paneCollections {
			m.pane = paneItems
		} else {
			m.pane = paneCollections
		}
		return m, nil
	case key.Matches(msg, m.keys.Fetch):
		req := m.opts.Fetch
		sess := m.sess
		return m.run("Fetching", func(ctx context.Context) (string, error) {
			return "", sess.Fetch(ctx, req)
		})
	case key.Matches(msg, m.keys.AddURLs):
		if !model.IsStoryCollection(m.selected) {
			m.warn("Select a story collection to add URLs to")
			return m, nil
		}
		return m.openPrompt(promptURLs, "URLs: ", "", 0)
	case key.Matches(msg, m.keys.Edit):
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		items, _ := m.sess.Store().Snapshot(m.selected)
		current := ""
		if row.Index < len(items) {
			current = items[row.Index].Get(editField(m.selected))
		}
		return m.openPrompt(promptEdit, editField(m.selected)+": ", current, row.Index)
	case key.Matches(msg, m.keys.Order):
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		t, _ := tableFor(m.page, m.selected)
		if !t.Orderable {
			m.warn("This collection has no order")
			return m, nil
		}
		return m.openPrompt(promptOrder, "order: ", strconv.Itoa(row.Order), row.Index)
	case key.Matches(msg, m.keys.Remove):
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		m.prompt = promptConfirmRemove
		m.target = row.Index
		return m, nil
	case key.Matches(msg, m.keys.Add):
		return m.add()
	case key.Matches(msg, m.keys.SaveAdverts):
		sess := m.sess
		return m.run("Saving adverts", func(ctx context.Context) (string, error) {
			return "", sess.SaveAdverts(ctx)
		})
	case key.Matches(msg, m.keys.LoadAdverts):
		sess := m.sess
		return m.run("Loading adverts", func(ctx context.Context) (string, error) {
			return "", sess.LoadAdverts(ctx)
		})
	case key.Matches(msg, m.keys.NextType):
		return m.nextType()
	case key.Matches(msg, m.keys.Preview):
		sess := m.sess
		return m.run("Rendering preview", func(ctx context.Context) (string, error) {
			sess.RefreshPreview(ctx)
			return "", nil
		})
	case key.Matches(msg, m.keys.Detail):
		m.detail = !m.detail
		return m, nil
	case key.Matches(msg, m.keys.Generate):
		sess, dir := m.sess, m.opts.OutDir
		return m.run("Generating", func(ctx context.Context) (string, error) {
			return generate(ctx, sess, dir)
		})
	}

	var cmd tea.Cmd
	if m.pane == paneCollections {
		m.collections, cmd = m.collections.Update(msg)
		if ci, ok := m.collections.SelectedItem().(collectionItem); ok && ci.name != m.selected {
			m.selected = ci.name
			m.refreshItems()
		}
		return m, cmd
	}
	m.items, cmd = m.items.Update(msg)
	return m, cmd
}

func (m appModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt == promptConfirmRemove {
		switch msg.String() {
		case "y", "Y":
			sess, collection, index := m.sess, m.selected, m.target
			m.closePrompt()
			return m.run("Removing", func(ctx context.Context) (string, error) {
				_, err := sess.RemoveItem(ctx, collection, index, nil)
				return "", err
			})
		case "n", "N", "esc":
			m.closePrompt()
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.closePrompt()
		return m, nil
	case tea.KeyEnter:
		p, value, index := m.prompt, strings.TrimSpace(m.input.Value()), m.target
		m.closePrompt()
		return m.submit(p, value, index)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) submit(p prompt, value string, index int) (tea.Model, tea.Cmd) {
	sess, collection := m.sess, m.selected
	switch p {
	case promptURLs:
		urls := strings.Join(strings.Fields(value), "\n")
		return m.run("Scraping", func(ctx context.Context) (string, error) {
			_, err := sess.AddFromURLs(ctx, urls, collection)
			return "", err
		})
	case promptEdit:
		patch := model.ItemPatch{Fields: map[string]string{editField(collection): value}}
		return m.run("Saving", func(ctx context.Context) (string, error) {
			return "", sess.EditItem(ctx, collection, index, patch)
		})
	case promptOrder:
		order, err := strconv.Atoi(value)
		if err != nil {
			m.status = model.Status{Message: "Order must be a whole number", Tone: model.ToneError}
			return m, nil
		}
		return m.run("Reordering", func(ctx context.Context) (string, error) {
			return "", sess.SetOrder(ctx, collection, index, order)
		})
	}
	return m, nil
}

func (m appModel) add() (tea.Model, tea.Cmd) {
	var (
		index int
		err   error
	)
	switch {
	case m.selected == model.FamilyNotices:
		index, err = m.sess.AddNotice()
	case model.IsAdvertCollection(m.selected):
		index, err = m.sess.AddAdvert(m.selected)
	default:
		m.warn("Stories are added from URLs")
		return m, nil
	}
	if err != nil {
		m.status = model.Status{Message: err.Error(), Tone: model.ToneError}
		return m, nil
	}
	m.refresh()
	m.items.Select(index)
	m.pane = paneItems
	return m.openPrompt(promptEdit, editField(m.selected)+": ", "", index)
}

func (m appModel) nextType() (tea.Model, tea.Cmd) {
	configs := m.sess.Configs()
	if len(configs) == 0 {
		return m, nil
	}
	current := m.sess.EmailType()
	next := configs[0]
	for i, cfg := range configs {
		if cfg.ID == current {
			next = configs[(i+1)%len(configs)]
			break
		}
	}
	if err := m.sess.SwitchEmailType(next.ID); err != nil {
		m.status = model.Status{Message: err.Error(), Tone: model.ToneError}
		return m, nil
	}
	m.preview, m.outline = preview.NoStoriesMessage, ""
	m.status = model.Status{Message: "Switched to " + next.Name, Tone: model.ToneInfo}
	m.refresh()
	return m, nil
}

func (m appModel) openPrompt(p prompt, label, value string, index int) (tea.Model, tea.Cmd) {
	m.prompt = p
	m.target = index
	m.input.Prompt = label
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m *appModel) closePrompt() {
	m.prompt = promptNone
	m.input.Blur()
	m.input.SetValue("")
}

func (m *appModel) warn(message string) {
	m.status = model.Status{Message: message, Tone: model.ToneWarning}
}

func (m appModel) selectedRow() (view.Row, bool) {
	it, ok := m.items.SelectedItem().(rowItem)
	if !ok {
		return view.Row{}, false
	}
	return it.row, true
}

// run executes op off the update loop and reports back with an opDoneMsg.
func (m appModel) run(label string, op func(ctx context.Context) (string, error)) (tea.Model, tea.Cmd) {
	m.busy = label + "..."
	ctx := m.ctx
	return m, func() tea.Msg {
		info, err := op(ctx)
		return opDoneMsg{info: info, err: err}
	}
}

func generate(ctx context.Context, sess *session.Session, dir string) (string, error) {
	if _, err := sess.GenerateFinal(ctx); err != nil {
		return "", err
	}
	path := filepath.Join(dir, sess.DownloadName())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := sess.Download(f); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return "Saved " + path, nil
}

// previewSummary returns the one-line preview status and a markdown outline.
func previewSummary(res preview.Result) (string, string) {
	if res.Placeholder {
		return preview.NoStoriesMessage, ""
	}
	s, err := preview.Inspect(res.HTML)
	if err != nil {
		return "Preview unavailable", ""
	}
	line := s.String()
	if s.Title != "" {
		line = s.Title + ": " + line
	}
	return line, previewMarkdown(s)
}

func (m appModel) View() string {
	cfg := m.sess.Config()
	header := titleStyle.Render("newsdesk") + " " + cfg.Name + mutedStyle.Render(" ("+cfg.ID+")")
	if m.busy != "" {
		header += "  " + mutedStyle.Render(m.busy)
	}

	left, right := paneStyle, paneStyle
	if m.pane == paneCollections {
		left = focusedStyle
	} else {
		right = focusedStyle
	}
	rightView := m.items.View()
	if m.detail {
		rightView = m.outlineView()
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		left.Render(m.collections.View()),
		right.Render(rightView),
	)

	lines := []string{header, body}
	if w := m.page.Weather; w != nil {
		if len(w.Lines) == 0 {
			lines = append(lines, mutedStyle.Render("Weather: "+w.EmptyText))
		} else {
			parts := make([]string, 0, len(w.Lines))
			for _, l := range w.Lines {
				parts = append(parts, l.Label+": "+l.Value)
			}
			lines = append(lines, "Weather: "+strings.Join(parts, " | "))
		}
	}
	lines = append(lines, fitWidth(mutedStyle.Render("Preview: ")+m.preview, m.width))

	switch m.prompt {
	case promptNone:
	case promptConfirmRemove:
		lines = append(lines, promptStyle.Render(session.RemovePrompt(m.selected)+" [y/n]"))
	default:
		lines = append(lines, m.input.View())
	}
	if m.status.Message != "" {
		style, ok := toneStyles[m.status.Tone]
		if !ok {
			style = lipgloss.NewStyle()
		}
		lines = append(lines, style.Render(m.status.Message))
	}
	lines = append(lines, m.help.ShortHelpView(m.keys.help()))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m appModel) outlineView() string {
	if m.outline == "" {
		return mutedStyle.Render(m.preview)
	}
	width := m.items.Width()
	out := renderMarkdown(m.outline, width)
	if h := m.items.Height(); h > 0 {
		if lines := strings.Split(out, "\n"); len(lines) > h {
			out = strings.Join(lines[:h], "\n")
		}
	}
	return fitWidth(out, width)
}
