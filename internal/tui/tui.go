// Package tui is the terminal console: the same session the browser console drives,
// rendered with bubbletea.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
	"github.com/Its-donkey/newsdesk/internal/ui/preview"
	"github.com/Its-donkey/newsdesk/internal/ui/session"
)

// Options configure the terminal console.
type Options struct {
	// Fetch is the request sent when fetching. Its email type is ignored.
	Fetch model.FetchRequest
	// OutDir receives generated emails. Empty means the working directory.
	OutDir string
}

// Run opens the console full screen until the user quits or ctx is cancelled. build
// receives the hooks the console listens on and returns the session to drive.
func Run(ctx context.Context, build func(session.Hooks) (*session.Session, error), opts Options) error {
	events := make(chan tea.Msg, 64)
	sess, err := build(hooksFor(events))
	if err != nil {
		return err
	}
	defer sess.Close()

	applyColorProfile()
	m := newAppModel(ctx, sess, events, opts)
	if _, err := sess.LoadConfigs(ctx); err != nil {
		m.status = model.Status{Message: "Backend unreachable: using the built-in email types", Tone: model.ToneWarning}
	}
	m.refresh()

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// hooksFor forwards session notifications into events. Nothing blocks: when the
// console falls behind a render is dropped and the next one redraws from a snapshot.
func hooksFor(events chan<- tea.Msg) session.Hooks {
	send := func(msg tea.Msg) {
		select {
		case events <- msg:
		default:
		}
	}
	return session.Hooks{
		Render:  func(views []string) { send(renderMsg{views: views}) },
		Preview: func(res preview.Result) { send(previewMsg{res: res}) },
		Status:  func(st model.Status) { send(statusMsg(st)) },
		Reset:   func() { send(resetMsg{}) },
	}
}
