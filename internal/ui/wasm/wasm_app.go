//go:build js && wasm

package wasm

import (
	"context"
	"errors"
	"html"
	"strings"
	"syscall/js"
	"time"

	"github.com/Its-donkey/newsdesk/internal/ui/api"
	"github.com/Its-donkey/newsdesk/internal/ui/model"
	"github.com/Its-donkey/newsdesk/internal/ui/preview"
	"github.com/Its-donkey/newsdesk/internal/ui/session"
	"github.com/Its-donkey/newsdesk/internal/ui/state"
	"github.com/Its-donkey/newsdesk/internal/ui/view"
)

var sess *session.Session

// requestTimeout bounds backend calls made from event handlers.
const requestTimeout = 2 * time.Minute

func newSession() *session.Session {
	client := api.New("")
	return session.New(session.Options{
		Backend:  client,
		Debounce: preview.DefaultDebounce,
		Hooks: session.Hooks{
			Render:  renderViews,
			Preview: renderPreview,
			Status:  renderStatus,
			Reset:   showLogin,
		},
	})
}

func withTimeout(fn func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	fn(ctx)
}

// report shows rejected input as a blocking prompt. Backend failures already raised a notice.
func report(err error) {
	if err == nil {
		return
	}
	var inputErr *session.InputError
	if errors.As(err, &inputErr) {
		alert(inputErr.Message)
		return
	}
	if errors.Is(err, state.ErrIndexOutOfRange) {
		js.Global().Get("console").Call("warn", err.Error())
	}
}

func showLogin() {
	setShown(byID("loginPanel"), true)
	setShown(byID("mainContent"), false)
}

func showMain() {
	setShown(byID("loginPanel"), false)
	setShown(byID("mainContent"), true)
}

// renderViews re-renders only the views a mutation invalidated.
func renderViews(views []string) {
	cfg := sess.Config()
	for _, name := range views {
		if name == state.ScalarsView {
			renderScalars(cfg)
			continue
		}
		renderCollection(name, cfg)
	}
}

func renderCollection(name string, cfg model.EmailTypeConfig) {
	items, err := sess.Store().Snapshot(name)
	if err != nil {
		return
	}
	scope := "table:" + name
	container := byID("container-" + name)
	if !container.Truthy() {
		return
	}
	releaseScope(scope)
	table := view.Render(name, items, cfg)
	container.Set("innerHTML", view.HTML(table))
	if title := byID("title-" + name); title.Truthy() {
		title.Set("textContent", table.Title)
	}
	bindTable(scope, container)
}

func renderScalars(cfg model.EmailTypeConfig) {
	doc := sess.Store().Document()
	setHTML("weather", view.WeatherHTML(view.RenderWeather(doc.Weather)))
	if cfg.Supports(model.FeaturePublicationCover) {
		eph := sess.Ephemeral()
		setInputValue("jepCover", eph.JEPCover)
		setInputValue("jepPublication", eph.Publication)
	}
}

// applyVisibility shows the cards the selected email type uses.
func applyVisibility() {
	vis := view.Sections(sess.Config())
	sections := map[string]bool{
		"weather":            vis.Weather,
		"family-notices":     vis.FamilyNotices,
		"deaths-range":       vis.DeathsRange,
		"publication-cover":  vis.PublicationCover,
		"top-image":          vis.TopImage,
		"vertical-adverts":   vis.VerticalAdverts,
		"horizontal-adverts": vis.HorizontalAdverts,
	}
	forEachNode(Document.Call("querySelectorAll", "[data-section]"), func(node js.Value) {
		shown, ok := sections[dataset(node, "section")]
		if ok {
			setShown(node, shown)
		}
	})
	Document.Get("body").Set("className", "email-type-"+sess.EmailType())
}

func renderPreview(res preview.Result) {
	frame := byID("livePreview")
	if !frame.Truthy() {
		return
	}
	frame.Call("removeAttribute", "src")
	frame.Set("srcdoc", res.HTML)
}

func renderStatus(status model.Status) {
	container := byID("statusArea")
	if !container.Truthy() {
		return
	}
	scope := "status"
	releaseScope(scope)
	if strings.TrimSpace(status.Message) == "" {
		container.Set("innerHTML", "")
		return
	}
	tone := status.Tone
	if tone == model.ToneError {
		tone = "danger"
	}
	container.Set("innerHTML", `<div class="alert alert-`+html.EscapeString(tone)+` alert-dismissible" role="alert">`+
		html.EscapeString(status.Message)+
		`<button type="button" class="btn-close" id="statusDismiss" aria-label="Close"></button></div>`)
	on(scope, byID("statusDismiss"), "click", func(js.Value, []js.Value) any {
		sess.Notifier().Dismiss()
		return nil
	})
}

func renderEmailTypes() {
	sel := byID("emailTypeSelect")
	if !sel.Truthy() {
		return
	}
	var builder strings.Builder
	current := sess.EmailType()
	for _, cfg := range sess.Configs() {
		selected := ""
		if cfg.ID == current {
			selected = " selected"
		}
		name := cfg.Name
		if name == "" {
			name = cfg.ID
		}
		builder.WriteString(`<option value="` + html.EscapeString(cfg.ID) + `"` + selected + `>` + html.EscapeString(name) + `</option>`)
	}
	sel.Set("innerHTML", builder.String())
}

// renderAll redraws every card, used after the email type changes.
func renderAll() {
	applyVisibility()
	views := append([]string{}, model.AllCollections...)
	views = append(views, state.ScalarsView)
	renderViews(views)
	renderPreview(preview.Result{HTML: preview.PlaceholderHTML(preview.NoStoriesMessage), Placeholder: true})
}
