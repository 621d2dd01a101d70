//go:build js && wasm

package wasm

import (
	"context"
	"strings"
	"syscall/js"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
)

// RunApp bootstraps the newsdesk console and blocks forever.
func RunApp() {
	done := make(chan struct{})
	Document = js.Global().Get("document")
	if !byID("mainContent").Truthy() {
		js.Global().Get("console").Call("error", "console shell missing")
		return
	}

	sess = newSession()
	showLogin()
	bindShell()
	go func() {
		withTimeout(func(ctx context.Context) {
			if _, err := sess.LoadConfigs(ctx); err != nil {
				js.Global().Get("console").Call("warn", "using fallback email configs", err.Error())
			}
		})
		renderEmailTypes()
		renderAll()
	}()
	<-done
}

const shellScope = "shell"

func bindShell() {
	on(shellScope, byID("loginForm"), "submit", func(this js.Value, args []js.Value) any {
		preventDefault(args)
		if err := sess.Login(inputValue("username"), inputValue("password")); err != nil {
			report(err)
			return nil
		}
		setInputValue("password", "")
		showMain()
		return nil
	})

	on(shellScope, byID("emailTypeSelect"), "change", func(this js.Value, _ []js.Value) any {
		report(sess.SwitchEmailType(this.Get("value").String()))
		renderAll()
		return nil
	})

	on(shellScope, byID("fetchButton"), "click", func(js.Value, []js.Value) any {
		req := model.FetchRequest{
			NumNews:      inputInt("numNews"),
			NumBusiness:  inputInt("numBusiness"),
			NumSports:    inputInt("numSports"),
			NumCommunity: inputInt("numCommunity"),
			NumPodcast:   inputInt("numPodcast"),
			DeathsStart:  inputValue("deathsStart"),
			DeathsEnd:    inputValue("deathsEnd"),
		}
		go func() {
			setBusy("fetchButton", true)
			defer setBusy("fetchButton", false)
			withTimeout(func(ctx context.Context) { report(sess.Fetch(ctx, req)) })
		}()
		return nil
	})

	on(shellScope, byID("scrapeButton"), "click", func(js.Value, []js.Value) any {
		raw := inputValue("manualUrls")
		collection := inputValue("storyType")
		go func() {
			setBusy("scrapeButton", true)
			defer setBusy("scrapeButton", false)
			withTimeout(func(ctx context.Context) {
				n, err := sess.AddFromURLs(ctx, raw, collection)
				report(err)
				if err == nil && n > 0 {
					setInputValue("manualUrls", "")
				}
			})
		}()
		return nil
	})

	for _, id := range []string{"topImageTitle", "topImageUrl", "topImageAuthor", "topImageLink", "jepCover", "jepPublication"} {
		on(shellScope, byID(id), "input", func(js.Value, []js.Value) any {
			sess.SetEphemeral(readEphemeral())
			return nil
		})
	}

	on(shellScope, byID("refreshPreviewButton"), "click", func(js.Value, []js.Value) any {
		go withTimeout(func(ctx context.Context) { sess.RefreshPreview(ctx) })
		return nil
	})

	on(shellScope, byID("editWeatherButton"), "click", func(js.Value, []js.Value) any {
		openWeatherEditor()
		return nil
	})

	on(shellScope, byID("addNoticeButton"), "click", func(js.Value, []js.Value) any {
		idx, err := sess.AddNotice()
		if err != nil {
			report(err)
			return nil
		}
		openItemEditor(model.FamilyNotices, idx)
		return nil
	})

	forEachNode(Document.Call("querySelectorAll", "[data-add-advert]"), func(node js.Value) {
		on(shellScope, node, "click", func(this js.Value, _ []js.Value) any {
			collection := dataset(this, "addAdvert")
			idx, err := sess.AddAdvert(collection)
			if err != nil {
				report(err)
				return nil
			}
			openItemEditor(collection, idx)
			return nil
		})
	})

	on(shellScope, byID("saveAdvertsButton"), "click", func(_ js.Value, args []js.Value) any {
		preventDefault(args)
		go func() {
			setBusy("saveAdvertsButton", true)
			defer setBusy("saveAdvertsButton", false)
			withTimeout(func(ctx context.Context) { report(sess.SaveAdverts(ctx)) })
		}()
		return nil
	})

	on(shellScope, byID("loadAdvertsButton"), "click", func(js.Value, []js.Value) any {
		go func() {
			setBusy("loadAdvertsButton", true)
			defer setBusy("loadAdvertsButton", false)
			withTimeout(func(ctx context.Context) { report(sess.LoadAdverts(ctx)) })
		}()
		return nil
	})

	on(shellScope, byID("generateButton"), "click", func(js.Value, []js.Value) any {
		go func() {
			setBusy("generateButton", true)
			defer setBusy("generateButton", false)
			withTimeout(func(ctx context.Context) {
				markup, err := sess.GenerateFinal(ctx)
				if err != nil {
					report(err)
					return
				}
				if frame := byID("emailPreview"); frame.Truthy() {
					frame.Set("srcdoc", markup)
				}
				setShown(byID("finalEmail"), true)
			})
		}()
		return nil
	})

	on(shellScope, byID("downloadButton"), "click", func(js.Value, []js.Value) any {
		downloadEmail()
		return nil
	})

	bindEditor()
}

func readEphemeral() model.EphemeralFields {
	return model.EphemeralFields{
		TopImage: model.TopImage{
			Title:  inputValue("topImageTitle"),
			URL:    inputValue("topImageUrl"),
			Author: inputValue("topImageAuthor"),
			Link:   inputValue("topImageLink"),
		},
		JEPCover:    inputValue("jepCover"),
		Publication: inputValue("jepPublication"),
	}
}

func downloadEmail() {
	var buf strings.Builder
	name, err := sess.Download(&buf)
	if err != nil {
		report(err)
		return
	}
	global := js.Global()
	blob := global.Get("Blob").New([]any{buf.String()}, map[string]any{"type": "text/html"})
	url := global.Get("URL").Call("createObjectURL", blob)
	a := Document.Call("createElement", "a")
	a.Set("href", url)
	a.Set("download", name)
	body := Document.Get("body")
	body.Call("appendChild", a)
	a.Call("click")
	body.Call("removeChild", a)
	global.Get("URL").Call("revokeObjectURL", url)
}
