//go:build js && wasm

package wasm

import (
	"context"
	"html"
	"strconv"
	"strings"
	"syscall/js"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
	"github.com/Its-donkey/newsdesk/internal/ui/session"
)

// bindTable hooks up the order inputs and row buttons rendered by view.HTML.
func bindTable(scope string, container js.Value) {
	forEachNode(container.Call("querySelectorAll", "[data-order-input]"), func(node js.Value) {
		on(scope, node, "change", func(this js.Value, _ []js.Value) any {
			collection := dataset(this, "orderInput")
			index, _ := strconv.Atoi(dataset(this, "index"))
			order, err := strconv.Atoi(strings.TrimSpace(this.Get("value").String()))
			if err != nil {
				alert("Order must be a whole number")
				return nil
			}
			go withTimeout(func(ctx context.Context) { report(sess.SetOrder(ctx, collection, index, order)) })
			return nil
		})
	})
	forEachNode(container.Call("querySelectorAll", "[data-edit-item]"), func(node js.Value) {
		on(scope, node, "click", func(this js.Value, _ []js.Value) any {
			index, _ := strconv.Atoi(dataset(this, "index"))
			openItemEditor(dataset(this, "editItem"), index)
			return nil
		})
	})
	forEachNode(container.Call("querySelectorAll", "[data-remove-item]"), func(node js.Value) {
		on(scope, node, "click", func(this js.Value, _ []js.Value) any {
			collection := dataset(this, "removeItem")
			index, _ := strconv.Atoi(dataset(this, "index"))
			// confirm blocks, so ask before leaving the event handler
			if !confirm(session.RemovePrompt(collection)) {
				return nil
			}
			go withTimeout(func(ctx context.Context) {
				_, err := sess.RemoveItem(ctx, collection, index, nil)
				report(err)
			})
			return nil
		})
	})
}

// editor tracks what the shared edit dialog is editing.
var editor struct {
	collection string
	index      int
	weather    bool
}

func editorFields(collection string) []string {
	switch {
	case collection == model.FamilyNotices:
		return []string{model.FieldName, model.FieldFuneralDirector, model.FieldAdditionalText, model.FieldURL}
	case model.IsAdvertCollection(collection):
		return []string{"order", model.FieldURL, model.FieldImageURL}
	}
	return []string{"order", model.FieldHeadline, model.FieldText, model.FieldAuthor, model.FieldURL, model.FieldImageURL}
}

var fieldLabels = map[string]string{
	"order":                    "Order",
	model.FieldHeadline:        "Headline",
	model.FieldText:            "Text",
	model.FieldAuthor:          "Author",
	model.FieldURL:             "URL",
	model.FieldImageURL:        "Image URL",
	model.FieldName:            "Name",
	model.FieldFuneralDirector: "Funeral Director",
	model.FieldAdditionalText:  "Additional Text",
	"todays_weather":           "Today's weather",
	"tides":                    "Tides",
	"date":                     "Date",
}

func openItemEditor(collection string, index int) {
	items, err := sess.Store().Snapshot(collection)
	if err != nil || index < 0 || index >= len(items) {
		if collection == model.FamilyNotices {
			alert("No family notices to edit. Add one first.")
		}
		return
	}
	item := items[index]
	values := map[string]string{}
	for k, v := range item.Fields {
		values[k] = v
	}
	order := item.Order
	if order == 0 && model.IsAdvertCollection(collection) {
		order = index + 1
	}
	values["order"] = strconv.Itoa(order)
	editor.collection, editor.index, editor.weather = collection, index, false
	title := "Edit Story"
	switch {
	case collection == model.FamilyNotices:
		title = "Edit Family Notice"
	case model.IsAdvertCollection(collection):
		title = "Edit Advert"
	}
	showEditor(title, editorFields(collection), values)
}

func openWeatherEditor() {
	w := sess.Store().Document().Weather
	editor.collection, editor.index, editor.weather = "", 0, true
	showEditor("Edit Weather", []string{"todays_weather", "tides", "date"}, map[string]string{
		"todays_weather": w.TodaysWeather,
		"tides":          w.Tides,
		"date":           w.Date,
	})
}

func showEditor(title string, fields []string, values map[string]string) {
	var builder strings.Builder
	builder.WriteString(`<h5>` + html.EscapeString(title) + `</h5>`)
	for _, f := range fields {
		id := "edit-" + f
		label := html.EscapeString(fieldLabels[f])
		value := html.EscapeString(values[f])
		builder.WriteString(`<div class="mb-3"><label class="form-label" for="` + id + `">` + label + `</label>`)
		switch f {
		case model.FieldText, model.FieldAdditionalText:
			builder.WriteString(`<textarea class="form-control" rows="4" id="` + id + `" data-edit-field="` + f + `">` + value + `</textarea>`)
		case "order":
			builder.WriteString(`<input type="number" class="form-control" id="` + id + `" data-edit-field="order" value="` + value + `" />`)
		default:
			builder.WriteString(`<input type="text" class="form-control" id="` + id + `" data-edit-field="` + f + `" value="` + value + `" />`)
		}
		builder.WriteString(`</div>`)
	}
	setHTML("editFields", builder.String())
	if dialog := byID("editDialog"); dialog.Truthy() {
		dialog.Call("showModal")
	}
}

func closeEditor() {
	if dialog := byID("editDialog"); dialog.Truthy() {
		dialog.Call("close")
	}
}

func bindEditor() {
	on(shellScope, byID("editCancel"), "click", func(_ js.Value, args []js.Value) any {
		preventDefault(args)
		closeEditor()
		return nil
	})
	on(shellScope, byID("editForm"), "submit", func(_ js.Value, args []js.Value) any {
		preventDefault(args)
		values := map[string]string{}
		forEachNode(Document.Call("querySelectorAll", "[data-edit-field]"), func(node js.Value) {
			values[dataset(node, "editField")] = node.Get("value").String()
		})
		closeEditor()
		if editor.weather {
			w := model.Weather{TodaysWeather: values["todays_weather"], Tides: values["tides"], Date: values["date"]}
			go withTimeout(func(ctx context.Context) { report(sess.EditWeather(ctx, w)) })
			return nil
		}
		patch := model.ItemPatch{Fields: map[string]string{}}
		for k, v := range values {
			if k == "order" {
				continue
			}
			patch.Fields[k] = v
		}
		if raw, ok := values["order"]; ok {
			order, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				alert("Order must be a whole number")
				return nil
			}
			patch.Order = &order
		}
		collection, index := editor.collection, editor.index
		go withTimeout(func(ctx context.Context) { report(sess.EditItem(ctx, collection, index, patch)) })
		return nil
	})
}
