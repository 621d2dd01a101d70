//go:build js && wasm

package wasm

import (
	"strconv"
	"strings"
	"syscall/js"
)

// Document references the global browser document for DOM interactions.
var Document js.Value

// handlers holds bound callbacks per render scope so a re-rendered container can
// release the callbacks of the markup it replaced.
var handlers = map[string][]js.Func{}

func byID(id string) js.Value {
	return Document.Call("getElementById", id)
}

func on(scope string, node js.Value, event string, handler func(js.Value, []js.Value) any) {
	if !node.Truthy() {
		return
	}
	fn := js.FuncOf(handler)
	node.Call("addEventListener", event, fn)
	handlers[scope] = append(handlers[scope], fn)
}

func releaseScope(scope string) {
	for _, fn := range handlers[scope] {
		fn.Release()
	}
	delete(handlers, scope)
}

func forEachNode(list js.Value, fn func(js.Value)) {
	if !list.Truthy() {
		return
	}
	length := list.Get("length").Int()
	for i := 0; i < length; i++ {
		fn(list.Index(i))
	}
}

func inputValue(id string) string {
	el := byID(id)
	if !el.Truthy() {
		return ""
	}
	return el.Get("value").String()
}

func setInputValue(id, value string) {
	if el := byID(id); el.Truthy() {
		el.Set("value", value)
	}
}

func inputInt(id string) int {
	n, err := strconv.Atoi(strings.TrimSpace(inputValue(id)))
	if err != nil {
		return 0
	}
	return n
}

func setHTML(id, markup string) {
	if el := byID(id); el.Truthy() {
		el.Set("innerHTML", markup)
	}
}

func setShown(node js.Value, shown bool) {
	if !node.Truthy() {
		return
	}
	if shown {
		node.Get("style").Set("display", "")
		return
	}
	node.Get("style").Set("display", "none")
}

func setBusy(buttonID string, busy bool) {
	btn := byID(buttonID)
	if !btn.Truthy() {
		return
	}
	btn.Set("disabled", busy)
	if spinner := btn.Call("querySelector", ".spinner-border"); spinner.Truthy() {
		if busy {
			spinner.Get("classList").Call("remove", "d-none")
		} else {
			spinner.Get("classList").Call("add", "d-none")
		}
	}
}

func dataset(node js.Value, key string) string {
	v := node.Get("dataset").Get(key)
	if v.Type() != js.TypeString {
		return ""
	}
	return v.String()
}

func alert(message string) {
	js.Global().Call("alert", message)
}

func confirm(message string) bool {
	return js.Global().Call("confirm", message).Bool()
}

func preventDefault(args []js.Value) {
	if len(args) > 0 {
		args[0].Call("preventDefault")
	}
}
