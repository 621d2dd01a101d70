//go:build js && wasm

package main

import "github.com/Its-donkey/newsdesk/internal/ui/wasm"

func main() {
	wasm.RunApp()
}
