//go:build !js && !wasm

package main

import (
	"os"

	"github.com/Its-donkey/newsdesk/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
