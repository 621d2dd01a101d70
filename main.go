//go:build !js && !wasm

// Command newsdesk-dev builds the browser console and runs it next to the development
// backend, for local work on the console.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
)

const assetsDir = "web"

type procConfig struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	build := procConfig{
		Name: "build-console-wasm",
		Args: []string{"go", "build", "-o", filepath.Join(assetsDir, "main.wasm"), "./cmd/newsdesk-wasm"},
		Env:  []string{"GOOS=js", "GOARCH=wasm"},
	}
	if err := runOnce(ctx, build); err != nil {
		fmt.Fprintf(os.Stderr, "newsdesk-dev: %v\n", err)
		os.Exit(1)
	}
	if err := copyWasmExec(ctx, assetsDir); err != nil {
		fmt.Fprintf(os.Stderr, "newsdesk-dev: %v\n", err)
		os.Exit(1)
	}

	procs := []procConfig{
		{
			Name: "mock",
			Args: []string{"go", "run", "./cmd/newsdesk", "mock", "--listen", "127.0.0.1:8000"},
		},
		{
			Name: "serve",
			Args: []string{
				"go", "run", "./cmd/newsdesk", "serve",
				"--listen", "127.0.0.1:4173",
				"--api-url", "http://127.0.0.1:8000",
				"--assets", assetsDir,
			},
		},
	}
	if err := runAll(ctx, procs); err != nil {
		fmt.Fprintf(os.Stderr, "newsdesk-dev exited with error: %v\n", err)
		os.Exit(1)
	}
}

func command(ctx context.Context, cfg procConfig) *exec.Cmd {
	cmd := exec.CommandContext(ctx, cfg.Args[0], cfg.Args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if cfg.Dir != "" {
		cmd.Dir = cfg.Dir
	}
	if len(cfg.Env) > 0 {
		cmd.Env = append(append([]string{}, os.Environ()...), cfg.Env...)
	}
	return cmd
}

func runOnce(ctx context.Context, cfg procConfig) error {
	if err := command(ctx, cfg).Run(); err != nil {
		return fmt.Errorf("%s: %w", cfg.Name, err)
	}
	return nil
}

// copyWasmExec places the Go toolchain's wasm_exec.js loader next to main.wasm.
func copyWasmExec(ctx context.Context, dir string) error {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, "go", "env", "GOROOT")
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go env GOROOT: %w", err)
	}
	root := strings.TrimSpace(out.String())
	var src *os.File
	var err error
	for _, rel := range []string{"lib/wasm/wasm_exec.js", "misc/wasm/wasm_exec.js"} {
		if src, err = os.Open(filepath.Join(root, rel)); err == nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("locate wasm_exec.js: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, "wasm_exec.js"))
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

func runAll(ctx context.Context, procs []procConfig) error {
	if len(procs) == 0 {
		return fmt.Errorf("no processes configured")
	}
	var wg sync.WaitGroup
	errCh := make(chan error, len(procs))

	for _, cfg := range procs {
		wg.Add(1)
		go func(cfg procConfig) {
			defer wg.Done()
			cmd := command(ctx, cfg)
			if err := cmd.Start(); err != nil {
				errCh <- fmt.Errorf("%s start: %w", cfg.Name, err)
				return
			}
			if err := cmd.Wait(); err != nil {
				select {
				case <-ctx.Done():
					return
				default:
				}
				errCh <- fmt.Errorf("%s exited: %w", cfg.Name, err)
			}
		}(cfg)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	case err := <-errCh:
		return err
	case <-done:
	}
	return nil
}
