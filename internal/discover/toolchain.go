package discover

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// RootResolver locates an optional secondary root to index alongside the
// workspace. Resolution failures are not errors: ok is false and the
// secondary root is simply omitted.
type RootResolver interface {
	ResolveSecondaryRoot(ctx context.Context, workspace string) (root string, ok bool)
}

// Runner runs a command in dir and returns its standard output.
type Runner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// Rustup resolves the standard library source of the active Rust toolchain by
// asking rustup where rustc lives.
type Rustup struct {
	// Run executes the locator command. Nil runs it as a subprocess.
	Run Runner
}

var _ RootResolver = Rustup{}

// librarySuffix is the standard library source location relative to a toolchain directory.
var librarySuffix = filepath.Join("lib", "rustlib", "src", "rust", "library")

// ResolveSecondaryRoot runs `rustup which rustc` in the workspace and maps
// <toolchain>/bin/rustc to <toolchain>/lib/rustlib/src/rust/library.
func (r Rustup) ResolveSecondaryRoot(ctx context.Context, workspace string) (string, bool) {
	run := r.Run
	if run == nil {
		run = execRunner
	}

	out, err := run(ctx, workspace, "rustup", "which", "rustc")
	if err != nil {
		return "", false
	}

	rustc := strings.TrimSpace(string(out))
	if rustc == "" {
		return "", false
	}

	toolchain := filepath.Dir(filepath.Dir(rustc))
	return filepath.Join(toolchain, librarySuffix), true
}

func execRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	return cmd.Output()
}

// NoSecondaryRoot is a RootResolver that never resolves anything.
type NoSecondaryRoot struct{}

// ResolveSecondaryRoot always reports no secondary root.
func (NoSecondaryRoot) ResolveSecondaryRoot(context.Context, string) (string, bool) {
	return "", false
}

// StaticRoot is a RootResolver that always returns the same directory.
type StaticRoot string

// ResolveSecondaryRoot returns the static directory, or no root if it is empty.
func (s StaticRoot) ResolveSecondaryRoot(context.Context, string) (string, bool) {
	return string(s), s != ""
}
