// Package engine owns the symbol index of one workspace and answers queries
// against it.
//
// An Engine indexes synchronously in New; queries never observe a partially
// built index. Reindex builds a fresh index without holding the lock and swaps
// it in, so readers see either the old or the new table, never a mix.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/phobologic/rustsym/internal/discover"
	"github.com/phobologic/rustsym/internal/logging"
	"github.com/phobologic/rustsym/internal/model"
	"github.com/phobologic/rustsym/internal/parse"
	"github.com/phobologic/rustsym/internal/ranking"
	"github.com/phobologic/rustsym/internal/store"
)

// ErrInvalidRoot is returned when the workspace root is missing, cannot be
// resolved, or is not a directory.
var ErrInvalidRoot = errors.New("invalid workspace root")

// Options configures indexing and search.
type Options struct {
	// Resolver locates the optional secondary root. Nil means none.
	Resolver discover.RootResolver

	// Gitignore skips files matched by a root's .gitignore.
	Gitignore bool

	// MaxFileSize skips larger files. Zero means no limit.
	MaxFileSize int64

	// SearchWorkers bounds workspace search parallelism. Zero means GOMAXPROCS.
	SearchWorkers int

	// Logger receives indexing diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Stats summarizes the current index.
type Stats struct {
	Root      string
	Roots     []string
	Files     int
	Symbols   int
	Duration  time.Duration
	IndexedAt time.Time
}

// Engine is a symbol index for one workspace root plus an optional secondary root.
type Engine struct {
	root   string
	opts   Options
	logger *slog.Logger

	mu   sync.RWMutex
	snap *snapshot
}

type snapshot struct {
	store     *store.Store
	roots     []string
	realPaths map[string]string // symlink-free path -> indexed path, where they differ
	duration  time.Duration
	indexedAt time.Time
}

// New resolves root and indexes it. It fails with ErrInvalidRoot if root is
// unusable; all other problems (unreadable directories or files, a failing
// toolchain locator) are logged and skipped.
func New(ctx context.Context, root string, opts Options) (*Engine, error) {
	resolved, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	e := &Engine{
		root:   resolved,
		opts:   opts,
		logger: logger,
	}
	e.snap = e.build(ctx)
	return e, nil
}

func resolveRoot(root string) (string, error) {
	if strings.TrimSpace(root) == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidRoot)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s: not a directory", ErrInvalidRoot, abs)
	}
	return abs, nil
}

func (e *Engine) build(ctx context.Context) *snapshot {
	start := time.Now()
	roots := e.roots(ctx)

	files := discover.Files(roots, discover.Options{
		Gitignore:   e.opts.Gitignore,
		MaxFileSize: e.opts.MaxFileSize,
		Logger:      e.logger,
	})

	st := store.New()
	for _, path := range files {
		e.indexFile(st, path)
	}
	st.Finalize()

	snap := &snapshot{
		store:     st,
		roots:     roots,
		realPaths: realPaths(st.FilePaths()),
		duration:  time.Since(start),
		indexedAt: time.Now(),
	}
	e.logger.Info("index built",
		"roots", len(roots),
		"files", st.Files(),
		"symbols", st.Len(),
		"duration", snap.duration)
	return snap
}

// realPaths maps the symlink-free form of each indexed path back to the path
// it was indexed under. Files reached through a linked directory or a linked
// file are indexed under the link, but callers may name them either way.
func realPaths(files []string) map[string]string {
	m := make(map[string]string)
	for _, path := range files {
		real, err := filepath.EvalSymlinks(path)
		if err != nil || real == path {
			continue
		}
		if _, dup := m[real]; !dup {
			m[real] = path
		}
	}
	return m
}

func (e *Engine) roots(ctx context.Context) []string {
	roots := []string{e.root}
	if e.opts.Resolver == nil {
		return roots
	}

	secondary, ok := e.opts.Resolver.ResolveSecondaryRoot(ctx, e.root)
	if !ok {
		e.logger.Debug("no secondary root")
		return roots
	}
	if abs, err := filepath.Abs(secondary); err == nil {
		secondary = abs
	}
	e.logger.Info("secondary root resolved", "path", secondary)
	return append(roots, secondary)
}

func (e *Engine) indexFile(st *store.Store, path string) {
	f, err := os.Open(path)
	if err != nil {
		e.logger.Debug("skipping unopenable file", "path", path, "error", err)
		return
	}
	defer f.Close()

	symbols, err := parse.ScanFile(f, path)
	if err != nil {
		e.logger.Debug("read error, keeping partial symbols", "path", path, "error", err)
	}
	if err := st.AddFile(path, symbols); err != nil {
		e.logger.Warn("adding file to store", "path", path, "error", err)
	}
}

// Reindex rebuilds the index from disk and replaces the current one.
func (e *Engine) Reindex(ctx context.Context) Stats {
	snap := e.build(ctx)

	e.mu.Lock()
	e.snap = snap
	e.mu.Unlock()

	return e.Stats()
}

func (e *Engine) current() *snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

// Root returns the resolved workspace root.
func (e *Engine) Root() string {
	return e.root
}

// Path resolves a file argument to the key used by the index: file:// URIs
// are converted to paths and relative paths are joined to the workspace root.
func (e *Engine) Path(file string) string {
	if strings.HasPrefix(file, "file://") {
		if u, err := url.Parse(file); err == nil {
			file = filepath.FromSlash(u.Path)
		}
	}
	if !filepath.IsAbs(file) {
		file = filepath.Join(e.root, file)
	}
	return filepath.Clean(file)
}

// DocumentSymbols returns the symbols declared in file, ordered by line.
// ok is false if the file was never indexed, which differs from an indexed
// file with no symbols.
func (e *Engine) DocumentSymbols(file string) (symbols []model.Symbol, ok bool) {
	snap := e.current()
	path := e.Path(file)
	if symbols, ok := snap.store.InFile(path); ok {
		return symbols, true
	}

	// The root is stored symlink-free, so a path spelled through a linked
	// workspace (or a linked directory inside it) needs resolving first.
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, false
	}
	if symbols, ok := snap.store.InFile(real); ok {
		return symbols, true
	}
	if indexed, ok := snap.realPaths[real]; ok {
		return snap.store.InFile(indexed)
	}
	return nil, false
}

// Complete offers every symbol declared in file as a completion, regardless
// of cursor position. ok is false if the file was never indexed.
func (e *Engine) Complete(file string) (items []model.CompletionItem, ok bool) {
	symbols, ok := e.DocumentSymbols(file)
	if !ok {
		return nil, false
	}
	items = make([]model.CompletionItem, len(symbols))
	for i := range symbols {
		items[i] = model.CompletionItem{Label: symbols[i].Name}
	}
	return items, true
}

// WorkspaceSymbols searches every indexed symbol. An empty query returns all
// symbols; otherwise matches are ranked with workspace symbols first and
// closer name lengths earlier.
func (e *Engine) WorkspaceSymbols(query string) []model.Symbol {
	return ranking.Search(e.current().store.Records(), query, e.root, e.opts.SearchWorkers)
}

// Lookup returns the symbols named exactly name, in discovery order.
func (e *Engine) Lookup(name string) []model.Symbol {
	return e.current().store.ByName(name)
}

// Store returns the current finalized symbol table. It must not be modified.
func (e *Engine) Store() *store.Store {
	return e.current().store
}

// Stats describes the current index.
func (e *Engine) Stats() Stats {
	snap := e.current()
	return Stats{
		Root:      e.root,
		Roots:     append([]string(nil), snap.roots...),
		Files:     snap.store.Files(),
		Symbols:   snap.store.Len(),
		Duration:  snap.duration,
		IndexedAt: snap.indexedAt,
	}
}
