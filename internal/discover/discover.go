// Package discover finds indexable Rust source files under one or more roots.
package discover

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/rustsym/internal/lang"
)

// Options controls optional pruning on top of the fixed exclusion rules.
type Options struct {
	// Gitignore additionally skips files matched by each root's .gitignore.
	Gitignore bool

	// MaxFileSize skips files larger than this many bytes. Zero means no limit.
	MaxFileSize int64

	// Logger receives debug messages for swallowed errors. Nil discards them.
	Logger *slog.Logger
}

// IsExcluded reports whether a path relative to a root lies in an excluded
// directory subtree, i.e. whether any of its directory components is a
// denylisted name.
func IsExcluded(rel string) bool {
	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "." {
		return false
	}
	for _, part := range strings.Split(rel, "/") {
		if lang.IsExcludedDir(part) {
			return true
		}
	}
	return false
}

// IsEligibleFile reports whether path names an indexable source file: it has
// the Rust extension and is not the reserved test-module file.
func IsEligibleFile(path string) bool {
	name := filepath.Base(path)
	return filepath.Ext(name) == lang.Extension && name != lang.TestModuleFile
}

// Files returns the absolute paths of all eligible files under roots, in root
// order and sorted within each root. Roots themselves are never excluded.
// Symlinked files and directories are followed; files under a linked
// directory are reported beneath the link. Each real directory is entered at
// most once per root through a link, which breaks cycles. Unreadable
// directories and roots are skipped, so the result may be empty.
func Files(roots []string, opts Options) []string {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var results []string
	seen := make(map[string]struct{})

	for _, root := range roots {
		w := &walker{
			root:    root,
			opts:    opts,
			logger:  logger,
			visited: make(map[string]struct{}),
		}
		if opts.Gitignore {
			w.gi = loadGitignore(root)
		}

		base, err := filepath.EvalSymlinks(root)
		if err != nil {
			logger.Debug("skipping unreadable root", "path", root, "error", err)
			continue
		}
		w.walk(base, root)

		sort.Strings(w.found)
		for _, path := range w.found {
			if _, dup := seen[path]; dup {
				continue
			}
			seen[path] = struct{}{}
			results = append(results, path)
		}
	}

	return results
}

type walker struct {
	root    string
	opts    Options
	logger  *slog.Logger
	gi      *ignore.GitIgnore
	visited map[string]struct{} // symlink-free directories already walked
	found   []string
}

// walk visits the symlink-free directory base, reporting entries as if they
// lived under logical.
func (w *walker) walk(base, logical string) {
	_ = filepath.WalkDir(base, func(real string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("skipping unreadable path", "path", real, "error", err)
			return nil
		}

		path := real
		if logical != base {
			sub, err := filepath.Rel(base, real)
			if err != nil {
				return nil
			}
			path = filepath.Join(logical, sub)
		}

		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if IsExcluded(rel) {
				return filepath.SkipDir
			}
			w.visited[real] = struct{}{}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(real); err == nil && info.IsDir() {
				w.walkLink(real, path, rel)
				return nil
			}
		}

		w.addFile(real, path, rel)
		return nil
	})
}

func (w *walker) walkLink(link, path, rel string) {
	if IsExcluded(rel) {
		return
	}
	target, err := filepath.EvalSymlinks(link)
	if err != nil {
		w.logger.Debug("skipping broken directory link", "path", path, "error", err)
		return
	}
	if _, ok := w.visited[target]; ok {
		w.logger.Debug("skipping directory link to visited directory", "path", path, "target", target)
		return
	}
	w.walk(target, path)
}

func (w *walker) addFile(real, path, rel string) {
	if !IsEligibleFile(path) {
		return
	}

	info, err := os.Stat(real)
	if err != nil || !info.Mode().IsRegular() {
		return
	}

	if w.gi != nil && w.gi.MatchesPath(rel) {
		return
	}

	if w.opts.MaxFileSize > 0 && info.Size() > w.opts.MaxFileSize {
		w.logger.Debug("skipping large file", "path", path, "size", info.Size())
		return
	}

	w.found = append(w.found, path)
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
