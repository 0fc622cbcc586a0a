// Package lang describes the Rust declaration forms and file layout rules
// rustsym recognizes.
package lang

import (
	"sort"

	"github.com/phobologic/rustsym/internal/model"
)

const (
	// Extension is the source file extension that gets indexed.
	Extension = ".rs"

	// TestModuleFile is the reserved test-module filename; such files are never indexed.
	TestModuleFile = "tests.rs"

	// Visibility is the public visibility token. A line that starts with it may
	// carry its declaration keyword anywhere after it.
	Visibility = "pub "
)

// Declaration pairs a declaration keyword with the symbol kind it introduces.
type Declaration struct {
	Keyword string
	Kind    model.Kind
}

// Declarations lists recognized declaration keywords in match priority order.
// The first entry that matches a line wins.
var Declarations = []Declaration{
	{"struct ", model.Struct},
	{"enum ", model.Enum},
	{"fn ", model.Function},
	{"const ", model.Constant},
	{"type ", model.TypeAlias},
	{"mod ", model.Module},
	{"static ", model.StaticVariable},
	{"macro_rules! ", model.Macro},
}

// excludedDirs holds directory names whose subtrees are never indexed:
// build output, version control, backups, test fixtures, and the toolchain
// library subtrees that are too large or noisy to be useful.
var excludedDirs = map[string]struct{}{
	"target":    {},
	".git":      {},
	"backups":   {},
	"entities":  {},
	"scenes":    {},
	"tests":     {},
	"stdarch":   {},
	"backtrace": {},
}

// IsExcludedDir reports whether a directory with the given name is pruned.
func IsExcludedDir(name string) bool {
	_, ok := excludedDirs[name]
	return ok
}

// ExcludedDirs returns the excluded directory names in sorted order.
func ExcludedDirs() []string {
	names := make([]string, 0, len(excludedDirs))
	for name := range excludedDirs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
