package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/phobologic/rustsym/internal/lang"
	"github.com/phobologic/rustsym/internal/model"
)

const (
	blockBegin = "<!-- BEGIN rustsym -->"
	blockEnd   = "<!-- END rustsym -->"
)

// Agent instruction files rustsym knows how to maintain.
const (
	agentsFile = "AGENTS.md"
	claudeFile = "CLAUDE.md"
)

var initTargets = map[string][]string{
	"auto":   nil,
	"agents": {agentsFile},
	"claude": {claudeFile},
	"all":    {agentsFile, claudeFile},
}

var errUnterminatedBlock = errors.New("rustsym block has no end marker")

// runInit implements `rustsym init`. It writes a block describing the rustsym
// index into the agent instruction files of a workspace.
func runInit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("rustsym init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		dryRun bool
		target string
	)
	fs.BoolVar(&dryRun, "dry-run", false, "print the resulting files instead of writing them")
	fs.StringVar(&target, "target", "auto", "files to update: auto, agents, claude or all")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: rustsym init [flags] [root]

Describe the rustsym index to coding agents working in root (default ".").

With --target auto, every existing %s or %s in root is updated; if neither
exists, %s is created. The block sits between %s and %s
and is replaced in place on later runs.

Flags:
`, agentsFile, claudeFile, agentsFile, blockBegin, blockEnd)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("init: %s is not a directory", root)
	}

	names, err := instructionFiles(root, target)
	if err != nil {
		return err
	}

	block := renderBlock()
	for _, name := range names {
		path := filepath.Join(root, name)
		existing, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		updated, err := upsertBlock(string(existing), block)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		if dryRun {
			_, _ = fmt.Fprintf(stdout, "==> %s <==\n%s", path, updated)
			continue
		}
		if updated == string(existing) {
			_, _ = fmt.Fprintf(stderr, "%s already up to date\n", path)
			continue
		}
		if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		_, _ = fmt.Fprintf(stderr, "updated %s\n", path)
	}
	return nil
}

// instructionFiles picks the file names under root that init maintains.
func instructionFiles(root, target string) ([]string, error) {
	names, ok := initTargets[target]
	if !ok {
		return nil, fmt.Errorf("init: unknown target %q (want auto, agents, claude or all)", target)
	}
	if names != nil {
		return names, nil
	}

	for _, name := range []string{agentsFile, claudeFile} {
		if _, err := os.Stat(filepath.Join(root, name)); err == nil {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		names = []string{agentsFile}
	}
	return names, nil
}

// upsertBlock replaces the marked block in content, or appends it after a
// blank line. A begin marker without a matching end marker is an error so
// hand-edited files are never truncated.
func upsertBlock(content, block string) (string, error) {
	lines := strings.SplitAfter(content, "\n")
	begin, end := -1, -1
	for i, line := range lines {
		switch strings.TrimSpace(line) {
		case blockBegin:
			if begin < 0 {
				begin = i
			}
		case blockEnd:
			if begin >= 0 && end < 0 {
				end = i
			}
		}
	}

	switch {
	case begin >= 0 && end < 0:
		return "", errUnterminatedBlock
	case begin >= 0:
		rest := strings.Join(lines[end+1:], "")
		return strings.Join(lines[:begin], "") + block + rest, nil
	case content == "":
		return block, nil
	}

	content = strings.TrimRight(content, "\n")
	return content + "\n\n" + block, nil
}

type example struct {
	command string
	purpose string
}

var initExamples = []example{
	{"rustsym -q Config", "search names across the workspace, best matches first"},
	{"rustsym -q Config -n 10", "only the 10 best matches"},
	{"rustsym -f src/lib.rs", "declarations in one file, in line order"},
	{"rustsym --lookup new", `every declaration named exactly "new"`},
	{"rustsym --no-toolchain -q Vec", "leave the standard library out of the index"},
	{"rustsym --json -q Config", "JSON (0-based lines) instead of TOON (1-based)"},
}

// renderBlock builds the marked block from the recognizer tables, so the
// description always matches what the index contains.
func renderBlock() string {
	var b strings.Builder
	b.WriteString(blockBegin + "\n")
	b.WriteString("## Rust symbol index (rustsym)\n\n")
	b.WriteString("Use `rustsym` from the shell to find where Rust items are declared before\n")
	b.WriteString("grepping. It indexes this workspace and the active toolchain's standard\n")
	b.WriteString("library; workspace results always rank first. Check `rustsym --version`\n")
	b.WriteString("and skip this section if it is not installed.\n\n")

	b.WriteString("```bash\n")
	width := 0
	for _, ex := range initExamples {
		width = max(width, len(ex.command))
	}
	for _, ex := range initExamples {
		fmt.Fprintf(&b, "%-*s  # %s\n", width, ex.command, ex.purpose)
	}
	b.WriteString("```\n\n")

	b.WriteString("Recognized declarations (one per line, first match wins):\n\n")
	b.WriteString("| line contains | kind |\n|---|---|\n")
	for _, d := range lang.Declarations {
		fmt.Fprintf(&b, "| `%s` | %s |\n", strings.TrimSpace(d.Keyword), d.Kind)
	}
	fmt.Fprintf(&b, "| `%s<name>:` after a struct or enum | %s |\n\n", lang.Visibility, model.Field)

	b.WriteString("Only declarations are indexed: use Grep for call sites and impl blocks.\n")
	dirs := lang.ExcludedDirs()
	for i, d := range dirs {
		dirs[i] = "`" + d + "/`"
	}
	fmt.Fprintf(&b, "Never indexed: `%s` files and anything under %s.\n",
		lang.TestModuleFile, strings.Join(dirs, ", "))
	b.WriteString("`rustsym mcp` serves the same queries as MCP tools; see `rustsym --help`.\n")
	b.WriteString(blockEnd + "\n")
	return b.String()
}
