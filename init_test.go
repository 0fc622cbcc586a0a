package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phobologic/rustsym/internal/lang"
)

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestInitCreatesAgentsFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	if got := readTestFile(t, filepath.Join(dir, agentsFile)); got != renderBlock() {
		t.Errorf("AGENTS.md should hold exactly the block, got:\n%s", got)
	}
	if _, err := os.Stat(filepath.Join(dir, claudeFile)); err == nil {
		t.Error("CLAUDE.md should not be created when neither file exists")
	}
}

func TestInitUpdatesExistingFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, claudeFile, "# Claude notes\n")

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	got := readTestFile(t, filepath.Join(dir, claudeFile))
	if got != "# Claude notes\n\n"+renderBlock() {
		t.Errorf("unexpected CLAUDE.md:\n%s", got)
	}
	if _, err := os.Stat(filepath.Join(dir, agentsFile)); err == nil {
		t.Error("AGENTS.md should not be created when CLAUDE.md already exists")
	}

	writeTestFile(t, dir, agentsFile, "# Agents\n")
	if err := runInit([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("second runInit: %v", err)
	}
	if got := readTestFile(t, filepath.Join(dir, agentsFile)); !strings.HasPrefix(got, "# Agents\n\n"+blockBegin) {
		t.Errorf("AGENTS.md should be updated once it exists:\n%s", got)
	}
	if !strings.Contains(stderr.String(), "already up to date") {
		t.Errorf("unchanged CLAUDE.md should be reported, stderr:\n%s", stderr.String())
	}
}

func TestInitTargets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target string
		want   []string
	}{
		{"agents", []string{agentsFile}},
		{"claude", []string{claudeFile}},
		{"all", []string{agentsFile, claudeFile}},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()

			var stdout, stderr bytes.Buffer
			if err := runInit([]string{"--target", tt.target, dir}, &stdout, &stderr); err != nil {
				t.Fatalf("runInit: %v", err)
			}
			for _, name := range []string{agentsFile, claudeFile} {
				_, err := os.Stat(filepath.Join(dir, name))
				wanted := strings.Contains(strings.Join(tt.want, ","), name)
				if wanted != (err == nil) {
					t.Errorf("%s exists = %v, want %v", name, err == nil, wanted)
				}
			}
		})
	}
}

func TestInitRejectsBadArgs(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "file.rs", "fn a() {}\n")

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{"--target", "cursor", dir}, &stdout, &stderr); err == nil {
		t.Error("expected error for unknown target")
	}
	if err := runInit([]string{filepath.Join(dir, "file.rs")}, &stdout, &stderr); err == nil {
		t.Error("expected error for non-directory root")
	}
}

func TestInitDryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, agentsFile, "# Agents\n")

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{dir, "--dry-run"}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	out := stdout.String()
	if !strings.HasPrefix(out, "==> "+filepath.Join(dir, agentsFile)+" <==\n# Agents\n") {
		t.Errorf("dry-run should show the whole resulting file:\n%s", out)
	}
	if !strings.Contains(out, blockEnd) {
		t.Errorf("dry-run output missing block:\n%s", out)
	}
	if got := readTestFile(t, filepath.Join(dir, agentsFile)); got != "# Agents\n" {
		t.Errorf("--dry-run must not modify the file, got:\n%s", got)
	}
}

func TestInitIdempotent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, agentsFile, "# Agents\nno trailing newline")

	var buf bytes.Buffer
	if err := runInit([]string{dir}, &buf, &buf); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := readTestFile(t, filepath.Join(dir, agentsFile))

	if err := runInit([]string{dir}, &buf, &buf); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second := readTestFile(t, filepath.Join(dir, agentsFile)); first != second {
		t.Errorf("init is not idempotent:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestUpsertBlock(t *testing.T) {
	t.Parallel()
	block := blockBegin + "\nnew\n" + blockEnd + "\n"

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "", block},
		{"append", "# Notes\n", "# Notes\n\n" + block},
		{"append trims blank lines", "# Notes\n\n\n", "# Notes\n\n" + block},
		{
			"replace in middle",
			"# Top\n\n" + blockBegin + "\nold\n" + blockEnd + "\n\n## After\n",
			"# Top\n\n" + block + "\n## After\n",
		},
		{
			"replace at end without newline",
			"# Top\n" + blockBegin + "\nold\n" + blockEnd,
			"# Top\n" + block,
		},
		{
			"indented markers",
			"  " + blockBegin + "\nold\n  " + blockEnd + "\n",
			block,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := upsertBlock(tt.content, block)
			if err != nil {
				t.Fatalf("upsertBlock: %v", err)
			}
			if got != tt.want {
				t.Errorf("got:\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestUpsertBlockUnterminated(t *testing.T) {
	t.Parallel()
	content := "# Top\n" + blockBegin + "\nhand edited\n"
	_, err := upsertBlock(content, renderBlock())
	if !errors.Is(err, errUnterminatedBlock) {
		t.Errorf("expected errUnterminatedBlock, got %v", err)
	}

	dir := t.TempDir()
	writeTestFile(t, dir, agentsFile, content)
	var stdout, stderr bytes.Buffer
	if err := runInit([]string{dir}, &stdout, &stderr); err == nil {
		t.Fatal("expected runInit to refuse an unterminated block")
	}
	if got := readTestFile(t, filepath.Join(dir, agentsFile)); got != content {
		t.Errorf("file was modified:\n%s", got)
	}
}

func TestRenderBlockDescribesRecognizer(t *testing.T) {
	t.Parallel()
	block := renderBlock()

	if !strings.HasPrefix(block, blockBegin+"\n") || !strings.HasSuffix(block, blockEnd+"\n") {
		t.Errorf("block not wrapped in markers:\n%s", block)
	}
	for _, d := range lang.Declarations {
		row := "| `" + strings.TrimSpace(d.Keyword) + "` | " + string(d.Kind) + " |"
		if !strings.Contains(block, row) {
			t.Errorf("missing declaration row %q", row)
		}
	}
	for _, dir := range lang.ExcludedDirs() {
		if !strings.Contains(block, "`"+dir+"/`") {
			t.Errorf("missing excluded dir %q", dir)
		}
	}
	for _, want := range []string{"`pub <name>:`", lang.TestModuleFile, "rustsym -q Config", "rustsym mcp", "--help"} {
		if !strings.Contains(block, want) {
			t.Errorf("block missing %q", want)
		}
	}
}
