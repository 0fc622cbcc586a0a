package toon

import (
	"strings"
	"testing"
	"time"

	"github.com/phobologic/rustsym/internal/model"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "hello", "hello"},
		{"leading space", " hello", `" hello"`},
		{"trailing space", "hello ", `"hello "`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"carriage return", "a\rb", `"a\rb"`},
		{"true keyword", "true", `"true"`},
		{"True keyword", "True", `"True"`},
		{"false keyword", "false", `"false"`},
		{"null keyword", "null", `"null"`},
		{"integer", "42", "42"},
		{"negative integer", "-1", "-1"},
		{"float", "3.14", "3.14"},
		{"zero", "0", "0"},
		{"leading zero invalid", "01", "01"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "a:b", `"a:b"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"bracket", "a[b", `"a[b"`},
		{"brace", "a{b", `"a{b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"path", "src/main.rs", "src/main.rs"},
		{"kebab name", "my-macro", "my-macro"},
		{"rust path", "std::fmt", `"std::fmt"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := encodeValue(tt.in)
			if got != tt.want {
				t.Errorf("encodeValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncodeSymbols(t *testing.T) {
	t.Parallel()

	symbols := []model.Symbol{
		{Name: "Foo", Kind: model.Struct, Location: model.Location{File: "/ws/src/lib.rs", Line: 2}},
		{Name: "bar", Kind: model.Field, Container: "Foo", Location: model.Location{File: "/ws/src/lib.rs", Line: 3}},
		{Name: "Vec", Kind: model.Struct, Location: model.Location{File: "/rust/library/alloc/src/vec.rs", Line: 0}},
	}

	got := EncodeSymbols("symbols", "/ws", symbols)
	lines := strings.Split(got, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), got)
	}
	if lines[0] != "symbols[3]{name,kind,container,file,line}:" {
		t.Errorf("line 0: got %q", lines[0])
	}
	if lines[1] != `  Foo,struct,"",src/lib.rs,3` {
		t.Errorf("line 1: got %q", lines[1])
	}
	if lines[2] != "  bar,field,Foo,src/lib.rs,4" {
		t.Errorf("line 2: got %q", lines[2])
	}
	if lines[3] != "  Vec,struct,\"\",/rust/library/alloc/src/vec.rs,1" {
		t.Errorf("line 3: got %q", lines[3])
	}
}

func TestEncodeSymbolsEmpty(t *testing.T) {
	t.Parallel()

	got := EncodeSymbols("results", "/ws", nil)
	if got != "results[0]{name,kind,container,file,line}:" {
		t.Errorf("got %q", got)
	}
}

func TestEncodeCompletions(t *testing.T) {
	t.Parallel()

	got := EncodeCompletions([]model.CompletionItem{{Label: "Foo"}, {Label: "new"}})
	want := "completions[2]{label}:\n  Foo\n  new"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEncodeSummary(t *testing.T) {
	t.Parallel()

	got := EncodeSummary(Summary{
		Root:      "/ws",
		Roots:     []string{"/ws", "/rust/library"},
		Files:     12,
		Symbols:   340,
		Duration:  1500 * time.Millisecond,
		IndexedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	for _, want := range []string{
		"root: /ws",
		"roots[2]{path}:",
		"  /rust/library",
		"files: 12",
		"symbols: 340",
		"duration_ms: 1500",
		`indexed_at: "2026-03-01T12:00:00Z"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}
