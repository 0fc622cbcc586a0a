// Package toon implements TOON (Token-Oriented Object Notation) encoding of
// symbol query results.
package toon

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/phobologic/rustsym/internal/model"
	"github.com/phobologic/rustsym/internal/ranking"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Summary describes an index for EncodeSummary.
type Summary struct {
	Root    string
	Roots   []string
	Files   int
	Symbols int

	Duration  time.Duration
	IndexedAt time.Time // Omitted when zero
}

// EncodeSummary renders index statistics.
func EncodeSummary(s Summary) string {
	parts := []string{
		fmt.Sprintf("root: %s", encodeValue(s.Root)),
	}

	rows := make([][]string, len(s.Roots))
	for i, r := range s.Roots {
		rows[i] = []string{r}
	}
	parts = append(parts, formatTabular("roots", []string{"path"}, rows))
	parts = append(parts, fmt.Sprintf("files: %d", s.Files))
	parts = append(parts, fmt.Sprintf("symbols: %d", s.Symbols))
	parts = append(parts, fmt.Sprintf("duration_ms: %d", s.Duration.Milliseconds()))
	if !s.IndexedAt.IsZero() {
		parts = append(parts, fmt.Sprintf("indexed_at: %s", encodeValue(s.IndexedAt.UTC().Format(time.RFC3339))))
	}
	return strings.Join(parts, "\n")
}

// EncodeSymbols renders symbols as a table named name. Files under root are
// shown relative to it; lines are shown 1-based.
func EncodeSymbols(name, root string, symbols []model.Symbol) string {
	rows := make([][]string, len(symbols))
	for i := range symbols {
		s := &symbols[i]
		rows[i] = []string{
			s.Name,
			string(s.Kind),
			s.Container,
			displayPath(s.Location.File, root),
			fmt.Sprintf("%d", s.Location.Line+1),
		}
	}
	return formatTabular(name, []string{"name", "kind", "container", "file", "line"}, rows)
}

// EncodeCompletions renders completion labels.
func EncodeCompletions(items []model.CompletionItem) string {
	rows := make([][]string, len(items))
	for i := range items {
		rows[i] = []string{items[i].Label}
	}
	return formatTabular("completions", []string{"label"}, rows)
}

func displayPath(file, root string) string {
	if ranking.InRoot(file, root) {
		if rel, err := filepath.Rel(root, file); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(file)
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
