// Package parse recognizes Rust declarations line by line.
//
// Recognition is lexical: each whitespace-trimmed line is matched against the
// declaration keyword table in priority order, and public fields are picked up
// by an identifier-then-colon pattern. Multi-line declarations, declarations
// produced by macros, and keywords inside string literals are not handled.
package parse

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode"

	"github.com/phobologic/rustsym/internal/lang"
	"github.com/phobologic/rustsym/internal/model"
)

// State is the per-file state carried across lines. The zero value is ready
// for the first line of a file.
type State struct {
	lastContainer string
}

// Reset clears the state at a file boundary.
func (s *State) Reset() {
	s.lastContainer = ""
}

// Container returns the name of the most recent struct or enum seen.
func (s *State) Container() string {
	return s.lastContainer
}

// Match is a declaration recognized on a single line.
type Match struct {
	Name      string
	Kind      model.Kind
	Container string
}

// Recognize classifies a trimmed line, returning at most one declaration.
// Struct and enum matches update st so that later fields are attributed to them.
func Recognize(line string, st *State) (Match, bool) {
	for _, d := range lang.Declarations {
		if !matchesKeyword(line, d.Keyword) {
			continue
		}
		_, rest, _ := strings.Cut(line, d.Keyword)
		name, _ := readIdent(rest)
		if d.Kind.IsContainer() {
			st.lastContainer = name
		}
		return Match{Name: name, Kind: d.Kind}, true
	}

	_, rest, ok := strings.Cut(line, lang.Visibility)
	if !ok {
		return Match{}, false
	}
	name, term := readIdent(rest)
	if term != ':' {
		return Match{}, false
	}
	return Match{Name: name, Kind: model.Field, Container: st.lastContainer}, true
}

func matchesKeyword(line, keyword string) bool {
	if strings.HasPrefix(line, keyword) {
		return true
	}
	return strings.HasPrefix(line, lang.Visibility) && strings.Contains(line, keyword)
}

// readIdent reads identifier characters from the start of s. It returns the
// identifier (possibly empty) and the rune that ended it, or 0 at end of input.
func readIdent(s string) (string, rune) {
	for i, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || r == '-' {
			continue
		}
		return s[:i], r
	}
	return s, 0
}

// ScanFile recognizes declarations in every line read from r, attributing
// them to path. Symbols are returned in emission order. A read error stops the
// scan; the symbols found so far are returned together with the error.
func ScanFile(r io.Reader, path string) ([]model.Symbol, error) {
	var (
		st      State
		symbols []model.Symbol
	)

	br := bufio.NewReader(r)
	for lineNum := 0; ; lineNum++ {
		raw, err := br.ReadString('\n')
		if raw != "" {
			if m, ok := Recognize(strings.TrimSpace(raw), &st); ok {
				symbols = append(symbols, model.Symbol{
					Name:      m.Name,
					NameLower: strings.ToLower(m.Name),
					Container: m.Container,
					Kind:      m.Kind,
					Location:  model.Location{File: path, Line: lineNum},
				})
			}
		}
		if errors.Is(err, io.EOF) {
			return symbols, nil
		}
		if err != nil {
			return symbols, err
		}
	}
}
