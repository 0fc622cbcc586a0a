// Package model defines core data structures for rustsym.
package model

import (
	"net/url"
	"path/filepath"
)

// Kind indicates the declaration kind of a symbol.
type Kind string

const (
	Struct         Kind = "struct"
	Enum           Kind = "enum"
	Function       Kind = "function"
	Constant       Kind = "constant"
	TypeAlias      Kind = "type"
	Module         Kind = "module"
	StaticVariable Kind = "static"
	Macro          Kind = "macro"
	Field          Kind = "field"
)

// lspKinds maps each Kind to the LSP SymbolKind number reported to editors.
// Type aliases surface as TypeParameter, statics as Variable, and macros as
// Function.
var lspKinds = map[Kind]int{
	Module:         2,
	Field:          8,
	Enum:           10,
	Function:       12,
	Macro:          12,
	StaticVariable: 13,
	Constant:       14,
	Struct:         23,
	TypeAlias:      26,
}

// LSP returns the LSP SymbolKind number for k, or 0 if k is unknown.
func (k Kind) LSP() int {
	return lspKinds[k]
}

// IsContainer reports whether fields may be attributed to symbols of kind k.
func (k Kind) IsContainer() bool {
	return k == Struct || k == Enum
}

// Location is a zero-width position in a source file.
type Location struct {
	File   string // Absolute path
	Line   int    // 0-based
	Column int    // 0-based; always 0 for lexically recognized symbols
}

// URI returns the file:// URI of the location's file.
func (l Location) URI() string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(l.File)}
	return u.String()
}

// Symbol is one recognized declaration. Symbols are immutable once stored.
type Symbol struct {
	Name      string
	NameLower string
	Container string // Enclosing struct/enum for fields; "" if absent
	Kind      Kind
	Location  Location
}

// CompletionItem is a completion entry offered for a file.
type CompletionItem struct {
	Label  string
	Detail string
}
