// Package store holds the symbol table built during indexing.
//
// A Store is written by a single indexer and then finalized; after Finalize
// it is read-only and safe for concurrent readers.
package store

import (
	"errors"
	"sort"

	"github.com/phobologic/rustsym/internal/model"
)

// ErrFinalized is returned when a finalized store is written to.
var ErrFinalized = errors.New("store is finalized")

// ID is a symbol's position in the store's append-only record sequence.
type ID int

// Store is an append-only symbol table with a per-file index and a per-name
// index derived from it.
type Store struct {
	records   []model.Symbol
	byFile    map[string][]ID
	byName    map[string][]ID
	fileOrder []string
	finalized bool
}

// New returns an empty store ready for indexing.
func New() *Store {
	return &Store{byFile: make(map[string][]ID)}
}

// AddFile appends the symbols of one file and records them in the file index,
// stable-sorted by line. Calling AddFile with no symbols still marks the file
// as indexed, which distinguishes it from a file that was never seen.
func (s *Store) AddFile(file string, symbols []model.Symbol) error {
	if s.finalized {
		return ErrFinalized
	}

	start := len(s.records)
	s.records = append(s.records, symbols...)

	added := s.records[start:]
	sort.SliceStable(added, func(i, j int) bool {
		return added[i].Location.Line < added[j].Location.Line
	})

	if _, ok := s.byFile[file]; !ok {
		s.fileOrder = append(s.fileOrder, file)
	}
	ids := s.byFile[file]
	if ids == nil {
		ids = make([]ID, 0, len(added))
	}
	for i := range added {
		ids = append(ids, ID(start+i))
	}
	s.byFile[file] = ids
	return nil
}

// Finalize builds the name index in one pass over the record sequence. The
// store is read-only afterwards. Finalize is idempotent.
func (s *Store) Finalize() {
	if s.finalized {
		return
	}
	s.byName = make(map[string][]ID)
	for i := range s.records {
		name := s.records[i].Name
		s.byName[name] = append(s.byName[name], ID(i))
	}
	s.finalized = true
}

// Finalized reports whether Finalize has been called.
func (s *Store) Finalized() bool {
	return s.finalized
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Files returns the number of indexed files, including files with no symbols.
func (s *Store) Files() int {
	return len(s.byFile)
}

// FilePaths returns the indexed files in the order they were added.
func (s *Store) FilePaths() []string {
	return append([]string(nil), s.fileOrder...)
}

// Get returns the record with the given id.
func (s *Store) Get(id ID) (model.Symbol, bool) {
	if id < 0 || int(id) >= len(s.records) {
		return model.Symbol{}, false
	}
	return s.records[id], true
}

// Records returns the full record sequence. Callers must not modify it.
func (s *Store) Records() []model.Symbol {
	return s.records
}

// InFile returns the symbols declared in file ordered by line. ok is false if
// the file was never indexed.
func (s *Store) InFile(file string) (symbols []model.Symbol, ok bool) {
	ids, ok := s.byFile[file]
	if !ok {
		return nil, false
	}
	return s.resolve(ids), true
}

// ByName returns the symbols named exactly name, in record order. It returns
// nil before Finalize.
func (s *Store) ByName(name string) []model.Symbol {
	return s.resolve(s.byName[name])
}

func (s *Store) resolve(ids []ID) []model.Symbol {
	out := make([]model.Symbol, len(ids))
	for i, id := range ids {
		out[i] = s.records[id]
	}
	return out
}
